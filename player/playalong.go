package player

import (
	"time"

	"go-playalong/keyboard"
	"go-playalong/midi"

	gomidi "gitlab.com/gomidi/midi/v2"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Leeway is how long an early key press can wait for the song to ask for it.
// It is measured in wall-clock time, whatever the playback speed.
const Leeway = 500 * time.Millisecond

// EventSource labels which stream a note event belongs to
type EventSource int

const (
	File EventSource = iota // the song
	User                    // the performer
)

type userPress struct {
	note uint8
	at   time.Time
}

// PlayAlong tracks which notes the performer still owes the song.
//
// A note is either required (the song pressed it and the performer has not yet)
// or pending (the performer pressed it early and the song has not yet asked for it),
// never both.
type PlayAlong struct {
	keyboard keyboard.Range

	required map[uint8]struct{}

	// early presses from the last Leeway, oldest first
	pending []userPress

	now func() time.Time
}

// NewPlayAlong creates a reconciler for a performer whose keyboard covers kb
func NewPlayAlong(kb keyboard.Range) *PlayAlong {
	return &PlayAlong{
		keyboard: kb,
		required: make(map[uint8]struct{}),
		now:      time.Now,
	}
}

// Tick expires early presses older than Leeway. Call it every frame.
func (p *PlayAlong) Tick() {
	now := p.now()
	n := 0
	for _, press := range p.pending {
		if now.Sub(press.at) <= Leeway {
			p.pending[n] = press
			n++
		}
	}
	p.pending = p.pending[:n]
}

// UserNoteEvent records a key press or release by the performer.
// Notes the keyboard cannot produce are ignored; releases do not change anything.
func (p *PlayAlong) UserNoteEvent(note uint8, on bool) {
	if !on || !p.keyboard.Contains(note) {
		return
	}

	if _, ok := p.required[note]; ok {
		delete(p.required, note)
		p.removePending(note)
		return
	}

	now := p.now()
	// A repeated press restarts its leeway and moves to the back
	p.removePending(note)
	p.pending = append(p.pending, userPress{note: note, at: now})
}

// FileNoteEvent records a key press or release by the song.
// A press is satisfied right away by a pending early press of the same note.
func (p *PlayAlong) FileNoteEvent(note uint8, on bool) {
	if !on {
		delete(p.required, note)
		return
	}

	if i := p.findPending(note); i >= 0 {
		p.pending = slices.Delete(p.pending, i, i+1)
		return
	}
	p.required[note] = struct{}{}
}

// MidiEvent routes a note message from source. Non-note messages and notes
// outside the keyboard range are ignored on both streams.
func (p *PlayAlong) MidiEvent(source EventSource, msg gomidi.Message) {
	note, on, ok := midi.NoteState(msg)
	if !ok || !p.keyboard.Contains(note) {
		return
	}

	switch source {
	case User:
		p.UserNoteEvent(note, on)
	case File:
		p.FileNoteEvent(note, on)
	}
}

// Reset forgets every requirement. Pending early presses are kept so a press
// made just before resuming still counts.
func (p *PlayAlong) Reset() {
	maps.Clear(p.required)
}

// RequirementsSatisfied reports whether the performer owes no notes
func (p *PlayAlong) RequirementsSatisfied() bool {
	return len(p.required) == 0
}

// RequiredNotes returns the notes the song is waiting for, ascending
func (p *PlayAlong) RequiredNotes() []uint8 {
	notes := maps.Keys(p.required)
	slices.Sort(notes)
	return notes
}

// PendingPresses returns the notes pressed early and not yet claimed, ascending
func (p *PlayAlong) PendingPresses() []uint8 {
	notes := make([]uint8, len(p.pending))
	for i, press := range p.pending {
		notes[i] = press.note
	}
	slices.Sort(notes)
	return notes
}

// Keyboard returns the range of notes the performer can play
func (p *PlayAlong) Keyboard() keyboard.Range {
	return p.keyboard
}

func (p *PlayAlong) findPending(note uint8) int {
	return slices.IndexFunc(p.pending, func(press userPress) bool {
		return press.note == note
	})
}

func (p *PlayAlong) removePending(note uint8) {
	if i := p.findPending(note); i >= 0 {
		p.pending = slices.Delete(p.pending, i, i+1)
	}
}
