// Package player drives song playback and play-along reconciliation.
package player

import (
	"math"
	"time"

	"go-playalong/debug"
	"go-playalong/keyboard"
	"go-playalong/midi"
	"go-playalong/playback"
	"go-playalong/song"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// Source is a time-indexed event source that supports arbitrary seeking
type Source interface {
	// Update advances by delta and returns the events crossed. Nil while paused.
	Update(delta time.Duration) []midi.Event
	SetTime(t time.Duration)
	Time() time.Duration
	Length() time.Duration
	LeadIn() time.Duration
	Percentage() float64
	IsFinished() bool
	IsPaused() bool
	Pause()
	Resume()
}

// Output is the sound sink
type Output interface {
	MidiEvent(channel uint8, msg gomidi.Message)
	StopAll()
}

// Player owns a playback session: the song, its event source, the output and
// the play-along state. It is driven from a single loop and is not safe for
// concurrent use. Close must be called when the session ends.
type Player struct {
	playback  Source
	output    Output
	song      *song.Song
	playAlong *PlayAlong
	closed    bool
}

// New starts a session over s with the given lead-in, positioned at time zero
func New(output Output, s *song.Song, kb keyboard.Range, leadIn time.Duration) *Player {
	return NewWithSource(output, s, playback.New(leadIn, s.Events()), kb)
}

// NewWithSource starts a session over a custom event source
func NewWithSource(output Output, s *song.Song, src Source, kb keyboard.Range) *Player {
	p := &Player{
		playback:  src,
		output:    output,
		song:      s,
		playAlong: NewPlayAlong(kb),
	}
	// Programs left over from a previous song must not leak into this one
	p.SetTime(0)
	p.Update(0)
	return p
}

// Update runs one frame. While playing it advances by delta and dispatches the
// crossed events by track policy; the events are returned for display.
func (p *Player) Update(delta time.Duration) []midi.Event {
	p.playAlong.Tick()

	events := p.playback.Update(delta)
	for _, event := range events {
		switch p.song.Config.Player(event.Track) {
		case song.Auto:
			p.output.MidiEvent(event.Channel, event.Message)
		case song.Human:
			p.output.MidiEvent(event.Channel, event.Message)
			p.playAlong.MidiEvent(File, event.Message)
		case song.Mute:
		}
	}
	return events
}

// UserEvent handles live input from the performer: echoed to the output, then reconciled
func (p *Player) UserEvent(channel uint8, msg gomidi.Message) {
	p.output.MidiEvent(channel, msg)
	p.playAlong.MidiEvent(User, msg)
}

// Close silences the output. Only the first call has an effect.
func (p *Player) Close() {
	if p.closed {
		return
	}
	p.closed = true
	p.output.StopAll()
	debug.Log("player", "closed %s", p.song.Name)
}

func (p *Player) TogglePause() {
	if p.playback.IsPaused() {
		p.Resume()
	} else {
		p.Pause()
	}
}

func (p *Player) Pause() {
	p.output.StopAll()
	p.playback.Pause()
	debug.Log("player", "pause at %v", p.playback.Time())
}

// Resume continues playback. Requirements from before the pause are dropped.
func (p *Player) Resume() {
	p.playback.Resume()
	p.playAlong.Reset()
	debug.Log("player", "resume at %v", p.playback.Time())
}

// SetTime jumps to t. Skipped events are not played; instead every channel
// gets the program it would have had in continuous playback.
func (p *Player) SetTime(t time.Duration) {
	p.playback.SetTime(t)

	// Discard everything the source reports for the jump itself
	_ = p.playback.Update(0)

	p.output.StopAll()
	p.sendProgramsAt(p.playback.Time())
	debug.Log("seek", "time=%v", p.playback.Time())
}

// Rewind moves by deltaMs milliseconds (negative goes back), saturating at zero
func (p *Player) Rewind(deltaMs int64) {
	p.SetTime(shift(p.playback.Time(), deltaMs))
}

func (p *Player) sendProgramsAt(t time.Duration) {
	songTime := t - p.playback.LeadIn()
	if songTime < 0 {
		songTime = 0
	}
	for ch, program := range p.song.Programs.ProgramsAt(songTime) {
		p.output.MidiEvent(uint8(ch), gomidi.ProgramChange(uint8(ch), program))
	}
}

// PercentageToTime maps [0,1] onto [0, Length]. Negative results clamp to zero.
func (p *Player) PercentageToTime(percentage float64) time.Duration {
	t := percentage * float64(p.playback.Length())
	if t <= 0 || math.IsNaN(t) {
		return 0
	}
	if t >= float64(math.MaxInt64) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(t)
}

// TimeToPercentage maps [0, Length] onto [0,1]. An empty song is at 0.
func (p *Player) TimeToPercentage(t time.Duration) float64 {
	length := p.playback.Length()
	if length <= 0 {
		return 0
	}
	return math.Max(0, float64(t)/float64(length))
}

func (p *Player) SetPercentageTime(percentage float64) {
	p.SetTime(p.PercentageToTime(percentage))
}

func (p *Player) Percentage() float64 {
	return p.playback.Percentage()
}

func (p *Player) Song() *song.Song {
	return p.song
}

func (p *Player) PlayAlong() *PlayAlong {
	return p.playAlong
}

func (p *Player) Time() time.Duration {
	return p.playback.Time()
}

// TimeWithoutLeadIn is the song time; negative during the lead-in
func (p *Player) TimeWithoutLeadIn() time.Duration {
	return p.playback.Time() - p.playback.LeadIn()
}

func (p *Player) LeadIn() time.Duration {
	return p.playback.LeadIn()
}

func (p *Player) Length() time.Duration {
	return p.playback.Length()
}

func (p *Player) IsPaused() bool {
	return p.playback.IsPaused()
}

// IsFinished reports whether the last event of the song has been played
func (p *Player) IsFinished() bool {
	return p.playback.IsFinished()
}

// shift adds deltaMs to t without going below zero or overflowing
func shift(t time.Duration, deltaMs int64) time.Duration {
	if deltaMs < 0 {
		// -math.MinInt64 overflows, so go through uint64
		back := uint64(-(deltaMs + 1)) + 1
		if back >= uint64(math.MaxInt64)/uint64(time.Millisecond) {
			return 0
		}
		d := time.Duration(back) * time.Millisecond
		if d >= t {
			return 0
		}
		return t - d
	}

	if deltaMs >= math.MaxInt64/int64(time.Millisecond) {
		return time.Duration(math.MaxInt64)
	}
	d := time.Duration(deltaMs) * time.Millisecond
	if t > time.Duration(math.MaxInt64)-d {
		return time.Duration(math.MaxInt64)
	}
	return t + d
}
