package song

import (
	"sort"
	"time"

	"go-playalong/midi"
)

type programChange struct {
	at      time.Duration
	channel uint8
	program uint8
}

// ProgramTrack is the timeline of program changes across all channels
type ProgramTrack struct {
	changes []programChange // ordered by time, file order kept for ties
}

// NewProgramTrack collects the program changes from events
func NewProgramTrack(events []midi.Event) *ProgramTrack {
	p := &ProgramTrack{}
	for _, e := range events {
		ch, program, ok := midi.Program(e.Message)
		if !ok {
			continue
		}
		p.changes = append(p.changes, programChange{at: e.Timestamp, channel: ch, program: program})
	}
	sort.SliceStable(p.changes, func(i, j int) bool {
		return p.changes[i].at < p.changes[j].at
	})
	return p
}

// ProgramsAt returns the active program of every channel at song time t.
// Changes at exactly t count. Channels without a change before t are on program 0.
func (p *ProgramTrack) ProgramsAt(t time.Duration) [midi.NumChannels]uint8 {
	var programs [midi.NumChannels]uint8
	for _, c := range p.changes {
		if c.at > t {
			break
		}
		programs[c.channel&0x0F] = c.program
	}
	return programs
}

// Len returns the number of program changes
func (p *ProgramTrack) Len() int {
	return len(p.changes)
}
