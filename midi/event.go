package midi

import (
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// Channel mode controllers sent when silencing an output
const (
	CCSustain     uint8 = 64
	CCAllSoundOff uint8 = 120
	CCAllNotesOff uint8 = 123
)

// NumChannels is the number of MIDI channels on a port
const NumChannels = 16

// Event is a MIDI message produced by a song, tagged with the track it came from
type Event struct {
	Track     int           // index into the song's tracks
	Channel   uint8         // 0-15
	Timestamp time.Duration // song time, lead-in not included
	Message   gomidi.Message
}

// NoteOn reports whether the event presses a key
func (e Event) NoteOn() (key uint8, ok bool) {
	key, on, ok := NoteState(e.Message)
	return key, ok && on
}

// NoteState classifies msg as a key press or release.
// A NoteOn with velocity 0 counts as a release.
func NoteState(msg gomidi.Message) (key uint8, on bool, ok bool) {
	var channel, velocity uint8
	switch {
	case msg.GetNoteOn(&channel, &key, &velocity):
		return key, velocity > 0, true
	case msg.GetNoteOff(&channel, &key, &velocity):
		return key, false, true
	}
	return 0, false, false
}

// Program returns the program number if msg is a program change
func Program(msg gomidi.Message) (channel, program uint8, ok bool) {
	ok = msg.GetProgramChange(&channel, &program)
	return channel, program, ok
}

// SilenceChannel returns the messages that stop every sounding note on channel
func SilenceChannel(channel uint8) []gomidi.Message {
	return []gomidi.Message{
		gomidi.ControlChange(channel, CCSustain, 0),
		gomidi.ControlChange(channel, CCAllSoundOff, 0),
		gomidi.ControlChange(channel, CCAllNotesOff, 0),
	}
}
