package midi

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"
)

func TestNoteStateClassifiesPressesAndReleases(t *testing.T) {
	assert := assert.New(t)

	key, on, ok := NoteState(gomidi.NoteOn(0, 60, 100))
	assert.True(ok)
	assert.True(on)
	assert.Equal(uint8(60), key)

	key, on, ok = NoteState(gomidi.NoteOff(2, 61))
	assert.True(ok)
	assert.False(on)
	assert.Equal(uint8(61), key)

	key, on, ok = NoteState(gomidi.NoteOn(0, 62, 0))
	assert.True(ok)
	assert.False(on, "velocity 0 is a release")
	assert.Equal(uint8(62), key)

	_, _, ok = NoteState(gomidi.ControlChange(0, CCSustain, 127))
	assert.False(ok)
}

func TestProgramReadsProgramChange(t *testing.T) {
	ch, program, ok := Program(gomidi.ProgramChange(3, 42))
	require.True(t, ok)
	assert.Equal(t, uint8(3), ch)
	assert.Equal(t, uint8(42), program)

	_, _, ok = Program(gomidi.NoteOn(3, 42, 1))
	assert.False(t, ok)
}

func TestEventNoteOn(t *testing.T) {
	key, ok := Event{Message: gomidi.NoteOn(1, 64, 90)}.NoteOn()
	assert.True(t, ok)
	assert.Equal(t, uint8(64), key)

	_, ok = Event{Message: gomidi.NoteOff(1, 64)}.NoteOn()
	assert.False(t, ok)
}

type recorder struct {
	sent []gomidi.Message
	err  error
}

func (r *recorder) send(msg gomidi.Message) error {
	r.sent = append(r.sent, msg)
	return r.err
}

func TestOutputRewritesChannel(t *testing.T) {
	rec := &recorder{}
	out := NewOutputConnection("test", rec.send)

	out.MidiEvent(5, gomidi.NoteOn(0, 60, 100))

	require.Len(t, rec.sent, 1)
	var ch, key, vel uint8
	require.True(t, rec.sent[0].GetNoteOn(&ch, &key, &vel))
	assert.Equal(t, uint8(5), ch)
	assert.Equal(t, uint8(60), key)
	assert.Equal(t, uint8(100), vel)
}

func TestOutputKeepsMatchingChannelUntouched(t *testing.T) {
	rec := &recorder{}
	out := NewOutputConnection("test", rec.send)
	msg := gomidi.ProgramChange(9, 0)

	out.MidiEvent(9, msg)

	require.Len(t, rec.sent, 1)
	assert.Equal(t, msg, rec.sent[0])
}

func TestStopAllSilencesEveryChannel(t *testing.T) {
	rec := &recorder{}
	out := NewOutputConnection("test", rec.send)

	out.StopAll()

	require.Len(t, rec.sent, NumChannels*3)
	seen := map[uint8]bool{}
	for _, msg := range rec.sent {
		var ch, cc, val uint8
		require.True(t, msg.GetControlChange(&ch, &cc, &val))
		if cc == CCAllNotesOff {
			seen[ch] = true
		}
	}
	assert.Len(t, seen, NumChannels)
}

func TestOutputSwallowsSendErrors(t *testing.T) {
	rec := &recorder{err: errors.New("port closed")}
	out := NewOutputConnection("test", rec.send)

	assert.NotPanics(t, func() {
		out.MidiEvent(0, gomidi.NoteOn(0, 60, 100))
		out.StopAll()
	})
}

func TestMatchPort(t *testing.T) {
	assert := assert.New(t)
	assert.True(MatchPort("Digital Piano MIDI 1", "digital piano"))
	assert.False(MatchPort("Drum Pads MIDI", "piano"))
	assert.False(MatchPort("anything", ""))
}
