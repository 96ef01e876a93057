package player

import (
	"math"
	"testing"
	"time"

	"go-playalong/keyboard"
	"go-playalong/midi"
	"go-playalong/song"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"
)

type sent struct {
	channel uint8
	msg     gomidi.Message
}

type fakeOutput struct {
	sent  []sent
	stops int
}

func (o *fakeOutput) MidiEvent(channel uint8, msg gomidi.Message) {
	o.sent = append(o.sent, sent{channel: channel, msg: msg})
}

func (o *fakeOutput) StopAll() {
	o.stops++
}

func (o *fakeOutput) reset() {
	o.sent = nil
	o.stops = 0
}

func (o *fakeOutput) notes() []uint8 {
	var keys []uint8
	for _, s := range o.sent {
		if key, on, ok := midi.NoteState(s.msg); ok && on {
			keys = append(keys, key)
		}
	}
	return keys
}

// programs returns the last program sent on every channel
func (o *fakeOutput) programs() map[uint8]uint8 {
	out := map[uint8]uint8{}
	for _, s := range o.sent {
		if ch, program, ok := midi.Program(s.msg); ok {
			out[ch] = program
		}
	}
	return out
}

func at(ms int, msg gomidi.Message) midi.Event {
	var ch uint8
	msg.GetChannel(&ch)
	return midi.Event{Channel: ch, Timestamp: time.Duration(ms) * time.Millisecond, Message: msg}
}

// threeTracks has an auto, a human and a muted track
func threeTracks() *song.Song {
	s := song.New("three", []song.Track{
		{Events: []midi.Event{
			at(0, gomidi.ProgramChange(0, 1)),
			at(100, gomidi.NoteOn(0, 48, 100)),
			at(300, gomidi.NoteOff(0, 48)),
		}},
		{Events: []midi.Event{
			at(100, gomidi.NoteOn(1, 60, 100)),
			at(300, gomidi.NoteOff(1, 60)),
		}},
		{Events: []midi.Event{
			at(100, gomidi.NoteOn(2, 72, 100)),
		}},
	})
	s.Config.Set(1, song.Human)
	s.Config.Set(2, song.Mute)
	return s
}

func newTestPlayer(t *testing.T, s *song.Song, leadIn time.Duration) (*Player, *fakeOutput, *fakeClock) {
	t.Helper()
	out := &fakeOutput{}
	p := New(out, s, keyboard.Full(), leadIn)
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	p.playAlong.now = clock.Now
	return p, out, clock
}

func TestNewResetsOutputAndPrograms(t *testing.T) {
	_, out, _ := newTestPlayer(t, threeTracks(), 0)

	assert.Equal(t, 1, out.stops)
	programs := out.programs()
	assert.Len(t, programs, midi.NumChannels)
	assert.Equal(t, uint8(1), programs[0])
	assert.Equal(t, uint8(0), programs[5])
	assert.Empty(t, out.notes())
}

func TestUpdateRoutesByTrackPolicy(t *testing.T) {
	p, out, _ := newTestPlayer(t, threeTracks(), 0)
	out.reset()

	events := p.Update(150 * time.Millisecond)

	assert.Len(t, events, 4, "muted events are still returned")
	assert.Equal(t, []uint8{48, 60}, out.notes())
	assert.Equal(t, []uint8{60}, p.PlayAlong().RequiredNotes())

	p.Update(200 * time.Millisecond)
	assert.True(t, p.PlayAlong().RequirementsSatisfied(), "file note off clears the requirement")
}

func TestUpdateForwardsChannelUnchanged(t *testing.T) {
	p, out, _ := newTestPlayer(t, threeTracks(), 0)
	out.reset()

	p.Update(150 * time.Millisecond)

	for _, s := range out.sent {
		var ch uint8
		require.True(t, s.msg.GetChannel(&ch))
		assert.Equal(t, ch, s.channel)
	}
}

func TestPauseResume(t *testing.T) {
	p, out, _ := newTestPlayer(t, threeTracks(), 0)
	p.Update(150 * time.Millisecond)
	require.False(t, p.PlayAlong().RequirementsSatisfied())
	out.reset()

	p.Pause()
	assert.True(t, p.IsPaused())
	assert.Equal(t, 1, out.stops)

	for i := 0; i < 10; i++ {
		assert.Empty(t, p.Update(100*time.Millisecond))
	}
	assert.Empty(t, out.sent)
	assert.Equal(t, 150*time.Millisecond, p.Time())

	p.Resume()
	assert.False(t, p.IsPaused())
	assert.True(t, p.PlayAlong().RequirementsSatisfied())
}

func TestTogglePause(t *testing.T) {
	p, _, _ := newTestPlayer(t, threeTracks(), 0)

	p.TogglePause()
	assert.True(t, p.IsPaused())
	p.TogglePause()
	assert.False(t, p.IsPaused())
}

func TestSeekDoesNotChangePauseState(t *testing.T) {
	p, _, _ := newTestPlayer(t, threeTracks(), 0)

	p.Pause()
	p.SetTime(200 * time.Millisecond)
	assert.True(t, p.IsPaused())

	p.Resume()
	p.Rewind(-100)
	assert.False(t, p.IsPaused())
}

func manyPrograms() *song.Song {
	var events []midi.Event
	for i := 0; i < 50; i++ {
		events = append(events,
			at(i*100, gomidi.ProgramChange(0, uint8(i))),
			at(i*100+50, gomidi.NoteOn(0, 60, 100)),
		)
	}
	events = append(events, at(1000, gomidi.ProgramChange(9, 25)))
	return song.New("programs", []song.Track{{Events: events}})
}

func TestSetTimeReplaysActivePrograms(t *testing.T) {
	p, out, _ := newTestPlayer(t, manyPrograms(), 0)

	for _, tc := range []struct {
		ms      int
		program uint8
		drums   uint8
	}{
		{ms: 4220, program: 42, drums: 25},
		{ms: 300, program: 3, drums: 0},
		{ms: 1000, program: 10, drums: 25},
		{ms: 0, program: 0, drums: 0},
	} {
		out.reset()
		p.SetTime(time.Duration(tc.ms) * time.Millisecond)

		assert.Equal(t, 1, out.stops)
		assert.Empty(t, out.notes(), "skipped events are not played")
		programs := out.programs()
		assert.Len(t, programs, midi.NumChannels)
		assert.Equal(t, tc.program, programs[0], "channel 0 at %dms", tc.ms)
		assert.Equal(t, tc.drums, programs[9], "channel 9 at %dms", tc.ms)
	}
}

func TestSetTimeResumesFromNewPosition(t *testing.T) {
	p, out, _ := newTestPlayer(t, manyPrograms(), 0)

	p.SetTime(4220 * time.Millisecond)
	out.reset()

	p.Update(100 * time.Millisecond)
	assert.Equal(t, []uint8{60}, out.notes())
	assert.Equal(t, uint8(43), out.programs()[0])
}

func TestProgramReplayAccountsForLeadIn(t *testing.T) {
	p, out, _ := newTestPlayer(t, manyPrograms(), time.Second)

	out.reset()
	p.SetTime(500 * time.Millisecond)
	assert.Equal(t, uint8(0), out.programs()[0], "still in the lead-in")

	out.reset()
	p.SetTime(1350 * time.Millisecond)
	assert.Equal(t, uint8(3), out.programs()[0])
}

func TestRewindSaturatesAtZero(t *testing.T) {
	p, _, _ := newTestPlayer(t, manyPrograms(), 0)

	p.SetTime(time.Second)
	p.Rewind(-300)
	assert.Equal(t, 700*time.Millisecond, p.Time())

	p.Rewind(-5000)
	assert.Equal(t, time.Duration(0), p.Time())

	for i := 0; i < 3; i++ {
		p.Rewind(math.MinInt64)
		assert.Equal(t, time.Duration(0), p.Time())
	}
}

func TestRewindForwardClampsToLength(t *testing.T) {
	p, _, _ := newTestPlayer(t, manyPrograms(), 0)

	p.Rewind(250)
	assert.Equal(t, 250*time.Millisecond, p.Time())

	p.Rewind(math.MaxInt64)
	assert.Equal(t, p.Length(), p.Time())
}

func TestShift(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(time.Duration(0), shift(0, -1))
	assert.Equal(time.Duration(0), shift(time.Second, math.MinInt64))
	assert.Equal(time.Duration(math.MaxInt64), shift(time.Second, math.MaxInt64))
	assert.Equal(time.Duration(math.MaxInt64), shift(time.Duration(math.MaxInt64-1), 1))
	assert.Equal(1500*time.Millisecond, shift(time.Second, 500))
}

func TestPercentageConversions(t *testing.T) {
	p, _, _ := newTestPlayer(t, manyPrograms(), time.Second)
	length := p.Length()
	require.Equal(t, time.Second+4950*time.Millisecond, length)

	assert.Equal(t, time.Duration(0), p.PercentageToTime(0))
	assert.Equal(t, length, p.PercentageToTime(1))
	assert.Equal(t, time.Duration(0), p.PercentageToTime(-0.5))
	assert.InDelta(t, 0.5, p.TimeToPercentage(length/2), 1e-9)

	p.SetPercentageTime(0.5)
	assert.InDelta(t, 0.5, p.Percentage(), 1e-6)
	assert.Equal(t, p.Time()-time.Second, p.TimeWithoutLeadIn())
}

func TestCloseStopsOutputOnce(t *testing.T) {
	p, out, _ := newTestPlayer(t, threeTracks(), 0)
	out.reset()

	p.Close()
	p.Close()

	assert.Equal(t, 1, out.stops)
}

func TestCloseRunsOnPanic(t *testing.T) {
	p, out, _ := newTestPlayer(t, threeTracks(), 0)
	out.reset()

	assert.Panics(t, func() {
		defer p.Close()
		panic("host loop crashed")
	})
	assert.Equal(t, 1, out.stops)
}

func TestUserEventEchoesAndReconciles(t *testing.T) {
	p, out, clock := newTestPlayer(t, threeTracks(), 0)
	out.reset()

	// early press of the human note, 50ms before the song asks for it
	p.Update(50 * time.Millisecond)
	p.UserEvent(0, gomidi.NoteOn(0, 60, 80))
	assert.Equal(t, []uint8{60}, out.notes())

	clock.Advance(50 * time.Millisecond)
	p.Update(60 * time.Millisecond)
	assert.True(t, p.PlayAlong().RequirementsSatisfied())
}

func TestUpdateExpiresEarlyPresses(t *testing.T) {
	p, _, clock := newTestPlayer(t, threeTracks(), 0)

	p.UserEvent(0, gomidi.NoteOn(0, 60, 80))
	clock.Advance(Leeway + time.Millisecond)
	p.Update(150 * time.Millisecond)

	assert.Equal(t, []uint8{60}, p.PlayAlong().RequiredNotes())
}

func TestSeekKeepsRecordedPressTimes(t *testing.T) {
	p, _, clock := newTestPlayer(t, threeTracks(), 0)

	p.UserEvent(0, gomidi.NoteOn(0, 60, 80))
	clock.Advance(300 * time.Millisecond)
	p.Rewind(-10000)
	p.Update(0)
	assert.Equal(t, []uint8{60}, p.PlayAlong().PendingPresses())

	clock.Advance(201 * time.Millisecond)
	p.Update(0)
	assert.Empty(t, p.PlayAlong().PendingPresses())
}

func TestIsFinishedAfterLastEvent(t *testing.T) {
	p, _, _ := newTestPlayer(t, manyPrograms(), time.Second)
	assert.False(t, p.IsFinished())

	p.SetTime(p.Length())
	assert.False(t, p.IsFinished(), "the last event is still to come")

	p.Update(time.Millisecond)
	assert.True(t, p.IsFinished())
	assert.Equal(t, 1.0, math.Min(p.Percentage(), 1))

	p.SetTime(0)
	assert.False(t, p.IsFinished())
}
