// Package playback is the time-indexed event source behind the player.
//
// Playback time starts at zero. Song events are scheduled LeadIn after it, so a
// song event at song time s is emitted once playback time passes s + LeadIn.
package playback

import (
	"sort"
	"time"

	"go-playalong/midi"
)

// DefaultLeadIn is the silence played before the first song event
const DefaultLeadIn = 3 * time.Second

// State walks a time-ordered event list. Seeking is a binary search, never a replay.
type State struct {
	events  []midi.Event
	leadIn  time.Duration
	length  time.Duration
	running time.Duration
	next    int // index of the first event not yet emitted
	paused  bool
}

// New creates a playback state over events, which must be ordered by Timestamp
func New(leadIn time.Duration, events []midi.Event) *State {
	if leadIn < 0 {
		leadIn = 0
	}
	s := &State{events: events, leadIn: leadIn, length: leadIn}
	if n := len(events); n > 0 {
		s.length = leadIn + events[n-1].Timestamp
	}
	return s
}

// Update advances time by delta and returns the events crossed, in order.
// Returns nil while paused.
func (s *State) Update(delta time.Duration) []midi.Event {
	if s.paused {
		return nil
	}
	if delta > 0 {
		s.running = saturatingAdd(s.running, delta)
	}

	start := s.next
	for s.next < len(s.events) && s.at(s.next) < s.running {
		s.next++
	}
	if start == s.next {
		return nil
	}
	return s.events[start:s.next]
}

// SetTime moves to t, clamped to [0, Length]. Events at or after t are still to come.
func (s *State) SetTime(t time.Duration) {
	if t < 0 {
		t = 0
	}
	if t > s.length {
		t = s.length
	}
	s.running = t
	s.next = sort.Search(len(s.events), func(i int) bool {
		return s.at(i) >= t
	})
}

func (s *State) at(i int) time.Duration {
	return s.events[i].Timestamp + s.leadIn
}

func (s *State) Time() time.Duration {
	return s.running
}

// Length is the playback time of the last event (lead-in included)
func (s *State) Length() time.Duration {
	return s.length
}

func (s *State) LeadIn() time.Duration {
	return s.leadIn
}

// Percentage returns Time/Length, 0 for an empty song
func (s *State) Percentage() float64 {
	if s.length <= 0 {
		return 0
	}
	return float64(s.running) / float64(s.length)
}

// IsFinished reports whether every event has been emitted
func (s *State) IsFinished() bool {
	return s.next >= len(s.events) && s.running >= s.length
}

func (s *State) IsPaused() bool {
	return s.paused
}

func (s *State) Pause() {
	s.paused = true
}

func (s *State) Resume() {
	s.paused = false
}

func saturatingAdd(a, b time.Duration) time.Duration {
	if b > 0 && a > maxDuration-b {
		return maxDuration
	}
	return a + b
}

const maxDuration = time.Duration(1<<63 - 1)
