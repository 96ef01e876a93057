// Package song holds a decoded MIDI song and its per-track session config.
package song

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go-playalong/midi"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// Track is one track of a song
type Track struct {
	Index  int
	Name   string
	Events []midi.Event
}

// HasNotes returns true if the track contains at least one key press
func (t *Track) HasNotes() bool {
	for _, e := range t.Events {
		if _, ok := e.NoteOn(); ok {
			return true
		}
	}
	return false
}

// Song is an ordered list of tracks plus the merged, time-ordered event list
type Song struct {
	Name     string
	Tracks   []Track
	Config   Config
	Programs *ProgramTrack

	events []midi.Event
}

// New builds a song from tracks. Event track ids are set from the track index
// and every track starts out as Auto.
func New(name string, tracks []Track) *Song {
	s := &Song{Name: name, Tracks: tracks}
	for i := range s.Tracks {
		s.Tracks[i].Index = i
		for j := range s.Tracks[i].Events {
			s.Tracks[i].Events[j].Track = i
		}
		s.events = append(s.events, s.Tracks[i].Events...)
	}
	sort.SliceStable(s.events, func(i, j int) bool {
		return s.events[i].Timestamp < s.events[j].Timestamp
	})
	s.Config = NewConfig(len(s.Tracks), Auto)
	s.Programs = NewProgramTrack(s.events)
	return s
}

// Events returns every channel event of the song ordered by time
func (s *Song) Events() []midi.Event {
	return s.events
}

// Length returns the time of the last event
func (s *Song) Length() time.Duration {
	if len(s.events) == 0 {
		return 0
	}
	return s.events[len(s.events)-1].Timestamp
}

// Load decodes a Standard MIDI File
func Load(path string) (s *Song, err error) {
	// smf can panic on malformed input
	defer func() {
		if r := recover(); r != nil {
			s = nil
			err = fmt.Errorf("decode %s: %v", path, r)
		}
	}()

	file, err := smf.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read midi file: %w", err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return FromSMF(name, file), nil
}

// FromSMF converts a decoded file into a song. Only channel messages are kept;
// times are resolved through the file's tempo map.
func FromSMF(name string, file *smf.SMF) *Song {
	tracks := make([]Track, 0, len(file.Tracks))
	for i, events := range file.Tracks {
		track := Track{Index: i}
		var absTicks int64
		for _, ev := range events {
			absTicks += int64(ev.Delta)

			var trackName string
			if ev.Message.GetMetaTrackName(&trackName) {
				track.Name = trackName
				continue
			}

			msg := gomidi.Message(ev.Message)
			var channel uint8
			if !msg.GetChannel(&channel) {
				continue
			}

			track.Events = append(track.Events, midi.Event{
				Track:     i,
				Channel:   channel,
				Timestamp: time.Duration(file.TimeAt(absTicks)) * time.Microsecond,
				Message:   msg,
			})
		}
		tracks = append(tracks, track)
	}
	return New(name, tracks)
}
