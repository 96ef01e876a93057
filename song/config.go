package song

import (
	"fmt"
	"strings"
)

// PlayerConfig decides who plays a track
type PlayerConfig int

const (
	Auto  PlayerConfig = iota // played by the output
	Human                     // played by the output and expected from the performer
	Mute                      // silent
)

func (p PlayerConfig) String() string {
	switch p {
	case Auto:
		return "auto"
	case Human:
		return "human"
	case Mute:
		return "mute"
	}
	return fmt.Sprintf("PlayerConfig(%d)", int(p))
}

// ParsePlayerConfig parses "auto", "human" or "mute"
func ParsePlayerConfig(s string) (PlayerConfig, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "auto", "":
		return Auto, nil
	case "human":
		return Human, nil
	case "mute":
		return Mute, nil
	}
	return Auto, fmt.Errorf("unknown player config %q", s)
}

func (p PlayerConfig) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *PlayerConfig) UnmarshalText(text []byte) error {
	v, err := ParsePlayerConfig(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// TrackConfig holds per-track session settings
type TrackConfig struct {
	Index  int
	Player PlayerConfig
}

// Config holds the session settings for every track of a song
type Config struct {
	Tracks []TrackConfig
}

// NewConfig returns a config with every track set to player
func NewConfig(tracks int, player PlayerConfig) Config {
	c := Config{Tracks: make([]TrackConfig, tracks)}
	for i := range c.Tracks {
		c.Tracks[i] = TrackConfig{Index: i, Player: player}
	}
	return c
}

// Player returns the policy for track. Unknown tracks are muted.
func (c Config) Player(track int) PlayerConfig {
	if track < 0 || track >= len(c.Tracks) {
		return Mute
	}
	return c.Tracks[track].Player
}

// Set changes the policy of track
func (c *Config) Set(track int, player PlayerConfig) error {
	if track < 0 || track >= len(c.Tracks) {
		return fmt.Errorf("track %d out of range (song has %d tracks)", track, len(c.Tracks))
	}
	c.Tracks[track].Player = player
	return nil
}
