package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"go-playalong/keyboard"
	"go-playalong/song"
)

// OutputConfig defines the synth MIDI output
type OutputConfig struct {
	PortName string `json:"portName,omitempty"` // empty = no sound
}

// InputConfig defines the performer's keyboard
type InputConfig struct {
	PortName string         `json:"portName,omitempty"` // case-insensitive substring of the port name
	Range    keyboard.Range `json:"range"`
}

// PlaybackConfig stores playback preferences
type PlaybackConfig struct {
	LeadInMs      int               `json:"leadInMs"`
	WaitMode      bool              `json:"waitMode,omitempty"`
	DefaultPlayer song.PlayerConfig `json:"defaultPlayer"`
}

// UIConfig stores UI preferences
type UIConfig struct {
	Palette string `json:"palette,omitempty"` // GIMP .gpl file, empty = built-in
}

// Config is the main configuration structure
type Config struct {
	Output   OutputConfig   `json:"output,omitempty"`
	Input    InputConfig    `json:"input"`
	Playback PlaybackConfig `json:"playback"`
	UI       UIConfig       `json:"ui,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Input: InputConfig{
			Range: keyboard.Standard88(),
		},
		Playback: PlaybackConfig{
			LeadInMs:      3000,
			DefaultPlayer: song.Auto,
		},
	}
}

// LeadIn returns the configured lead-in as a duration
func (c *Config) LeadIn() time.Duration {
	if c.Playback.LeadInMs < 0 {
		return 0
	}
	return time.Duration(c.Playback.LeadInMs) * time.Millisecond
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-playalong"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path, or returns defaults if it does not exist.
// Missing fields keep their default values.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.Input.Range = keyboard.New(cfg.Input.Range.Start, cfg.Input.Range.End)
	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating its directory
func (c *Config) SaveTo(path string) error {
	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
