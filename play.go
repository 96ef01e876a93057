package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"go-playalong/config"
	"go-playalong/keyboard"
	"go-playalong/midi"
	"go-playalong/player"
	"go-playalong/song"
	"go-playalong/theme"
	"go-playalong/tui"
)

var playFlags struct {
	output     string
	input      string
	human      []int
	mute       []int
	wait       bool
	rangeStart uint8
	rangeEnd   uint8
	save       bool
}

var playCmd = &cobra.Command{
	Use:   "play <file.mid>",
	Short: "Play a MIDI file, optionally expecting some tracks from the keyboard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		applyPlayFlags(cmd, cfg)
		if playFlags.save {
			if err := saveConfig(cfg); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
		}
		return play(args[0], cfg)
	},
}

func init() {
	f := playCmd.Flags()
	f.StringVar(&playFlags.output, "output", "", "output port name (overrides config)")
	f.StringVar(&playFlags.input, "input", "", "input port name pattern (overrides config)")
	f.IntSliceVar(&playFlags.human, "human", nil, "tracks the performer plays")
	f.IntSliceVar(&playFlags.mute, "mute", nil, "tracks to silence")
	f.BoolVar(&playFlags.wait, "wait", false, "hold the song until required notes are played")
	f.Uint8Var(&playFlags.rangeStart, "range-start", 0, "lowest note of the keyboard")
	f.Uint8Var(&playFlags.rangeEnd, "range-end", 0, "highest note of the keyboard")
	f.BoolVar(&playFlags.save, "save", false, "store the given output/input/range/wait settings in the config")
	rootCmd.AddCommand(playCmd)
}

func applyPlayFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("output") {
		c.Output.PortName = playFlags.output
	}
	if flags.Changed("input") {
		c.Input.PortName = playFlags.input
	}
	if flags.Changed("wait") {
		c.Playback.WaitMode = playFlags.wait
	}
	start, end := c.Input.Range.Start, c.Input.Range.End
	if flags.Changed("range-start") {
		start = playFlags.rangeStart
	}
	if flags.Changed("range-end") {
		end = playFlags.rangeEnd
	}
	c.Input.Range = keyboard.New(start, end)
}

// configureTracks applies the default policy, then the per-track overrides
func configureTracks(s *song.Song, c *config.Config, human, mute []int) error {
	s.Config = song.NewConfig(len(s.Tracks), c.Playback.DefaultPlayer)
	for _, idx := range human {
		if idx >= 0 && idx < len(s.Tracks) && !s.Tracks[idx].HasNotes() {
			return fmt.Errorf("track %d has no notes to play", idx)
		}
		if err := s.Config.Set(idx, song.Human); err != nil {
			return err
		}
	}
	for _, idx := range mute {
		if err := s.Config.Set(idx, song.Mute); err != nil {
			return err
		}
	}
	return nil
}

// outputName is the port name of out, empty for the silent output
func outputName(out player.Output) string {
	if conn, ok := out.(*midi.OutputConnection); ok {
		return conn.Name()
	}
	return ""
}

func openOutput(c *config.Config) (player.Output, error) {
	if c.Output.PortName == "" {
		return midi.DummyOutput{}, nil
	}
	return midi.OpenOutput(c.Output.PortName)
}

func play(path string, c *config.Config) error {
	s, err := song.Load(path)
	if err != nil {
		return err
	}
	if err := configureTracks(s, c, playFlags.human, playFlags.mute); err != nil {
		return err
	}

	th, err := theme.Load(c.UI.Palette)
	if err != nil {
		return fmt.Errorf("load palette: %w", err)
	}

	out, err := openOutput(c)
	if err != nil {
		return err
	}
	defer midi.CloseDriver()

	p := player.New(out, s, c.Input.Range, c.LeadIn())
	defer p.Close()

	var deviceMgr *midi.DeviceManager
	if c.Input.PortName != "" {
		deviceMgr = midi.NewDeviceManager(c.Input.PortName)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go deviceMgr.Run(ctx)
	}

	m := tui.NewModel(p, deviceMgr, th, c.Playback.WaitMode)
	m.OutputName = outputName(out)
	prog := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
