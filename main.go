package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"go-playalong/config"
	"go-playalong/debug"
)

var (
	configPath string
	debugLog   bool
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "go-playalong",
	Short: "Play along with MIDI files on your keyboard",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if debugLog {
			if err := debug.Enable(); err != nil {
				return fmt.Errorf("enable debug log: %w", err)
			}
		}

		var err error
		if configPath != "" {
			cfg, err = config.LoadFrom(configPath)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/go-playalong/config.json)")
	rootCmd.PersistentFlags().BoolVar(&debugLog, "debug", false, "write a debug log to ~/.config/go-playalong/debug.log")
}

// saveConfig writes c back to --config, or the default location
func saveConfig(c *config.Config) error {
	if configPath != "" {
		return c.SaveTo(configPath)
	}
	return c.Save()
}

// run executes the CLI and returns the process exit code.
// The debug log is closed before returning since os.Exit skips deferred calls.
func run() int {
	err := rootCmd.Execute()
	debug.Disable()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(run())
}
