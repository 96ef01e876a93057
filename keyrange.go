package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"go-playalong/keyboard"
)

var rangeFlags struct {
	low  int
	high int
}

var rangeCmd = &cobra.Command{
	Use:   "range",
	Short: "Show or adjust the note range of the keyboard",
	Long: `Show the configured keyboard range, or move its bounds one key per step.
Positive steps raise a bound, negative steps lower it. The range never
shrinks below two octaves. Changes are saved to the config.`,
	Example: `  go-playalong range
  go-playalong range --low=3 --high=-12`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		before := cfg.Input.Range
		cfg.Input.Range = stepRange(before, rangeFlags.low, rangeFlags.high)
		if cfg.Input.Range != before {
			if err := saveConfig(cfg); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
		}
		printRange(cmd.OutOrStdout(), cfg.Input.Range)
		return nil
	},
}

func init() {
	rangeCmd.Flags().IntVar(&rangeFlags.low, "low", 0, "steps to move the lowest key")
	rangeCmd.Flags().IntVar(&rangeFlags.high, "high", 0, "steps to move the highest key")
	rootCmd.AddCommand(rangeCmd)
}

// stepRange moves the bounds of r by low and high keys
func stepRange(r keyboard.Range, low, high int) keyboard.Range {
	for ; low > 0; low-- {
		r = r.RaiseStart()
	}
	for ; low < 0; low++ {
		r = r.LowerStart()
	}
	for ; high > 0; high-- {
		r = r.RaiseEnd()
	}
	for ; high < 0; high++ {
		r = r.LowerEnd()
	}
	return r
}

func printRange(w io.Writer, r keyboard.Range) {
	fmt.Fprintf(w, "Keyboard range: %s (%d keys)\n", r, r.Count())
}
