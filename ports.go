package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"go-playalong/config"
	"go-playalong/midi"
	"go-playalong/player"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List MIDI input and output ports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		defer midi.CloseDriver()
		ports, err := midi.ScanPorts(midi.PortScanTimeout)
		if err != nil {
			return err
		}
		printPorts(cmd.OutOrStdout(), ports.InNames(), ports.OutNames())
		return nil
	},
}

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Print key presses from the configured keyboard as the play-along engine sees them",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Input.PortName == "" {
			return fmt.Errorf("no input port configured (set input.portName in the config)")
		}
		defer midi.CloseDriver()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		return monitor(ctx, cmd.OutOrStdout(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(portsCmd)
	rootCmd.AddCommand(monitorCmd)
}

func printPorts(w io.Writer, ins, outs []string) {
	fmt.Fprintln(w, "=== MIDI Input Ports ===")
	for i, name := range ins {
		fmt.Fprintf(w, "  %d: %s\n", i, name)
	}
	fmt.Fprintln(w, "\n=== MIDI Output Ports ===")
	for i, name := range outs {
		fmt.Fprintf(w, "  %d: %s\n", i, name)
	}
}

func monitor(ctx context.Context, w io.Writer, c *config.Config) error {
	deviceMgr := midi.NewDeviceManager(c.Input.PortName)
	go deviceMgr.Run(ctx)

	playAlong := player.NewPlayAlong(c.Input.Range)
	notes := make(chan midi.NoteEvent, 64)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	fmt.Fprintf(w, "Waiting for %q (range %s). Ctrl+C to exit.\n", c.Input.PortName, c.Input.Range)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-deviceMgr.Events():
			if !ok {
				return nil
			}
			switch event.Type {
			case midi.DeviceConnected:
				fmt.Fprintf(w, "[%s] connected %s\n", time.Now().Format("15:04:05"), event.ID)
				go func(c midi.Controller) {
					for evt := range c.NoteEvents() {
						notes <- evt
					}
				}(event.Controller)
			case midi.DeviceDisconnected:
				fmt.Fprintf(w, "[%s] disconnected %s (%d still connected)\n",
					time.Now().Format("15:04:05"), event.ID, len(deviceMgr.Controllers()))
			}
		case evt := <-notes:
			fmt.Fprintln(w, describeNote(playAlong, evt))
		case <-ticker.C:
			playAlong.Tick()
		}
	}
}

// describeNote feeds evt to the play-along engine and reports the result
func describeNote(playAlong *player.PlayAlong, evt midi.NoteEvent) string {
	if !playAlong.Keyboard().Contains(evt.Note) {
		return fmt.Sprintf("note %3d outside range %s, ignored", evt.Note, playAlong.Keyboard())
	}
	playAlong.UserNoteEvent(evt.Note, evt.On)
	state := "off"
	if evt.On {
		state = fmt.Sprintf("on  vel=%3d", evt.Velocity)
	}
	return fmt.Sprintf("note %3d ch=%2d %s  pending=%v", evt.Note, evt.Channel+1, state, playAlong.PendingPresses())
}
