package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	orbsound "github.com/mabysh/orb-sound-system"
	"github.com/mabysh/orb-sound-system/pkg/command"
)

var (
	playPriority string
	playMaxDelay time.Duration
)

var playCmd = &cobra.Command{
	Use:   "play <file>",
	Short: "Play a single sound file until interrupted or 5 minutes pass (end of playback is not detected)",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&playPriority, "priority", "default", "urgent, high, or default")
	playCmd.Flags().DurationVar(&playMaxDelay, "max-delay", 0, "discard the request if not started within this long (0 disables)")
}

func runPlay(cmd *cobra.Command, args []string) error {
	priority, err := parsePriority(playPriority)
	if err != nil {
		return err
	}

	handle, err := orbsound.Run(orbsound.Config{DeviceIndex: deviceIndex, FramesPerBuffer: framesPerBuffer})
	if err != nil {
		return fmt.Errorf("failed to start sound system: %w", err)
	}
	defer handle.Shutdown()

	var maxDelay *time.Duration
	if playMaxDelay > 0 {
		maxDelay = &playMaxDelay
	}

	if err := handle.PlaySound(args[0], priority, maxDelay); err != nil {
		return fmt.Errorf("failed to submit play request: %w", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("signal received, stopping", "signal", sig)
	case <-time.After(5 * time.Minute):
		slog.Warn("5-minute play timeout reached, stopping")
	}

	return nil
}

func parsePriority(s string) (command.Priority, error) {
	switch s {
	case "urgent":
		return command.Urgent, nil
	case "high":
		return command.High, nil
	case "default":
		return command.Default, nil
	default:
		return 0, fmt.Errorf("unknown priority %q (want urgent, high, or default)", s)
	}
}
