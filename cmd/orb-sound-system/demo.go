package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	orbsound "github.com/mabysh/orb-sound-system"
	"github.com/mabysh/orb-sound-system/pkg/command"
)

var demoSoundPath string

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Play, pause, resume, and adjust volume on a sample file as a smoke test",
	RunE:  runDemo,
}

func init() {
	demoCmd.Flags().StringVar(&demoSoundPath, "file", "sounds/test.wav", "sound file to play")
}

// runDemo replays the reference usage sequence: play, pause, resume, adjust
// volume, set volume, each separated by a pause so the effect is audible.
func runDemo(cmd *cobra.Command, args []string) error {
	handle, err := orbsound.Run(orbsound.Config{DeviceIndex: deviceIndex, FramesPerBuffer: framesPerBuffer})
	if err != nil {
		return fmt.Errorf("failed to start sound system: %w", err)
	}
	defer handle.Shutdown()

	if err := handle.PlaySound(demoSoundPath, command.High, nil); err != nil {
		return fmt.Errorf("play: %w", err)
	}
	time.Sleep(500 * time.Millisecond)

	slog.Info("pausing")
	if err := handle.Pause(); err != nil {
		return fmt.Errorf("pause: %w", err)
	}
	time.Sleep(500 * time.Millisecond)

	slog.Info("resuming")
	if err := handle.Resume(); err != nil {
		return fmt.Errorf("resume: %w", err)
	}
	time.Sleep(500 * time.Millisecond)

	slog.Info("adjusting volume", "delta", 1.0)
	if err := handle.AdjustVolume(1.0); err != nil {
		return fmt.Errorf("adjust volume: %w", err)
	}
	time.Sleep(500 * time.Millisecond)

	slog.Info("setting volume", "value", 0.5)
	if err := handle.SetVolume(0.5); err != nil {
		return fmt.Errorf("set volume: %w", err)
	}
	time.Sleep(3 * time.Second)

	return nil
}
