// Package cmd implements the orb-sound-system CLI, a thin demonstration
// shell around the orbsound library.
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	deviceIndex     int
	framesPerBuffer int
	verbose         bool
)

var rootCmd = &cobra.Command{
	Use:   "orb-sound-system",
	Short: "Play sounds through the orb-sound-system playback engine",
}

// Execute runs the root command, exiting the process on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().IntVar(&deviceIndex, "device", 0, "PortAudio output device index")
	rootCmd.PersistentFlags().IntVar(&framesPerBuffer, "buffer", 256, "PortAudio frames per callback buffer")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	cobra.OnInitialize(setupLogging)

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(demoCmd)
}

func setupLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}
