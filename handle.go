package orbsound

import (
	"sync/atomic"
	"time"

	"github.com/mabysh/orb-sound-system/pkg/command"
)

// Handle is Component D: a small, cheap-to-clone client for submitting
// commands to a running sound system from any goroutine. It never blocks
// the caller beyond the cost of a channel send, and it never panics — the
// only failure it can report is ErrSystemDown.
type Handle struct {
	commands chan<- command.Command
	down     *atomic.Bool
}

// PlaySound submits a request to play the file at path. priority and an
// optional maxDelay (nil for no deadline) are forwarded to the arbiter
// unchanged.
func (h *Handle) PlaySound(path string, priority command.Priority, maxDelay *time.Duration) error {
	return h.send(command.Command{
		Kind:        command.PlaySound,
		PlayRequest: command.NewPlayRequest(path, priority, maxDelay),
	})
}

// SetVolume sets the sink's linear volume multiplier.
func (h *Handle) SetVolume(value float32) error {
	return h.send(command.Command{Kind: command.SetVolume, Volume: value})
}

// AdjustVolume adds delta to the sink's current volume.
func (h *Handle) AdjustVolume(delta float32) error {
	return h.send(command.Command{Kind: command.AdjustVolume, Volume: delta})
}

// Pause freezes output without discarding buffered audio.
func (h *Handle) Pause() error {
	return h.send(command.Command{Kind: command.Pause})
}

// Resume un-freezes output, continuing from the same sample Pause left off
// at.
func (h *Handle) Resume() error {
	return h.send(command.Command{Kind: command.Resume})
}

// Shutdown asks the engine to stop. Once the engine has consumed the
// command, every Handle cloned from the same system observes ErrSystemDown.
func (h *Handle) Shutdown() error {
	return h.send(command.Command{Kind: command.Shutdown})
}

func (h *Handle) send(cmd command.Command) error {
	if h.down.Load() {
		return ErrSystemDown
	}
	select {
	case h.commands <- cmd:
		return nil
	default:
		// The channel is sized generously for human-timescale request
		// volume (SPEC_FULL.md §3); a full channel here means the engine
		// has stopped draining it, which only happens once it's down.
		if h.down.Load() {
			return ErrSystemDown
		}
		h.commands <- cmd
		return nil
	}
}
