package orbsound

import (
	"fmt"
	"sync/atomic"

	"github.com/drgolem/go-portaudio/portaudio"

	"github.com/mabysh/orb-sound-system/internal/engine"
)

// Config configures a Run call. The zero value selects device index 0
// with a 256-frame callback buffer.
type Config struct {
	// DeviceIndex selects the PortAudio output device. 0 is the default
	// output device on most platforms.
	DeviceIndex int
	// FramesPerBuffer is the PortAudio callback block size. 0 picks 256,
	// the same default the teacher's CLI tools use.
	FramesPerBuffer int
}

func (c Config) withDefaults() Config {
	if c.FramesPerBuffer == 0 {
		c.FramesPerBuffer = 256
	}
	return c
}

// Run initializes PortAudio and spins up the playback engine on its own
// pinned OS thread, then blocks until that thread reports the result of
// opening the device — the synchronous init handshake spec.md §4.C
// requires. On success it returns a Handle for submitting commands to the
// running engine; on failure the engine thread has already exited and the
// error (wrapping ErrDeviceErr, ErrStreamErr, or ErrPlayErr) is returned
// directly to the caller instead of only being logged.
//
// Call Handle.Shutdown to stop the engine and release the device.
func Run(cfg Config) (*Handle, error) {
	cfg = cfg.withDefaults()

	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceErr, err)
	}

	sink := engine.NewSink(cfg.DeviceIndex, cfg.FramesPerBuffer)
	down := &atomic.Bool{}
	eng := engine.New(sink, down)

	ready := make(chan error, 1)
	go func() {
		defer portaudio.Terminate()
		eng.Run(ready)
	}()

	if err := <-ready; err != nil {
		return nil, err
	}

	return &Handle{commands: eng.Commands(), down: down}, nil
}
