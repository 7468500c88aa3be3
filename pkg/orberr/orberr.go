// Package orberr defines the sound system's error taxonomy (spec.md §7).
// It lives below both internal/engine, which constructs the file, stream
// and playback errors on the paths that can actually fail, and the root
// orbsound package, which wraps ErrDeviceErr itself and re-exports all of
// them as its public API — a shared leaf package avoids a cycle between
// the two.
package orberr

import (
	"errors"
	"fmt"
)

// SoundFileError wraps a problem with one specific sound file path — a
// missing file, an unsupported format, or a decode failure. It never
// brings the system down; a bad path just fails that one PlaySound.
type SoundFileError struct {
	Path string
	Err  error
}

func (e *SoundFileError) Error() string {
	return fmt.Sprintf("sound file error: %s: %v", e.Path, e.Err)
}

func (e *SoundFileError) Unwrap() error {
	return e.Err
}

// Sentinel wrap targets for the remaining §7 error categories. A returned
// error always wraps exactly one of these via %w; classify with
// errors.Is(err, orberr.ErrStreamErr) and so on.
var (
	// ErrDeviceErr marks a failure to acquire the audio device itself
	// (portaudio.Initialize, or the underlying device enumeration it
	// depends on).
	ErrDeviceErr = errors.New("sound device error")

	// ErrStreamErr marks a failure to open the device's audio stream
	// (portaudio.OpenCallback), distinct from ErrPlayErr below.
	ErrStreamErr = errors.New("sound stream error")

	// ErrPlayErr marks a failure to start playback on an already-open
	// stream (portaudio.StartStream) — the Go analogue of the original's
	// Sink::try_new failing against an already-open output stream.
	ErrPlayErr = errors.New("playback error")

	// ErrSystemDown is returned by every Handle method once the engine has
	// shut down. It substitutes for the original's disconnected-sender
	// detection; see SPEC_FULL.md §3.
	ErrSystemDown = errors.New("sound system is down")
)
