// Package orbsound is the embedded sound playback system: a priority and
// deadline arbiter feeding a single output device through a lock-free
// bridge, reachable from any goroutine through a cheap, cloneable Handle.
package orbsound

import "github.com/mabysh/orb-sound-system/pkg/orberr"

// SoundFileError wraps a problem with one specific sound file path — a
// missing file, an unsupported format, or a decode failure. It never
// brings the system down; a bad path just fails that one PlaySound.
type SoundFileError = orberr.SoundFileError

// ErrDeviceErr, ErrStreamErr, and ErrPlayErr are sentinel wrap targets for
// the corresponding failure categories in SPEC_FULL.md §7. Use
// errors.Is(err, orbsound.ErrStreamErr) etc. to classify a returned error;
// the concrete error returned always wraps one of these via %w.
// ErrStreamErr and ErrPlayErr are constructed in internal/engine (the
// device code actually capable of failing that way) and ErrDeviceErr in
// Run; all are defined in pkg/orberr and re-exported here as the public
// API; see pkg/orberr for why that split avoids an import cycle.
var (
	ErrDeviceErr = orberr.ErrDeviceErr
	ErrStreamErr = orberr.ErrStreamErr
	ErrPlayErr   = orberr.ErrPlayErr

	// ErrSystemDown is returned by every Handle method once the engine has
	// shut down. It is the Go-native substitute for the original's
	// disconnected-sender detection; see SPEC_FULL.md §3.
	ErrSystemDown = orberr.ErrSystemDown
)
