// Package engine implements Component C, the playback engine's event loop,
// and its Sink collaborator: the object that actually owns the audio
// device and the real-time callback PortAudio drives on its own thread.
package engine

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/drgolem/go-portaudio/portaudio"

	"github.com/mabysh/orb-sound-system/pkg/orberr"
	"github.com/mabysh/orb-sound-system/pkg/soundbridge"
)

// defaultSampleRate and defaultChannels are the probe format Init opens the
// stream with before any sound has been requested, so a device/stream
// failure surfaces during startup instead of on the first PlaySound.
const (
	defaultSampleRate = 44100
	defaultChannels   = 2
)

// Sink owns the open PortAudio output stream and the state the real-time
// callback reads: volume, paused, and the bridge Consumer currently feeding
// it. All three are written only by the engine goroutine and read by the
// callback thread, so they're held in atomics rather than behind a mutex —
// a lock is exactly what the callback must never wait on.
type Sink struct {
	deviceIndex     int
	framesPerBuffer int

	stream     *portaudio.PaStream
	channels   int
	sampleRate int

	volumeBits atomic.Uint32
	paused     atomic.Bool
	source     atomic.Pointer[soundbridge.Consumer]
}

// NewSink creates a Sink bound to the given output device. No stream is
// opened until the first call to Init or SetSource.
func NewSink(deviceIndex, framesPerBuffer int) *Sink {
	s := &Sink{
		deviceIndex:     deviceIndex,
		framesPerBuffer: framesPerBuffer,
	}
	s.volumeBits.Store(math.Float32bits(1.0))
	return s
}

// Volume returns the current linear volume multiplier.
func (s *Sink) Volume() float32 {
	return math.Float32frombits(s.volumeBits.Load())
}

// SetVolume sets the linear volume multiplier. Per spec.md's open question,
// values are stored as given — not clamped to [0,1] — so a caller asking
// for amplification past unity gets it, clipped only at the int16 output
// boundary.
func (s *Sink) SetVolume(v float32) {
	s.volumeBits.Store(math.Float32bits(v))
}

// AdjustVolume adds delta to the current volume, matching the original
// system's sink.set_volume(sink.volume() + delta).
func (s *Sink) AdjustVolume(delta float32) {
	s.SetVolume(s.Volume() + delta)
}

// Pause freezes output: the callback emits silence without advancing the
// current source's consumer, so Resume continues from the same sample.
func (s *Sink) Pause() {
	s.paused.Store(true)
}

// Resume un-freezes output.
func (s *Sink) Resume() {
	s.paused.Store(false)
}

// Paused reports whether the sink is currently paused.
func (s *Sink) Paused() bool {
	return s.paused.Load()
}

// Init opens the stream against a default format so startup failures are
// reported before the engine begins processing commands, satisfying
// spec.md §4.C's synchronous init handshake. The first real sound's
// SetSource call reconfigures the stream if its format differs.
func (s *Sink) Init() error {
	return s.ensureStream(defaultChannels, defaultSampleRate)
}

// SetSource installs c as the consumer the callback reads from, opening or
// reconfiguring the underlying PortAudio stream if c's format differs from
// whatever is currently open. A nil consumer leaves the stream open but
// silent.
func (s *Sink) SetSource(c *soundbridge.Consumer) error {
	if c != nil {
		if err := s.ensureStream(int(c.Channels()), int(c.SampleRate())); err != nil {
			return err
		}
	}
	s.source.Store(c)
	return nil
}

// ensureStream opens the PortAudio stream on first use, or stops, closes,
// and reopens it if the requested format differs from what's already
// running — the same reconfigure-on-format-change approach as
// player.go's reconfigureStreamIfNeeded.
func (s *Sink) ensureStream(channels, sampleRate int) error {
	if s.stream != nil && s.channels == channels && s.sampleRate == sampleRate {
		return nil
	}
	if s.stream != nil {
		if err := s.stream.StopStream(); err != nil {
			return fmt.Errorf("%w: failed to stop stream for reconfiguration: %v", orberr.ErrStreamErr, err)
		}
		if err := s.stream.CloseCallback(); err != nil {
			return fmt.Errorf("%w: failed to close stream for reconfiguration: %v", orberr.ErrStreamErr, err)
		}
		s.stream = nil
	}

	stream := &portaudio.PaStream{
		OutputParameters: &portaudio.PaStreamParameters{
			DeviceIndex:  s.deviceIndex,
			ChannelCount: channels,
			SampleFormat: portaudio.SampleFmtInt16,
		},
		SampleRate: float64(sampleRate),
	}

	// OpenCallback acquiring the stream and StartStream beginning playback
	// on it are distinct failure modes — the same split the original draws
	// between OutputStream::try_default (StreamErr) and Sink::try_new
	// (PlayErr).
	if err := stream.OpenCallback(s.framesPerBuffer, s.audioCallback); err != nil {
		return fmt.Errorf("%w: failed to open stream: %v", orberr.ErrStreamErr, err)
	}
	if err := stream.StartStream(); err != nil {
		return fmt.Errorf("%w: failed to start playback: %v", orberr.ErrPlayErr, err)
	}

	s.stream = stream
	s.channels = channels
	s.sampleRate = sampleRate
	return nil
}

// Close stops and closes the stream, if one is open. Safe to call on a
// Sink that never opened a stream.
func (s *Sink) Close() error {
	if s.stream == nil {
		return nil
	}
	stream := s.stream
	s.stream = nil
	if err := stream.StopStream(); err != nil {
		return fmt.Errorf("%w: failed to stop stream: %v", orberr.ErrStreamErr, err)
	}
	if err := stream.CloseCallback(); err != nil {
		return fmt.Errorf("%w: failed to close stream: %v", orberr.ErrStreamErr, err)
	}
	return nil
}

// audioCallback runs on PortAudio's own thread, never the Go scheduler's.
// It must never block and never allocate: output is sized once by
// PortAudio and every read here comes from pre-existing atomics and the
// bridge's pre-allocated ring.
func (s *Sink) audioCallback(
	input, output []byte,
	frameCount uint,
	timeInfo *portaudio.StreamCallbackTimeInfo,
	statusFlags portaudio.StreamCallbackFlags,
) portaudio.StreamCallbackResult {
	volume := s.Volume()
	paused := s.paused.Load()
	consumer := s.source.Load()

	n := len(output) / 2
	for i := 0; i < n; i++ {
		var sample int16
		if consumer != nil && !paused {
			if v, ok := consumer.NextSample(); ok {
				sample = v
			}
		}
		scaled := clipToInt16(float32(sample) * volume)
		output[i*2] = byte(uint16(scaled))
		output[i*2+1] = byte(uint16(scaled) >> 8)
	}

	// The engine, not the callback, decides when the stream itself should
	// stop; an exhausted or absent source just means silence, so the
	// stream always stays Continue and keeps being driven by the engine.
	return portaudio.Continue
}

func clipToInt16(v float32) int16 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}
