package engine

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mabysh/orb-sound-system/pkg/audiodecoder"
	"github.com/mabysh/orb-sound-system/pkg/command"
	"github.com/mabysh/orb-sound-system/pkg/soundbridge"
)

// fakeSink implements sinkController without touching a real device — the
// same boundary the original system's mock_system() test helper draws
// around Sink::new_idle().
type fakeSink struct {
	volume float32
	paused bool
	source *soundbridge.Consumer

	initErr error
}

func (f *fakeSink) Init() error  { return f.initErr }
func (f *fakeSink) Close() error { return nil }
func (f *fakeSink) SetSource(c *soundbridge.Consumer) error {
	f.source = c
	return nil
}
func (f *fakeSink) SetVolume(v float32)    { f.volume = v }
func (f *fakeSink) Volume() float32        { return f.volume }
func (f *fakeSink) AdjustVolume(d float32) { f.volume += d }
func (f *fakeSink) Pause()                 { f.paused = true }
func (f *fakeSink) Resume()                { f.paused = false }
func (f *fakeSink) Paused() bool           { return f.paused }

// mockEngine builds an Engine around a fakeSink — safe for unit tests that
// only exercise command processing and loop sequencing.
func mockEngine() (*Engine, *atomic.Bool, *fakeSink) {
	down := &atomic.Bool{}
	sink := &fakeSink{volume: 1.0}
	e := New(sink, down)
	return e, down, sink
}

func TestProcessCommandsAppliesPauseAndResume(t *testing.T) {
	e, _, sink := mockEngine()

	e.commands <- command.Command{Kind: command.Pause}
	e.processCommands()
	if !sink.Paused() {
		t.Fatalf("expected sink paused after Pause command")
	}

	e.commands <- command.Command{Kind: command.Resume}
	e.processCommands()
	if sink.Paused() {
		t.Fatalf("expected sink unpaused after Resume command")
	}
}

func TestProcessCommandsAppliesVolumeCommands(t *testing.T) {
	e, _, sink := mockEngine()

	e.commands <- command.Command{Kind: command.SetVolume, Volume: 2.0}
	e.processCommands()
	if got := sink.Volume(); got != 2.0 {
		t.Fatalf("volume = %v, want 2.0", got)
	}

	e.commands <- command.Command{Kind: command.AdjustVolume, Volume: 0.5}
	e.processCommands()
	if got := sink.Volume(); got != 2.5 {
		t.Fatalf("volume = %v, want 2.5", got)
	}

	e.commands <- command.Command{Kind: command.AdjustVolume, Volume: -1.0}
	e.processCommands()
	if got := sink.Volume(); got != 1.5 {
		t.Fatalf("volume = %v, want 1.5", got)
	}
}

func TestProcessCommandsReturnsFalseWhenQueueDrained(t *testing.T) {
	e, _, _ := mockEngine()
	e.commands <- command.Command{Kind: command.Pause}
	if shutdown := e.processCommands(); shutdown {
		t.Fatalf("did not expect shutdown from a Pause command")
	}
}

func TestProcessCommandsReturnsTrueOnShutdown(t *testing.T) {
	e, _, _ := mockEngine()
	e.commands <- command.Command{Kind: command.Shutdown}
	if shutdown := e.processCommands(); !shutdown {
		t.Fatalf("expected shutdown true after a Shutdown command")
	}
}

func TestProcessCommandsReturnsTrueWhenChannelClosed(t *testing.T) {
	e, _, _ := mockEngine()
	close(e.commands)
	if shutdown := e.processCommands(); !shutdown {
		t.Fatalf("expected shutdown true when the command channel is closed")
	}
}

func TestPlaySoundCommandsQueueIntoArbiter(t *testing.T) {
	e, _, _ := mockEngine()
	e.commands <- command.Command{Kind: command.PlaySound, PlayRequest: newRequest("a.wav")}
	e.commands <- command.Command{Kind: command.PlaySound, PlayRequest: newRequest("b.wav")}
	e.processCommands()

	if got := e.arbiter.Len(); got != 2 {
		t.Fatalf("arbiter has %d pending requests, want 2", got)
	}
}

func newRequest(path string) command.PlayRequest {
	return command.NewPlayRequest(path, command.Default, nil)
}

func TestRunShutsDownPromptlyOnShutdownCommand(t *testing.T) {
	e, down, _ := mockEngine()

	ready := make(chan error, 1)
	done := make(chan struct{})
	go func() {
		e.Run(ready)
		close(done)
	}()

	if err := <-ready; err != nil {
		t.Fatalf("unexpected init error: %v", err)
	}

	e.commands <- command.Command{Kind: command.Shutdown}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not return within 1s of a Shutdown command")
	}

	if !down.Load() {
		t.Fatalf("expected the shared down flag to be set after shutdown")
	}
}

func TestRunSurfacesSinkInitFailure(t *testing.T) {
	down := &atomic.Bool{}
	wantErr := errors.New("no device")
	sink := &fakeSink{initErr: wantErr}
	e := New(sink, down)

	ready := make(chan error, 1)
	done := make(chan struct{})
	go func() {
		e.Run(ready)
		close(done)
	}()

	select {
	case err := <-ready:
		if !errors.Is(err, wantErr) {
			t.Fatalf("ready error = %v, want %v", err, wantErr)
		}
	case <-time.After(time.Second):
		t.Fatalf("Run never reported an init result")
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not exit after a failed Init")
	}

	if !down.Load() {
		t.Fatalf("expected the shared down flag to be set after a failed Init")
	}
}

// fakeDecoder hands out a fixed sequence of int16 frames, then reports
// end-of-stream.
type fakeDecoder struct {
	frames   [][]int16
	pos      int
	rate     int
	channels int
	closed   bool
}

func (f *fakeDecoder) Open(string) error { return nil }
func (f *fakeDecoder) Close() error      { f.closed = true; return nil }
func (f *fakeDecoder) GetFormat() (rate, channels, bitsPerSample int) {
	return f.rate, f.channels, 16
}
func (f *fakeDecoder) DecodeSamples(wantFrames int, dst []byte) (int, error) {
	n := 0
	for n < wantFrames && f.pos < len(f.frames) {
		frame := f.frames[f.pos]
		for ch, s := range frame {
			off := (n*len(frame) + ch) * 2
			dst[off] = byte(uint16(s))
			dst[off+1] = byte(uint16(s) >> 8)
		}
		n++
		f.pos++
	}
	if f.pos >= len(f.frames) {
		return n, audiodecoder.ErrNotOpen // any non-nil sentinel signals exhaustion
	}
	return n, nil
}

// TestStartSoundTopUpAndEndOfStreamSequencing drives startSound, TopUp, and
// closeCurrentSound directly — the arbitrate -> open/decode -> wire bridge
// -> top-up -> EOS -> teardown path Run's loop exercises every iteration.
// It is the regression test for the truncation bug where closeCurrentSound
// used to clear the sink's source the instant TopUp reported end-of-stream,
// discarding whatever the ring buffer still held unplayed.
func TestStartSoundTopUpAndEndOfStreamSequencing(t *testing.T) {
	e, _, sink := mockEngine()

	dec := &fakeDecoder{
		frames:   [][]int16{{1, 2}, {3, 4}, {5, 6}},
		rate:     44100,
		channels: 2,
	}
	e.open = func(path string) (audiodecoder.AudioDecoder, error) {
		return dec, nil
	}

	req := newRequest("fixture.wav")
	if err := e.startSound(req); err != nil {
		t.Fatalf("startSound: %v", err)
	}
	if sink.source == nil {
		t.Fatalf("expected startSound to install a source on the sink")
	}
	installedConsumer := sink.source

	endOfStream := e.currentSound.TopUp(e.currentDecoder)
	if !endOfStream {
		t.Fatalf("expected TopUp to report end-of-stream once the fake decoder is exhausted")
	}

	// The ring should still hold every sample the fake decoder produced —
	// TopUp must have drained it into the buffer before reporting EOS.
	if avail := installedConsumer.AvailableRead(); avail != 6 {
		t.Fatalf("AvailableRead = %d, want 6 (3 frames * 2 channels) buffered before teardown", avail)
	}

	e.closeCurrentSound()

	if e.currentSound != nil || e.currentDecoder != nil {
		t.Fatalf("expected closeCurrentSound to clear currentSound/currentDecoder")
	}
	if !dec.closed {
		t.Fatalf("expected closeCurrentSound to close the decoder")
	}
	if sink.source != installedConsumer {
		t.Fatalf("closeCurrentSound must not touch the sink's installed source — it should still be the (now-closed) consumer so the callback can drain the buffered tail")
	}

	// The buffered tail must still be readable through the sink's source,
	// exactly as the real-time callback would drain it, and only report
	// end-of-stream once that tail is exhausted.
	want := []int16{1, 2, 3, 4, 5, 6}
	for i, w := range want {
		s, ok := installedConsumer.NextSample()
		if !ok {
			t.Fatalf("sample %d: NextSample reported end-of-stream before the buffered tail was drained", i)
		}
		if s != w {
			t.Fatalf("sample %d = %d, want %d", i, s, w)
		}
	}
	if _, ok := installedConsumer.NextSample(); ok {
		t.Fatalf("expected end-of-stream after the buffered tail was fully drained")
	}
}
