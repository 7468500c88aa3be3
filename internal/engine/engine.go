package engine

import (
	"log/slog"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/mabysh/orb-sound-system/pkg/arbiter"
	"github.com/mabysh/orb-sound-system/pkg/audiodecoder"
	"github.com/mabysh/orb-sound-system/pkg/command"
	"github.com/mabysh/orb-sound-system/pkg/decoders"
	"github.com/mabysh/orb-sound-system/pkg/orberr"
	"github.com/mabysh/orb-sound-system/pkg/soundbridge"
)

// idleSleep is how long the loop rests on a fully idle iteration: no
// command queued at its start, no top-up performed, no new sound started. It stays
// well under the 5ms budget top_up() must never be starved past.
const idleSleep = 2 * time.Millisecond

// Opener constructs the decoder for a file path. A field on Engine rather
// than a hard dependency on pkg/decoders.NewDecoder so tests can substitute
// a fake; see TestStartSoundTopUpAndEndOfStreamSequencing.
type Opener func(path string) (audiodecoder.AudioDecoder, error)

// sinkController is the subset of *Sink the event loop drives. Defined as
// an interface, rather than the loop depending on *Sink directly, so tests
// can substitute a fake that never touches a real device — the same
// boundary the original system's mock_system() test helper draws with
// Sink::new_idle().
type sinkController interface {
	Init() error
	Close() error
	SetSource(*soundbridge.Consumer) error
	SetVolume(float32)
	Volume() float32
	AdjustVolume(float32)
	Pause()
	Resume()
	Paused() bool
}

// Engine is Component C: the single-threaded event loop that owns the Sink
// and drives the whole system once commands have been accepted onto its
// channel.
type Engine struct {
	commands chan command.Command
	down     *atomic.Bool

	sink    sinkController
	arbiter *arbiter.Arbiter
	open    Opener

	currentDecoder audiodecoder.AudioDecoder
	currentSound   *soundbridge.Producer
}

// New builds an Engine. sink is the already-constructed device collaborator;
// down is the shared "system is down" flag every cloned Handle also holds.
func New(sink sinkController, down *atomic.Bool) *Engine {
	return &Engine{
		commands: make(chan command.Command, 256),
		down:     down,
		sink:     sink,
		arbiter:  arbiter.New(),
		open:     decoders.NewDecoder,
	}
}

// Commands returns the channel Handle sends on. Exposed so orbsound.Run can
// hand the same channel to both the Engine and the Handle it returns.
func (e *Engine) Commands() chan<- command.Command {
	return e.commands
}

// Run opens the device on the calling goroutine, reports the result of
// that attempt on ready exactly once, and — only if it succeeded — runs
// the event loop until a Shutdown command is received or the command
// channel is closed. It pins the calling goroutine to one OS thread for
// its lifetime, since the device must be opened and driven from a single,
// stable thread.
//
// This is the synchronous init handshake spec.md §4.C requires: the caller
// (orbsound.Run) blocks on ready before handing back a Handle, so a device
// or stream failure at startup is returned to the caller instead of only
// being logged.
func (e *Engine) Run(ready chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := e.sink.Init(); err != nil {
		e.down.Store(true)
		ready <- err
		return
	}
	ready <- nil

	for {
		hadCommands := len(e.commands) > 0
		if shutdown := e.processCommands(); shutdown {
			e.down.Store(true)
			if err := e.sink.Close(); err != nil {
				slog.Warn("failed to close sink during shutdown", "error", err)
			}
			e.closeCurrentSound()
			return
		}

		idle := !hadCommands

		if e.currentSound != nil {
			endOfStream := e.currentSound.TopUp(e.currentDecoder)
			idle = false
			if endOfStream {
				e.closeCurrentSound()
			}
		}

		if e.currentSound == nil {
			if req, ok := e.arbiter.TakeNext(time.Now()); ok {
				if err := e.startSound(req); err != nil {
					slog.Error("failed to start sound", "path", req.Path, "error", err)
				} else {
					idle = false
				}
			}
		}

		if idle {
			time.Sleep(idleSleep)
		}
	}
}

// processCommands drains every command currently queued without blocking,
// the same try_recv-until-empty shape as the original's
// process_incoming_commands. It returns true iff the engine should shut
// down: either a Shutdown command was seen, or the channel was closed.
func (e *Engine) processCommands() bool {
	for {
		select {
		case cmd, ok := <-e.commands:
			if !ok {
				return true
			}
			switch cmd.Kind {
			case command.PlaySound:
				e.arbiter.Submit(cmd.PlayRequest)
			case command.SetVolume:
				e.sink.SetVolume(cmd.Volume)
			case command.AdjustVolume:
				e.sink.AdjustVolume(cmd.Volume)
			case command.Pause:
				e.sink.Pause()
			case command.Resume:
				e.sink.Resume()
			case command.Shutdown:
				return true
			}
		default:
			return false
		}
	}
}

// startSound opens req's file, builds a fresh bridge sized for its format,
// installs the Consumer half on the sink, and keeps the Producer half to
// top up on every loop iteration. A bad path or unreadable file only fails
// this one request — it's reported as a *orberr.SoundFileError and logged,
// never propagated to bring the system down.
func (e *Engine) startSound(req command.PlayRequest) error {
	dec, err := e.open(req.Path)
	if err != nil {
		return &orberr.SoundFileError{Path: req.Path, Err: err}
	}

	rate, channels, _ := dec.GetFormat()
	capacity := soundbridge.RecommendedCapacity(uint32(rate), uint16(channels))
	producer, consumer := soundbridge.New(capacity, uint16(channels), uint32(rate))

	if err := e.sink.SetSource(consumer); err != nil {
		dec.Close()
		return err
	}

	e.currentDecoder = dec
	e.currentSound = producer

	slog.Info("playing sound",
		"file", filepath.Base(req.Path),
		"priority", req.Priority.String(),
		"sample_rate", rate,
		"channels", channels)

	return nil
}

// closeCurrentSound retires the Producer and its decoder once TopUp has
// reported end-of-stream (or the engine is shutting down). It must NOT
// touch the sink's installed source: the bridge's ring can still hold a
// full buffer's worth of decoded-but-unplayed samples when end-of-stream
// is detected (TopUp refills on every spin, so the ring is typically near
// full at that point), and Consumer.NextSample only reports end-of-stream
// once that queue is drained AND the producer is closed. Detaching the
// source here would silently clip that tail. The sink's source is only
// ever replaced by the next startSound's own SetSource call — or torn down
// entirely by Close() on shutdown.
func (e *Engine) closeCurrentSound() {
	if e.currentSound != nil {
		e.currentSound.Close()
		e.currentSound = nil
	}
	if e.currentDecoder != nil {
		if err := e.currentDecoder.Close(); err != nil {
			slog.Warn("failed to close decoder", "error", err)
		}
		e.currentDecoder = nil
	}
}
