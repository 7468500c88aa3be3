package orbsound

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mabysh/orb-sound-system/pkg/command"
)

func testHandle() (*Handle, chan command.Command) {
	ch := make(chan command.Command, 8)
	return &Handle{commands: ch, down: &atomic.Bool{}}, ch
}

func TestHandleSendsExpectedCommands(t *testing.T) {
	h, ch := testHandle()
	maxDelay := time.Second

	if err := h.PlaySound("abc", command.High, &maxDelay); err != nil {
		t.Fatalf("PlaySound: %v", err)
	}
	got := <-ch
	if got.Kind != command.PlaySound || got.PlayRequest.Path != "abc" || got.PlayRequest.Priority != command.High || !got.PlayRequest.HasDeadline {
		t.Fatalf("unexpected PlaySound command: %+v", got)
	}

	if err := h.SetVolume(2.0); err != nil {
		t.Fatalf("SetVolume: %v", err)
	}
	if got := <-ch; got.Kind != command.SetVolume || got.Volume != 2.0 {
		t.Fatalf("unexpected SetVolume command: %+v", got)
	}

	if err := h.AdjustVolume(-0.5); err != nil {
		t.Fatalf("AdjustVolume: %v", err)
	}
	if got := <-ch; got.Kind != command.AdjustVolume || got.Volume != -0.5 {
		t.Fatalf("unexpected AdjustVolume command: %+v", got)
	}

	if err := h.Pause(); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if got := <-ch; got.Kind != command.Pause {
		t.Fatalf("unexpected Pause command: %+v", got)
	}

	if err := h.Resume(); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if got := <-ch; got.Kind != command.Resume {
		t.Fatalf("unexpected Resume command: %+v", got)
	}
}

func TestHandleReturnsErrSystemDownWhenDown(t *testing.T) {
	h, _ := testHandle()
	h.down.Store(true)

	if err := h.PlaySound("abc", command.Default, nil); !errors.Is(err, ErrSystemDown) {
		t.Fatalf("expected ErrSystemDown, got %v", err)
	}
}

func TestShutdownSendsShutdownCommand(t *testing.T) {
	h, ch := testHandle()
	if err := h.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if got := <-ch; got.Kind != command.Shutdown {
		t.Fatalf("unexpected command: %+v", got)
	}
}
