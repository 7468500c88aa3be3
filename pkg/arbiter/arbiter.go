// Package arbiter selects the next sound to play from a set of pending
// requests, ordered by priority and, within a priority, by deadline.
package arbiter

import (
	"sort"
	"time"

	"github.com/mabysh/orb-sound-system/pkg/command"
)

// Arbiter holds the queue of pending play requests submitted but not yet
// taken. It is not safe for concurrent use; the engine owns it from a
// single goroutine, the same way the original's OrbSoundSystem owns its
// VecDeque.
type Arbiter struct {
	pending []command.PlayRequest
}

// New returns an empty Arbiter.
func New() *Arbiter {
	return &Arbiter{}
}

// Submit enqueues a new pending request.
func (a *Arbiter) Submit(req command.PlayRequest) {
	a.pending = append(a.pending, req)
}

// Len reports the number of pending requests.
func (a *Arbiter) Len() int {
	return len(a.pending)
}

// TakeNext sorts the pending requests by (priority, deadline) — ties broken
// by arrival order, since sort.SliceStable never reorders equal elements —
// discards any whose deadline has already passed as of now, and returns and
// removes the first still-eligible request. It returns (zero, false) if no
// eligible request remains.
func (a *Arbiter) TakeNext(now time.Time) (command.PlayRequest, bool) {
	sort.SliceStable(a.pending, func(i, j int) bool {
		return less(a.pending[i], a.pending[j])
	})

	for len(a.pending) > 0 {
		req := a.pending[0]
		a.pending = a.pending[1:]
		if req.HasDeadline && now.After(req.Deadline) {
			continue
		}
		return req, true
	}
	return command.PlayRequest{}, false
}

func less(a, b command.PlayRequest) bool {
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	if a.HasDeadline != b.HasDeadline {
		return a.HasDeadline
	}
	if a.HasDeadline {
		return a.Deadline.Before(b.Deadline)
	}
	return false
}
