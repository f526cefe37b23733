package stream

import (
	"context"
	"sync"

	"github.com/rowkit/csvjson/csverr"
)

// Control is the pause/resume/cancel surface of spec §4.F, shared by every
// stream handle in this package. It generalizes the Quit-channel-close
// cancellation idiom from urbint-ingest's Controller (closing a channel to
// broadcast cancellation to any number of waiters) with a re-armable gate
// for pause/resume.
type Control struct {
	mu         sync.Mutex
	paused     bool
	cancelled  bool
	resumeGate chan struct{}
}

func newControl() *Control {
	return &Control{resumeGate: make(chan struct{})}
}

// Pause suspends row emission before the next row boundary.
func (c *Control) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paused = true
}

// Resume lifts a pause. Calling it after Cancel returns Cancelled.
func (c *Control) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancelled {
		return csverr.Cancelled()
	}
	if c.paused {
		c.paused = false
		close(c.resumeGate)
		c.resumeGate = make(chan struct{})
	}
	return nil
}

// Cancel is final and idempotent; it transitions to the terminal Cancelled
// state and releases anything blocked on a pause.
func (c *Control) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancelled {
		return
	}
	c.cancelled = true
	if c.paused {
		close(c.resumeGate)
	}
}

// IsCancelled reports whether Cancel has been called.
func (c *Control) IsCancelled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancelled
}

// waitIfPaused blocks the caller (a stream's row-emission loop) while
// paused, checked "before each row emission and at every chunk boundary"
// per spec §4.F's cancellation model, returning Cancelled if Cancel fires
// while waiting.
func (c *Control) waitIfPaused(ctx context.Context) error {
	for {
		c.mu.Lock()
		if c.cancelled {
			c.mu.Unlock()
			return csverr.Cancelled()
		}
		if !c.paused {
			c.mu.Unlock()
			return nil
		}
		gate := c.resumeGate
		c.mu.Unlock()

		select {
		case <-gate:
			continue
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
