package query

import (
	"log/slog"
	"time"
)

// StartPolling arms a repeating timer that refreshes the controller every
// interval, independent of filter changes. Enabling while already enabled
// replaces the previous timer; there is never more than one. The timer is an
// owned resource: StopPolling or Close releases it deterministically.
func (c *Controller[T]) StartPolling(interval time.Duration) {
	if interval <= 0 {
		return
	}
	c.pollMu.Lock()
	defer c.pollMu.Unlock()
	c.stopPollingLocked()

	stop := make(chan struct{})
	done := make(chan struct{})
	c.pollStop = stop
	c.pollDone = done

	slog.Debug("Polling enabled", "view", c.name, "interval", interval)

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.Refresh()
			case <-stop:
				return
			case <-c.ctx.Done():
				return
			}
		}
	}()
}

// StopPolling cancels the poll timer, if armed. Idempotent.
func (c *Controller[T]) StopPolling() {
	c.pollMu.Lock()
	defer c.pollMu.Unlock()
	c.stopPollingLocked()
}

// Polling reports whether a poll timer is armed.
func (c *Controller[T]) Polling() bool {
	c.pollMu.Lock()
	defer c.pollMu.Unlock()
	return c.pollStop != nil
}

func (c *Controller[T]) stopPollingLocked() {
	if c.pollStop == nil {
		return
	}
	close(c.pollStop)
	<-c.pollDone
	c.pollStop = nil
	c.pollDone = nil
	slog.Debug("Polling disabled", "view", c.name)
}
