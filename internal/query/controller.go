// Package query keeps one view's result in sync with its filter state.
//
// A Controller owns a filter parameter set, derives a request from it, and
// executes that request through an injected Fetcher. Filter changes, explicit
// refreshes, and poll ticks all re-issue the fetch; only the outcome of the
// most recently issued fetch is ever committed, so overlapping requests and
// filter races resolve to the newest state.
package query

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"finsight/internal/api"
)

// State of a controller's fetch cycle.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the snapshot a view renders from. After a fetch settles, exactly
// one of the steady states holds: data present and not loading, loading true,
// or Err non-nil. A failed refresh keeps the previous good Data so a
// transient error during polling does not blank the screen.
type Result[T any] struct {
	Data    T
	HasData bool
	Loading bool
	Err     error
	State   State
}

// Fetcher executes one authorized read for the derived parameter set.
type Fetcher[T any] func(ctx context.Context, params api.Params) (T, error)

// Options tunes a controller.
type Options struct {
	// FetchTimeout bounds each fetch. A hung request must settle as a
	// failure instead of leaving the controller loading forever (and
	// starving the next poll tick). Default 10s.
	FetchTimeout time.Duration
}

// Controller drives the fetch lifecycle for one data view. Each instance is
// owned exclusively by the view that created it; Close releases it.
type Controller[T any] struct {
	name    string
	fetch   Fetcher[T]
	fixed   api.Params
	timeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	filters     api.Params
	seq         uint64
	cancelFetch context.CancelFunc
	settleCh    chan struct{}
	onChange    func(Result[T])
	notifyQueue []Result[T]
	notifying   bool
	state       State
	data        T
	hasData     bool
	err         error
	loading     bool
	closed      bool

	pollMu   sync.Mutex
	pollStop chan struct{}
	pollDone chan struct{}
}

// New creates an idle controller. fixed carries the identifiers every request
// needs regardless of filters (e.g. userId); filters are merged on top. The
// first fetch is issued by Refresh or SetFilters.
func New[T any](name string, fixed api.Params, fetch Fetcher[T], opts Options) *Controller[T] {
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 10 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller[T]{
		name:    name,
		fetch:   fetch,
		fixed:   fixed,
		timeout: opts.FetchTimeout,
		ctx:     ctx,
		cancel:  cancel,
		state:   StateIdle,
	}
}

// OnChange registers the callback invoked after every committed settlement.
// Discarded stale responses never notify.
func (c *Controller[T]) OnChange(fn func(Result[T])) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// SetFilters replaces the filter mapping and issues a fetch for it.
func (c *Controller[T]) SetFilters(filters api.Params) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters = filters
	c.startFetchLocked()
}

// Filters returns the current filter mapping.
func (c *Controller[T]) Filters() api.Params {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(api.Params, len(c.filters))
	copy(out, c.filters)
	return out
}

// Refresh re-issues a fetch with the current filters.
func (c *Controller[T]) Refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startFetchLocked()
}

// Snapshot returns the current view-visible state.
func (c *Controller[T]) Snapshot() Result[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Await blocks until no fetch is outstanding (or ctx expires) and returns the
// then-current snapshot. Convenience for synchronous callers; reactive views
// use OnChange instead.
func (c *Controller[T]) Await(ctx context.Context) Result[T] {
	for {
		c.mu.Lock()
		if !c.loading || c.closed {
			snap := c.snapshotLocked()
			c.mu.Unlock()
			return snap
		}
		settled := c.settleCh
		c.mu.Unlock()

		select {
		case <-settled:
		case <-ctx.Done():
			return c.Snapshot()
		}
	}
}

// Close cancels any in-flight fetch, stops polling, and retires the
// controller. Late responses are discarded. Idempotent.
func (c *Controller[T]) Close() {
	c.StopPolling()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.seq++ // any outstanding response is now stale
	if c.cancelFetch != nil {
		c.cancelFetch()
		c.cancelFetch = nil
	}
	c.loading = false
	c.mu.Unlock()

	c.cancel()
	slog.Debug("Controller closed", "view", c.name)
}

// startFetchLocked issues fetch number seq+1 and supersedes whatever is in
// flight. Callers hold c.mu.
func (c *Controller[T]) startFetchLocked() {
	if c.closed {
		return
	}
	c.seq++
	mySeq := c.seq
	if c.cancelFetch != nil {
		c.cancelFetch()
	}
	fctx, cancel := context.WithTimeout(c.ctx, c.timeout)
	c.cancelFetch = cancel

	params := c.fixed.Merge(c.filters)
	c.loading = true
	c.state = StateLoading
	settled := make(chan struct{})
	c.settleCh = settled

	slog.Debug("Fetch issued", "view", c.name, "fetch_seq", mySeq, "params", params.Encode())

	go func() {
		data, err := c.fetch(fctx, params)
		cancel()
		c.settle(mySeq, data, err, settled)
	}()
}

// settle applies a fetch outcome, unless a newer fetch has been issued since
// (or the controller closed), in which case the response is discarded. This
// is the stale-response guard: only the most recently issued fetch for the
// most recently set filters may touch data or err.
func (c *Controller[T]) settle(seq uint64, data T, err error, settled chan struct{}) {
	c.mu.Lock()
	if c.closed || seq != c.seq {
		c.mu.Unlock()
		close(settled)
		slog.Debug("Stale response discarded", "view", c.name, "fetch_seq", seq)
		return
	}

	c.loading = false
	c.cancelFetch = nil
	if err != nil {
		// Last-good-data-on-error: prior data stays visible.
		c.err = err
		c.state = StateFailed
		slog.Warn("Fetch failed", "view", c.name, "fetch_seq", seq, "error", err)
	} else {
		c.data = data
		c.hasData = true
		c.err = nil
		c.state = StateReady
	}
	var drain bool
	if c.onChange != nil {
		c.notifyQueue = append(c.notifyQueue, c.snapshotLocked())
		if !c.notifying {
			c.notifying = true
			drain = true
		}
	}
	c.mu.Unlock()
	close(settled)

	if drain {
		c.drainNotifications()
	}
}

// drainNotifications delivers queued snapshots one at a time. Snapshots are
// enqueued under c.mu in commit order and exactly one goroutine drains, so
// observers see settlements in the order they were committed even when fetches
// settle back to back.
func (c *Controller[T]) drainNotifications() {
	for {
		c.mu.Lock()
		if len(c.notifyQueue) == 0 {
			c.notifying = false
			c.mu.Unlock()
			return
		}
		snap := c.notifyQueue[0]
		c.notifyQueue = c.notifyQueue[1:]
		fn := c.onChange
		c.mu.Unlock()
		if fn != nil {
			fn(snap)
		}
	}
}

func (c *Controller[T]) snapshotLocked() Result[T] {
	return Result[T]{
		Data:    c.data,
		HasData: c.hasData,
		Loading: c.loading,
		Err:     c.err,
		State:   c.state,
	}
}
