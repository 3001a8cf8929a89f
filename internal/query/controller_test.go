package query

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"finsight/internal/api"
)

// blockingFetcher hands each fetch invocation to the test, which decides when
// and with what outcome it completes. The fetcher ignores context cancellation
// on purpose: the stale-response guard must hold even for responses that
// arrive after they were superseded.
type blockingFetcher struct {
	calls chan *fetchCall
}

type fetchCall struct {
	params  api.Params
	value   string
	err     error
	release chan struct{}
}

func newBlockingFetcher() *blockingFetcher {
	return &blockingFetcher{calls: make(chan *fetchCall, 16)}
}

func (f *blockingFetcher) fetch(_ context.Context, params api.Params) (string, error) {
	c := &fetchCall{params: params, release: make(chan struct{})}
	f.calls <- c
	<-c.release
	return c.value, c.err
}

func (f *blockingFetcher) next(t *testing.T) *fetchCall {
	t.Helper()
	select {
	case c := <-f.calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a fetch to be issued")
		return nil
	}
}

func (c *fetchCall) succeed(value string) {
	c.value = value
	close(c.release)
}

func (c *fetchCall) fail(err error) {
	c.err = err
	close(c.release)
}

func awaitSettled[T any](t *testing.T, c *Controller[T]) Result[T] {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	res := c.Await(ctx)
	if ctx.Err() != nil {
		t.Fatal("controller did not settle in time")
	}
	return res
}

func TestControllerCommitsSuccessfulFetch(t *testing.T) {
	f := newBlockingFetcher()
	ctrl := New("test", nil, f.fetch, Options{})
	defer ctrl.Close()

	ctrl.SetFilters(api.Params{{Key: "v", Value: "a"}})

	snap := ctrl.Snapshot()
	if !snap.Loading || snap.State != StateLoading {
		t.Errorf("expected loading state while fetch is in flight, got %+v", snap)
	}

	f.next(t).succeed("first")

	res := awaitSettled(t, ctrl)
	if res.Data != "first" || !res.HasData || res.Loading || res.Err != nil || res.State != StateReady {
		t.Errorf("unexpected settled result %+v", res)
	}
}

func TestControllerDiscardsStaleResponse(t *testing.T) {
	f := newBlockingFetcher()
	ctrl := New("test", nil, f.fetch, Options{})
	defer ctrl.Close()

	var mu sync.Mutex
	var notified []string
	ctrl.OnChange(func(res Result[string]) {
		mu.Lock()
		notified = append(notified, res.Data)
		mu.Unlock()
	})

	ctrl.SetFilters(api.Params{{Key: "v", Value: "old"}})
	stale := f.next(t)

	ctrl.SetFilters(api.Params{{Key: "v", Value: "new"}})
	fresh := f.next(t)

	// The newer fetch completes first; the superseded one straggles in after.
	fresh.succeed("new")
	res := awaitSettled(t, ctrl)
	if res.Data != "new" {
		t.Fatalf("expected new data, got %q", res.Data)
	}

	stale.succeed("old")
	time.Sleep(100 * time.Millisecond)

	if got := ctrl.Snapshot(); got.Data != "new" {
		t.Errorf("stale response overwrote data: got %q", got.Data)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(notified) != 1 || notified[0] != "new" {
		t.Errorf("stale response must not notify; notifications = %v", notified)
	}
}

func TestControllerKeepsLastGoodDataOnError(t *testing.T) {
	f := newBlockingFetcher()
	ctrl := New("test", nil, f.fetch, Options{})
	defer ctrl.Close()

	ctrl.Refresh()
	f.next(t).succeed("good")
	awaitSettled(t, ctrl)

	fetchErr := errors.New("boom")
	ctrl.Refresh()
	f.next(t).fail(fetchErr)

	res := awaitSettled(t, ctrl)
	if !errors.Is(res.Err, fetchErr) {
		t.Errorf("expected fetch error, got %v", res.Err)
	}
	if res.State != StateFailed {
		t.Errorf("expected failed state, got %v", res.State)
	}
	if res.Data != "good" || !res.HasData {
		t.Errorf("failed refresh must keep prior data, got %+v", res)
	}

	// A later successful refresh clears the error.
	ctrl.Refresh()
	f.next(t).succeed("fresh")
	res = awaitSettled(t, ctrl)
	if res.Err != nil || res.Data != "fresh" || res.State != StateReady {
		t.Errorf("recovery result %+v", res)
	}
}

func TestControllerFirstFetchFailureHasNoData(t *testing.T) {
	f := newBlockingFetcher()
	ctrl := New("test", nil, f.fetch, Options{})
	defer ctrl.Close()

	ctrl.Refresh()
	f.next(t).fail(errors.New("boom"))

	res := awaitSettled(t, ctrl)
	if res.HasData {
		t.Error("no data was ever fetched; HasData must be false")
	}
	if res.Err == nil || res.State != StateFailed {
		t.Errorf("expected failed state, got %+v", res)
	}
}

func TestControllerMergesFixedAndFilterParams(t *testing.T) {
	f := newBlockingFetcher()
	fixed := api.Params{{Key: "userId", Value: "1"}}
	ctrl := New("test", fixed, f.fetch, Options{})
	defer ctrl.Close()

	ctrl.SetFilters(api.Params{{Key: "type", Value: "EXPENSE"}})

	call := f.next(t)
	if got := call.params.Get("userId"); got != "1" {
		t.Errorf("fixed param missing: userId = %q", got)
	}
	if got := call.params.Get("type"); got != "EXPENSE" {
		t.Errorf("filter param missing: type = %q", got)
	}
	call.succeed("ok")
}

func TestAwaitReturnsOnContextExpiry(t *testing.T) {
	f := newBlockingFetcher()
	ctrl := New("test", nil, f.fetch, Options{})
	defer ctrl.Close()

	ctrl.Refresh()
	call := f.next(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	res := ctrl.Await(ctx)
	if !res.Loading {
		t.Errorf("expected still-loading snapshot on context expiry, got %+v", res)
	}
	call.succeed("late")
}

func TestHungRequestSettlesAsFailure(t *testing.T) {
	var hang atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hang.Load() {
			// Stall until the client gives up.
			<-r.Context().Done()
			return
		}
		w.Write([]byte(`[{"id": 1, "amount": 10, "type": "EXPENSE"}]`))
	}))
	t.Cleanup(srv.Close)

	client, err := api.NewClient(srv.URL, 300*time.Millisecond)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	ctrl := New("test", nil,
		func(ctx context.Context, params api.Params) ([]api.Transaction, error) {
			return client.ListTransactions(ctx, params)
		},
		Options{FetchTimeout: 2 * time.Second})
	defer ctrl.Close()

	ctrl.Refresh()
	res := awaitSettled(t, ctrl)
	if res.Err != nil || len(res.Data) != 1 {
		t.Fatalf("warm-up fetch: %+v", res)
	}

	hang.Store(true)
	ctrl.Refresh()

	res = awaitSettled(t, ctrl)
	if res.Loading {
		t.Error("hung request must not leave the controller loading")
	}
	if !errors.Is(res.Err, api.ErrNetwork) {
		t.Errorf("expected ErrNetwork from timed-out request, got %v", res.Err)
	}
	if !res.HasData || len(res.Data) != 1 {
		t.Errorf("timed-out refresh must keep prior data, got %+v", res)
	}
	if res.State != StateFailed {
		t.Errorf("expected failed state, got %v", res.State)
	}
}

func TestNotificationsDeliveredInCommitOrder(t *testing.T) {
	f := newBlockingFetcher()
	ctrl := New("test", nil, f.fetch, Options{})
	defer ctrl.Close()

	var mu sync.Mutex
	var got []string
	hold := make(chan struct{})
	first := true
	ctrl.OnChange(func(res Result[string]) {
		// Stall the first delivery so later settlements commit while a
		// notification is still outstanding.
		if first {
			first = false
			<-hold
		}
		mu.Lock()
		got = append(got, res.Data)
		mu.Unlock()
	})

	for _, v := range []string{"a", "b", "c"} {
		ctrl.Refresh()
		f.next(t).succeed(v)
		awaitSettled(t, ctrl)
	}
	close(hold)

	deadline := time.After(2 * time.Second)
	for {
		mu.Lock()
		n := len(got)
		mu.Unlock()
		if n == 3 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("notifications never drained, got %v", got)
		case <-time.After(10 * time.Millisecond):
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("notifications out of commit order: %v", got)
	}
}

func TestCloseDiscardsInFlightFetch(t *testing.T) {
	f := newBlockingFetcher()
	ctrl := New("test", nil, f.fetch, Options{})

	var notifications int
	ctrl.OnChange(func(Result[string]) { notifications++ })

	ctrl.Refresh()
	call := f.next(t)

	ctrl.Close()
	call.succeed("late")
	time.Sleep(100 * time.Millisecond)

	if snap := ctrl.Snapshot(); snap.HasData {
		t.Error("response arriving after Close must be discarded")
	}
	if notifications != 0 {
		t.Errorf("closed controller notified %d times", notifications)
	}

	// Refresh after Close is a no-op.
	ctrl.Refresh()
	select {
	case <-f.calls:
		t.Error("closed controller issued a fetch")
	case <-time.After(50 * time.Millisecond):
	}

	ctrl.Close() // idempotent
}
