package views

import (
	"context"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"finsight/internal/api"
	"finsight/internal/query"
	"finsight/internal/services"
)

// DefaultSubscriptionFilters mounts the view on active subscriptions.
func DefaultSubscriptionFilters() api.Params {
	return api.Params{{Key: "status", Value: "ACTIVE"}}
}

// Subscriptions is the subscription-management view. It owns two controllers:
// the subscription list and the due-soon panel (next charge within the
// lookahead window). Detection and ignore actions refresh both.
type Subscriptions struct {
	list      *query.Controller[[]api.Subscription]
	dueSoon   *query.Controller[[]api.Subscription]
	mutations *services.Mutations
	userID    int64
}

func NewSubscriptions(client *api.Client, mutations *services.Mutations, user api.User, dueSoonDays int, timeout time.Duration) *Subscriptions {
	if dueSoonDays <= 0 {
		dueSoonDays = 7
	}
	fixed := api.Params{{Key: "userId", Value: strconv.FormatInt(user.ID, 10)}}

	list := query.New("subscriptions", fixed,
		func(ctx context.Context, params api.Params) ([]api.Subscription, error) {
			return client.ListSubscriptions(ctx, params)
		},
		query.Options{FetchTimeout: timeout})
	list.SetFilters(DefaultSubscriptionFilters())

	dueSoonFixed := fixed.With("days", strconv.Itoa(dueSoonDays))
	dueSoon := query.New("subscriptions_due_soon", dueSoonFixed,
		func(ctx context.Context, params api.Params) ([]api.Subscription, error) {
			return client.ListDueSoonSubscriptions(ctx, params)
		},
		query.Options{FetchTimeout: timeout})
	dueSoon.Refresh()

	return &Subscriptions{
		list:      list,
		dueSoon:   dueSoon,
		mutations: mutations,
		userID:    user.ID,
	}
}

func (v *Subscriptions) SetFilters(filters api.Params) { v.list.SetFilters(filters) }
func (v *Subscriptions) Filters() api.Params           { return v.list.Filters() }

// Refresh re-fetches both the list and the due-soon panel.
func (v *Subscriptions) Refresh() {
	v.list.Refresh()
	v.dueSoon.Refresh()
}

func (v *Subscriptions) Snapshot() query.Result[[]api.Subscription] { return v.list.Snapshot() }

func (v *Subscriptions) DueSoonSnapshot() query.Result[[]api.Subscription] {
	return v.dueSoon.Snapshot()
}

// Await blocks until both controllers have settled.
func (v *Subscriptions) Await(ctx context.Context) (query.Result[[]api.Subscription], query.Result[[]api.Subscription]) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v.list.Await(gctx)
		return nil
	})
	g.Go(func() error {
		v.dueSoon.Await(gctx)
		return nil
	})
	_ = g.Wait()
	return v.list.Snapshot(), v.dueSoon.Snapshot()
}

func (v *Subscriptions) OnChange(fn func(query.Result[[]api.Subscription])) { v.list.OnChange(fn) }

func (v *Subscriptions) OnDueSoonChange(fn func(query.Result[[]api.Subscription])) {
	v.dueSoon.OnChange(fn)
}

// Detect re-runs subscription detection and, on success, refreshes both the
// list and the due-soon panel.
func (v *Subscriptions) Detect(ctx context.Context) (api.DetectionResult, error) {
	res, err := v.mutations.DetectSubscriptions(ctx, v.userID)
	if err != nil {
		return api.DetectionResult{}, err
	}
	v.Refresh()
	return res, nil
}

// Ignore marks a subscription ignored and, on success, refreshes both
// panels. A failed ignore triggers no refresh.
func (v *Subscriptions) Ignore(ctx context.Context, id int64) (api.Subscription, error) {
	sub, err := v.mutations.IgnoreSubscription(ctx, id)
	if err != nil {
		return api.Subscription{}, err
	}
	v.Refresh()
	return sub, nil
}

// Close releases both controllers.
func (v *Subscriptions) Close() {
	v.list.Close()
	v.dueSoon.Close()
}
