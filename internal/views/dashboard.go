package views

import (
	"context"
	"strconv"
	"time"

	"finsight/internal/api"
	"finsight/internal/query"
)

// Dashboard is the aggregate-metrics view: totals, fraud statistics, and
// category breakdowns over an optional date range.
type Dashboard struct {
	ctrl *query.Controller[api.DashboardSummary]
}

func NewDashboard(client *api.Client, user api.User, timeout time.Duration) *Dashboard {
	fixed := api.Params{{Key: "userId", Value: strconv.FormatInt(user.ID, 10)}}
	ctrl := query.New("dashboard", fixed,
		func(ctx context.Context, params api.Params) (api.DashboardSummary, error) {
			return client.GetDashboardSummary(ctx, params)
		},
		query.Options{FetchTimeout: timeout})
	ctrl.Refresh()
	return &Dashboard{ctrl: ctrl}
}

// SetRange restricts the summary to [start, end]; zero dates clear the bound.
func (v *Dashboard) SetRange(start, end time.Time) {
	filters := api.Params{}
	if !start.IsZero() {
		filters = filters.With("startDate", start.Format("2006-01-02"))
	} else {
		filters = filters.With("startDate", "")
	}
	if !end.IsZero() {
		filters = filters.With("endDate", end.Format("2006-01-02"))
	} else {
		filters = filters.With("endDate", "")
	}
	v.ctrl.SetFilters(filters)
}

func (v *Dashboard) Refresh() { v.ctrl.Refresh() }

func (v *Dashboard) Snapshot() query.Result[api.DashboardSummary] { return v.ctrl.Snapshot() }

func (v *Dashboard) Await(ctx context.Context) query.Result[api.DashboardSummary] {
	return v.ctrl.Await(ctx)
}

func (v *Dashboard) OnChange(fn func(query.Result[api.DashboardSummary])) { v.ctrl.OnChange(fn) }

func (v *Dashboard) Close() { v.ctrl.Close() }
