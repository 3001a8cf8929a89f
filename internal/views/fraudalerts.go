package views

import (
	"context"
	"strconv"
	"time"

	"finsight/internal/api"
	"finsight/internal/query"
	"finsight/internal/services"
)

// DefaultFraudAlertFilters mounts the view on unresolved alerts of any
// severity.
func DefaultFraudAlertFilters() api.Params {
	return api.Params{
		{Key: "resolved", Value: "false"},
		{Key: "severity", Value: ""},
	}
}

// FraudAlerts is the fraud-alert review view.
type FraudAlerts struct {
	ctrl      *query.Controller[[]api.FraudAlert]
	mutations *services.Mutations
}

func NewFraudAlerts(client *api.Client, mutations *services.Mutations, user api.User, timeout time.Duration) *FraudAlerts {
	fixed := api.Params{{Key: "userId", Value: strconv.FormatInt(user.ID, 10)}}
	ctrl := query.New("fraud_alerts", fixed,
		func(ctx context.Context, params api.Params) ([]api.FraudAlert, error) {
			return client.ListFraudAlerts(ctx, params)
		},
		query.Options{FetchTimeout: timeout})
	ctrl.SetFilters(DefaultFraudAlertFilters())
	return &FraudAlerts{ctrl: ctrl, mutations: mutations}
}

func (v *FraudAlerts) SetFilters(filters api.Params) { v.ctrl.SetFilters(filters) }
func (v *FraudAlerts) Filters() api.Params           { return v.ctrl.Filters() }
func (v *FraudAlerts) Refresh()                      { v.ctrl.Refresh() }

func (v *FraudAlerts) Snapshot() query.Result[[]api.FraudAlert] { return v.ctrl.Snapshot() }

func (v *FraudAlerts) Await(ctx context.Context) query.Result[[]api.FraudAlert] {
	return v.ctrl.Await(ctx)
}

func (v *FraudAlerts) OnChange(fn func(query.Result[[]api.FraudAlert])) { v.ctrl.OnChange(fn) }

func (v *FraudAlerts) EnableLiveRefresh(interval time.Duration) { v.ctrl.StartPolling(interval) }
func (v *FraudAlerts) DisableLiveRefresh()                      { v.ctrl.StopPolling() }

// Resolve marks an alert resolved and, on success, refreshes the list. A
// failed resolve triggers no refresh.
func (v *FraudAlerts) Resolve(ctx context.Context, id int64) (api.FraudAlert, error) {
	alert, err := v.mutations.ResolveFraudAlert(ctx, id)
	if err != nil {
		return api.FraudAlert{}, err
	}
	v.ctrl.Refresh()
	return alert, nil
}

func (v *FraudAlerts) Close() { v.ctrl.Close() }
