package views

import (
	"context"
	"strconv"
	"time"

	"finsight/internal/api"
	"finsight/internal/query"
	"finsight/internal/services"
)

// DefaultTransactionFilters is the filter set the transactions view mounts
// with: every facet open, newest first.
func DefaultTransactionFilters() api.Params {
	return api.Params{
		{Key: "type", Value: ""},
		{Key: "category", Value: ""},
		{Key: "fraudulent", Value: ""},
		{Key: "sortBy", Value: "transactionDate"},
		{Key: "sortDir", Value: "desc"},
	}
}

// Transactions is the transactions data view: one controller over the
// transaction list, an optional live-refresh timer, and the add-transaction
// action.
type Transactions struct {
	ctrl      *query.Controller[[]api.Transaction]
	mutations *services.Mutations
}

func NewTransactions(client *api.Client, mutations *services.Mutations, user api.User, timeout time.Duration) *Transactions {
	fixed := api.Params{{Key: "userId", Value: strconv.FormatInt(user.ID, 10)}}
	ctrl := query.New("transactions", fixed,
		func(ctx context.Context, params api.Params) ([]api.Transaction, error) {
			return client.ListTransactions(ctx, params)
		},
		query.Options{FetchTimeout: timeout})
	ctrl.SetFilters(DefaultTransactionFilters())
	return &Transactions{ctrl: ctrl, mutations: mutations}
}

func (v *Transactions) SetFilters(filters api.Params) { v.ctrl.SetFilters(filters) }
func (v *Transactions) Filters() api.Params           { return v.ctrl.Filters() }
func (v *Transactions) Refresh()                      { v.ctrl.Refresh() }

func (v *Transactions) Snapshot() query.Result[[]api.Transaction] { return v.ctrl.Snapshot() }

func (v *Transactions) Await(ctx context.Context) query.Result[[]api.Transaction] {
	return v.ctrl.Await(ctx)
}

func (v *Transactions) OnChange(fn func(query.Result[[]api.Transaction])) { v.ctrl.OnChange(fn) }

// EnableLiveRefresh polls the current filter set at the given interval.
func (v *Transactions) EnableLiveRefresh(interval time.Duration) { v.ctrl.StartPolling(interval) }
func (v *Transactions) DisableLiveRefresh()                      { v.ctrl.StopPolling() }
func (v *Transactions) LiveRefresh() bool                        { return v.ctrl.Polling() }

// Create submits a new transaction and, on success, refreshes the list so the
// record (with its server-computed fraud fields) appears. A failed create
// triggers no refresh.
func (v *Transactions) Create(ctx context.Context, req api.TransactionRequest) (api.Transaction, error) {
	tx, err := v.mutations.CreateTransaction(ctx, req)
	if err != nil {
		return api.Transaction{}, err
	}
	v.ctrl.Refresh()
	return tx, nil
}

// Close releases the controller and any live-refresh timer.
func (v *Transactions) Close() { v.ctrl.Close() }
