// Package services holds the write-side operations of the client.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"finsight/internal/api"
)

// Mutations executes create/update actions against the server. It never
// touches any controller's data: a successful mutation returns to the caller,
// and the caller refreshes every view that depends on the mutated collection.
// That keeps the client free of a derived cache that could diverge from the
// server's fraud and aggregation computations. A failed mutation commits
// nothing and triggers no refresh.
type Mutations struct {
	client *api.Client
}

func NewMutations(client *api.Client) *Mutations {
	return &Mutations{client: client}
}

// CreateTransaction validates the fields the entry form enforces and submits
// the transaction. Deeper validation is the server's; its rejection surfaces
// as api.ErrValidation with the server message.
func (m *Mutations) CreateTransaction(ctx context.Context, req api.TransactionRequest) (api.Transaction, error) {
	if err := req.Validate(); err != nil {
		return api.Transaction{}, &api.Error{Kind: api.ErrValidation, Message: err.Error()}
	}

	tx, err := m.client.CreateTransaction(ctx, req)
	if err != nil {
		return api.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction created",
		"id", tx.ID,
		"type", tx.Type,
		"category", tx.Category,
		"fraudulent", tx.Fraudulent)
	return tx, nil
}

// ResolveFraudAlert marks an alert resolved.
func (m *Mutations) ResolveFraudAlert(ctx context.Context, id int64) (api.FraudAlert, error) {
	alert, err := m.client.ResolveFraudAlert(ctx, id)
	if err != nil {
		return api.FraudAlert{}, fmt.Errorf("resolve fraud alert %d: %w", id, err)
	}
	slog.InfoContext(ctx, "Fraud alert resolved", "id", id)
	return alert, nil
}

// IgnoreSubscription marks a detected subscription ignored.
func (m *Mutations) IgnoreSubscription(ctx context.Context, id int64) (api.Subscription, error) {
	sub, err := m.client.IgnoreSubscription(ctx, id)
	if err != nil {
		return api.Subscription{}, fmt.Errorf("ignore subscription %d: %w", id, err)
	}
	slog.InfoContext(ctx, "Subscription ignored", "id", id, "merchant", sub.Merchant)
	return sub, nil
}

// DetectSubscriptions triggers the server-side detection heuristic.
func (m *Mutations) DetectSubscriptions(ctx context.Context, userID int64) (api.DetectionResult, error) {
	res, err := m.client.DetectSubscriptions(ctx, userID)
	if err != nil {
		return api.DetectionResult{}, fmt.Errorf("detect subscriptions: %w", err)
	}
	slog.InfoContext(ctx, "Subscription detection completed", "detected", res.Detected)
	return res, nil
}
