package api

import (
	"context"
	"fmt"
)

type detectRequest struct {
	UserID int64 `json:"userId"`
}

// ListSubscriptions fetches detected subscriptions. Supported params: userId,
// status.
func (c *Client) ListSubscriptions(ctx context.Context, params Params) ([]Subscription, error) {
	var out []Subscription
	err := c.get(ctx, "/api/subscriptions", params, &out)
	return out, err
}

// ListDueSoonSubscriptions fetches subscriptions whose next predicted charge
// falls within the lookahead window. Supported params: userId, days.
func (c *Client) ListDueSoonSubscriptions(ctx context.Context, params Params) ([]Subscription, error) {
	var out []Subscription
	err := c.get(ctx, "/api/subscriptions/due-soon", params, &out)
	return out, err
}

// DetectSubscriptions asks the server to re-run subscription detection over
// the user's transactions.
func (c *Client) DetectSubscriptions(ctx context.Context, userID int64) (DetectionResult, error) {
	var out DetectionResult
	err := c.post(ctx, "/api/subscriptions/detect", detectRequest{UserID: userID}, &out)
	return out, err
}

// IgnoreSubscription marks a subscription ignored and returns the updated
// record.
func (c *Client) IgnoreSubscription(ctx context.Context, id int64) (Subscription, error) {
	var out Subscription
	err := c.put(ctx, fmt.Sprintf("/api/subscriptions/%d/ignore", id), nil, &out)
	return out, err
}
