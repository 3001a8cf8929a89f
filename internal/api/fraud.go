package api

import (
	"context"
	"fmt"
)

// ListFraudAlerts fetches fraud alerts. Supported params: userId, resolved,
// severity.
func (c *Client) ListFraudAlerts(ctx context.Context, params Params) ([]FraudAlert, error) {
	var out []FraudAlert
	err := c.get(ctx, "/api/fraud/alerts", params, &out)
	return out, err
}

// ResolveFraudAlert marks an alert resolved and returns the updated record.
func (c *Client) ResolveFraudAlert(ctx context.Context, id int64) (FraudAlert, error) {
	var out FraudAlert
	err := c.put(ctx, fmt.Sprintf("/api/fraud/alerts/%d/resolve", id), nil, &out)
	return out, err
}
