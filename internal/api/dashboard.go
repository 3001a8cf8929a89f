package api

import "context"

// GetDashboardSummary fetches aggregate metrics. params carries userId plus
// the optional startDate/endDate range.
func (c *Client) GetDashboardSummary(ctx context.Context, params Params) (DashboardSummary, error) {
	var out DashboardSummary
	err := c.get(ctx, "/api/dashboard/summary", params, &out)
	return out, err
}
