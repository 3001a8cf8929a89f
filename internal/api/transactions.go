package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// pagedTransactions is the paginated list shape ({"content": [...]}); the
// server also returns a bare array depending on the endpoint version.
type pagedTransactions struct {
	Content []Transaction `json:"content"`
}

// ListTransactions fetches transactions for the given filter set. Supported
// params: userId, type, category, fraudulent, sortBy, sortDir.
func (c *Client) ListTransactions(ctx context.Context, params Params) ([]Transaction, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/api/transactions", params, &raw); err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var page pagedTransactions
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, fmt.Errorf("decode paged transactions: %w", err)
		}
		return page.Content, nil
	}
	var list []Transaction
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}
	return list, nil
}

// CreateTransaction submits a new transaction and returns the created record
// (with the server-computed fraud fields populated).
func (c *Client) CreateTransaction(ctx context.Context, req TransactionRequest) (Transaction, error) {
	var out Transaction
	err := c.post(ctx, "/api/transactions", req, &out)
	return out, err
}
