package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// BalanceClient talks to the wallet service. All amounts are in the
// currency's smallest unit.
type BalanceClient struct {
	httpClient
}

func NewBalanceClient(baseURL string, token string, timeout time.Duration) *BalanceClient {
	return &BalanceClient{httpClient: newHTTPClient(baseURL, token, timeout)}
}

type balanceCheckResponse struct {
	Sufficient bool `json:"sufficient"`
}

type amountRequest struct {
	Amount int    `json:"amount"`
	Reason string `json:"reason"`
}

// Has reports whether the user can cover the given amount.
func (c *BalanceClient) Has(ctx context.Context, userID string, amount int) (bool, error) {
	path := fmt.Sprintf("/api/v1/wallets/%s/check?amount=%d", url.PathEscape(userID), amount)

	var data balanceCheckResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &data); err != nil {
		return false, err
	}
	return data.Sufficient, nil
}

// Debit withdraws the amount. An error means the debit was not applied.
func (c *BalanceClient) Debit(ctx context.Context, userID string, amount int) error {
	path := fmt.Sprintf("/api/v1/wallets/%s/debit", url.PathEscape(userID))
	return c.do(ctx, http.MethodPost, path, amountRequest{Amount: amount, Reason: "item restoration"}, nil)
}

// Credit returns a previously debited amount to the user.
func (c *BalanceClient) Credit(ctx context.Context, userID string, amount int) error {
	path := fmt.Sprintf("/api/v1/wallets/%s/credit", url.PathEscape(userID))
	return c.do(ctx, http.MethodPost, path, amountRequest{Amount: amount, Reason: "restoration rollback"}, nil)
}
