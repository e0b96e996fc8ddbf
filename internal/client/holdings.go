package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go-item-recovery/internal/model"
)

// HoldingsClient talks to the inventory service that owns the user's
// live item holdings.
type HoldingsClient struct {
	httpClient
}

func NewHoldingsClient(baseURL string, token string, timeout time.Duration) *HoldingsClient {
	return &HoldingsClient{httpClient: newHTTPClient(baseURL, token, timeout)}
}

type capacityResponse struct {
	HasCapacity bool `json:"has_capacity"`
}

type containsResponse struct {
	Contains bool `json:"contains"`
}

type deliverRequest struct {
	Item model.ItemSnapshot `json:"item"`
}

// HasCapacity reports whether the user's holdings can accept another
// item stack.
func (c *HoldingsClient) HasCapacity(ctx context.Context, userID string) (bool, error) {
	path := fmt.Sprintf("/api/v1/holdings/%s/capacity", url.PathEscape(userID))

	var data capacityResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &data); err != nil {
		return false, err
	}
	return data.HasCapacity, nil
}

// Deliver places the item into the user's holdings.
func (c *HoldingsClient) Deliver(ctx context.Context, userID string, snap model.ItemSnapshot) error {
	path := fmt.Sprintf("/api/v1/holdings/%s/items", url.PathEscape(userID))
	return c.do(ctx, http.MethodPost, path, deliverRequest{Item: snap}, nil)
}

// Contains reports whether the user's holdings currently carry an item
// matching the snapshot, ignoring wear.
func (c *HoldingsClient) Contains(ctx context.Context, userID string, snap model.ItemSnapshot) (bool, error) {
	path := fmt.Sprintf("/api/v1/holdings/%s/contains", url.PathEscape(userID))

	var data containsResponse
	if err := c.do(ctx, http.MethodPost, path, deliverRequest{Item: snap}, &data); err != nil {
		return false, err
	}
	return data.Contains, nil
}
