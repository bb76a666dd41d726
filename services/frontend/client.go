package frontend

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/instantcocoa/meshtrace/pkg/httputil"
)

// DataResponse mirrors the backend /data payload.
type DataResponse struct {
	Items []json.RawMessage `json:"items"`
	Count int               `json:"count"`
}

// ComputeResponse mirrors the backend /compute payload.
type ComputeResponse struct {
	Result int64  `json:"result"`
	Status string `json:"status"`
}

// Client is a remote client for the backend service.
type Client struct {
	baseURL string
	http    *httputil.Client
	logger  *slog.Logger
}

// NewClient creates a new backend client.
func NewClient(baseURL string, hc *httputil.Client, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    hc,
		logger:  logger.With("component", "backend-client"),
	}
}

// FetchData fetches enriched items from the backend.
func (c *Client) FetchData(ctx context.Context) (*DataResponse, error) {
	var resp DataResponse
	if err := c.http.GetJSON(ctx, c.baseURL+"/data", &resp); err != nil {
		return nil, fmt.Errorf("backend data: %w", err)
	}
	return &resp, nil
}

// FetchDataRaw fetches the backend /data payload without decoding it, for
// the pass-through proxy endpoint.
func (c *Client) FetchDataRaw(ctx context.Context) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.http.GetJSON(ctx, c.baseURL+"/data", &raw); err != nil {
		return nil, fmt.Errorf("backend data: %w", err)
	}
	return raw, nil
}

// Compute invokes the backend synthetic workload.
func (c *Client) Compute(ctx context.Context) (*ComputeResponse, error) {
	var resp ComputeResponse
	if err := c.http.GetJSON(ctx, c.baseURL+"/compute", &resp); err != nil {
		return nil, fmt.Errorf("backend compute: %w", err)
	}
	return &resp, nil
}
