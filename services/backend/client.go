package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/instantcocoa/meshtrace/pkg/httputil"
)

// QueryResponse mirrors the dataapi /query payload.
type QueryResponse struct {
	Table       string  `json:"table"`
	Rows        []Row   `json:"rows"`
	Count       int     `json:"count"`
	QueryTimeMS float64 `json:"query_time_ms"`
}

// Client is a remote client for the dataapi service.
type Client struct {
	baseURL string
	http    *httputil.Client
	logger  *slog.Logger
}

// NewClient creates a new dataapi client.
func NewClient(baseURL string, hc *httputil.Client, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    hc,
		logger:  logger.With("component", "dataapi-client"),
	}
}

// Query fetches rows from the dataapi query endpoint.
func (c *Client) Query(ctx context.Context) (*QueryResponse, error) {
	c.logger.DebugContext(ctx, "querying dataapi", "url", c.baseURL)

	var resp QueryResponse
	if err := c.http.GetJSON(ctx, c.baseURL+"/query", &resp); err != nil {
		return nil, fmt.Errorf("dataapi query: %w", err)
	}
	return &resp, nil
}

// Schema fetches the raw schema payload. The bytes pass through unmodified
// so the proxy endpoint cannot drift from the data tier's descriptor.
func (c *Client) Schema(ctx context.Context) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.http.GetJSON(ctx, c.baseURL+"/schema", &raw); err != nil {
		return nil, fmt.Errorf("dataapi schema: %w", err)
	}
	return raw, nil
}
