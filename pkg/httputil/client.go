package httputil

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Doer abstracts *http.Client for testing.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// StatusError is returned when a downstream call completes with a non-2xx
// status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("downstream returned %d: %s", e.StatusCode, e.Body)
}

// Client is a JSON HTTP client whose transport injects the active trace
// context into outbound request headers. Calls are single-attempt with a
// bounded timeout: on timeout or connection failure the error surfaces to
// the caller, there is no retry.
type Client struct {
	doer Doer
}

// NewClient creates a traced client. The timeout bounds each call per hop.
func NewClient(tp trace.TracerProvider, propagator propagation.TextMapPropagator, timeout time.Duration) *Client {
	return &Client{
		doer: &http.Client{
			Timeout: timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport,
				otelhttp.WithTracerProvider(tp),
				otelhttp.WithPropagators(propagator),
			),
		},
	}
}

// NewClientWithDoer creates a client over a custom Doer, for tests.
func NewClientWithDoer(d Doer) *Client {
	return &Client{doer: d}
}

// GetJSON executes an HTTP GET against url and decodes the response body
// into out. A malformed body is reported the same way as an unreachable
// downstream: as an error for the caller to surface.
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	res, err := c.doer.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", url, err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return &StatusError{StatusCode: res.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", url, err)
	}
	return nil
}
