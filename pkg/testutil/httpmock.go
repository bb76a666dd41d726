package testutil

import (
	"io"
	"net/http"
	"strings"
	"sync"
)

// MockHTTPClient provides a configurable mock HTTP client for testing
// downstream calls without a network.
type MockHTTPClient struct {
	mu              sync.Mutex
	responses       []MockResponse
	requests        []*http.Request
	defaultResponse *MockResponse
}

// MockResponse defines a mock HTTP response.
type MockResponse struct {
	StatusCode int
	Body       string
	Error      error
}

// NewMockHTTPClient creates a new mock HTTP client.
func NewMockHTTPClient() *MockHTTPClient {
	return &MockHTTPClient{}
}

// AddResponse adds a mock response to the queue.
func (m *MockHTTPClient) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// SetDefaultResponse sets the response returned when the queue is empty.
func (m *MockHTTPClient) SetDefaultResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultResponse = &resp
}

// Do implements the HTTP client interface.
func (m *MockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)

	var resp *MockResponse
	if len(m.responses) > 0 {
		resp = &m.responses[0]
		m.responses = m.responses[1:]
	} else {
		resp = m.defaultResponse
	}

	if resp == nil {
		return nil, &MockError{Message: "no mock response configured"}
	}
	if resp.Error != nil {
		return nil, resp.Error
	}

	return &http.Response{
		StatusCode: resp.StatusCode,
		Body:       io.NopCloser(strings.NewReader(resp.Body)),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}

// Requests returns all captured requests.
func (m *MockHTTPClient) Requests() []*http.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests
}

// LastRequest returns the last captured request.
func (m *MockHTTPClient) LastRequest() *http.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return nil
	}
	return m.requests[len(m.requests)-1]
}

// MockError is a simple error type for mock failures.
type MockError struct {
	Message string
}

func (e *MockError) Error() string {
	return e.Message
}
