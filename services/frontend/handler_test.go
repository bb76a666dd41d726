package frontend

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel/propagation"

	"github.com/instantcocoa/meshtrace/pkg/httputil"
	"github.com/instantcocoa/meshtrace/pkg/latency"
	"github.com/instantcocoa/meshtrace/pkg/testutil"
)

func newTestHandler(t *testing.T, mock *testutil.MockHTTPClient) http.Handler {
	t.Helper()
	tp, _ := testutil.NewTracerProvider("frontend")
	backendClient := NewClient("http://backend:8081", httputil.NewClientWithDoer(mock), testutil.DiscardLogger())
	svc := NewService(backendClient, tp.Tracer("frontend"), testutil.DiscardLogger(),
		WithIndexSampler(latency.NewFixedSampler(latency.Draw{Band: "fixed"})),
	)
	mux := httputil.NewMux(tp, propagation.TraceContext{})
	NewHandler(svc, testutil.DiscardLogger()).Register(mux)
	return mux
}

func TestHandler_Health(t *testing.T) {
	h := newTestHandler(t, testutil.NewMockHTTPClient())

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	if w.Code != 200 {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestHandler_Index(t *testing.T) {
	h := newTestHandler(t, testutil.NewMockHTTPClient())

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	if w.Code != 200 {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp IndexResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Service != "frontend" || resp.Status != "ok" {
		t.Errorf("body = %+v, want frontend/ok", resp)
	}
}

// Unknown paths fall into the "/" catch-all and must not serve the index.
func TestHandler_Index_UnknownPath(t *testing.T) {
	h := newTestHandler(t, testutil.NewMockHTTPClient())

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/nope", nil))

	if w.Code != 404 {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestHandler_Work(t *testing.T) {
	mock := testutil.NewMockHTTPClient()
	mock.AddResponse(testutil.MockResponse{StatusCode: 200, Body: dataBody})
	mock.AddResponse(testutil.MockResponse{StatusCode: 200, Body: computeBody})
	h := newTestHandler(t, mock)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/work", nil))

	if w.Code != 200 {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp WorkResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(resp.Items) != 2 {
		t.Errorf("len(Items) = %d, want 2", len(resp.Items))
	}
	if resp.Result != 2664667000 {
		t.Errorf("result = %d, want 2664667000", resp.Result)
	}
}

func TestHandler_Work_BackendUnavailable(t *testing.T) {
	mock := testutil.NewMockHTTPClient()
	mock.AddResponse(testutil.MockResponse{Error: errors.New("dial tcp: connection refused")})
	h := newTestHandler(t, mock)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/work", nil))

	if w.Code != 502 {
		t.Errorf("status = %d, want 502", w.Code)
	}
}

func TestHandler_Data(t *testing.T) {
	mock := testutil.NewMockHTTPClient()
	mock.AddResponse(testutil.MockResponse{StatusCode: 200, Body: dataBody})
	h := newTestHandler(t, mock)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/data", nil))

	if w.Code != 200 {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp DataResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Count != 2 {
		t.Errorf("count = %d, want 2", resp.Count)
	}
}

func TestHandler_Data_BackendError(t *testing.T) {
	mock := testutil.NewMockHTTPClient()
	mock.AddResponse(testutil.MockResponse{StatusCode: 500, Body: `{"error":"boom"}`})
	h := newTestHandler(t, mock)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/data", nil))

	if w.Code != 502 {
		t.Errorf("status = %d, want 502", w.Code)
	}
}
