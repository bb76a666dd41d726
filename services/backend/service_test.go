package backend

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/instantcocoa/meshtrace/pkg/httputil"
	"github.com/instantcocoa/meshtrace/pkg/latency"
	"github.com/instantcocoa/meshtrace/pkg/testutil"
)

const queryBody = `{
	"table": "products",
	"rows": [
		{"id": 1, "name": "widget", "stock": 142, "warehouse": "A"},
		{"id": 2, "name": "gadget", "stock": 87, "warehouse": "B"},
		{"id": 3, "name": "doohickey", "stock": 34, "warehouse": "A"}
	],
	"count": 3,
	"query_time_ms": 12.5
}`

func newTestService(t *testing.T, mock *testutil.MockHTTPClient) (*Service, *tracetest.SpanRecorder) {
	t.Helper()
	tp, recorder := testutil.NewTracerProvider("backend")
	data := NewClient("http://dataapi:8082", httputil.NewClientWithDoer(mock), testutil.DiscardLogger())
	svc := NewService(data, tp.Tracer("backend"), testutil.DiscardLogger(),
		WithStallSampler(latency.NewFixedSampler(latency.Draw{Band: "fast"})),
	)
	return svc, recorder
}

func findSpan(spans []sdktrace.ReadOnlySpan, name string) sdktrace.ReadOnlySpan {
	for _, s := range spans {
		if s.Name() == name {
			return s
		}
	}
	return nil
}

func findAttr(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestService_FetchData(t *testing.T) {
	mock := testutil.NewMockHTTPClient()
	mock.AddResponse(testutil.MockResponse{StatusCode: 200, Body: queryBody})
	svc, recorder := newTestService(t, mock)

	result, err := svc.FetchData(context.Background())
	if err != nil {
		t.Fatalf("FetchData() error = %v", err)
	}

	// Output row count equals the downstream row count.
	if result.Count != 3 {
		t.Errorf("Count = %d, want 3", result.Count)
	}
	if len(result.Items) != 3 {
		t.Fatalf("len(Items) = %d, want 3", len(result.Items))
	}

	for i, item := range result.Items {
		if item.Price < 1.99 || item.Price > 49.99 {
			t.Errorf("item %d price = %v, want in [1.99, 49.99]", i, item.Price)
		}
		if item.Name == "" {
			t.Errorf("item %d lost its source fields: %+v", i, item)
		}
	}

	spans := recorder.Ended()
	fetch := findSpan(spans, "backend.fetch-data")
	if fetch == nil {
		t.Fatal("backend.fetch-data span not recorded")
	}
	if v, ok := findAttr(fetch, "db.rows_returned"); !ok || v.AsInt64() != 3 {
		t.Errorf("db.rows_returned = %v, want 3", v.AsInt64())
	}
	if v, ok := findAttr(fetch, "db.query_time_ms"); !ok || v.AsFloat64() != 12.5 {
		t.Errorf("db.query_time_ms = %v, want 12.5 (propagated from downstream)", v.AsFloat64())
	}

	for _, name := range []string{"backend.call-db", "backend.enrich"} {
		child := findSpan(spans, name)
		if child == nil {
			t.Fatalf("%s span not recorded", name)
		}
		if child.Parent().SpanID() != fetch.SpanContext().SpanID() {
			t.Errorf("%s is not a child of backend.fetch-data", name)
		}
	}
}

func TestService_FetchData_DownstreamError(t *testing.T) {
	mock := testutil.NewMockHTTPClient()
	mock.AddResponse(testutil.MockResponse{Error: errors.New("connection refused")})
	svc, recorder := newTestService(t, mock)

	if _, err := svc.FetchData(context.Background()); err == nil {
		t.Fatal("FetchData() error = nil, want error")
	}

	fetch := findSpan(recorder.Ended(), "backend.fetch-data")
	if fetch == nil {
		t.Fatal("backend.fetch-data span not recorded")
	}
	if fetch.Status().Code != codes.Error {
		t.Errorf("span status = %v, want Error", fetch.Status().Code)
	}
}

// A downstream body that is not valid JSON is treated as unavailable.
func TestService_FetchData_MalformedResponse(t *testing.T) {
	mock := testutil.NewMockHTTPClient()
	mock.AddResponse(testutil.MockResponse{StatusCode: 200, Body: "<html>oops</html>"})
	svc, _ := newTestService(t, mock)

	if _, err := svc.FetchData(context.Background()); err == nil {
		t.Fatal("FetchData() error = nil, want error")
	}
}

func TestService_Compute(t *testing.T) {
	svc, recorder := newTestService(t, testutil.NewMockHTTPClient())

	result := svc.Compute(context.Background())

	// Deterministic sum of squares for i in [0, 2000).
	const want = 2664667000
	if result.Result != want {
		t.Errorf("Result = %d, want %d", result.Result, want)
	}
	if result.Status != "ok" {
		t.Errorf("Status = %v, want ok", result.Status)
	}

	spans := recorder.Ended()
	compute := findSpan(spans, "backend.compute")
	if compute == nil {
		t.Fatal("backend.compute span not recorded")
	}
	if v, ok := findAttr(compute, "compute.result"); !ok || v.AsInt64() != want {
		t.Errorf("compute.result = %v, want %d", v.AsInt64(), want)
	}
	if heavy := findSpan(spans, "backend.heavy-work"); heavy == nil {
		t.Error("backend.heavy-work span not recorded")
	}
}

// The stall delays the response but never changes the numeric result.
func TestService_Compute_StallKeepsResult(t *testing.T) {
	tp, recorder := testutil.NewTracerProvider("backend")
	data := NewClient("http://dataapi:8082", httputil.NewClientWithDoer(testutil.NewMockHTTPClient()), testutil.DiscardLogger())
	svc := NewService(data, tp.Tracer("backend"), testutil.DiscardLogger(),
		WithStallSampler(latency.NewFixedSampler(
			latency.Draw{Band: "stall", Duration: 5 * time.Millisecond, Slow: true},
		)),
	)

	start := time.Now()
	result := svc.Compute(context.Background())
	elapsed := time.Since(start)

	if result.Result != 2664667000 {
		t.Errorf("Result = %d, want 2664667000", result.Result)
	}
	if elapsed < 5*time.Millisecond {
		t.Errorf("elapsed = %v, want >= 5ms stall", elapsed)
	}

	heavy := findSpan(recorder.Ended(), "backend.heavy-work")
	if heavy == nil {
		t.Fatal("backend.heavy-work span not recorded")
	}
	if v, ok := findAttr(heavy, "compute.stalled"); !ok || !v.AsBool() {
		t.Error("compute.stalled not set on a stalled run")
	}
}

func TestService_Schema_Proxy(t *testing.T) {
	const schemaBody = `{"table":"products","columns":["id","name","stock","warehouse"],"indexes":["id","warehouse"],"row_count":5}`

	mock := testutil.NewMockHTTPClient()
	mock.AddResponse(testutil.MockResponse{StatusCode: 200, Body: schemaBody})
	svc, _ := newTestService(t, mock)

	raw, err := svc.Schema(context.Background())
	if err != nil {
		t.Fatalf("Schema() error = %v", err)
	}
	if string(raw) != schemaBody {
		t.Errorf("Schema() = %s, want unmodified downstream body", raw)
	}
}

func TestService_Schema_DownstreamError(t *testing.T) {
	mock := testutil.NewMockHTTPClient()
	mock.AddResponse(testutil.MockResponse{StatusCode: 503, Body: `{"error":"down"}`})
	svc, recorder := newTestService(t, mock)

	if _, err := svc.Schema(context.Background()); err == nil {
		t.Fatal("Schema() error = nil, want error")
	}

	span := findSpan(recorder.Ended(), "backend.get-schema")
	if span == nil {
		t.Fatal("backend.get-schema span not recorded")
	}
	if span.Status().Code != codes.Error {
		t.Errorf("span status = %v, want Error", span.Status().Code)
	}
}

func TestSumSquares(t *testing.T) {
	tests := []struct {
		n    int
		want int64
	}{
		{0, 0},
		{1, 0},
		{4, 14},
		{2000, 2664667000},
	}

	for _, tt := range tests {
		if got := sumSquares(tt.n); got != tt.want {
			t.Errorf("sumSquares(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}
