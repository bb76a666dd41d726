package httputil

import (
	"net/http"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const requestIDHeader = "X-Request-Id"

// Mux is an http.ServeMux whose handlers record a server span per request.
// Inbound W3C trace context is extracted by the otelhttp middleware: when a
// traceparent header is present the server span joins the caller's trace,
// otherwise it starts a new root.
type Mux struct {
	mux        *http.ServeMux
	tp         trace.TracerProvider
	propagator propagation.TextMapPropagator
}

// NewMux creates a traced mux. The tracer provider and propagator are
// injected explicitly; nothing is read from package globals.
func NewMux(tp trace.TracerProvider, propagator propagation.TextMapPropagator) *Mux {
	return &Mux{
		mux:        http.NewServeMux(),
		tp:         tp,
		propagator: propagator,
	}
}

// Handle registers a handler wrapped with tracing and request-id middleware.
func (m *Mux) Handle(pattern string, handler http.Handler) {
	traced := otelhttp.NewHandler(requestID(handler), "HTTP GET "+pattern,
		otelhttp.WithTracerProvider(m.tp),
		otelhttp.WithPropagators(m.propagator),
	)
	m.mux.Handle(pattern, traced)
}

// ServeHTTP implements http.Handler.
func (m *Mux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.mux.ServeHTTP(w, r)
}

// requestID assigns each request an id, echoes it in the response, and
// records it on the server span so logs and traces can be joined.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		trace.SpanFromContext(r.Context()).SetAttributes(attribute.String("request_id", id))
		next.ServeHTTP(w, r)
	})
}
