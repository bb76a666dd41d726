package frontend

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/instantcocoa/meshtrace/pkg/latency"
)

const indexDelay = 5 * time.Millisecond

// Service implements the entry-tier operations.
type Service struct {
	backend      *Client
	indexSampler latency.Sampler
	tracer       trace.Tracer
	logger       *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithIndexSampler overrides the index endpoint's fixed delay.
func WithIndexSampler(s latency.Sampler) Option {
	return func(svc *Service) { svc.indexSampler = s }
}

// NewService creates the entry-tier service.
func NewService(backend *Client, tracer trace.Tracer, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		backend:      backend,
		indexSampler: latency.NewSampler(latency.FixedProfile(indexDelay)),
		tracer:       tracer,
		logger:       logger.With("component", "frontend"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Index is the baseline simple-trace shape: one handler span, no downstream
// calls.
func (s *Service) Index(ctx context.Context) *IndexResponse {
	_, span := s.tracer.Start(ctx, "handle-index")
	defer span.End()
	span.SetAttributes(attribute.String("http.route", "/"))

	time.Sleep(s.indexSampler.Sample().Duration)

	return &IndexResponse{
		Service: "frontend",
		Status:  "ok",
		Message: "Hello from the service mesh!",
	}
}

// Work is the fan-out scenario: it calls backend /data then /compute
// sequentially, each under its own child span, and combines both results.
// One request here yields the canonical complex trace, three services deep.
func (s *Service) Work(ctx context.Context) (*WorkResponse, error) {
	ctx, span := s.tracer.Start(ctx, "handle-work")
	defer span.End()
	span.SetAttributes(attribute.String("http.route", "/work"))

	data, err := s.callBackendData(ctx)
	if err != nil {
		span.SetStatus(codes.Error, "backend data failed")
		span.RecordError(err)
		s.logger.ErrorContext(ctx, "work failed on data call", "error", err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("backend.items_count", len(data.Items)))

	compute, err := s.callBackendCompute(ctx)
	if err != nil {
		span.SetStatus(codes.Error, "backend compute failed")
		span.RecordError(err)
		s.logger.ErrorContext(ctx, "work failed on compute call", "error", err)
		return nil, err
	}
	span.SetAttributes(attribute.Int64("backend.compute_result", compute.Result))

	s.logger.InfoContext(ctx, "work completed",
		"items", len(data.Items),
		"result", compute.Result,
	)

	return &WorkResponse{
		Items:  data.Items,
		Result: compute.Result,
		Status: "ok",
	}, nil
}

func (s *Service) callBackendData(ctx context.Context) (*DataResponse, error) {
	ctx, span := s.tracer.Start(ctx, "call-backend-data")
	defer span.End()

	resp, err := s.backend.FetchData(ctx)
	if err != nil {
		span.SetStatus(codes.Error, "downstream call failed")
		span.RecordError(err)
		return nil, err
	}
	return resp, nil
}

func (s *Service) callBackendCompute(ctx context.Context) (*ComputeResponse, error) {
	ctx, span := s.tracer.Start(ctx, "call-backend-compute")
	defer span.End()

	resp, err := s.backend.Compute(ctx)
	if err != nil {
		span.SetStatus(codes.Error, "downstream call failed")
		span.RecordError(err)
		return nil, err
	}
	return resp, nil
}

// Data proxies backend /data: a single hop of depth below the frontend.
func (s *Service) Data(ctx context.Context) (json.RawMessage, error) {
	ctx, span := s.tracer.Start(ctx, "handle-data")
	defer span.End()

	raw, err := s.backend.FetchDataRaw(ctx)
	if err != nil {
		span.SetStatus(codes.Error, "backend data failed")
		span.RecordError(err)
		s.logger.ErrorContext(ctx, "data proxy failed", "error", err)
		return nil, err
	}
	return raw, nil
}
