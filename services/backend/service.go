package backend

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/instantcocoa/meshtrace/pkg/latency"
)

const (
	computeTerms = 2000

	priceMin = 1.99
	priceMax = 49.99

	stallProbability = 0.10
	stallDuration    = 200 * time.Millisecond
)

// Service implements the middle-tier operations.
type Service struct {
	data         *Client
	stallSampler latency.Sampler
	tracer       trace.Tracer
	logger       *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithStallSampler overrides the compute stall distribution.
func WithStallSampler(s latency.Sampler) Option {
	return func(svc *Service) { svc.stallSampler = s }
}

// NewService creates the middle-tier service.
func NewService(data *Client, tracer trace.Tracer, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		data:         data,
		stallSampler: latency.NewSampler(latency.StallProfile(stallProbability, stallDuration)),
		tracer:       tracer,
		logger:       logger.With("component", "backend"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// FetchData queries the data tier and enriches each row with a synthetic
// price. The upstream query_time_ms is copied onto this tier's span so the
// two tiers can be correlated without walking the trace.
func (s *Service) FetchData(ctx context.Context) (*FetchResult, error) {
	ctx, span := s.tracer.Start(ctx, "backend.fetch-data")
	defer span.End()

	resp, err := s.callDB(ctx)
	if err != nil {
		span.SetStatus(codes.Error, "dataapi query failed")
		span.RecordError(err)
		s.logger.ErrorContext(ctx, "failed to fetch data", "error", err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("db.rows_returned", len(resp.Rows)),
		attribute.Float64("db.query_time_ms", resp.QueryTimeMS),
	)

	items := s.enrich(ctx, resp.Rows)

	s.logger.InfoContext(ctx, "data fetched",
		"rows", len(resp.Rows),
		"query_time_ms", resp.QueryTimeMS,
	)

	return &FetchResult{Items: items, Count: len(items)}, nil
}

func (s *Service) callDB(ctx context.Context) (*QueryResponse, error) {
	ctx, span := s.tracer.Start(ctx, "backend.call-db")
	defer span.End()

	resp, err := s.data.Query(ctx)
	if err != nil {
		span.SetStatus(codes.Error, "downstream call failed")
		span.RecordError(err)
		return nil, err
	}
	return resp, nil
}

// enrich attaches a synthetic price to each row. Pure mapping into a new
// collection; the input is never mutated.
func (s *Service) enrich(ctx context.Context, rows []Row) []Item {
	_, span := s.tracer.Start(ctx, "backend.enrich")
	defer span.End()

	items := make([]Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, Item{Row: row, Price: randomPrice()})
	}
	return items
}

// Compute runs the CPU-bound synthetic workload. The numeric result is
// deterministic; the occasional stall only delays the response.
func (s *Service) Compute(ctx context.Context) *ComputeResult {
	ctx, span := s.tracer.Start(ctx, "backend.compute")
	defer span.End()

	result := s.heavyWork(ctx)
	span.SetAttributes(attribute.Int64("compute.result", result))

	return &ComputeResult{Result: result, Status: "ok"}
}

func (s *Service) heavyWork(ctx context.Context) int64 {
	_, span := s.tracer.Start(ctx, "backend.heavy-work")
	defer span.End()

	if draw := s.stallSampler.Sample(); draw.Duration > 0 {
		span.SetAttributes(attribute.Bool("compute.stalled", true))
		s.logger.WarnContext(ctx, "compute stalled", "stall", draw.Duration)
		time.Sleep(draw.Duration)
	}

	return sumSquares(computeTerms)
}

// Schema proxies the data tier's schema descriptor unmodified. A downstream
// failure propagates as a visible error, never an empty success.
func (s *Service) Schema(ctx context.Context) (json.RawMessage, error) {
	ctx, span := s.tracer.Start(ctx, "backend.get-schema")
	defer span.End()

	raw, err := s.data.Schema(ctx)
	if err != nil {
		span.SetStatus(codes.Error, "dataapi schema failed")
		span.RecordError(err)
		s.logger.ErrorContext(ctx, "failed to proxy schema", "error", err)
		return nil, err
	}
	return raw, nil
}

func sumSquares(n int) int64 {
	var sum int64
	for i := 0; i < n; i++ {
		sum += int64(i) * int64(i)
	}
	return sum
}

func randomPrice() float64 {
	p := priceMin + rand.Float64()*(priceMax-priceMin)
	return math.Round(p*100) / 100
}
