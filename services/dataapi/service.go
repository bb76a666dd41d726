package dataapi

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/instantcocoa/meshtrace/pkg/latency"
)

// Service simulates a query engine. Latency comes from injected samplers so
// tests can pin the distribution while production draws the tri-modal
// profile.
type Service struct {
	store         *Store
	querySampler  latency.Sampler
	schemaSampler latency.Sampler
	tracer        trace.Tracer
	logger        *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithQuerySampler overrides the query latency distribution.
func WithQuerySampler(s latency.Sampler) Option {
	return func(svc *Service) { svc.querySampler = s }
}

// WithSchemaSampler overrides the schema-lookup jitter.
func WithSchemaSampler(s latency.Sampler) Option {
	return func(svc *Service) { svc.schemaSampler = s }
}

// NewService creates the query simulator with production latency defaults.
func NewService(store *Store, tracer trace.Tracer, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		store:         store,
		querySampler:  latency.NewSampler(latency.DefaultQueryProfile()),
		schemaSampler: latency.NewSampler(latency.SchemaProfile()),
		tracer:        tracer,
		logger:        logger.With("component", "dataapi"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Query simulates executing a query against the product table: it draws a
// latency from the tri-modal distribution, sleeps under a db.execute child
// span, and returns up to limit records.
func (s *Service) Query(ctx context.Context, table string, limit int) *QueryResult {
	ctx, span := s.tracer.Start(ctx, "db.query")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.name", "products_db"),
		attribute.String("db.statement", fmt.Sprintf("SELECT * FROM %s LIMIT %d", table, limit)),
		attribute.String("db.table", table),
	)

	draw := s.querySampler.Sample()
	if draw.Slow {
		span.SetAttributes(attribute.Bool("db.slow_query", true))
		s.logger.WarnContext(ctx, "slow query", "table", table, "latency", draw.Duration)
	}

	s.execute(ctx, draw.Duration)

	rows := s.store.Rows(limit)
	latencyMS := roundMS(draw.Duration)

	span.SetAttributes(
		attribute.Int("db.rows_returned", len(rows)),
		attribute.Float64("db.latency_ms", latencyMS),
	)

	s.logger.DebugContext(ctx, "query executed",
		"table", table,
		"rows", len(rows),
		"band", draw.Band,
		"latency_ms", latencyMS,
	)

	return &QueryResult{
		Table:       table,
		Rows:        rows,
		Count:       len(rows),
		QueryTimeMS: latencyMS,
	}
}

// execute models the engine doing work; the sleep gets its own span so the
// trace shows where the time went.
func (s *Service) execute(ctx context.Context, d time.Duration) {
	_, span := s.tracer.Start(ctx, "db.execute")
	defer span.End()
	time.Sleep(d)
}

// Schema returns the static table descriptor with a small lookup jitter.
func (s *Service) Schema(ctx context.Context) Schema {
	_, span := s.tracer.Start(ctx, "db.schema-lookup")
	defer span.End()

	time.Sleep(s.schemaSampler.Sample().Duration)
	return s.store.Schema()
}

func roundMS(d time.Duration) float64 {
	return math.Round(float64(d)/float64(time.Millisecond)*100) / 100
}
