package logger

import (
	"context"
	"log/slog"
	"os"
)

type ContextKey string

const (
	// Business context keys propagated through the query pipeline.
	QueryIDKey       ContextKey = "rag.query.id"
	CategoryKey      ContextKey = "rag.query.category"
	PipelineStageKey ContextKey = "rag.pipeline.stage"
)

// ContextLogger provides context-aware logging for pipeline diagnostics
type ContextLogger struct {
	logger      *slog.Logger
	serviceName string
}

// NewContextLogger creates a new context-aware logger
func NewContextLogger(serviceName string) *ContextLogger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(os.Getenv("LOG_LEVEL")),
	}
	handler := slog.NewJSONHandler(os.Stdout, opts)

	return &ContextLogger{
		logger:      slog.New(handler),
		serviceName: serviceName,
	}
}

// WithContext returns a logger with context values extracted and added as fields
func (cl *ContextLogger) WithContext(ctx context.Context) *slog.Logger {
	logger := cl.logger.With("service", cl.serviceName)

	var fields []any

	if queryID := ctx.Value(QueryIDKey); queryID != nil {
		fields = append(fields, string(QueryIDKey), queryID)
	}
	if category := ctx.Value(CategoryKey); category != nil {
		fields = append(fields, string(CategoryKey), category)
	}
	if stage := ctx.Value(PipelineStageKey); stage != nil {
		fields = append(fields, string(PipelineStageKey), stage)
	}

	if len(fields) > 0 {
		logger = logger.With(fields...)
	}

	return logger
}

// WithQueryID adds the query ID to context for observability
func WithQueryID(ctx context.Context, queryID string) context.Context {
	return context.WithValue(ctx, QueryIDKey, queryID)
}

// WithCategory adds the query category to context for observability
func WithCategory(ctx context.Context, category string) context.Context {
	return context.WithValue(ctx, CategoryKey, category)
}

// WithPipelineStage adds the pipeline stage to context for observability
func WithPipelineStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, PipelineStageKey, stage)
}
