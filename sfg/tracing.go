package sfg

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// startPassSpan begins a span named passName if a tracer was configured via
// WithTracer, and returns a function that ends it. The returned function is
// safe to call with a nil error or with the error a pass returned.
func (g *Graph) startPassSpan(ctx context.Context, passName string) (context.Context, func(err error)) {
	if g.cfg.tracer == nil {
		return ctx, func(error) {}
	}
	ctx, span := g.cfg.tracer.Start(ctx, passName, trace.WithAttributes(
		attribute.String("sfg.graph_id", g.id),
		attribute.Int("sfg.pending_count", len(g.pending)),
	))
	return ctx, func(err error) {
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			span.RecordError(err)
		}
		span.End()
	}
}
