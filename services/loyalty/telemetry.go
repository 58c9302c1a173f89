package loyalty

import (
	"context"
	"errors"

	"scaleplus-loyalty/pkg/errutil"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "scaleplus-loyalty/services/loyalty"

type telemetry struct {
	tracer   trace.Tracer
	ops      metric.Int64Counter
	granted  metric.Int64Counter
	redeemed metric.Int64Counter
}

func newTelemetry(tp trace.TracerProvider, mp metric.MeterProvider) (*telemetry, error) {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	if mp == nil {
		mp = otel.GetMeterProvider()
	}

	meter := mp.Meter(instrumentationName)
	ops, err := meter.Int64Counter("loyalty.operations",
		metric.WithDescription("Loyalty operations by name and outcome"))
	if err != nil {
		return nil, err
	}
	granted, err := meter.Int64Counter("loyalty.points.granted",
		metric.WithDescription("Points credited by grants after multipliers"))
	if err != nil {
		return nil, err
	}
	redeemed, err := meter.Int64Counter("loyalty.points.redeemed",
		metric.WithDescription("Points debited by redemptions"))
	if err != nil {
		return nil, err
	}

	return &telemetry{
		tracer:   tp.Tracer(instrumentationName),
		ops:      ops,
		granted:  granted,
		redeemed: redeemed,
	}, nil
}

func (t *telemetry) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "loyalty."+op, trace.WithAttributes(attrs...))
}

// finish ends span and counts the operation under its outcome.
func (t *telemetry) finish(ctx context.Context, span trace.Span, op string, err error) {
	outcome := outcomeOf(err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}
	t.ops.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("outcome", outcome),
	))
	span.End()
}

func outcomeOf(err error) string {
	if err == nil {
		return "ok"
	}
	var be errutil.BaseError
	if errors.As(err, &be) && be.Reason != "" {
		return be.Reason
	}
	return "error"
}
