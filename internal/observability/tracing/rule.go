package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/KasumiMercury/primind-sales-rules/internal/domain"
)

const ruleTracerName = "github.com/KasumiMercury/primind-sales-rules/internal/service/rule"

func RuleTracer() trace.Tracer {
	return otel.Tracer(ruleTracerName)
}

func StartSubmissionSpan(ctx context.Context, scopeKey string) (context.Context, trace.Span) {
	return RuleTracer().Start(ctx, "salesrule.submit",
		trace.WithAttributes(
			attribute.String("rule.scope", scopeKey),
		),
	)
}

func RecordDeadline(span trace.Span, quantity float64, unit domain.FollowUpUnit, payload domain.RuleUpdatePayload) {
	span.SetAttributes(
		attribute.Float64("rule.first_response.value", quantity),
		attribute.String("rule.first_response.unit", unit.String()),
		attribute.String("rule.first_response.deadline_at", domain.FormatTimestamp(payload.FirstResponseDeadlineAt)),
		attribute.Int("rule.follow_up_period_days", payload.FollowUpPeriodDays),
		attribute.Int("rule.min_follow_ups_required", payload.MinFollowUpsRequired),
	)
}

func RecordSubmissionResult(span trace.Span, updatedCount int64, err error) {
	span.SetAttributes(
		attribute.Int64("rule.updated_count", updatedCount),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
}

func StartStoreSpan(ctx context.Context, operation, table string) (context.Context, trace.Span) {
	return RuleTracer().Start(ctx, "salesrule.store."+operation,
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", operation),
			attribute.String("db.collection.name", table),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

func StartLockSpan(ctx context.Context, operation, key string) (context.Context, trace.Span) {
	return RuleTracer().Start(ctx, "salesrule.lock."+operation,
		trace.WithAttributes(
			attribute.String("db.system", "redis"),
			attribute.String("db.operation", operation),
			attribute.String("db.key", key),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

func EndWithError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
