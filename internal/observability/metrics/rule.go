package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	ruleMeterName = "salesrule.service"
)

const (
	OutcomeSuccess         = "success"
	OutcomeInvalidDuration = "invalid_duration"
	OutcomeRejected        = "rejected"
	OutcomeInProgress      = "in_progress"
	OutcomeStoreError      = "store_error"
	OutcomeLockError       = "lock_error"
)

type RuleMetrics struct {
	submissions        metric.Int64Counter
	submissionDuration metric.Float64Histogram
	customersUpdated   metric.Int64Counter
	draftValidations   metric.Int64Counter
}

func NewRuleMetrics() (*RuleMetrics, error) {
	meter := otel.Meter(ruleMeterName)

	submissions, err := meter.Int64Counter(
		"salesrule_submissions_total",
		metric.WithDescription("Total number of rule submissions by outcome"),
		metric.WithUnit("{submission}"),
	)
	if err != nil {
		return nil, err
	}

	submissionDuration, err := meter.Float64Histogram(
		"salesrule_submission_duration_seconds",
		metric.WithDescription("Time spent handling a rule submission"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(
			0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5,
		),
	)
	if err != nil {
		return nil, err
	}

	customersUpdated, err := meter.Int64Counter(
		"salesrule_customers_updated_total",
		metric.WithDescription("Customer records written by rule submissions"),
		metric.WithUnit("{customer}"),
	)
	if err != nil {
		return nil, err
	}

	draftValidations, err := meter.Int64Counter(
		"salesrule_draft_validations_total",
		metric.WithDescription("Rule draft validations by result"),
		metric.WithUnit("{validation}"),
	)
	if err != nil {
		return nil, err
	}

	return &RuleMetrics{
		submissions:        submissions,
		submissionDuration: submissionDuration,
		customersUpdated:   customersUpdated,
		draftValidations:   draftValidations,
	}, nil
}

func (m *RuleMetrics) RecordSubmission(ctx context.Context, scope, outcome string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("scope", scope),
		attribute.String("outcome", outcome),
	)
	m.submissions.Add(ctx, 1, attrs)
	m.submissionDuration.Record(ctx, duration.Seconds(), attrs)
}

func (m *RuleMetrics) RecordCustomersUpdated(ctx context.Context, scope string, count int64) {
	m.customersUpdated.Add(ctx, count, metric.WithAttributes(
		attribute.String("scope", scope),
	))
}

func (m *RuleMetrics) RecordDraftValidation(ctx context.Context, valid bool) {
	m.draftValidations.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("valid", valid),
	))
}
