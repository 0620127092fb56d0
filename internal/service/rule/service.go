package rule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/KasumiMercury/primind-sales-rules/internal/domain"
	"github.com/KasumiMercury/primind-sales-rules/internal/observability/metrics"
	"github.com/KasumiMercury/primind-sales-rules/internal/observability/tracing"
	"github.com/KasumiMercury/primind-sales-rules/internal/service/deadline"
)

const (
	scopeAll      = "all"
	scopeSelected = "selected"
)

// StoreError is a failure reported by the customer store. Its message is the store's
// own message.
type StoreError struct {
	Err error
}

func (e *StoreError) Error() string {
	return e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

type SubmitResult struct {
	Payload      domain.RuleUpdatePayload
	UpdatedCount int64
}

type Option func(*Service)

// WithClock replaces time.Now as the source of the submission instant.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

type Service struct {
	repo               domain.CustomerRuleRepository
	lock               domain.SubmissionLock
	calculator         *deadline.Calculator
	ruleMetrics        *metrics.RuleMetrics
	allowBlanketUpdate bool
	now                func() time.Time
}

func NewService(
	repo domain.CustomerRuleRepository,
	lock domain.SubmissionLock,
	calculator *deadline.Calculator,
	ruleMetrics *metrics.RuleMetrics,
	allowBlanketUpdate bool,
	opts ...Option,
) *Service {
	s := &Service{
		repo:               repo,
		lock:               lock,
		calculator:         calculator,
		ruleMetrics:        ruleMetrics,
		allowBlanketUpdate: allowBlanketUpdate,
		now:                time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit computes the first-response deadline for req and writes the rule to every
// customer in scope. Nothing is written when the deadline cannot be computed.
func (s *Service) Submit(ctx context.Context, req domain.RuleUpdateRequest) (*SubmitResult, error) {
	scope := req.Scope()
	scopeKey := scope.Key()
	scopeKind := scopeSelected
	if scope.IsAll() {
		scopeKind = scopeAll
	}

	ctx, span := tracing.StartSubmissionSpan(ctx, scopeKey)
	defer span.End()

	start := time.Now()
	result, outcome, err := s.submit(ctx, req, scope, scopeKey)

	if result != nil {
		tracing.RecordDeadline(span, req.FirstResponseValue.Float64(), req.FirstResponseUnit, result.Payload)
		tracing.RecordSubmissionResult(span, result.UpdatedCount, err)
	} else {
		tracing.RecordSubmissionResult(span, 0, err)
	}

	if s.ruleMetrics != nil {
		s.ruleMetrics.RecordSubmission(ctx, scopeKind, outcome, time.Since(start))
		if result != nil && result.UpdatedCount > 0 {
			s.ruleMetrics.RecordCustomersUpdated(ctx, scopeKind, result.UpdatedCount)
		}
	}

	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) submit(ctx context.Context, req domain.RuleUpdateRequest, scope domain.RuleScope, scopeKey string) (*SubmitResult, string, error) {
	if scope.IsAll() && !s.allowBlanketUpdate {
		slog.WarnContext(ctx, "rule submission without customer scope rejected",
			slog.String("event", "rule.submit.scope_required"),
		)
		return nil, metrics.OutcomeRejected, domain.ErrScopeRequired
	}
	if scope.IsEmpty() {
		slog.WarnContext(ctx, "rule submission with empty customer scope rejected",
			slog.String("event", "rule.submit.scope_empty"),
		)
		return nil, metrics.OutcomeRejected, domain.ErrEmptyScope
	}

	deadlineAt, err := s.calculator.ComputeDeadline(req.FirstResponseValue.Float64(), req.FirstResponseUnit, s.now())
	if err != nil {
		slog.WarnContext(ctx, "failed to compute first response deadline",
			slog.String("event", "rule.submit.invalid_duration"),
			slog.Float64("value", req.FirstResponseValue.Float64()),
			slog.String("unit", req.FirstResponseUnit.String()),
			slog.String("error", err.Error()),
		)
		return nil, metrics.OutcomeInvalidDuration, err
	}

	payload := domain.RuleUpdatePayload{
		FollowUpPeriodDays:      req.FollowUpCycle,
		MinFollowUpsRequired:    req.FollowUpTimes,
		FirstResponseDeadlineAt: deadlineAt,
	}

	if s.lock != nil {
		token, err := s.lock.Acquire(ctx, scopeKey)
		if err != nil {
			if errors.Is(err, domain.ErrSubmissionInProgress) {
				slog.InfoContext(ctx, "rule submission already in progress",
					slog.String("event", "rule.submit.in_progress"),
					slog.String("scope", scopeKey),
				)
				return nil, metrics.OutcomeInProgress, err
			}
			return nil, metrics.OutcomeLockError, fmt.Errorf("failed to acquire submission lock: %w", err)
		}
		defer s.release(ctx, scopeKey, token)
	}

	count, err := s.repo.ApplyRule(ctx, payload, scope)
	if err != nil {
		return nil, metrics.OutcomeStoreError, &StoreError{Err: err}
	}

	if scope.IsAll() {
		slog.WarnContext(ctx, "rule applied to all customers",
			slog.String("event", "rule.submit.blanket_update"),
			slog.Int64("updated_count", count),
		)
	}

	slog.InfoContext(ctx, "rule submitted",
		slog.String("event", "rule.submit.success"),
		slog.String("scope", scopeKey),
		slog.Int("follow_up_period_days", payload.FollowUpPeriodDays),
		slog.Int("min_follow_ups_required", payload.MinFollowUpsRequired),
		slog.String("first_response_deadline_at", domain.FormatTimestamp(payload.FirstResponseDeadlineAt)),
		slog.Int64("updated_count", count),
	)

	return &SubmitResult{
		Payload:      payload,
		UpdatedCount: count,
	}, metrics.OutcomeSuccess, nil
}

// release runs even when the request was canceled so the scope is not left locked
// until the TTL expires.
func (s *Service) release(ctx context.Context, scopeKey, token string) {
	if err := s.lock.Release(context.WithoutCancel(ctx), scopeKey, token); err != nil {
		slog.WarnContext(ctx, "failed to release submission lock",
			slog.String("event", "rule.lock.release.fail"),
			slog.String("scope", scopeKey),
			slog.String("error", err.Error()),
		)
	}
}
