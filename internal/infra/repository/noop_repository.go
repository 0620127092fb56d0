package repository

import (
	"context"
	"log/slog"

	"github.com/KasumiMercury/primind-sales-rules/internal/domain"
)

// noopCustomerRuleRepository stands in when no database is configured. Submissions
// still succeed and nothing is written.
type noopCustomerRuleRepository struct{}

func NewNoopCustomerRuleRepository() domain.CustomerRuleRepository {
	return &noopCustomerRuleRepository{}
}

func (r *noopCustomerRuleRepository) ApplyRule(ctx context.Context, _ domain.RuleUpdatePayload, scope domain.RuleScope) (int64, error) {
	slog.WarnContext(ctx, "database not configured, rule update skipped",
		slog.String("event", "customer.rule.update.skip"),
		slog.String("scope", scope.Key()),
	)
	return 0, nil
}
