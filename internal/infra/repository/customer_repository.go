package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/KasumiMercury/primind-sales-rules/internal/domain"
	"github.com/KasumiMercury/primind-sales-rules/internal/observability/tracing"
)

const customersTable = "customers"

// Customer holds the rule columns of a customer row. Other columns of the table are
// not managed here.
type Customer struct {
	ID                      uuid.UUID  `gorm:"type:uuid;primaryKey"`
	FollowUpPeriodDays      *int       `gorm:"column:follow_up_period_days"`
	MinFollowUpsRequired    *int       `gorm:"column:min_follow_ups_required"`
	FirstResponseDeadlineAt *time.Time `gorm:"column:first_response_deadline_at"`
}

func (Customer) TableName() string {
	return customersTable
}

type customerRuleRepository struct {
	db *gorm.DB
}

func NewCustomerRuleRepository(db *gorm.DB) (domain.CustomerRuleRepository, error) {
	if db == nil {
		return nil, ErrNilDatabase
	}
	return &customerRuleRepository{
		db: db,
	}, nil
}

func (r *customerRuleRepository) ApplyRule(ctx context.Context, payload domain.RuleUpdatePayload, scope domain.RuleScope) (int64, error) {
	if scope.IsEmpty() {
		return 0, nil
	}

	ctx, span := tracing.StartStoreSpan(ctx, "update", customersTable)

	query := r.db.WithContext(ctx).
		Model(&Customer{}).
		Where("id <> ?", domain.SentinelCustomerID)
	if !scope.IsAll() {
		query = query.Where("id IN ?", scope.CustomerIDs)
	}

	result := query.Updates(map[string]any{
		"follow_up_period_days":      payload.FollowUpPeriodDays,
		"min_follow_ups_required":    payload.MinFollowUpsRequired,
		"first_response_deadline_at": payload.FirstResponseDeadlineAt.UTC(),
	})
	tracing.EndWithError(span, result.Error)
	if result.Error != nil {
		slog.ErrorContext(ctx, "failed to update customer rule columns",
			slog.String("event", "customer.rule.update.fail"),
			slog.String("scope", scope.Key()),
			slog.String("error", result.Error.Error()),
		)
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

// AutoMigrate creates the customers table or adds missing rule columns.
func AutoMigrate(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return ErrNilDatabase
	}
	return db.WithContext(ctx).AutoMigrate(&Customer{})
}
