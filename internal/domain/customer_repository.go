package domain

import "context"

//go:generate mockgen -source=customer_repository.go -destination=customer_repository_mock.go -package=domain

// CustomerRuleRepository persists rule columns onto customer records.
type CustomerRuleRepository interface {
	// ApplyRule writes payload to every customer in scope and returns the number of rows updated.
	ApplyRule(ctx context.Context, payload RuleUpdatePayload, scope RuleScope) (int64, error)
}
