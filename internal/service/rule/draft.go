package rule

import (
	"context"
	"fmt"
	"time"

	"github.com/KasumiMercury/primind-sales-rules/internal/domain"
	"github.com/KasumiMercury/primind-sales-rules/internal/observability/metrics"
	"github.com/KasumiMercury/primind-sales-rules/internal/service/deadline"
	"github.com/KasumiMercury/primind-sales-rules/internal/service/reminder"
)

const (
	laterFollowUpsField      = "laterFollowUps"
	firstResponseValueField  = "firstResponse.value"
	laterFollowUpValueFormat = "laterFollowUps[%d].value"
	invalidDurationMessage   = "时间值无效"
)

// StructValidator validates a struct and returns failures keyed by field path.
type StructValidator interface {
	Struct(s any) (map[string]string, error)
}

type FollowUpPreview struct {
	Ordinal    string `json:"ordinal"`
	DeadlineAt string `json:"deadlineAt"`
}

type DraftFeedback struct {
	Valid   bool              `json:"valid"`
	Errors  map[string]string `json:"errors"`
	Preview []FollowUpPreview `json:"preview,omitempty"`
}

// DraftChecker validates a whole rule draft, including the rules that span several
// fields, and previews the follow-up deadlines of a valid draft.
type DraftChecker struct {
	validator   StructValidator
	calculator  *deadline.Calculator
	ruleMetrics *metrics.RuleMetrics
	now         func() time.Time
}

func NewDraftChecker(validator StructValidator, calculator *deadline.Calculator, ruleMetrics *metrics.RuleMetrics) *DraftChecker {
	return &DraftChecker{
		validator:   validator,
		calculator:  calculator,
		ruleMetrics: ruleMetrics,
		now:         time.Now,
	}
}

func (c *DraftChecker) Check(ctx context.Context, draft domain.RuleDraft) (*DraftFeedback, error) {
	fieldErrs, err := c.validator.Struct(draft)
	if err != nil {
		return nil, err
	}

	errs := make(map[string]string, len(fieldErrs))
	for field, msg := range fieldErrs {
		errs[field] = msg
	}

	addIfAbsent := func(m *domain.ValidationMessage) {
		if m == nil {
			return
		}
		if _, exists := errs[m.Field]; !exists {
			errs[m.Field] = m.Message
		}
	}

	if draft.RecyclingDays > 0 {
		addIfAbsent(reminder.ValidateFollowUpCycle(draft.FollowUpCycle, draft.RecyclingDays))

		// The lead-time message belongs to the warning section and is only shown while it is on.
		if draft.TimeoutWarning.Enabled && draft.TimeoutWarning.Unit.IsValid() {
			addIfAbsent(reminder.ValidateReminder(draft.TimeoutWarning.Value, draft.TimeoutWarning.Unit, draft.RecyclingDays))
		}
	}

	if draft.FollowUpTimes >= 1 && len(draft.LaterFollowUps) > draft.FollowUpTimes-1 {
		addIfAbsent(&domain.ValidationMessage{
			Field:   laterFollowUpsField,
			Message: fmt.Sprintf("后续跟进时限不能超过%d个", draft.FollowUpTimes-1),
		})
	}

	var preview []FollowUpPreview
	if len(errs) == 0 {
		preview = c.preview(draft, errs)
	}

	valid := len(errs) == 0
	if c.ruleMetrics != nil {
		c.ruleMetrics.RecordDraftValidation(ctx, valid)
	}

	if !valid {
		preview = nil
	}

	return &DraftFeedback{
		Valid:   valid,
		Errors:  errs,
		Preview: preview,
	}, nil
}

// preview computes each follow-up deadline as if the rule started now. Limits that
// cannot be turned into a deadline are reported in errs.
func (c *DraftChecker) preview(draft domain.RuleDraft, errs map[string]string) []FollowUpPreview {
	now := c.now()
	limits := append([]domain.TimeLimit{draft.FirstResponse}, draft.LaterFollowUps...)

	out := make([]FollowUpPreview, 0, len(limits))
	for i, limit := range limits {
		at, err := c.calculator.ComputeDeadline(limit.Value, limit.Unit, now)
		if err != nil {
			field := firstResponseValueField
			if i > 0 {
				field = fmt.Sprintf(laterFollowUpValueFormat, i-1)
			}
			errs[field] = invalidDurationMessage
			continue
		}

		out = append(out, FollowUpPreview{
			Ordinal:    domain.FollowUpOrdinal(i + 1),
			DeadlineAt: domain.FormatTimestamp(at),
		})
	}
	return out
}
