package reminder

import (
	"fmt"
	"strconv"

	"github.com/KasumiMercury/primind-sales-rules/internal/domain"
)

const (
	LeadTimeField      = "timeoutWarning.value"
	FollowUpCycleField = "followUpCycle"
)

// ValidateReminder reports a message when the warning lead time, converted to days,
// is longer than the recycling window. It returns nil when the lead time fits.
func ValidateReminder(leadValue float64, leadUnit domain.ReminderUnit, recyclingDays float64) *domain.ValidationMessage {
	if leadUnit.ToDays(leadValue) > recyclingDays {
		return &domain.ValidationMessage{
			Field:   LeadTimeField,
			Message: fmt.Sprintf("提醒时间不能超过客群回收天数 (%s天)", formatDays(recyclingDays)),
		}
	}
	return nil
}

// ValidateFollowUpCycle reports a message when the follow-up cycle is longer than the
// recycling window; leads would be recycled before the cycle ends.
func ValidateFollowUpCycle(cycleDays int, recyclingDays float64) *domain.ValidationMessage {
	if float64(cycleDays) > recyclingDays {
		return &domain.ValidationMessage{
			Field:   FollowUpCycleField,
			Message: "跟进周期不能大于客群回收天数",
		}
	}
	return nil
}

func formatDays(days float64) string {
	return strconv.FormatFloat(days, 'f', -1, 64)
}
