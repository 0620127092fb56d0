package domain

import "strconv"

// ValidationMessage is user-facing feedback for one field of a rule draft.
type ValidationMessage struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Behavior string

const (
	BehaviorCall    Behavior = "call"
	BehaviorSummary Behavior = "summary"
)

// RemindDays are the day offsets the auto-remind option can be set to.
var RemindDays = []int{1, 2, 3, 4, 5, 7, 10, 14}

const MaxFollowUpTimes = 10

// RuleDraft is the whole state of the timeliness rule form. It is validated as a unit
// before anything is submitted.
type RuleDraft struct {
	Name          string            `json:"name" validate:"required,max=64"`
	Description   string            `json:"description" validate:"max=256"`
	Filters       []FilterCondition `json:"filters" validate:"min=1,dive"`
	FollowUpCycle int               `json:"followUpCycle" validate:"min=1"`
	FollowUpTimes int               `json:"followUpTimes" validate:"min=1,max=10"`
	RecyclingDays float64           `json:"recyclingDays" validate:"gt=0"`
	Behaviors     []Behavior        `json:"behaviors" validate:"min=1,unique,dive,follow_up_behavior"`

	// FirstResponse is the time limit of the first follow-up.
	FirstResponse TimeLimit `json:"firstResponse"`
	// LaterFollowUps are the limits of the second and following follow-ups.
	LaterFollowUps []TimeLimit `json:"laterFollowUps" validate:"dive"`

	TimeoutWarning TimeoutWarning `json:"timeoutWarning"`
	AutoRemind     AutoRemind     `json:"autoRemind"`
}

type FilterCondition struct {
	Field    string `json:"field" validate:"required"`
	Operator string `json:"operator" validate:"required,oneof=等于 不等于"`
	Value    string `json:"value" validate:"required"`
	Logic    string `json:"logic" validate:"omitempty,oneof=且 或"`
}

type TimeLimit struct {
	Value float64      `json:"value" validate:"gte=0"`
	Unit  FollowUpUnit `json:"unit" validate:"required,follow_up_unit"`
}

type TimeoutWarning struct {
	Enabled bool         `json:"enabled"`
	Value   float64      `json:"value" validate:"gte=0"`
	Unit    ReminderUnit `json:"unit" validate:"required_if=Enabled true,omitempty,reminder_unit"`
}

type AutoRemind struct {
	Enabled bool   `json:"enabled"`
	Days    []int  `json:"days" validate:"required_if=Enabled true,unique,dive,remind_day"`
	Time    string `json:"time" validate:"required_if=Enabled true,omitempty,remind_clock"`
}

var followUpOrdinals = []string{"首次", "二次", "三次", "四次", "五次", "六次", "七次", "八次", "九次", "十次"}

// FollowUpOrdinal labels the n-th follow-up (1-based).
func FollowUpOrdinal(n int) string {
	if n >= 1 && n <= len(followUpOrdinals) {
		return followUpOrdinals[n-1]
	}
	return strconv.Itoa(n) + "次"
}
