package domain

// FollowUpUnit is the unit of a follow-up time limit ("within N minutes/hours/days").
type FollowUpUnit string

const (
	FollowUpMinutes FollowUpUnit = "分钟内"
	FollowUpHours   FollowUpUnit = "小时内"
	FollowUpDays    FollowUpUnit = "天内"
)

var followUpMultipliersMs = map[FollowUpUnit]int64{
	FollowUpMinutes: 60 * 1000,
	FollowUpHours:   60 * 60 * 1000,
	FollowUpDays:    24 * 60 * 60 * 1000,
}

// FollowUpUnits lists the units in the order the settings form offers them.
var FollowUpUnits = []FollowUpUnit{FollowUpMinutes, FollowUpHours, FollowUpDays}

func (u FollowUpUnit) String() string {
	return string(u)
}

func (u FollowUpUnit) IsValid() bool {
	_, ok := followUpMultipliersMs[u]
	return ok
}

// MultiplierMs returns the number of milliseconds in one unit.
// ok is false for labels outside the closed set.
func (u FollowUpUnit) MultiplierMs() (ms int64, ok bool) {
	ms, ok = followUpMultipliersMs[u]
	return ms, ok
}

func ParseFollowUpUnit(s string) (FollowUpUnit, error) {
	u := FollowUpUnit(s)
	if !u.IsValid() {
		return "", ErrUnknownUnit
	}
	return u, nil
}

// ReminderUnit is the unit of a warning lead time ("N hours/minutes/days before").
type ReminderUnit string

const (
	ReminderHours   ReminderUnit = "小时前"
	ReminderMinutes ReminderUnit = "分钟前"
	ReminderDays    ReminderUnit = "天前"
)

var reminderUnitsPerDay = map[ReminderUnit]float64{
	ReminderHours:   24,
	ReminderMinutes: 24 * 60,
	ReminderDays:    1,
}

var ReminderUnits = []ReminderUnit{ReminderHours, ReminderMinutes, ReminderDays}

func (u ReminderUnit) String() string {
	return string(u)
}

func (u ReminderUnit) IsValid() bool {
	_, ok := reminderUnitsPerDay[u]
	return ok
}

// ToDays converts v expressed in u into days. Unknown units are read as days.
func (u ReminderUnit) ToDays(v float64) float64 {
	perDay, ok := reminderUnitsPerDay[u]
	if !ok {
		return v
	}
	return v / perDay
}

func ParseReminderUnit(s string) (ReminderUnit, error) {
	u := ReminderUnit(s)
	if !u.IsValid() {
		return "", ErrUnknownUnit
	}
	return u, nil
}
