package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TimestampLayout renders UTC instants with millisecond precision, e.g. 2025-01-02T03:04:05.678Z.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// expandedYearTail is TimestampLayout without its year.
const expandedYearTail = "-01-02T15:04:05.000Z"

// FormatTimestamp renders t in UTC. Years outside 0000-9999 use the six-digit signed
// form, e.g. +275760-09-13T00:00:00.000Z.
func FormatTimestamp(t time.Time) string {
	t = t.UTC()
	year := t.Year()
	if year >= 0 && year <= 9999 {
		return t.Format(TimestampLayout)
	}

	sign := "+"
	if year < 0 {
		sign = "-"
		year = -year
	}
	return fmt.Sprintf("%s%06d%s", sign, year, t.Format(expandedYearTail))
}

// ParseTimestamp reads RFC 3339 timestamps as well as the signed six-digit year form
// written by FormatTimestamp.
func ParseTimestamp(s string) (time.Time, error) {
	if len(s) < 8 || (s[0] != '+' && s[0] != '-') {
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return time.Time{}, err
		}
		return t.UTC(), nil
	}

	year, err := strconv.Atoi(s[1:7])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid expanded year in %q: %w", s, err)
	}
	if s[0] == '-' {
		year = -year
	}

	// 2000 is a leap year, so a February 29 tail parses.
	rest, err := time.Parse(time.RFC3339Nano, "2000"+s[7:])
	if err != nil {
		return time.Time{}, err
	}
	rest = rest.UTC()
	return time.Date(year, rest.Month(), rest.Day(), rest.Hour(), rest.Minute(), rest.Second(), rest.Nanosecond(), time.UTC), nil
}

// RuleUpdatePayload is the set of columns written to every customer in scope.
type RuleUpdatePayload struct {
	FollowUpPeriodDays      int
	MinFollowUpsRequired    int
	FirstResponseDeadlineAt time.Time
}

type ruleUpdatePayloadJSON struct {
	FollowUpPeriodDays      int    `json:"follow_up_period_days"`
	MinFollowUpsRequired    int    `json:"min_follow_ups_required"`
	FirstResponseDeadlineAt string `json:"first_response_deadline_at"`
}

func (p RuleUpdatePayload) MarshalJSON() ([]byte, error) {
	return json.Marshal(ruleUpdatePayloadJSON{
		FollowUpPeriodDays:      p.FollowUpPeriodDays,
		MinFollowUpsRequired:    p.MinFollowUpsRequired,
		FirstResponseDeadlineAt: FormatTimestamp(p.FirstResponseDeadlineAt),
	})
}

func (p *RuleUpdatePayload) UnmarshalJSON(data []byte) error {
	var raw ruleUpdatePayloadJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	deadline, err := ParseTimestamp(raw.FirstResponseDeadlineAt)
	if err != nil {
		return err
	}
	p.FollowUpPeriodDays = raw.FollowUpPeriodDays
	p.MinFollowUpsRequired = raw.MinFollowUpsRequired
	p.FirstResponseDeadlineAt = deadline
	return nil
}

// SentinelCustomerID is never updated by a rule, even by an all-customers update.
var SentinelCustomerID = uuid.Nil

// RuleScope selects the customers a rule update applies to.
// The zero value means every customer except SentinelCustomerID. A scope built by
// SelectedCustomers targets exactly the listed rows, and none when the list is empty.
type RuleScope struct {
	CustomerIDs []uuid.UUID
	Selected    bool
}

func SelectedCustomers(ids []uuid.UUID) RuleScope {
	return RuleScope{CustomerIDs: ids, Selected: true}
}

func (s RuleScope) IsAll() bool {
	return !s.Selected && len(s.CustomerIDs) == 0
}

// IsEmpty reports a selection that names no customers.
func (s RuleScope) IsEmpty() bool {
	return !s.IsAll() && len(s.CustomerIDs) == 0
}

// Key identifies the scope for the submission lock. Equal sets of IDs share a key
// regardless of order or duplicates.
func (s RuleScope) Key() string {
	if s.IsAll() {
		return "all"
	}

	ids := make([]string, 0, len(s.CustomerIDs))
	for _, id := range s.CustomerIDs {
		ids = append(ids, id.String())
	}
	slices.Sort(ids)
	ids = slices.Compact(ids)

	sum := sha256.Sum256([]byte(strings.Join(ids, ",")))
	return "ids:" + hex.EncodeToString(sum[:16])
}

// RuleUpdateRequest is a submitted timeliness rule.
type RuleUpdateRequest struct {
	FollowUpCycle      int          `json:"followUpCycle"`
	FollowUpTimes      int          `json:"followUpTimes"`
	FirstResponseValue Quantity     `json:"firstResponseValue"`
	FirstResponseUnit  FollowUpUnit `json:"firstResponseUnit"`
	// CustomerIDs is nil when the field is absent; a present empty list stays non-nil.
	CustomerIDs        *[]uuid.UUID `json:"customerIds,omitempty"`
}

func (r RuleUpdateRequest) Scope() RuleScope {
	if r.CustomerIDs == nil {
		return RuleScope{}
	}
	return SelectedCustomers(*r.CustomerIDs)
}
