package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{
			name: "utc with millis",
			in:   time.Date(2025, 3, 14, 9, 56, 53, 589_000_000, time.UTC),
			want: "2025-03-14T09:56:53.589Z",
		},
		{
			name: "zero millis are kept",
			in:   time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
			want: "2025-01-02T03:04:05.000Z",
		},
		{
			name: "offset converted to utc",
			in:   time.Date(2025, 1, 2, 8, 0, 0, 0, time.FixedZone("CST", 8*60*60)),
			want: "2025-01-02T00:00:00.000Z",
		},
		{
			name: "year past 9999",
			in:   time.Date(275760, 9, 13, 0, 0, 0, 0, time.UTC),
			want: "+275760-09-13T00:00:00.000Z",
		},
		{
			name: "negative year",
			in:   time.Date(-1, 1, 1, 0, 0, 0, 0, time.UTC),
			want: "-000001-01-01T00:00:00.000Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatTimestamp(tt.in); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRuleUpdatePayload_JSON(t *testing.T) {
	p := RuleUpdatePayload{
		FollowUpPeriodDays:      3,
		MinFollowUpsRequired:    1,
		FirstResponseDeadlineAt: time.Date(2025, 3, 14, 9, 56, 53, 589_000_000, time.UTC),
	}

	got, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := `{"follow_up_period_days":3,"min_follow_ups_required":1,"first_response_deadline_at":"2025-03-14T09:56:53.589Z"}`
	if string(got) != want {
		t.Errorf("got %s, want %s", got, want)
	}

	var decoded RuleUpdatePayload
	if err := json.Unmarshal(got, &decoded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded != p {
		t.Errorf("decoded: got %+v, want %+v", decoded, p)
	}
}

func TestRuleScope_Key(t *testing.T) {
	a := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	b := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	if got := (RuleScope{}).Key(); got != "all" {
		t.Errorf("empty scope: got %q, want all", got)
	}

	ab := RuleScope{CustomerIDs: []uuid.UUID{a, b}}.Key()
	ba := RuleScope{CustomerIDs: []uuid.UUID{b, a}}.Key()
	aab := RuleScope{CustomerIDs: []uuid.UUID{a, a, b}}.Key()
	onlyA := RuleScope{CustomerIDs: []uuid.UUID{a}}.Key()

	if !strings.HasPrefix(ab, "ids:") {
		t.Errorf("key %q should start with ids:", ab)
	}
	if ab != ba {
		t.Errorf("order should not matter: %q != %q", ab, ba)
	}
	if ab != aab {
		t.Errorf("duplicates should not matter: %q != %q", ab, aab)
	}
	if ab == onlyA {
		t.Error("different sets should have different keys")
	}
}

func TestRuleUpdateRequest_Decode(t *testing.T) {
	id := uuid.New()
	body := `{"followUpCycle":3,"followUpTimes":2,"firstResponseValue":"30","firstResponseUnit":"分钟内","customerIds":["` + id.String() + `"]}`

	var req RuleUpdateRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if req.FollowUpCycle != 3 || req.FollowUpTimes != 2 {
		t.Errorf("counts: got %d/%d, want 3/2", req.FollowUpCycle, req.FollowUpTimes)
	}
	if req.FirstResponseValue.Float64() != 30 {
		t.Errorf("value: got %v, want 30", req.FirstResponseValue)
	}
	if req.FirstResponseUnit != FollowUpMinutes {
		t.Errorf("unit: got %q, want %q", req.FirstResponseUnit, FollowUpMinutes)
	}
	if scope := req.Scope(); scope.IsAll() || scope.CustomerIDs[0] != id {
		t.Errorf("scope: got %+v", scope)
	}
}

func TestRuleUpdateRequest_ScopePresence(t *testing.T) {
	tests := []struct {
		name      string
		ids       string
		wantAll   bool
		wantEmpty bool
	}{
		{name: "field absent", ids: "", wantAll: true},
		{name: "null", ids: `,"customerIds":null`, wantAll: true},
		{name: "empty list", ids: `,"customerIds":[]`, wantEmpty: true},
		{name: "one id", ids: `,"customerIds":["11111111-1111-1111-1111-111111111111"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req RuleUpdateRequest
			body := `{"followUpCycle":3,"followUpTimes":1,"firstResponseValue":1,"firstResponseUnit":"天内"` + tt.ids + `}`
			if err := json.Unmarshal([]byte(body), &req); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			scope := req.Scope()
			if scope.IsAll() != tt.wantAll {
				t.Errorf("IsAll: got %v, want %v", scope.IsAll(), tt.wantAll)
			}
			if scope.IsEmpty() != tt.wantEmpty {
				t.Errorf("IsEmpty: got %v, want %v", scope.IsEmpty(), tt.wantEmpty)
			}
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{in: "2025-03-14T09:56:53.589Z", want: time.Date(2025, 3, 14, 9, 56, 53, 589_000_000, time.UTC)},
		{in: "+275760-09-13T00:00:00.000Z", want: time.Date(275760, 9, 13, 0, 0, 0, 0, time.UTC)},
		{in: "+010240-02-29T12:00:00.000Z", want: time.Date(10240, 2, 29, 12, 0, 0, 0, time.UTC)},
		{in: "-000001-01-01T00:00:00.000Z", want: time.Date(-1, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimestamp(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
			if FormatTimestamp(got) != tt.in {
				t.Errorf("round trip: got %s, want %s", FormatTimestamp(got), tt.in)
			}
		})
	}

	if _, err := ParseTimestamp("+abcdef-01-01T00:00:00.000Z"); err == nil {
		t.Error("expected error for malformed expanded year")
	}
}
