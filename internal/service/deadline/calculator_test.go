package deadline

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/KasumiMercury/primind-sales-rules/internal/domain"
)

var referenceTime = time.Date(2025, 3, 14, 9, 26, 53, 589_000_000, time.UTC)

func TestCalculator_ComputeDeadline(t *testing.T) {
	calc := NewCalculator(false)

	tests := []struct {
		name     string
		quantity float64
		unit     domain.FollowUpUnit
		want     time.Time
	}{
		{
			name:     "30 minutes",
			quantity: 30,
			unit:     domain.FollowUpMinutes,
			want:     referenceTime.Add(30 * time.Minute),
		},
		{
			name:     "2 hours",
			quantity: 2,
			unit:     domain.FollowUpHours,
			want:     referenceTime.Add(2 * time.Hour),
		},
		{
			name:     "3 days",
			quantity: 3,
			unit:     domain.FollowUpDays,
			want:     referenceTime.Add(72 * time.Hour),
		},
		{
			name:     "zero quantity keeps now",
			quantity: 0,
			unit:     domain.FollowUpDays,
			want:     referenceTime,
		},
		{
			name:     "fractional hours",
			quantity: 1.5,
			unit:     domain.FollowUpHours,
			want:     referenceTime.Add(90 * time.Minute),
		},
		{
			name:     "fractional minutes to the millisecond",
			quantity: 0.0125,
			unit:     domain.FollowUpMinutes,
			want:     referenceTime.Add(750 * time.Millisecond),
		},
		{
			name:     "tenth of an hour",
			quantity: 0.1,
			unit:     domain.FollowUpHours,
			want:     referenceTime.Add(6 * time.Minute),
		},
		{
			name:     "sub-millisecond offset is dropped",
			quantity: 0.00001,
			unit:     domain.FollowUpMinutes,
			want:     referenceTime,
		},
		{
			name:     "fraction of a millisecond truncated",
			quantity: 0.0000299,
			unit:     domain.FollowUpMinutes,
			want:     referenceTime.Add(time.Millisecond),
		},
		{
			name:     "beyond time.Duration range",
			quantity: 110000,
			unit:     domain.FollowUpDays,
			want:     time.UnixMilli(referenceTime.UnixMilli() + 110000*86_400_000).UTC(),
		},
		{
			name:     "far future",
			quantity: 200000,
			unit:     domain.FollowUpDays,
			want:     time.UnixMilli(referenceTime.UnixMilli() + 200000*86_400_000).UTC(),
		},
		{
			name:     "negative quantity moves backwards",
			quantity: -1,
			unit:     domain.FollowUpDays,
			want:     referenceTime.Add(-24 * time.Hour),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := calc.ComputeDeadline(tt.quantity, tt.unit, referenceTime)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCalculator_ComputeDeadlineMatchesMultiplier(t *testing.T) {
	calc := NewCalculator(false)

	for _, unit := range domain.FollowUpUnits {
		multiplier, _ := unit.MultiplierMs()
		for _, q := range []float64{0, 1, 7, 45, 1000} {
			got, err := calc.ComputeDeadline(q, unit, referenceTime)
			if err != nil {
				t.Fatalf("%v %s: unexpected error: %v", q, unit, err)
			}

			want := referenceTime.UnixMilli() + int64(q)*multiplier
			if got.UnixMilli() != want {
				t.Errorf("%v %s: got %d, want %d", q, unit, got.UnixMilli(), want)
			}
		}
	}
}

func TestCalculator_InvalidDuration(t *testing.T) {
	tests := []struct {
		name     string
		lenient  bool
		quantity float64
		unit     domain.FollowUpUnit
	}{
		{name: "NaN minutes", quantity: math.NaN(), unit: domain.FollowUpMinutes},
		{name: "positive infinity", quantity: math.Inf(1), unit: domain.FollowUpHours},
		{name: "negative infinity", quantity: math.Inf(-1), unit: domain.FollowUpDays},
		{name: "out of range", quantity: 1e12, unit: domain.FollowUpDays},
		{name: "past the last representable instant", quantity: 1e8, unit: domain.FollowUpDays},
		{name: "NaN with unknown unit in lenient mode", lenient: true, quantity: math.NaN(), unit: "周内"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc := NewCalculator(tt.lenient)

			got, err := calc.ComputeDeadline(tt.quantity, tt.unit, referenceTime)
			if err == nil {
				t.Fatalf("expected error, got deadline %v", got)
			}
			if !errors.Is(err, domain.ErrInvalidDuration) {
				t.Errorf("expected ErrInvalidDuration, got %v", err)
			}

			var durationErr *domain.InvalidDurationError
			if !errors.As(err, &durationErr) {
				t.Fatalf("expected *InvalidDurationError, got %T", err)
			}
			if durationErr.Unit != tt.unit {
				t.Errorf("unit: got %q, want %q", durationErr.Unit, tt.unit)
			}
			if !got.IsZero() {
				t.Errorf("expected zero time, got %v", got)
			}
		})
	}
}

func TestCalculator_FarFutureRendersExpandedYear(t *testing.T) {
	got, err := NewCalculator(false).ComputeDeadline(3_000_000, domain.FollowUpDays, referenceTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Year() <= 9999 {
		t.Fatalf("year: got %d, want above 9999", got.Year())
	}

	rendered := domain.FormatTimestamp(got)
	if want := "+010"; !strings.HasPrefix(rendered, want) {
		t.Errorf("got %s, want prefix %s", rendered, want)
	}

	parsed, err := domain.ParseTimestamp(rendered)
	if err != nil {
		t.Fatalf("failed to parse %s: %v", rendered, err)
	}
	if !parsed.Equal(got) {
		t.Errorf("parsed %v, want %v", parsed, got)
	}
}

func TestCalculator_UnknownUnit(t *testing.T) {
	t.Run("strict mode rejects", func(t *testing.T) {
		_, err := NewCalculator(false).ComputeDeadline(5, "周内", referenceTime)
		if !errors.Is(err, domain.ErrUnknownUnit) {
			t.Errorf("expected ErrUnknownUnit, got %v", err)
		}
	})

	t.Run("lenient mode returns now unchanged", func(t *testing.T) {
		got, err := NewCalculator(true).ComputeDeadline(5, "周内", referenceTime)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got.Equal(referenceTime) {
			t.Errorf("got %v, want %v", got, referenceTime)
		}
	})
}

func TestComputeDeadline_Strict(t *testing.T) {
	got, err := ComputeDeadline(30, domain.FollowUpMinutes, referenceTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := referenceTime.Add(30 * time.Minute); !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}

	if _, err := ComputeDeadline(math.NaN(), domain.FollowUpMinutes, referenceTime); !errors.Is(err, domain.ErrInvalidDuration) {
		t.Errorf("expected ErrInvalidDuration, got %v", err)
	}

	if _, err := ComputeDeadline(1, "", referenceTime); !errors.Is(err, domain.ErrUnknownUnit) {
		t.Errorf("expected ErrUnknownUnit, got %v", err)
	}
}
