package deadline

import (
	"fmt"
	"math"
	"time"

	"github.com/KasumiMercury/primind-sales-rules/internal/domain"
)

// maxTimeValueMs bounds the Unix millisecond value of a deadline, 100,000,000 days
// either side of the epoch.
const maxTimeValueMs = 8.64e15

type Calculator struct {
	// lenientUnits keeps the legacy behaviour of treating an unknown unit as a zero
	// multiplier, so the deadline equals now.
	lenientUnits bool
}

func NewCalculator(lenientUnits bool) *Calculator {
	return &Calculator{
		lenientUnits: lenientUnits,
	}
}

func (c *Calculator) LenientUnits() bool {
	return c.lenientUnits
}

// ComputeDeadline returns now + quantity×unit at millisecond precision. The sum is
// truncated toward zero, so a sub-millisecond offset leaves now unchanged.
func (c *Calculator) ComputeDeadline(quantity float64, unit domain.FollowUpUnit, now time.Time) (time.Time, error) {
	multiplier, ok := unit.MultiplierMs()
	if !ok && !c.lenientUnits {
		return time.Time{}, fmt.Errorf("%w: %q", domain.ErrUnknownUnit, unit.String())
	}

	offset := quantity * float64(multiplier)
	if math.IsNaN(offset) || math.IsInf(offset, 0) {
		return time.Time{}, &domain.InvalidDurationError{Quantity: quantity, Unit: unit}
	}

	at := math.Trunc(float64(now.UnixMilli()) + offset)
	if math.Abs(at) > maxTimeValueMs {
		return time.Time{}, &domain.InvalidDurationError{Quantity: quantity, Unit: unit}
	}

	return time.UnixMilli(int64(at)).In(now.Location()), nil
}

var strict = NewCalculator(false)

// ComputeDeadline computes a deadline with the strict calculator.
func ComputeDeadline(quantity float64, unit domain.FollowUpUnit, now time.Time) (time.Time, error) {
	return strict.ComputeDeadline(quantity, unit, now)
}
