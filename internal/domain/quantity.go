package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Quantity is a form-supplied number. It decodes the way the settings form's values
// are coerced: numbers as-is, booleans as 1 or 0, blank strings and null as zero,
// strings holding a decimal, Infinity, or 0x/0o/0b integer literal parsed, anything
// else (objects, arrays, other strings) as NaN. Decoding never fails so that the
// caller can report the resulting duration as invalid instead of a malformed body.
type Quantity float64

// decimalLiteral matches the decimal strings the form accepts; Go-only forms such as
// "inf", hex floats and digit separators do not match.
var decimalLiteral = regexp.MustCompile(`^[+-]?(Infinity|(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?)$`)

func (q Quantity) Float64() float64 {
	return float64(q)
}

func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	switch {
	case bytes.Equal(data, []byte("null")), bytes.Equal(data, []byte("false")):
		*q = 0
	case bytes.Equal(data, []byte("true")):
		*q = 1
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*q = Quantity(math.NaN())
			return nil
		}
		*q = parseQuantity(s)
	default:
		v, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			*q = Quantity(math.NaN())
			return nil
		}
		*q = Quantity(v)
	}
	return nil
}

func (q Quantity) MarshalJSON() ([]byte, error) {
	v := float64(q)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

func parseQuantity(s string) Quantity {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	if len(s) > 2 && s[0] == '0' {
		if base := integerBase(s[1]); base != 0 {
			return parseInteger(s[2:], base)
		}
	}

	if !decimalLiteral.MatchString(s) {
		return Quantity(math.NaN())
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return Quantity(math.NaN())
	}
	// Out-of-range literals come back as ±Inf or 0.
	return Quantity(v)
}

func integerBase(prefix byte) int {
	switch prefix {
	case 'x', 'X':
		return 16
	case 'o', 'O':
		return 8
	case 'b', 'B':
		return 2
	default:
		return 0
	}
}

// parseInteger reads an unsigned integer literal without its prefix. Values past
// uint64 are not needed by any form field and read as NaN.
func parseInteger(digits string, base int) Quantity {
	if strings.ContainsAny(digits, "_+-") {
		return Quantity(math.NaN())
	}
	v, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		return Quantity(math.NaN())
	}
	return Quantity(float64(v))
}
