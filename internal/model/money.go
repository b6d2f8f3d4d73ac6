package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Money is a fixed-point amount with two fraction digits.  It is stored
// in minor units (cents) so that sums and products stay exact; the
// database columns holding money are BIGINT minor units as well.
type Money int64

// ErrInvalidMoney is returned by ParseMoney for malformed amounts.
var ErrInvalidMoney = errors.New("invalid money amount")

// Minor returns the amount in minor units.
func (m Money) Minor() int64 { return int64(m) }

// Mul multiplies the amount by an integer quantity.
func (m Money) Mul(qty int) Money { return m * Money(qty) }

// Half returns half of the amount, rounding half a cent up.
func (m Money) Half() Money {
	if m < 0 {
		return -((-m + 1) / 2)
	}
	return (m + 1) / 2
}

// String renders the amount with exactly two fraction digits, e.g. "80000.00".
func (m Money) String() string {
	v := int64(m)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// ParseMoney parses a decimal string such as "12", "12.5" or "-12.50".
// More than two fraction digits are rejected rather than rounded.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidMoney
	}
	neg := false
	if s[0] == '-' || s[0] == '+' {
		neg = s[0] == '-'
		s = s[1:]
	}
	whole, frac, hasFrac := strings.Cut(s, ".")
	if !digits(whole) || (hasFrac && (!digits(frac) || len(frac) > 2)) {
		return 0, ErrInvalidMoney
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, ErrInvalidMoney
	}
	var f int64
	if hasFrac {
		if len(frac) == 1 {
			frac += "0"
		}
		if f, err = strconv.ParseInt(frac, 10, 64); err != nil {
			return 0, ErrInvalidMoney
		}
	}
	v := w*100 + f
	if neg {
		v = -v
	}
	return Money(v), nil
}

// digits reports whether s is a non-empty run of ASCII digits.
func digits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the amount as a decimal string to avoid float rounding
// in clients.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts either a decimal string or a JSON number.
func (m *Money) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	v, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}
