package pricing

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Money represents a monetary value stored in minor units.
type Money = int64

// Dollars converts minor units to a whole-currency float for rate math.
func Dollars(m Money) float64 {
	return float64(m) / 100
}

// FromDollars converts a whole-currency amount to minor units, rounding
// half away from zero.
func FromDollars(v float64) Money {
	return Money(math.Round(v * 100))
}

// FormatMoney renders a value with two decimal places.
func FormatMoney(m Money) string {
	sign := ""
	if m < 0 {
		sign = "-"
		m = -m
	}
	return fmt.Sprintf("%s%d.%02d", sign, m/100, m%100)
}

// ParseMoney converts a decimal string into minor units.
func ParseMoney(s string) (Money, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("parse money %q: %w", s, err)
	}
	return FromDollars(v), nil
}
