// Package core holds the domain model and money handling for tally.
//
// All monetary values are carried as integer minor units (cents) so that
// arbitrarily long chains of additions stay exact. Floating point appears
// only at formatting boundaries.
package core

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Money is a signed monetary amount in cents.
type Money struct {
	Cents int64
}

// CentsFromString converts a signed decimal string to cents.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators, an
// optional leading sign, and performs half-up rounding on the third decimal
// place. Returns ErrInvalidAmount for anything that is not a plain decimal
// number.
//
// Examples:
//
//	CentsFromString("12.34")  -> 1234, nil
//	CentsFromString("-12,34") -> -1234, nil
//	CentsFromString("12.346") -> 1235, nil (rounds up)
func CentsFromString(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")

	negative := false
	switch {
	case strings.HasPrefix(s, "-"):
		negative = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	if s == "" {
		return 0, ErrInvalidAmount
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		if fracPart == "" {
			// A bare "." carries no digits.
			return 0, ErrInvalidAmount
		}
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}

	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Prevent overflow when multiplying by 100
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}

	// Take the first two fractional digits, half-up rounding on the third.
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}

	cents := iv*100 + fracCents
	if negative {
		cents = -cents
	}
	return cents, nil
}

// CentsFromFloat converts a float amount (in major units) to cents with
// half-away-from-zero rounding. NaN and infinities are rejected with
// ErrInvalidAmount.
func CentsFromFloat(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrInvalidAmount
	}
	scaled := f * 100
	if scaled > float64(math.MaxInt64) || scaled < float64(math.MinInt64) {
		return 0, ErrInvalidAmount
	}
	if scaled < 0 {
		return int64(scaled - 0.5), nil
	}
	return int64(scaled + 0.5), nil
}

// Add returns m + o. Exact, no rounding.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// Neg returns -m.
func (m Money) Neg() Money {
	return Money{Cents: -m.Cents}
}

// Abs returns the magnitude of m.
func (m Money) Abs() Money {
	if m.Cents < 0 {
		return Money{Cents: -m.Cents}
	}
	return m
}

// IsNegative reports whether m is below zero.
func (m Money) IsNegative() bool {
	return m.Cents < 0
}

// DivideFloor splits m into n equal shares, flooring each share to a whole
// cent. The remainder is discarded; callers that need it must track it
// themselves. n <= 0 yields zero.
func (m Money) DivideFloor(n int) Money {
	if n <= 0 {
		return Money{}
	}
	return Money{Cents: m.Cents / int64(n)}
}

// Amount returns the value in major units as a float64 with exactly two
// decimals of significance. For display and JSON boundaries only; use cents
// for any computation.
func (m Money) Amount() float64 {
	return float64(m.Cents) / 100.0
}
