// Package core holds the ledger domain model: money, dates, accounts,
// categories and transactions, together with their validation rules.
package core

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Money is a fixed-point amount in cents. All balance arithmetic happens on
// cents so that repeated additions and reversals never drift.
type Money struct {
	Cents int64
}

// ParseDecimal converts a decimal string to cents with half-up rounding on
// the third decimal place. Both dot (12.34) and comma (12,34) separators are
// accepted. A leading minus sign is allowed; use ValidateAmount for values
// that must be positive.
func ParseDecimal(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, Invalidf("amount", "empty value")
	}
	s = strings.ReplaceAll(s, ",", ".")

	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		neg = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return Money{}, Invalidf("amount", "malformed decimal %q", s)
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return Money{}, Invalidf("amount", "malformed decimal %q", s)
		}
	}

	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return Money{}, Invalidf("amount", "malformed decimal %q", s)
	}
	const maxSafe = (1<<63 - 1) / 100
	if iv > maxSafe {
		return Money{}, Invalidf("amount", "value out of range")
	}

	// First two fractional digits are cents; the third rounds half-up.
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
	if neg {
		cents = -cents
	}
	return Money{Cents: cents}, nil
}

// ValidateAmount enforces the transaction-amount rule: strictly positive.
func (m Money) ValidateAmount() error {
	if m.Cents <= 0 {
		return Invalidf("amount", "must be a positive decimal")
	}
	return nil
}

// Add returns m + other.
func (m Money) Add(other Money) Money { return Money{Cents: m.Cents + other.Cents} }

// Sub returns m - other.
func (m Money) Sub(other Money) Money { return Money{Cents: m.Cents - other.Cents} }

// Neg returns -m.
func (m Money) Neg() Money { return Money{Cents: -m.Cents} }

// String renders the amount as a fixed-point decimal, e.g. "100.50".
func (m Money) String() string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// MarshalJSON encodes the amount as a decimal-safe string, never a binary
// float, so accumulated balances survive JSON round trips exactly.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts either a decimal string ("100.50") or a JSON number.
func (m *Money) UnmarshalJSON(data []byte) error {
	var raw any
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case string:
		parsed, err := ParseDecimal(v)
		if err != nil {
			return err
		}
		*m = parsed
	case json.Number:
		parsed, err := ParseDecimal(v.String())
		if err != nil {
			return err
		}
		*m = parsed
	case nil:
		*m = Money{}
	default:
		return Invalidf("amount", "unsupported JSON type %T", raw)
	}
	return nil
}
