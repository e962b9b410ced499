// Package money converts user-entered amounts into decimals and applies the
// sign convention of transaction types.
//
// Amounts are kept as shopspring decimals with two fractional digits. Input
// may use either a dot (12.34) or a comma (12,34) as the decimal separator.
package money

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"saldo/internal/models"

	"github.com/shopspring/decimal"
)

// Places is the number of fractional digits stored for every amount.
const Places = 2

// ErrInvalidAmount is returned when an amount cannot be parsed or is not positive.
var ErrInvalidAmount = errors.New("invalid amount")

// Parse reads a strictly positive magnitude, rounding half-up to two places.
//
// Examples:
//
//	Parse("12.34")  -> 12.34
//	Parse("12,34")  -> 12.34
//	Parse("12.345") -> 12.35
//	Parse("-5")     -> ErrInvalidAmount
func Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := parse(s)
	if err != nil {
		return decimal.Zero, err
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ParseSigned reads an amount that may carry a leading sign.
func ParseSigned(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	return parse(s)
}

func parse(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return Round(d), nil
}

// Round rounds d half away from zero to two places.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Signed returns the stored amount for a magnitude entered against the given
// type: expenses are non-positive and income is non-negative.
func Signed(magnitude decimal.Decimal, t models.TransactionType) decimal.Decimal {
	abs := magnitude.Abs()
	if t == models.TransactionTypeExpense {
		return abs.Neg()
	}
	return abs
}

// SignMatches reports whether amount respects the sign convention of t.
// Zero matches both types.
func SignMatches(amount decimal.Decimal, t models.TransactionType) bool {
	switch t {
	case models.TransactionTypeExpense:
		return !amount.IsPositive()
	case models.TransactionTypeIncome:
		return !amount.IsNegative()
	}
	return false
}

// Amount is a request-boundary magnitude that decodes from either a JSON
// number or a JSON string using a dot or comma separator.
type Amount struct {
	decimal.Decimal
}

// NewAmount wraps d.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: d}
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return ErrInvalidAmount
	}
	var raw string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return ErrInvalidAmount
		}
	} else {
		raw = string(data)
	}
	d, err := ParseSigned(raw)
	if err != nil {
		return err
	}
	a.Decimal = d
	return nil
}

// MarshalJSON implements json.Marshaler.
func (a Amount) MarshalJSON() ([]byte, error) {
	return a.Decimal.MarshalJSON()
}
