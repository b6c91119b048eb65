package domain

import (
	"github.com/shopspring/decimal"

	"banking-ledger/internal/errors"
)

// Money is an exact monetary amount with at most two decimal places.
// It is never negative and never mutated; arithmetic produces new values.
type Money struct {
	amount decimal.Decimal
}

// NewMoney validates a decimal as a monetary amount.
func NewMoney(amount decimal.Decimal) (Money, error) {
	if amount.IsNegative() {
		return Money{}, errors.ErrInvalidAmount
	}
	if amount.Exponent() < -2 {
		return Money{}, errors.NewAppError(errors.InvalidAmount, "amount has more than two decimal places")
	}
	return Money{amount: amount}, nil
}

// NewMoneyFromString parses a decimal literal such as "200.00".
func NewMoneyFromString(value string) (Money, error) {
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return Money{}, errors.NewAppError(errors.InvalidAmount, "invalid amount format").WithDetails(err.Error())
	}
	return NewMoney(amount)
}

// Add returns the sum of both amounts.
func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount)}
}

// Sub returns m minus other, failing when the result would be negative.
func (m Money) Sub(other Money) (Money, error) {
	if m.amount.LessThan(other.amount) {
		return Money{}, errors.ErrInsufficientFunds
	}
	return Money{amount: m.amount.Sub(other.amount)}, nil
}

func (m Money) Equal(other Money) bool {
	return m.amount.Equal(other.amount)
}

func (m Money) LessThan(other Money) bool {
	return m.amount.LessThan(other.amount)
}

func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

func (m Money) Decimal() decimal.Decimal {
	return m.amount
}

func (m Money) String() string {
	return m.amount.String()
}

// StringFixed renders the amount with exactly two decimal places, the form
// balances take on the wire.
func (m Money) StringFixed() string {
	return m.amount.StringFixed(2)
}

// MarshalJSON renders the amount as a string to keep exact decimal
// representation across the wire.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.amount.String() + `"`), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	value := string(data)
	if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
		value = value[1 : len(value)-1]
	}
	parsed, err := NewMoneyFromString(value)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
