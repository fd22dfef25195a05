package model

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Money is a two-decimal amount stored as numeric(10,2).
type Money struct {
	decimal.Decimal
}

func NewMoney(amount decimal.Decimal) Money {
	return Money{Decimal: amount.Round(2)}
}

// MustMoney parses a literal amount such as "19.99" and panics on malformed input.
func MustMoney(amount string) Money {
	return NewMoney(decimal.RequireFromString(amount))
}

// Mul multiplies by a quantity.
func (m Money) Mul(quantity int) Money {
	return NewMoney(m.Decimal.Mul(decimal.NewFromInt(int64(quantity))))
}

func (m Money) Add(other Money) Money {
	return NewMoney(m.Decimal.Add(other.Decimal))
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Decimal.Round(2).StringFixed(2))
}

// UnmarshalJSON accepts both "12.50" and 12.5.
func (m *Money) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return err
		}
		m.Decimal = d.Round(2)
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	m.Decimal = d.Round(2)
	return nil
}

func (m Money) Value() (driver.Value, error) {
	return m.Decimal.Round(2).StringFixed(2), nil
}

func (m *Money) Scan(value interface{}) error {
	if err := m.Decimal.Scan(value); err != nil {
		return err
	}
	m.Decimal = m.Decimal.Round(2)
	return nil
}

func (m Money) String() string {
	return m.Decimal.Round(2).StringFixed(2)
}
