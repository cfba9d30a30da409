package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Money is an amount in cents. It is stored as an integer column and
// rendered as a decimal number (12.5 -> 1250) on the JSON surface.
type Money int64

// Cents builds a Money value from a decimal amount, rounding half away
// from zero.
func Cents(amount float64) Money {
	return Money(math.Round(amount * 100))
}

// Float returns the decimal amount.
func (m Money) Float() float64 { return float64(m) / 100 }

func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		// accept quoted numbers as well
		var s string
		if err2 := json.Unmarshal(b, &s); err2 != nil {
			return fmt.Errorf("money: %w", err)
		}
		parsed, err2 := strconv.ParseFloat(s, 64)
		if err2 != nil {
			return fmt.Errorf("money: %w", err2)
		}
		f = parsed
	}
	*m = Cents(f)
	return nil
}
