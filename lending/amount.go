package lending

import (
	"fmt"
)

// Amount is a money value in minor units (cents).
type Amount int64

// Cents creates an Amount from minor units.
func Cents(c int64) Amount {
	return Amount(c)
}

// Cents returns the amount in minor units.
func (a Amount) Cents() int64 {
	return int64(a)
}

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool {
	return a == 0
}

// String renders the amount with two decimals, e.g. "11.50".
func (a Amount) String() string {
	sign := ""
	v := int64(a)

	if v < 0 {
		sign = "-"
		v = -v
	}

	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}
