package model

import (
	"github.com/shopspring/decimal"
)

// FormatDecimal renders d in plain notation, keeping the scale it was parsed
// with so "2227.60" stays "2227.60" and "1288.212" stays "1288.212".
func FormatDecimal(d decimal.Decimal) string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.String()
}
