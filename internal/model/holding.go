package model

import (
	"github.com/shopspring/decimal"
)

// Holding is one investment position in the portfolio report.
//
// The holdings response for a single account does not carry the account's
// own name, so Account is empty after mapping and must be set by the caller.
type Holding struct {
	Shares  decimal.Decimal
	Price   decimal.Decimal
	Cost    decimal.Decimal
	Account string
	Ticker  string
}
