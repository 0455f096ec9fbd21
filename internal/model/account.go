package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is one row of the balances report. It is built once per run from
// the accounts response.
type Account struct {
	UpdatedAt     time.Time
	Balance       decimal.Decimal
	ID            string
	Name          string
	DateEastern   string
	HoldingsCount int
}

// NewAccount builds an Account, normalizing updatedAt to UTC and deriving its
// Eastern calendar date.
func NewAccount(id, name string, balance decimal.Decimal, holdingsCount int, updatedAt time.Time) Account {
	return Account{
		ID:            id,
		Name:          name,
		Balance:       balance,
		HoldingsCount: holdingsCount,
		UpdatedAt:     updatedAt.UTC(),
		DateEastern:   EasternDate(updatedAt),
	}
}

// Datetime returns the last-updated instant as ISO-8601 UTC.
func (a Account) Datetime() string {
	return FormatInstant(a.UpdatedAt)
}

// HasHoldings reports whether the account should be queried for holdings.
func (a Account) HasHoldings() bool {
	return a.HoldingsCount > 0
}
