package model

import (
	"github.com/shopspring/decimal"
)

// Transaction is one flattened row of the transactions report.
type Transaction struct {
	Notes    *string // nil when the source carries no notes
	Amount   decimal.Decimal
	Date     string // as provided by the source, not reparsed
	Merchant string
	Category string
	Group    string
	Account  string
}

// NotesText returns the notes or an empty string.
func (t Transaction) NotesText() string {
	if t.Notes == nil {
		return ""
	}
	return *t.Notes
}
