package mapper

import (
	"encoding/json"
	"fmt"

	"github.com/Veraticus/monarch-reports/internal/common"
	"github.com/Veraticus/monarch-reports/internal/model"
	"github.com/shopspring/decimal"
)

type transactionsPayload struct {
	AllTransactions *struct {
		Results []transactionNode `json:"results"`
	} `json:"allTransactions"`
}

type transactionNode struct {
	ID       *identifier      `json:"id"`
	Amount   *decimal.Decimal `json:"amount"`
	Date     *string          `json:"date"`
	Notes    *string          `json:"notes"`
	Merchant *named           `json:"merchant"`
	Category *named           `json:"category"`
	Account  *struct {
		ID          *identifier `json:"id"`
		DisplayName *string     `json:"displayName"`
	} `json:"account"`
}

// Transactions maps a transactions response into report rows, resolving each
// row's category group through groups. A nil lookup, or any category id the
// lookup does not know, fails the whole batch.
func Transactions(raw json.RawMessage, groups model.CategoryGroups) ([]model.Transaction, error) {
	if groups == nil {
		return nil, fmt.Errorf("%w: no category lookup", common.ErrUnknownCategory)
	}

	var payload transactionsPayload
	if err := decode(raw, &payload, "allTransactions"); err != nil {
		return nil, err
	}
	if payload.AllTransactions == nil {
		return nil, missing("allTransactions")
	}
	if payload.AllTransactions.Results == nil {
		return nil, missing("allTransactions.results")
	}

	results := payload.AllTransactions.Results
	transactions := make([]model.Transaction, 0, len(results))
	for i, node := range results {
		tx, err := node.toModel(fmt.Sprintf("allTransactions.results[%d]", i), groups)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}

	return transactions, nil
}

func (n transactionNode) toModel(path string, groups model.CategoryGroups) (model.Transaction, error) {
	if n.ID == nil {
		return model.Transaction{}, missing(path + ".id")
	}
	if n.Amount == nil {
		return model.Transaction{}, missing(path + ".amount")
	}
	date, err := requireString(n.Date, path+".date")
	if err != nil {
		return model.Transaction{}, err
	}

	if n.Merchant == nil {
		return model.Transaction{}, missing(path + ".merchant")
	}
	if n.Merchant.ID == nil {
		return model.Transaction{}, missing(path + ".merchant.id")
	}
	merchant, err := requireString(n.Merchant.Name, path+".merchant.name")
	if err != nil {
		return model.Transaction{}, err
	}

	if n.Category == nil {
		return model.Transaction{}, missing(path + ".category")
	}
	if n.Category.ID == nil {
		return model.Transaction{}, missing(path + ".category.id")
	}
	category, err := requireString(n.Category.Name, path+".category.name")
	if err != nil {
		return model.Transaction{}, err
	}
	group, ok := groups.Group(n.Category.ID.String())
	if !ok {
		return model.Transaction{}, fmt.Errorf("%w: %s.category.id %s", common.ErrUnknownCategory, path, n.Category.ID.String())
	}

	if n.Account == nil {
		return model.Transaction{}, missing(path + ".account")
	}
	if n.Account.ID == nil {
		return model.Transaction{}, missing(path + ".account.id")
	}
	account, err := requireString(n.Account.DisplayName, path+".account.displayName")
	if err != nil {
		return model.Transaction{}, err
	}

	return model.Transaction{
		Date:     date,
		Merchant: merchant,
		Category: category,
		Group:    group,
		Account:  account,
		Notes:    n.Notes,
		Amount:   *n.Amount,
	}, nil
}
