package mapper

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Veraticus/monarch-reports/internal/common"
	"github.com/Veraticus/monarch-reports/internal/model"
	"github.com/shopspring/decimal"
)

type accountsPayload struct {
	Accounts []accountNode `json:"accounts"`
}

type accountNode struct {
	ID             *identifier      `json:"id"`
	DisplayName    *string          `json:"displayName"`
	CurrentBalance *decimal.Decimal `json:"currentBalance"`
	HoldingsCount  *int             `json:"holdingsCount"`
	UpdatedAt      *time.Time       `json:"updatedAt"`
}

// Accounts maps an accounts response into balance rows.
func Accounts(raw json.RawMessage) ([]model.Account, error) {
	var payload accountsPayload
	if err := decode(raw, &payload, "accounts"); err != nil {
		return nil, err
	}
	if payload.Accounts == nil {
		return nil, missing("accounts")
	}

	accounts := make([]model.Account, 0, len(payload.Accounts))
	for i, node := range payload.Accounts {
		acct, err := node.toModel(fmt.Sprintf("accounts[%d]", i))
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acct)
	}

	return accounts, nil
}

func (n accountNode) toModel(path string) (model.Account, error) {
	if n.ID == nil {
		return model.Account{}, missing(path + ".id")
	}
	name, err := requireString(n.DisplayName, path+".displayName")
	if err != nil {
		return model.Account{}, err
	}
	if n.CurrentBalance == nil {
		return model.Account{}, missing(path + ".currentBalance")
	}
	if n.HoldingsCount == nil {
		return model.Account{}, missing(path + ".holdingsCount")
	}
	if *n.HoldingsCount < 0 {
		return model.Account{}, common.NewValidationError(path+".holdingsCount", "must not be negative")
	}
	if n.UpdatedAt == nil {
		return model.Account{}, missing(path + ".updatedAt")
	}

	return model.NewAccount(n.ID.String(), name, *n.CurrentBalance, *n.HoldingsCount, *n.UpdatedAt), nil
}
