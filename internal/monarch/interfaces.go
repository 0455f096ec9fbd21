package monarch

import (
	"context"
	"encoding/json"

	"github.com/Veraticus/monarch-reports/internal/service"
)

// API is the subset of the Monarch service the reports consume. Fetch
// operations return the GraphQL "data" object untouched; shaping it is the
// mapper's job.
type API interface {
	Login(ctx context.Context, useSavedSession bool) error
	GetAccounts(ctx context.Context) (json.RawMessage, error)
	GetTransactions(ctx context.Context, query service.TransactionQuery) (json.RawMessage, error)
	GetTransactionCategories(ctx context.Context) (json.RawMessage, error)
	GetAccountHoldings(ctx context.Context, accountID string) (json.RawMessage, error)
}

// Factory builds a new API client with no session state.
type Factory func() (API, error)
