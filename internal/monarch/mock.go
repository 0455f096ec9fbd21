package monarch

import (
	"context"
	"encoding/json"

	"github.com/Veraticus/monarch-reports/internal/service"
)

// MockClient is a mock implementation of API for testing.
type MockClient struct {
	// Functions that can be set by tests to control behavior
	LoginFn                    func(ctx context.Context, useSavedSession bool) error
	GetAccountsFn              func(ctx context.Context) (json.RawMessage, error)
	GetTransactionsFn          func(ctx context.Context, query service.TransactionQuery) (json.RawMessage, error)
	GetTransactionCategoriesFn func(ctx context.Context) (json.RawMessage, error)
	GetAccountHoldingsFn       func(ctx context.Context, accountID string) (json.RawMessage, error)

	// Call tracking
	LoginCalls                    []bool
	GetTransactionsCalls          []service.TransactionQuery
	GetAccountHoldingsCalls       []string
	GetAccountsCalls              int
	GetTransactionCategoriesCalls int
}

// NewMockClient creates a new mock Monarch client.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// Login implements API.Login.
func (m *MockClient) Login(ctx context.Context, useSavedSession bool) error {
	m.LoginCalls = append(m.LoginCalls, useSavedSession)

	if m.LoginFn != nil {
		return m.LoginFn(ctx, useSavedSession)
	}
	return nil
}

// GetAccounts implements API.GetAccounts.
func (m *MockClient) GetAccounts(ctx context.Context) (json.RawMessage, error) {
	m.GetAccountsCalls++

	if m.GetAccountsFn != nil {
		return m.GetAccountsFn(ctx)
	}

	// Default behavior: no accounts
	return json.RawMessage(`{"accounts": []}`), nil
}

// GetTransactions implements API.GetTransactions.
func (m *MockClient) GetTransactions(ctx context.Context, query service.TransactionQuery) (json.RawMessage, error) {
	m.GetTransactionsCalls = append(m.GetTransactionsCalls, query)

	if m.GetTransactionsFn != nil {
		return m.GetTransactionsFn(ctx, query)
	}

	return json.RawMessage(`{"allTransactions": {"totalCount": 0, "results": []}}`), nil
}

// GetTransactionCategories implements API.GetTransactionCategories.
func (m *MockClient) GetTransactionCategories(ctx context.Context) (json.RawMessage, error) {
	m.GetTransactionCategoriesCalls++

	if m.GetTransactionCategoriesFn != nil {
		return m.GetTransactionCategoriesFn(ctx)
	}

	return json.RawMessage(`{"categories": []}`), nil
}

// GetAccountHoldings implements API.GetAccountHoldings.
func (m *MockClient) GetAccountHoldings(ctx context.Context, accountID string) (json.RawMessage, error) {
	m.GetAccountHoldingsCalls = append(m.GetAccountHoldingsCalls, accountID)

	if m.GetAccountHoldingsFn != nil {
		return m.GetAccountHoldingsFn(ctx, accountID)
	}

	return json.RawMessage(`{"portfolio": {"aggregateHoldings": {"edges": []}}}`), nil
}

// Ensure MockClient implements API interface.
var _ API = (*MockClient)(nil)
