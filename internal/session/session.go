// Package session keeps a Monarch client logged in across a reporting run.
//
// Every fetch goes through common.WithAuthRetry: an unauthorized response
// replaces the client with a brand-new one from the factory, logs it in
// without the saved session, and retries the call once.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Veraticus/monarch-reports/internal/common"
	"github.com/Veraticus/monarch-reports/internal/monarch"
	"github.com/Veraticus/monarch-reports/internal/service"
)

// Session owns the current client and the means to replace it.
type Session struct {
	client  monarch.API
	factory monarch.Factory
	logger  *slog.Logger
	retry   service.RetryOptions
}

// New creates a Session and its first client.
func New(factory monarch.Factory, retry service.RetryOptions) (*Session, error) {
	if factory == nil {
		return nil, fmt.Errorf("client factory cannot be nil")
	}
	if retry.Delay < 0 {
		return nil, fmt.Errorf("%w: retry delay must not be negative", common.ErrInvalidConfig)
	}

	client, err := factory()
	if err != nil {
		return nil, fmt.Errorf("failed to create Monarch client: %w", err)
	}

	return &Session{
		client:  client,
		factory: factory,
		retry:   retry,
		logger:  slog.Default().With("component", "session"),
	}, nil
}

// Login authenticates the session. When useSavedSession is false the current
// client is discarded first, because a client that has held a token keeps
// sending it.
func (s *Session) Login(ctx context.Context, useSavedSession bool) error {
	if !useSavedSession {
		client, err := s.factory()
		if err != nil {
			return fmt.Errorf("failed to create Monarch client: %w", err)
		}
		s.client = client
		s.logger.Debug("Replaced Monarch client for a fresh login")
	}

	if err := s.client.Login(ctx, useSavedSession); err != nil {
		return fmt.Errorf("failed to log in: %w", err)
	}
	return nil
}

func (s *Session) relogin(ctx context.Context) error {
	return s.Login(ctx, false)
}

// Accounts fetches the accounts payload.
func (s *Session) Accounts(ctx context.Context) (json.RawMessage, error) {
	return common.WithAuthRetry(ctx, s.retry, s.relogin, func(ctx context.Context) (json.RawMessage, error) {
		return s.client.GetAccounts(ctx)
	})
}

// Transactions fetches the transactions payload for query.
func (s *Session) Transactions(ctx context.Context, query service.TransactionQuery) (json.RawMessage, error) {
	return common.WithAuthRetry(ctx, s.retry, s.relogin, func(ctx context.Context) (json.RawMessage, error) {
		return s.client.GetTransactions(ctx, query)
	})
}

// Categories fetches the transaction category payload.
func (s *Session) Categories(ctx context.Context) (json.RawMessage, error) {
	return common.WithAuthRetry(ctx, s.retry, s.relogin, func(ctx context.Context) (json.RawMessage, error) {
		return s.client.GetTransactionCategories(ctx)
	})
}

// Holdings fetches the holdings payload for one account.
func (s *Session) Holdings(ctx context.Context, accountID string) (json.RawMessage, error) {
	return common.WithAuthRetry(ctx, s.retry, s.relogin, func(ctx context.Context) (json.RawMessage, error) {
		return s.client.GetAccountHoldings(ctx, accountID)
	})
}
