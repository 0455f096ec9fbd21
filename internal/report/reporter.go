package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Veraticus/monarch-reports/internal/cli"
	"github.com/Veraticus/monarch-reports/internal/common"
	"github.com/Veraticus/monarch-reports/internal/mapper"
	"github.com/Veraticus/monarch-reports/internal/model"
	"github.com/Veraticus/monarch-reports/internal/service"
)

// Default report locations, relative to the working directory.
const (
	DefaultBalancesPath        = "balance.csv"
	DefaultBalancesHistoryPath = "balance_history.csv"
	DefaultTransactionsPath    = "transactions.csv"
	DefaultPortfolioPath       = "portfolio.csv"
)

// Fetcher retrieves raw Monarch payloads. *session.Session implements it with
// the unauthorized-retry policy applied to every call.
type Fetcher interface {
	Accounts(ctx context.Context) (json.RawMessage, error)
	Transactions(ctx context.Context, query service.TransactionQuery) (json.RawMessage, error)
	Categories(ctx context.Context) (json.RawMessage, error)
	Holdings(ctx context.Context, accountID string) (json.RawMessage, error)
}

// Paths holds the output location of each report.
type Paths struct {
	Balances        string
	BalancesHistory string
	Transactions    string
	Portfolio       string
}

// DefaultPaths returns the standard report file names.
func DefaultPaths() Paths {
	return Paths{
		Balances:        DefaultBalancesPath,
		BalancesHistory: DefaultBalancesHistoryPath,
		Transactions:    DefaultTransactionsPath,
		Portfolio:       DefaultPortfolioPath,
	}
}

// Validate checks that every report has a location.
func (p Paths) Validate() error {
	required := []struct {
		name string
		path string
	}{
		{"balances report", p.Balances},
		{"balances history report", p.BalancesHistory},
		{"transactions report", p.Transactions},
		{"portfolio report", p.Portfolio},
	}
	for _, r := range required {
		if r.path == "" {
			return fmt.Errorf("%w: %s path is required", common.ErrMissingConfig, r.name)
		}
	}
	return nil
}

// Summary counts the rows written per report.
type Summary struct {
	Balances     int
	Transactions int
	Holdings     int
	Accounts     int // accounts queried for holdings
}

// Reporter fetches Monarch data and writes the CSV reports.
type Reporter struct {
	fetcher  Fetcher
	clock    func() time.Time
	progress io.Writer
	logger   *slog.Logger
	paths    Paths
	limit    int
}

// Option customizes a Reporter.
type Option func(*Reporter)

// WithClock sets the time source used for the year-to-date range.
func WithClock(clock func() time.Time) Option {
	return func(r *Reporter) {
		r.clock = clock
	}
}

// WithProgress renders a progress bar for holdings fetches to w.
func WithProgress(w io.Writer) Option {
	return func(r *Reporter) {
		r.progress = w
	}
}

// WithTransactionLimit overrides the maximum number of transactions requested.
func WithTransactionLimit(limit int) Option {
	return func(r *Reporter) {
		r.limit = limit
	}
}

// NewReporter creates a Reporter writing to paths.
func NewReporter(fetcher Fetcher, paths Paths, opts ...Option) (*Reporter, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("%w: fetcher is required", common.ErrInvalidConfig)
	}
	if err := paths.Validate(); err != nil {
		return nil, err
	}

	r := &Reporter{
		fetcher: fetcher,
		paths:   paths,
		clock:   time.Now,
		limit:   service.DefaultTransactionLimit,
		logger:  slog.Default().With("component", "reporter"),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.limit <= 0 {
		return nil, fmt.Errorf("%w: transaction limit must be positive", common.ErrInvalidConfig)
	}
	return r, nil
}

// Run produces balances, transactions and portfolio reports in that order.
// The first failure stops the run; reports already written are kept.
func (r *Reporter) Run(ctx context.Context) (Summary, error) {
	var summary Summary

	accounts, err := r.Balances(ctx)
	if err != nil {
		return summary, err
	}
	summary.Balances = len(accounts)

	txCount, err := r.Transactions(ctx)
	if err != nil {
		return summary, err
	}
	summary.Transactions = txCount

	holdings, queried, err := r.portfolio(ctx, accounts)
	if err != nil {
		return summary, err
	}
	summary.Holdings = holdings
	summary.Accounts = queried

	return summary, nil
}

// Balances writes the balances report and appends to the balances history.
// The mapped accounts are returned so the portfolio report can reuse them.
func (r *Reporter) Balances(ctx context.Context) ([]model.Account, error) {
	raw, err := r.fetcher.Accounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}

	accounts, err := mapper.Accounts(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to map accounts: %w", err)
	}

	rows := make([][]string, 0, len(accounts))
	for _, a := range accounts {
		rows = append(rows, BalanceRecord(a))
	}

	if err := WriteFile(r.paths.Balances, BalancesHeader, rows); err != nil {
		return nil, err
	}
	if err := AppendFile(r.paths.BalancesHistory, BalancesHeader, rows); err != nil {
		return nil, err
	}

	r.logger.Info("Wrote balances report",
		"accounts", len(accounts),
		"path", r.paths.Balances,
		"history", r.paths.BalancesHistory)
	return accounts, nil
}

// Transactions writes the year-to-date transactions report and returns the
// number of rows written.
func (r *Reporter) Transactions(ctx context.Context) (int, error) {
	rawCategories, err := r.fetcher.Categories(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch categories: %w", err)
	}
	groups, err := mapper.Categories(rawCategories)
	if err != nil {
		return 0, fmt.Errorf("failed to map categories: %w", err)
	}

	query := service.YearToDate(r.clock(), r.limit)
	rawTransactions, err := r.fetcher.Transactions(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch transactions: %w", err)
	}
	transactions, err := mapper.Transactions(rawTransactions, groups)
	if err != nil {
		return 0, fmt.Errorf("failed to map transactions: %w", err)
	}

	rows := make([][]string, 0, len(transactions))
	for _, t := range transactions {
		rows = append(rows, TransactionRecord(t))
	}
	if err := WriteFile(r.paths.Transactions, TransactionsHeader, rows); err != nil {
		return 0, err
	}

	r.logger.Info("Wrote transactions report",
		"transactions", len(transactions),
		"start", query.StartDate.Format(time.DateOnly),
		"end", query.EndDate.Format(time.DateOnly),
		"path", r.paths.Transactions)
	return len(transactions), nil
}

// Portfolio writes the holdings of every account that reports holdings and
// returns the number of rows written. Accounts are queried one at a time.
func (r *Reporter) Portfolio(ctx context.Context, accounts []model.Account) (int, error) {
	holdings, _, err := r.portfolio(ctx, accounts)
	return holdings, err
}

func (r *Reporter) portfolio(ctx context.Context, accounts []model.Account) (int, int, error) {
	var withHoldings []model.Account
	for _, a := range accounts {
		if a.HasHoldings() {
			withHoldings = append(withHoldings, a)
		}
	}

	bar := cli.NewProgressBar(r.progress, len(withHoldings), "Fetching holdings")

	var rows [][]string
	for _, account := range withHoldings {
		raw, err := r.fetcher.Holdings(ctx, account.ID)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to fetch holdings for %q: %w", account.Name, err)
		}
		holdings, err := mapper.Holdings(raw)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to map holdings for %q: %w", account.Name, err)
		}
		for _, h := range holdings {
			h.Account = account.Name
			rows = append(rows, HoldingRecord(h))
		}
		if err := bar.Add(1); err != nil {
			r.logger.Warn("Failed to update progress bar", "error", err)
		}
	}

	if err := WriteFile(r.paths.Portfolio, PortfolioHeader, rows); err != nil {
		return 0, 0, err
	}

	r.logger.Info("Wrote portfolio report",
		"holdings", len(rows),
		"accounts", len(withHoldings),
		"path", r.paths.Portfolio)
	return len(rows), len(withHoldings), nil
}
