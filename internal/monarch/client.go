// Package monarch provides a client for the Monarch Money web API.
package monarch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Veraticus/monarch-reports/internal/common"
	"github.com/Veraticus/monarch-reports/internal/service"
	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
)

// DefaultBaseURL is the production API endpoint.
const DefaultBaseURL = "https://api.monarchmoney.com"

const (
	loginPath   = "/auth/login/"
	graphqlPath = "/graphql"

	maxErrorBody = 512
)

// Config holds Monarch API configuration.
type Config struct {
	BaseURL     string
	Username    string
	Password    string
	MFASecret   string // TOTP secret shown during MFA setup
	SessionFile string
	HTTPTimeout time.Duration
}

// Validate ensures all required fields are present.
func (c *Config) Validate() error {
	if c.Username == "" {
		return fmt.Errorf("%w: monarch username is required", common.ErrMissingConfig)
	}
	if c.Password == "" {
		return fmt.Errorf("%w: monarch password is required", common.ErrMissingConfig)
	}
	if c.MFASecret == "" {
		return fmt.Errorf("%w: monarch MFA secret is required", common.ErrMissingConfig)
	}
	return nil
}

// Client talks to Monarch over HTTP.
//
// The authorization token lives in the client's header set and is sent with
// every request, login included. A client holding a revoked token therefore
// cannot log in again; build a new Client instead.
type Client struct {
	httpClient  *http.Client
	logger      *slog.Logger
	headers     http.Header
	now         func() time.Time
	baseURL     string
	username    string
	password    string
	mfaSecret   string
	sessionFile string
}

// NewClient creates a new Monarch client with no session.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	sessionFile := cfg.SessionFile
	if sessionFile == "" {
		sessionFile = DefaultSessionFile
	}
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	headers := http.Header{}
	headers.Set("Accept", "application/json")
	headers.Set("Client-Platform", "web")
	headers.Set("Content-Type", "application/json")
	headers.Set("User-Agent", "monarch-reports")
	headers.Set("Device-UUID", uuid.NewString())

	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		logger:      slog.Default().With("component", "monarch"),
		headers:     headers,
		now:         time.Now,
		baseURL:     baseURL,
		username:    cfg.Username,
		password:    cfg.Password,
		mfaSecret:   cfg.MFASecret,
		sessionFile: sessionFile,
	}, nil
}

// NewFactory returns a Factory producing fresh clients from cfg.
func NewFactory(cfg Config) Factory {
	return func() (API, error) {
		return NewClient(cfg)
	}
}

// Login authenticates the client. With useSavedSession set, a token from the
// session file is used without contacting the server. Otherwise the client
// logs in with username, password and a TOTP code, and saves the new token.
func (c *Client) Login(ctx context.Context, useSavedSession bool) error {
	if useSavedSession {
		state, err := loadSession(c.sessionFile)
		switch {
		case err == nil:
			c.headers.Set("Authorization", "Token "+state.Token)
			c.logger.Info("Using saved Monarch session",
				"saved_at", state.SavedAt.Format(time.RFC3339),
				"session_file", c.sessionFile)
			return nil
		case errors.Is(err, common.ErrSessionNotFound):
			c.logger.Debug("No saved session found", "session_file", c.sessionFile)
		default:
			c.logger.Warn("Ignoring unreadable session file", "session_file", c.sessionFile, "error", err)
		}
	}

	token, err := c.authenticate(ctx)
	if err != nil {
		return err
	}
	c.headers.Set("Authorization", "Token "+token)

	if err := saveSession(c.sessionFile, &savedSession{Token: token, SavedAt: c.now().UTC()}); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	c.logger.Info("Logged in to Monarch", "session_file", c.sessionFile)
	return nil
}

func (c *Client) authenticate(ctx context.Context) (string, error) {
	code, err := totp.GenerateCode(c.mfaSecret, c.now())
	if err != nil {
		return "", fmt.Errorf("%w: failed to generate MFA code: %v", common.ErrLoginFailed, err)
	}

	body := map[string]any{
		"username":       c.username,
		"password":       c.password,
		"supports_mfa":   true,
		"trusted_device": false,
		"totp":           code,
	}

	respBody, err := c.post(ctx, "login", loginPath, body)
	if err != nil {
		var apiErr *common.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusForbidden {
			return "", fmt.Errorf("%w: %w", common.ErrMFARequired, err)
		}
		return "", fmt.Errorf("%w: %w", common.ErrLoginFailed, err)
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("%w: failed to decode login response: %v", common.ErrLoginFailed, err)
	}
	if result.Token == "" {
		return "", fmt.Errorf("%w: login response carried no token", common.ErrLoginFailed)
	}

	return result.Token, nil
}

// GetAccounts fetches every linked account.
func (c *Client) GetAccounts(ctx context.Context) (json.RawMessage, error) {
	return c.graphql(ctx, "GetAccounts", getAccountsQuery, map[string]any{})
}

// GetTransactions fetches transactions within the query's date range.
func (c *Client) GetTransactions(ctx context.Context, query service.TransactionQuery) (json.RawMessage, error) {
	if query.StartDate.After(query.EndDate) {
		return nil, fmt.Errorf("start date must be before end date")
	}

	variables := map[string]any{
		"offset":  0,
		"limit":   query.Limit,
		"orderBy": "date",
		"filters": map[string]any{
			"search":     "",
			"categories": []string{},
			"accounts":   []string{},
			"tags":       []string{},
			"startDate":  query.StartDate.Format("2006-01-02"),
			"endDate":    query.EndDate.Format("2006-01-02"),
		},
	}

	c.logger.Debug("Fetching transactions",
		"start_date", query.StartDate.Format("2006-01-02"),
		"end_date", query.EndDate.Format("2006-01-02"),
		"limit", query.Limit)

	return c.graphql(ctx, "GetTransactionsList", getTransactionsQuery, variables)
}

// GetTransactionCategories fetches the full category list with groups.
func (c *Client) GetTransactionCategories(ctx context.Context) (json.RawMessage, error) {
	return c.graphql(ctx, "GetCategories", getCategoriesQuery, map[string]any{})
}

// GetAccountHoldings fetches today's aggregate holdings for one account.
func (c *Client) GetAccountHoldings(ctx context.Context, accountID string) (json.RawMessage, error) {
	today := c.now().Format("2006-01-02")
	variables := map[string]any{
		"input": map[string]any{
			"accountIds":            []string{accountID},
			"endDate":               today,
			"includeHiddenHoldings": true,
			"startDate":             today,
		},
	}
	return c.graphql(ctx, "Web_GetHoldings", getHoldingsQuery, variables)
}

type graphqlError struct {
	Message string `json:"message"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors"`
}

func (c *Client) graphql(ctx context.Context, operation, query string, variables map[string]any) (json.RawMessage, error) {
	body := map[string]any{
		"operationName": operation,
		"variables":     variables,
		"query":         query,
	}

	respBody, err := c.post(ctx, operation, graphqlPath, body)
	if err != nil {
		return nil, err
	}

	var resp graphqlResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: %s: failed to decode response: %v", common.ErrMonarchRequest, operation, err)
	}
	if len(resp.Errors) > 0 {
		messages := make([]string, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			messages = append(messages, e.Message)
		}
		return nil, &common.APIError{
			Operation:  operation,
			StatusCode: http.StatusOK,
			Body:       strings.Join(messages, "; "),
		}
	}
	if len(resp.Data) == 0 || string(resp.Data) == "null" {
		return nil, fmt.Errorf("%w: %s: response carried no data", common.ErrMonarchRequest, operation)
	}

	return resp.Data, nil
}

func (c *Client) post(ctx context.Context, operation, path string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header = c.headers.Clone()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", common.ErrMonarchRequest, operation, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: failed to read response: %w", common.ErrMonarchRequest, operation, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text := string(respBody)
		if len(text) > maxErrorBody {
			text = text[:maxErrorBody]
		}
		return nil, &common.APIError{
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(text),
		}
	}

	return respBody, nil
}

// Ensure Client implements API interface.
var _ API = (*Client)(nil)
