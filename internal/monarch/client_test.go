package monarch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/monarch-reports/internal/common"
	"github.com/Veraticus/monarch-reports/internal/service"
	"github.com/Veraticus/monarch-reports/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMFASecret = "JBSWY3DPEHPK3PXP"

type recordedRequest struct {
	Header http.Header
	Body   map[string]any
	Path   string
}

// fakeServer answers requests from a fixed script, in order.
type fakeServer struct {
	t        *testing.T
	server   *httptest.Server
	requests []recordedRequest
	script   []scriptedResponse
	mu       sync.Mutex
}

type scriptedResponse struct {
	path   string
	body   string
	status int
}

func newFakeServer(t *testing.T, script ...scriptedResponse) *fakeServer {
	t.Helper()

	fs := &fakeServer{t: t, script: script}
	fs.server = httptest.NewServer(http.HandlerFunc(fs.handle))
	t.Cleanup(fs.server.Close)
	return fs
}

func (fs *fakeServer) handle(w http.ResponseWriter, r *http.Request) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	raw, _ := io.ReadAll(r.Body)
	var body map[string]any
	_ = json.Unmarshal(raw, &body)
	fs.requests = append(fs.requests, recordedRequest{Path: r.URL.Path, Header: r.Header.Clone(), Body: body})

	if len(fs.script) == 0 {
		fs.t.Errorf("unexpected request to %s", r.URL.Path)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	next := fs.script[0]
	fs.script = fs.script[1:]
	if next.path != r.URL.Path {
		fs.t.Errorf("expected request to %s, got %s", next.path, r.URL.Path)
	}

	w.WriteHeader(next.status)
	_, _ = w.Write([]byte(next.body))
}

func (fs *fakeServer) config(t *testing.T) Config {
	return Config{
		BaseURL:     fs.server.URL,
		Username:    "user@example.com",
		Password:    "hunter2",
		MFASecret:   testMFASecret,
		SessionFile: filepath.Join(t.TempDir(), "session.json"),
	}
}

func writeSession(t *testing.T, path, token string) {
	t.Helper()
	require.NoError(t, saveSession(path, &savedSession{Token: token, SavedAt: time.Now()}))
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		config  Config
		name    string
		errMsg  string
		wantErr bool
	}{
		{
			name:   "valid config",
			config: Config{Username: "u", Password: "p", MFASecret: testMFASecret},
		},
		{
			name:    "missing username",
			config:  Config{Password: "p", MFASecret: testMFASecret},
			wantErr: true,
			errMsg:  "monarch username is required",
		},
		{
			name:    "missing password",
			config:  Config{Username: "u", MFASecret: testMFASecret},
			wantErr: true,
			errMsg:  "monarch password is required",
		},
		{
			name:    "missing MFA secret",
			config:  Config{Username: "u", Password: "p"},
			wantErr: true,
			errMsg:  "monarch MFA secret is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, common.ErrMissingConfig)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestNewClient_Defaults(t *testing.T) {
	client, err := NewClient(Config{Username: "u", Password: "p", MFASecret: testMFASecret})
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, client.baseURL)
	assert.Equal(t, DefaultSessionFile, client.sessionFile)
	assert.NotEmpty(t, client.headers.Get("Device-UUID"))
	assert.Empty(t, client.headers.Get("Authorization"))
}

func TestClient_LoginWithSavedSession(t *testing.T) {
	fs := newFakeServer(t, scriptedResponse{path: graphqlPath, status: http.StatusOK, body: string(testutil.GraphQLEnvelope(t, testutil.Accounts))})
	cfg := fs.config(t)
	writeSession(t, cfg.SessionFile, "SAVEDTOKEN")

	client, err := NewClient(cfg)
	require.NoError(t, err)

	require.NoError(t, client.Login(context.Background(), true))

	data, err := client.GetAccounts(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, string(testutil.Load(t, testutil.Accounts)), string(data))

	require.Len(t, fs.requests, 1, "saved session must not trigger a login request")
	assert.Equal(t, "Token SAVEDTOKEN", fs.requests[0].Header.Get("Authorization"))
	assert.Equal(t, "GetAccounts", fs.requests[0].Body["operationName"])
}

func TestClient_LoginFresh(t *testing.T) {
	fs := newFakeServer(t, scriptedResponse{path: loginPath, status: http.StatusOK, body: `{"token": "FRESHTOKEN"}`})
	cfg := fs.config(t)

	client, err := NewClient(cfg)
	require.NoError(t, err)

	// No session file yet, so even useSavedSession logs in.
	require.NoError(t, client.Login(context.Background(), true))

	require.Len(t, fs.requests, 1)
	req := fs.requests[0]
	assert.Equal(t, "user@example.com", req.Body["username"])
	assert.Equal(t, "hunter2", req.Body["password"])
	assert.Equal(t, true, req.Body["supports_mfa"])
	assert.Len(t, req.Body["totp"], 6)
	assert.NotEmpty(t, req.Header.Get("Device-UUID"))
	assert.Equal(t, "web", req.Header.Get("Client-Platform"))

	assert.Equal(t, "Token FRESHTOKEN", client.headers.Get("Authorization"))

	state, err := loadSession(cfg.SessionFile)
	require.NoError(t, err)
	assert.Equal(t, "FRESHTOKEN", state.Token)

	info, err := os.Stat(cfg.SessionFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestClient_LoginIgnoresSavedSessionWhenAsked(t *testing.T) {
	fs := newFakeServer(t, scriptedResponse{path: loginPath, status: http.StatusOK, body: `{"token": "NEWTOKEN"}`})
	cfg := fs.config(t)
	writeSession(t, cfg.SessionFile, "STALETOKEN")

	client, err := NewClient(cfg)
	require.NoError(t, err)

	require.NoError(t, client.Login(context.Background(), false))

	require.Len(t, fs.requests, 1)
	assert.Empty(t, fs.requests[0].Header.Get("Authorization"))

	state, err := loadSession(cfg.SessionFile)
	require.NoError(t, err)
	assert.Equal(t, "NEWTOKEN", state.Token)
}

func TestClient_ReloginOnSameClientResendsStaleToken(t *testing.T) {
	fs := newFakeServer(t, scriptedResponse{path: loginPath, status: http.StatusUnauthorized, body: "stale"})
	cfg := fs.config(t)
	writeSession(t, cfg.SessionFile, "STALETOKEN")

	client, err := NewClient(cfg)
	require.NoError(t, err)
	require.NoError(t, client.Login(context.Background(), true))

	err = client.Login(context.Background(), false)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrLoginFailed)

	require.Len(t, fs.requests, 1)
	assert.Equal(t, "Token STALETOKEN", fs.requests[0].Header.Get("Authorization"))
}

func TestClient_LoginErrors(t *testing.T) {
	tests := []struct {
		wantErr error
		name    string
		body    string
		status  int
	}{
		{name: "mfa required", status: http.StatusForbidden, body: `{"detail": "Multi-Factor Auth Required"}`, wantErr: common.ErrMFARequired},
		{name: "bad credentials", status: http.StatusNotFound, body: `{"detail": "not found"}`, wantErr: common.ErrLoginFailed},
		{name: "no token", status: http.StatusOK, body: `{}`, wantErr: common.ErrLoginFailed},
		{name: "garbage", status: http.StatusOK, body: `<html>`, wantErr: common.ErrLoginFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := newFakeServer(t, scriptedResponse{path: loginPath, status: tt.status, body: tt.body})
			client, err := NewClient(fs.config(t))
			require.NoError(t, err)

			err = client.Login(context.Background(), false)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestClient_UnauthorizedIsMarked(t *testing.T) {
	fs := newFakeServer(t, scriptedResponse{path: graphqlPath, status: http.StatusUnauthorized, body: "KDD ERROR"})
	cfg := fs.config(t)
	writeSession(t, cfg.SessionFile, "STALETOKEN")

	client, err := NewClient(cfg)
	require.NoError(t, err)
	require.NoError(t, client.Login(context.Background(), true))

	_, err = client.GetTransactionCategories(context.Background())
	require.Error(t, err)
	assert.True(t, common.IsUnauthorized(err))
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	var apiErr *common.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "GetCategories", apiErr.Operation)
	assert.Equal(t, "KDD ERROR", apiErr.Body)
}

func TestClient_OtherFailuresAreNotUnauthorized(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, body: "slow down"},
		{name: "server error", status: http.StatusInternalServerError, body: "boom"},
		{name: "graphql errors", status: http.StatusOK, body: `{"data": null, "errors": [{"message": "Unauthorized"}]}`},
		{name: "no data", status: http.StatusOK, body: `{"data": null}`},
		{name: "not json", status: http.StatusOK, body: `nope`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := newFakeServer(t, scriptedResponse{path: graphqlPath, status: tt.status, body: tt.body})
			cfg := fs.config(t)
			writeSession(t, cfg.SessionFile, "TOKEN")

			client, err := NewClient(cfg)
			require.NoError(t, err)
			require.NoError(t, client.Login(context.Background(), true))

			_, err = client.GetAccounts(context.Background())
			require.Error(t, err)
			assert.False(t, common.IsUnauthorized(err))
			assert.ErrorIs(t, err, common.ErrMonarchRequest)
		})
	}
}

func TestClient_GetTransactionsVariables(t *testing.T) {
	fs := newFakeServer(t, scriptedResponse{path: graphqlPath, status: http.StatusOK, body: string(testutil.GraphQLEnvelope(t, testutil.Transactions))})
	cfg := fs.config(t)
	writeSession(t, cfg.SessionFile, "TOKEN")

	client, err := NewClient(cfg)
	require.NoError(t, err)
	require.NoError(t, client.Login(context.Background(), true))

	now := time.Date(2026, time.March, 5, 10, 0, 0, 0, time.UTC)
	_, err = client.GetTransactions(context.Background(), service.YearToDate(now, service.DefaultTransactionLimit))
	require.NoError(t, err)

	require.Len(t, fs.requests, 1)
	vars, ok := fs.requests[0].Body["variables"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 10000, vars["limit"], 0)
	filters, ok := vars["filters"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "2026-01-01", filters["startDate"])
	assert.Equal(t, "2026-03-05", filters["endDate"])
}

func TestClient_GetTransactionsRejectsInvertedRange(t *testing.T) {
	client, err := NewClient(Config{Username: "u", Password: "p", MFASecret: testMFASecret})
	require.NoError(t, err)

	_, err = client.GetTransactions(context.Background(), service.TransactionQuery{
		StartDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.Error(t, err)
}

func TestClient_GetAccountHoldingsVariables(t *testing.T) {
	fs := newFakeServer(t, scriptedResponse{path: graphqlPath, status: http.StatusOK, body: string(testutil.GraphQLEnvelope(t, testutil.Holdings))})
	cfg := fs.config(t)
	writeSession(t, cfg.SessionFile, "TOKEN")

	client, err := NewClient(cfg)
	require.NoError(t, err)
	client.now = func() time.Time { return time.Date(2026, time.January, 12, 9, 0, 0, 0, time.UTC) }
	require.NoError(t, client.Login(context.Background(), true))

	data, err := client.GetAccountHoldings(context.Background(), "232706677260014485")
	require.NoError(t, err)
	assert.JSONEq(t, string(testutil.Load(t, testutil.Holdings)), string(data))

	vars, ok := fs.requests[0].Body["variables"].(map[string]any)
	require.True(t, ok)
	input, ok := vars["input"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []any{"232706677260014485"}, input["accountIds"])
	assert.Equal(t, "2026-01-12", input["startDate"])
}

func TestLoadSession(t *testing.T) {
	dir := t.TempDir()

	_, err := loadSession(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, common.ErrSessionNotFound)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`{"token": ""}`), 0600))
	_, err = loadSession(empty)
	assert.ErrorIs(t, err, common.ErrSessionNotFound)

	corrupt := filepath.Join(dir, "corrupt.json")
	require.NoError(t, os.WriteFile(corrupt, []byte(`{`), 0600))
	_, err = loadSession(corrupt)
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrSessionNotFound)

	nested := filepath.Join(dir, "a", "b", "session.json")
	writeSession(t, nested, "TOKEN")
	state, err := loadSession(nested)
	require.NoError(t, err)
	assert.Equal(t, "TOKEN", state.Token)
}
