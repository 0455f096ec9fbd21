// Package testutil provides recorded Monarch responses for package tests.
//
// The fixtures are the "data" objects of real GraphQL responses with
// identifying values replaced:
//
//	accounts.json      23 accounts, six with holdings; the first is "Checking"
//	categories.json    80 categories in 10 groups
//	transactions.json  89 transactions
//	holdings.json      two aggregate holdings for a single account
package testutil

import (
	"embed"
	"encoding/json"
	"testing"
)

//go:embed testdata/*.json
var fixtures embed.FS

// Fixture file names.
const (
	Accounts     = "accounts.json"
	Categories   = "categories.json"
	Transactions = "transactions.json"
	Holdings     = "holdings.json"
)

// Load returns the raw bytes of a fixture, failing the test if it is missing.
func Load(t testing.TB, name string) json.RawMessage {
	t.Helper()

	data, err := fixtures.ReadFile("testdata/" + name)
	if err != nil {
		t.Fatalf("failed to read fixture %q: %v", name, err)
	}
	return data
}

// GraphQLEnvelope wraps a fixture the way the GraphQL endpoint returns it.
func GraphQLEnvelope(t testing.TB, name string) []byte {
	t.Helper()

	body, err := json.Marshal(map[string]json.RawMessage{"data": Load(t, name)})
	if err != nil {
		t.Fatalf("failed to wrap fixture %q: %v", name, err)
	}
	return body
}
