package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDecimal(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "1811.71", want: "1811.71"},
		{input: "2227.60", want: "2227.60"},
		{input: "1288.212", want: "1288.212"},
		{input: "-42.57", want: "-42.57"},
		{input: "0.00000001", want: "0.00000001"},
		{input: "1e3", want: "1000"},
		{input: "25000", want: "25000"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			d, err := decimal.NewFromString(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, FormatDecimal(d))
		})
	}
}

func TestEasternDate(t *testing.T) {
	tests := []struct {
		name    string
		instant string
		want    string
	}{
		{name: "afternoon UTC same day", instant: "2026-01-12T14:28:13.637497+00:00", want: "2026-01-12"},
		{name: "after UTC midnight is previous Eastern day", instant: "2026-01-13T03:10:00+00:00", want: "2026-01-12"},
		{name: "daylight saving offset", instant: "2026-07-04T03:59:59Z", want: "2026-07-03"},
		{name: "daylight saving boundary", instant: "2026-07-04T04:00:00Z", want: "2026-07-04"},
		{name: "non-UTC source offset", instant: "2026-01-12T23:30:00-05:00", want: "2026-01-12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, err := time.Parse(time.RFC3339Nano, tt.instant)
			require.NoError(t, err)
			assert.Equal(t, tt.want, EasternDate(ts))
		})
	}
}

func TestFormatInstant(t *testing.T) {
	tests := []struct {
		instant string
		want    string
	}{
		{instant: "2026-01-12T14:28:13.637497+00:00", want: "2026-01-12T14:28:13.637497+00:00"},
		{instant: "2026-01-13T03:10:00+00:00", want: "2026-01-13T03:10:00+00:00"},
		{instant: "2026-01-12T09:10:00.5-05:00", want: "2026-01-12T14:10:00.500000+00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.instant, func(t *testing.T) {
			ts, err := time.Parse(time.RFC3339Nano, tt.instant)
			require.NoError(t, err)
			assert.Equal(t, tt.want, FormatInstant(ts))
		})
	}
}

func TestNewAccount(t *testing.T) {
	updated, err := time.Parse(time.RFC3339Nano, "2026-01-13T03:10:00+00:00")
	require.NoError(t, err)

	acct := NewAccount("1", "Savings", decimal.RequireFromString("10.50"), 0, updated)

	assert.Equal(t, "2026-01-12", acct.DateEastern)
	assert.Equal(t, "2026-01-13T03:10:00+00:00", acct.Datetime())
	assert.Equal(t, time.UTC, acct.UpdatedAt.Location())
	assert.False(t, acct.HasHoldings())
}

func TestCategoryGroups_Group(t *testing.T) {
	groups := CategoryGroups{"1": "Home"}

	name, ok := groups.Group("1")
	assert.True(t, ok)
	assert.Equal(t, "Home", name)

	_, ok = groups.Group("2")
	assert.False(t, ok)

	var missing CategoryGroups
	_, ok = missing.Group("1")
	assert.False(t, ok)
}

func TestTransaction_NotesText(t *testing.T) {
	note := "split with roommate"
	assert.Equal(t, "split with roommate", Transaction{Notes: &note}.NotesText())
	assert.Empty(t, Transaction{}.NotesText())
}
