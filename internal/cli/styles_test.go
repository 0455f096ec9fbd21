package cli

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatCount(t *testing.T) {
	tests := []struct {
		name string
		noun string
		want string
		n    int
	}{
		{name: "zero", n: 0, noun: "row", want: "0 rows"},
		{name: "one", n: 1, noun: "row", want: "1 row"},
		{name: "many", n: 23, noun: "account", want: "23 accounts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCount(tt.n, tt.noun))
		})
	}
}

func TestRenderFields_AlignsValues(t *testing.T) {
	out := RenderFields([]Field{
		{Label: "Balances", Value: "23 rows"},
		{Label: "Transactions", Value: "89 rows"},
	})

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Index(lines[0], "23 rows"), strings.Index(lines[1], "89 rows"))
}

func TestRenderBox_ContainsTitleAndContent(t *testing.T) {
	out := RenderBox("Reports written", "balance.csv")

	assert.Contains(t, out, "Reports written")
	assert.Contains(t, out, "balance.csv")
}

func TestNewProgressBar(t *testing.T) {
	t.Run("nil writer is silent", func(t *testing.T) {
		bar := NewProgressBar(nil, 3, "Fetching holdings")
		require.NotNil(t, bar)
		assert.NoError(t, bar.Add(1))
	})

	t.Run("writes to the given writer", func(t *testing.T) {
		var buf bytes.Buffer
		bar := NewProgressBar(&buf, 2, "Fetching holdings")
		require.NoError(t, bar.Add(2))
		assert.Contains(t, buf.String(), "Fetching holdings")
	})
}

func TestTerminalOrNil_NonTerminal(t *testing.T) {
	assert.Nil(t, TerminalOrNil(&bytes.Buffer{}))

	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()
	assert.Nil(t, TerminalOrNil(f))
}
