// Package report writes the CSV reports and runs the report pipeline.
package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/monarch-reports/internal/model"
	"github.com/google/uuid"
)

// Report headers, in column order.
var (
	BalancesHeader     = []string{"account", "balance", "date_eastern", "datetime"}
	TransactionsHeader = []string{"date", "merchant", "category", "group", "account", "notes", "amount"}
	PortfolioHeader    = []string{"account", "ticker", "shares", "price", "cost"}
)

const lineEnd = "\r\n"

// BalanceRecord encodes an account as a balances row.
func BalanceRecord(a model.Account) []string {
	return []string{a.Name, model.FormatDecimal(a.Balance), a.DateEastern, a.Datetime()}
}

// TransactionRecord encodes a transaction row. Missing notes become an empty field.
func TransactionRecord(t model.Transaction) []string {
	return []string{t.Date, t.Merchant, t.Category, t.Group, t.Account, t.NotesText(), model.FormatDecimal(t.Amount)}
}

// HoldingRecord encodes a portfolio row.
func HoldingRecord(h model.Holding) []string {
	return []string{
		h.Account,
		h.Ticker,
		model.FormatDecimal(h.Shares),
		model.FormatDecimal(h.Price),
		model.FormatDecimal(h.Cost),
	}
}

// encode renders rows with every field quoted, preceded by header when
// withHeader is set. Rows must match the header width.
func encode(header []string, rows [][]string, withHeader bool) ([]byte, error) {
	var b strings.Builder
	if withHeader {
		writeRecord(&b, header)
	}
	for i, row := range rows {
		if len(row) != len(header) {
			return nil, fmt.Errorf("row %d has %d fields, want %d", i, len(row), len(header))
		}
		writeRecord(&b, row)
	}
	return []byte(b.String()), nil
}

func writeRecord(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteString(lineEnd)
}

// WriteFile replaces path with header followed by rows. The content goes to a
// temporary file in the same directory first, so path is either the old
// report or the complete new one.
func WriteFile(path string, header []string, rows [][]string) error {
	data, err := encode(header, rows, true)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	tmpPath := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(path), uuid.New().String()))

	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temporary report: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		if removeErr := os.Remove(tmpPath); removeErr != nil {
			err = errors.Join(err, removeErr)
		}
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// AppendFile appends rows to path, creating it if needed. The header is
// written only when the file is empty when opened.
func AppendFile(path string, header []string, rows [][]string) (err error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, closeErr)
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	data, err := encode(header, rows, info.Size() == 0)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return writeAll(f, data)
}

func writeAll(w io.Writer, data []byte) error {
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write report rows: %w", err)
	}
	return nil
}
