package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/api-sage/client-ledger-processor/src/internal/domain"
	"github.com/shopspring/decimal"
)

const amountPlaces = 4

// AccountWriter serializes account summaries as CSV. The header is written
// before the first row, or on Flush if no row was written.
type AccountWriter struct {
	w             *csv.Writer
	headerWritten bool
	rows          int
}

func NewAccountWriter(dst io.Writer) *AccountWriter {
	return &AccountWriter{w: csv.NewWriter(dst)}
}

func (aw *AccountWriter) Write(summary domain.AccountSummary) error {
	if err := aw.writeHeader(); err != nil {
		return err
	}

	record := []string{
		strconv.FormatUint(uint64(summary.Client), 10),
		FormatAmount(summary.Available),
		FormatAmount(summary.Held),
		FormatAmount(summary.Total),
		strconv.FormatBool(summary.Locked),
	}
	if err := aw.w.Write(record); err != nil {
		return fmt.Errorf("write account %d: %w", summary.Client, err)
	}

	aw.rows++
	return nil
}

// Rows returns the number of account rows written.
func (aw *AccountWriter) Rows() int {
	return aw.rows
}

func (aw *AccountWriter) Flush() error {
	if err := aw.writeHeader(); err != nil {
		return err
	}

	aw.w.Flush()
	if err := aw.w.Error(); err != nil {
		return fmt.Errorf("flush accounts: %w", err)
	}
	return nil
}

func (aw *AccountWriter) writeHeader() error {
	if aw.headerWritten {
		return nil
	}
	if err := aw.w.Write(accountHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	aw.headerWritten = true
	return nil
}

// FormatAmount rounds to four places and keeps at least one fractional digit,
// so 7 renders as "7.0" and 1.50 as "1.5".
func FormatAmount(d decimal.Decimal) string {
	s := d.Round(amountPlaces).String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
