package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/api-sage/client-ledger-processor/src/internal/domain"
	"github.com/shopspring/decimal"
)

var ErrMissingColumn = errors.New("Missing required column")
var ErrMalformedRow = errors.New("Malformed transaction row")

const (
	columnType   = "type"
	columnClient = "client"
	columnTx     = "tx"
	columnAmount = "amount"
)

// TransactionReader streams transactions out of a CSV source with a header
// row naming the type, client, tx and (optionally) amount columns.
type TransactionReader struct {
	r       *csv.Reader
	columns map[string]int
	line    int
	rows    int
}

func NewTransactionReader(src io.Reader) (*TransactionReader, error) {
	r := csv.NewReader(src)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read header: %w: empty input", ErrMissingColumn)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := columns[key]; !dup {
			columns[key] = i
		}
	}

	for _, required := range []string{columnType, columnClient, columnTx} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	return &TransactionReader{r: r, columns: columns, line: 1}, nil
}

// Line returns the 1-based line number of the last row read.
func (tr *TransactionReader) Line() int {
	return tr.line
}

// Rows returns the number of data rows decoded so far.
func (tr *TransactionReader) Rows() int {
	return tr.rows
}

// Next decodes the next row. It returns io.EOF once the input is exhausted.
func (tr *TransactionReader) Next() (domain.Transaction, error) {
	for {
		record, err := tr.r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return domain.Transaction{}, io.EOF
			}
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				tr.line = parseErr.Line
			}
			return domain.Transaction{}, fmt.Errorf("%w: line %d: %w", ErrMalformedRow, tr.line, err)
		}

		line, _ := tr.r.FieldPos(0)
		tr.line = line

		if isBlank(record) {
			continue
		}

		tx, err := tr.decode(record)
		if err != nil {
			return domain.Transaction{}, fmt.Errorf("%w: line %d: %w", ErrMalformedRow, tr.line, err)
		}

		tr.rows++
		return tx, nil
	}
}

func (tr *TransactionReader) decode(record []string) (domain.Transaction, error) {
	row := TransactionRow{
		Type:   tr.field(record, columnType),
		Client: tr.field(record, columnClient),
		Tx:     tr.field(record, columnTx),
		Amount: tr.field(record, columnAmount),
	}
	if err := row.Validate(); err != nil {
		return domain.Transaction{}, err
	}

	kind, err := domain.ParseTransactionKind(row.Type)
	if err != nil {
		return domain.Transaction{}, err
	}

	client, err := strconv.ParseUint(row.Client, 10, 16)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("parse client %q: %w", row.Client, err)
	}

	id, err := strconv.ParseUint(row.Tx, 10, 32)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("parse tx %q: %w", row.Tx, err)
	}

	amount, err := parseAmount(row.Amount)
	if err != nil {
		return domain.Transaction{}, err
	}
	if !kind.CarriesAmount() {
		amount = decimal.NullDecimal{}
	}

	return domain.Transaction{
		Kind:   kind,
		Client: domain.ClientID(client),
		ID:     domain.TransactionID(id),
		Amount: amount,
	}, nil
}

func (tr *TransactionReader) field(record []string, column string) string {
	idx, ok := tr.columns[column]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func parseAmount(raw string) (decimal.NullDecimal, error) {
	if raw == "" {
		return decimal.NullDecimal{}, nil
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("parse amount %q: %w", raw, err)
	}
	if amount.IsNegative() {
		return decimal.NullDecimal{}, fmt.Errorf("amount %q cannot be negative", raw)
	}

	return decimal.NewNullDecimal(amount), nil
}

func isBlank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
