package csvio_test

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/api-sage/client-ledger-processor/src/internal/adapter/csvio"
	"github.com/api-sage/client-ledger-processor/src/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, input string) ([]domain.Transaction, error) {
	t.Helper()

	tr, err := csvio.NewTransactionReader(strings.NewReader(input))
	if err != nil {
		return nil, err
	}

	var out []domain.Transaction
	for {
		tx, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, tx)
	}
}

func TestTransactionReaderDecodesRows(t *testing.T) {
	input := "type, client, tx, amount\n" +
		"deposit, 1, 1, 1.5\n" +
		"withdrawal, 2, 2, 0.2500\n" +
		"dispute, 1, 1,\n" +
		"resolve, 1, 1\n" +
		"chargeback, 65535, 4294967295,\n"

	txs, err := readAll(t, input)
	require.NoError(t, err)
	require.Len(t, txs, 5)

	assert.Equal(t, domain.TransactionKindDeposit, txs[0].Kind)
	assert.Equal(t, domain.ClientID(1), txs[0].Client)
	assert.Equal(t, domain.TransactionID(1), txs[0].ID)
	assert.True(t, txs[0].Amount.Valid)
	assert.Equal(t, "1.5", txs[0].Amount.Decimal.String())

	assert.Equal(t, "0.25", txs[1].Amount.Decimal.String())

	assert.Equal(t, domain.TransactionKindDispute, txs[2].Kind)
	assert.False(t, txs[2].Amount.Valid)
	assert.False(t, txs[3].Amount.Valid)

	assert.Equal(t, domain.ClientID(65535), txs[4].Client)
	assert.Equal(t, domain.TransactionID(4294967295), txs[4].ID)
}

func TestTransactionReaderColumnOrderAndHeaderCase(t *testing.T) {
	input := "Amount,TX,Client,Type\n" +
		"3.0,7,2,deposit\n"

	txs, err := readAll(t, input)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, domain.TransactionKindDeposit, txs[0].Kind)
	assert.Equal(t, domain.ClientID(2), txs[0].Client)
	assert.Equal(t, domain.TransactionID(7), txs[0].ID)
	assert.Equal(t, "3", txs[0].Amount.Decimal.String())
}

func TestTransactionReaderWithoutAmountColumn(t *testing.T) {
	txs, err := readAll(t, "type,client,tx\ndispute,1,3\n")
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.False(t, txs[0].Amount.Valid)
}

func TestTransactionReaderSkipsBlankRows(t *testing.T) {
	tr, err := csvio.NewTransactionReader(strings.NewReader("type,client,tx,amount\n,,,\ndeposit,1,1,1\n"))
	require.NoError(t, err)

	tx, err := tr.Next()
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionKindDeposit, tx.Kind)
	assert.Equal(t, 3, tr.Line())
	assert.Equal(t, 1, tr.Rows())

	_, err = tr.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestTransactionReaderMissingColumn(t *testing.T) {
	_, err := csvio.NewTransactionReader(strings.NewReader("type,client,amount\ndeposit,1,1\n"))
	assert.ErrorIs(t, err, csvio.ErrMissingColumn)

	_, err = csvio.NewTransactionReader(strings.NewReader(""))
	assert.ErrorIs(t, err, csvio.ErrMissingColumn)
}

func TestTransactionReaderMalformedRows(t *testing.T) {
	cases := map[string]string{
		"unknown type":     "transfer,1,1,1.0",
		"upper case type":  "DEPOSIT,1,1,1.0",
		"title case type":  "Deposit,1,1,1.0",
		"missing client":   "deposit,,1,1.0",
		"client not int":   "deposit,x,1,1.0",
		"client too large": "deposit,65536,1,1.0",
		"tx too large":     "deposit,1,4294967296,1.0",
		"bad amount":       "deposit,1,1,abc",
		"negative amount":  "deposit,1,1,-2.0",
	}

	for name, row := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := readAll(t, "type,client,tx,amount\ndeposit,1,9,1.0\n"+row+"\n")
			require.Error(t, err)
			assert.ErrorIs(t, err, csvio.ErrMalformedRow)
			assert.Contains(t, err.Error(), "line 3")
		})
	}
}

func TestTransactionRowValidateMessages(t *testing.T) {
	err := csvio.TransactionRow{Type: "wire", Client: "", Tx: "1", Amount: "1.0"}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "type must be one of")
	assert.Contains(t, err.Error(), "client is required")

	assert.NoError(t, csvio.TransactionRow{Type: "resolve", Client: "1", Tx: "2"}.Validate())
}

func TestTransactionReaderAcceptsDecimalForms(t *testing.T) {
	txs, err := readAll(t, "type,client,tx,amount\ndeposit,1,1,1e2\ndeposit,1,2,.5\n")
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "100", txs[0].Amount.Decimal.String())
	assert.Equal(t, "0.5", txs[1].Amount.Decimal.String())
}

func TestTransactionReaderDropsAmountOfReferencingKinds(t *testing.T) {
	txs, err := readAll(t, "type,client,tx,amount\ndispute,1,1,5.0\nchargeback,1,1,2.0\n")
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.False(t, txs[0].Amount.Valid)
	assert.False(t, txs[1].Amount.Valid)
}
