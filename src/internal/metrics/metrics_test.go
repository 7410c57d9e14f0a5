package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/api-sage/client-ledger-processor/src/internal/domain"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveCountsByKindAndOutcome(t *testing.T) {
	m := NewLedgerMetrics()

	deposit := domain.Transaction{Kind: domain.TransactionKindDeposit, Client: 1, ID: 1}
	m.Observe(deposit, domain.OutcomeApplied)
	m.Observe(deposit, domain.OutcomeApplied)
	m.Observe(domain.Transaction{Kind: domain.TransactionKindChargeback, Client: 1, ID: 1}, domain.OutcomeNoOpenDispute)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.transactions.WithLabelValues("deposit", "applied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transactions.WithLabelValues("chargeback", "no_open_dispute")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.rowsRead))
}

func TestRecordRowsReadAccumulates(t *testing.T) {
	m := NewLedgerMetrics()
	m.RecordRowsRead(3)
	m.RecordRowsRead(2)

	assert.Equal(t, 5.0, testutil.ToFloat64(m.rowsRead))
}

func TestRecordAccounts(t *testing.T) {
	m := NewLedgerMetrics()
	m.RecordAccounts(4, 1)

	assert.Equal(t, 4.0, testutil.ToFloat64(m.accounts))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.lockedAccounts))
}

func TestRegistriesAreIndependent(t *testing.T) {
	a := NewLedgerMetrics()
	b := NewLedgerMetrics()
	a.RecordAccounts(2, 0)

	assert.Equal(t, 0.0, testutil.ToFloat64(b.accounts))

	families, err := a.registry.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestWriteToTextfile(t *testing.T) {
	m := NewLedgerMetrics()
	m.Observe(domain.Transaction{Kind: domain.TransactionKindWithdrawal}, domain.OutcomeInsufficientFunds)
	m.RecordAccounts(1, 0)
	m.RecordRowsRead(1)

	path := filepath.Join(t.TempDir(), "ledger.prom")
	require.NoError(t, m.WriteToTextfile(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(raw)
	assert.Contains(t, out, `ledger_transactions_total{kind="withdrawal",outcome="insufficient_funds"} 1`)
	assert.Contains(t, out, "ledger_accounts 1")
	assert.Contains(t, out, "ledger_rows_read_total 1")
}
