// Package metrics records ledger processing counters on a private Prometheus
// registry.
//
// LedgerMetrics implements domain.Observer, so it can be handed straight to
// domain.WithObserver:
//
//	m := metrics.NewLedgerMetrics()
//	registry := domain.NewRegistry(domain.WithObserver(m))
//	...
//	m.WriteToTextfile("/var/lib/node_exporter/ledger.prom")
package metrics

import (
	"fmt"

	"github.com/api-sage/client-ledger-processor/src/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ledger"

type LedgerMetrics struct {
	registry       *prometheus.Registry
	transactions   *prometheus.CounterVec
	rowsRead       prometheus.Counter
	accounts       prometheus.Gauge
	lockedAccounts prometheus.Gauge
}

var _ domain.Observer = (*LedgerMetrics)(nil)

func NewLedgerMetrics() *LedgerMetrics {
	m := &LedgerMetrics{
		registry: prometheus.NewRegistry(),
		transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_total",
			Help:      "Transactions routed to client ledgers, by kind and outcome.",
		}, []string{"kind", "outcome"}),
		rowsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_read_total",
			Help:      "Input rows decoded into transactions.",
		}),
		accounts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "accounts",
			Help:      "Client accounts in the last snapshot.",
		}),
		lockedAccounts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "locked_accounts",
			Help:      "Locked client accounts in the last snapshot.",
		}),
	}

	m.registry.MustRegister(m.transactions, m.rowsRead, m.accounts, m.lockedAccounts)
	return m
}

// Observe counts one routed transaction.
func (m *LedgerMetrics) Observe(tx domain.Transaction, outcome domain.Outcome) {
	m.transactions.WithLabelValues(string(tx.Kind), string(outcome)).Inc()
}

// RecordRowsRead adds n decoded input rows. Blank rows are not counted.
func (m *LedgerMetrics) RecordRowsRead(n int) {
	m.rowsRead.Add(float64(n))
}

func (m *LedgerMetrics) RecordAccounts(total, locked int) {
	m.accounts.Set(float64(total))
	m.lockedAccounts.Set(float64(locked))
}

func (m *LedgerMetrics) WriteToTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
