package domain

import (
	"iter"
	"slices"
)

// Observer receives every routed record together with the outcome of
// applying it.
type Observer interface {
	Observe(tx Transaction, outcome Outcome)
}

type ObserverFunc func(tx Transaction, outcome Outcome)

func (f ObserverFunc) Observe(tx Transaction, outcome Outcome) {
	f(tx, outcome)
}

type RegistryOption func(*Registry)

// WithObserver adds o to the observers notified after each Route.
func WithObserver(o Observer) RegistryOption {
	return func(r *Registry) {
		if o != nil {
			r.observers = append(r.observers, o)
		}
	}
}

// Registry owns one Ledger per client and routes records to them.
// It is not safe for concurrent use.
type Registry struct {
	ledgers   map[ClientID]*Ledger
	observers []Observer
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		ledgers: make(map[ClientID]*Ledger),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Route applies tx to the ledger of tx.Client, creating it first if needed.
func (r *Registry) Route(tx Transaction) {
	ledger, ok := r.ledgers[tx.Client]
	if !ok {
		ledger = NewLedger(tx.Client)
		r.ledgers[tx.Client] = ledger
	}

	outcome := ledger.apply(tx)
	for _, o := range r.observers {
		o.Observe(tx, outcome)
	}
}

func (r *Registry) Len() int {
	return len(r.ledgers)
}

func (r *Registry) Account(client ClientID) (AccountSummary, bool) {
	ledger, ok := r.ledgers[client]
	if !ok {
		return AccountSummary{}, false
	}
	return ledger.Summary(), true
}

// Snapshot yields the summary of every ledger in ascending client order.
// Summaries are taken as the sequence is consumed.
func (r *Registry) Snapshot() iter.Seq[AccountSummary] {
	return func(yield func(AccountSummary) bool) {
		clients := make([]ClientID, 0, len(r.ledgers))
		for client := range r.ledgers {
			clients = append(clients, client)
		}
		slices.Sort(clients)

		for _, client := range clients {
			if !yield(r.ledgers[client].Summary()) {
				return
			}
		}
	}
}
