package domain

import "github.com/shopspring/decimal"

// Ledger tracks the balances and dispute state of a single client.
//
// Invalid records are absorbed without effect. Once a chargeback locks the
// ledger every later record is ignored.
type Ledger struct {
	client    ClientID
	available decimal.Decimal
	held      decimal.Decimal
	total     decimal.Decimal
	locked    bool

	posted           map[TransactionID]Transaction
	openDisputes     map[TransactionID]Transaction
	resolvedDisputes map[TransactionID]Transaction
}

func NewLedger(client ClientID) *Ledger {
	return &Ledger{
		client:           client,
		available:        decimal.Zero,
		held:             decimal.Zero,
		total:            decimal.Zero,
		posted:           make(map[TransactionID]Transaction),
		openDisputes:     make(map[TransactionID]Transaction),
		resolvedDisputes: make(map[TransactionID]Transaction),
	}
}

func (l *Ledger) Client() ClientID {
	return l.client
}

func (l *Ledger) Locked() bool {
	return l.locked
}

// Apply applies tx to the ledger or drops it.
func (l *Ledger) Apply(tx Transaction) {
	l.apply(tx)
}

func (l *Ledger) apply(tx Transaction) Outcome {
	if l.locked {
		return OutcomeAccountLocked
	}

	switch tx.Kind {
	case TransactionKindDeposit:
		return l.deposit(tx)
	case TransactionKindWithdrawal:
		return l.withdraw(tx)
	case TransactionKindDispute:
		return l.dispute(tx)
	case TransactionKindResolve:
		return l.resolve(tx)
	case TransactionKindChargeback:
		return l.chargeback(tx)
	default:
		return OutcomeUnsupportedKind
	}
}

func (l *Ledger) deposit(tx Transaction) Outcome {
	amount := tx.AmountOrZero()
	l.available = l.available.Add(amount)
	l.total = l.total.Add(amount)
	l.posted[tx.ID] = tx

	return OutcomeApplied
}

func (l *Ledger) withdraw(tx Transaction) Outcome {
	amount := tx.AmountOrZero()
	if amount.GreaterThan(l.available) {
		return OutcomeInsufficientFunds
	}

	l.available = l.available.Sub(amount)
	l.total = l.total.Sub(amount)
	l.posted[tx.ID] = tx

	return OutcomeApplied
}

// dispute holds the referenced amount. An id that is already under dispute is
// held a second time.
func (l *Ledger) dispute(tx Transaction) Outcome {
	original, ok := l.posted[tx.ID]
	if !ok {
		return OutcomeUnknownTransaction
	}

	amount := original.AmountOrZero()
	l.held = l.held.Add(amount)
	l.available = l.available.Sub(amount)
	l.openDisputes[tx.ID] = original

	return OutcomeApplied
}

// resolve releases a hold. The id stays in openDisputes, so a repeated
// resolve releases the amount again.
func (l *Ledger) resolve(tx Transaction) Outcome {
	if _, ok := l.openDisputes[tx.ID]; !ok {
		return OutcomeNoOpenDispute
	}

	original, ok := l.posted[tx.ID]
	if !ok {
		return OutcomeUnknownTransaction
	}

	amount := original.AmountOrZero()
	l.held = l.held.Sub(amount)
	l.available = l.available.Add(amount)
	l.resolvedDisputes[tx.ID] = original

	return OutcomeApplied
}

// chargeback reverses a disputed record and locks the ledger. Total is left
// untouched, so available+held no longer adds up to it afterwards.
func (l *Ledger) chargeback(tx Transaction) Outcome {
	if _, ok := l.openDisputes[tx.ID]; !ok {
		return OutcomeNoOpenDispute
	}
	if _, ok := l.resolvedDisputes[tx.ID]; ok {
		return OutcomeDisputeResolved
	}

	original, ok := l.posted[tx.ID]
	if !ok {
		return OutcomeUnknownTransaction
	}

	amount := original.AmountOrZero()
	l.locked = true
	l.held = l.held.Sub(amount)
	l.available = l.available.Sub(amount)

	return OutcomeApplied
}

func (l *Ledger) Summary() AccountSummary {
	return AccountSummary{
		Client:    l.client,
		Available: l.available,
		Held:      l.held,
		Total:     l.total,
		Locked:    l.locked,
	}
}
