package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type TransactionKind string

const (
	TransactionKindDeposit    TransactionKind = "deposit"
	TransactionKindWithdrawal TransactionKind = "withdrawal"
	TransactionKindDispute    TransactionKind = "dispute"
	TransactionKindResolve    TransactionKind = "resolve"
	TransactionKindChargeback TransactionKind = "chargeback"
)

// TransactionKinds lists every kind in wire-token order.
var TransactionKinds = []TransactionKind{
	TransactionKindChargeback,
	TransactionKindDeposit,
	TransactionKindDispute,
	TransactionKindResolve,
	TransactionKindWithdrawal,
}

func ParseTransactionKind(raw string) (TransactionKind, error) {
	kind := TransactionKind(strings.TrimSpace(raw))
	switch kind {
	case TransactionKindDeposit,
		TransactionKindWithdrawal,
		TransactionKindDispute,
		TransactionKindResolve,
		TransactionKindChargeback:
		return kind, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTransactionKind, raw)
	}
}

// CarriesAmount reports whether records of this kind move their own amount.
// Dispute, resolve and chargeback reuse the amount of the referenced record.
func (k TransactionKind) CarriesAmount() bool {
	return k == TransactionKindDeposit || k == TransactionKindWithdrawal
}

type ClientID uint16

type TransactionID uint32

type Transaction struct {
	Kind   TransactionKind
	Client ClientID
	ID     TransactionID
	Amount decimal.NullDecimal
}

// AmountOrZero returns the amount, or zero when the record has none.
func (t Transaction) AmountOrZero() decimal.Decimal {
	if !t.Amount.Valid {
		return decimal.Zero
	}
	return t.Amount.Decimal
}
