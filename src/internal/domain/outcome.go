package domain

// Outcome describes what a single apply did to a ledger. It never leaves the
// core except through a registry Observer.
type Outcome string

const (
	OutcomeApplied            Outcome = "applied"
	OutcomeAccountLocked      Outcome = "account_locked"
	OutcomeInsufficientFunds  Outcome = "insufficient_funds"
	OutcomeUnknownTransaction Outcome = "unknown_transaction"
	OutcomeNoOpenDispute      Outcome = "no_open_dispute"
	OutcomeDisputeResolved    Outcome = "dispute_resolved"
	OutcomeUnsupportedKind    Outcome = "unsupported_kind"
)

func (o Outcome) Applied() bool {
	return o == OutcomeApplied
}
