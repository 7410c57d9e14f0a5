package domain

import "github.com/shopspring/decimal"

// AccountSummary is the externally visible state of one client ledger.
type AccountSummary struct {
	Client    ClientID
	Available decimal.Decimal
	Held      decimal.Decimal
	Total     decimal.Decimal
	Locked    bool
}
