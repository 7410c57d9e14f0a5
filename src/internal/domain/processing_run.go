package domain

import "time"

// ProcessingRun describes one pass of the processor over an input file.
type ProcessingRun struct {
	ID          string
	InputDigest string
	RowsRead    int
	Accounts    int
	CreatedAt   time.Time
}

// RunReport summarizes a finished run for the caller.
type RunReport struct {
	Run            ProcessingRun
	LockedAccounts int
	Rejected       int
	Exported       bool
}
