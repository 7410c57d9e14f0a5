package domain

import "context"

type AccountSnapshotRepository interface {
	SaveRun(ctx context.Context, run ProcessingRun, accounts []AccountSummary) error
	GetRun(ctx context.Context, runID string) (ProcessingRun, error)
	ListRunAccounts(ctx context.Context, runID string) ([]AccountSummary, error)
}
