package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/api-sage/client-ledger-processor/src/internal/commons"
	"github.com/api-sage/client-ledger-processor/src/internal/domain"
	"github.com/api-sage/client-ledger-processor/src/internal/logger"
	"github.com/lib/pq"
)

type AccountSnapshotRepository struct {
	db *sql.DB
}

var _ domain.AccountSnapshotRepository = (*AccountSnapshotRepository)(nil)

func NewAccountSnapshotRepository(db *sql.DB) *AccountSnapshotRepository {
	return &AccountSnapshotRepository{db: db}
}

// SaveRun stores the run and its account summaries in one transaction.
// Accounts are bulk loaded with COPY.
func (r *AccountSnapshotRepository) SaveRun(ctx context.Context, run domain.ProcessingRun, accounts []domain.AccountSummary) error {
	logger.Info("account snapshot repository save run", logger.Fields{
		"runId":       run.ID,
		"inputDigest": run.InputDigest,
		"accounts":    len(accounts),
	})

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save run: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const insertRun = `
INSERT INTO processing_runs (
	run_id,
	input_digest,
	rows_read,
	accounts,
	created_at
) VALUES ($1, $2, $3, $4, $5)`

	if _, err := tx.ExecContext(ctx, insertRun, run.ID, run.InputDigest, run.RowsRead, run.Accounts, run.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			logger.Info("account snapshot repository duplicate run", logger.Fields{"runId": run.ID})
			return domain.ErrDuplicateRun
		}
		logger.Error("account snapshot repository insert run failed", err, logger.Fields{"runId": run.ID})
		return fmt.Errorf("insert processing run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("client_accounts", "run_id", "client", "available", "held", "total", "locked"))
	if err != nil {
		return fmt.Errorf("prepare account copy: %w", err)
	}

	for _, account := range accounts {
		if _, err := stmt.ExecContext(
			ctx,
			run.ID,
			int(account.Client),
			account.Available,
			account.Held,
			account.Total,
			account.Locked,
		); err != nil {
			_ = stmt.Close()
			logger.Error("account snapshot repository copy account failed", err, logger.Fields{
				"runId":  run.ID,
				"client": account.Client,
			})
			return fmt.Errorf("copy account %d: %w", account.Client, err)
		}
	}

	if _, err := stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()
		return fmt.Errorf("flush account copy: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return fmt.Errorf("close account copy: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save run: %w", err)
	}

	logger.Info("account snapshot repository save run success", logger.Fields{"runId": run.ID})
	return nil
}

func (r *AccountSnapshotRepository) GetRun(ctx context.Context, runID string) (domain.ProcessingRun, error) {
	const query = `
SELECT run_id, input_digest, rows_read, accounts, created_at
FROM processing_runs
WHERE run_id = $1`

	var run domain.ProcessingRun
	if err := r.db.QueryRowContext(ctx, query, runID).Scan(
		&run.ID,
		&run.InputDigest,
		&run.RowsRead,
		&run.Accounts,
		&run.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ProcessingRun{}, commons.ErrRecordNotFound
		}
		return domain.ProcessingRun{}, fmt.Errorf("get processing run: %w", err)
	}

	return run, nil
}

func (r *AccountSnapshotRepository) ListRunAccounts(ctx context.Context, runID string) ([]domain.AccountSummary, error) {
	const query = `
SELECT client, available, held, total, locked
FROM client_accounts
WHERE run_id = $1
ORDER BY client`

	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("list run accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.AccountSummary
	for rows.Next() {
		var (
			account domain.AccountSummary
			client  int
		)
		if err := rows.Scan(&client, &account.Available, &account.Held, &account.Total, &account.Locked); err != nil {
			return nil, fmt.Errorf("scan run account: %w", err)
		}
		account.Client = domain.ClientID(client)
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run accounts: %w", err)
	}

	return accounts, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == "23505"
	}
	return false
}
