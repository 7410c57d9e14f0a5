package services

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/api-sage/client-ledger-processor/src/internal/adapter/csvio"
	"github.com/api-sage/client-ledger-processor/src/internal/domain"
	"github.com/api-sage/client-ledger-processor/src/internal/logger"
	"github.com/api-sage/client-ledger-processor/src/internal/metrics"
	"github.com/api-sage/client-ledger-processor/src/internal/usecase/service_interfaces"
	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

type LedgerService struct {
	snapshotRepo domain.AccountSnapshotRepository
	metrics      *metrics.LedgerMetrics
	now          func() time.Time
}

var _ service_interfaces.LedgerService = (*LedgerService)(nil)

// NewLedgerService builds the run orchestrator. snapshotRepo and m may be nil
// to disable export and metrics.
func NewLedgerService(snapshotRepo domain.AccountSnapshotRepository, m *metrics.LedgerMetrics) *LedgerService {
	return &LedgerService{
		snapshotRepo: snapshotRepo,
		metrics:      m,
		now:          time.Now,
	}
}

func (s *LedgerService) ProcessFile(ctx context.Context, inputPath string, outputPath string) (domain.RunReport, error) {
	in, err := os.Open(inputPath)
	if err != nil {
		logger.Error("ledger service open input failed", err, logger.Fields{"inputPath": inputPath})
		return domain.RunReport{}, fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	// Accounts go to a sibling temp file that only replaces outputPath once
	// the run succeeds, so a failed run leaves the previous output intact.
	out, err := os.CreateTemp(filepath.Dir(outputPath), "."+filepath.Base(outputPath)+".*.tmp")
	if err != nil {
		logger.Error("ledger service create output failed", err, logger.Fields{"outputPath": outputPath})
		return domain.RunReport{}, fmt.Errorf("create output: %w", err)
	}
	tmpPath := out.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}()

	report, err := s.Process(ctx, in, out)
	if closeErr := out.Close(); closeErr != nil && err == nil {
		err = fmt.Errorf("close output: %w", closeErr)
	}
	if err != nil {
		return report, err
	}

	if err := os.Rename(tmpPath, outputPath); err != nil {
		logger.Error("ledger service replace output failed", err, logger.Fields{"outputPath": outputPath})
		return report, fmt.Errorf("replace output: %w", err)
	}

	logger.Info("ledger service wrote accounts", logger.Fields{
		"runId":      report.Run.ID,
		"outputPath": outputPath,
		"accounts":   report.Run.Accounts,
	})
	return report, nil
}

func (s *LedgerService) Process(ctx context.Context, in io.Reader, out io.Writer) (domain.RunReport, error) {
	run := domain.ProcessingRun{
		ID:        uuid.NewString(),
		CreatedAt: s.now().UTC(),
	}
	logger.Info("ledger service run started", logger.Fields{"runId": run.ID})

	hasher, err := blake2b.New256(nil)
	if err != nil {
		return domain.RunReport{}, fmt.Errorf("init input digest: %w", err)
	}

	report := domain.RunReport{Run: run}
	opts := []domain.RegistryOption{
		domain.WithObserver(domain.ObserverFunc(func(tx domain.Transaction, outcome domain.Outcome) {
			if outcome.Applied() {
				return
			}
			report.Rejected++
			logger.Debug("ledger service transaction rejected", logger.Fields{
				"runId":   run.ID,
				"kind":    tx.Kind,
				"client":  tx.Client,
				"tx":      tx.ID,
				"outcome": outcome,
			})
		})),
	}
	if s.metrics != nil {
		opts = append(opts, domain.WithObserver(s.metrics))
	}
	registry := domain.NewRegistry(opts...)

	reader, err := csvio.NewTransactionReader(io.TeeReader(in, hasher))
	if err != nil {
		logger.Error("ledger service read header failed", err, logger.Fields{"runId": run.ID})
		return report, fmt.Errorf("read transactions: %w", err)
	}

	for {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("read transactions: %w", err)
		}

		tx, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			logger.Error("ledger service read row failed", err, logger.Fields{
				"runId": run.ID,
				"line":  reader.Line(),
			})
			return report, fmt.Errorf("read transactions: %w", err)
		}

		registry.Route(tx)
	}

	report.Run.RowsRead = reader.Rows()
	report.Run.InputDigest = hex.EncodeToString(hasher.Sum(nil))

	summaries := make([]domain.AccountSummary, 0, registry.Len())
	writer := csvio.NewAccountWriter(out)
	for summary := range registry.Snapshot() {
		if err := writer.Write(summary); err != nil {
			return report, fmt.Errorf("write accounts: %w", err)
		}
		if summary.Locked {
			report.LockedAccounts++
		}
		summaries = append(summaries, summary)
	}
	if err := writer.Flush(); err != nil {
		return report, fmt.Errorf("write accounts: %w", err)
	}
	if writer.Rows() != registry.Len() {
		return report, fmt.Errorf("write accounts: wrote %d of %d accounts", writer.Rows(), registry.Len())
	}
	report.Run.Accounts = writer.Rows()

	if s.metrics != nil {
		s.metrics.RecordRowsRead(report.Run.RowsRead)
		s.metrics.RecordAccounts(report.Run.Accounts, report.LockedAccounts)
	}

	if s.snapshotRepo != nil {
		if err := s.snapshotRepo.SaveRun(ctx, report.Run, summaries); err != nil {
			logger.Error("ledger service export failed", err, logger.Fields{"runId": run.ID})
			return report, fmt.Errorf("export snapshot: %w", err)
		}
		report.Exported = true
	}

	logger.Info("ledger service run complete", logger.Fields{
		"runId":          report.Run.ID,
		"inputDigest":    report.Run.InputDigest,
		"rowsRead":       report.Run.RowsRead,
		"accounts":       report.Run.Accounts,
		"lockedAccounts": report.LockedAccounts,
		"rejected":       report.Rejected,
		"exported":       report.Exported,
	})

	return report, nil
}
