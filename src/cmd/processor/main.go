package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/api-sage/client-ledger-processor/src/internal/adapter/repository/postgres"
	"github.com/api-sage/client-ledger-processor/src/internal/config"
	"github.com/api-sage/client-ledger-processor/src/internal/domain"
	"github.com/api-sage/client-ledger-processor/src/internal/logger"
	"github.com/api-sage/client-ledger-processor/src/internal/metrics"
	"github.com/api-sage/client-ledger-processor/src/internal/usecase/services"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "No filename given")
		os.Exit(1)
	}

	if err := run(os.Args[1]); err != nil {
		fmt.Fprintf(os.Stderr, "ledger processor: %v\n", err)
		os.Exit(1)
	}
}

func run(inputPath string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.Configure(cfg.LogLevel, os.Stderr); err != nil {
		return fmt.Errorf("configure logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("ledger processor starting", logger.Fields{
		"inputPath":         inputPath,
		"outputPath":        config.OutputPath,
		"exportDatabaseDsn": cfg.ExportDatabaseDSN,
		"metricsTextfile":   cfg.MetricsTextfile,
	})

	var snapshotRepo domain.AccountSnapshotRepository
	if cfg.ExportEnabled() {
		db, err := openExportDatabase(ctx, cfg)
		if err != nil {
			logger.Error("ledger processor export database setup failed", err, nil)
			return err
		}
		defer db.Close()
		snapshotRepo = postgres.NewAccountSnapshotRepository(db)
	}

	m := metrics.NewLedgerMetrics()
	svc := services.NewLedgerService(snapshotRepo, m)

	report, err := svc.ProcessFile(ctx, inputPath, config.OutputPath)
	if err != nil {
		logger.Error("ledger processor run failed", err, logger.Fields{"inputPath": inputPath})
		return err
	}

	if cfg.MetricsTextfile != "" {
		if err := m.WriteToTextfile(cfg.MetricsTextfile); err != nil {
			logger.Error("ledger processor metrics write failed", err, logger.Fields{"path": cfg.MetricsTextfile})
			return err
		}
	}

	logger.Info("ledger processor finished", logger.Fields{
		"runId":    report.Run.ID,
		"accounts": report.Run.Accounts,
		"exported": report.Exported,
	})
	return nil
}

func openExportDatabase(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	db, err := postgres.Open(ctx, cfg.ExportDatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("open export database: %w", err)
	}

	applied, err := postgres.RunMigrations(ctx, db, cfg.MigrationsDir)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	if len(applied) > 0 {
		logger.Info("ledger processor migrations applied", logger.Fields{"versions": applied})
	}

	return db, nil
}
