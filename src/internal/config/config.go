package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/api-sage/client-ledger-processor/src/internal/logger"
	"github.com/joho/godotenv"
)

const defaultLogLevel = "info"

// OutputPath is where the account summaries of a run are written.
const OutputPath = "./accounts.csv"

type Config struct {
	LogLevel          string
	ExportDatabaseDSN string
	MigrationsDir     string
	MetricsTextfile   string
}

// ExportEnabled reports whether run snapshots should be written to Postgres.
func (c Config) ExportEnabled() bool {
	return c.ExportDatabaseDSN != ""
}

func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	logLevel := strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL")))
	if logLevel == "" {
		logLevel = defaultLogLevel
	}
	if _, err := logger.ParseLevel(logLevel); err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	migrationsDir := strings.TrimSpace(os.Getenv("MIGRATIONS_DIR"))
	if migrationsDir == "" {
		migrationsDir = filepath.Join("src", "migrations")
	}

	dsn := strings.TrimSpace(os.Getenv("EXPORT_DATABASE_DSN"))
	if dsn != "" {
		dsn = normalizeConnectionString(dsn)
	}

	return Config{
		LogLevel:          logLevel,
		ExportDatabaseDSN: dsn,
		MigrationsDir:     migrationsDir,
		MetricsTextfile:   strings.TrimSpace(os.Getenv("METRICS_TEXTFILE")),
	}, nil
}

// pqKeys maps semicolon style connection keys to lib/pq parameter names.
var pqKeys = map[string]string{
	"host":            "host",
	"server":          "host",
	"port":            "port",
	"database":        "dbname",
	"username":        "user",
	"user id":         "user",
	"password":        "password",
	"timeout":         "connect_timeout",
	"connect timeout": "connect_timeout",
	"sslmode":         "sslmode",
}

// normalizeConnectionString turns the semicolon separated Host=..;Port=..
// form into a lib/pq key/value DSN, defaulting sslmode to disable. URL and
// key/value DSNs are returned unchanged.
func normalizeConnectionString(raw string) string {
	if strings.HasPrefix(raw, "postgres://") || strings.HasPrefix(raw, "postgresql://") || !strings.Contains(raw, ";") {
		return raw
	}

	var params []string
	sslMode := false
	for _, part := range strings.Split(raw, ";") {
		key, val, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		val = strings.TrimSpace(val)

		switch {
		case key == "commandtimeout" || key == "command timeout":
			params = append(params, "statement_timeout="+val+"s")
		case pqKeys[key] != "":
			params = append(params, pqKeys[key]+"="+val)
			sslMode = sslMode || key == "sslmode"
		case key != "":
			params = append(params, key+"="+val)
		}
	}

	if len(params) == 0 {
		return raw
	}
	if !sslMode {
		params = append(params, "sslmode=disable")
	}
	return strings.Join(params, " ")
}
