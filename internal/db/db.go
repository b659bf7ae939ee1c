package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/tristmeister/ems-jade2/internal/config"
)

const memoryPath = ":memory:"

// Open connects to the configured database and pings it. With DB_LOG_QUERIES
// every statement is logged at debug level through logger.
func Open(ctx context.Context, cfg config.Config, logger *slog.Logger) (*sql.DB, error) {
	dsn, err := buildDSN(cfg)
	if err != nil {
		return nil, err
	}

	var db *sql.DB
	if cfg.DBLogQueries {
		if cfg.DBDriver != "sqlite3" {
			return nil, fmt.Errorf("DB_LOG_QUERIES is only supported for sqlite3, not %q", cfg.DBDriver)
		}
		db = sql.OpenDB(NewLoggingConnector(dsn, logger))
	} else {
		db, err = sql.Open(cfg.DBDriver, dsn)
		if err != nil {
			return nil, fmt.Errorf("db open: %w", err)
		}
	}

	if cfg.DBMaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	idle := cfg.DBMaxIdleConns
	if isMemory(cfg) && idle < 1 {
		// A shared in-memory database is dropped with its last connection.
		idle = 1
	}
	if idle >= 0 {
		db.SetMaxIdleConns(idle)
	}
	if cfg.DBConnMaxLifetime > 0 && !isMemory(cfg) {
		db.SetConnMaxLifetime(cfg.DBConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func Close(db *sql.DB) error {
	if db == nil {
		return nil
	}
	return db.Close()
}

func isMemory(cfg config.Config) bool {
	return cfg.DBDSN == "" && cfg.SQLitePath == memoryPath
}

func buildDSN(cfg config.Config) (string, error) {
	if cfg.DBDSN != "" {
		return cfg.DBDSN, nil
	}

	params := []string{
		"_foreign_keys=on",
		"_busy_timeout=5000",
	}
	if isMemory(cfg) {
		// Named shared-cache database so every pooled connection sees the same data.
		return "file:ems-jade?mode=memory&cache=shared&" + strings.Join(params, "&"), nil
	}

	path := cfg.SQLitePath
	if dir := filepath.Dir(strings.TrimPrefix(path, "file:")); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	params = append(params, "_journal_mode=WAL")

	if strings.HasPrefix(path, "file:") {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return path + sep + strings.Join(params, "&"), nil
	}
	return fmt.Sprintf("file:%s?%s", path, strings.Join(params, "&")), nil
}
