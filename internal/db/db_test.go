package db

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tristmeister/ems-jade2/internal/config"
)

func TestBuildDSN(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name      string
		cfg       config.Config
		wantStart string
		wantParts []string
	}{
		{
			name:      "explicit dsn wins",
			cfg:       config.Config{DBDSN: "file:custom.db?mode=ro", SQLitePath: ":memory:"},
			wantStart: "file:custom.db?mode=ro",
		},
		{
			name:      "memory uses shared cache",
			cfg:       config.Config{SQLitePath: ":memory:"},
			wantStart: "file:ems-jade?mode=memory&cache=shared",
			wantParts: []string{"_foreign_keys=on"},
		},
		{
			name:      "plain path",
			cfg:       config.Config{SQLitePath: filepath.Join(dir, "sub", "app.db")},
			wantStart: "file:" + filepath.Join(dir, "sub", "app.db") + "?",
			wantParts: []string{"_journal_mode=WAL", "_busy_timeout=5000"},
		},
		{
			name:      "file prefix with query",
			cfg:       config.Config{SQLitePath: "file:" + filepath.Join(dir, "x.db") + "?cache=private"},
			wantStart: "file:" + filepath.Join(dir, "x.db") + "?cache=private&",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildDSN(tt.cfg)
			if err != nil {
				t.Fatalf("buildDSN() = %v", err)
			}
			if !strings.HasPrefix(got, tt.wantStart) {
				t.Errorf("dsn = %q; want prefix %q", got, tt.wantStart)
			}
			for _, p := range tt.wantParts {
				if !strings.Contains(got, p) {
					t.Errorf("dsn = %q; missing %q", got, p)
				}
			}
		})
	}
}

func memoryConfig() config.Config {
	return config.Config{
		DBDriver:       "sqlite3",
		SQLitePath:     ":memory:",
		DBMaxOpenConns: 2,
		DBMaxIdleConns: 0,
	}
}

func TestOpen_memorySharedAcrossConnections(t *testing.T) {
	ctx := context.Background()
	conn, err := Open(ctx, memoryConfig(), nil)
	if err != nil {
		t.Fatalf("Open() = %v", err)
	}
	t.Cleanup(func() { _ = Close(conn) })

	if _, err := conn.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS shared_check (id INTEGER)`); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := conn.ExecContext(ctx, `DELETE FROM shared_check`); err != nil {
		t.Fatalf("delete: %v", err)
	}

	// Hold one connection open in a transaction and read through another.
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer func() { _ = tx.Rollback() }()
	var n int
	if err := conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM shared_check`).Scan(&n); err != nil {
		t.Fatalf("second connection does not see table: %v", err)
	}
}

func TestOpen_fileDatabase(t *testing.T) {
	cfg := memoryConfig()
	cfg.SQLitePath = filepath.Join(t.TempDir(), "nested", "ems.db")

	conn, err := Open(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Open() = %v", err)
	}
	defer func() { _ = Close(conn) }()

	var one int
	if err := conn.QueryRow(`SELECT 1`).Scan(&one); err != nil || one != 1 {
		t.Fatalf("SELECT 1 = %d, %v", one, err)
	}
}

func TestOpen_unknownDriver(t *testing.T) {
	cfg := memoryConfig()
	cfg.DBDriver = "nope"
	if _, err := Open(context.Background(), cfg, nil); err == nil {
		t.Fatal("Open() with unknown driver = nil; want error")
	}
}

func TestOpen_queryLoggingRequiresSQLite(t *testing.T) {
	cfg := memoryConfig()
	cfg.DBDriver = "postgres"
	cfg.DBLogQueries = true
	if _, err := Open(context.Background(), cfg, nil); err == nil {
		t.Fatal("Open() = nil; want error for query logging on another driver")
	}
}

func TestClose_nil(t *testing.T) {
	if err := Close(nil); err != nil {
		t.Errorf("Close(nil) = %v", err)
	}
}
