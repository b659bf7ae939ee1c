// Package migrate applies the embedded SQLite schema. Files are named
// NNNN_name.sql and run once each, in version order, recorded in
// schema_migrations.
package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"regexp"
	"slices"
	"strings"
)

//go:embed sql/*.sql
var embedded embed.FS

const versionTable = "schema_migrations"

var fileRe = regexp.MustCompile(`^(\d{4})_([a-z0-9_]+)\.sql$`)

type step struct {
	version string
	name    string
	body    string
}

// Run applies the embedded migrations that have not run yet.
func Run(ctx context.Context, db *sql.DB) (int, error) {
	sub, err := fs.Sub(embedded, "sql")
	if err != nil {
		return 0, fmt.Errorf("migrations dir: %w", err)
	}
	return RunFS(ctx, db, sub)
}

// RunFS is Run over an arbitrary directory of migration files. It returns the
// number of migrations applied.
func RunFS(ctx context.Context, db *sql.DB, fsys fs.FS) (int, error) {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS `+versionTable+` (
		version    TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		applied_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
	)`); err != nil {
		return 0, fmt.Errorf("create %s: %w", versionTable, err)
	}

	done, err := appliedVersions(ctx, db)
	if err != nil {
		return 0, fmt.Errorf("list applied migrations: %w", err)
	}

	steps, err := pending(fsys, done)
	if err != nil {
		return 0, err
	}
	for _, s := range steps {
		if err := apply(ctx, db, s); err != nil {
			return 0, fmt.Errorf("apply %s_%s: %w", s.version, s.name, err)
		}
		slog.Debug("migration applied", "version", s.version, "name", s.name)
	}
	return len(steps), nil
}

func pending(fsys fs.FS, done map[string]bool) ([]step, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}
	var out []step
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := fileRe.FindStringSubmatch(e.Name())
		if m == nil || done[m[1]] {
			continue
		}
		body, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", e.Name(), err)
		}
		out = append(out, step{version: m[1], name: m[2], body: string(body)})
	}
	slices.SortFunc(out, func(a, b step) int { return strings.Compare(a.version, b.version) })
	return out, nil
}

func appliedVersions(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT version FROM "+versionTable)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out[v] = true
	}
	return out, rows.Err()
}

func apply(ctx context.Context, db *sql.DB, s step) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, s.body); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO "+versionTable+" (version, name) VALUES (?, ?)", s.version, s.name,
	); err != nil {
		return err
	}
	return tx.Commit()
}
