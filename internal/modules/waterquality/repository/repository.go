package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tristmeister/ems-jade2/internal/modules/waterquality/types"
)

//go:embed sql/get-readings.sql
var getReadingsSQL string

//go:embed sql/get-reading-at.sql
var getReadingAtSQL string

//go:embed sql/get-readings-count.sql
var getReadingsCountSQL string

//go:embed sql/insert-reading.sql
var insertReadingSQL string

//go:embed sql/delete-readings.sql
var deleteReadingsSQL string

// ErrNotFound is returned by GetReadingAt for an index past the last reading.
var ErrNotFound = errors.New("reading not found")

type ReadingRepository interface {
	GetReadings(ctx context.Context) ([]types.Reading, error)
	GetReadingAt(ctx context.Context, index int) (types.Reading, error)
	GetReadingsCount(ctx context.Context) (int, error)
	Seed(ctx context.Context, readings []types.Reading) error
}

type repositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) ReadingRepository {
	return &repositoryImpl{db: db}
}

// GetReadings returns every stored reading, oldest first.
func (r *repositoryImpl) GetReadings(ctx context.Context) ([]types.Reading, error) {
	rows, err := r.db.QueryContext(ctx, getReadingsSQL)
	if err != nil {
		return nil, fmt.Errorf("query readings: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close readings rows", "error", err)
		}
	}()

	var out []types.Reading
	for rows.Next() {
		rd, err := scanReading(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rd)
	}
	return out, rows.Err()
}

// GetReadingAt returns the reading at a 0-based position in date order.
func (r *repositoryImpl) GetReadingAt(ctx context.Context, index int) (types.Reading, error) {
	if index < 0 {
		return types.Reading{}, ErrNotFound
	}
	rd, err := scanReading(r.db.QueryRowContext(ctx, getReadingAtSQL, index))
	if errors.Is(err, sql.ErrNoRows) {
		return types.Reading{}, ErrNotFound
	}
	return rd, err
}

func (r *repositoryImpl) GetReadingsCount(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, getReadingsCountSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("count readings: %w", err)
	}
	return n, nil
}

// Seed replaces the stored readings with the given ones in one transaction.
func (r *repositoryImpl) Seed(ctx context.Context, readings []types.Reading) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.Error("rollback seed", "error", err)
		}
	}()

	if _, err := tx.ExecContext(ctx, deleteReadingsSQL); err != nil {
		return fmt.Errorf("clear readings: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, insertReadingSQL)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rd := range readings {
		if _, err := stmt.ExecContext(ctx, readingArgs(rd)...); err != nil {
			return fmt.Errorf("insert reading %s: %w", rd.DateString(), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReading(row rowScanner) (types.Reading, error) {
	var rd types.Reading
	var date string
	dest := []any{&date, &rd.Temperature, &rd.PrevDayTemp}
	for _, p := range types.Parameters() {
		dest = append(dest, &rd.Values[p])
	}
	dest = append(dest, &rd.Notes)
	if err := row.Scan(dest...); err != nil {
		return types.Reading{}, err
	}

	t, err := time.Parse(types.DateLayout, date)
	if err != nil {
		return types.Reading{}, fmt.Errorf("parse date %q: %w", date, err)
	}
	rd.Date = t
	return rd, nil
}

// readingArgs orders columns as in insert-reading.sql; parameter columns
// follow types.Parameters().
func readingArgs(rd types.Reading) []any {
	args := []any{rd.DateString(), rd.Temperature, rd.PrevDayTemp}
	for _, p := range types.Parameters() {
		args = append(args, rd.Get(p))
	}
	return append(args, rd.Notes)
}
