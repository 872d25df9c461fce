// Package store persists deposits and allocation runs in a SQLite database.
//
// The allocation engine keeps no state between runs, the store is where a
// deposit history is accumulated over time and where past allocations can be
// looked up.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/etnz/depositplan"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Memory is the path of a private in-memory database.
const Memory = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS deposits (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	id         TEXT NOT NULL UNIQUE,
	amount     TEXT NOT NULL,
	reference  TEXT NOT NULL DEFAULT '',
	timestamp  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	deposits   INTEGER NOT NULL,
	total      TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS run_allocations (
	run_id       TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	position     INTEGER NOT NULL,
	portfolio_id TEXT NOT NULL,
	amount       TEXT NOT NULL,
	PRIMARY KEY (run_id, position)
);
`

// Store handles the deposit history and allocation runs.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// Run describes a saved allocation run.
type Run struct {
	ID        string
	CreatedAt time.Time
	Deposits  int
	Total     depositplan.Amount
}

// Open opens (and creates if needed) the database at 'path'.
func Open(ctx context.Context, path string, log zerolog.Logger) (*Store, error) {
	dsn := "file::memory:"
	if path != Memory {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve database path to absolute: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		path = absPath
		dsn = "file:" + absPath
	}

	db, err := sql.Open("sqlite", dsn+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	// SQLite has a single writer, and an in-memory database only lives in its connection.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{
		db:  db,
		log: log.With().Str("component", "store").Str("path", path).Logger(),
	}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveDeposits appends deposits to the history. Deposits whose ID is already
// known are ignored. It returns the number of deposits actually added.
func (s *Store) SaveDeposits(ctx context.Context, deposits []depositplan.Deposit) (added int, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO deposits (id, amount, reference, timestamp) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare deposit insert: %w", err)
	}
	defer stmt.Close()

	for _, d := range deposits {
		res, err := stmt.ExecContext(ctx, d.ID, d.Amount.String(), d.ReferenceCode, formatTime(d.Timestamp))
		if err != nil {
			return 0, fmt.Errorf("failed to insert deposit %q: %w", d.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		added += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit deposits: %w", err)
	}
	s.log.Debug().Int("added", added).Int("ignored", len(deposits)-added).Msg("deposits saved")
	return added, nil
}

// Deposits returns the whole deposit history in chronological order. Deposits
// sharing a timestamp are returned in insertion order.
func (s *Store) Deposits(ctx context.Context) ([]depositplan.Deposit, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, amount, reference, timestamp FROM deposits ORDER BY timestamp, seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to query deposits: %w", err)
	}
	defer rows.Close()

	var deposits []depositplan.Deposit
	for rows.Next() {
		var id, amount, ref, ts string
		if err := rows.Scan(&id, &amount, &ref, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan deposit: %w", err)
		}
		a, err := depositplan.ParseAmount(amount)
		if err != nil {
			return nil, fmt.Errorf("deposit %q: invalid amount %q: %w", id, amount, err)
		}
		on, err := parseTime(ts)
		if err != nil {
			return nil, fmt.Errorf("deposit %q: %w", id, err)
		}
		deposits = append(deposits, depositplan.NewDeposit(id, a, ref, on))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating deposits: %w", err)
	}
	return deposits, nil
}

// SaveRun records the allocations of a run.
func (s *Store) SaveRun(ctx context.Context, res depositplan.Result, deposits int, at time.Time) (Run, error) {
	run := Run{
		ID:        uuid.NewString(),
		CreatedAt: at.UTC().Truncate(time.Second),
		Deposits:  deposits,
		Total:     depositplan.TotalAllocated(res.Allocations),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `INSERT INTO runs (id, created_at, deposits, total) VALUES (?, ?, ?, ?)`,
		run.ID, formatTime(run.CreatedAt), run.Deposits, run.Total.String()); err != nil {
		return Run{}, fmt.Errorf("failed to insert run: %w", err)
	}
	for i, a := range res.Allocations {
		if _, err := tx.ExecContext(ctx, `INSERT INTO run_allocations (run_id, position, portfolio_id, amount) VALUES (?, ?, ?, ?)`,
			run.ID, i, a.PortfolioID, a.Amount.String()); err != nil {
			return Run{}, fmt.Errorf("failed to insert allocation of %q: %w", a.PortfolioID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("failed to commit run: %w", err)
	}

	s.log.Info().Str("run", run.ID).Int("deposits", deposits).Stringer("total", run.Total).Msg("run saved")
	return run, nil
}

// Runs returns all saved runs, most recent first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, created_at, deposits, total FROM runs ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var created, total string
		if err := rows.Scan(&r.ID, &created, &r.Deposits, &total); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if r.CreatedAt, err = parseTime(created); err != nil {
			return nil, fmt.Errorf("run %q: %w", r.ID, err)
		}
		if r.Total, err = depositplan.ParseAmount(total); err != nil {
			return nil, fmt.Errorf("run %q: invalid total %q: %w", r.ID, total, err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return runs, nil
}

// RunAllocations returns the allocations of a run, in the portfolios order of that run.
func (s *Store) RunAllocations(ctx context.Context, runID string) ([]depositplan.PortfolioAllocation, error) {
	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT 1 FROM runs WHERE id = ?`, runID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("run %q: %w", runID, err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT portfolio_id, amount FROM run_allocations WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query allocations of run %q: %w", runID, err)
	}
	defer rows.Close()

	allocations := []depositplan.PortfolioAllocation{}
	for rows.Next() {
		var id, amount string
		if err := rows.Scan(&id, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan allocation: %w", err)
		}
		a, err := depositplan.ParseAmount(amount)
		if err != nil {
			return nil, fmt.Errorf("allocation of %q: invalid amount %q: %w", id, amount, err)
		}
		allocations = append(allocations, depositplan.PortfolioAllocation{PortfolioID: id, Amount: a})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating allocations: %w", err)
	}
	return allocations, nil
}

// timestamps are stored in UTC with a fixed width so that they sort as text.
const timeFormat = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string { return t.UTC().Format(timeFormat) }

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}
