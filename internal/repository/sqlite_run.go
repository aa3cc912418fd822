package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/slotwise/internal/db"
	"github.com/alexanderramin/slotwise/internal/domain"
)

// DefaultListLimit caps ListRecent when the caller passes no limit.
const DefaultListLimit = 20

// SQLiteRunRepo implements RunRepo. Writes go through a UnitOfWork so a run
// and its warnings are stored together.
type SQLiteRunRepo struct {
	db  db.DBTX
	uow db.UnitOfWork
	now func() time.Time
}

func NewSQLiteRunRepo(conn *sql.DB) *SQLiteRunRepo {
	return NewSQLiteRunRepoWithUoW(conn, db.NewSQLiteUnitOfWork(conn))
}

// NewSQLiteRunRepoWithUoW lets tests substitute the transaction runner.
func NewSQLiteRunRepoWithUoW(conn db.DBTX, uow db.UnitOfWork) *SQLiteRunRepo {
	return &SQLiteRunRepo{db: conn, uow: uow, now: time.Now}
}

// Create assigns an ID and creation time when missing and stores the run.
func (r *SQLiteRunRepo) Create(ctx context.Context, run *domain.ScheduleRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = r.now()
	}

	return r.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO schedule_runs (id, created_at, timezone,
			task_count, placed_count, unplaced_count, split_count, break_count, fallback,
			request_json, response_json)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID,
			formatTime(run.CreatedAt),
			run.Timezone,
			run.TaskCount,
			run.PlacedCount,
			run.UnplacedCount,
			run.SplitCount,
			run.BreakCount,
			run.Fallback,
			string(run.RequestJSON),
			string(run.ResponseJSON),
		)
		if err != nil {
			return fmt.Errorf("inserting schedule run: %w", err)
		}
		for i, w := range run.Warnings {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO run_warnings (run_id, position, message) VALUES (?, ?, ?)`,
				run.ID, i, w); err != nil {
				return fmt.Errorf("inserting run warning %d: %w", i, err)
			}
		}
		return nil
	})
}

const runColumns = `id, created_at, timezone, task_count, placed_count, unplaced_count,
	split_count, break_count, fallback, request_json, response_json`

func (r *SQLiteRunRepo) GetByID(ctx context.Context, id string) (*domain.ScheduleRun, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM schedule_runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadWarnings(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

// Latest returns the most recently created run.
func (r *SQLiteRunRepo) Latest(ctx context.Context) (*domain.ScheduleRun, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM schedule_runs ORDER BY created_at DESC, rowid DESC LIMIT 1`)
	run, err := scanRun(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadWarnings(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

// ListRecent returns runs newest first. Warnings are not loaded.
func (r *SQLiteRunRepo) ListRecent(ctx context.Context, limit int) ([]*domain.ScheduleRun, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM schedule_runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing schedule runs: %w", err)
	}
	defer rows.Close()

	var runs []*domain.ScheduleRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating schedule runs: %w", err)
	}
	return runs, nil
}

func (r *SQLiteRunRepo) loadWarnings(ctx context.Context, run *domain.ScheduleRun) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT message FROM run_warnings WHERE run_id = ? ORDER BY position`, run.ID)
	if err != nil {
		return fmt.Errorf("loading run warnings: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var msg string
		if err := rows.Scan(&msg); err != nil {
			return fmt.Errorf("scanning run warning: %w", err)
		}
		run.Warnings = append(run.Warnings, msg)
	}
	return rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*domain.ScheduleRun, error) {
	var (
		run               domain.ScheduleRun
		createdAt         string
		request, response string
	)
	err := s.Scan(
		&run.ID,
		&createdAt,
		&run.Timezone,
		&run.TaskCount,
		&run.PlacedCount,
		&run.UnplacedCount,
		&run.SplitCount,
		&run.BreakCount,
		&run.Fallback,
		&request,
		&response,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("schedule run: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning schedule run: %w", err)
	}
	run.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at of run %s: %w", run.ID, err)
	}
	run.RequestJSON = []byte(request)
	run.ResponseJSON = []byte(response)
	return &run, nil
}
