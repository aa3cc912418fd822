package testutil

import (
	"context"
	"database/sql"

	"github.com/alexanderramin/slotwise/internal/db"
)

// FaultyUoW runs callbacks in a real transaction on DB but fails the
// exec numbered FailAt (from 1) with Err, so tests can see a run's
// partial writes roll back.
type FaultyUoW struct {
	DB     *sql.DB
	FailAt int
	Err    error

	// Execs counts the exec calls made through the last transaction.
	Execs int
}

func (u *FaultyUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	u.Execs = 0
	return db.NewSQLiteUnitOfWork(u.DB).WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, &faultyTx{DBTX: tx, uow: u})
	})
}

type faultyTx struct {
	db.DBTX
	uow *FaultyUoW
}

func (f *faultyTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	f.uow.Execs++
	if f.uow.Execs == f.uow.FailAt {
		return nil, f.uow.Err
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}
