package postgres

import (
	"context"
	"database/sql"

	"greenride/internal/repository"
)

// Querier is an interface satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Ensure interfaces are satisfied.
var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)

	_ repository.TxRunner = (*TxRunner)(nil)
)

// TxRunner runs ledger operations inside a single SQL transaction.
type TxRunner struct {
	db *sql.DB
}

// NewTxRunner creates a new TxRunner.
func NewTxRunner(db *sql.DB) *TxRunner {
	return &TxRunner{db: db}
}

// RunInTx begins a transaction, yields transaction-scoped repositories to
// fn, and commits. Any error from fn rolls the whole transaction back.
func (r *TxRunner) RunInTx(ctx context.Context, fn func(ledger repository.Ledger) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	ledger := repository.Ledger{
		Rides: NewRideRepositoryWithTx(tx),
		Stats: NewStatsRepositoryWithTx(tx),
	}

	if err := fn(ledger); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}
