package repository

import "context"

// Ledger bundles the transaction-scoped repositories touched by a single
// ride verification.
type Ledger struct {
	Rides RideRepository
	Stats StatsRepository
}

// TxRunner executes a function inside one exclusive transaction. If fn
// returns an error the transaction is rolled back and none of its writes
// are visible; otherwise it commits.
//
// The verification engine depends on this interface rather than *sql.DB so
// its atomicity can be exercised with in-memory fakes.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ledger Ledger) error) error
}
