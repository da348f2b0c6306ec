package db

import (
	"context"

	"github.com/rotisserie/eris"
)

// WithTx runs fn inside a transaction. Commit happens only if fn returns nil;
// any error (including a panic unwinding through the defer) rolls back.
func WithTx(ctx context.Context, pool Pool, fn func(q Querier) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "db: begin tx")
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return eris.Wrap(err, "db: commit tx")
	}
	return nil
}
