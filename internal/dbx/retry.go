package dbx

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sethvargo/go-retry"
)

// SQLSTATE codes Postgres uses when a serializable transaction loses a race.
const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
)

// IsSerializationFailure reports whether err is a conflict that goes away
// when the whole transaction is retried.
func IsSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == sqlStateSerializationFailure || pgErr.Code == sqlStateDeadlockDetected
}

// WithSerializableTx runs fn in a SERIALIZABLE transaction and reruns the
// whole transaction, with exponential backoff, when Postgres reports a
// serialization failure. Any other error is returned as is.
func WithSerializableTx(ctx context.Context, db *sql.DB, maxRetries uint64, fn func(ctx context.Context, tx DBTX) error) error {
	backoff := retry.WithMaxRetries(maxRetries, retry.NewExponential(10*time.Millisecond))
	opts := &sql.TxOptions{Isolation: sql.LevelSerializable}

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := WithTx(ctx, db, opts, fn)
		if IsSerializationFailure(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}
