package database

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/frahmantamala/timeclock/pkg/retry"
)

// RunInTransaction executes fn inside a gorm transaction, retrying the whole
// transaction on transient errors with the shared backoff budget. Domain
// errors returned by fn abort the transaction and propagate immediately.
func RunInTransaction(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	policy := retry.DefaultPolicy(IsTransientError)
	return retry.Do(ctx, policy, func(ctx context.Context) error {
		return db.WithContext(ctx).Transaction(fn)
	})
}

// IsTransientError reports whether an error is worth retrying: serialization
// or deadlock aborts, connection-level failures, or sqlite lock contention in
// tests. Anything else is treated as permanent.
func IsTransientError(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", // serialization_failure
			"40P01", // deadlock_detected
			"55P03": // lock_not_available
			return true
		}
		// connection exception class
		if strings.HasPrefix(pgErr.Code, "08") {
			return true
		}
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	msg := err.Error()
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "connection reset")
}
