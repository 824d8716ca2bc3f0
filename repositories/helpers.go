package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLExecutor lets repository methods run against either the pool or an open
// transaction.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError
	}
	return nil
}

// AcquireTournamentLock takes the transaction-scoped advisory lock serializing
// all bracket mutations for one tournament. It must be called on a
// transaction; the lock releases on commit or rollback.
func AcquireTournamentLock(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	if _, err := exec.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, tournamentID); err != nil {
		return fmt.Errorf("failed to acquire advisory lock for tournament %d: %w", tournamentID, err)
	}
	return nil
}
