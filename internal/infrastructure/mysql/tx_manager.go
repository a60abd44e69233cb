package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	apperrors "shopkeeper/internal/errors"
)

const (
	errDuplicateEntry  = 1062
	errLockWaitTimeout = 1205
	errDeadlock        = 1213
)

// TxManager runs units of work inside a REPEATABLE READ transaction and
// replays the whole unit when MySQL picks it as a deadlock victim.
type TxManager struct {
	db          *sql.DB
	logger      *zap.Logger
	timeout     time.Duration
	maxAttempts int
	backoff     func(attempt int) time.Duration
}

func NewTxManager(db *sql.DB, logger *zap.Logger, timeout time.Duration, maxAttempts int) *TxManager {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &TxManager{
		db:          db,
		logger:      logger,
		timeout:     timeout,
		maxAttempts: maxAttempts,
		backoff:     jitteredBackoff,
	}
}

// WithinTx commits when fn returns nil and rolls back otherwise.
func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error {
	return m.retry(ctx, func(ctx context.Context) error {
		return m.runOnce(ctx, fn)
	})
}

func (m *TxManager) runOnce(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error {
	txCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	tx, err := m.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	// Rollback after Commit is a no-op returning sql.ErrTxDone.
	defer tx.Rollback()

	if err := fn(txCtx, tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (m *TxManager) retry(ctx context.Context, attemptFn func(ctx context.Context) error) error {
	for attempt := 1; attempt <= m.maxAttempts; attempt++ {
		err := attemptFn(ctx)
		if err == nil {
			return nil
		}
		if !IsDeadlock(err) {
			return err
		}
		if attempt == m.maxAttempts {
			break
		}

		m.logger.Warn("deadlock detected, retrying",
			zap.Int("attempt", attempt),
			zap.Int("maxAttempts", m.maxAttempts),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.backoff(attempt)):
		}
	}

	return apperrors.NewDeadlockError("transaction aborted after repeated deadlocks, please retry")
}

// jitteredBackoff waits 50ms, 100ms, 200ms, ... with ±20% jitter.
func jitteredBackoff(attempt int) time.Duration {
	base := 50 * time.Millisecond << (attempt - 1)
	jitter := time.Duration((rand.Float64()*0.4 - 0.2) * float64(base))
	return base + jitter
}

func IsDeadlock(err error) bool {
	var mysqlErr *gomysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == errDeadlock || mysqlErr.Number == errLockWaitTimeout
	}
	return false
}

func IsDuplicateEntry(err error) bool {
	var mysqlErr *gomysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == errDuplicateEntry
	}
	return false
}
