// Package sqlite provides the context-scoped transaction manager used by the repositories.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/garyjia/tkdn-compliance/internal/application/port"
)

type txKey struct{}

const (
	defaultBusyRetries = 3
	busyBackoff        = 50 * time.Millisecond
)

// DB wraps sql.DB and implements TransactionManager
type DB struct {
	*sql.DB
	logger      *zap.Logger
	busyRetries int
}

// Option configures the transaction manager
type Option func(*DB)

// WithBusyRetries bounds how often a transaction is restarted after SQLITE_BUSY
func WithBusyRetries(n int) Option {
	return func(db *DB) {
		if n >= 0 {
			db.busyRetries = n
		}
	}
}

// NewDB creates a new database wrapper
func NewDB(sqlDB *sql.DB, logger *zap.Logger, opts ...Option) *DB {
	db := &DB{
		DB:          sqlDB,
		logger:      logger,
		busyRetries: defaultBusyRetries,
	}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

// WithTransaction runs fn inside one transaction. Nested calls join the outer transaction.
// Transactions begin IMMEDIATE (see database.DSN), so the write lock is held from the first
// read and a status re-read inside fn cannot be invalidated by a concurrent writer.
// When the lock cannot be taken the whole transaction, fn included, is run again.
func (db *DB) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if TxFromContext(ctx) != nil {
		return fn(ctx)
	}

	for attempt := 0; ; attempt++ {
		err := db.runTx(ctx, fn)
		if !IsBusy(err) || attempt >= db.busyRetries {
			return err
		}

		db.logger.Warn("Database busy, retrying transaction", zap.Int("attempt", attempt+1), zap.Error(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(busyBackoff * time.Duration(attempt+1)):
		}
	}
}

func (db *DB) runTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		db.logger.Error("Failed to begin transaction", zap.Error(err))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			db.logger.Error("Transaction panicked, rolled back", zap.Any("panic", p))
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			db.logger.Error("Failed to rollback transaction", zap.Error(rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		db.logger.Error("Failed to commit transaction", zap.Error(err))
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// IsBusy reports whether err is SQLite refusing the write lock
func IsBusy(err error) bool {
	var sqlErr sqlite3.Error
	if !errors.As(err, &sqlErr) {
		return false
	}
	return sqlErr.Code == sqlite3.ErrBusy || sqlErr.Code == sqlite3.ErrLocked
}

// TxFromContext returns the transaction carried by ctx, if any
func TxFromContext(ctx context.Context) *sql.Tx {
	tx, _ := ctx.Value(txKey{}).(*sql.Tx)
	return tx
}

// Executor covers both *sql.DB and *sql.Tx
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// ExecutorFor returns the transaction in ctx, or db when there is none
func ExecutorFor(ctx context.Context, db *sql.DB) Executor {
	if tx := TxFromContext(ctx); tx != nil {
		return tx
	}
	return db
}

var _ port.TransactionManager = (*DB)(nil)
