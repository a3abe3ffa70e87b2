package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/tkdn-compliance/pkg/database"
)

func setupDB(t *testing.T, opts ...Option) *DB {
	t.Helper()
	raw, err := database.New(database.Config{Path: filepath.Join(t.TempDir(), "tx.db")}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = raw.Close() })

	_, err = raw.Exec(`CREATE TABLE counters (name TEXT PRIMARY KEY, value INTEGER NOT NULL)`)
	require.NoError(t, err)
	return NewDB(raw.DB, zap.NewNop(), opts...)
}

func count(t *testing.T, db *DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM counters`).Scan(&n))
	return n
}

func insert(ctx context.Context, db *DB, name string) error {
	_, err := ExecutorFor(ctx, db.DB).ExecContext(ctx, `INSERT INTO counters (name, value) VALUES (?, 0)`, name)
	return err
}

func TestWithTransactionCommitsAndRollsBack(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	require.NoError(t, db.WithTransaction(ctx, func(txCtx context.Context) error {
		assert.NotNil(t, TxFromContext(txCtx))
		return insert(txCtx, db, "a")
	}))
	assert.Equal(t, 1, count(t, db))

	boom := errors.New("boom")
	err := db.WithTransaction(ctx, func(txCtx context.Context) error {
		require.NoError(t, insert(txCtx, db, "b"))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, count(t, db))
}

func TestWithTransactionNestedJoinsOuter(t *testing.T) {
	db := setupDB(t)

	err := db.WithTransaction(context.Background(), func(outer context.Context) error {
		require.NoError(t, insert(outer, db, "a"))
		return db.WithTransaction(outer, func(inner context.Context) error {
			assert.Same(t, TxFromContext(outer), TxFromContext(inner))
			require.NoError(t, insert(inner, db, "b"))
			return errors.New("abort")
		})
	})
	require.Error(t, err)
	assert.Equal(t, 0, count(t, db), "inner failure rolls back the outer work")
}

func TestWithTransactionPanicRollsBack(t *testing.T) {
	db := setupDB(t)

	assert.Panics(t, func() {
		_ = db.WithTransaction(context.Background(), func(txCtx context.Context) error {
			_ = insert(txCtx, db, "a")
			panic("handler bug")
		})
	})
	assert.Equal(t, 0, count(t, db))
}

func TestWithTransactionRetriesBusy(t *testing.T) {
	db := setupDB(t, WithBusyRetries(2))
	busy := fmt.Errorf("insert: %w", sqlite3.Error{Code: sqlite3.ErrBusy})

	attempts := 0
	err := db.WithTransaction(context.Background(), func(txCtx context.Context) error {
		attempts++
		if attempts < 3 {
			return busy
		}
		return insert(txCtx, db, "a")
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 1, count(t, db))

	attempts = 0
	err = db.WithTransaction(context.Background(), func(context.Context) error {
		attempts++
		return busy
	})
	assert.True(t, IsBusy(err))
	assert.Equal(t, 3, attempts, "one attempt plus two retries")
}

func TestIsBusy(t *testing.T) {
	assert.True(t, IsBusy(sqlite3.Error{Code: sqlite3.ErrBusy}))
	assert.True(t, IsBusy(fmt.Errorf("wrapped: %w", sqlite3.Error{Code: sqlite3.ErrLocked})))
	assert.False(t, IsBusy(sqlite3.Error{Code: sqlite3.ErrConstraint}))
	assert.False(t, IsBusy(errors.New("busy")))
	assert.False(t, IsBusy(nil))
}
