package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/potkeeper/internal/cryptox"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T, retries uint64) (*PostgresRepositoryManager, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepositoryManager(db, retries), mock
}

var addr = cryptox.Address{0x02, 9}

func TestRead_ReturnsRepositories(t *testing.T) {
	m, _ := newManager(t, 0)
	r := m.Read()
	assert.NotNil(t, r.Profiles())
	assert.NotNil(t, r.Pots())
	assert.NotNil(t, r.Holdings())
	assert.NotNil(t, r.Transfers())
	assert.NotNil(t, r.RefreshTokens())
}

func TestWithTx_Commit(t *testing.T) {
	m, mock := newManager(t, 0)
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT\s+INTO\s+holdings`).WithArgs(addr, "10").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := m.WithTx(context.Background(), func(ctx context.Context, r Repositories) error {
		return r.Holdings().Set(ctx, addr, 10)
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RollbackOnError(t *testing.T) {
	m, mock := newManager(t, 0)
	boom := errors.New("boom")
	mock.ExpectBegin()
	mock.ExpectRollback()

	err := m.WithTx(context.Background(), func(ctx context.Context, r Repositories) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RetriesSerializationFailure(t *testing.T) {
	m, mock := newManager(t, 3)
	conflict := &pgconn.PgError{Code: "40001"}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT\s+INTO\s+holdings`).WillReturnError(conflict)
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT\s+INTO\s+holdings`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	calls := 0
	err := m.WithTx(context.Background(), func(ctx context.Context, r Repositories) error {
		calls++
		return r.Holdings().Set(ctx, addr, 1)
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations(t *testing.T) {
	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	m, _ := newManager(t, 0)

	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if dir != "." {
			return errors.New("unexpected dir")
		}
		return nil
	}
	require.NoError(t, m.RunMigrations(context.Background()))

	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	assert.EqualError(t, m.RunMigrations(context.Background()), "boom")
}
