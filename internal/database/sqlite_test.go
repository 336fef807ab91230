package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ Pinger = (*SQLite)(nil)
	_ Pinger = (*Postgres)(nil)
)

func TestOpenSQLite_CreatesSchema(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "hunt.db")

	db, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, path, db.Path)
	require.NoError(t, db.Ping(ctx))

	var name string
	err = db.DB.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'accidents'").Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "accidents", name)
}

func TestOpenSQLite_ReopenKeepsRows(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "hunt.db")

	db, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	_, err = db.DB.ExecContext(ctx,
		"INSERT INTO accidents (final_report, date, year, fatal) VALUES (1, '2001-11-20', 2001, 0)")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM accidents").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestSQLite_CloseTwice(t *testing.T) {
	db, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "hunt.db"))
	require.NoError(t, err)

	assert.NoError(t, db.Close())
	assert.NotPanics(t, func() { _ = db.Close() })
	assert.Error(t, db.Ping(context.Background()))
}

func TestNewSQLite_SchemaFailure(t *testing.T) {
	conn, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectPing()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS accidents").
		WillReturnError(errors.New("disk I/O error"))

	_, err = NewSQLite(context.Background(), conn, "mock.db")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to apply schema")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewSQLite_PingFailure(t *testing.T) {
	conn, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectPing().WillReturnError(errors.New("unable to open database file"))

	_, err = NewSQLite(context.Background(), conn, "mock.db")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to ping database")
	assert.NoError(t, mock.ExpectationsWereMet())
}
