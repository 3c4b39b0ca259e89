package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closeCountingPool struct {
	pgxmock.PgxPoolIface
	closes int
}

func (p *closeCountingPool) Close() { p.closes++ }

func newCountingPool(t *testing.T) *closeCountingPool {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return &closeCountingPool{PgxPoolIface: mock}
}

func TestOpenSharedUsesOnePool(t *testing.T) {
	t.Parallel()

	pool := newCountingPool(t)
	pool.ExpectExec("CREATE TABLE IF NOT EXISTS isw_html").
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	pool.ExpectExec("CREATE TABLE IF NOT EXISTS isw_report").
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

	reports, texts, err := openShared(context.Background(), pool, "", "")
	require.NoError(t, err)
	require.NoError(t, pool.ExpectationsWereMet())

	reports.Close()
	reports.Close()
	assert.Zero(t, pool.closes, "text store still holds the pool")

	texts.Close()
	assert.Equal(t, 1, pool.closes)
	texts.Close()
	assert.Equal(t, 1, pool.closes)
}

func TestOpenSharedErrors(t *testing.T) {
	t.Parallel()

	pool := newCountingPool(t)
	_, _, err := openShared(context.Background(), pool, "bad table", "")
	require.Error(t, err)

	_, _, err = openShared(context.Background(), pool, "reports", "reports")
	require.ErrorContains(t, err, "must differ")

	pool.ExpectExec("CREATE TABLE IF NOT EXISTS isw_html").
		WillReturnError(errors.New("permission denied"))
	_, _, err = openShared(context.Background(), pool, "", "")
	require.ErrorContains(t, err, "create isw_html")
	require.NoError(t, pool.ExpectationsWereMet())
	assert.Zero(t, pool.closes)
}

func TestOpenRequiresDSN(t *testing.T) {
	t.Parallel()

	_, _, err := Open(context.Background(), Config{}, "", "")
	require.ErrorContains(t, err, "store.dsn is required")
}
