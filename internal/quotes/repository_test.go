package quotes

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRow struct {
	err error
}

func (r stubRow) Scan(dest ...any) error { return r.err }

// stubQuerier records which read surface the load path touches.
type stubQuerier struct {
	rowCalls   int
	queryCalls int
}

func (q *stubQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	q.rowCalls++
	return stubRow{err: pgx.ErrNoRows}
}

func (q *stubQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.queryCalls++
	return nil, pgx.ErrNoRows
}

func TestGetReadsThroughSuppliedQuerier(t *testing.T) {
	// The pool is deliberately nil: every read must go through the querier
	// the caller hands in, never the repository's own pool.
	repo := &pgRepository{}
	q := &stubQuerier{}

	_, err := repo.get(context.Background(), q, uuid.New())
	require.ErrorIs(t, err, ErrEstimateNotFound)
	assert.Equal(t, 1, q.rowCalls)
	assert.Zero(t, q.queryCalls, "a missing estimate stops before the line query")
}
