package sink

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDB captures statements and copied rows.
type fakeDB struct {
	execs   []string
	table   pgx.Identifier
	columns []string
	rows    [][]any
	copyErr error
}

func (f *fakeDB) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, sql)
	return pgconn.NewCommandTag("CREATE TABLE"), nil
}

func (f *fakeDB) CopyFrom(_ context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error) {
	if f.copyErr != nil {
		return 0, f.copyErr
	}
	f.table = table
	f.columns = columns
	for src.Next() {
		vals, err := src.Values()
		if err != nil {
			return 0, err
		}
		f.rows = append(f.rows, vals)
	}
	return int64(len(f.rows)), nil
}

func TestPostgres_EnsureTable(t *testing.T) {
	db := &fakeDB{}
	require.NoError(t, NewPostgres(db, "occupancy_log").EnsureTable(context.Background()))
	require.Len(t, db.execs, 1)
	assert.Contains(t, db.execs[0], `CREATE TABLE IF NOT EXISTS "occupancy_log"`)
}

func TestPostgres_Log(t *testing.T) {
	db := &fakeDB{}
	capturedAt := time.Date(2024, 5, 1, 22, 0, 0, 0, jst)

	require.NoError(t, NewPostgres(db, "occupancy_log").Log(context.Background(), capturedAt, sample))

	assert.Equal(t, pgx.Identifier{"occupancy_log"}, db.table)
	assert.Equal(t, rowColumns, db.columns)
	require.Len(t, db.rows, 2)
	assert.Equal(t, capturedAt, db.rows[0][0])
	assert.Equal(t, db.rows[0][1], db.rows[1][1], "rows of one cycle share a batch id")
	assert.Equal(t, "JIS UMEDA", db.rows[0][2])
	assert.Equal(t, 8, db.rows[0][3])
	assert.Equal(t, 11, db.rows[0][4])
	assert.Equal(t, "Kansai", db.rows[0][6])
}

func TestPostgres_LogCopyError(t *testing.T) {
	db := &fakeDB{copyErr: errors.New("connection reset")}
	err := NewPostgres(db, "t").Log(context.Background(), time.Now(), sample)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}
