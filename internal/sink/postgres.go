package sink

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/loungewatch/loungewatch/pkg/types"
)

var rowColumns = []string{"captured_at", "batch_id", "name", "men", "women", "source", "region"}

// DB is the subset of *pgxpool.Pool the Postgres sink uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error)
}

// Postgres appends one row per record to a table.
type Postgres struct {
	db    DB
	table string
}

// NewPostgres returns a Postgres sink writing to table.
func NewPostgres(db DB, table string) *Postgres {
	return &Postgres{db: db, table: table}
}

// EnsureTable creates the log table if it does not exist.
func (p *Postgres) EnsureTable(ctx context.Context) error {
	sql := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	captured_at TIMESTAMPTZ NOT NULL,
	batch_id    UUID        NOT NULL,
	name        TEXT        NOT NULL,
	men         INTEGER     NOT NULL,
	women       INTEGER     NOT NULL,
	source      TEXT        NOT NULL,
	region      TEXT        NOT NULL
)`, pgx.Identifier{p.table}.Sanitize())
	if _, err := p.db.Exec(ctx, sql); err != nil {
		return fmt.Errorf("sink: create table %s: %w", p.table, err)
	}
	return nil
}

// Log copies the cycle's rows into the table.
func (p *Postgres) Log(ctx context.Context, capturedAt time.Time, records []types.Record) error {
	batchID := uuid.New()
	rows := make([][]any, 0, len(records))
	for _, r := range toRows(batchID.String(), capturedAt, records) {
		rows = append(rows, []any{r.CapturedAt, batchID, r.Name, r.Men, r.Women, r.Source, r.Region})
	}

	n, err := p.db.CopyFrom(ctx, pgx.Identifier{p.table}, rowColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("sink: copy rows: %w", err)
	}
	if int(n) != len(rows) {
		return fmt.Errorf("sink: copied %d of %d rows", n, len(rows))
	}
	return nil
}
