package sink

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/loungewatch/loungewatch/internal/config"
	"github.com/loungewatch/loungewatch/pkg/types"
)

// Sink appends one cycle's records to an external log.
type Sink interface {
	Log(ctx context.Context, capturedAt time.Time, records []types.Record) error
}

// Row is one logged record, stamped with its cycle.
type Row struct {
	BatchID    string    `json:"batch_id"`
	CapturedAt time.Time `json:"captured_at"`
	Name       string    `json:"name"`
	Men        int       `json:"men"`
	Women      int       `json:"women"`
	Source     string    `json:"source"`
	Region     string    `json:"region"`
}

func toRows(batchID string, capturedAt time.Time, records []types.Record) []Row {
	rows := make([]Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, Row{
			BatchID:    batchID,
			CapturedAt: capturedAt,
			Name:       r.Name,
			Men:        r.Men,
			Women:      r.Women,
			Source:     r.Source,
			Region:     r.Region,
		})
	}
	return rows
}

// GateFor builds the Gate described by cfg.
func GateFor(cfg config.SinkConfig) Gate {
	return Gate{
		QuietStart:     cfg.QuietStartHour,
		QuietEnd:       cfg.QuietEndHour,
		MinuteMultiple: cfg.MinuteMultiple,
	}
}

// New returns the Sink selected by cfg.Type, or nil for "none". The returned
// close func releases any connections and is never nil.
func New(ctx context.Context, cfg config.SinkConfig) (Sink, func(), error) {
	noop := func() {}
	switch cfg.Type {
	case config.SinkNone, "":
		return nil, noop, nil
	case config.SinkWebhook:
		url := cfg.URL()
		if url == "" {
			return nil, noop, fmt.Errorf("sink: environment variable %s is empty", cfg.URLEnv)
		}
		return NewWebhook(url, cfg.WebhookType, &http.Client{Timeout: 10 * time.Second}), noop, nil
	case config.SinkPostgres:
		dsn := cfg.DSN()
		if dsn == "" {
			return nil, noop, fmt.Errorf("sink: environment variable %s is empty", cfg.DSNEnv)
		}
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return nil, noop, fmt.Errorf("sink: connect postgres: %w", err)
		}
		pg := NewPostgres(pool, cfg.Table)
		if err := pg.EnsureTable(ctx); err != nil {
			pool.Close()
			return nil, noop, err
		}
		return pg, pool.Close, nil
	default:
		return nil, noop, fmt.Errorf("sink: unsupported type %q", cfg.Type)
	}
}
