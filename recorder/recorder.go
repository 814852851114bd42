// Package recorder persists the samples and state changes a consumer renders.
package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	sampler "github.com/l0rem1psum/sampler"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

var (
	_ sampler.Renderer = &Recorder{}
	_ sampler.Flusher  = &Recorder{}
)

type stateRow struct {
	state sampler.State
	at    time.Time
}

type sampleRow struct {
	sample sampler.Sample
	rateHz float64
}

// Recorder is a sampler.Renderer that buffers what it is given and writes it to SQLite
// in one transaction per Flush. Every Recorder writes under its own session id.
type Recorder struct {
	db      *sql.DB
	session string

	samples []sampleRow
	states  []stateRow
}

// Open opens (or creates) the database at path. ":memory:" gives a private in-memory
// database.
func Open(path string) (*Recorder, error) {
	connStr := path
	if path == ":memory:" {
		connStr = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	r := &Recorder{
		db:      db,
		session: uuid.NewString(),
	}

	if err := r.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return r, nil
}

func (r *Recorder) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS samples (
		session TEXT NOT NULL,
		seq INTEGER NOT NULL,
		value REAL NOT NULL,
		rate_hz REAL NOT NULL,
		ts DATETIME NOT NULL,
		PRIMARY KEY (session, seq)
	);

	CREATE TABLE IF NOT EXISTS state_changes (
		session TEXT NOT NULL,
		state TEXT NOT NULL,
		ts DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_samples_ts ON samples(ts);
	CREATE INDEX IF NOT EXISTS idx_state_changes_session ON state_changes(session);
	`

	if _, err := r.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Session returns the id this recorder writes rows under.
func (r *Recorder) Session() string {
	return r.session
}

func (r *Recorder) RenderState(s sampler.State, _ sampler.Controls) {
	r.states = append(r.states, stateRow{state: s, at: time.Now()})
}

func (r *Recorder) RenderSample(s sampler.Sample, rateHz float64) {
	r.samples = append(r.samples, sampleRow{sample: s, rateHz: rateHz})
}

// Flush writes everything buffered since the previous Flush. On failure the buffer is
// kept so the next Flush retries it.
func (r *Recorder) Flush() error {
	if len(r.samples) == 0 && len(r.states) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, row := range r.samples {
		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO samples (session, seq, value, rate_hz, ts) VALUES (?, ?, ?, ?, ?)`,
			r.session, row.sample.Seq, row.sample.Value, row.rateHz, row.sample.Timestamp.UTC(),
		); err != nil {
			return fmt.Errorf("insert sample %d: %w", row.sample.Seq, err)
		}
	}

	for _, row := range r.states {
		if _, err := tx.Exec(
			`INSERT INTO state_changes (session, state, ts) VALUES (?, ?, ?)`,
			r.session, row.state.String(), row.at.UTC(),
		); err != nil {
			return fmt.Errorf("insert state change: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	r.samples = r.samples[:0]
	r.states = r.states[:0]
	return nil
}

// Samples returns the recorded samples of this session ordered by sequence number.
func (r *Recorder) Samples(ctx context.Context) ([]sampler.Sample, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT seq, value, ts FROM samples WHERE session = ? ORDER BY seq`, r.session)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	var samples []sampler.Sample
	for rows.Next() {
		var s sampler.Sample
		if err := rows.Scan(&s.Seq, &s.Value, &s.Timestamp); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		samples = append(samples, s)
	}
	return samples, rows.Err()
}

// States returns the recorded state changes of this session in insertion order.
func (r *Recorder) States(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT state FROM state_changes WHERE session = ? ORDER BY rowid`, r.session)
	if err != nil {
		return nil, fmt.Errorf("query state changes: %w", err)
	}
	defer rows.Close()

	var states []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan state change: %w", err)
		}
		states = append(states, s)
	}
	return states, rows.Err()
}

// Close flushes what is still buffered and closes the database.
func (r *Recorder) Close() error {
	var errs error
	if err := r.Flush(); err != nil {
		errs = multierror.Append(errs, err)
	}
	if err := r.db.Close(); err != nil {
		errs = multierror.Append(errs, err)
	}
	return errs
}
