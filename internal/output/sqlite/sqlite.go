// Package sqlite stores prediction records in a SQLite database, one row per
// record in a predictions table keyed by a ULID.
package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/crimson-sun/talepnlp/internal/model"
	"github.com/crimson-sun/talepnlp/internal/output"
)

// columnNames quotes model.Columns for SQL ("passolig kart" has a space).
func columnNames() string {
	quoted := make([]string, len(model.Columns))
	for i, c := range model.Columns {
		quoted[i] = `"` + c + `"`
	}
	return strings.Join(quoted, ", ")
}

// Output inserts records into the predictions table.
type Output struct {
	db      *sql.DB
	mu      sync.Mutex // guards entropy
	entropy *ulid.MonotonicEntropy
	insert  string
}

// Open opens the database at path with WAL mode and creates the schema.
func Open(ctx context.Context, path string) (*Output, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite output: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite output: %w", err)
	}
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	placeholders := strings.Repeat("?, ", len(model.Columns))
	return &Output{
		db:      db,
		entropy: ulid.Monotonic(rand.Reader, 0),
		insert: fmt.Sprintf(`INSERT INTO predictions (id, created_at, %s, errors) VALUES (?, ?, %s?)`,
			columnNames(), placeholders),
	}, nil
}

func initSchema(ctx context.Context, db *sql.DB) error {
	cols := make([]string, len(model.Columns))
	for i, c := range model.Columns {
		cols[i] = `"` + c + `" TEXT NOT NULL`
	}
	schema := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS predictions (
	id TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	%s,
	errors TEXT
);`, strings.Join(cols, ",\n\t"))
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("sqlite output: schema: %w", err)
	}
	return nil
}

// Write inserts the record.
func (o *Output) Write(ctx context.Context, rec model.Record) error {
	o.mu.Lock()
	id := ulid.MustNew(ulid.Now(), o.entropy).String()
	o.mu.Unlock()

	args := []any{id, time.Now().UTC().Format(time.RFC3339Nano)}
	for _, v := range output.Row(rec) {
		args = append(args, v)
	}
	args = append(args, stageErrors(rec))

	if _, err := o.db.ExecContext(ctx, o.insert, args...); err != nil {
		return fmt.Errorf("sqlite output: insert: %w", err)
	}
	return nil
}

// ReadAll returns every stored record in insertion order.
func (o *Output) ReadAll(ctx context.Context) ([]model.Record, error) {
	rows, err := o.db.QueryContext(ctx, fmt.Sprintf(`SELECT %s FROM predictions ORDER BY id`, columnNames()))
	if err != nil {
		return nil, fmt.Errorf("sqlite output: query: %w", err)
	}
	defer rows.Close()

	var recs []model.Record
	for rows.Next() {
		vals := make([]string, len(model.Columns))
		ptrs := make([]any, len(vals))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("sqlite output: scan: %w", err)
		}
		rec, err := output.ParseRow(vals)
		if err != nil {
			return nil, fmt.Errorf("sqlite output: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// Close closes the database.
func (o *Output) Close() error {
	return o.db.Close()
}

// stageErrors flattens Record.Errors as "stage: reason" lines, or NULL.
func stageErrors(rec model.Record) any {
	if len(rec.Errors) == 0 {
		return nil
	}
	var lines []string
	for _, s := range model.Stages {
		if msg, ok := rec.Errors[s]; ok {
			lines = append(lines, string(s)+": "+msg)
		}
	}
	return strings.Join(lines, "\n")
}
