// Package store archives parsed records in SQL. SQLite is the default; a
// postgres:// DSN selects PostgreSQL through pgx.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/faizmokh/timesheets/internal/export"
	"github.com/faizmokh/timesheets/internal/layout"
	"github.com/faizmokh/timesheets/internal/timesheet"
)

// ErrNotFound is returned when no archived document has the requested ID.
var ErrNotFound = errors.New("document not found")

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id            TEXT PRIMARY KEY,
	path          TEXT NOT NULL,
	employee_id   TEXT NOT NULL,
	employee_name TEXT NOT NULL,
	period_start  TEXT NOT NULL,
	period_end    TEXT NOT NULL,
	entries       INTEGER NOT NULL,
	issues        INTEGER NOT NULL,
	record        TEXT NOT NULL,
	created_at    TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS hours (
	document_id TEXT NOT NULL,
	key         TEXT NOT NULL,
	day         TEXT NOT NULL,
	hours       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS hours_key ON hours (key, day);
`

// Document is an archived record and its summary columns. Record is only
// filled by Get.
type Document struct {
	ID           uuid.UUID
	Path         string
	EmployeeID   string
	EmployeeName string
	PeriodStart  string
	PeriodEnd    string
	Entries      int
	Issues       int
	CreatedAt    time.Time
	Record       *timesheet.Record
}

// Hour is one archived (key, day, hours) row.
type Hour struct {
	DocumentID uuid.UUID
	Key        string
	Day        timesheet.Date
	Hours      string
}

// Store is an open archive.
type Store struct {
	db       *sql.DB
	pool     *pgxpool.Pool
	postgres bool
	layout   *layout.Layout
	logger   *slog.Logger
	now      func() time.Time
}

// Open connects to dsn and creates the schema if needed. A DSN starting with
// postgres:// or postgresql:// opens PostgreSQL; anything else is a SQLite
// file path.
func Open(ctx context.Context, dsn string, l *layout.Layout, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{layout: l, logger: logger, now: time.Now}

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		cfg, err := pgxpool.ParseConfig(dsn)
		if err != nil {
			return nil, fmt.Errorf("parse archive dsn: %w", err)
		}
		cfg.ConnConfig.RuntimeParams["application_name"] = "timesheets"
		pool, err := pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("connect archive: %w", err)
		}
		s.pool = pool
		s.db = stdlib.OpenDBFromPool(pool)
		s.postgres = true
	} else {
		db, err := sql.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("open archive: %w", err)
		}
		db.SetMaxOpenConns(1)
		s.db = db
	}

	if err := s.db.PingContext(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("ping archive: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		s.Close()
		return nil, fmt.Errorf("create archive schema: %w", err)
	}
	logger.Debug("store.open", "postgres", s.postgres)
	return s, nil
}

// Close releases the connection.
func (s *Store) Close() error {
	err := s.db.Close()
	if s.pool != nil {
		s.pool.Close()
	}
	return err
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (s *Store) rebind(query string) string {
	if !s.postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Save archives rec parsed from path and returns its new ID.
func (s *Store) Save(ctx context.Context, path string, rec *timesheet.Record) (uuid.UUID, error) {
	id := uuid.New()
	blob, err := json.Marshal(rec)
	if err != nil {
		return uuid.Nil, fmt.Errorf("encode record: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	h := rec.Header
	_, err = tx.ExecContext(ctx, s.rebind(`INSERT INTO documents
		(id, path, employee_id, employee_name, period_start, period_end, entries, issues, record, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		id.String(), path, h.EmployeeID, h.EmployeeName, dateText(h.PeriodStart), dateText(h.PeriodEnd),
		len(rec.Entries), len(rec.Issues), string(blob), s.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert document: %w", err)
	}

	insert := s.rebind(`INSERT INTO hours (document_id, key, day, hours) VALUES (?, ?, ?, ?)`)
	for _, row := range export.Rows(s.layout, []*timesheet.Record{rec}) {
		if _, err := tx.ExecContext(ctx, insert, id.String(), row.Key, row.Date.String(), row.Value); err != nil {
			return uuid.Nil, fmt.Errorf("insert hours: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("commit save: %w", err)
	}
	s.logger.Debug("store.saved", "id", id, "path", path, "entries", len(rec.Entries))
	return id, nil
}

const documentColumns = `id, path, employee_id, employee_name, period_start, period_end, entries, issues, created_at`

// List returns every archived document, newest first, without records.
func (s *Store) List(ctx context.Context) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+documentColumns+` FROM documents ORDER BY created_at DESC, path`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// Get loads one archived document with its record.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (Document, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+documentColumns+`, record FROM documents WHERE id = ?`), id.String())

	var blob string
	d, err := scanDocument(row, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Document{}, err
	}
	d.Record = new(timesheet.Record)
	if err := json.Unmarshal([]byte(blob), d.Record); err != nil {
		return Document{}, fmt.Errorf("decode record %s: %w", id, err)
	}
	return d, nil
}

// Hours returns every archived row charged to key, in day order.
func (s *Store) Hours(ctx context.Context, key string) ([]Hour, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT document_id, key, day, hours FROM hours WHERE key = ? ORDER BY day, document_id`), key)
	if err != nil {
		return nil, fmt.Errorf("query hours: %w", err)
	}
	defer rows.Close()

	var out []Hour
	for rows.Next() {
		var h Hour
		var id, day string
		if err := rows.Scan(&id, &h.Key, &day, &h.Hours); err != nil {
			return nil, fmt.Errorf("scan hours: %w", err)
		}
		if h.DocumentID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("scan hours: %w", err)
		}
		if err := h.Day.UnmarshalText([]byte(day)); err != nil {
			return nil, fmt.Errorf("scan hours: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(sc scanner, extra ...any) (Document, error) {
	var d Document
	var id, created string
	dest := append([]any{&id, &d.Path, &d.EmployeeID, &d.EmployeeName, &d.PeriodStart, &d.PeriodEnd, &d.Entries, &d.Issues, &created}, extra...)
	if err := sc.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, err
		}
		return Document{}, fmt.Errorf("scan document: %w", err)
	}
	var err error
	if d.ID, err = uuid.Parse(id); err != nil {
		return Document{}, fmt.Errorf("scan document: %w", err)
	}
	if d.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return Document{}, fmt.Errorf("scan document: %w", err)
	}
	return d, nil
}

func dateText(d timesheet.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}
