package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/faizmokh/timesheets/internal/layout"
	"github.com/faizmokh/timesheets/internal/timesheet"
	"github.com/faizmokh/timesheets/internal/timesheet/timesheettest"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "archive.db"), layout.Default(), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func parsed(t *testing.T) *timesheet.Record {
	t.Helper()
	doc := timesheettest.New().
		Entry(1, "HOL", "", "").
		Week("Sep 2, 2019", []string{"8.00"}, "8.00").
		LineTotal("8.00").
		Summary().
		Document()
	rec, err := timesheet.NewParser().Parse(doc)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return rec
}

func TestSaveGetRoundTrip(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	rec := parsed(t)

	id, err := s.Save(ctx, "sheets/jane.pdf", rec)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Path != "sheets/jane.pdf" || got.EmployeeID != "109015" || got.PeriodStart != "2019-09-02" {
		t.Fatalf("document = %+v", got)
	}
	if len(got.Record.Entries) != 1 {
		t.Fatalf("len(Entries) = %d, want 1", len(got.Record.Entries))
	}
	monday := timesheet.Date{Year: 2019, Month: time.September, Day: 2}
	if h := got.Record.Entries[0].Hours[monday]; h.String() != "8" {
		t.Fatalf("Hours[%s] = %s, want 8", monday, h)
	}
}

func TestListNewestFirst(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	for i, path := range []string{"a.pdf", "b.pdf"} {
		s.now = func() time.Time { return base.Add(time.Duration(i) * time.Hour) }
		if _, err := s.Save(ctx, path, parsed(t)); err != nil {
			t.Fatalf("Save(%s): %v", path, err)
		}
	}

	docs, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(docs) != 2 || docs[0].Path != "b.pdf" || docs[1].Path != "a.pdf" {
		t.Fatalf("List() = %+v", docs)
	}
	if docs[0].Record != nil {
		t.Fatalf("List() filled Record")
	}
	if docs[0].Entries != 1 {
		t.Fatalf("Entries = %d, want 1", docs[0].Entries)
	}
}

func TestHoursByKey(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	id, err := s.Save(ctx, "a.pdf", parsed(t))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	rows, err := s.Hours(ctx, "HOL")
	if err != nil {
		t.Fatalf("Hours: %v", err)
	}
	if len(rows) != 1 || rows[0].DocumentID != id || rows[0].Hours != "8.00" || rows[0].Day.Day != 2 {
		t.Fatalf("Hours(HOL) = %+v", rows)
	}
}

func TestGetUnknownID(t *testing.T) {
	s := openTemp(t)
	if _, err := s.Get(context.Background(), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestRebind(t *testing.T) {
	s := &Store{postgres: true}
	if got := s.rebind("a = ? AND b = ?"); got != "a = $1 AND b = $2" {
		t.Fatalf("rebind = %q", got)
	}
	s.postgres = false
	if got := s.rebind("a = ?"); got != "a = ?" {
		t.Fatalf("rebind = %q", got)
	}
}
