package files

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDerivedPaths(t *testing.T) {
	tmp := t.TempDir()

	mgr, err := NewManager(tmp)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	tests := []struct {
		name, got, want string
	}{
		{"TokenDumpPath", mgr.TokenDumpPath("/in/2019-09 Jane.pdf"), filepath.Join(tmp, "tokens", "2019-09 Jane.tokens.csv")},
		{"ExportPath", mgr.ExportPath("hours", ".xlsx"), filepath.Join(tmp, "exports", "hours.xlsx")},
		{"ArchivePath", mgr.ArchivePath(), filepath.Join(tmp, "archive.db")},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Fatalf("%s() = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}

func TestDocumentsFindsPDFAndCSVSorted(t *testing.T) {
	mgr, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if err := mgr.Ensure(); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	// Second ensure is a no-op.
	if err := mgr.Ensure(); err != nil {
		t.Fatalf("Ensure second call: %v", err)
	}

	if _, err := mgr.Documents(); !errors.Is(err, ErrNoDocuments) {
		t.Fatalf("Documents() on empty dir error = %v, want ErrNoDocuments", err)
	}

	sub := filepath.Join(mgr.DocumentsPath(), "2019")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	for _, name := range []string{"b.PDF", "notes.txt", "2019/a.csv"} {
		if err := os.WriteFile(filepath.Join(mgr.DocumentsPath(), name), nil, 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}

	got, err := mgr.Documents()
	if err != nil {
		t.Fatalf("Documents: %v", err)
	}
	want := []string{filepath.Join(sub, "a.csv"), filepath.Join(mgr.DocumentsPath(), "b.PDF")}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("Documents() = %v, want %v", got, want)
	}
}

func TestDocumentsMissingDirectory(t *testing.T) {
	mgr, err := NewManager(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if _, err := mgr.Documents(); !errors.Is(err, ErrNoDocuments) {
		t.Fatalf("Documents() error = %v, want ErrNoDocuments", err)
	}
}
