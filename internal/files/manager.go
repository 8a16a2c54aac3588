package files

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

const (
	dirPermissions = 0o755

	documentsDir = "documents"
	tokensDir    = "tokens"
	exportsDir   = "exports"
	archiveFile  = "archive.db"
)

// ErrNoDocuments is returned when the documents directory holds nothing to parse.
var ErrNoDocuments = errors.New("no timesheet documents found")

// Manager centralizes where documents and their derived files live on disk.
//
//	<base>/documents/   source PDFs and token CSVs
//	<base>/tokens/      token dumps written by `timesheets tokens`
//	<base>/exports/     flattened exports
//	<base>/archive.db   default SQLite archive
type Manager struct {
	basePath string
}

// NewManager constructs a Manager rooted at the provided directory. If basePath
// is empty, it falls back to ResolveBasePath.
func NewManager(basePath string) (*Manager, error) {
	var err error
	if basePath == "" {
		basePath, err = ResolveBasePath()
		if err != nil {
			return nil, err
		}
	}
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, err
	}

	return &Manager{basePath: abs}, nil
}

// BasePath returns the document home.
func (m *Manager) BasePath() string {
	return m.basePath
}

// DocumentsPath is the directory scanned by Documents.
func (m *Manager) DocumentsPath() string {
	return filepath.Join(m.basePath, documentsDir)
}

// Ensure creates the directory tree. It is safe to call repeatedly.
func (m *Manager) Ensure() error {
	if m == nil {
		return errors.New("files.Manager is nil")
	}
	for _, dir := range []string{documentsDir, tokensDir, exportsDir} {
		if err := os.MkdirAll(filepath.Join(m.basePath, dir), dirPermissions); err != nil {
			return fmt.Errorf("create directories: %w", err)
		}
	}
	return nil
}

// Documents lists parseable files (.pdf, .csv) under the documents
// directory, sorted by path.
func (m *Manager) Documents() ([]string, error) {
	var paths []string
	err := filepath.WalkDir(m.DocumentsPath(), func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && IsDocument(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoDocuments
	}
	if err != nil {
		return nil, fmt.Errorf("scan documents: %w", err)
	}
	if len(paths) == 0 {
		return nil, ErrNoDocuments
	}
	slices.Sort(paths)
	return paths, nil
}

// IsDocument reports whether path has an extension the sources can read.
func IsDocument(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".csv":
		return true
	}
	return false
}

// TokenDumpPath is where the token dump of document path is written.
func (m *Manager) TokenDumpPath(path string) string {
	return filepath.Join(m.basePath, tokensDir, stem(path)+".tokens.csv")
}

// ExportPath is where an export named name with extension ext is written.
func (m *Manager) ExportPath(name, ext string) string {
	return filepath.Join(m.basePath, exportsDir, name+"."+strings.TrimPrefix(ext, "."))
}

// ArchivePath is the default SQLite archive.
func (m *Manager) ArchivePath() string {
	return filepath.Join(m.basePath, archiveFile)
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
