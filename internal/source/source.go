// Package source produces token streams for the engine: from PDFs and from
// CSV token dumps written by WriteCSV.
package source

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/faizmokh/timesheets/internal/token"
)

// ErrUnsupportedFormat is returned for files Open has no reader for.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Open loads a document, choosing the reader by extension (.pdf or .csv).
func Open(ctx context.Context, path string) (token.Document, error) {
	if err := ctx.Err(); err != nil {
		return token.Document{}, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return ReadPDF(path)
	case ".csv":
		return ReadCSVFile(path)
	}
	return token.Document{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// DocumentName is the file's base name without extension.
func DocumentName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
