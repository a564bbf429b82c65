package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// nopCloser wraps stdout so closing it is a no-op.
type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// gzipFile closes the gzip stream before the file.
type gzipFile struct {
	*gzip.Writer
	file *os.File
}

func (g *gzipFile) Close() error {
	if err := g.Writer.Close(); err != nil {
		_ = g.file.Close()
		return fmt.Errorf("close gzip stream: %w", err)
	}
	return g.file.Close()
}

// OpenOutput opens the destination of a report. An empty path or "-"
// means stdout. A path ending in ".gz" is gzip compressed. Parent
// directories are created as needed.
func OpenOutput(path string, stdout io.Writer) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{stdout}, nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".gz") {
		return &gzipFile{Writer: gzip.NewWriter(f), file: f}, nil
	}
	return f, nil
}

// FormatFromPath guesses the output format from a file extension,
// ignoring a trailing ".gz". ok is false when the extension is unknown.
func FormatFromPath(path string) (Format, bool) {
	p := strings.ToLower(path)
	p = strings.TrimSuffix(p, ".gz")
	switch filepath.Ext(p) {
	case ".json":
		return FormatJSON, true
	case ".csv":
		return FormatCSV, true
	case ".md", ".markdown":
		return FormatMarkdown, true
	case ".html", ".htm":
		return FormatHTML, true
	case ".txt":
		return FormatText, true
	default:
		return "", false
	}
}
