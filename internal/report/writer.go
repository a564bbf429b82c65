package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Tyorden/svustats/internal/crosstab"
)

// ErrUnsupportedFormat is returned for an unknown output format name.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// Writer renders documents and cross-tab tables.
type Writer interface {
	// Write outputs the full document.
	// Returns the number of bytes written and any error encountered.
	Write(doc *Document) (int, error)

	// WriteTables outputs one or more cross-tab tables.
	WriteTables(tables ...*crosstab.Table) (int, error)
}

// Format names an output format.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// Formats returns every supported format.
func Formats() []Format {
	return []Format{FormatText, FormatJSON, FormatCSV, FormatMarkdown, FormatHTML}
}

// ParseFormat resolves a format name. "md" and "txt" are accepted as
// aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// WriterOptions are the settings shared by NewWriter.
type WriterOptions struct {
	// Pretty indents JSON output.
	Pretty bool
	// Color enables ANSI colors in text output.
	Color bool
}

// NewWriter returns the writer for format f.
func NewWriter(f Format, output io.Writer, opts WriterOptions) (Writer, error) {
	switch f {
	case FormatText:
		return NewTextWriter(output, WithColor(opts.Color)), nil
	case FormatJSON:
		if opts.Pretty {
			return NewJSONWriter(output, WithPrettyPrint()), nil
		}
		return NewJSONWriter(output), nil
	case FormatCSV:
		return NewCSVWriter(output), nil
	case FormatMarkdown:
		return NewMarkdownWriter(output), nil
	case FormatHTML:
		return NewHTMLWriter(output), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
}

// MultiWriter writes to multiple Writers in order and stops on the first
// error.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the document to all configured Writers.
func (m *MultiWriter) Write(doc *Document) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(doc)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteTables outputs the tables to all configured Writers.
func (m *MultiWriter) WriteTables(tables ...*crosstab.Table) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteTables(tables...)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// countingWriter records how many bytes reach the underlying writer.
type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}
