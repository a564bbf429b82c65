package report

import (
	"encoding/json"
	"io"

	"github.com/Tyorden/svustats/internal/crosstab"
)

// JSONWriter outputs documents and tables as JSON. The output decodes back
// into the same Go values.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	indentPrefix string
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the document.
func (w *JSONWriter) Write(doc *Document) (int, error) {
	return w.writeJSON(doc)
}

// WriteTables outputs a single table as an object and several tables as
// an array.
func (w *JSONWriter) WriteTables(tables ...*crosstab.Table) (int, error) {
	if len(tables) == 1 {
		return w.writeJSON(tables[0])
	}
	if tables == nil {
		tables = []*crosstab.Table{}
	}
	return w.writeJSON(tables)
}

// writeJSON marshals v and writes it followed by a newline.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	data = append(data, '\n')

	return w.output.Write(data)
}
