package log

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Default truncation widths, in display columns.
const (
	// DefaultMaxWidth bounds every string attribute value.
	DefaultMaxWidth = 160

	// FreeTextWidth bounds attributes whose key names a free-text field.
	FreeTextWidth = 48

	// Ellipsis marks a truncated value.
	Ellipsis = "…"
)

// freeTextKeys are attribute keys that carry curated prose.
var freeTextKeys = map[string]bool{
	"quote":                   true,
	"notes":                   true,
	"summary":                 true,
	"description":             true,
	"consequence_description": true,
	"tags":                    true,
}

// CompactHandler wraps an slog.Handler and truncates long string values.
type CompactHandler struct {
	handler  slog.Handler
	maxWidth int
}

// NewCompactHandler wraps handler. A maxWidth of zero or less uses
// DefaultMaxWidth. If handler is nil, slog.Default().Handler() is used.
func NewCompactHandler(handler slog.Handler, maxWidth int) *CompactHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}
	return &CompactHandler{handler: handler, maxWidth: maxWidth}
}

// Enabled delegates to the wrapped handler.
func (h *CompactHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle shortens the record's attributes and passes it on.
func (h *CompactHandler) Handle(ctx context.Context, r slog.Record) error {
	compact := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		compact.AddAttrs(h.compactAttr(a))
		return true
	})
	return h.handler.Handle(ctx, compact)
}

// WithAttrs returns a handler with the given attributes, shortened.
func (h *CompactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	compacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		compacted[i] = h.compactAttr(a)
	}
	return &CompactHandler{handler: h.handler.WithAttrs(compacted), maxWidth: h.maxWidth}
}

// WithGroup returns a handler with the given group name.
func (h *CompactHandler) WithGroup(name string) slog.Handler {
	return &CompactHandler{handler: h.handler.WithGroup(name), maxWidth: h.maxWidth}
}

func (h *CompactHandler) compactAttr(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		compacted := make([]slog.Attr, len(attrs))
		for i, ga := range attrs {
			compacted[i] = h.compactAttr(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(compacted...)}
	}
	if a.Value.Kind() != slog.KindString {
		return a
	}

	width := h.maxWidth
	if freeTextKeys[strings.ToLower(a.Key)] && FreeTextWidth < width {
		width = FreeTextWidth
	}
	return slog.String(a.Key, Shorten(a.Value.String(), width))
}

// Shorten collapses whitespace runs in s and truncates it to width display
// columns, ending in Ellipsis when something was cut.
func Shorten(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, Ellipsis)
}

func level(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

// NewLogger returns a text logger at Warn level, or Debug when verbose.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	textHandler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level(verbose)})
	return slog.New(NewCompactHandler(textHandler, 0))
}

// NewJSONLogger returns a JSON logger at Warn level, or Debug when verbose.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	jsonHandler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level(verbose)})
	return slog.New(NewCompactHandler(jsonHandler, 0))
}

// New returns a JSON logger when format is "json" and a text logger
// otherwise.
func New(w io.Writer, format string, verbose bool) *slog.Logger {
	if strings.EqualFold(format, "json") {
		return NewJSONLogger(w, verbose)
	}
	return NewLogger(w, verbose)
}
