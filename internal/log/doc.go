// Package log builds the slog loggers used by svustats.
//
// CompactHandler wraps any slog.Handler and shortens string attribute
// values before they reach it. Curated datasets carry long free text
// (episode summaries, quotes, curator notes), and a validation warning
// that echoes one of them should stay on one readable line. Truncation
// is measured in display columns so wide characters count correctly.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	logger.Warn("dataset warning", "quote", person.Quote)
//	slog.SetDefault(logger)
package log
