package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoDataset is returned when no dataset name or path is set.
	ErrNoDataset = errors.New("no dataset specified: use --dataset with a bundled name or a file path")

	// ErrInvalidFormat is returned for an output format no writer handles.
	ErrInvalidFormat = errors.New("invalid format: must be text, json, csv, markdown or html")

	// ErrInvalidWorkers is returned when the worker count is negative.
	ErrInvalidWorkers = errors.New("invalid workers: must be non-negative (0 uses every CPU)")

	// ErrInvalidLogFormat is returned for a log format other than text or json.
	ErrInvalidLogFormat = errors.New("invalid log format: must be text or json")

	// ErrEmptySource is returned when a named dataset source has no path.
	ErrEmptySource = errors.New("dataset source has an empty path")
)
