package loader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Tyorden/svustats/internal/database"
	"github.com/Tyorden/svustats/internal/model"
)

// ErrUnsupportedFormat is returned for files whose extension has no reader.
var ErrUnsupportedFormat = errors.New("unsupported dataset format")

// Format is a dataset file format.
type Format string

const (
	// FormatJSON is a JSON dataset document.
	FormatJSON Format = "json"
	// FormatYAML is a YAML dataset document.
	FormatYAML Format = "yaml"
	// FormatCSV is a comma separated persons file.
	FormatCSV Format = "csv"
	// FormatTSV is a tab separated persons file.
	FormatTSV Format = "tsv"
	// FormatSQLite is a database written by `svustats convert`.
	FormatSQLite Format = "sqlite"
)

// DetectFormat maps a file extension to its format.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".csv":
		return FormatCSV, nil
	case ".tsv":
		return FormatTSV, nil
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Loader reads and validates dataset files.
type Loader struct {
	logger *slog.Logger
	// name selects a dataset inside a SQLite file.
	name string
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger validation warnings are written to.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithDatasetName selects the dataset to read from a SQLite file that
// holds more than one.
func WithDatasetName(name string) Option {
	return func(l *Loader) {
		l.name = name
	}
}

// New creates a Loader.
func New(opts ...Option) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	return l
}

// Load reads a dataset with a default Loader.
func Load(ctx context.Context, path string) (*model.Dataset, error) {
	return New().Load(ctx, path)
}

// Load reads the dataset at path and validates it. Validation warnings
// are logged; a duplicate episode id is an error.
func (l *Loader) Load(ctx context.Context, path string) (*model.Dataset, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	var ds *model.Dataset
	switch format {
	case FormatSQLite:
		ds, err = l.loadSQLite(ctx, path)
	case FormatCSV, FormatTSV:
		ds, err = loadDelimited(path, format)
	default:
		ds, err = loadDocument(path, format)
	}
	if err != nil {
		return nil, err
	}

	if ds.Name == "" {
		ds.Name = baseName(path)
	}
	if ds.Title == "" {
		ds.Title = ds.Name
	}
	if ds.Variant == "" {
		ds.Variant = inferVariant(ds.Persons)
	} else if ds.Variant, err = model.ParseVariant(string(ds.Variant)); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	warnings, err := ds.Validate()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for _, w := range warnings {
		l.logger.Warn("dataset warning", "path", path, "warning", w)
	}
	l.logger.Debug("dataset loaded",
		"path", path,
		"name", ds.Name,
		"variant", ds.Variant,
		"episodes", len(ds.Episodes),
		"persons", len(ds.Persons),
	)
	return ds, nil
}

func (l *Loader) loadSQLite(ctx context.Context, path string) (*model.Dataset, error) {
	db, err := database.Open(path, database.Options{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return db.LoadDataset(ctx, l.name)
}

// Decode reads a JSON or YAML dataset document from r.
func Decode(r io.Reader, format Format) (*model.Dataset, error) {
	var ds model.Dataset
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&ds); err != nil {
			return nil, fmt.Errorf("failed to decode JSON dataset: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&ds); err != nil {
			return nil, fmt.Errorf("failed to decode YAML dataset: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	return &ds, nil
}

func loadDocument(path string, format Format) (*model.Dataset, error) {
	f, err := os.Open(path) //nolint:gosec // path is chosen by the user
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	ds, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// inferVariant picks VariantLO when any person carries prosecutorial codes.
func inferVariant(persons []model.Person) model.Variant {
	for _, p := range persons {
		if strings.TrimSpace(p.ProsecutorialConduct) != "" || strings.TrimSpace(p.ProsecutorialApology) != "" {
			return model.VariantLO
		}
	}
	return model.VariantSVU
}

func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
