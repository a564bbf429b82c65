package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"

	"github.com/Tyorden/svustats/internal/report"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "svustats"

	// EnvPrefix prefixes environment overrides, e.g. SVUSTATS_FORMAT.
	EnvPrefix = "SVUSTATS"

	// DefaultDataset is the bundled dataset used when none is named.
	DefaultDataset = "svu"

	// DefaultFormat is the output format of reports and tables.
	DefaultFormat = "text"

	// DefaultWorkers of zero lets cross-tabulation use every CPU.
	DefaultWorkers = 0

	// DefaultLogFormat writes human readable log lines.
	DefaultLogFormat = "text"
)

// Config holds every setting of a svustats run.
type Config struct {
	// Dataset is a bundled dataset name ("svu", "lo"), a key of Sources,
	// or a path to a dataset file.
	Dataset string `mapstructure:"dataset" yaml:"dataset"`

	// Formatted replaces raw codes with display labels in cross-tabs.
	Formatted bool `mapstructure:"formatted" yaml:"formatted"`

	// MergeOnLabel sums codes that share a label instead of suffixing them.
	MergeOnLabel bool `mapstructure:"merge_on_label" yaml:"merge_on_label"`

	// Format is the output format: text, json, csv, markdown or html.
	Format string `mapstructure:"format" yaml:"format"`

	// Workers bounds cross-tab goroutines; zero means GOMAXPROCS.
	Workers int `mapstructure:"workers" yaml:"workers"`

	// Color enables severity colors in text output.
	Color bool `mapstructure:"color" yaml:"color"`

	// LogFormat is "text" or "json".
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	// Verbose enables debug logging.
	Verbose bool `mapstructure:"verbose" yaml:"verbose"`

	// DBPath is the SQLite file report snapshots are saved to. Empty
	// means DefaultDBPath.
	DBPath string `mapstructure:"db_path" yaml:"db_path,omitempty"`

	// Sources names dataset files, so that `--dataset mine` can stand for
	// a long path.
	Sources map[string]string `mapstructure:"sources" yaml:"sources,omitempty"`

	// ConfigFilePath is the file the configuration was read from. It is
	// not itself read from the file.
	ConfigFilePath string `mapstructure:"-" yaml:"-"`
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		Dataset:   DefaultDataset,
		Format:    DefaultFormat,
		Workers:   DefaultWorkers,
		LogFormat: DefaultLogFormat,
		Sources:   map[string]string{},
	}
}

// XDGConfigDir returns the XDG config directory for svustats.
// On Linux: ~/.config/svustats
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGDataDir returns the XDG data directory for svustats.
// On Linux: ~/.local/share/svustats
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// ResolveDBPath returns DBPath, or DefaultDBPath when it is empty.
func (c *Config) ResolveDBPath() string {
	if c.DBPath != "" {
		return c.DBPath
	}
	return DefaultDBPath()
}

// DefaultDBPath returns the snapshot database inside the XDG data directory.
func DefaultDBPath() string {
	return filepath.Join(XDGDataDir(), AppName+".db")
}

// ResolveDataset maps Dataset through Sources. Source names are matched
// case-insensitively because viper lowercases map keys. A name without a
// source entry is returned unchanged.
func (c *Config) ResolveDataset() string {
	name := strings.TrimSpace(c.Dataset)
	if path, ok := c.Sources[strings.ToLower(name)]; ok {
		return path
	}
	return name
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Dataset) == "" {
		return ErrNoDataset
	}
	if _, err := report.ParseFormat(c.Format); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidFormat, c.Format)
	}
	if c.Workers < 0 {
		return ErrInvalidWorkers
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.LogFormat)
	}
	for name, path := range c.Sources {
		if strings.TrimSpace(path) == "" {
			return fmt.Errorf("%w: %s", ErrEmptySource, name)
		}
	}
	return nil
}
