package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the per-directory configuration file name.
const DefaultConfigFile = ".svustats.yaml"

// ErrConfigNotFound is returned when an explicitly named configuration
// file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// flagKeys maps command line flag names to configuration keys.
var flagKeys = map[string]string{
	"dataset":        "dataset",
	"formatted":      "formatted",
	"merge-on-label": "merge_on_label",
	"format":         "format",
	"workers":        "workers",
	"color":          "color",
	"log-format":     "log_format",
	"verbose":        "verbose",
	"db":             "db_path",
}

// FindConfigFile returns the configuration file to read:
// 1. configPath when it is set
// 2. config.yaml in the XDG config directory
// 3. .svustats.yaml in the current directory
// 4. .svustats.yaml in the home directory
//
// It returns "" when no file exists.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	candidates := []string{filepath.Join(XDGConfigDir(), "config.yaml")}
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

// Load builds the configuration. Precedence: flags that were set > env
// (SVUSTATS_*) > config file > defaults. fs may be nil.
func Load(configPath string, fs *pflag.FlagSet) (*Config, error) {
	defaults := NewConfig()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("dataset", defaults.Dataset)
	v.SetDefault("formatted", defaults.Formatted)
	v.SetDefault("merge_on_label", defaults.MergeOnLabel)
	v.SetDefault("format", defaults.Format)
	v.SetDefault("workers", defaults.Workers)
	v.SetDefault("color", defaults.Color)
	v.SetDefault("log_format", defaults.LogFormat)
	v.SetDefault("verbose", defaults.Verbose)
	v.SetDefault("db_path", defaults.DBPath)
	v.SetDefault("sources", map[string]string{})

	path := FindConfigFile(configPath)
	if configPath != "" && path == "" {
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.Sources == nil {
		c.Sources = map[string]string{}
	}
	c.ConfigFilePath = path
	return &c, nil
}

// Save writes c as YAML to path, creating the directory when needed.
func Save(c *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
