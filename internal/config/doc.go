// Package config holds the svustats settings and loads them from flags,
// environment variables and a YAML file.
package config
