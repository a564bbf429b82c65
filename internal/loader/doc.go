// Package loader reads datasets from files.
//
// The format follows the file extension: JSON and YAML documents hold a
// whole dataset, CSV and TSV files hold persons with an optional sibling
// episodes file, and SQLite files are read through the database package.
package loader
