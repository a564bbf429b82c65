// Package database stores datasets and report snapshots in SQLite.
//
// A dataset database is a delivery format: `svustats convert` writes the
// curated episodes and persons into one file, and the loader reads them
// back. Report snapshots let a user keep the documents they generated and
// list them later. The driver is modernc.org/sqlite, so no cgo is needed.
package database
