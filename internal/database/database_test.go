package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/Tyorden/svustats/internal/model"
	"github.com/Tyorden/svustats/internal/report"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "svustats.db"), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testDataset(name string) *model.Dataset {
	return model.NewDataset(name, "Law & Order", model.VariantLO,
		[]model.Episode{
			{CustomID: "S01E02", Season: "1", EpisodeNumber: "2", Title: "Subterranean Homeboy Blues", Summary: "A subway shooting.", HasFalseSuspect: "Y", HasPublicExposure: "Maybe", NeedsDeepReview: "N"},
			{CustomID: "S01E01", Season: "1", EpisodeNumber: "1", Title: "Prescription for Death", HasFalseSuspect: "N"},
		},
		[]model.Person{
			{CustomID: "S01E02", PersonID: "2", Season: "1", Name: "José", RoleInPlot: "red_herring", ConsequenceSeverity: "3", ProsecutorialConduct: "withheld_evidence", ProsecutorialApology: "none", Tags: "subway; press"},
			{CustomID: "S01E02", PersonID: "1", Season: "1", PoliceConductThreat: "verbal_threat", Quote: "\"We know it was you.\""},
		},
	)
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "newdir", "subdir", "data.db")
		db, err := Open(path, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(path); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
		if db.Path() != path {
			t.Errorf("Path() = %q, expected %q", db.Path(), path)
		}
	})

	t.Run("CreateIfNotExists=false fails for a missing file", func(t *testing.T) {
		t.Parallel()

		_, err := Open(filepath.Join(t.TempDir(), "missing.db"), Options{})
		if err == nil {
			t.Error("expected error for missing database")
		}
	})

	t.Run("rejects read-only creation", func(t *testing.T) {
		t.Parallel()

		_, err := Open(filepath.Join(t.TempDir(), "x.db"), Options{ReadOnly: true, CreateIfNotExists: true})
		if err == nil {
			t.Error("expected error for read-only creation")
		}
	})
}

// TestDatasetRoundTrip tests that a saved dataset loads back unchanged.
func TestDatasetRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := setupTestDB(t)
	ds := testDataset("lo")

	if err := db.SaveDataset(ctx, ds); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := db.LoadDataset(ctx, "lo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != ds.Name || got.Title != ds.Title || got.Variant != ds.Variant {
		t.Errorf("header mismatch: %s %q %s", got.Name, got.Title, got.Variant)
	}
	if diff := cmp.Diff(ds.Episodes, got.Episodes); diff != "" {
		t.Errorf("episodes mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(ds.Persons, got.Persons); diff != "" {
		t.Errorf("persons mismatch (-want +got):\n%s", diff)
	}

	t.Run("empty name selects the only dataset", func(t *testing.T) {
		only, err := db.LoadDataset(ctx, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if only.Name != "lo" {
			t.Errorf("got %q", only.Name)
		}
	})
}

// TestSaveDatasetReplaces tests that saving under an existing name
// replaces the earlier records.
func TestSaveDatasetReplaces(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := setupTestDB(t)

	ds := testDataset("lo")
	if err := db.SaveDataset(ctx, ds); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	smaller := model.NewDataset("lo", "Law & Order", model.VariantLO, ds.Episodes[:1], ds.Persons[:1])
	if err := db.SaveDataset(ctx, smaller); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	infos, err := db.ListDatasets(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(infos) != 1 || infos[0].Episodes != 1 || infos[0].Persons != 1 {
		t.Errorf("unexpected dataset list: %+v", infos)
	}
	if infos[0].SavedAt.IsZero() {
		t.Error("expected saved_at to be parsed")
	}
}

// TestLoadDatasetErrors tests lookup failures.
func TestLoadDatasetErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := setupTestDB(t)

	if _, err := db.LoadDataset(ctx, ""); !errors.Is(err, ErrDatasetNotFound) {
		t.Errorf("empty database: expected ErrDatasetNotFound, got %v", err)
	}
	if err := db.SaveDataset(ctx, testDataset("a")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := db.SaveDataset(ctx, testDataset("b")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := db.LoadDataset(ctx, "c"); !errors.Is(err, ErrDatasetNotFound) {
		t.Errorf("expected ErrDatasetNotFound, got %v", err)
	}
	if _, err := db.LoadDataset(ctx, ""); err == nil {
		t.Error("expected error when the name is ambiguous")
	}
	if err := db.SaveDataset(ctx, &model.Dataset{}); err == nil {
		t.Error("expected error for unnamed dataset")
	}
}

// TestReadOnly tests that a read-only handle reads but rejects writes.
func TestReadOnly(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ro.db")

	db, err := Open(path, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := db.SaveDataset(ctx, testDataset("lo")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = db.Close()

	ro, err := Open(path, Options{ReadOnly: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer ro.Close()

	if _, err := ro.LoadDataset(ctx, "lo"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ro.SaveDataset(ctx, testDataset("x")); !errors.Is(err, ErrReadOnly) {
		t.Errorf("expected ErrReadOnly, got %v", err)
	}
}

// TestReports tests report snapshot storage.
func TestReports(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := setupTestDB(t)
	ds := testDataset("lo")

	older := report.NewDocument(ds, nil, "v1")
	older.GeneratedAt = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	newer := report.NewDocument(ds, ds.Persons[:1], "v1")
	newer.Steps = []string{"summary"}

	for _, doc := range []*report.Document{older, newer} {
		if err := db.SaveReport(ctx, doc); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	history, err := db.ReportHistory(ctx, "lo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 2 || history[0].ID != newer.ID || history[1].ID != older.ID {
		t.Fatalf("unexpected history order: %+v", history)
	}
	if !history[1].GeneratedAt.Equal(older.GeneratedAt) || history[0].Selected != 1 {
		t.Errorf("unexpected metadata: %+v", history)
	}

	got, err := db.GetReport(ctx, newer.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(newer, got, cmpopts.IgnoreFields(report.Document{}, "Source", "Persons")); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}

	if _, err := db.GetReport(ctx, "nope"); !errors.Is(err, ErrReportNotFound) {
		t.Errorf("expected ErrReportNotFound, got %v", err)
	}
	if other, err := db.ReportHistory(ctx, "svu"); err != nil || len(other) != 0 {
		t.Errorf("expected empty history, got %v, %v", other, err)
	}
}
