package main

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/Tyorden/svustats/internal/crosstab"
	"github.com/Tyorden/svustats/internal/database"
	"github.com/Tyorden/svustats/internal/model"
	"github.com/Tyorden/svustats/internal/pipeline"
	"github.com/Tyorden/svustats/internal/report"
	"github.com/Tyorden/svustats/internal/stats"
)

// TestNewCompareCmdFlags tests the compare command flags.
func TestNewCompareCmdFlags(t *testing.T) {
	t.Parallel()

	cmd := NewCompareCmd()
	testCases := []struct {
		name      string
		shorthand string
	}{
		{"list", "l"},
		{"list-datasets", "L"},
		{"with", "i"},
		{"since", "s"},
		{"output", "o"},
	}
	for _, tc := range testCases {
		flag := cmd.Flags().Lookup(tc.name)
		if flag == nil {
			t.Errorf("expected %s flag", tc.name)
			continue
		}
		if flag.Shorthand != tc.shorthand {
			t.Errorf("%s: expected shorthand %q, got %q", tc.name, tc.shorthand, flag.Shorthand)
		}
	}
}

func testSnapshot(id string, at time.Time, selected, severe int) *report.Document {
	return &report.Document{
		ID:          id,
		GeneratedAt: at,
		Dataset:     report.DatasetInfo{Name: "svu", Selected: selected, Fingerprint: "abc"},
		Summary:     stats.Summary{Episodes: 9, AverageSeverity: 2.5},
		Severity: stats.SeverityBreakdown{Buckets: []stats.SeverityBucket{
			{Code: "4", Label: "Severe", Count: severe},
		}},
		Harm: stats.HarmSummary{Classes: []stats.HarmCount{{Harm: stats.HarmMurdered, Count: 1}}, Harmed: 1},
		Tables: []*crosstab.Table{{
			XField:  model.FieldSeason,
			YField:  model.FieldSeverity,
			Columns: []string{"4"},
			Rows:    []crosstab.Row{{XValue: "1", Counts: map[string]int{"4": severe}}},
		}},
	}
}

// TestCompareReports tests the differences between two snapshots.
func TestCompareReports(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	previous := testSnapshot("a", at, 15, 5)
	current := testSnapshot("b", at.Add(time.Hour), 12, 3)
	current.Dataset.Fingerprint = "def"

	result := compareReports(previous, current)

	if !result.DataChanged {
		t.Error("expected data change")
	}
	if result.Previous.ID != "a" || result.Current.ID != "b" {
		t.Errorf("unexpected ids %s, %s", result.Previous.ID, result.Current.ID)
	}

	deltas := map[string]float64{}
	for _, m := range result.Metrics {
		deltas[m.Metric] = m.Delta
	}
	want := map[string]float64{
		"Episodes":         0,
		"Persons":          -3,
		"Average severity": 0,
		"Severity: Severe": -2,
		"Harm: murdered":   0,
		"Harmed":           0,
	}
	if diff := cmp.Diff(want, deltas); diff != "" {
		t.Errorf("metric deltas mismatch (-want +got):\n%s", diff)
	}

	if len(result.Tables) != 1 {
		t.Fatalf("expected 1 table change, got %d", len(result.Tables))
	}
	if result.Tables[0].ChangedCells != 1 {
		t.Errorf("expected 1 changed cell, got %d", result.Tables[0].ChangedCells)
	}
}

// TestChangedCells tests cell differences including missing cells.
func TestChangedCells(t *testing.T) {
	t.Parallel()

	previous := &crosstab.Table{Rows: []crosstab.Row{
		{XValue: "1", Counts: map[string]int{"a": 1, "b": 2}},
		{XValue: "2", Counts: map[string]int{"a": 1}},
	}}
	current := &crosstab.Table{Rows: []crosstab.Row{
		{XValue: "1", Counts: map[string]int{"a": 1, "b": 3}},
		{XValue: "3", Counts: map[string]int{"a": 1}},
	}}

	// b changed in row 1, row 2 vanished, row 3 appeared.
	if got := changedCells(previous, current); got != 3 {
		t.Errorf("expected 3 changed cells, got %d", got)
	}
	if got := changedCells(current, current); got != 0 {
		t.Errorf("expected 0 changed cells, got %d", got)
	}
}

// TestFormatDelta tests signed delta formatting.
func TestFormatDelta(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		delta    float64
		expected string
	}{
		{3, "+3"},
		{-2, "-2"},
		{0, "-"},
		{0.25, "+0.25"},
		{-1.5, "-1.50"},
	}
	for _, tc := range testCases {
		if got := formatDelta(tc.delta); got != tc.expected {
			t.Errorf("formatDelta(%v) = %q, expected %q", tc.delta, got, tc.expected)
		}
	}
}

// TestCompareCmdFiles tests comparing two exported reports.
func TestCompareCmdFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	before := filepath.Join(dir, "before.json")
	after := filepath.Join(dir, "after.json")
	if _, err := runCLI(t, "report", "-o", before); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := runCLI(t, "report", "--season", "1", "-o", after); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, err := runCLI(t, "compare", before, after, "-f", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result := decodeJSON[ComparisonResult](t, out)
	if result.Previous.Selected != 15 || result.Current.Selected != 3 {
		t.Errorf("expected 15 -> 3 persons, got %d -> %d", result.Previous.Selected, result.Current.Selected)
	}

	if _, err := runCLI(t, "compare", before, filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for a missing report")
	}
}

// TestCompareCmdIntegration tests saving snapshots and comparing them.
func TestCompareCmdIntegration(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "snapshots.db")

	if _, err := runCLI(t, "--db", dbPath, "compare", "svu"); err == nil {
		t.Error("expected error without a database")
	}

	if _, err := runCLI(t, "--db", dbPath, "report", "--save", "-f", "json"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := runCLI(t, "--db", dbPath, "compare", "svu"); err == nil {
		t.Error("expected error with a single snapshot")
	}

	if _, err := runCLI(t, "--db", dbPath, "report", "--save", "--severity", "4", "-f", "json"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("latest two", func(t *testing.T) {
		t.Parallel()
		out, err := runCLI(t, "--db", dbPath, "compare", "svu", "-f", "json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		result := decodeJSON[ComparisonResult](t, out)
		if result.DataChanged {
			t.Error("expected unchanged data")
		}
		if result.Previous.Selected != 15 || result.Current.Selected != 5 {
			t.Errorf("expected 15 -> 5 persons, got %d -> %d", result.Previous.Selected, result.Current.Selected)
		}
		if len(result.Tables) != len(pipeline.DefaultPairs) {
			t.Errorf("expected %d table changes, got %d", len(pipeline.DefaultPairs), len(result.Tables))
		}
	})

	t.Run("history", func(t *testing.T) {
		t.Parallel()
		out, err := runCLI(t, "--db", dbPath, "compare", "--list", "svu")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "2 snapshots") {
			t.Errorf("expected 2 snapshots, got %q", out)
		}
	})

	t.Run("datasets", func(t *testing.T) {
		t.Parallel()
		out, err := runCLI(t, "--db", dbPath, "compare", "--list-datasets", "-f", "json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		counts := decodeJSON[map[string]int](t, out)
		if counts["svu"] != 2 {
			t.Errorf("expected 2 svu snapshots, got %v", counts)
		}
	})

	t.Run("with unknown id", func(t *testing.T) {
		t.Parallel()
		_, err := runCLI(t, "--db", dbPath, "compare", "--with", "missing", "svu")
		if !errors.Is(err, database.ErrReportNotFound) {
			t.Errorf("expected ErrReportNotFound, got %v", err)
		}
	})

	t.Run("since the future", func(t *testing.T) {
		t.Parallel()
		if _, err := runCLI(t, "--db", dbPath, "compare", "--since", "2999-01-01", "svu"); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("invalid since", func(t *testing.T) {
		t.Parallel()
		if _, err := runCLI(t, "--db", dbPath, "compare", "--since", "yesterday", "svu"); err == nil {
			t.Error("expected error")
		}
	})
}

// TestReportAllSave tests that every bundled report is saved as a snapshot.
func TestReportAllSave(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "snapshots.db")
	if _, err := runCLI(t, "--db", dbPath, "report", "--all", "--save", "-f", "json"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, err := runCLI(t, "--db", dbPath, "compare", "--list-datasets", "-f", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	counts := decodeJSON[map[string]int](t, out)
	if diff := cmp.Diff(map[string]int{"lo": 1, "svu": 1}, counts); diff != "" {
		t.Errorf("snapshot counts mismatch (-want +got):\n%s", diff)
	}
}
