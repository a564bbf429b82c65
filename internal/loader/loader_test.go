package loader

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Tyorden/svustats/internal/database"
	"github.com/Tyorden/svustats/internal/model"
)

const jsonDataset = `{
  "name": "svu",
  "title": "Special Victims",
  "variant": "svu",
  "episodes": [
    {"custom_id": "S01E01", "season": "1", "episode_number": "1", "title": "Payback", "has_false_suspect": "Y", "has_public_exposure": "N", "needs_deep_review": "N"}
  ],
  "persons": [
    {"custom_id": "S01E01", "person_id_in_episode": "1", "season": "1", "role_in_plot": "red_herring", "consequence_severity": "3", "police_conduct_threat": "verbal_threat", "police_apology": "none"}
  ]
}`

const yamlDataset = `name: lo
title: Law & Order
episodes:
  - custom_id: S02E05
    season: 2
    episode_number: 5
    title: Trial
    has_false_suspect: Y
persons:
  - custom_id: S02E05
    person_id_in_episode: 1
    season: 2
    prosecutorial_conduct: withheld_evidence
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// TestLoadJSON tests loading a JSON dataset document.
func TestLoadJSON(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "svu.json", jsonDataset)
	ds, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ds.Name != "svu" || ds.Variant != model.VariantSVU || len(ds.Episodes) != 1 || len(ds.Persons) != 1 {
		t.Errorf("unexpected dataset: %s %s %d %d", ds.Name, ds.Variant, len(ds.Episodes), len(ds.Persons))
	}
	if ds.Persons[0].PoliceConductThreat != "verbal_threat" {
		t.Errorf("got %q", ds.Persons[0].PoliceConductThreat)
	}
}

// TestLoadYAML tests loading YAML with numeric scalars and variant inference.
func TestLoadYAML(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "lo.yml", yamlDataset)
	ds, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ds.Variant != model.VariantLO {
		t.Errorf("expected inferred lo variant, got %s", ds.Variant)
	}
	if ds.Episodes[0].Season != "2" || ds.Persons[0].PersonID != "1" {
		t.Errorf("numeric scalars not read as strings: %+v %+v", ds.Episodes[0], ds.Persons[0])
	}
	if ds.Episodes[0].HasFalseSuspect != model.FlagYes {
		t.Errorf("got flag %q", ds.Episodes[0].HasFalseSuspect)
	}
}

// TestLoadDelimited tests CSV and TSV persons files.
func TestLoadDelimited(t *testing.T) {
	t.Parallel()

	t.Run("csv with episodes file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := writeFile(t, dir, "svu.csv",
			"\ufeffcustom_id,person_id_in_episode,season,role_in_plot,consequence_description,extra\n"+
				"S01E01,1,1,red_herring,\"Lost his job, then his home\",ignored\n"+
				"S01E02,1,1,framed,,\n")
		writeFile(t, dir, "svu.episodes.csv",
			"custom_id,season,episode_number,title,has_false_suspect\n"+
				"S01E01,1,1,Payback,Y\n"+
				"S01E02,1,2,Hysteria,N\n")

		ds, err := Load(context.Background(), path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ds.Name != "svu" || ds.Title != "svu" {
			t.Errorf("name from file: got %q / %q", ds.Name, ds.Title)
		}
		if len(ds.Persons) != 2 || ds.Persons[0].ConsequenceDescription != "Lost his job, then his home" {
			t.Errorf("unexpected persons: %+v", ds.Persons)
		}
		if ep, ok := ds.Episode("S01E02"); !ok || ep.Title != "Hysteria" {
			t.Errorf("episode lookup: %+v, %v", ep, ok)
		}
	})

	t.Run("tsv without episodes file", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, t.TempDir(), "lo.tsv",
			"custom_id\tseason\tprosecutorial_apology\n"+
				"S03E01\t3\tformal\n"+
				"S03E01\t3\t\n"+
				"S03E04\t3\tnone\n")

		ds, err := Load(context.Background(), path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []model.Episode{{CustomID: "S03E01", Season: "3"}, {CustomID: "S03E04", Season: "3"}}
		if diff := cmp.Diff(want, ds.Episodes); diff != "" {
			t.Errorf("derived episodes mismatch (-want +got):\n%s", diff)
		}
		if ds.Variant != model.VariantLO {
			t.Errorf("expected lo, got %s", ds.Variant)
		}
	})

	t.Run("missing custom_id column", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, t.TempDir(), "bad.csv", "season,name\n1,x\n")
		if _, err := Load(context.Background(), path); err == nil {
			t.Error("expected error for missing custom_id column")
		}
	})
}

// TestLoadSQLite tests reading a converted database.
func TestLoadSQLite(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	src, err := Load(ctx, writeFile(t, dir, "svu.json", jsonDataset))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dbPath := filepath.Join(dir, "svu.db")
	db, err := database.Open(dbPath, database.DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := db.SaveDataset(ctx, src); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = db.Close()

	ds, err := New(WithDatasetName("svu")).Load(ctx, dbPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(src.Persons, ds.Persons); diff != "" {
		t.Errorf("persons mismatch (-want +got):\n%s", diff)
	}
}

// TestLoadErrors tests rejected inputs.
func TestLoadErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testCases := []struct {
		name    string
		file    string
		content string
		target  error
	}{
		{"unsupported extension", "data.xml", "<x/>", ErrUnsupportedFormat},
		{"duplicate episode", "dup.json", `{"episodes":[{"custom_id":"A"},{"custom_id":"A"}]}`, model.ErrDuplicateEpisode},
		{"unknown variant", "v.json", `{"variant":"csi"}`, model.ErrUnknownVariant},
		{"unknown key", "k.json", `{"nmae":"typo"}`, nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			path := writeFile(t, dir, tc.file, tc.content)
			_, err := Load(context.Background(), path)
			if err == nil {
				t.Fatal("expected error")
			}
			if tc.target != nil && !errors.Is(err, tc.target) {
				t.Errorf("expected %v, got %v", tc.target, err)
			}
		})
	}

	if _, err := Load(context.Background(), filepath.Join(dir, "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

// TestLoadLogsWarnings tests that validation warnings reach the logger.
func TestLoadLogsWarnings(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	path := writeFile(t, t.TempDir(), "orphans.json",
		`{"episodes":[],"persons":[{"custom_id":"S09E09"}]}`)

	if _, err := New(WithLogger(logger)).Load(context.Background(), path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "S09E09") {
		t.Errorf("expected orphan warning, got %q", buf.String())
	}
}

// TestEpisodesPath tests sibling file naming.
func TestEpisodesPath(t *testing.T) {
	t.Parallel()

	testCases := map[string]string{
		"svu.csv":          "svu.episodes.csv",
		"data/lo.tsv":      "data/lo.episodes.tsv",
		"dir.v2/persons":   "dir.v2/persons.episodes",
		"/tmp/a.b/svu.csv": "/tmp/a.b/svu.episodes.csv",
	}
	for in, want := range testCases {
		if got := EpisodesPath(in); got != want {
			t.Errorf("EpisodesPath(%q) = %q, expected %q", in, got, want)
		}
	}
}
