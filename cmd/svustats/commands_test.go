package main

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Tyorden/svustats/internal/crosstab"
	"github.com/Tyorden/svustats/internal/definition"
	"github.com/Tyorden/svustats/internal/loader"
	"github.com/Tyorden/svustats/internal/model"
	"github.com/Tyorden/svustats/internal/report"
	"github.com/Tyorden/svustats/internal/stats"
)

func decodeJSON[T any](t *testing.T, data string) T {
	t.Helper()
	var v T
	if err := json.Unmarshal([]byte(data), &v); err != nil {
		t.Fatalf("failed to decode output: %v\n%s", err, data)
	}
	return v
}

// TestCrossTabCmd tests cross-tabulation of the bundled dataset.
func TestCrossTabCmd(t *testing.T) {
	t.Parallel()

	t.Run("json table", func(t *testing.T) {
		t.Parallel()
		out, err := runCLI(t, "crosstab", "police_conduct_threat", "police_apology", "-f", "json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		table := decodeJSON[crosstab.Table](t, out)
		if table.XField != model.FieldPoliceConductThreat || table.YField != model.FieldPoliceApology {
			t.Errorf("unexpected fields %s x %s", table.XField, table.YField)
		}
		if table.Total() != 15 {
			t.Errorf("expected 15 persons, got %d", table.Total())
		}
	})

	t.Run("filtered", func(t *testing.T) {
		t.Parallel()
		out, err := runCLI(t, "crosstab", "season", "severity", "-f", "json", "--where", "severity=4")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		table := decodeJSON[crosstab.Table](t, out)
		if table.Total() != 5 {
			t.Errorf("expected 5 severe persons, got %d", table.Total())
		}
		if len(table.Columns) != 1 || table.Columns[0] != "4" {
			t.Errorf("expected a single column \"4\", got %v", table.Columns)
		}
	})

	t.Run("exposure channel filter", func(t *testing.T) {
		t.Parallel()
		out, err := runCLI(t, "crosstab", "accusation_origin", "severity", "-f", "json", "--where", "exposure_channel=news_media")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if table := decodeJSON[crosstab.Table](t, out); table.Total() != 3 {
			t.Errorf("expected 3 persons exposed by news media, got %d", table.Total())
		}
	})

	t.Run("formatted text", func(t *testing.T) {
		t.Parallel()
		out, err := runCLI(t, "crosstab", "season", "severity", "--formatted")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{"Season 1", "Severe"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("unknown field", func(t *testing.T) {
		t.Parallel()
		_, err := runCLI(t, "crosstab", "favorite_color", "severity")
		if !errors.Is(err, model.ErrUnknownField) {
			t.Errorf("expected ErrUnknownField, got %v", err)
		}
	})

	t.Run("field missing from variant", func(t *testing.T) {
		t.Parallel()
		_, err := runCLI(t, "crosstab", "prosecutorial_conduct", "severity")
		if !errors.Is(err, errFieldUnavailable) {
			t.Errorf("expected errFieldUnavailable, got %v", err)
		}
		if _, err := runCLI(t, "--dataset", "lo", "crosstab", "prosecutorial_conduct", "severity"); err != nil {
			t.Errorf("unexpected error for lo: %v", err)
		}
	})

	t.Run("chart", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "chart.svg")
		if _, err := runCLI(t, "crosstab", "season", "severity", "--chart", "svg", "-o", path); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(string(data), "<svg") {
			t.Error("expected SVG output")
		}
	})

	t.Run("invalid chart format", func(t *testing.T) {
		t.Parallel()
		_, err := runCLI(t, "crosstab", "season", "severity", "--chart", "gif")
		if !errors.Is(err, report.ErrUnsupportedFormat) {
			t.Errorf("expected ErrUnsupportedFormat, got %v", err)
		}
	})

	t.Run("format from extension", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "table.json")
		if _, err := runCLI(t, "crosstab", "season", "severity", "-o", path); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		decodeJSON[crosstab.Table](t, string(data))
	})
}

// TestReportCmd tests the full report.
func TestReportCmd(t *testing.T) {
	t.Parallel()

	t.Run("single dataset", func(t *testing.T) {
		t.Parallel()
		out, err := runCLI(t, "report", "-f", "json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		doc := decodeJSON[report.Document](t, out)
		if doc.Dataset.Name != "svu" {
			t.Errorf("expected dataset svu, got %q", doc.Dataset.Name)
		}
		if doc.Dataset.Selected != 15 {
			t.Errorf("expected 15 selected persons, got %d", doc.Dataset.Selected)
		}
		if len(doc.Errors) != 0 {
			t.Errorf("unexpected step errors: %v", doc.Errors)
		}
		if len(doc.Steps) != 6 {
			t.Errorf("expected 6 steps, got %v", doc.Steps)
		}
		if doc.Harm.Harmed != 4 {
			t.Errorf("expected 4 harmed persons, got %d", doc.Harm.Harmed)
		}
	})

	t.Run("season filter", func(t *testing.T) {
		t.Parallel()
		out, err := runCLI(t, "report", "-f", "json", "--season", "1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		doc := decodeJSON[report.Document](t, out)
		if doc.Dataset.Selected != 3 {
			t.Errorf("expected 3 selected persons, got %d", doc.Dataset.Selected)
		}
		if doc.Summary.Persons != 15 {
			t.Errorf("expected summary to cover 15 persons, got %d", doc.Summary.Persons)
		}
	})

	t.Run("all datasets", func(t *testing.T) {
		t.Parallel()
		out, err := runCLI(t, "report", "--all", "-f", "json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		dec := json.NewDecoder(strings.NewReader(out))
		var names []string
		for {
			var doc report.Document
			if err := dec.Decode(&doc); errors.Is(err, io.EOF) {
				break
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			names = append(names, doc.Dataset.Name)
		}
		if strings.Join(names, ",") != "lo,svu" {
			t.Errorf("expected lo,svu, got %v", names)
		}
	})

	t.Run("default text", func(t *testing.T) {
		t.Parallel()
		out, err := runCLI(t, "report")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{"SEVERITY DISTRIBUTION", "SEASON TREND", "Unrated"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("markdown", func(t *testing.T) {
		t.Parallel()
		out, err := runCLI(t, "report", "-f", "markdown")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasPrefix(out, "# svustats report") {
			t.Errorf("unexpected markdown header: %q", strings.SplitN(out, "\n", 2)[0])
		}
	})

	t.Run("invalid severity", func(t *testing.T) {
		t.Parallel()
		if _, err := runCLI(t, "report", "--severity", "extreme"); err == nil {
			t.Error("expected error")
		}
	})
}

// TestExportCmd tests the export of every field pair.
func TestExportCmd(t *testing.T) {
	t.Parallel()

	out, err := runCLI(t, "export", "--fields", "season,severity,police_apology", "-f", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tables := decodeJSON[[]*crosstab.Table](t, out)
	if len(tables) != 6 {
		t.Fatalf("expected 6 tables, got %d", len(tables))
	}
	for _, table := range tables {
		if table.Total() != 15 {
			t.Errorf("%s x %s: expected 15 persons, got %d", table.XField, table.YField, table.Total())
		}
	}

	if _, err := runCLI(t, "export", "--fields", "season"); err == nil {
		t.Error("expected error for a single field")
	}
}

// TestEpisodeCmd tests the episode lookup.
func TestEpisodeCmd(t *testing.T) {
	t.Parallel()

	t.Run("text", func(t *testing.T) {
		t.Parallel()
		out, err := runCLI(t, "episode", "S01E03")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{"S01E03", "Neighbor", "Persons (2)"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()
		out, err := runCLI(t, "episode", "S01E03", "-f", "json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		detail := decodeJSON[episodeDetail](t, out)
		if detail.Episode.CustomID != "S01E03" {
			t.Errorf("expected S01E03, got %q", detail.Episode.CustomID)
		}
		if len(detail.Persons) != 2 {
			t.Errorf("expected 2 persons, got %d", len(detail.Persons))
		}
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		_, err := runCLI(t, "episode", "S99E99")
		if !errors.Is(err, model.ErrEpisodeNotFound) {
			t.Errorf("expected ErrEpisodeNotFound, got %v", err)
		}
	})
}

// TestFieldsCmd tests the field listing.
func TestFieldsCmd(t *testing.T) {
	t.Parallel()

	t.Run("svu fields", func(t *testing.T) {
		t.Parallel()
		out, err := runCLI(t, "fields", "-f", "json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		infos := decodeJSON[[]fieldInfo](t, out)
		if len(infos) != len(model.VariantSVU.Fields()) {
			t.Errorf("expected %d fields, got %d", len(model.VariantSVU.Fields()), len(infos))
		}
		for _, info := range infos {
			if strings.HasPrefix(info.Name, "prosecutorial") {
				t.Errorf("unexpected field %s in svu", info.Name)
			}
		}
	})

	t.Run("lo fields", func(t *testing.T) {
		t.Parallel()
		out, err := runCLI(t, "--dataset", "lo", "fields")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "prosecutorial_conduct") {
			t.Error("expected prosecutorial_conduct in lo fields")
		}
	})

	t.Run("label of a code", func(t *testing.T) {
		t.Parallel()
		testCases := []struct {
			args     []string
			expected codeLabel
		}{
			{[]string{"--label", "formal"}, codeLabel{Code: "formal", Label: "Formal Apology"}},
			{[]string{"--label", "none"}, codeLabel{Code: "none", Label: "No Misconduct"}},
			{[]string{"police_apology", "--label", "none"}, codeLabel{Field: "police_apology", Code: "none", Label: definition.Format(model.FieldPoliceApology, "none")}},
			{[]string{"--label", "squad_inference"}, codeLabel{Code: "squad_inference", Label: "Squad Inference"}},
		}
		for _, tc := range testCases {
			out, err := runCLI(t, append([]string{"fields", "-f", "json"}, tc.args...)...)
			if err != nil {
				t.Fatalf("%v: unexpected error: %v", tc.args, err)
			}
			if diff := cmp.Diff(tc.expected, decodeJSON[codeLabel](t, out)); diff != "" {
				t.Errorf("%v: label mismatch (-want +got):\n%s", tc.args, diff)
			}
		}
	})

	t.Run("severity definitions", func(t *testing.T) {
		t.Parallel()
		out, err := runCLI(t, "fields", "severity", "-f", "json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defs := decodeJSON[fieldDefinitions](t, out)
		if len(defs.Definitions) != 4 {
			t.Errorf("expected 4 severity codes, got %d", len(defs.Definitions))
		}
		if defs.Default != model.DefaultUnknown {
			t.Errorf("expected default %q, got %q", model.DefaultUnknown, defs.Default)
		}
	})

	t.Run("season lists dataset seasons", func(t *testing.T) {
		t.Parallel()
		out, err := runCLI(t, "fields", "season", "-f", "markdown")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "Season 15") {
			t.Error("expected Season 15 in output")
		}
	})
}

// TestHarmCmd tests the harm breakdown.
func TestHarmCmd(t *testing.T) {
	t.Parallel()

	out, err := runCLI(t, "harm", "-f", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	summary := decodeJSON[stats.HarmSummary](t, out)
	if summary.Harmed != 4 || summary.Total != 15 {
		t.Errorf("expected 4 of 15 harmed, got %d of %d", summary.Harmed, summary.Total)
	}
	for _, c := range summary.Classes {
		if c.Count != 1 {
			t.Errorf("%s: expected 1 person, got %d", c.Harm, c.Count)
		}
	}

	out, err = runCLI(t, "harm", "--persons")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "4 of 15 persons") {
		t.Errorf("expected harmed note, got %q", out)
	}
}

// TestConvertCmd tests conversion and reading the result back.
func TestConvertCmd(t *testing.T) {
	t.Parallel()

	t.Run("sqlite", func(t *testing.T) {
		t.Parallel()
		dbPath := filepath.Join(t.TempDir(), "data.db")
		if _, err := runCLI(t, "convert", dbPath); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out, err := runCLI(t, "--dataset", dbPath, "crosstab", "season", "severity", "-f", "json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		table := decodeJSON[crosstab.Table](t, out)
		if table.Total() != 15 {
			t.Errorf("expected 15 persons, got %d", table.Total())
		}
	})

	t.Run("yaml with new name", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "lo.yaml")
		if _, err := runCLI(t, "--dataset", "lo", "convert", path, "--name", "draft"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		ds, err := loader.Load(t.Context(), path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ds.Name != "draft" {
			t.Errorf("expected name draft, got %q", ds.Name)
		}
		if ds.Variant != model.VariantLO {
			t.Errorf("expected variant lo, got %q", ds.Variant)
		}
		if len(ds.Persons) != 11 {
			t.Errorf("expected 11 persons, got %d", len(ds.Persons))
		}
	})

	t.Run("unsupported destination", func(t *testing.T) {
		t.Parallel()
		_, err := runCLI(t, "convert", filepath.Join(t.TempDir(), "out.xlsx"))
		if !errors.Is(err, loader.ErrUnsupportedFormat) {
			t.Errorf("expected ErrUnsupportedFormat, got %v", err)
		}
	})
}

// TestParseSeverityFlag tests the accepted severity spellings.
func TestParseSeverityFlag(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input    string
		expected model.Severity
		wantErr  bool
	}{
		{"4", model.SeveritySevere, false},
		{" 1 ", model.SeverityMinor, false},
		{"serious", model.SeveritySerious, false},
		{"Moderate", model.SeverityModerate, false},
		{"unrated", model.SeverityUnrated, false},
		{"5", model.SeverityUnrated, true},
		{"extreme", model.SeverityUnrated, true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()
			got, err := parseSeverityFlag(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.expected {
				t.Errorf("parseSeverityFlag(%q) = %v, expected %v", tc.input, got, tc.expected)
			}
		})
	}
}

// TestCommandsEveryFormat runs the output commands on both bundled datasets
// in every output format.
func TestCommandsEveryFormat(t *testing.T) {
	t.Parallel()

	commands := [][]string{
		{"report"},
		{"crosstab", "season", "severity"},
		{"export", "--fields", "season,severity"},
		{"fields"},
		{"fields", "severity"},
		{"harm"},
	}
	for _, dataset := range []string{"svu", "lo"} {
		for _, format := range report.Formats() {
			for _, args := range commands {
				name := dataset + "/" + string(format) + "/" + strings.Join(args, " ")
				t.Run(name, func(t *testing.T) {
					t.Parallel()
					full := append([]string{"--dataset", dataset, "--format", string(format)}, args...)
					out, err := runCLI(t, full...)
					if err != nil {
						t.Fatalf("unexpected error: %v", err)
					}
					if out == "" {
						t.Error("expected output")
					}
				})
			}
		}
	}
}
