package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Tyorden/svustats/internal/report"
)

func testListing() listing {
	return listing{
		Title:  "Codes",
		Header: []string{"Code", "Label"},
		Rows:   [][]string{{"1", "Minor"}, {"4", "Severe"}},
		Notes:  []string{"An empty value counts as unknown."},
		Value:  map[string]string{"1": "Minor", "4": "Severe"},
	}
}

// TestWriteListings tests every output format of the lookup grids.
func TestWriteListings(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		format   report.Format
		contains []string
	}{
		{report.FormatText, []string{"Codes", "Code  Label", "4     Severe", "counts as unknown"}},
		{report.FormatMarkdown, []string{"## Codes", "| Code | Label |", "counts as unknown"}},
		{report.FormatHTML, []string{"## Codes"}},
		{report.FormatCSV, []string{"Code,Label\n", "4,Severe\n"}},
		{report.FormatJSON, []string{`"4": "Severe"`}},
	}

	for _, tc := range testCases {
		t.Run(string(tc.format), func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			if err := writeListings(&buf, tc.format, testListing()); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for _, want := range tc.contains {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("expected output to contain %q, got:\n%s", want, buf.String())
				}
			}
		})
	}
}

// TestWriteListingsJSONSkipsNil tests that listings without a value are
// left out of JSON output.
func TestWriteListingsJSONSkipsNil(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	extra := testListing()
	extra.Value = nil
	if err := writeListings(&buf, report.FormatJSON, testListing(), extra); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.HasPrefix(strings.TrimSpace(buf.String()), "[") {
		t.Errorf("expected a single object, got %s", buf.String())
	}
}
