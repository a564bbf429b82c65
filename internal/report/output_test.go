package report

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
)

// TestOpenOutput tests stdout, plain and gzip destinations.
func TestOpenOutput(t *testing.T) {
	t.Parallel()

	t.Run("stdout", func(t *testing.T) {
		t.Parallel()
		var stdout bytes.Buffer
		w, err := OpenOutput("-", &stdout)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_, _ = io.WriteString(w, "hello")
		if err := w.Close(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stdout.String() != "hello" {
			t.Errorf("got %q", stdout.String())
		}
	})

	t.Run("plain file in new directory", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "out", "report.txt")
		w, err := OpenOutput(path, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_, _ = io.WriteString(w, "plain")
		if err := w.Close(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(data) != "plain" {
			t.Errorf("got %q", data)
		}
	})

	t.Run("gzip", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "report.json.gz")
		w, err := OpenOutput(path, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_, _ = io.WriteString(w, `{"ok":true}`)
		if err := w.Close(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		f, err := os.Open(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer f.Close()
		zr, err := gzip.NewReader(f)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		data, err := io.ReadAll(zr)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(data) != `{"ok":true}` {
			t.Errorf("got %q", data)
		}
	})
}

// TestFormatFromPath tests extension detection.
func TestFormatFromPath(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		path string
		want Format
		ok   bool
	}{
		{"report.json", FormatJSON, true},
		{"report.JSON.gz", FormatJSON, true},
		{"out/report.md", FormatMarkdown, true},
		{"report.csv", FormatCSV, true},
		{"report.htm", FormatHTML, true},
		{"report.txt", FormatText, true},
		{"report", "", false},
		{"report.svg", "", false},
	}
	for _, tc := range testCases {
		got, ok := FormatFromPath(tc.path)
		if got != tc.want || ok != tc.ok {
			t.Errorf("FormatFromPath(%q) = %q, %v, expected %q, %v", tc.path, got, ok, tc.want, tc.ok)
		}
	}
}
