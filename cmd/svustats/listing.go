package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/nao1215/markdown"

	"github.com/Tyorden/svustats/internal/report"
)

// listing is a small titled grid printed by the lookup commands. Value is
// what the JSON format encodes instead of the grid; listings with a nil
// Value are left out of JSON output.
type listing struct {
	Title  string
	Header []string
	Rows   [][]string
	Notes  []string
	Value  any
}

// writeListings renders listings in format. HTML falls back to Markdown.
func writeListings(w io.Writer, format report.Format, listings ...listing) error {
	switch format {
	case report.FormatJSON:
		values := make([]any, 0, len(listings))
		for _, l := range listings {
			if l.Value != nil {
				values = append(values, l.Value)
			}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if len(values) == 1 {
			return enc.Encode(values[0])
		}
		return enc.Encode(values)
	case report.FormatCSV:
		cw := csv.NewWriter(w)
		for _, l := range listings {
			if err := cw.Write(l.Header); err != nil {
				return err
			}
			if err := cw.WriteAll(l.Rows); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	case report.FormatMarkdown, report.FormatHTML:
		md := markdown.NewMarkdown(w)
		for _, l := range listings {
			md.H2(l.Title)
			md.PlainText("")
			md.Table(markdown.TableSet{Header: l.Header, Rows: l.Rows})
			md.PlainText("")
			if len(l.Notes) > 0 {
				md.BulletList(l.Notes...)
				md.PlainText("")
			}
		}
		return md.Build()
	default:
		for i, l := range listings {
			if i > 0 {
				fmt.Fprintln(w)
			}
			if err := writeGrid(w, l); err != nil {
				return err
			}
		}
		return nil
	}
}

// writeGrid prints l as aligned plain text columns.
func writeGrid(w io.Writer, l listing) error {
	widths := make([]int, len(l.Header))
	for i, h := range l.Header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range l.Rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], runewidth.StringWidth(cell))
			}
		}
	}

	line := func(cells []string) string {
		parts := make([]string, len(cells))
		for i, c := range cells {
			if i < len(widths) && i < len(cells)-1 {
				c = runewidth.FillRight(c, widths[i])
			}
			parts[i] = c
		}
		return strings.TrimRight(strings.Join(parts, "  "), " ")
	}

	var b strings.Builder
	if l.Title != "" {
		b.WriteString(l.Title + "\n\n")
	}
	b.WriteString("  " + line(l.Header) + "\n")
	total := 0
	for _, n := range widths {
		total += n + 2
	}
	b.WriteString("  " + strings.Repeat("-", max(total-2, 0)) + "\n")
	for _, row := range l.Rows {
		b.WriteString("  " + line(row) + "\n")
	}
	for _, n := range l.Notes {
		b.WriteString("\n" + n + "\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}
