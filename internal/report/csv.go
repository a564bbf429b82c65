package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/Tyorden/svustats/internal/crosstab"
	"github.com/Tyorden/svustats/internal/definition"
)

// csvHeader is the fixed column layout of CSV exports.
var csvHeader = []string{"category", "title", "value", "detail"}

// CSVWriter outputs category,title,value,detail rows. Numeric values are
// written with full precision; the detail column carries the rounded form
// or the denominator.
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs every section of the document.
func (w *CSVWriter) Write(doc *Document) (int, error) {
	rows := [][]string{csvHeader}

	s := doc.Summary
	rows = append(rows,
		[]string{"dataset", "Name", doc.Dataset.Name, string(doc.Dataset.Variant)},
		[]string{"dataset", "Fingerprint", doc.Dataset.Fingerprint, ""},
		[]string{"summary", "Episodes", strconv.Itoa(s.Episodes), ""},
		[]string{"summary", "Persons", strconv.Itoa(s.Persons), ""},
		[]string{"summary", "Persons per episode", csvFloat(s.PersonsPerEpisode), ""},
		[]string{"summary", "False suspect", strconv.Itoa(s.FalseSuspect.Yes), flagCounts(s.FalseSuspect)},
		[]string{"summary", "Public exposure", strconv.Itoa(s.PublicExposure.Yes), flagCounts(s.PublicExposure)},
		[]string{"summary", "Queued for review", strconv.Itoa(s.NeedsReview), ""},
		[]string{"summary", "Average severity", csvFloat(s.AverageSeverity), fmt.Sprintf("%d rated", s.RatedPersons)},
		[]string{"summary", "Severe", strconv.Itoa(s.SevereCount), formatPercent(s.SeverePercent)},
		[]string{"summary", "Physically harmed", strconv.Itoa(s.Harmed), ""},
	)

	for _, b := range doc.Severity.Buckets {
		rows = append(rows, []string{"severity", b.Label, strconv.Itoa(b.Count), formatPercent(b.Percent)})
	}
	rows = append(rows, []string{"severity", "Unrated", strconv.Itoa(doc.Severity.Unrated), ""})

	for _, p := range doc.SeasonTrend {
		rows = append(rows, []string{"season_trend", p.Label, csvFloat(p.AverageSeverity), fmt.Sprintf("%d persons", p.Count)})
	}
	for _, a := range doc.Averages {
		category := "average:" + a.Field.String()
		for _, r := range a.Rows {
			rows = append(rows, []string{category, r.Label, csvFloat(r.AverageSeverity), fmt.Sprintf("%d persons", r.Count)})
		}
	}
	for _, a := range doc.Apology {
		category := "apology:" + a.Conduct.String()
		for _, r := range a.Rates {
			rows = append(rows, []string{category, r.Label, csvFloat(r.Rate), fmt.Sprintf("%d/%d (%s)", r.GotApology, r.Total, r.RateText)})
		}
	}
	for _, c := range doc.Harm.Classes {
		rows = append(rows, []string{"harm", definition.Humanize(c.Harm.String()), strconv.Itoa(c.Count), formatPercent(c.Percent)})
	}
	for _, t := range doc.Tables {
		rows = append(rows, tableRows(t)...)
	}

	return w.writeAll(rows)
}

// WriteTables outputs one row per table cell.
func (w *CSVWriter) WriteTables(tables ...*crosstab.Table) (int, error) {
	rows := [][]string{csvHeader}
	for _, t := range tables {
		rows = append(rows, tableRows(t)...)
	}
	return w.writeAll(rows)
}

func tableRows(t *crosstab.Table) [][]string {
	category := "crosstab:" + t.XField.String() + "x" + t.YField.String()
	rows := make([][]string, 0, len(t.Rows)*len(t.Columns))
	for _, r := range t.Rows {
		for _, c := range t.Columns {
			rows = append(rows, []string{category, r.XValue, strconv.Itoa(r.Counts[c]), c})
		}
	}
	return rows
}

func (w *CSVWriter) writeAll(rows [][]string) (int, error) {
	cw := &countingWriter{w: w.output}
	enc := csv.NewWriter(cw)
	if err := enc.WriteAll(rows); err != nil {
		return cw.n, fmt.Errorf("write csv: %w", err)
	}
	return cw.n, nil
}

func csvFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
