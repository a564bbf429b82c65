package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/Tyorden/svustats/internal/crosstab"
	"github.com/Tyorden/svustats/internal/definition"
	"github.com/Tyorden/svustats/internal/model"
	"github.com/Tyorden/svustats/internal/stats"
)

const ruleWidth = 70

// TextWriter outputs human-readable reports with aligned columns.
// Column widths use display width, so labels with wide runes still line up.
type TextWriter struct {
	baseWriter

	// color enables ANSI coloring of severity labels.
	color bool

	// maxCell truncates cells wider than this many columns. Zero disables.
	maxCell int
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithColor enables severity colors.
func WithColor(color bool) TextWriterOption {
	return func(w *TextWriter) {
		w.color = color
	}
}

// WithMaxCellWidth truncates long cells with an ellipsis.
func WithMaxCellWidth(width int) TextWriterOption {
	return func(w *TextWriter) {
		w.maxCell = width
	}
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{
		baseWriter: newBaseWriter(output),
		maxCell:    40,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the document.
func (w *TextWriter) Write(doc *Document) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, doc)
	w.writeSummary(&sb, doc.Summary)
	w.writeSeverity(&sb, doc.Severity)
	w.writeTrend(&sb, doc.SeasonTrend)
	for _, a := range doc.Averages {
		w.writeAverages(&sb, a)
	}
	for _, a := range doc.Apology {
		w.writeApology(&sb, a)
	}
	w.writeHarm(&sb, doc.Harm)
	for _, t := range doc.Tables {
		w.writeTable(&sb, t)
	}
	w.writeErrors(&sb, doc.Errors)
	w.writeFooter(&sb)

	return io.WriteString(w.output, sb.String())
}

// WriteTables outputs each table as an aligned grid.
func (w *TextWriter) WriteTables(tables ...*crosstab.Table) (int, error) {
	var sb strings.Builder
	for _, t := range tables {
		w.writeTable(&sb, t)
	}
	return io.WriteString(w.output, sb.String())
}

func (w *TextWriter) writeHeader(sb *strings.Builder, doc *Document) {
	title := "SVUSTATS REPORT"
	if doc.Dataset.Title != "" {
		title += ": " + strings.ToUpper(doc.Dataset.Title)
	}
	pad := (ruleWidth - runewidth.StringWidth(title)) / 2
	if pad < 0 {
		pad = 0
	}

	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat(" ", pad) + title + "\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Dataset:      %s (%s)\n", doc.Dataset.Name, doc.Dataset.Variant)
	fmt.Fprintf(sb, "Episodes:     %d\n", doc.Dataset.Episodes)
	fmt.Fprintf(sb, "Persons:      %d (%d selected)\n", doc.Dataset.Persons, doc.Dataset.Selected)
	fmt.Fprintf(sb, "Fingerprint:  %s\n", shortFingerprint(doc.Dataset.Fingerprint))
	fmt.Fprintf(sb, "Generated:    %s\n", doc.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	sb.WriteString("\n")
}

func (w *TextWriter) writeSection(sb *strings.Builder, name string) {
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString(strings.ToUpper(name))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n\n")
}

func (w *TextWriter) writeSummary(sb *strings.Builder, s stats.Summary) {
	w.writeSection(sb, "Summary")
	w.grid(sb, nil, [][]string{
		{"Episodes", strconv.Itoa(s.Episodes)},
		{"Persons", strconv.Itoa(s.Persons)},
		{"Persons per episode", formatFloat(s.PersonsPerEpisode)},
		{"False suspect (Y/N/Maybe)", flagCounts(s.FalseSuspect)},
		{"Public exposure (Y/N/Maybe)", flagCounts(s.PublicExposure)},
		{"Queued for review", strconv.Itoa(s.NeedsReview)},
		{"Average severity", formatFloat(s.AverageSeverity)},
		{"Severe (level 4)", fmt.Sprintf("%d (%s)", s.SevereCount, formatPercent(s.SeverePercent))},
		{"Physically harmed", strconv.Itoa(s.Harmed)},
	})
}

func (w *TextWriter) writeSeverity(sb *strings.Builder, b stats.SeverityBreakdown) {
	w.writeSection(sb, "Severity distribution")
	rows := make([][]string, 0, len(b.Buckets)+1)
	for _, bucket := range b.Buckets {
		rows = append(rows, []string{bucket.Code, bucket.Label, strconv.Itoa(bucket.Count), formatPercent(bucket.Percent)})
	}
	rows = append(rows, []string{"-", "Unrated", strconv.Itoa(b.Unrated), ""})
	w.gridStyled(sb, []string{"Code", "Level", "Count", "Share"}, rows, func(row, col int, cell string) string {
		if col != 1 || row < 0 || row >= len(b.Buckets) {
			return cell
		}
		return w.paint(b.Buckets[row].Color, cell)
	})
}

func (w *TextWriter) writeTrend(sb *strings.Builder, points []stats.SeasonPoint) {
	w.writeSection(sb, "Season trend")
	if len(points) == 0 {
		sb.WriteString("  No seasons\n\n")
		return
	}
	rows := make([][]string, 0, len(points))
	for _, p := range points {
		rows = append(rows, []string{p.Label, strconv.Itoa(p.Count), strconv.Itoa(p.Rated), formatFloat(p.AverageSeverity)})
	}
	w.grid(sb, []string{"Season", "Persons", "Rated", "Avg severity"}, rows)
}

func (w *TextWriter) writeAverages(sb *strings.Builder, a AverageSection) {
	w.writeSection(sb, "Average severity by "+fieldTitle(a.Field))
	rows := make([][]string, 0, len(a.Rows))
	for _, r := range a.Rows {
		rows = append(rows, []string{r.Label, strconv.Itoa(r.Count), formatFloat(r.AverageSeverity)})
	}
	w.grid(sb, []string{fieldTitle(a.Field), "Persons", "Avg severity"}, rows)
}

func (w *TextWriter) writeApology(sb *strings.Builder, a ApologySection) {
	w.writeSection(sb, "Apology rate by "+fieldTitle(a.Conduct))
	rows := make([][]string, 0, len(a.Rates))
	for _, r := range a.Rates {
		rows = append(rows, []string{r.Label, strconv.Itoa(r.Total), strconv.Itoa(r.GotApology), r.RateText})
	}
	w.grid(sb, []string{fieldTitle(a.Conduct), "Persons", "Apologized", "Rate"}, rows)
}

func (w *TextWriter) writeHarm(sb *strings.Builder, h stats.HarmSummary) {
	w.writeSection(sb, "Physical harm")
	rows := make([][]string, 0, len(h.Classes))
	for _, c := range h.Classes {
		rows = append(rows, []string{definition.Humanize(c.Harm.String()), strconv.Itoa(c.Count), formatPercent(c.Percent)})
	}
	w.grid(sb, []string{"Class", "Persons", "Share"}, rows)
	fmt.Fprintf(sb, "  %d of %d persons physically harmed\n\n", h.Harmed, h.Total)
}

func (w *TextWriter) writeTable(sb *strings.Builder, t *crosstab.Table) {
	w.writeSection(sb, fieldTitle(t.XField)+" x "+fieldTitle(t.YField))
	if len(t.Rows) == 0 {
		sb.WriteString("  No records\n\n")
		return
	}

	header := append([]string{fieldTitle(t.XField)}, t.Columns...)
	header = append(header, "Total")
	rows := make([][]string, 0, len(t.Rows)+1)
	for _, r := range t.Rows {
		row := []string{r.XValue}
		for _, c := range t.Columns {
			row = append(row, strconv.Itoa(r.Counts[c]))
		}
		rows = append(rows, append(row, strconv.Itoa(r.Total())))
	}
	totals := t.ColumnTotals()
	last := []string{"Total"}
	for _, c := range t.Columns {
		last = append(last, strconv.Itoa(totals[c]))
	}
	rows = append(rows, append(last, strconv.Itoa(t.Total())))

	w.gridStyled(sb, header, rows, func(row, col int, cell string) string {
		if row >= 0 || col == 0 || col > len(t.Columns) || t.YField != model.FieldSeverity {
			return cell
		}
		return w.paint(severityColorOf(t.Columns[col-1], t.Formatted), cell)
	})
}

func (w *TextWriter) writeErrors(sb *strings.Builder, errs []string) {
	if len(errs) == 0 {
		return
	}
	w.writeSection(sb, "Errors")
	for _, e := range errs {
		fmt.Fprintf(sb, "  [!] %s\n", e)
	}
	sb.WriteString("\n")
}

func (w *TextWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString("Report generated by svustats\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
}

func (w *TextWriter) grid(sb *strings.Builder, header []string, rows [][]string) {
	w.gridStyled(sb, header, rows, nil)
}

// gridStyled writes an aligned grid. The first column is left aligned and
// the others right aligned. style, when set, decorates a padded cell; row
// is -1 for the header.
func (w *TextWriter) gridStyled(sb *strings.Builder, header []string, rows [][]string, style func(row, col int, cell string) string) {
	all := rows
	if header != nil {
		all = append([][]string{header}, rows...)
	}
	cols := 0
	for _, r := range all {
		cols = max(cols, len(r))
	}
	widths := make([]int, cols)
	for _, r := range all {
		for i, cell := range r {
			widths[i] = max(widths[i], runewidth.StringWidth(w.truncate(cell)))
		}
	}

	line := func(rowIdx int, r []string) {
		sb.WriteString("  ")
		for i := 0; i < cols; i++ {
			cell := ""
			if i < len(r) {
				cell = w.truncate(r[i])
			}
			if i == 0 {
				cell = runewidth.FillRight(cell, widths[i])
			} else {
				cell = runewidth.FillLeft(cell, widths[i])
			}
			if style != nil {
				cell = style(rowIdx, i, cell)
			}
			if i > 0 {
				sb.WriteString("  ")
			}
			sb.WriteString(cell)
		}
		sb.WriteString("\n")
	}

	if header != nil {
		line(-1, header)
		sep := make([]string, cols)
		for i := range sep {
			sep[i] = strings.Repeat("-", widths[i])
		}
		sb.WriteString("  " + strings.Join(sep, "  ") + "\n")
	}
	for i, r := range rows {
		line(i, r)
	}
	sb.WriteString("\n")
}

func (w *TextWriter) truncate(s string) string {
	if w.maxCell <= 0 {
		return s
	}
	return runewidth.Truncate(s, w.maxCell, "...")
}

func (w *TextWriter) paint(color, s string) string {
	if !w.color {
		return s
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(s)
}

func fieldTitle(f model.Field) string {
	return definition.Humanize(f.String())
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}

func flagCounts(c stats.FlagCounts) string {
	s := fmt.Sprintf("%d / %d / %d", c.Yes, c.No, c.Maybe)
	if c.Other > 0 {
		s += fmt.Sprintf(" (+%d other)", c.Other)
	}
	return s
}

func shortFingerprint(fp string) string {
	if len(fp) > 16 {
		return fp[:16]
	}
	return fp
}

// severityColorOf maps a severity column key, raw or formatted, to its color.
func severityColorOf(key string, formatted bool) string {
	if !formatted {
		return definition.SeverityColor(key)
	}
	for _, s := range model.Severities() {
		if definition.SeverityLabel(s) == key {
			return definition.SeverityColor(s.Code())
		}
	}
	return definition.NeutralColor
}
