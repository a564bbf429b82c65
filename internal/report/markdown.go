package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/Tyorden/svustats/internal/crosstab"
	"github.com/Tyorden/svustats/internal/definition"
	"github.com/Tyorden/svustats/internal/stats"
)

// severeAlertShare is the share of severe persons, in percent, above which
// the summary carries a caution alert.
const severeAlertShare = 25.0

// MarkdownWriter outputs GitHub-flavored Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the document.
func (w *MarkdownWriter) Write(doc *Document) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, doc)
	w.writeSummary(md, doc)
	w.writeSeverity(md, doc.Severity)
	w.writeTrend(md, doc.SeasonTrend)
	for _, a := range doc.Averages {
		w.writeAverages(md, a)
	}
	for _, a := range doc.Apology {
		w.writeApology(md, a)
	}
	w.writeHarm(md, doc.Harm)
	for _, t := range doc.Tables {
		w.writeTable(md, t)
	}
	if doc.HasErrors() {
		md.H2("Errors")
		md.PlainText("")
		md.BulletList(doc.Errors...)
		md.PlainText("")
	}
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteTables outputs each table as a Markdown table.
func (w *MarkdownWriter) WriteTables(tables ...*crosstab.Table) (int, error) {
	md := markdown.NewMarkdown(w.output)
	for _, t := range tables {
		w.writeTable(md, t)
	}
	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, doc *Document) {
	title := doc.Dataset.Title
	if title == "" {
		title = doc.Dataset.Name
	}
	md.H1("svustats report: " + title)
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Dataset", "`" + doc.Dataset.Name + "`"},
			{"Variant", string(doc.Dataset.Variant)},
			{"Episodes", strconv.Itoa(doc.Dataset.Episodes)},
			{"Persons", strconv.Itoa(doc.Dataset.Persons) + " (" + strconv.Itoa(doc.Dataset.Selected) + " selected)"},
			{"Fingerprint", "`" + shortFingerprint(doc.Dataset.Fingerprint) + "`"},
			{"Generated", doc.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, doc *Document) {
	s := doc.Summary
	md.H2("Summary")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Persons per episode", formatFloat(s.PersonsPerEpisode)},
			{"False suspect (Y / N / Maybe)", flagCounts(s.FalseSuspect)},
			{"Public exposure (Y / N / Maybe)", flagCounts(s.PublicExposure)},
			{"Queued for review", strconv.Itoa(s.NeedsReview)},
			{"Average severity", formatFloat(s.AverageSeverity)},
			{"Severe (level 4)", strconv.Itoa(s.SevereCount) + " (" + formatPercent(s.SeverePercent) + ")"},
			{"Physically harmed", strconv.Itoa(s.Harmed)},
		},
	})
	md.PlainText("")

	switch {
	case s.RatedPersons == 0:
		md.Note("No person in the selection has a severity rating.")
	case s.SeverePercent >= severeAlertShare:
		md.Cautionf("%s of rated persons suffered severe consequences (physical harm, death or suicide).", formatPercent(s.SeverePercent))
	case s.SevereCount > 0:
		md.Importantf("%d rated person(s) suffered severe consequences.", s.SevereCount)
	default:
		md.Tip("No severe consequences in the selection.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeSeverity(md *markdown.Markdown, b stats.SeverityBreakdown) {
	md.H2("Severity distribution")
	md.PlainText("")

	rows := make([][]string, 0, len(b.Buckets)+1)
	for _, bucket := range b.Buckets {
		rows = append(rows, []string{bucket.Code, bucket.Label, strconv.Itoa(bucket.Count), formatPercent(bucket.Percent)})
	}
	rows = append(rows, []string{"-", "Unrated", strconv.Itoa(b.Unrated), "-"})
	md.Table(markdown.TableSet{
		Header: []string{"Code", "Level", "Count", "Share"},
		Rows:   rows,
	})
	md.PlainText("")

	if b.Rated > 0 {
		w.writePieChart(md, b)
	}
}

// writePieChart writes a mermaid pie chart of the rated levels.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, b stats.SeverityBreakdown) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Consequence severity"),
		piechart.WithShowData(true),
	)
	for _, bucket := range b.Buckets {
		if bucket.Count > 0 {
			chart.LabelAndIntValue(bucket.Label, uint64(bucket.Count))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeTrend(md *markdown.Markdown, points []stats.SeasonPoint) {
	md.H2("Season trend")
	md.PlainText("")
	if len(points) == 0 {
		md.PlainText("No seasons.")
		md.PlainText("")
		return
	}
	rows := make([][]string, 0, len(points))
	for _, p := range points {
		rows = append(rows, []string{p.Label, strconv.Itoa(p.Count), strconv.Itoa(p.Rated), formatFloat(p.AverageSeverity)})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Season", "Persons", "Rated", "Avg severity"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeAverages(md *markdown.Markdown, a AverageSection) {
	md.H3("Average severity by " + fieldTitle(a.Field))
	md.PlainText("")
	rows := make([][]string, 0, len(a.Rows))
	for _, r := range a.Rows {
		rows = append(rows, []string{r.Label, strconv.Itoa(r.Count), formatFloat(r.AverageSeverity)})
	}
	md.Table(markdown.TableSet{
		Header: []string{fieldTitle(a.Field), "Persons", "Avg severity"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeApology(md *markdown.Markdown, a ApologySection) {
	md.H3("Apology rate by " + fieldTitle(a.Conduct))
	md.PlainText("")
	rows := make([][]string, 0, len(a.Rates))
	for _, r := range a.Rates {
		rows = append(rows, []string{r.Label, strconv.Itoa(r.Total), strconv.Itoa(r.GotApology), r.RateText})
	}
	md.Table(markdown.TableSet{
		Header: []string{fieldTitle(a.Conduct), "Persons", "Apologized", "Rate"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeHarm(md *markdown.Markdown, h stats.HarmSummary) {
	md.H2("Physical harm")
	md.PlainText("")
	rows := make([][]string, 0, len(h.Classes))
	for _, c := range h.Classes {
		rows = append(rows, []string{definition.Humanize(c.Harm.String()), strconv.Itoa(c.Count), formatPercent(c.Percent)})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Class", "Persons", "Share"},
		Rows:   rows,
	})
	md.PlainText("")
	md.PlainTextf("%d of %d persons physically harmed.", h.Harmed, h.Total)
	md.PlainText("")
}

func (w *MarkdownWriter) writeTable(md *markdown.Markdown, t *crosstab.Table) {
	md.H2(fieldTitle(t.XField) + " x " + fieldTitle(t.YField))
	md.PlainText("")
	if len(t.Rows) == 0 {
		md.PlainText("No records.")
		md.PlainText("")
		return
	}

	header := append([]string{fieldTitle(t.XField)}, t.Columns...)
	header = append(header, "Total")
	rows := make([][]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		row := []string{r.XValue}
		for _, c := range t.Columns {
			row = append(row, strconv.Itoa(r.Counts[c]))
		}
		rows = append(rows, append(row, strconv.Itoa(r.Total())))
	}
	md.Table(markdown.TableSet{Header: header, Rows: rows})
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by svustats*")
}
