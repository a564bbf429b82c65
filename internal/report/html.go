package report

import (
	"fmt"
	"io"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/Tyorden/svustats/internal/crosstab"
	"github.com/Tyorden/svustats/internal/definition"
	"github.com/Tyorden/svustats/internal/model"
)

const pageStyle = `body{font-family:system-ui,sans-serif;margin:2rem;color:#111827}
table{border-collapse:collapse;margin:0 0 1.5rem}
th,td{border:1px solid #d1d5db;padding:.25rem .6rem;text-align:right}
th:first-child,td:first-child{text-align:left}
.swatch{display:inline-block;width:.8rem;height:.8rem;margin-right:.4rem;border-radius:2px}`

// HTMLWriter outputs a standalone HTML page. The page is built as a node
// tree and serialized with the html package, so every text is escaped.
type HTMLWriter struct {
	baseWriter
}

// NewHTMLWriter creates an HTMLWriter that outputs to the given writer.
func NewHTMLWriter(output io.Writer) *HTMLWriter {
	return &HTMLWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the document as a page.
func (w *HTMLWriter) Write(doc *Document) (int, error) {
	title := doc.Dataset.Title
	if title == "" {
		title = doc.Dataset.Name
	}
	body := element(atom.Body, nil,
		element(atom.H1, nil, text("svustats report: "+title)),
		keyValueTable([][2]string{
			{"Dataset", doc.Dataset.Name + " (" + string(doc.Dataset.Variant) + ")"},
			{"Episodes", strconv.Itoa(doc.Dataset.Episodes)},
			{"Persons", fmt.Sprintf("%d (%d selected)", doc.Dataset.Persons, doc.Dataset.Selected)},
			{"Fingerprint", shortFingerprint(doc.Dataset.Fingerprint)},
			{"Generated", doc.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
		}),
	)

	s := doc.Summary
	appendChildren(body,
		element(atom.H2, nil, text("Summary")),
		keyValueTable([][2]string{
			{"Persons per episode", formatFloat(s.PersonsPerEpisode)},
			{"False suspect (Y / N / Maybe)", flagCounts(s.FalseSuspect)},
			{"Public exposure (Y / N / Maybe)", flagCounts(s.PublicExposure)},
			{"Queued for review", strconv.Itoa(s.NeedsReview)},
			{"Average severity", formatFloat(s.AverageSeverity)},
			{"Severe (level 4)", fmt.Sprintf("%d (%s)", s.SevereCount, formatPercent(s.SeverePercent))},
			{"Physically harmed", strconv.Itoa(s.Harmed)},
		}),
	)

	sevRows := make([][]*html.Node, 0, len(doc.Severity.Buckets))
	for _, b := range doc.Severity.Buckets {
		sevRows = append(sevRows, []*html.Node{
			swatch(b.Color, b.Label),
			text(strconv.Itoa(b.Count)),
			text(formatPercent(b.Percent)),
		})
	}
	sevRows = append(sevRows, []*html.Node{text("Unrated"), text(strconv.Itoa(doc.Severity.Unrated)), text("")})
	appendChildren(body,
		element(atom.H2, nil, text("Severity distribution")),
		nodeTable([]string{"Level", "Count", "Share"}, sevRows),
	)

	trend := make([][]string, 0, len(doc.SeasonTrend))
	for _, p := range doc.SeasonTrend {
		trend = append(trend, []string{p.Label, strconv.Itoa(p.Count), strconv.Itoa(p.Rated), formatFloat(p.AverageSeverity)})
	}
	appendChildren(body,
		element(atom.H2, nil, text("Season trend")),
		textTable([]string{"Season", "Persons", "Rated", "Avg severity"}, trend),
	)

	for _, a := range doc.Averages {
		rows := make([][]string, 0, len(a.Rows))
		for _, r := range a.Rows {
			rows = append(rows, []string{r.Label, strconv.Itoa(r.Count), formatFloat(r.AverageSeverity)})
		}
		appendChildren(body,
			element(atom.H3, nil, text("Average severity by "+fieldTitle(a.Field))),
			textTable([]string{fieldTitle(a.Field), "Persons", "Avg severity"}, rows),
		)
	}
	for _, a := range doc.Apology {
		rows := make([][]string, 0, len(a.Rates))
		for _, r := range a.Rates {
			rows = append(rows, []string{r.Label, strconv.Itoa(r.Total), strconv.Itoa(r.GotApology), r.RateText})
		}
		appendChildren(body,
			element(atom.H3, nil, text("Apology rate by "+fieldTitle(a.Conduct))),
			textTable([]string{fieldTitle(a.Conduct), "Persons", "Apologized", "Rate"}, rows),
		)
	}

	harm := make([][]string, 0, len(doc.Harm.Classes))
	for _, c := range doc.Harm.Classes {
		harm = append(harm, []string{definition.Humanize(c.Harm.String()), strconv.Itoa(c.Count), formatPercent(c.Percent)})
	}
	appendChildren(body,
		element(atom.H2, nil, text("Physical harm")),
		textTable([]string{"Class", "Persons", "Share"}, harm),
	)

	for _, t := range doc.Tables {
		appendChildren(body, tableNodes(t)...)
	}
	if doc.HasErrors() {
		list := element(atom.Ul, nil)
		for _, e := range doc.Errors {
			appendChildren(list, element(atom.Li, nil, text(e)))
		}
		appendChildren(body, element(atom.H2, nil, text("Errors")), list)
	}

	return w.render(title, body)
}

// WriteTables outputs the tables as a page.
func (w *HTMLWriter) WriteTables(tables ...*crosstab.Table) (int, error) {
	body := element(atom.Body, nil)
	for _, t := range tables {
		appendChildren(body, tableNodes(t)...)
	}
	return w.render("svustats cross tables", body)
}

func (w *HTMLWriter) render(title string, body *html.Node) (int, error) {
	page := &html.Node{Type: html.DocumentNode}
	appendChildren(page,
		&html.Node{Type: html.DoctypeNode, Data: "html"},
		element(atom.Html, []html.Attribute{{Key: "lang", Val: "en"}},
			element(atom.Head, nil,
				element(atom.Meta, []html.Attribute{{Key: "charset", Val: "utf-8"}}),
				element(atom.Title, nil, text(title)),
				element(atom.Style, nil, text(pageStyle)),
			),
			body,
		),
	)

	cw := &countingWriter{w: w.output}
	if err := html.Render(cw, page); err != nil {
		return cw.n, fmt.Errorf("render html: %w", err)
	}
	_, err := io.WriteString(cw, "\n")
	return cw.n, err
}

func tableNodes(t *crosstab.Table) []*html.Node {
	heading := element(atom.H2, nil, text(fieldTitle(t.XField)+" x "+fieldTitle(t.YField)))
	if len(t.Rows) == 0 {
		return []*html.Node{heading, element(atom.P, nil, text("No records."))}
	}

	header := append([]string{fieldTitle(t.XField)}, t.Columns...)
	header = append(header, "Total")
	rows := make([][]*html.Node, 0, len(t.Rows))
	for _, r := range t.Rows {
		row := []*html.Node{text(r.XValue)}
		for _, c := range t.Columns {
			row = append(row, text(strconv.Itoa(r.Counts[c])))
		}
		rows = append(rows, append(row, text(strconv.Itoa(r.Total()))))
	}
	tbl := nodeTable(header, rows)
	if t.YField == model.FieldSeverity {
		// Color the severity column headers.
		tr := tbl.FirstChild.FirstChild
		th := tr.FirstChild.NextSibling
		for _, c := range t.Columns {
			th.Attr = append(th.Attr, html.Attribute{Key: "style", Val: "color:" + severityColorOf(c, t.Formatted)})
			th = th.NextSibling
		}
	}
	return []*html.Node{heading, tbl}
}

func element(a atom.Atom, attrs []html.Attribute, children ...*html.Node) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
	appendChildren(n, children...)
	return n
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func appendChildren(parent *html.Node, children ...*html.Node) {
	for _, c := range children {
		parent.AppendChild(c)
	}
}

func swatch(color, label string) *html.Node {
	span := element(atom.Span, []html.Attribute{
		{Key: "class", Val: "swatch"},
		{Key: "style", Val: "background:" + color},
	})
	return element(atom.Span, nil, span, text(label))
}

func keyValueTable(pairs [][2]string) *html.Node {
	rows := make([][]string, len(pairs))
	for i, p := range pairs {
		rows[i] = []string{p[0], p[1]}
	}
	return textTable(nil, rows)
}

func textTable(header []string, rows [][]string) *html.Node {
	nodes := make([][]*html.Node, len(rows))
	for i, r := range rows {
		nodes[i] = make([]*html.Node, len(r))
		for j, cell := range r {
			nodes[i][j] = text(cell)
		}
	}
	return nodeTable(header, nodes)
}

// nodeTable builds <table><thead>...</thead><tbody>...</tbody></table>.
// The thead is omitted when header is nil.
func nodeTable(header []string, rows [][]*html.Node) *html.Node {
	tbl := element(atom.Table, nil)
	if header != nil {
		tr := element(atom.Tr, nil)
		for _, h := range header {
			appendChildren(tr, element(atom.Th, nil, text(h)))
		}
		appendChildren(tbl, element(atom.Thead, nil, tr))
	}
	body := element(atom.Tbody, nil)
	for _, r := range rows {
		tr := element(atom.Tr, nil)
		for _, cell := range r {
			appendChildren(tr, element(atom.Td, nil, cell))
		}
		appendChildren(body, tr)
	}
	appendChildren(tbl, body)
	return tbl
}
