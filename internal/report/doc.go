// Package report renders dataset documents and cross-tab tables.
//
// A Document is the full dashboard for one dataset. The pipeline package
// fills it; the writers here only serialize it:
//   - TextWriter: aligned plain text for terminals, optionally colored
//   - JSONWriter: structured JSON that decodes back into a Document
//   - CSVWriter: category,title,value,detail rows
//   - MarkdownWriter: tables with a mermaid severity pie chart
//   - HTMLWriter: a standalone HTML page
//
// ChartRenderer draws a cross-tab as a stacked bar chart in SVG or PNG.
package report
