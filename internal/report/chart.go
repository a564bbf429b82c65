package report

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/Tyorden/svustats/internal/crosstab"
	"github.com/Tyorden/svustats/internal/model"
)

// ErrEmptyChart is returned when a table has no records to draw.
var ErrEmptyChart = errors.New("table has no records to chart")

// ChartFormat is the image encoding of a rendered chart.
type ChartFormat string

const (
	ChartSVG ChartFormat = "svg"
	ChartPNG ChartFormat = "png"
)

// ParseChartFormat resolves "svg" or "png".
func ParseChartFormat(s string) (ChartFormat, error) {
	switch ChartFormat(strings.ToLower(strings.TrimSpace(s))) {
	case ChartSVG:
		return ChartSVG, nil
	case ChartPNG:
		return ChartPNG, nil
	default:
		return "", fmt.Errorf("%w: chart %q", ErrUnsupportedFormat, s)
	}
}

// palette colors non-severity columns in column order.
var palette = []string{
	"#3b82f6", "#a855f7", "#14b8a6", "#f59e0b", "#ec4899",
	"#64748b", "#84cc16", "#06b6d4", "#8b5cf6", "#f43f5e",
}

// ChartRenderer draws a cross-tab as a stacked bar chart with one bar per
// row. Segments are the row's share of each column. Severity columns use
// the severity color scale.
type ChartRenderer struct {
	Width     int
	Height    int
	BarWidth  int
	BarMargin int
}

// NewChartRenderer returns a renderer with default dimensions.
func NewChartRenderer() *ChartRenderer {
	return &ChartRenderer{Width: 1024, Height: 512, BarWidth: 60, BarMargin: 24}
}

// Render writes the chart of t to w.
func (c *ChartRenderer) Render(w io.Writer, t *crosstab.Table, format ChartFormat) error {
	if t == nil || t.Total() == 0 {
		return ErrEmptyChart
	}

	var provider chart.RendererProvider
	switch format {
	case ChartSVG:
		provider = chart.SVG
	case ChartPNG:
		provider = chart.PNG
	default:
		return fmt.Errorf("%w: chart %q", ErrUnsupportedFormat, format)
	}

	sbc := chart.StackedBarChart{
		Title:      fieldTitle(t.XField) + " by " + fieldTitle(t.YField),
		Width:      c.width(len(t.Rows)),
		Height:     c.Height,
		BarSpacing: c.BarMargin,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		Bars:       c.bars(t),
	}
	if err := sbc.Render(provider, w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

// width grows the canvas so every bar fits.
func (c *ChartRenderer) width(bars int) int {
	need := bars*(c.BarWidth+c.BarMargin) + 64
	return max(c.Width, need)
}

func (c *ChartRenderer) bars(t *crosstab.Table) []chart.StackedBar {
	colors := columnColors(t)
	bars := make([]chart.StackedBar, 0, len(t.Rows))
	for _, r := range t.Rows {
		if r.Total() == 0 {
			continue
		}
		values := make([]chart.Value, 0, len(t.Columns))
		for _, col := range t.Columns {
			n := r.Counts[col]
			if n == 0 {
				continue
			}
			color := drawing.ColorFromHex(colors[col])
			values = append(values, chart.Value{
				Label: col + " (" + strconv.Itoa(n) + ")",
				Value: float64(n),
				Style: chart.Style{
					FillColor:   color,
					StrokeColor: color,
				},
			})
		}
		bars = append(bars, chart.StackedBar{
			Name:   r.XValue,
			Width:  c.BarWidth,
			Values: values,
		})
	}
	return bars
}

// columnColors assigns a color to every column of t.
func columnColors(t *crosstab.Table) map[string]string {
	colors := make(map[string]string, len(t.Columns))
	for i, col := range t.Columns {
		if t.YField == model.FieldSeverity {
			colors[col] = severityColorOf(col, t.Formatted)
			continue
		}
		colors[col] = palette[i%len(palette)]
	}
	return colors
}
