package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tyorden/svustats/internal/crosstab"
	"github.com/Tyorden/svustats/internal/database"
	"github.com/Tyorden/svustats/internal/model"
	"github.com/Tyorden/svustats/internal/report"
	"github.com/Tyorden/svustats/internal/stats"
)

// NewCompareCmd creates the compare command.
// This command compares report snapshots stored with 'svustats report --save'.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [dataset | old.json new.json]",
		Short: "Compare saved report snapshots",
		Long: `Compare displays the differences between two saved reports of a dataset:
whether the underlying data changed, how the headline numbers moved and
how many cells of each cross-tab differ.

Snapshots are created by 'svustats report --save'. The dataset defaults to
the --dataset setting. Two JSON reports written by 'svustats report -f json'
can be compared directly without a database.

Examples:
  # Compare the latest two snapshots of the SVU dataset
  svustats compare svu

  # List the snapshot history
  svustats compare --list svu

  # Compare the latest snapshot with a specific one
  svustats compare --with 0b9c... svu

  # Compare with the first snapshot taken since a date
  svustats compare --since 2026-01-01 svu

  # Compare two exported reports
  svustats compare before.json after.json`,
		Args: cobra.MaximumNArgs(2),
		RunE: runCompareCmd,
	}

	cmd.Flags().BoolP("list", "l", false, "List the snapshot history of the dataset")
	cmd.Flags().BoolP("list-datasets", "L", false, "List every dataset with snapshots")
	cmd.Flags().StringP("with", "i", "", "Compare with the snapshot with this id")
	cmd.Flags().StringP("since", "s", "", "Compare with the first snapshot since this date (YYYY-MM-DD)")
	addOutputFlag(cmd)

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	listDatasets, err := cmd.Flags().GetBool("list-datasets")
	if err != nil {
		return err
	}
	listHistory, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	withID, err := cmd.Flags().GetString("with")
	if err != nil {
		return err
	}
	since, err := cmd.Flags().GetString("since")
	if err != nil {
		return err
	}
	var sinceDate time.Time
	if since != "" {
		if sinceDate, err = time.Parse(time.DateOnly, since); err != nil {
			return fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
		}
	}

	if len(args) == 2 {
		return compareFiles(cmd, a, args[0], args[1])
	}

	dataset := a.cfg.Dataset
	if len(args) > 0 {
		dataset = args[0]
	}

	db, err := database.Open(a.dbPath(), database.Options{ReadOnly: true})
	if err != nil {
		return fmt.Errorf("failed to open snapshot database (save one with 'svustats report --save'): %w", err)
	}
	defer db.Close()

	out, format, err := a.openOutput(cmd)
	if err != nil {
		return err
	}
	defer out.Close()

	var l []listing
	switch {
	case listDatasets:
		l, err = datasetsListing(ctx, db)
	case listHistory:
		l, err = historyListing(ctx, db, dataset)
	default:
		var result *ComparisonResult
		result, err = runComparison(ctx, db, dataset, withID, sinceDate)
		if err == nil {
			l = comparisonListings(result)
		}
	}
	if err != nil {
		return err
	}
	if err := writeListings(out, format, l...); err != nil {
		return err
	}
	return out.Close()
}

// compareFiles compares two JSON reports.
func compareFiles(cmd *cobra.Command, a *app, previousPath, currentPath string) error {
	previous, err := readReportFile(previousPath)
	if err != nil {
		return err
	}
	current, err := readReportFile(currentPath)
	if err != nil {
		return err
	}

	out, format, err := a.openOutput(cmd)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := writeListings(out, format, comparisonListings(compareReports(previous, current))...); err != nil {
		return err
	}
	return out.Close()
}

// readReportFile decodes a report written with the JSON format.
func readReportFile(path string) (*report.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	var doc report.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse report %s: %w", path, err)
	}
	return &doc, nil
}

// datasetsListing lists the datasets that have snapshots.
func datasetsListing(ctx context.Context, db *database.DB) ([]listing, error) {
	history, err := db.ReportHistory(ctx, "")
	if err != nil {
		return nil, err
	}
	counts := map[string]int{}
	var names []string
	for _, meta := range history {
		if counts[meta.Dataset] == 0 {
			names = append(names, meta.Dataset)
		}
		counts[meta.Dataset]++
	}
	rows := make([][]string, 0, len(names))
	for _, name := range names {
		rows = append(rows, []string{name, strconv.Itoa(counts[name])})
	}
	return []listing{{
		Title:  fmt.Sprintf("Datasets with snapshots (%d)", len(names)),
		Header: []string{"Dataset", "Snapshots"},
		Rows:   rows,
		Value:  counts,
	}}, nil
}

// historyListing lists the snapshots of dataset, newest first.
func historyListing(ctx context.Context, db *database.DB, dataset string) ([]listing, error) {
	history, err := db.ReportHistory(ctx, dataset)
	if err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(history))
	for _, meta := range history {
		rows = append(rows, []string{
			meta.ID,
			meta.GeneratedAt.Format(time.DateTime),
			shortFingerprint(meta.Fingerprint),
			strconv.Itoa(meta.Selected),
		})
	}
	return []listing{{
		Title:  fmt.Sprintf("Snapshot history for %s (%d snapshots)", dataset, len(history)),
		Header: []string{"ID", "Date", "Data", "Persons"},
		Rows:   rows,
		Value:  history,
	}}, nil
}

// runComparison picks the two snapshots and compares them. The latest
// snapshot is always the current one.
func runComparison(ctx context.Context, db *database.DB, dataset, withID string, since time.Time) (*ComparisonResult, error) {
	history, err := db.ReportHistory(ctx, dataset)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, fmt.Errorf("no snapshots found for %s", dataset)
	}
	if len(history) < 2 && withID == "" {
		return nil, fmt.Errorf("at least 2 snapshots are required for comparison (found %d)", len(history))
	}

	current := history[0]
	var previous database.ReportMetadata
	switch {
	case withID != "":
		found := false
		for _, meta := range history {
			if meta.ID == withID {
				previous, found = meta, true
				break
			}
		}
		if !found {
			if _, err := db.GetReport(ctx, withID); err == nil {
				return nil, fmt.Errorf("snapshot %s does not belong to %s", withID, dataset)
			} else if !errors.Is(err, database.ErrReportNotFound) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %s", database.ErrReportNotFound, withID)
		}
	case !since.IsZero():
		// History is newest first; walk back to find the oldest match.
		found := false
		for i := len(history) - 1; i >= 0; i-- {
			if !history[i].GeneratedAt.Before(since) {
				previous, found = history[i], true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("no snapshots found since %s", since.Format(time.DateOnly))
		}
	default:
		previous = history[1]
	}
	if previous.ID == current.ID {
		return nil, errors.New("at least 2 snapshots are required for comparison")
	}

	prevDoc, err := db.GetReport(ctx, previous.ID)
	if err != nil {
		return nil, err
	}
	curDoc, err := db.GetReport(ctx, current.ID)
	if err != nil {
		return nil, err
	}
	return compareReports(prevDoc, curDoc), nil
}

// ComparisonResult holds the differences between two report snapshots.
type ComparisonResult struct {
	Dataset  string           `json:"dataset"`
	Previous SnapshotMetadata `json:"previous"`
	Current  SnapshotMetadata `json:"current"`

	// DataChanged is set when the dataset fingerprints differ.
	DataChanged bool `json:"data_changed"`

	Metrics []MetricChange `json:"metrics"`
	Tables  []TableChange  `json:"tables,omitempty"`
}

// SnapshotMetadata identifies one side of a comparison.
type SnapshotMetadata struct {
	ID          string    `json:"id"`
	GeneratedAt time.Time `json:"generated_at"`
	Fingerprint string    `json:"fingerprint"`
	Selected    int       `json:"selected"`
}

// MetricChange is one headline number in both snapshots.
type MetricChange struct {
	Metric   string  `json:"metric"`
	Previous float64 `json:"previous"`
	Current  float64 `json:"current"`
	Delta    float64 `json:"delta"`
}

// TableChange counts the differing cells of a cross-tab present in both
// snapshots.
type TableChange struct {
	X            model.Field `json:"x"`
	Y            model.Field `json:"y"`
	ChangedCells int         `json:"changed_cells"`
	Previous     int         `json:"previous_total"`
	Current      int         `json:"current_total"`
}

// compareReports compares two snapshots.
func compareReports(previous, current *report.Document) *ComparisonResult {
	result := &ComparisonResult{
		Dataset:     current.Dataset.Name,
		Previous:    snapshotMetadata(previous),
		Current:     snapshotMetadata(current),
		DataChanged: previous.Dataset.Fingerprint != current.Dataset.Fingerprint,
	}

	metric := func(name string, prev, cur float64) {
		result.Metrics = append(result.Metrics, MetricChange{
			Metric:   name,
			Previous: prev,
			Current:  cur,
			Delta:    cur - prev,
		})
	}
	metric("Episodes", float64(previous.Summary.Episodes), float64(current.Summary.Episodes))
	metric("Persons", float64(previous.Dataset.Selected), float64(current.Dataset.Selected))
	metric("Average severity", previous.Summary.AverageSeverity, current.Summary.AverageSeverity)

	prevBuckets := bucketCounts(previous.Severity)
	for _, b := range current.Severity.Buckets {
		metric("Severity: "+b.Label, float64(prevBuckets[b.Code]), float64(b.Count))
	}

	prevHarm := harmCounts(previous.Harm)
	for _, c := range current.Harm.Classes {
		metric("Harm: "+c.Harm.String(), float64(prevHarm[c.Harm]), float64(c.Count))
	}
	metric("Harmed", float64(previous.Harm.Harmed), float64(current.Harm.Harmed))

	for _, cur := range current.Tables {
		for _, prev := range previous.Tables {
			if prev.XField == cur.XField && prev.YField == cur.YField && prev.Formatted == cur.Formatted {
				result.Tables = append(result.Tables, TableChange{
					X:            cur.XField,
					Y:            cur.YField,
					ChangedCells: changedCells(prev, cur),
					Previous:     prev.Total(),
					Current:      cur.Total(),
				})
				break
			}
		}
	}
	return result
}

func snapshotMetadata(doc *report.Document) SnapshotMetadata {
	return SnapshotMetadata{
		ID:          doc.ID,
		GeneratedAt: doc.GeneratedAt,
		Fingerprint: doc.Dataset.Fingerprint,
		Selected:    doc.Dataset.Selected,
	}
}

func bucketCounts(b stats.SeverityBreakdown) map[string]int {
	m := make(map[string]int, len(b.Buckets))
	for _, bucket := range b.Buckets {
		m[bucket.Code] = bucket.Count
	}
	return m
}

func harmCounts(s stats.HarmSummary) map[stats.Harm]int {
	m := make(map[stats.Harm]int, len(s.Classes))
	for _, c := range s.Classes {
		m[c.Harm] = c.Count
	}
	return m
}

// changedCells counts the (row, column) cells whose counts differ. A cell
// missing from one table counts as zero there.
func changedCells(previous, current *crosstab.Table) int {
	cells := func(t *crosstab.Table) map[[2]string]int {
		m := map[[2]string]int{}
		for _, r := range t.Rows {
			for col, n := range r.Counts {
				m[[2]string{r.XValue, col}] = n
			}
		}
		return m
	}
	prev, cur := cells(previous), cells(current)
	changed := 0
	for k, n := range cur {
		if prev[k] != n {
			changed++
		}
	}
	for k, n := range prev {
		if _, ok := cur[k]; !ok && n != 0 {
			changed++
		}
	}
	return changed
}

// comparisonListings renders result as two grids.
func comparisonListings(result *ComparisonResult) []listing {
	dataNote := "The dataset is unchanged."
	if result.DataChanged {
		dataNote = fmt.Sprintf("The dataset changed (%s -> %s).",
			shortFingerprint(result.Previous.Fingerprint), shortFingerprint(result.Current.Fingerprint))
	}

	metrics := listing{
		Title: fmt.Sprintf("Snapshot comparison: %s (%s -> %s)", result.Dataset,
			result.Previous.GeneratedAt.Format(time.DateTime), result.Current.GeneratedAt.Format(time.DateTime)),
		Header: []string{"Metric", "Previous", "Current", "Change"},
		Notes:  []string{dataNote},
		Value:  result,
	}
	for _, m := range result.Metrics {
		metrics.Rows = append(metrics.Rows, []string{
			m.Metric, formatNumber(m.Previous), formatNumber(m.Current), formatDelta(m.Delta),
		})
	}

	tables := listing{
		Title:  "Cross-tabs",
		Header: []string{"Table", "Changed Cells", "Previous", "Current"},
	}
	for _, t := range result.Tables {
		tables.Rows = append(tables.Rows, []string{
			t.X.String() + " x " + t.Y.String(),
			strconv.Itoa(t.ChangedCells),
			strconv.Itoa(t.Previous),
			strconv.Itoa(t.Current),
		})
	}
	if len(tables.Rows) == 0 {
		return []listing{metrics}
	}
	return []listing{metrics, tables}
}

// formatNumber prints whole numbers without decimals.
func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// formatDelta formats a change with a sign, or "-" when there is none.
func formatDelta(delta float64) string {
	switch {
	case delta > 0:
		return "+" + formatNumber(delta)
	case delta < 0:
		return formatNumber(delta)
	default:
		return "-"
	}
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return strings.TrimSpace(fp)
}
