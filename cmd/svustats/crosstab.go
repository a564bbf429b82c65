package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tyorden/svustats/internal/crosstab"
	"github.com/Tyorden/svustats/internal/report"
)

// NewCrossTabCmd creates the crosstab command.
func NewCrossTabCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crosstab <x-field> <y-field>",
		Short: "Cross-tabulate two fields",
		Long: `Crosstab counts the persons of the dataset for every combination of
the values of two fields. Each row is a value of the first field, each
column a value of the second. Values missing from a row count as zero.

Run 'svustats fields' to list the field names of a dataset.

Examples:
  # Police conduct against police apology, raw codes
  svustats crosstab police_conduct_threat police_apology

  # Severity per season with display labels
  svustats crosstab season severity --formatted

  # Only persons who were publicly exposed by the media
  svustats crosstab accusation_origin severity --where exposure_channel=news_media

  # Render a stacked bar chart
  svustats crosstab season severity --chart svg -o severity.svg`,
		Args: cobra.ExactArgs(2),
		RunE: runCrossTabCmd,
	}

	addLabelFlags(cmd)
	addFilterFlags(cmd)
	addOutputFlag(cmd)
	cmd.Flags().String("chart", "", "Render a stacked bar chart instead of a table: svg or png")

	return cmd
}

// runCrossTabCmd executes the crosstab command.
func runCrossTabCmd(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	chartName, err := cmd.Flags().GetString("chart")
	if err != nil {
		return err
	}
	var chartFormat report.ChartFormat
	if chartName != "" {
		if chartFormat, err = report.ParseChartFormat(chartName); err != nil {
			return err
		}
	}
	filter, err := buildFilter(cmd)
	if err != nil {
		return err
	}

	ds, err := a.loadDataset(ctx)
	if err != nil {
		return err
	}
	x, err := requireField(ds, args[0])
	if err != nil {
		return err
	}
	y, err := requireField(ds, args[1])
	if err != nil {
		return err
	}

	persons := filter.Apply(ds.Persons)
	a.logger.Debug("cross-tabulating", "x", x, "y", y, "persons", len(persons))
	table, err := crosstab.CrossTabulateParallel(ctx, persons, x, y, a.crosstabOptions(), a.cfg.Workers)
	if err != nil {
		return fmt.Errorf("failed to cross-tabulate: %w", err)
	}

	out, format, err := a.openOutput(cmd)
	if err != nil {
		return err
	}
	defer out.Close()

	if chartFormat != "" {
		if err := report.NewChartRenderer().Render(out, table, chartFormat); err != nil {
			return fmt.Errorf("failed to render chart: %w", err)
		}
		return out.Close()
	}

	w, err := a.newWriter(format, out)
	if err != nil {
		return err
	}
	if _, err := w.WriteTables(table); err != nil {
		return fmt.Errorf("failed to write table: %w", err)
	}
	return out.Close()
}
