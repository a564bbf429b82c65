package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tyorden/svustats/internal/crosstab"
	"github.com/Tyorden/svustats/internal/model"
)

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the cross-tab of every field pair",
		Long: `Export cross-tabulates every ordered pair of distinct fields of the
dataset and writes all tables in one output. Use --fields to restrict the
export to a subset of fields.

Examples:
  # Every pair as JSON
  svustats export -f json -o tables.json

  # Only three fields, labelled, as CSV
  svustats export --fields season,severity,police_apology --formatted -o tables.csv`,
		Args: cobra.NoArgs,
		RunE: runExportCmd,
	}

	addLabelFlags(cmd)
	addFilterFlags(cmd)
	addOutputFlag(cmd)
	cmd.Flags().StringSlice("fields", nil, "Fields to pair (default: every field of the dataset)")

	return cmd
}

// runExportCmd executes the export command.
func runExportCmd(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	names, err := cmd.Flags().GetStringSlice("fields")
	if err != nil {
		return err
	}
	filter, err := buildFilter(cmd)
	if err != nil {
		return err
	}

	ds, err := a.loadDataset(ctx)
	if err != nil {
		return err
	}

	fields := ds.Variant.Fields()
	if len(names) > 0 {
		fields = make([]model.Field, 0, len(names))
		for _, name := range names {
			f, err := requireField(ds, name)
			if err != nil {
				return err
			}
			fields = append(fields, f)
		}
	}
	if len(fields) < 2 {
		return fmt.Errorf("export needs at least two fields, got %d", len(fields))
	}

	persons := filter.Apply(ds.Persons)
	tables, err := crosstab.Permutations(ctx, persons, fields, a.crosstabOptions(), a.cfg.Workers)
	if err != nil {
		return fmt.Errorf("failed to cross-tabulate: %w", err)
	}
	a.logger.Info("exported cross-tabs", "tables", len(tables), "persons", len(persons))

	out, format, err := a.openOutput(cmd)
	if err != nil {
		return err
	}
	defer out.Close()

	w, err := a.newWriter(format, out)
	if err != nil {
		return err
	}
	if _, err := w.WriteTables(tables...); err != nil {
		return fmt.Errorf("failed to write tables: %w", err)
	}
	return out.Close()
}
