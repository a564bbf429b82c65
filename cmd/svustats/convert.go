package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Tyorden/svustats/internal/database"
	"github.com/Tyorden/svustats/internal/loader"
	"github.com/Tyorden/svustats/internal/model"
	"github.com/Tyorden/svustats/internal/report"
)

// NewConvertCmd creates the convert command.
func NewConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <destination>",
		Short: "Convert the dataset to JSON, YAML or SQLite",
		Long: `Convert writes the loaded dataset to another file format, chosen by the
destination extension: .json, .yaml/.yml or .db/.sqlite/.sqlite3.

A SQLite file can hold several datasets. Converting into an existing file
replaces the dataset with the same name and keeps the others.

Examples:
  # Import a curated spreadsheet export into a database
  svustats --dataset persons.csv convert data.db --name mine

  # Dump a bundled dataset for editing
  svustats --dataset lo convert lo.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: runConvertCmd,
	}
	cmd.Flags().String("name", "", "Dataset name to store (default: the loaded name)")
	return cmd
}

// runConvertCmd executes the convert command.
func runConvertCmd(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	name, err := cmd.Flags().GetString("name")
	if err != nil {
		return err
	}
	dest := args[0]
	format, err := loader.DetectFormat(dest)
	if err != nil {
		return err
	}

	ds, err := a.loadDataset(ctx)
	if err != nil {
		return err
	}
	if name = strings.TrimSpace(name); name != "" {
		ds = model.NewDataset(name, ds.Title, ds.Variant, ds.Episodes, ds.Persons)
	}

	switch format {
	case loader.FormatSQLite:
		db, err := database.Open(dest, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		if err := db.SaveDataset(ctx, ds); err != nil {
			return err
		}
	case loader.FormatJSON, loader.FormatYAML:
		out, err := report.OpenOutput(dest, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer out.Close()
		if format == loader.FormatJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			err = enc.Encode(ds)
		} else {
			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			if err = enc.Encode(ds); err == nil {
				err = enc.Close()
			}
		}
		if err != nil {
			return fmt.Errorf("failed to encode dataset: %w", err)
		}
		if err := out.Close(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: cannot write %s", loader.ErrUnsupportedFormat, format)
	}

	a.logger.Info("converted dataset", "name", ds.Name, "episodes", len(ds.Episodes), "persons", len(ds.Persons), "destination", dest)
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote dataset %s (%d episodes, %d persons) to %s\n",
		ds.Name, len(ds.Episodes), len(ds.Persons), dest)
	return nil
}
