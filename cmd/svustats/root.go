package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tyorden/svustats/internal/config"
)

// NewRootCmd creates the root command for svustats.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "svustats",
		Short: "Statistics over wrongful accusation datasets",
		Long: `svustats analyses curated datasets of people wrongly accused in crime
drama episodes. It reports how severe the consequences were, whether the
police or prosecutors apologised, who was physically harmed, and
cross-tabulates any two coded fields.

Two datasets are bundled: "svu" and "lo". Any other dataset can be read
from JSON, YAML, CSV, TSV or a SQLite file created by 'svustats convert'.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	flags := cmd.PersistentFlags()
	flags.String("config", "", "Configuration file (default: search XDG config, ./"+config.DefaultConfigFile+", ~/"+config.DefaultConfigFile+")")
	flags.StringP("dataset", "d", config.DefaultDataset, "Bundled dataset name, configured source or dataset file")
	flags.StringP("format", "f", config.DefaultFormat, "Output format: text, json, csv, markdown or html")
	flags.Int("workers", config.DefaultWorkers, "Cross-tab worker goroutines (0 = number of CPUs)")
	flags.Bool("color", false, "Color severity levels in text output")
	flags.String("log-format", config.DefaultLogFormat, "Log format: text or json")
	flags.BoolP("verbose", "v", false, "Enable verbose logging")
	flags.String("db", "", "SQLite file for report snapshots (default: XDG data directory)")

	cmd.AddCommand(NewReportCmd())
	cmd.AddCommand(NewCrossTabCmd())
	cmd.AddCommand(NewExportCmd())
	cmd.AddCommand(NewEpisodeCmd())
	cmd.AddCommand(NewFieldsCmd())
	cmd.AddCommand(NewHarmCmd())
	cmd.AddCommand(NewConvertCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
