package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Tyorden/svustats/internal/config"
)

//go:embed templates/svustats.yaml
var configTemplate embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new svustats configuration file",
		Long: `Initialize creates a new ` + config.DefaultConfigFile + ` configuration file in the current directory.

The generated file documents every setting with its default value. With
--effective the file holds the settings currently in effect instead, as
resolved from an existing configuration file, environment and flags.

Examples:
  # Create .svustats.yaml in current directory
  svustats init

  # Create config file at a specific path
  svustats init -o myconfig.yaml

  # Capture the current settings, overwriting an existing file
  svustats --dataset lo --format markdown init --effective --force`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	// -f is taken by the global --format flag.
	cmd.Flags().Bool("force", false,
		"Overwrite existing configuration file")
	cmd.Flags().Bool("effective", false,
		"Write the settings currently in effect instead of the commented template")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}
	effective, err := cmd.Flags().GetBool("effective")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", outputPath)
		}
	}

	if effective {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := config.Save(a.cfg, outputPath); err != nil {
			return fmt.Errorf("failed to write configuration file: %w", err)
		}
	} else {
		content, err := configTemplate.ReadFile("templates/svustats.yaml")
		if err != nil {
			return fmt.Errorf("failed to read config template: %w", err)
		}
		if dir := filepath.Dir(outputPath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}
		}
		if err := os.WriteFile(outputPath, content, 0600); err != nil {
			return fmt.Errorf("failed to write configuration file: %w", err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created configuration file: %s\n", outputPath)
	return nil
}
