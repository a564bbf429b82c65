package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tyorden/svustats/internal/bundle"
	"github.com/Tyorden/svustats/internal/config"
	"github.com/Tyorden/svustats/internal/crosstab"
	"github.com/Tyorden/svustats/internal/definition"
	"github.com/Tyorden/svustats/internal/loader"
	"github.com/Tyorden/svustats/internal/log"
	"github.com/Tyorden/svustats/internal/model"
	"github.com/Tyorden/svustats/internal/report"
)

// errFieldUnavailable is returned for a field the dataset variant does not carry.
var errFieldUnavailable = errors.New("field not available in this dataset")

// app bundles what every subcommand needs once flags are parsed.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

// newApp loads the configuration for cmd and sets up logging.
func newApp(cmd *cobra.Command) (*app, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(configPath, cmd.Flags())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := log.New(cmd.ErrOrStderr(), cfg.LogFormat, cfg.Verbose)
	if cfg.ConfigFilePath != "" {
		logger.Debug("loaded configuration", "path", cfg.ConfigFilePath)
	}
	return &app{cfg: cfg, logger: logger}, nil
}

// commandContext returns a context cancelled on interrupt.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt)
}

// loadDataset resolves the configured dataset. Bundled names win over
// files; a SQLite source may select one of its datasets with "file.db#name".
func (a *app) loadDataset(ctx context.Context) (*model.Dataset, error) {
	src := a.cfg.ResolveDataset()
	if bundle.Has(src) {
		a.logger.Debug("using bundled dataset", "name", src)
		return bundle.Load(src)
	}

	path, name, _ := strings.Cut(src, "#")
	if _, err := loader.DetectFormat(path); err != nil {
		return nil, fmt.Errorf("%q is not a bundled dataset (%s) or a dataset file: %w",
			src, strings.Join(bundle.Names(), ", "), err)
	}
	l := loader.New(loader.WithLogger(a.logger), loader.WithDatasetName(name))
	return l.Load(ctx, path)
}

// crosstabOptions returns the labelling options of the configuration.
func (a *app) crosstabOptions() crosstab.Options {
	return crosstab.Options{Formatted: a.cfg.Formatted, MergeOnLabel: a.cfg.MergeOnLabel}
}

// dbPath returns the snapshot database path.
func (a *app) dbPath() string {
	return a.cfg.ResolveDBPath()
}

// openOutput opens the -o destination of cmd and picks the output format.
// When --format was not given, a known file extension decides it.
func (a *app) openOutput(cmd *cobra.Command) (io.WriteCloser, report.Format, error) {
	path, err := cmd.Flags().GetString("output")
	if err != nil {
		return nil, "", err
	}
	format, err := report.ParseFormat(a.cfg.Format)
	if err != nil {
		return nil, "", err
	}
	if path != "" && path != "-" && !cmd.Flags().Changed("format") {
		if f, ok := report.FormatFromPath(path); ok {
			format = f
		}
	}
	w, err := report.OpenOutput(path, cmd.OutOrStdout())
	if err != nil {
		return nil, "", err
	}
	return w, format, nil
}

// newWriter creates a report writer for format on w.
func (a *app) newWriter(format report.Format, w io.Writer) (report.Writer, error) {
	return report.NewWriter(format, w, report.WriterOptions{Pretty: true, Color: a.cfg.Color})
}

// requireField parses name and checks that ds carries the field.
func requireField(ds *model.Dataset, name string) (model.Field, error) {
	f, err := model.ParseField(name)
	if err != nil {
		return 0, err
	}
	if !ds.Variant.Supports(f) {
		return 0, fmt.Errorf("%w: %s in %s", errFieldUnavailable, f, ds.Variant)
	}
	return f, nil
}

// addOutputFlag registers -o on cmd.
func addOutputFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", "", "Write to a file instead of stdout (.gz compresses)")
}

// addLabelFlags registers the cross-tab labelling flags on cmd.
func addLabelFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("formatted", false, "Use display labels instead of raw codes")
	cmd.Flags().Bool("merge-on-label", false, "Sum codes that share a display label")
}

// addFilterFlags registers the person filter flags on cmd.
func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("season", nil, "Only persons from these seasons")
	cmd.Flags().StringSlice("severity", nil, "Only persons with these severities (1-4, label or unrated)")
	cmd.Flags().StringArray("where", nil, "Only persons where field=value (repeatable)")
	cmd.Flags().String("search", "", "Only persons whose name, quote, notes or tags contain this text")
}

// buildFilter reads the filter flags of cmd.
func buildFilter(cmd *cobra.Command) (model.Filter, error) {
	var f model.Filter
	var err error

	if f.Seasons, err = cmd.Flags().GetStringSlice("season"); err != nil {
		return f, err
	}

	severities, err := cmd.Flags().GetStringSlice("severity")
	if err != nil {
		return f, err
	}
	for _, s := range severities {
		sev, err := parseSeverityFlag(s)
		if err != nil {
			return f, err
		}
		f.Severities = append(f.Severities, sev)
	}

	conditions, err := cmd.Flags().GetStringArray("where")
	if err != nil {
		return f, err
	}
	for _, c := range conditions {
		cond, err := model.ParseCondition(c)
		if err != nil {
			return f, err
		}
		f.Conditions = append(f.Conditions, cond)
	}

	if f.Search, err = cmd.Flags().GetString("search"); err != nil {
		return f, err
	}
	return f, nil
}

// parseSeverityFlag accepts a code, a label or "unrated".
func parseSeverityFlag(s string) (model.Severity, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "unrated") {
		return model.SeverityUnrated, nil
	}
	if sev := model.ParseSeverity(s); sev.Rated() {
		return sev, nil
	}
	for _, sev := range model.Severities() {
		if strings.EqualFold(definition.SeverityLabel(sev), s) {
			return sev, nil
		}
	}
	return model.SeverityUnrated, fmt.Errorf("invalid severity %q (want 1-4, a label or unrated)", s)
}
