package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/Tyorden/svustats/internal/bundle"
	"github.com/Tyorden/svustats/internal/database"
	"github.com/Tyorden/svustats/internal/model"
	"github.com/Tyorden/svustats/internal/pipeline"
	"github.com/Tyorden/svustats/internal/report"
)

// NewReportCmd creates the report command.
func NewReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Compute the full statistics report of a dataset",
		Long: `Report computes every rollup of the dataset: the summary counts, the
severity distribution and its trend per season, average severity per
category, apology rates, physical harm and the standard cross-tabs.

Filters narrow the persons the rollups run over; the episode counts of the
summary always cover the whole dataset.

Examples:
  # Report on the bundled SVU dataset
  svustats report

  # Both bundled datasets as one HTML file
  svustats report --all -o report.html

  # Seasons 1 to 3 only, saved as a snapshot for 'svustats compare'
  svustats report --season 1,2,3 --save`,
		Args: cobra.NoArgs,
		RunE: runReportCmd,
	}

	addLabelFlags(cmd)
	addFilterFlags(cmd)
	addOutputFlag(cmd)
	cmd.Flags().Bool("all", false, "Report on every bundled dataset")
	cmd.Flags().Bool("save", false, "Save the report as a snapshot in the database")

	return cmd
}

// runReportCmd executes the report command.
func runReportCmd(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	all, err := cmd.Flags().GetBool("all")
	if err != nil {
		return err
	}
	save, err := cmd.Flags().GetBool("save")
	if err != nil {
		return err
	}
	filter, err := buildFilter(cmd)
	if err != nil {
		return err
	}

	var db *database.DB
	if save {
		db, err = database.Open(a.dbPath(), database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
	}

	var docs []*report.Document
	if all {
		docs, err = a.reportAll(ctx, filter, db)
	} else {
		var doc *report.Document
		if doc, err = a.reportOne(ctx, filter); err == nil && db != nil {
			err = a.saveReport(ctx, db, doc)
		}
		docs = []*report.Document{doc}
	}
	if err != nil {
		return err
	}

	out, format, err := a.openOutput(cmd)
	if err != nil {
		return err
	}
	defer out.Close()

	w, err := a.newWriter(format, out)
	if err != nil {
		return err
	}
	failed := 0
	for _, doc := range docs {
		if _, err := w.Write(doc); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		if doc.HasErrors() {
			failed++
			for _, msg := range doc.Errors {
				a.logger.Warn("report step failed", "dataset", doc.Dataset.Name, "error", msg)
			}
		}
	}
	if err := out.Close(); err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%d report(s) completed with failed steps", failed)
	}
	return nil
}

// newPipeline returns the standard report pipeline.
func (a *app) newPipeline() *pipeline.Pipeline {
	p := pipeline.New(pipeline.WithLogger(a.logger), pipeline.WithContinueOnError(true))
	p.AddSteps(pipeline.StandardSteps(a.crosstabOptions(), a.cfg.Workers)...)
	a.logger.Debug("report pipeline", "steps", p.StepCount(), "names", p.StepNames())
	return p
}

// reportOne builds the report of the configured dataset.
func (a *app) reportOne(ctx context.Context, filter model.Filter) (*report.Document, error) {
	ds, err := a.loadDataset(ctx)
	if err != nil {
		return nil, err
	}
	doc := report.NewDocument(ds, filter.Apply(ds.Persons), getVersion())
	if err := a.newPipeline().Execute(ctx, doc); err != nil && ctx.Err() != nil {
		return nil, err
	}
	return doc, nil
}

// reportAll builds one report per bundled dataset, concurrently. With a
// database, each report is saved as soon as it is complete.
func (a *app) reportAll(ctx context.Context, filter model.Filter, db *database.DB) ([]*report.Document, error) {
	names := bundle.Names()
	datasets := make([]*model.Dataset, 0, len(names))
	for _, name := range names {
		ds, err := bundle.Load(name)
		if err != nil {
			return nil, err
		}
		datasets = append(datasets, ds)
	}

	bp := pipeline.NewBatchProcessor(a.newPipeline,
		pipeline.WithBatchLogger(a.logger),
		pipeline.WithFilter(filter),
		pipeline.WithVersion(getVersion()),
	)
	if db == nil {
		return bp.ProcessBatch(ctx, datasets)
	}

	docs := make([]*report.Document, len(datasets))
	var (
		mu      sync.Mutex
		saveErr error
	)
	err := bp.ProcessBatchWithCallback(ctx, datasets, func(doc *report.Document, i int) {
		docs[i] = doc
		if err := a.saveReport(ctx, db, doc); err != nil {
			mu.Lock()
			saveErr = errors.Join(saveErr, err)
			mu.Unlock()
		}
	})
	if err != nil {
		return nil, err
	}
	return docs, saveErr
}

// saveReport stores doc as a snapshot.
func (a *app) saveReport(ctx context.Context, db *database.DB, doc *report.Document) error {
	if err := db.SaveReport(ctx, doc); err != nil {
		return fmt.Errorf("failed to save report %s: %w", doc.Dataset.Name, err)
	}
	a.logger.Info("saved report snapshot", "id", doc.ID, "dataset", doc.Dataset.Name, "db", db.Path())
	return nil
}
