package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Tyorden/svustats/internal/model"
	"github.com/Tyorden/svustats/internal/report"
)

// BatchProcessor builds documents for several datasets concurrently.
type BatchProcessor struct {
	// pipelineFactory returns a fresh pipeline for every dataset.
	pipelineFactory func() *Pipeline

	concurrency int
	filter      model.Filter
	version     string
	logger      *slog.Logger

	results []*report.Document
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets the logger used for batch-level messages.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of datasets processed at once.
// Default is 4.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithFilter applies f to every dataset's persons before the steps run.
func WithFilter(f model.Filter) BatchOption {
	return func(b *BatchProcessor) {
		b.filter = f
	}
}

// WithVersion sets the version stamped on every document.
func WithVersion(version string) BatchOption {
	return func(b *BatchProcessor) {
		b.version = version
	}
}

// NewBatchProcessor creates a BatchProcessor.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     4,
		results:         make([]*report.Document, 0),
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

func (bp *BatchProcessor) newDocument(ds *model.Dataset) *report.Document {
	return report.NewDocument(ds, bp.filter.Apply(ds.Persons), bp.version)
}

// ProcessBatch builds one document per dataset, in input order. A failing
// pipeline does not stop the others; its errors are kept in the document.
// The returned error is non-nil only when ctx is cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, datasets []*model.Dataset) ([]*report.Document, error) {
	bp.logger.Info("starting batch processing",
		"datasets", len(datasets),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	bp.results = make([]*report.Document, len(datasets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, ds := range datasets {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			doc := bp.newDocument(ds)
			err := bp.pipelineFactory().Execute(ctx, doc)

			bp.mu.Lock()
			bp.results[i] = doc
			bp.mu.Unlock()

			if err != nil {
				bp.logger.Warn("report failed",
					"dataset", ds.Name,
					"error", err,
				)
				return nil
			}
			bp.logger.Debug("report completed", "dataset", ds.Name)
			return nil
		})
	}

	err := g.Wait()
	bp.logger.Info("batch processing complete",
		"datasets", len(datasets),
		"elapsed", time.Since(startTime),
	)
	return bp.results, err
}

// ProcessBatchWithCallback builds documents and hands each to callback as
// soon as it is complete. callback runs on worker goroutines.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	datasets []*model.Dataset,
	callback func(doc *report.Document, index int),
) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, ds := range datasets {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			doc := bp.newDocument(ds)
			_ = bp.pipelineFactory().Execute(ctx, doc) //nolint:errcheck // recorded in doc.Errors
			callback(doc, i)
			return nil
		})
	}
	return g.Wait()
}
