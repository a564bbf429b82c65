package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Tyorden/svustats/internal/report"
)

// Step is one stage of document construction.
type Step interface {
	// Do fills its part of doc. A returned error is recorded in the
	// document; whether later steps still run depends on the pipeline.
	Do(ctx context.Context, doc *report.Document) error

	// Name returns the step's name for logging and for Document.Steps.
	Name() string
}

// Pipeline runs steps in order against one document.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger

	// continueOnError keeps running later steps after a failure.
	continueOnError bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used during execution.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError makes the pipeline run every step even when an
// earlier one fails. Failures are still recorded in Document.Errors.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates an empty Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends several steps.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs every step against doc. Cancellation is checked before
// each step. It returns the first step error unless the pipeline was
// built WithContinueOnError, in which case it returns nil and the
// failures are only recorded in doc.Errors.
func (p *Pipeline) Execute(ctx context.Context, doc *report.Document) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", ctx.Err(),
			)
			doc.Errors = append(doc.Errors, fmt.Sprintf("%s: %v", step.Name(), ctx.Err()))
			return ctx.Err()
		default:
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"dataset", doc.Dataset.Name,
		)

		if err := step.Do(ctx, doc); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"dataset", doc.Dataset.Name,
				"error", err,
			)
			doc.Errors = append(doc.Errors, fmt.Sprintf("%s: %v", step.Name(), err))
			if !p.continueOnError {
				return fmt.Errorf("%s: %w", step.Name(), err)
			}
			continue
		}

		doc.Steps = append(doc.Steps, step.Name())
	}
	return nil
}

// StepCount returns the number of steps.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the step names in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
