package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/Tyorden/svustats/internal/crosstab"
	"github.com/Tyorden/svustats/internal/model"
	"github.com/Tyorden/svustats/internal/report"
	"github.com/Tyorden/svustats/internal/stats"
)

// ErrNoDataset is returned by steps run on a document without a source.
var ErrNoDataset = errors.New("document has no source dataset")

// AverageFields are the fields the averages step groups severity by.
var AverageFields = []model.Field{
	model.FieldRoleInPlot,
	model.FieldAccusationOrigin,
	model.FieldExposureWhoTold,
}

// SummaryStep fills Document.Summary from the whole dataset.
type SummaryStep struct{}

// Name returns the step name.
func (SummaryStep) Name() string { return "summary" }

// Do executes the step.
func (SummaryStep) Do(_ context.Context, doc *report.Document) error {
	if doc.Source == nil {
		return ErrNoDataset
	}
	doc.Summary = stats.Summarize(doc.Source)
	return nil
}

// SeverityStep fills the severity distribution and the season trend.
type SeverityStep struct{}

// Name returns the step name.
func (SeverityStep) Name() string { return "severity" }

// Do executes the step.
func (SeverityStep) Do(_ context.Context, doc *report.Document) error {
	doc.Severity = stats.SeverityDistribution(doc.Persons)
	doc.SeasonTrend = stats.SeasonTrend(doc.Persons)
	return nil
}

// AveragesStep fills the average severity per code of each field.
type AveragesStep struct {
	Fields []model.Field
}

// NewAveragesStep creates an AveragesStep. Without fields it uses
// AverageFields.
func NewAveragesStep(fields ...model.Field) *AveragesStep {
	if len(fields) == 0 {
		fields = AverageFields
	}
	return &AveragesStep{Fields: fields}
}

// Name returns the step name.
func (s *AveragesStep) Name() string { return "averages" }

// Do executes the step.
func (s *AveragesStep) Do(_ context.Context, doc *report.Document) error {
	doc.Averages = doc.Averages[:0]
	for _, f := range s.Fields {
		if !f.Valid() {
			return fmt.Errorf("%w: %d", model.ErrUnknownField, uint8(f))
		}
		doc.Averages = append(doc.Averages, report.AverageSection{
			Field: f,
			Rows:  stats.AverageSeverityBy(doc.Persons, f),
		})
	}
	return nil
}

// ApologyStep fills the apology rates. Police conduct is always covered;
// prosecutorial conduct only for variants that carry it.
type ApologyStep struct{}

// Name returns the step name.
func (ApologyStep) Name() string { return "apology" }

// Do executes the step.
func (ApologyStep) Do(_ context.Context, doc *report.Document) error {
	if doc.Source == nil {
		return ErrNoDataset
	}
	doc.Apology = []report.ApologySection{{
		Conduct: model.FieldPoliceConductThreat,
		Apology: model.FieldPoliceApology,
		Rates:   stats.ApologyRates(doc.Persons, model.FieldPoliceConductThreat, model.FieldPoliceApology),
	}}
	if doc.Source.Variant.Supports(model.FieldProsecutorialConduct) {
		doc.Apology = append(doc.Apology, report.ApologySection{
			Conduct: model.FieldProsecutorialConduct,
			Apology: model.FieldProsecutorialApology,
			Rates:   stats.ApologyRates(doc.Persons, model.FieldProsecutorialConduct, model.FieldProsecutorialApology),
		})
	}
	return nil
}

// HarmStep fills the physical harm breakdown.
type HarmStep struct{}

// Name returns the step name.
func (HarmStep) Name() string { return "harm" }

// Do executes the step.
func (HarmStep) Do(_ context.Context, doc *report.Document) error {
	doc.Harm = stats.HarmBreakdown(doc.Persons)
	return nil
}

// Pair is an ordered (x, y) field pair.
type Pair struct {
	X model.Field
	Y model.Field
}

// DefaultPairs are the cross-tabs included in a standard report.
var DefaultPairs = []Pair{
	{model.FieldPoliceConductThreat, model.FieldPoliceApology},
	{model.FieldSeason, model.FieldSeverity},
	{model.FieldAccusationOrigin, model.FieldSeverity},
	{model.FieldExposureChannel, model.FieldConsequenceCategory},
}

// CrossTabStep appends one cross-tab per pair to Document.Tables. Pairs
// that use a field the dataset variant lacks are skipped.
type CrossTabStep struct {
	Pairs   []Pair
	Options crosstab.Options
	// Workers bounds the goroutines of each tabulation; zero means
	// GOMAXPROCS.
	Workers int
}

// Name returns the step name.
func (s *CrossTabStep) Name() string { return "crosstab" }

// Do executes the step.
func (s *CrossTabStep) Do(ctx context.Context, doc *report.Document) error {
	if doc.Source == nil {
		return ErrNoDataset
	}
	for _, pair := range s.Pairs {
		if !doc.Source.Variant.Supports(pair.X) || !doc.Source.Variant.Supports(pair.Y) {
			continue
		}
		t, err := crosstab.CrossTabulateParallel(ctx, doc.Persons, pair.X, pair.Y, s.Options, s.Workers)
		if err != nil {
			return fmt.Errorf("crosstab %s x %s: %w", pair.X, pair.Y, err)
		}
		doc.Tables = append(doc.Tables, t)
	}
	return nil
}

// StandardSteps returns the steps of a full dashboard report.
func StandardSteps(opt crosstab.Options, workers int) []Step {
	return []Step{
		SummaryStep{},
		SeverityStep{},
		NewAveragesStep(),
		ApologyStep{},
		HarmStep{},
		&CrossTabStep{Pairs: DefaultPairs, Options: opt, Workers: workers},
	}
}
