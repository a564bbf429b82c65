package report

import (
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/sha3"

	"github.com/Tyorden/svustats/internal/crosstab"
	"github.com/Tyorden/svustats/internal/model"
	"github.com/Tyorden/svustats/internal/stats"
)

// DatasetInfo identifies the dataset a document was computed from.
type DatasetInfo struct {
	Name     string        `json:"name"`
	Title    string        `json:"title"`
	Variant  model.Variant `json:"variant"`
	Episodes int           `json:"episodes"`
	Persons  int           `json:"persons"`
	// Selected is the number of persons that passed the filter.
	Selected    int    `json:"selected"`
	Fingerprint string `json:"fingerprint"`
}

// AverageSection is the severity average per code of one field.
type AverageSection struct {
	Field model.Field             `json:"field"`
	Rows  []stats.CategoryAverage `json:"rows"`
}

// ApologySection is the apology rate per code of one conduct field.
type ApologySection struct {
	Conduct model.Field         `json:"conduct"`
	Apology model.Field         `json:"apology"`
	Rates   []stats.ApologyRate `json:"rates"`
}

// Document is the complete report for one dataset.
type Document struct {
	ID          string      `json:"id"`
	GeneratedAt time.Time   `json:"generated_at"`
	Version     string      `json:"version,omitempty"`
	Dataset     DatasetInfo `json:"dataset"`

	Summary     stats.Summary           `json:"summary"`
	Severity    stats.SeverityBreakdown `json:"severity"`
	SeasonTrend []stats.SeasonPoint     `json:"season_trend"`
	Averages    []AverageSection        `json:"averages"`
	Apology     []ApologySection        `json:"apology"`
	Harm        stats.HarmSummary       `json:"harm"`
	Tables      []*crosstab.Table       `json:"tables,omitempty"`

	// Steps lists the pipeline steps that ran, in order.
	Steps []string `json:"steps,omitempty"`
	// Errors holds the messages of steps that failed.
	Errors []string `json:"errors,omitempty"`

	// Source and Persons are the inputs the pipeline reads.
	Source  *model.Dataset `json:"-"`
	Persons []model.Person `json:"-"`
}

// NewDocument creates an empty document for ds. Persons is the filtered
// person set the rollups run over; nil means every person of ds.
func NewDocument(ds *model.Dataset, persons []model.Person, version string) *Document {
	if persons == nil {
		persons = ds.Persons
	}
	return &Document{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Version:     version,
		Dataset: DatasetInfo{
			Name:        ds.Name,
			Title:       ds.Title,
			Variant:     ds.Variant,
			Episodes:    len(ds.Episodes),
			Persons:     len(ds.Persons),
			Selected:    len(persons),
			Fingerprint: Fingerprint(ds),
		},
		Source:  ds,
		Persons: persons,
	}
}

// HasErrors reports whether any step failed.
func (d *Document) HasErrors() bool {
	return len(d.Errors) > 0
}

// Fingerprint returns a SHA3-256 digest of the episodes and persons of ds,
// hex encoded. Two datasets with the same records share a fingerprint
// regardless of name.
func Fingerprint(ds *model.Dataset) string {
	h := sha3.New256()
	enc := json.NewEncoder(h)
	// Encoding plain structs of strings cannot fail.
	_ = enc.Encode(ds.Episodes)
	_ = enc.Encode(ds.Persons)
	return hex.EncodeToString(h.Sum(nil))
}
