package model

import (
	"strconv"
	"strings"
)

// Flag is a tri-state episode marker: "Y", "N" or "Maybe".
type Flag string

const (
	// FlagYes marks an episode where the condition clearly holds.
	FlagYes Flag = "Y"
	// FlagNo marks an episode where the condition does not hold.
	FlagNo Flag = "N"
	// FlagMaybe marks an episode the curators could not decide on.
	FlagMaybe Flag = "Maybe"
)

// Normalize maps the spellings found in curated sheets onto the canonical
// flag values. Unrecognized text is returned trimmed but otherwise unchanged.
func (f Flag) Normalize() Flag {
	switch strings.ToLower(strings.TrimSpace(string(f))) {
	case "y", "yes", "true":
		return FlagYes
	case "n", "no", "false":
		return FlagNo
	case "maybe", "m", "?":
		return FlagMaybe
	default:
		return Flag(strings.TrimSpace(string(f)))
	}
}

// Episode is a single curated episode. CustomID is unique within a dataset
// and is the only join key towards Person records.
type Episode struct {
	// CustomID identifies the episode, e.g. "S03E07".
	CustomID string `json:"custom_id" yaml:"custom_id"`

	// Season and EpisodeNumber are numeric strings as delivered by the sheet.
	Season        string `json:"season" yaml:"season"`
	EpisodeNumber string `json:"episode_number" yaml:"episode_number"`

	Title   string `json:"title" yaml:"title"`
	Summary string `json:"summary,omitempty" yaml:"summary,omitempty"`

	// HasFalseSuspect is set when the plot accuses someone who is innocent.
	HasFalseSuspect Flag `json:"has_false_suspect" yaml:"has_false_suspect"`

	// HasPublicExposure is set when the accusation becomes public.
	HasPublicExposure Flag `json:"has_public_exposure" yaml:"has_public_exposure"`

	// NeedsDeepReview is "Y" when a curator queued the episode for a rewatch.
	NeedsDeepReview Flag `json:"needs_deep_review" yaml:"needs_deep_review"`
}

// SeasonNumber returns the season as an integer.
func (e Episode) SeasonNumber() (int, bool) {
	return atoi(e.Season)
}

// Number returns the episode number within its season.
func (e Episode) Number() (int, bool) {
	return atoi(e.EpisodeNumber)
}

// Person is one accused person inside an episode.
//
// The categorical fields hold raw codes from a small closed vocabulary
// (see the definition package). Empty values are legal; the extractor
// substitutes a per-field default when reading them.
type Person struct {
	CustomID string `json:"custom_id" yaml:"custom_id"`
	PersonID string `json:"person_id_in_episode" yaml:"person_id_in_episode"`
	Season   string `json:"season" yaml:"season"`
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`

	RoleInPlot       string `json:"role_in_plot" yaml:"role_in_plot"`
	AccusedOf        string `json:"accused_of" yaml:"accused_of"`
	AccusationOrigin string `json:"accusation_origin" yaml:"accusation_origin"`
	InnocenceStatus  string `json:"innocence_status" yaml:"innocence_status"`
	ExposureChannel  string `json:"exposure_channel" yaml:"exposure_channel"`
	ExposureWhoTold  string `json:"exposure_who_told" yaml:"exposure_who_told"`

	ConsequenceCategory    string `json:"consequence_category" yaml:"consequence_category"`
	ConsequenceSeverity    string `json:"consequence_severity" yaml:"consequence_severity"`
	ConsequenceDescription string `json:"consequence_description,omitempty" yaml:"consequence_description,omitempty"`

	PoliceConductThreat string `json:"police_conduct_threat" yaml:"police_conduct_threat"`
	PoliceApology       string `json:"police_apology" yaml:"police_apology"`

	// Prosecutorial fields only exist in the "lo" variant.
	ProsecutorialConduct string `json:"prosecutorial_conduct,omitempty" yaml:"prosecutorial_conduct,omitempty"`
	ProsecutorialApology string `json:"prosecutorial_apology,omitempty" yaml:"prosecutorial_apology,omitempty"`

	// Display-only free text. Never aggregated.
	Quote string `json:"quote,omitempty" yaml:"quote,omitempty"`
	Notes string `json:"notes,omitempty" yaml:"notes,omitempty"`
	Tags  string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Key returns the identity of the person across the whole dataset.
func (p Person) Key() string {
	return p.CustomID + "#" + p.PersonID
}

// Value implements Record.
func (p Person) Value(f Field) string {
	return Extract(&p, f)
}

// Severity returns the parsed consequence severity.
func (p Person) Severity() Severity {
	return ParseSeverity(p.ConsequenceSeverity)
}

// TagList splits the semicolon-delimited tags.
func (p Person) TagList() []string {
	if strings.TrimSpace(p.Tags) == "" {
		return nil
	}
	parts := strings.Split(p.Tags, ";")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if t := strings.TrimSpace(part); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// Record is anything the cross-tab engine can read a coded value from.
type Record interface {
	Value(f Field) string
}

func atoi(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, true
}
