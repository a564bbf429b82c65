package model

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Variant distinguishes the two series datasets. Both share the base field
// set; VariantLO adds the prosecutorial conduct and apology fields.
type Variant string

const (
	// VariantSVU is the base dataset variant.
	VariantSVU Variant = "svu"
	// VariantLO extends the base variant with prosecutorial fields.
	VariantLO Variant = "lo"
)

// ParseVariant validates a variant name.
func ParseVariant(s string) (Variant, error) {
	switch Variant(strings.ToLower(strings.TrimSpace(s))) {
	case VariantSVU, "":
		return VariantSVU, nil
	case VariantLO:
		return VariantLO, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownVariant, s)
	}
}

// Supports reports whether records of this variant carry field f.
func (v Variant) Supports(f Field) bool {
	if !f.Valid() {
		return false
	}
	switch f {
	case FieldProsecutorialConduct, FieldProsecutorialApology:
		return v == VariantLO
	default:
		return true
	}
}

// Fields returns the fields available in this variant, in declaration order.
func (v Variant) Fields() []Field {
	var fields []Field
	for _, f := range AllFields() {
		if v.Supports(f) {
			fields = append(fields, f)
		}
	}
	return fields
}

// Dataset is one series: its episodes and the persons accused in them.
// A Dataset must not be modified after it has been handed to readers.
type Dataset struct {
	Name     string    `json:"name" yaml:"name"`
	Title    string    `json:"title" yaml:"title"`
	Variant  Variant   `json:"variant" yaml:"variant"`
	Episodes []Episode `json:"episodes" yaml:"episodes"`
	Persons  []Person  `json:"persons" yaml:"persons"`

	indexOnce sync.Once
	index     map[string]int
}

// NewDataset assembles a dataset from already-decoded records.
func NewDataset(name, title string, variant Variant, episodes []Episode, persons []Person) *Dataset {
	return &Dataset{
		Name:     name,
		Title:    title,
		Variant:  variant,
		Episodes: episodes,
		Persons:  persons,
	}
}

func (d *Dataset) buildIndex() {
	d.indexOnce.Do(func() {
		d.index = make(map[string]int, len(d.Episodes))
		for i, e := range d.Episodes {
			if _, dup := d.index[e.CustomID]; !dup {
				d.index[e.CustomID] = i
			}
		}
	})
}

// Episode looks up an episode by custom_id. The second result is false
// when no episode matches.
func (d *Dataset) Episode(customID string) (Episode, bool) {
	d.buildIndex()
	i, ok := d.index[strings.TrimSpace(customID)]
	if !ok {
		return Episode{}, false
	}
	return d.Episodes[i], true
}

// PersonsIn returns the persons recorded for an episode, in dataset order.
func (d *Dataset) PersonsIn(customID string) []Person {
	id := strings.TrimSpace(customID)
	var out []Person
	for _, p := range d.Persons {
		if p.CustomID == id {
			out = append(out, p)
		}
	}
	return out
}

// Seasons returns the distinct season numbers present in the episodes,
// sorted numerically. Non-numeric seasons are skipped.
func (d *Dataset) Seasons() []int {
	seen := map[int]bool{}
	for _, e := range d.Episodes {
		if n, ok := e.SeasonNumber(); ok {
			seen[n] = true
		}
	}
	seasons := make([]int, 0, len(seen))
	for n := range seen {
		seasons = append(seasons, n)
	}
	sort.Ints(seasons)
	return seasons
}

// RowKey is the key a cross-tab row stores its X value under. No field value
// may equal it, or the row's column of that name would shadow it.
const RowKey = "xValue"

// Validate checks the curation invariants. A duplicate episode custom_id and
// a field value equal to RowKey are errors. Persons whose custom_id has no
// episode, and persons that carry prosecutorial codes in a variant without
// them, are reported as warnings because referential integrity is a
// curation convention, not enforced.
func (d *Dataset) Validate() ([]string, error) {
	seen := make(map[string]bool, len(d.Episodes))
	for _, e := range d.Episodes {
		if seen[e.CustomID] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateEpisode, e.CustomID)
		}
		seen[e.CustomID] = true
	}

	var warnings []string
	orphans := map[string]int{}
	for i := range d.Persons {
		p := &d.Persons[i]
		for _, f := range AllFields() {
			if Extract(p, f) == RowKey {
				return nil, fmt.Errorf("%w: %s of person %s is %q", ErrReservedValue, f, p.Key(), RowKey)
			}
		}
		if !seen[p.CustomID] {
			orphans[p.CustomID]++
		}
		if d.Variant != VariantLO && (p.ProsecutorialConduct != "" || p.ProsecutorialApology != "") {
			warnings = append(warnings, fmt.Sprintf("person %s has prosecutorial codes in a %s dataset", p.Key(), d.Variant))
		}
	}
	ids := make([]string, 0, len(orphans))
	for id := range orphans {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		warnings = append(warnings, fmt.Sprintf("%d person(s) reference missing episode %q", orphans[id], id))
	}
	return warnings, nil
}
