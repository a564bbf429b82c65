package model

import (
	"fmt"
	"strings"
)

// Condition is an equality predicate on an extracted field value.
type Condition struct {
	Field Field
	Value string
}

// ParseCondition parses "field=value". The value is compared against the
// extracted code, so "police_apology=none" also matches empty apologies.
func ParseCondition(s string) (Condition, error) {
	name, value, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(value) == "" {
		return Condition{}, fmt.Errorf("%w: %q (want field=value)", ErrInvalidCondition, s)
	}
	f, err := ParseField(name)
	if err != nil {
		return Condition{}, err
	}
	return Condition{Field: f, Value: strings.TrimSpace(value)}, nil
}

// Filter selects persons. Zero-valued parts match everything; all set
// parts must match.
type Filter struct {
	Seasons    []string
	Severities []Severity
	Conditions []Condition
	// Search is a case-insensitive substring matched against the name,
	// quote, notes, consequence description and tags.
	Search string
}

// IsZero reports whether the filter accepts every person.
func (f Filter) IsZero() bool {
	return len(f.Seasons) == 0 && len(f.Severities) == 0 && len(f.Conditions) == 0 && strings.TrimSpace(f.Search) == ""
}

// Match reports whether p passes the filter.
func (f Filter) Match(p Person) bool {
	if len(f.Seasons) > 0 && !containsString(f.Seasons, strings.TrimSpace(p.Season)) {
		return false
	}
	if len(f.Severities) > 0 {
		sev := p.Severity()
		found := false
		for _, s := range f.Severities {
			if s == sev {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for _, c := range f.Conditions {
		if !strings.EqualFold(Extract(&p, c.Field), c.Value) {
			return false
		}
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		haystack := strings.ToLower(strings.Join([]string{
			p.Name, p.Quote, p.Notes, p.ConsequenceDescription, p.Tags,
		}, "\n"))
		if !strings.Contains(haystack, q) {
			return false
		}
	}
	return true
}

// Apply returns the persons that pass the filter. The input is not modified.
func (f Filter) Apply(persons []Person) []Person {
	if f.IsZero() {
		return persons
	}
	out := make([]Person, 0, len(persons))
	for _, p := range persons {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if strings.TrimSpace(v) == s {
			return true
		}
	}
	return false
}
