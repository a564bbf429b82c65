package stats

import (
	"strings"

	"github.com/Tyorden/svustats/internal/model"
)

// Harm is a physical harm class derived from a consequence description.
type Harm string

const (
	// HarmNone means no keyword matched.
	HarmNone      Harm = ""
	HarmMurdered  Harm = "murdered"
	HarmSuicide   Harm = "suicide"
	HarmVigilante Harm = "vigilante"
	HarmAssaulted Harm = "assaulted"
)

// String returns the class name, "none" for HarmNone.
func (h Harm) String() string {
	if h == HarmNone {
		return "none"
	}
	return string(h)
}

type harmRule struct {
	harm     Harm
	keywords []string
}

// harmRules is checked in order and the first match wins. Murder keywords
// avoid "killed himself" so suicides are not read as murders.
var harmRules = []harmRule{
	{HarmMurdered, []string{"murdered", "was killed", "killed by", "beaten to death", "stabbed to death", "shot dead", "shot and killed", "homicide"}},
	{HarmSuicide, []string{"suicide", "killed himself", "killed herself", "took his own life", "took her own life", "hanged himself", "hanged herself", "overdosed"}},
	{HarmVigilante, []string{"vigilante", "angry mob", "mob attack", "lynch", "neighbors attacked", "took matters into"}},
	{HarmAssaulted, []string{"assaulted", "attacked", "beaten", "beat up", "stabbed", "shot", "injured", "jumped by"}},
}

// HarmClasses returns the classes in priority order.
func HarmClasses() []Harm {
	classes := make([]Harm, len(harmRules))
	for i, r := range harmRules {
		classes[i] = r.harm
	}
	return classes
}

// ClassifyHarm matches description against the keyword list,
// case-insensitively.
func ClassifyHarm(description string) Harm {
	text := strings.ToLower(description)
	if strings.TrimSpace(text) == "" {
		return HarmNone
	}
	for _, r := range harmRules {
		for _, kw := range r.keywords {
			if strings.Contains(text, kw) {
				return r.harm
			}
		}
	}
	return HarmNone
}

// HarmCount is the number of persons in one harm class.
type HarmCount struct {
	Harm    Harm    `json:"harm"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// HarmSummary is the physical harm breakdown.
type HarmSummary struct {
	Classes []HarmCount `json:"classes"`
	// Harmed is the number of persons in any class.
	Harmed int `json:"harmed"`
	Total  int `json:"total"`
	// Persons lists the keys of harmed persons per class.
	Persons map[Harm][]string `json:"persons"`
}

// HarmBreakdown classifies every person's consequence description.
// Percentages are relative to all persons.
func HarmBreakdown(persons []model.Person) HarmSummary {
	counts := map[Harm]int{}
	s := HarmSummary{Total: len(persons), Persons: map[Harm][]string{}}
	for _, p := range persons {
		h := ClassifyHarm(p.ConsequenceDescription)
		if h == HarmNone {
			continue
		}
		counts[h]++
		s.Harmed++
		s.Persons[h] = append(s.Persons[h], p.Key())
	}
	for _, h := range HarmClasses() {
		s.Classes = append(s.Classes, HarmCount{
			Harm:    h,
			Count:   counts[h],
			Percent: Percent(counts[h], s.Total),
		})
	}
	return s
}
