package stats

import "github.com/Tyorden/svustats/internal/model"

// FlagCounts tallies a tri-state episode flag.
type FlagCounts struct {
	Yes   int `json:"yes"`
	No    int `json:"no"`
	Maybe int `json:"maybe"`
	Other int `json:"other"`
}

func (c *FlagCounts) add(f model.Flag) {
	switch f.Normalize() {
	case model.FlagYes:
		c.Yes++
	case model.FlagNo:
		c.No++
	case model.FlagMaybe:
		c.Maybe++
	default:
		c.Other++
	}
}

// Summary is the headline block of the dashboard.
type Summary struct {
	Episodes          int        `json:"episodes"`
	Persons           int        `json:"persons"`
	PersonsPerEpisode float64    `json:"persons_per_episode"`
	FalseSuspect      FlagCounts `json:"false_suspect"`
	PublicExposure    FlagCounts `json:"public_exposure"`
	NeedsReview       int        `json:"needs_review"`
	RatedPersons      int        `json:"rated_persons"`
	AverageSeverity   float64    `json:"average_severity"`
	SevereCount       int        `json:"severe_count"`
	SeverePercent     float64    `json:"severe_percent"`
	Harmed            int        `json:"harmed"`
}

// Summarize computes the summary of ds.
func Summarize(ds *model.Dataset) Summary {
	s := Summary{
		Episodes: len(ds.Episodes),
		Persons:  len(ds.Persons),
	}
	for _, e := range ds.Episodes {
		s.FalseSuspect.add(e.HasFalseSuspect)
		s.PublicExposure.add(e.HasPublicExposure)
		if e.NeedsDeepReview.Normalize() == model.FlagYes {
			s.NeedsReview++
		}
	}

	var acc severityAccumulator
	for _, p := range ds.Persons {
		acc.add(p)
		if p.Severity() == model.SeveritySevere {
			s.SevereCount++
		}
		if ClassifyHarm(p.ConsequenceDescription) != HarmNone {
			s.Harmed++
		}
	}
	s.RatedPersons = acc.rated
	s.AverageSeverity = acc.mean()
	s.SeverePercent = Percent(s.SevereCount, s.RatedPersons)
	s.PersonsPerEpisode = Ratio(s.Persons, s.Episodes)
	return s
}
