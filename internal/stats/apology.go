package stats

import (
	"sort"

	"github.com/Tyorden/svustats/internal/definition"
	"github.com/Tyorden/svustats/internal/model"
)

// GotApology reports whether an apology code counts as an apology.
func GotApology(code string) bool {
	return code == "partial" || code == "formal"
}

// ApologyRate is the apology rate for one conduct code.
type ApologyRate struct {
	Conduct    string  `json:"conduct"`
	Label      string  `json:"label"`
	Total      int     `json:"total"`
	GotApology int     `json:"got_apology"`
	Rate       float64 `json:"rate"`
	RateText   string  `json:"rate_text"`
}

// ApologyRates computes, for every conduct code, the share of persons
// whose apology field is partial or formal. Every defined conduct code is
// reported, including those never observed, whose rate is 0 and whose
// text is "N/A". Observed undefined codes follow the defined ones.
func ApologyRates(persons []model.Person, conduct, apology model.Field) []ApologyRate {
	totals := map[string]int{}
	got := map[string]int{}
	for _, p := range persons {
		c := p.Value(conduct)
		totals[c]++
		if GotApology(p.Value(apology)) {
			got[c]++
		}
	}

	codes := definition.Codes(conduct)
	defined := make(map[string]bool, len(codes))
	for _, c := range codes {
		defined[c] = true
	}
	var extra []string
	for c := range totals {
		if !defined[c] {
			extra = append(extra, c)
		}
	}
	sort.Strings(extra)
	codes = append(codes, extra...)

	rates := make([]ApologyRate, 0, len(codes))
	for _, c := range codes {
		rates = append(rates, ApologyRate{
			Conduct:    c,
			Label:      definition.Format(conduct, c),
			Total:      totals[c],
			GotApology: got[c],
			Rate:       Ratio(got[c], totals[c]),
			RateText:   RateText(got[c], totals[c]),
		})
	}
	return rates
}
