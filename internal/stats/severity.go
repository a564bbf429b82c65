package stats

import (
	"sort"
	"strconv"

	"github.com/Tyorden/svustats/internal/definition"
	"github.com/Tyorden/svustats/internal/model"
)

// SeverityBucket is one severity level of the distribution.
type SeverityBucket struct {
	Code  string `json:"code"`
	Label string `json:"label"`
	Color string `json:"color"`
	Count int    `json:"count"`
	// Percent is relative to rated persons.
	Percent float64 `json:"percent"`
}

// SeverityBreakdown is the distribution of persons over the four levels.
type SeverityBreakdown struct {
	Buckets []SeverityBucket `json:"buckets"`
	Rated   int              `json:"rated"`
	Unrated int              `json:"unrated"`
}

// SeverityDistribution counts persons per severity level. All four levels
// are always present.
func SeverityDistribution(persons []model.Person) SeverityBreakdown {
	counts := make(map[model.Severity]int, 4)
	var b SeverityBreakdown
	for _, p := range persons {
		s := p.Severity()
		if !s.Rated() {
			b.Unrated++
			continue
		}
		counts[s]++
		b.Rated++
	}
	for _, s := range model.Severities() {
		b.Buckets = append(b.Buckets, SeverityBucket{
			Code:    s.Code(),
			Label:   definition.SeverityLabel(s),
			Color:   definition.SeverityColor(s.Code()),
			Count:   counts[s],
			Percent: Percent(counts[s], b.Rated),
		})
	}
	return b
}

// severityAccumulator sums rated severities.
type severityAccumulator struct {
	count int
	rated int
	sum   int
}

func (a *severityAccumulator) add(p model.Person) {
	a.count++
	if s := p.Severity(); s.Rated() {
		a.rated++
		a.sum += int(s)
	}
}

func (a *severityAccumulator) mean() float64 {
	return Mean(float64(a.sum), a.rated)
}

// SeasonPoint is one season of the severity trend.
type SeasonPoint struct {
	Season          int     `json:"season"`
	Label           string  `json:"label"`
	Count           int     `json:"count"`
	Rated           int     `json:"rated"`
	AverageSeverity float64 `json:"average_severity"`
}

// SeasonTrend averages severity per season, in season order. Persons whose
// season is not a number are left out.
func SeasonTrend(persons []model.Person) []SeasonPoint {
	acc := map[int]*severityAccumulator{}
	for _, p := range persons {
		n, err := strconv.Atoi(p.Value(model.FieldSeason))
		if err != nil {
			continue
		}
		a, ok := acc[n]
		if !ok {
			a = &severityAccumulator{}
			acc[n] = a
		}
		a.add(p)
	}

	points := make([]SeasonPoint, 0, len(acc))
	for n, a := range acc {
		points = append(points, SeasonPoint{
			Season:          n,
			Label:           definition.Format(model.FieldSeason, strconv.Itoa(n)),
			Count:           a.count,
			Rated:           a.rated,
			AverageSeverity: a.mean(),
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Season < points[j].Season })
	return points
}

// CategoryAverage is the severity average of one code of a field.
type CategoryAverage struct {
	Code            string  `json:"code"`
	Label           string  `json:"label"`
	Count           int     `json:"count"`
	Rated           int     `json:"rated"`
	AverageSeverity float64 `json:"average_severity"`
}

// AverageSeverityBy averages severity per code of f, highest average first.
// Ties are ordered by code.
func AverageSeverityBy(persons []model.Person, f model.Field) []CategoryAverage {
	acc := map[string]*severityAccumulator{}
	for _, p := range persons {
		code := p.Value(f)
		a, ok := acc[code]
		if !ok {
			a = &severityAccumulator{}
			acc[code] = a
		}
		a.add(p)
	}

	out := make([]CategoryAverage, 0, len(acc))
	for code, a := range acc {
		out = append(out, CategoryAverage{
			Code:            code,
			Label:           definition.Format(f, code),
			Count:           a.count,
			Rated:           a.rated,
			AverageSeverity: a.mean(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AverageSeverity != out[j].AverageSeverity {
			return out[i].AverageSeverity > out[j].AverageSeverity
		}
		return out[i].Code < out[j].Code
	})
	return out
}
