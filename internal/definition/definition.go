package definition

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Tyorden/svustats/internal/model"
)

// NeutralColor is used for severity codes outside "1".."4".
const NeutralColor = "#9ca3af"

// UnknownLabel is the label produced for an empty code.
const UnknownLabel = "Unknown"

// tableFor returns the definition table of f. Season has no table; its
// labels are derived from the number.
func tableFor(f model.Field) table {
	switch f {
	case model.FieldSeverity:
		return severityTable
	case model.FieldAccusationOrigin:
		return accusationOriginTable
	case model.FieldExposureChannel:
		return exposureChannelTable
	case model.FieldPoliceConductThreat:
		return policeConductTable
	case model.FieldPoliceApology, model.FieldProsecutorialApology:
		return apologyTable
	case model.FieldAccusedOf:
		return accusedOfTable
	case model.FieldRoleInPlot:
		return roleInPlotTable
	case model.FieldInnocenceStatus:
		return innocenceStatusTable
	case model.FieldExposureWhoTold:
		return exposureWhoToldTable
	case model.FieldConsequenceCategory:
		return consequenceCategoryTable
	case model.FieldProsecutorialConduct:
		return prosecutorialConductTable
	case model.FieldSeason:
		return nil
	default:
		return nil
	}
}

// anyOrder is the lookup chain used by FormatAny. Severity and season are
// left out because their numeric codes collide with each other.
var anyOrder = []model.Field{
	model.FieldPoliceConductThreat,
	model.FieldPoliceApology,
	model.FieldProsecutorialConduct,
	model.FieldAccusationOrigin,
	model.FieldExposureChannel,
	model.FieldExposureWhoTold,
	model.FieldRoleInPlot,
	model.FieldAccusedOf,
	model.FieldInnocenceStatus,
	model.FieldConsequenceCategory,
}

// AnyOrder returns the field priority used by FormatAny.
func AnyOrder() []model.Field {
	return append([]model.Field(nil), anyOrder...)
}

// Lookup returns the definition of code for field f.
func Lookup(f model.Field, code string) (Definition, bool) {
	d, ok := tableFor(f)[strings.TrimSpace(code)]
	return d, ok
}

// Codes returns the defined codes of f, sorted. Fields without a table
// return nil.
func Codes(f model.Field) []string {
	t := tableFor(f)
	if len(t) == 0 {
		return nil
	}
	codes := make([]string, 0, len(t))
	for code := range t {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Definitions returns the definitions of f ordered by code.
func Definitions(f model.Field) []Definition {
	codes := Codes(f)
	defs := make([]Definition, 0, len(codes))
	t := tableFor(f)
	for _, c := range codes {
		defs = append(defs, t[c])
	}
	return defs
}

// Format returns the display label of code for field f.
func Format(f model.Field, code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return UnknownLabel
	}
	if f.IsSeason() {
		if _, err := strconv.Atoi(code); err == nil {
			return "Season " + code
		}
		return Humanize(code)
	}
	if d, ok := tableFor(f)[code]; ok {
		return d.Label
	}
	return Humanize(code)
}

// FormatAny labels a code whose field is not known. Tables are tried in
// AnyOrder and the first match wins. Callers that know the field use Format.
func FormatAny(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return UnknownLabel
	}
	for _, f := range anyOrder {
		if d, ok := tableFor(f)[code]; ok {
			return d.Label
		}
	}
	return Humanize(code)
}

// Humanize turns a snake_case code into title-cased words:
// "squad_inference" becomes "Squad Inference".
func Humanize(code string) string {
	// A Caser keeps state and cannot be shared between goroutines.
	caser := cases.Title(language.English)
	parts := strings.Split(strings.TrimSpace(code), "_")
	words := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			words = append(words, caser.String(p))
		}
	}
	if len(words) == 0 {
		return UnknownLabel
	}
	return strings.Join(words, " ")
}

// SeverityColor returns the chart color of a severity code.
func SeverityColor(code string) string {
	if d, ok := severityTable[strings.TrimSpace(code)]; ok {
		return d.Color
	}
	return NeutralColor
}

// SeverityLabel returns the label of a parsed severity.
func SeverityLabel(s model.Severity) string {
	if !s.Rated() {
		return "Unrated"
	}
	return severityTable[s.Code()].Label
}

// FlagLabel returns the label of an episode flag.
func FlagLabel(flag model.Flag) string {
	n := flag.Normalize()
	if d, ok := flagTable[string(n)]; ok {
		return d.Label
	}
	return Humanize(string(n))
}
