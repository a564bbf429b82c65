package model

import (
	"fmt"
	"strings"
)

// Field identifies one categorical person field that can be extracted,
// formatted and cross-tabulated. The set is closed: the only way to obtain a
// Field from text is ParseField, which rejects unknown names.
type Field uint8

const (
	fieldInvalid Field = iota

	FieldSeverity
	FieldAccusationOrigin
	FieldExposureChannel
	FieldPoliceConductThreat
	FieldPoliceApology
	FieldAccusedOf
	FieldRoleInPlot
	FieldInnocenceStatus
	FieldSeason
	FieldExposureWhoTold
	FieldConsequenceCategory
	FieldProsecutorialConduct
	FieldProsecutorialApology

	fieldCount
)

const (
	// DefaultNone is substituted for empty conduct and apology fields:
	// absence means nothing happened.
	DefaultNone = "none"

	// DefaultUnknown is substituted for every other empty field:
	// absence means the information is missing.
	DefaultUnknown = "unknown"
)

type fieldSpec struct {
	name     string
	aliases  []string
	conduct  bool
	extract  func(p *Person) string
	isSeason bool
}

var fieldSpecs = [fieldCount]fieldSpec{
	FieldSeverity: {
		name:    "severity",
		aliases: []string{"consequence_severity"},
		extract: func(p *Person) string { return p.ConsequenceSeverity },
	},
	FieldAccusationOrigin: {
		name:    "accusation_origin",
		extract: func(p *Person) string { return p.AccusationOrigin },
	},
	FieldExposureChannel: {
		name:    "exposure_channel",
		extract: func(p *Person) string { return p.ExposureChannel },
	},
	FieldPoliceConductThreat: {
		name:    "police_conduct_threat",
		aliases: []string{"police_conduct"},
		conduct: true,
		extract: func(p *Person) string { return p.PoliceConductThreat },
	},
	FieldPoliceApology: {
		name:    "police_apology",
		conduct: true,
		extract: func(p *Person) string { return p.PoliceApology },
	},
	FieldAccusedOf: {
		name:    "accused_of",
		extract: func(p *Person) string { return p.AccusedOf },
	},
	FieldRoleInPlot: {
		name:    "role_in_plot",
		aliases: []string{"role"},
		extract: func(p *Person) string { return p.RoleInPlot },
	},
	FieldInnocenceStatus: {
		name:    "innocence_status",
		extract: func(p *Person) string { return p.InnocenceStatus },
	},
	FieldSeason: {
		name:     "season",
		isSeason: true,
		extract:  func(p *Person) string { return p.Season },
	},
	FieldExposureWhoTold: {
		name:    "exposure_who_told",
		aliases: []string{"who_told"},
		extract: func(p *Person) string { return p.ExposureWhoTold },
	},
	FieldConsequenceCategory: {
		name:    "consequence_category",
		extract: func(p *Person) string { return p.ConsequenceCategory },
	},
	FieldProsecutorialConduct: {
		name:    "prosecutorial_conduct",
		conduct: true,
		extract: func(p *Person) string { return p.ProsecutorialConduct },
	},
	FieldProsecutorialApology: {
		name:    "prosecutorial_apology",
		conduct: true,
		extract: func(p *Person) string { return p.ProsecutorialApology },
	},
}

// AllFields returns every field in declaration order.
func AllFields() []Field {
	fields := make([]Field, 0, fieldCount-1)
	for f := fieldInvalid + 1; f < fieldCount; f++ {
		fields = append(fields, f)
	}
	return fields
}

// Valid reports whether f is one of the declared fields.
func (f Field) Valid() bool {
	return f > fieldInvalid && f < fieldCount
}

// String returns the symbolic field name, e.g. "police_apology".
func (f Field) String() string {
	if !f.Valid() {
		return "invalid"
	}
	return fieldSpecs[f].name
}

// Default returns the value substituted when the field is empty.
func (f Field) Default() string {
	if f.Valid() && fieldSpecs[f].conduct {
		return DefaultNone
	}
	return DefaultUnknown
}

// IsConduct reports whether f describes authority conduct or an apology.
func (f Field) IsConduct() bool {
	return f.Valid() && fieldSpecs[f].conduct
}

// IsSeason reports whether values of f are season numbers.
func (f Field) IsSeason() bool {
	return f.Valid() && fieldSpecs[f].isSeason
}

// MarshalText encodes the field by name.
func (f Field) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownField, uint8(f))
	}
	return []byte(f.String()), nil
}

// UnmarshalText decodes a field name.
func (f *Field) UnmarshalText(text []byte) error {
	parsed, err := ParseField(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// ParseField resolves a symbolic field name or one of its aliases.
// Matching ignores case, surrounding whitespace and '-' versus '_'.
func ParseField(name string) (Field, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	for f := fieldInvalid + 1; f < fieldCount; f++ {
		spec := fieldSpecs[f]
		if spec.name == key {
			return f, nil
		}
		for _, alias := range spec.aliases {
			if alias == key {
				return f, nil
			}
		}
	}
	return fieldInvalid, fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// Extract returns the raw coded value of field f for p. Empty or blank
// values are replaced with the field default ("none" for conduct and
// apology fields, "unknown" otherwise). An invalid field yields
// DefaultUnknown.
func Extract(p *Person, f Field) string {
	if !f.Valid() {
		return DefaultUnknown
	}
	v := strings.TrimSpace(fieldSpecs[f].extract(p))
	if v == "" {
		return f.Default()
	}
	return v
}
