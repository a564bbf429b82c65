package model

import "strings"

// Severity is the ordinal 1-4 harm rating assigned to each person.
// The zero value means the person was not rated.
type Severity int

const (
	// SeverityUnrated is used for empty or unparseable severity codes.
	SeverityUnrated Severity = iota

	// SeverityMinor: inconvenience or brief embarrassment.
	SeverityMinor

	// SeverityModerate: lasting social or professional damage.
	SeverityModerate

	// SeveritySerious: job loss, detention, family breakdown.
	SeveritySerious

	// SeveritySevere: physical harm, death or suicide.
	SeveritySevere
)

// Severities returns the rated levels from lowest to highest harm.
func Severities() []Severity {
	return []Severity{SeverityMinor, SeverityModerate, SeveritySerious, SeveritySevere}
}

// ParseSeverity converts a raw "1".."4" code. Anything else is unrated.
func ParseSeverity(code string) Severity {
	switch strings.TrimSpace(code) {
	case "1":
		return SeverityMinor
	case "2":
		return SeverityModerate
	case "3":
		return SeveritySerious
	case "4":
		return SeveritySevere
	default:
		return SeverityUnrated
	}
}

// Rated reports whether s is one of the four rated levels.
func (s Severity) Rated() bool {
	return s >= SeverityMinor && s <= SeveritySevere
}

// Code returns the raw dataset code ("1".."4"), or DefaultUnknown.
func (s Severity) Code() string {
	switch s {
	case SeverityMinor:
		return "1"
	case SeverityModerate:
		return "2"
	case SeveritySerious:
		return "3"
	case SeveritySevere:
		return "4"
	default:
		return DefaultUnknown
	}
}

// String returns a short upper-case name for logs.
func (s Severity) String() string {
	switch s {
	case SeverityMinor:
		return "MINOR"
	case SeverityModerate:
		return "MODERATE"
	case SeveritySerious:
		return "SERIOUS"
	case SeveritySevere:
		return "SEVERE"
	default:
		return "UNRATED"
	}
}
