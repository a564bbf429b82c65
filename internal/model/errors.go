package model

import "errors"

var (
	// ErrUnknownField is returned when a field name is not part of the closed field set.
	ErrUnknownField = errors.New("unknown field")

	// ErrUnknownVariant is returned for a dataset variant other than "svu" or "lo".
	ErrUnknownVariant = errors.New("unknown dataset variant")

	// ErrDuplicateEpisode is returned when two episodes share a custom_id.
	ErrDuplicateEpisode = errors.New("duplicate episode custom_id")

	// ErrEpisodeNotFound is returned when no episode has the requested custom_id.
	ErrEpisodeNotFound = errors.New("episode not found")

	// ErrReservedValue is returned when a field value is the reserved cross-tab row key.
	ErrReservedValue = errors.New("reserved field value")

	// ErrInvalidCondition is returned for a filter condition that is not "field=value".
	ErrInvalidCondition = errors.New("invalid filter condition")
)
