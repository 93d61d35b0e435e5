package domain

import "errors"

// Sentinel errors for the infeasible-input and programmer-defensive
// classifications in spec §7. These are never returned for a soft failure
// (hard_violations is the channel for that); they only short-circuit a
// Solve call before any construction is attempted.
var (
	// ErrEmptyRoster is returned when clients or staff is empty.
	ErrEmptyRoster = errors.New("scheduling: clients and staff rosters must both be non-empty")

	// ErrInvalidOperatingHours is returned when op_end <= op_start or the
	// window doesn't land on the 15-minute grid.
	ErrInvalidOperatingHours = errors.New("scheduling: invalid operating hours")

	// ErrInvalidLunchWindow is returned when the ideal lunch window falls
	// outside operating hours or inverts.
	ErrInvalidLunchWindow = errors.New("scheduling: invalid ideal lunch window")

	// ErrDateOutOfRange names a selected date that cannot be resolved to a
	// day-of-week the config recognizes. No function in this module
	// returns it.
	ErrDateOutOfRange = errors.New("scheduling: date outside configured scheduling horizon")
)

// ConfigError wraps a malformed-but-recoverable configuration row (spec §7:
// "programmer errors ... treated defensively — the resolver clamps to
// defaults and continues"). The resolvers in this package clamp such rows
// without constructing a ConfigError, so no Solve call produces one.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "scheduling: config " + e.Field + ": " + e.Message
}
