package domain

import (
	"time"

	"github.com/google/uuid"
)

// SessionType is a closed, tagged variant identifying what kind of time
// block a ScheduleEntry represents. It is a string enum rather than a bare
// string so invalid values can't silently flow through the engine (see the
// "sum types over string enums" design note).
type SessionType string

const (
	SessionTypeABA           SessionType = "ABA"
	SessionTypeAlliedHealthOT SessionType = "AlliedHealth_OT"
	SessionTypeAlliedHealthSLP SessionType = "AlliedHealth_SLP"
	SessionTypeIndirectTime   SessionType = "IndirectTime"
)

// Valid reports whether s is one of the closed set of session types.
func (s SessionType) Valid() bool {
	switch s {
	case SessionTypeABA, SessionTypeAlliedHealthOT, SessionTypeAlliedHealthSLP, SessionTypeIndirectTime:
		return true
	default:
		return false
	}
}

func (s SessionType) String() string { return string(s) }

// AlliedHealthSessionType maps an allied-health service code ("OT"/"SLP")
// to its SessionType. Returns ("", false) for any other code.
func AlliedHealthSessionType(service string) (SessionType, bool) {
	switch service {
	case "OT":
		return SessionTypeAlliedHealthOT, true
	case "SLP":
		return SessionTypeAlliedHealthSLP, true
	default:
		return "", false
	}
}

// AlliedHealthServiceCode returns the service code ("OT"/"SLP") an allied
// health SessionType represents, or ("", false) if it isn't one.
func AlliedHealthServiceCode(t SessionType) (string, bool) {
	switch t {
	case SessionTypeAlliedHealthOT:
		return "OT", true
	case SessionTypeAlliedHealthSLP:
		return "SLP", true
	default:
		return "", false
	}
}

// ScheduleEntry is one staff-to-client (or staff-only, or client-only) time
// block for a single day. ClientID and StaffID are the caller-supplied
// identifiers from spec §3; the occupancy Tracker (occupancy.go) keys its
// masks by these same string IDs.
type ScheduleEntry struct {
	ID          string
	ClientID    string // empty for non-client time (the lunch IndirectTime entries this engine emits)
	StaffID     string // empty for unassigned allied health
	Day         time.Time
	StartSlot   int
	Length      int // in slots
	SessionType SessionType
}

// NewScheduleEntry builds an entry with a freshly generated ID.
func NewScheduleEntry(clientID, staffID string, day time.Time, startSlot, length int, sessionType SessionType) ScheduleEntry {
	return ScheduleEntry{
		ID:          uuid.New().String(),
		ClientID:    clientID,
		StaffID:     staffID,
		Day:         day,
		StartSlot:   startSlot,
		Length:      length,
		SessionType: sessionType,
	}
}

// EndSlot returns the exclusive end slot.
func (e ScheduleEntry) EndSlot() int { return e.StartSlot + e.Length }

// DurationMinutes returns the entry's duration in minutes.
func (e ScheduleEntry) DurationMinutes() int { return e.Length * SlotMinutes }

// SameDay reports whether two entries fall on the same calendar day.
func (e ScheduleEntry) SameDay(other ScheduleEntry) bool {
	ey, em, ed := e.Day.Date()
	oy, om, od := other.Day.Date()
	return ey == oy && em == om && ed == od
}

// Overlaps reports whether two entries' slot ranges intersect on the same day.
func (e ScheduleEntry) Overlaps(other ScheduleEntry) bool {
	return e.SameDay(other) && SessionsOverlap(e.StartSlot, e.Length, other.StartSlot, other.Length)
}

// Abuts reports whether two entries share an endpoint minute (back-to-back,
// spec §4 invariant 4) or overlap on the same day. It does not compare
// staff or client IDs; callers group entries by (staff, client) pair first.
func (e ScheduleEntry) Abuts(other ScheduleEntry) bool {
	return e.SameDay(other) && AbutsOrOverlaps(e.StartSlot, e.Length, other.StartSlot, other.Length)
}

// IsBillable reports whether the entry counts toward "at least one billable
// entry" for lunch-eligibility purposes (spec invariant 11).
func (e ScheduleEntry) IsBillable() bool {
	return e.SessionType == SessionTypeABA || e.SessionType == SessionTypeAlliedHealthOT || e.SessionType == SessionTypeAlliedHealthSLP
}
