package domain

// AlliedHealthNeed is one fixed-time allied-health requirement for a
// client (spec §3). SpecificDays is stored as an RFC 5545 RRULE string
// (component I, recurrence.go); WeeklyRRule builds that string from a plain
// weekday set for callers that don't want to think in RRULEs.
type AlliedHealthNeed struct {
	ServiceType        string // "OT" | "SLP"
	SpecificDaysRRule  string
	StartTime          string // "HH:MM"
	EndTime            string // "HH:MM"
	PreferredProviderID string // optional
}

// Client is one roster entry receiving services (spec §3).
type Client struct {
	ID                    string
	Name                  string
	TeamID                string // empty means unaffiliated
	InsuranceRequirements []string
	AlliedHealthNeeds     []AlliedHealthNeed
}
