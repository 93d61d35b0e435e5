package domain

// Staff is one clinician on the roster (spec §3).
type Staff struct {
	ID                   string
	Name                 string
	Role                 string
	TeamID               string // empty means unaffiliated
	Qualifications       []string
	AlliedHealthServices  []string // subset of {"OT", "SLP"} this staff member can provide
}

// ProvidesAlliedHealth reports whether this staff can deliver the given
// allied-health service code ("OT"/"SLP").
func (s Staff) ProvidesAlliedHealth(service string) bool {
	for _, svc := range s.AlliedHealthServices {
		if svc == service {
			return true
		}
	}
	return s.Role == service
}

// HasQualification reports whether id appears in this staff's qualification list.
func (s Staff) HasQualification(id string) bool {
	for _, q := range s.Qualifications {
		if q == id {
			return true
		}
	}
	return false
}
