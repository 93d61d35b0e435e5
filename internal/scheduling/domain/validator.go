package domain

import (
	"fmt"
	"time"
)

// ValidationInput bundles everything the validator needs to check one
// candidate schedule: the entries themselves plus the rosters, callouts,
// and resolved config they're checked against (component D, spec §4.4).
type ValidationInput struct {
	Entries   []ScheduleEntry
	Staff     map[string]Staff
	Clients   map[string]Client
	Callouts  []Callout
	Insurance InsuranceTable
	Config    *SystemConfig
}

// Validate runs every hard-constraint rule in the closed taxonomy against
// input and returns every violation found. It never mutates input and
// never returns an error: an entry with an unknown staff ID is reported as
// a CREDENTIAL_MISMATCH violation, and an entry with an unknown client ID
// is skipped by the client-based checks, rather than aborting the check,
// matching the scorer's expectation that Validate is total over any entry
// set.
func Validate(input ValidationInput) []Violation {
	var violations []Violation

	violations = append(violations, checkStaffTimeConflicts(input)...)
	violations = append(violations, checkClientTimeConflicts(input)...)
	violations = append(violations, checkCalloutConflicts(input)...)
	violations = append(violations, checkCredentialAndRoleMatches(input)...)
	violations = append(violations, checkABADurations(input)...)
	violations = append(violations, checkInsuranceBounds(input)...)
	violations = append(violations, checkOperatingHours(input)...)
	violations = append(violations, checkLunchRules(input)...)
	violations = append(violations, checkABABackToBack(input)...)
	violations = append(violations, checkClientCoverageGaps(input)...)

	return violations
}

func checkStaffTimeConflicts(in ValidationInput) []Violation {
	var out []Violation
	byStaff := make(map[string][]ScheduleEntry)
	for _, e := range in.Entries {
		if e.StaffID == "" {
			continue
		}
		byStaff[e.StaffID] = append(byStaff[e.StaffID], e)
	}
	for staffID, entries := range byStaff {
		for i := 0; i < len(entries); i++ {
			for j := i + 1; j < len(entries); j++ {
				if entries[i].Overlaps(entries[j]) {
					out = append(out, Violation{
						Rule:     RuleStaffTimeConflict,
						EntryID:  entries[j].ID,
						StaffID:  staffID,
						Detail:   fmt.Sprintf("overlaps entry %s", entries[i].ID),
					})
				}
			}
		}
	}
	return out
}

func checkClientTimeConflicts(in ValidationInput) []Violation {
	var out []Violation
	byClient := make(map[string][]ScheduleEntry)
	for _, e := range in.Entries {
		if e.ClientID == "" {
			continue
		}
		byClient[e.ClientID] = append(byClient[e.ClientID], e)
	}
	for clientID, entries := range byClient {
		for i := 0; i < len(entries); i++ {
			for j := i + 1; j < len(entries); j++ {
				if entries[i].Overlaps(entries[j]) {
					out = append(out, Violation{
						Rule:     RuleClientTimeConflict,
						EntryID:  entries[j].ID,
						ClientID: clientID,
						Detail:   fmt.Sprintf("overlaps entry %s", entries[i].ID),
					})
				}
			}
		}
	}
	return out
}

func checkCalloutConflicts(in ValidationInput) []Violation {
	var out []Violation
	for _, e := range in.Entries {
		for _, c := range in.Callouts {
			if !c.AppliesOn(e.Day) {
				continue
			}
			var subjectID string
			switch c.EntityType {
			case CalloutEntityStaff:
				subjectID = e.StaffID
			case CalloutEntityClient:
				subjectID = e.ClientID
			}
			if subjectID == "" || subjectID != c.EntityID {
				continue
			}
			start, length, ok := c.SlotRange(in.Config.Grid)
			if !ok {
				continue
			}
			if SessionsOverlap(e.StartSlot, e.Length, start, length) {
				out = append(out, Violation{
					Rule:     RuleCalloutConflict,
					EntryID:  e.ID,
					ClientID: e.ClientID,
					StaffID:  e.StaffID,
					Detail:   fmt.Sprintf("%s %s is called out", c.EntityType, c.EntityID),
				})
			}
		}
	}
	return out
}

func checkCredentialAndRoleMatches(in ValidationInput) []Violation {
	var out []Violation
	for _, e := range in.Entries {
		if e.StaffID == "" {
			continue
		}
		staff, ok := in.Staff[e.StaffID]
		if !ok {
			out = append(out, Violation{Rule: RuleCredentialMismatch, EntryID: e.ID, StaffID: e.StaffID, Detail: "unknown staff"})
			continue
		}

		switch e.SessionType {
		case SessionTypeABA:
			client, ok := in.Clients[e.ClientID]
			if !ok {
				continue
			}
			if !StaffQualifies(client.InsuranceRequirements, staff.Role, staff.Qualifications, in.Config.RoleRanks, in.Insurance) {
				out = append(out, Violation{
					Rule: RuleCredentialMismatch, EntryID: e.ID, ClientID: e.ClientID, StaffID: e.StaffID,
					Detail: "staff role does not satisfy client's insurance requirements",
				})
			}
		case SessionTypeAlliedHealthOT, SessionTypeAlliedHealthSLP:
			service, _ := AlliedHealthServiceCode(e.SessionType)
			if !staff.ProvidesAlliedHealth(service) {
				out = append(out, Violation{
					Rule: RuleAlliedRoleMismatch, EntryID: e.ID, ClientID: e.ClientID, StaffID: e.StaffID,
					Detail: fmt.Sprintf("staff does not provide %s", service),
				})
			}
		}
	}
	return out
}

func checkABADurations(in ValidationInput) []Violation {
	var out []Violation
	for _, e := range in.Entries {
		if e.SessionType != SessionTypeABA {
			continue
		}
		dur := e.DurationMinutes()
		if dur < in.Config.ABAMinDurationMinutes {
			out = append(out, Violation{Rule: RuleABADurationTooShort, EntryID: e.ID, ClientID: e.ClientID, StaffID: e.StaffID,
				Detail: fmt.Sprintf("%d min below minimum %d", dur, in.Config.ABAMinDurationMinutes)})
		}
		if dur > in.Config.ABAMaxDurationMinutes {
			out = append(out, Violation{Rule: RuleABADurationTooLong, EntryID: e.ID, ClientID: e.ClientID, StaffID: e.StaffID,
				Detail: fmt.Sprintf("%d min above maximum %d", dur, in.Config.ABAMaxDurationMinutes)})
		}
	}
	return out
}

func checkInsuranceBounds(in ValidationInput) []Violation {
	var out []Violation

	weeklyMinutes := make(map[string]int)
	distinctStaff := make(map[string]map[string]struct{})

	for _, e := range in.Entries {
		if e.ClientID == "" || !e.IsBillable() {
			continue
		}
		client, ok := in.Clients[e.ClientID]
		if !ok {
			continue
		}
		resolved := in.Insurance.Resolve(client.InsuranceRequirements)
		dur := e.DurationMinutes()

		// Per-session duration bounds and the distinct-staff count are
		// ABA-specific (spec §6's session-length and max-staff-per-day
		// rules apply to ABA sessions); the weekly minutes cap below
		// covers ABA and allied-health time together.
		if e.SessionType == SessionTypeABA {
			if resolved.MinSessionMinutes > 0 && dur < resolved.MinSessionMinutes {
				out = append(out, Violation{Rule: RuleMinDurationViolated, EntryID: e.ID, ClientID: e.ClientID, StaffID: e.StaffID,
					Detail: fmt.Sprintf("%d min below insurance minimum %d", dur, resolved.MinSessionMinutes)})
			}
			if resolved.MaxSessionMinutes > 0 && dur > resolved.MaxSessionMinutes {
				out = append(out, Violation{Rule: RuleMaxDurationViolated, EntryID: e.ID, ClientID: e.ClientID, StaffID: e.StaffID,
					Detail: fmt.Sprintf("%d min above insurance maximum %d", dur, resolved.MaxSessionMinutes)})
			}

			if e.StaffID != "" {
				set, ok := distinctStaff[e.ClientID]
				if !ok {
					set = make(map[string]struct{})
					distinctStaff[e.ClientID] = set
				}
				set[e.StaffID] = struct{}{}
			}
		}

		weeklyMinutes[e.ClientID] += dur
	}

	for clientID, minutes := range weeklyMinutes {
		client, ok := in.Clients[clientID]
		if !ok {
			continue
		}
		resolved := in.Insurance.Resolve(client.InsuranceRequirements)
		if resolved.MaxWeeklyMinutes > 0 && minutes > resolved.MaxWeeklyMinutes {
			out = append(out, Violation{Rule: RuleMaxWeeklyHoursViolated, ClientID: clientID,
				Detail: fmt.Sprintf("%d weekly billable minutes above insurance maximum %d", minutes, resolved.MaxWeeklyMinutes)})
		}
	}

	for clientID, set := range distinctStaff {
		client, ok := in.Clients[clientID]
		if !ok {
			continue
		}
		resolved := in.Insurance.Resolve(client.InsuranceRequirements)
		if resolved.MaxDistinctStaff > 0 && len(set) > resolved.MaxDistinctStaff {
			out = append(out, Violation{Rule: RuleMaxProvidersViolated, ClientID: clientID,
				Detail: fmt.Sprintf("%d distinct staff above insurance maximum %d", len(set), resolved.MaxDistinctStaff)})
		}
	}

	return out
}

func checkOperatingHours(in ValidationInput) []Violation {
	var out []Violation
	for _, e := range in.Entries {
		if !in.Config.Grid.InBounds(e.StartSlot, e.Length) {
			out = append(out, Violation{Rule: RuleOutsideOperatingHours, EntryID: e.ID, ClientID: e.ClientID, StaffID: e.StaffID,
				Detail: "entry falls outside operating hours"})
		}
	}
	return out
}

// checkLunchRules enforces spec invariant 11: every staff member with at
// least one billable entry on a day must have exactly one lunch break
// (an IndirectTime entry) that day, and it must fall within the
// configured ideal lunch window.
func checkLunchRules(in ValidationInput) []Violation {
	var out []Violation

	type dayStaffKey struct {
		staffID string
		day     string
	}

	billable := make(map[dayStaffKey]bool)
	lunches := make(map[dayStaffKey][]ScheduleEntry)

	for _, e := range in.Entries {
		if e.StaffID == "" {
			continue
		}
		key := dayStaffKey{staffID: e.StaffID, day: dayKey(e.Day)}
		if e.IsBillable() {
			billable[key] = true
		}
		if e.SessionType == SessionTypeIndirectTime {
			lunches[key] = append(lunches[key], e)
		}
	}

	for key, entries := range lunches {
		if len(entries) > 1 {
			out = append(out, Violation{Rule: RuleMultipleLunches, StaffID: key.staffID,
				Detail: fmt.Sprintf("%d lunch entries on %s", len(entries), key.day)})
		}
		for _, e := range entries {
			if e.StartSlot < in.Config.LunchEarliestStartSlot() || e.StartSlot > in.Config.LunchLatestStartSlot() {
				out = append(out, Violation{Rule: RuleLunchOutsideWindow, EntryID: e.ID, StaffID: key.staffID,
					Detail: "lunch start falls outside ideal lunch window"})
			}
		}
	}

	for key := range billable {
		if len(lunches[key]) == 0 {
			out = append(out, Violation{Rule: RuleMissingLunchBreak, StaffID: key.staffID,
				Detail: fmt.Sprintf("no lunch break on %s despite billable time", key.day)})
		}
	}

	return out
}

// checkABABackToBack enforces spec invariant 4: the same (staff, client)
// pair cannot have two ABA entries that abut or overlap on the same day.
func checkABABackToBack(in ValidationInput) []Violation {
	var out []Violation
	type pairKey struct {
		staffID, clientID, day string
	}
	byPair := make(map[pairKey][]ScheduleEntry)
	for _, e := range in.Entries {
		if e.SessionType != SessionTypeABA || e.StaffID == "" || e.ClientID == "" {
			continue
		}
		key := pairKey{staffID: e.StaffID, clientID: e.ClientID, day: dayKey(e.Day)}
		byPair[key] = append(byPair[key], e)
	}
	for key, entries := range byPair {
		for i := 0; i < len(entries); i++ {
			for j := i + 1; j < len(entries); j++ {
				if entries[i].Abuts(entries[j]) {
					out = append(out, Violation{
						Rule: RuleABABackToBack, EntryID: entries[j].ID, ClientID: key.clientID, StaffID: key.staffID,
						Detail: fmt.Sprintf("abuts or overlaps entry %s", entries[i].ID),
					})
				}
			}
		}
	}
	return out
}

// checkClientCoverageGaps enforces spec invariant: a client with an
// allied-health need scheduled for a fixed time slot but left unstaffed
// (no matching entry at that time, on a day the need's recurrence
// applies) is reported as a coverage gap, even though it doesn't block
// the rest of the schedule from being valid.
func checkClientCoverageGaps(in ValidationInput) []Violation {
	var out []Violation

	scheduledDays := distinctDays(in.Entries)

	for clientID, client := range in.Clients {
		for _, need := range client.AlliedHealthNeeds {
			startMin, err := ParseClockTime(need.StartTime)
			if err != nil {
				continue
			}
			endMin, err := ParseClockTime(need.EndTime)
			if err != nil {
				continue
			}
			startSlot := in.Config.Grid.SlotOfMinutes(startMin)
			length := (endMin - startMin) / SlotMinutes
			if length <= 0 {
				continue
			}
			sessionType, ok := AlliedHealthSessionType(need.ServiceType)
			if !ok {
				continue
			}

			for _, day := range scheduledDays {
				if !need.AppliesOn(day) {
					continue
				}
				covered := false
				for _, e := range in.Entries {
					if e.ClientID != clientID || e.SessionType != sessionType || !e.SameDay(ScheduleEntry{Day: day}) {
						continue
					}
					if e.StartSlot == startSlot && e.Length == length {
						covered = true
						break
					}
				}
				if !covered {
					out = append(out, Violation{
						Rule: RuleClientCoverageGap, ClientID: clientID,
						Detail: fmt.Sprintf("%s need %s-%s uncovered on %s", need.ServiceType, need.StartTime, need.EndTime, dayKey(day)),
					})
				}
			}
		}
	}
	return out
}

func distinctDays(entries []ScheduleEntry) []time.Time {
	seen := make(map[string]time.Time)
	for _, e := range entries {
		seen[dayKey(e.Day)] = e.Day
	}
	days := make([]time.Time, 0, len(seen))
	for _, d := range seen {
		days = append(days, d)
	}
	return days
}
