package application

import "github.com/clinicflow/scheduler/internal/scheduling/domain"

// hardViolationBase is added once, only if the candidate has at least one
// violation, on top of the summed per-rule weights below (spec §4.6). Any
// infeasible candidate always outscores (costs more than) any feasible
// one, regardless of its soft score.
const hardViolationBase = 10_000_000.0

// hardViolationWeights is the exact per-rule weight table from spec §4.6.
var hardViolationWeights = map[domain.ViolationRule]float64{
	domain.RuleClientCoverageGap: 100_000,

	domain.RuleStaffTimeConflict:  200_000,
	domain.RuleClientTimeConflict: 200_000,

	domain.RuleMaxProvidersViolated:   500_000,
	domain.RuleMaxWeeklyHoursViolated: 500_000,

	domain.RuleABADurationTooShort:  2_000_000,
	domain.RuleABADurationTooLong:   2_000_000,
	domain.RuleMinDurationViolated:  2_000_000,
	domain.RuleMaxDurationViolated:  2_000_000,

	domain.RuleLunchOutsideWindow:   1_000_000,
	domain.RuleMultipleLunches:      1_000_000,
	domain.RuleMissingLunchBreak:    1_000_000,

	domain.RuleMaxNotesExceeded: 10,
}

const defaultViolationWeight = 1_000

func weightOf(rule domain.ViolationRule) float64 {
	if w, ok := hardViolationWeights[rule]; ok {
		return w
	}
	return defaultViolationWeight
}

// HardPenalty returns 0 for a feasible candidate (no violations), else
// 10,000,000 plus the sum of each violation's rule weight.
func HardPenalty(violations []domain.Violation) float64 {
	if len(violations) == 0 {
		return 0
	}
	total := hardViolationBase
	for _, v := range violations {
		total += weightOf(v.Rule)
	}
	return total
}

// SoftScoreInput bundles what SoftScore needs beyond the raw entries.
type SoftScoreInput struct {
	Entries []domain.ScheduleEntry
	Staff   map[string]domain.Staff
	Ranks   domain.RoleRank
	Clients map[string]domain.Client
}

// SoftScore is only meaningful when the candidate is feasible (spec §4.6:
// "If no violations, compute a pure soft score"). It sums two non-negative
// cost terms, lower is better:
//
//   - hierarchy balance: for every ordered pair of staff (i, j) where i
//     outranks j and i has more billable minutes than j, add the minute
//     gap * 100 — a senior staff member ending up busier than a junior
//     one is penalized, protecting senior staff's flexibility.
//   - off-team ABA: every ABA minute delivered across a team boundary
//     (client's team != assigned staff's team, both known) costs 200.
func SoftScore(in SoftScoreInput) float64 {
	return hierarchyBalanceCost(in) + offTeamABACost(in)
}

func hierarchyBalanceCost(in SoftScoreInput) float64 {
	billable := make(map[string]int) // staffID -> total billable minutes
	for _, e := range in.Entries {
		if e.StaffID == "" || !e.IsBillable() {
			continue
		}
		billable[e.StaffID] += e.DurationMinutes()
	}

	staffIDs := make([]string, 0, len(billable))
	for id := range billable {
		staffIDs = append(staffIDs, id)
	}

	cost := 0.0
	for _, i := range staffIDs {
		for _, j := range staffIDs {
			if i == j {
				continue
			}
			si, ok := in.Staff[i]
			if !ok {
				continue
			}
			sj, ok := in.Staff[j]
			if !ok {
				continue
			}
			if !outranksStrict(in.Ranks, si.Role, sj.Role) {
				continue
			}
			if billable[i] > billable[j] {
				cost += float64(billable[i]-billable[j]) * 100
			}
		}
	}
	return cost
}

func outranksStrict(ranks domain.RoleRank, a, b string) bool {
	if a == b {
		return false
	}
	ra, aok := ranks.Rank(a)
	rb, bok := ranks.Rank(b)
	if !aok || !bok {
		return false
	}
	return ra > rb
}

func offTeamABACost(in SoftScoreInput) float64 {
	cost := 0.0
	for _, e := range in.Entries {
		if e.SessionType != domain.SessionTypeABA || e.ClientID == "" || e.StaffID == "" {
			continue
		}
		client, ok := in.Clients[e.ClientID]
		if !ok || client.TeamID == "" {
			continue
		}
		staff, ok := in.Staff[e.StaffID]
		if !ok || staff.TeamID == "" {
			continue
		}
		if client.TeamID != staff.TeamID {
			cost += float64(e.DurationMinutes()) * 200
		}
	}
	return cost
}

// Objective combines the hard penalty and soft score into the single
// scalar the multi-restart driver (component G) minimizes. Whenever the
// hard penalty is non-zero it is returned alone and the soft term is not
// computed; otherwise the soft score is returned.
func Objective(violations []domain.Violation, soft SoftScoreInput) float64 {
	penalty := HardPenalty(violations)
	if penalty > 0 {
		return penalty
	}
	return SoftScore(soft)
}
