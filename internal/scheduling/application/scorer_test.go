package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/clinicflow/scheduler/internal/scheduling/domain"
)

func TestHardPenalty_FeasibleIsZero(t *testing.T) {
	assert.Equal(t, 0.0, HardPenalty(nil))
}

func TestHardPenalty_BaseAndWeights(t *testing.T) {
	violations := []domain.Violation{
		{Rule: domain.RuleStaffTimeConflict},
		{Rule: domain.RuleABADurationTooShort},
	}
	got := HardPenalty(violations)
	want := hardViolationBase + 200_000 + 2_000_000
	assert.Equal(t, want, got)
}

func TestHardPenalty_UnknownRuleUsesDefaultWeight(t *testing.T) {
	violations := []domain.Violation{{Rule: domain.ViolationRule("SOME_UNLISTED_RULE")}}
	got := HardPenalty(violations)
	assert.Equal(t, hardViolationBase+defaultViolationWeight, got)
}

func TestSoftScore_HierarchyBalancePenalizesSeniorOverload(t *testing.T) {
	day := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	ranks := domain.NewRoleRank(map[string]int{"BT": 1, "BCBA": 3}, 0)

	entries := []domain.ScheduleEntry{
		{StaffID: "senior", Day: day, StartSlot: 0, Length: 8, SessionType: domain.SessionTypeABA},  // 120 min
		{StaffID: "junior", Day: day, StartSlot: 8, Length: 4, SessionType: domain.SessionTypeABA},  // 60 min
	}
	staff := map[string]domain.Staff{
		"senior": {ID: "senior", Role: "BCBA"},
		"junior": {ID: "junior", Role: "BT"},
	}

	got := SoftScore(SoftScoreInput{Entries: entries, Staff: staff, Ranks: ranks})
	assert.Equal(t, (120.0-60.0)*100, got)
}

func TestSoftScore_NoHierarchyCostWhenJuniorIsBusier(t *testing.T) {
	day := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	ranks := domain.NewRoleRank(map[string]int{"BT": 1, "BCBA": 3}, 0)

	entries := []domain.ScheduleEntry{
		{StaffID: "senior", Day: day, StartSlot: 0, Length: 4, SessionType: domain.SessionTypeABA},
		{StaffID: "junior", Day: day, StartSlot: 4, Length: 8, SessionType: domain.SessionTypeABA},
	}
	staff := map[string]domain.Staff{
		"senior": {ID: "senior", Role: "BCBA"},
		"junior": {ID: "junior", Role: "BT"},
	}

	got := SoftScore(SoftScoreInput{Entries: entries, Staff: staff, Ranks: ranks})
	assert.Equal(t, 0.0, got)
}

func TestSoftScore_OffTeamABACost(t *testing.T) {
	day := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	entries := []domain.ScheduleEntry{
		{StaffID: "s1", ClientID: "c1", Day: day, StartSlot: 0, Length: 4, SessionType: domain.SessionTypeABA},
	}
	staff := map[string]domain.Staff{"s1": {ID: "s1", TeamID: "teamA"}}
	clients := map[string]domain.Client{"c1": {ID: "c1", TeamID: "teamB"}}

	got := SoftScore(SoftScoreInput{Entries: entries, Staff: staff, Clients: clients})
	assert.Equal(t, 60.0*200, got)
}

func TestSoftScore_SameTeamHasNoOffTeamCost(t *testing.T) {
	day := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	entries := []domain.ScheduleEntry{
		{StaffID: "s1", ClientID: "c1", Day: day, StartSlot: 0, Length: 4, SessionType: domain.SessionTypeABA},
	}
	staff := map[string]domain.Staff{"s1": {ID: "s1", TeamID: "teamA"}}
	clients := map[string]domain.Client{"c1": {ID: "c1", TeamID: "teamA"}}

	got := SoftScore(SoftScoreInput{Entries: entries, Staff: staff, Clients: clients})
	assert.Equal(t, 0.0, got)
}

func TestObjective_InfeasibleIgnoresSoftTerm(t *testing.T) {
	violations := []domain.Violation{{Rule: domain.RuleStaffTimeConflict}}
	got := Objective(violations, SoftScoreInput{})
	assert.Equal(t, HardPenalty(violations), got)
}

func TestObjective_FeasibleReturnsSoftScore(t *testing.T) {
	got := Objective(nil, SoftScoreInput{})
	assert.Equal(t, 0.0, got)
}
