package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInsuranceTable_ResolveDefaults(t *testing.T) {
	table := InsuranceTable{}
	r := table.Resolve(nil)

	assert.Equal(t, 0, r.MaxDistinctStaff, "unbounded by default")
	assert.Equal(t, DefaultABAMinDurationMinutes, r.MinSessionMinutes)
	assert.Equal(t, DefaultABAMaxDurationMinutes, r.MaxSessionMinutes)
	assert.Equal(t, 0, r.MaxWeeklyMinutes)
}

func TestInsuranceTable_ResolveAggregatesAcrossCodes(t *testing.T) {
	table := InsuranceTable{
		"medicaid": {
			ID:                        "medicaid",
			MaxStaffPerDay:            3,
			MinSessionDurationMinutes: 90,
			MaxSessionDurationMinutes: 150,
			MaxHoursPerWeek:           20,
		},
		"private": {
			ID:                        "private",
			MaxStaffPerDay:            2,
			MinSessionDurationMinutes: 60,
			MaxSessionDurationMinutes: 120,
			MaxHoursPerWeek:           10,
		},
	}

	r := table.Resolve([]string{"medicaid", "private"})

	assert.Equal(t, 2, r.MaxDistinctStaff, "min of the two caps")
	assert.Equal(t, 90, r.MinSessionMinutes, "max of the two floors")
	assert.Equal(t, 120, r.MaxSessionMinutes, "min of the two ceilings")
	assert.Equal(t, 600, r.MaxWeeklyMinutes, "min of the two weekly caps, in minutes")
}

func TestInsuranceTable_ResolveSkipsUnknownCodes(t *testing.T) {
	table := InsuranceTable{
		"medicaid": {ID: "medicaid", MaxStaffPerDay: 3},
	}
	r := table.Resolve([]string{"medicaid", "nonexistent"})
	assert.Equal(t, 3, r.MaxDistinctStaff)
}

func TestStaffQualifies_EmptyCodesAlwaysQualifies(t *testing.T) {
	ranks := NewRoleRank(map[string]int{"BT": 1, "BCBA": 3}, 0)
	assert.True(t, StaffQualifies(nil, "BT", nil, ranks, nil))
}

func TestStaffQualifies_DirectRoleMatch(t *testing.T) {
	ranks := NewRoleRank(map[string]int{"BT": 1, "BCBA": 3}, 0)
	assert.True(t, StaffQualifies([]string{"BT"}, "BT", nil, ranks, nil))
}

func TestStaffQualifies_OwnQualificationSatisfiesRequirement(t *testing.T) {
	ranks := NewRoleRank(map[string]int{"BT": 1, "BCBA": 3}, 0)
	assert.True(t, StaffQualifies([]string{"CPR"}, "BT", []string{"CPR"}, ranks, nil))
}

func TestStaffQualifies_RoleHierarchyOutranks(t *testing.T) {
	ranks := NewRoleRank(map[string]int{"BT": 1, "RBT": 2, "BCBA": 3}, 0)
	assert.True(t, StaffQualifies([]string{"BT"}, "BCBA", nil, ranks, nil), "BCBA outranks BT")
	assert.False(t, StaffQualifies([]string{"BCBA"}, "BT", nil, ranks, nil), "BT does not outrank BCBA")
}

func TestStaffQualifies_RequiresEveryCode(t *testing.T) {
	ranks := NewRoleRank(map[string]int{"BT": 1, "RBT": 2}, 0)
	table := InsuranceTable{}
	assert.False(t, StaffQualifies([]string{"RBT", "specialty-x"}, "RBT", nil, ranks, table),
		"satisfying one of two required codes is not enough")
}

func TestStaffQualifies_QualificationRoleHierarchyOrderOverridesRoleRank(t *testing.T) {
	ranks := NewRoleRank(map[string]int{"BT": 1, "BCBA": 3}, 0)
	table := InsuranceTable{
		"specialty-x": {ID: "specialty-x", RoleHierarchyOrder: 5, HasRoleHierarchyOrder: true},
	}
	assert.False(t, StaffQualifies([]string{"specialty-x"}, "BCBA", nil, ranks, table),
		"BCBA's rank 3 doesn't reach the requirement's own rank of 5")
}

func TestStaffQualifies_UnknownRequirementWithUnknownStaffRoleFails(t *testing.T) {
	ranks := NewRoleRank(map[string]int{"BT": 1}, 0)
	assert.False(t, StaffQualifies([]string{"unknown-code"}, "Intern", nil, ranks, nil))
}
