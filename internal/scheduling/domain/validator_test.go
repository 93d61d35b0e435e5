package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSystemConfig(t *testing.T) *SystemConfig {
	t.Helper()
	cfg, err := NewSystemConfig(SystemConfigParams{
		OpStart:               "08:00",
		OpEnd:                 "17:00",
		IdealLunchStart:       "11:30",
		IdealLunchEndForStart: "13:00",
		RoleRanks:             map[string]int{"BT": 1, "RBT": 2, "BCBA": 3},
	})
	require.NoError(t, err)
	return cfg
}

func TestValidate_StaffTimeConflict(t *testing.T) {
	day := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	entries := []ScheduleEntry{
		{ID: "e1", StaffID: "s1", ClientID: "c1", Day: day, StartSlot: 0, Length: 4, SessionType: SessionTypeABA},
		{ID: "e2", StaffID: "s1", ClientID: "c2", Day: day, StartSlot: 2, Length: 4, SessionType: SessionTypeABA},
	}
	violations := Validate(ValidationInput{
		Entries: entries,
		Staff:   map[string]Staff{"s1": {ID: "s1", Role: "BT"}},
		Clients: map[string]Client{"c1": {ID: "c1"}, "c2": {ID: "c2"}},
		Config:  testSystemConfig(t),
	})
	assertHasRule(t, violations, RuleStaffTimeConflict)
}

func TestValidate_ClientTimeConflict(t *testing.T) {
	day := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	entries := []ScheduleEntry{
		{ID: "e1", StaffID: "s1", ClientID: "c1", Day: day, StartSlot: 0, Length: 4, SessionType: SessionTypeABA},
		{ID: "e2", StaffID: "s2", ClientID: "c1", Day: day, StartSlot: 2, Length: 4, SessionType: SessionTypeABA},
	}
	violations := Validate(ValidationInput{
		Entries: entries,
		Staff:   map[string]Staff{"s1": {ID: "s1", Role: "BT"}, "s2": {ID: "s2", Role: "BT"}},
		Clients: map[string]Client{"c1": {ID: "c1"}},
		Config:  testSystemConfig(t),
	})
	assertHasRule(t, violations, RuleClientTimeConflict)
}

func TestValidate_CalloutConflict(t *testing.T) {
	day := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	entries := []ScheduleEntry{
		{ID: "e1", StaffID: "s1", ClientID: "c1", Day: day, StartSlot: 0, Length: 4, SessionType: SessionTypeABA},
	}
	callouts := []Callout{
		{EntityType: CalloutEntityStaff, EntityID: "s1", StartDate: day, EndDate: day, StartTime: "08:00", EndTime: "12:00"},
	}
	violations := Validate(ValidationInput{
		Entries:  entries,
		Staff:    map[string]Staff{"s1": {ID: "s1", Role: "BT"}},
		Clients:  map[string]Client{"c1": {ID: "c1"}},
		Callouts: callouts,
		Config:   testSystemConfig(t),
	})
	assertHasRule(t, violations, RuleCalloutConflict)
}

func TestValidate_CredentialMismatch(t *testing.T) {
	day := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	entries := []ScheduleEntry{
		{ID: "e1", StaffID: "s1", ClientID: "c1", Day: day, StartSlot: 0, Length: 4, SessionType: SessionTypeABA},
	}
	violations := Validate(ValidationInput{
		Entries: entries,
		Staff:   map[string]Staff{"s1": {ID: "s1", Role: "BT"}},
		Clients: map[string]Client{"c1": {ID: "c1", InsuranceRequirements: []string{"BCBA"}}},
		Config:  testSystemConfig(t),
	})
	assertHasRule(t, violations, RuleCredentialMismatch)
}

func TestValidate_AlliedRoleMismatch(t *testing.T) {
	day := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	entries := []ScheduleEntry{
		{ID: "e1", StaffID: "s1", ClientID: "c1", Day: day, StartSlot: 0, Length: 4, SessionType: SessionTypeAlliedHealthOT},
	}
	violations := Validate(ValidationInput{
		Entries: entries,
		Staff:   map[string]Staff{"s1": {ID: "s1", Role: "BT"}},
		Clients: map[string]Client{"c1": {ID: "c1"}},
		Config:  testSystemConfig(t),
	})
	assertHasRule(t, violations, RuleAlliedRoleMismatch)
}

func TestValidate_ABADurationBounds(t *testing.T) {
	day := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	entries := []ScheduleEntry{
		{ID: "short", StaffID: "s1", ClientID: "c1", Day: day, StartSlot: 0, Length: 1, SessionType: SessionTypeABA},  // 15 min
		{ID: "long", StaffID: "s1", ClientID: "c1", Day: day, StartSlot: 8, Length: 16, SessionType: SessionTypeABA}, // 240 min
	}
	violations := Validate(ValidationInput{
		Entries: entries,
		Staff:   map[string]Staff{"s1": {ID: "s1", Role: "BCBA"}},
		Clients: map[string]Client{"c1": {ID: "c1"}},
		Config:  testSystemConfig(t),
	})
	assertHasRule(t, violations, RuleABADurationTooShort)
	assertHasRule(t, violations, RuleABADurationTooLong)
}

func TestValidate_InsuranceBounds(t *testing.T) {
	day := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	entries := []ScheduleEntry{
		{ID: "e1", StaffID: "s1", ClientID: "c1", Day: day, StartSlot: 0, Length: 4, SessionType: SessionTypeABA},
		{ID: "e2", StaffID: "s2", ClientID: "c1", Day: day, StartSlot: 8, Length: 4, SessionType: SessionTypeABA},
	}
	insurance := InsuranceTable{
		"medicaid": {ID: "medicaid", MaxStaffPerDay: 1, MinSessionDurationMinutes: 90, MaxSessionDurationMinutes: 120},
	}
	violations := Validate(ValidationInput{
		Entries:   entries,
		Staff:     map[string]Staff{"s1": {ID: "s1", Role: "BCBA"}, "s2": {ID: "s2", Role: "BCBA"}},
		Clients:   map[string]Client{"c1": {ID: "c1", InsuranceRequirements: []string{"medicaid"}}},
		Insurance: insurance,
		Config:    testSystemConfig(t),
	})
	assertHasRule(t, violations, RuleMinDurationViolated)
	assertHasRule(t, violations, RuleMaxProvidersViolated)
}

func TestValidate_OutsideOperatingHours(t *testing.T) {
	day := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	entries := []ScheduleEntry{
		{ID: "e1", StaffID: "s1", ClientID: "c1", Day: day, StartSlot: -1, Length: 4, SessionType: SessionTypeABA},
	}
	violations := Validate(ValidationInput{
		Entries: entries,
		Staff:   map[string]Staff{"s1": {ID: "s1", Role: "BCBA"}},
		Clients: map[string]Client{"c1": {ID: "c1"}},
		Config:  testSystemConfig(t),
	})
	assertHasRule(t, violations, RuleOutsideOperatingHours)
}

// Regression test for the corrected lunch-window semantics: the window
// bounds only where the lunch block may *start*, not its whole span. A
// lunch starting inside the window but ending after IdealLunchEndForStart
// must NOT be flagged.
func TestValidate_LunchWindowBoundsOnlyTheStart(t *testing.T) {
	cfg := testSystemConfig(t)
	day := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	latestStart := cfg.LunchLatestStartSlot()

	entries := []ScheduleEntry{
		{ID: "billable", StaffID: "s1", ClientID: "c1", Day: day, StartSlot: 0, Length: 4, SessionType: SessionTypeABA},
		{ID: "lunch", StaffID: "s1", Day: day, StartSlot: latestStart, Length: cfg.LunchLengthSlots, SessionType: SessionTypeIndirectTime},
	}
	violations := Validate(ValidationInput{
		Entries: entries,
		Staff:   map[string]Staff{"s1": {ID: "s1", Role: "BCBA"}},
		Clients: map[string]Client{"c1": {ID: "c1"}},
		Config:  cfg,
	})
	assertLacksRule(t, violations, RuleLunchOutsideWindow)
}

func TestValidate_LunchStartingBeforeWindowIsFlagged(t *testing.T) {
	cfg := testSystemConfig(t)
	day := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)

	entries := []ScheduleEntry{
		{ID: "billable", StaffID: "s1", ClientID: "c1", Day: day, StartSlot: 0, Length: 4, SessionType: SessionTypeABA},
		{ID: "lunch", StaffID: "s1", Day: day, StartSlot: 0, Length: cfg.LunchLengthSlots, SessionType: SessionTypeIndirectTime},
	}
	violations := Validate(ValidationInput{
		Entries: entries,
		Staff:   map[string]Staff{"s1": {ID: "s1", Role: "BCBA"}},
		Clients: map[string]Client{"c1": {ID: "c1"}},
		Config:  cfg,
	})
	assertHasRule(t, violations, RuleLunchOutsideWindow)
}

func TestValidate_MultipleLunches(t *testing.T) {
	cfg := testSystemConfig(t)
	day := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	start := cfg.LunchEarliestStartSlot()

	entries := []ScheduleEntry{
		{ID: "billable", StaffID: "s1", ClientID: "c1", Day: day, StartSlot: 0, Length: 4, SessionType: SessionTypeABA},
		{ID: "lunch1", StaffID: "s1", Day: day, StartSlot: start, Length: cfg.LunchLengthSlots, SessionType: SessionTypeIndirectTime},
		{ID: "lunch2", StaffID: "s1", Day: day, StartSlot: start + 4, Length: cfg.LunchLengthSlots, SessionType: SessionTypeIndirectTime},
	}
	violations := Validate(ValidationInput{
		Entries: entries,
		Staff:   map[string]Staff{"s1": {ID: "s1", Role: "BCBA"}},
		Clients: map[string]Client{"c1": {ID: "c1"}},
		Config:  cfg,
	})
	assertHasRule(t, violations, RuleMultipleLunches)
}

func TestValidate_MissingLunchBreak(t *testing.T) {
	cfg := testSystemConfig(t)
	day := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	entries := []ScheduleEntry{
		{ID: "billable", StaffID: "s1", ClientID: "c1", Day: day, StartSlot: 0, Length: 4, SessionType: SessionTypeABA},
	}
	violations := Validate(ValidationInput{
		Entries: entries,
		Staff:   map[string]Staff{"s1": {ID: "s1", Role: "BCBA"}},
		Clients: map[string]Client{"c1": {ID: "c1"}},
		Config:  cfg,
	})
	assertHasRule(t, violations, RuleMissingLunchBreak)
}

func TestValidate_ABABackToBack(t *testing.T) {
	day := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	entries := []ScheduleEntry{
		{ID: "e1", StaffID: "s1", ClientID: "c1", Day: day, StartSlot: 0, Length: 4, SessionType: SessionTypeABA},
		{ID: "e2", StaffID: "s1", ClientID: "c1", Day: day, StartSlot: 4, Length: 4, SessionType: SessionTypeABA},
	}
	violations := Validate(ValidationInput{
		Entries: entries,
		Staff:   map[string]Staff{"s1": {ID: "s1", Role: "BCBA"}},
		Clients: map[string]Client{"c1": {ID: "c1"}},
		Config:  testSystemConfig(t),
	})
	assertHasRule(t, violations, RuleABABackToBack)
}

func TestValidate_ClientCoverageGap(t *testing.T) {
	day := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	entries := []ScheduleEntry{
		{ID: "e1", StaffID: "s1", ClientID: "c1", Day: day, StartSlot: 0, Length: 4, SessionType: SessionTypeABA},
	}
	clients := map[string]Client{
		"c1": {
			ID: "c1",
			AlliedHealthNeeds: []AlliedHealthNeed{
				{ServiceType: "OT", StartTime: "09:00", EndTime: "09:45"},
			},
		},
	}
	violations := Validate(ValidationInput{
		Entries: entries,
		Staff:   map[string]Staff{"s1": {ID: "s1", Role: "BCBA"}},
		Clients: clients,
		Config:  testSystemConfig(t),
	})
	assertHasRule(t, violations, RuleClientCoverageGap)
}

func TestValidate_CleanScheduleHasNoViolations(t *testing.T) {
	cfg := testSystemConfig(t)
	day := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	lunchStart := cfg.LunchEarliestStartSlot()

	entries := []ScheduleEntry{
		{ID: "e1", StaffID: "s1", ClientID: "c1", Day: day, StartSlot: 0, Length: 4, SessionType: SessionTypeABA},
		{ID: "lunch", StaffID: "s1", Day: day, StartSlot: lunchStart, Length: cfg.LunchLengthSlots, SessionType: SessionTypeIndirectTime},
	}
	violations := Validate(ValidationInput{
		Entries: entries,
		Staff:   map[string]Staff{"s1": {ID: "s1", Role: "BCBA"}},
		Clients: map[string]Client{"c1": {ID: "c1"}},
		Config:  cfg,
	})
	assert.Empty(t, violations)
}

func assertHasRule(t *testing.T, violations []Violation, rule ViolationRule) {
	t.Helper()
	for _, v := range violations {
		if v.Rule == rule {
			return
		}
	}
	t.Fatalf("expected a %s violation, got %+v", rule, violations)
}

func assertLacksRule(t *testing.T, violations []Violation, rule ViolationRule) {
	t.Helper()
	for _, v := range violations {
		if v.Rule == rule {
			t.Fatalf("did not expect a %s violation, got %+v", rule, v)
		}
	}
}
