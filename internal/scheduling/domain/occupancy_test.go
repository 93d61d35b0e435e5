package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGrid(t *testing.T) *Grid {
	t.Helper()
	g, err := NewGrid("08:00", "17:00")
	require.NoError(t, err)
	return g
}

func TestTracker_StaffAndClientBusy(t *testing.T) {
	tr := NewTracker(testGrid(t))
	day := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)

	entry := ScheduleEntry{StaffID: "s1", ClientID: "c1", Day: day, StartSlot: 4, Length: 4, SessionType: SessionTypeABA}
	tr.Place(entry)

	assert.True(t, tr.StaffBusy("s1", day, 4, 4))
	assert.True(t, tr.StaffBusy("s1", day, 6, 2), "overlap within the placed range")
	assert.False(t, tr.StaffBusy("s1", day, 8, 4), "adjacent but non-overlapping")
	assert.True(t, tr.ClientBusy("c1", day, 5, 1))

	other := time.Date(2026, 8, 4, 0, 0, 0, 0, time.UTC)
	assert.False(t, tr.StaffBusy("s1", other, 4, 4), "occupancy is per-day")
}

func TestTracker_RemoveReversesPlace(t *testing.T) {
	tr := NewTracker(testGrid(t))
	day := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	entry := ScheduleEntry{StaffID: "s1", ClientID: "c1", Day: day, StartSlot: 0, Length: 4, SessionType: SessionTypeABA}

	tr.Place(entry)
	require.True(t, tr.StaffBusy("s1", day, 0, 4))

	tr.Remove(entry)
	assert.False(t, tr.StaffBusy("s1", day, 0, 4))
	assert.False(t, tr.ClientBusy("c1", day, 0, 4))
	assert.Equal(t, 0, tr.ClientWeeklyBillableMinutes("c1"))
}

func TestTracker_DistinctStaffAndWeeklyMinutes(t *testing.T) {
	tr := NewTracker(testGrid(t))
	day := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)

	tr.Place(ScheduleEntry{StaffID: "s1", ClientID: "c1", Day: day, StartSlot: 0, Length: 4, SessionType: SessionTypeABA})
	tr.Place(ScheduleEntry{StaffID: "s2", ClientID: "c1", Day: day, StartSlot: 10, Length: 4, SessionType: SessionTypeABA})

	assert.Equal(t, 2, tr.DistinctStaffCount("c1"))
	assert.True(t, tr.HasStaffedClient("c1", "s1"))
	assert.False(t, tr.HasStaffedClient("c1", "s3"))
	assert.Equal(t, 120, tr.ClientWeeklyBillableMinutes("c1"))

	tr.Place(ScheduleEntry{StaffID: "s1", ClientID: "c1", Day: day, StartSlot: 20, Length: 2, SessionType: SessionTypeABA})
	assert.Equal(t, 2, tr.DistinctStaffCount("c1"), "re-placing an existing staff doesn't grow the distinct count")
	assert.Equal(t, 150, tr.ClientWeeklyBillableMinutes("c1"))
}

func TestTracker_WeeklyMinutesIncludeAlliedHealth(t *testing.T) {
	tr := NewTracker(testGrid(t))
	day := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)

	tr.Place(ScheduleEntry{StaffID: "s1", ClientID: "c1", Day: day, StartSlot: 0, Length: 4, SessionType: SessionTypeABA})
	tr.Place(ScheduleEntry{StaffID: "s2", ClientID: "c1", Day: day, StartSlot: 10, Length: 2, SessionType: SessionTypeAlliedHealthOT})
	assert.Equal(t, 90, tr.ClientWeeklyBillableMinutes("c1"), "ABA and allied-health minutes both count toward the weekly cap")

	lunch := ScheduleEntry{StaffID: "s1", Day: day, StartSlot: 20, Length: 2, SessionType: SessionTypeIndirectTime}
	tr.Place(lunch)
	assert.Equal(t, 90, tr.ClientWeeklyBillableMinutes("c1"), "non-billable indirect time never counts")
}

func TestTracker_SeedWeeklyMinutesDoesNotTouchOccupancyOrDistinctStaff(t *testing.T) {
	tr := NewTracker(testGrid(t))
	day := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)

	tr.SeedWeeklyMinutes("c1", 60)
	assert.Equal(t, 60, tr.ClientWeeklyBillableMinutes("c1"))
	assert.Equal(t, 0, tr.DistinctStaffCount("c1"))
	assert.False(t, tr.ClientBusy("c1", day, 0, 4))

	tr.Place(ScheduleEntry{StaffID: "s1", ClientID: "c1", Day: day, StartSlot: 0, Length: 4, SessionType: SessionTypeABA})
	assert.Equal(t, 120, tr.ClientWeeklyBillableMinutes("c1"), "seeded minutes accumulate alongside placed entries")
}

func TestOccupancyMask_SetClearTestRange(t *testing.T) {
	var m occupancyMask
	m.set(0, 4)
	assert.True(t, m.testRange(0, 4))
	assert.True(t, m.testRange(2, 1))
	assert.False(t, m.testRange(4, 1))
	assert.Equal(t, 4, m.popcount())

	m.clear(0, 2)
	assert.False(t, m.testRange(0, 2))
	assert.True(t, m.testRange(2, 2))
	assert.Equal(t, 2, m.popcount())
}

func TestOccupancyMask_SpansBothWords(t *testing.T) {
	var m occupancyMask
	m.set(60, 8) // crosses the 64-bit word boundary
	assert.True(t, m.testRange(60, 4))
	assert.True(t, m.testRange(64, 4))
	assert.Equal(t, 8, m.popcount())
}
