package main

import (
	"fmt"
	"time"

	"github.com/clinicflow/scheduler/internal/scheduling/domain"
	shareddomain "github.com/clinicflow/scheduler/internal/shared/domain"
)

// These wire* types are the CLI's JSON request/response contract (spec
// §6). They mirror the domain types but use plain strings for dates so
// request.json / result.json stay readable hand-written JSON; parseDateOnly
// parses "YYYY-MM-DD" into time.Time and output dates are formatted with
// the same layout.

type wireRequest struct {
	Date string `json:"date"`

	OpStart               string `json:"op_start,omitempty"`
	OpEnd                 string `json:"op_end,omitempty"`
	IdealLunchStart       string `json:"ideal_lunch_start,omitempty"`
	IdealLunchEndForStart string `json:"ideal_lunch_end_for_start,omitempty"`
	LunchLengthMinutes    int    `json:"lunch_length_minutes,omitempty"`

	RoleRanks       map[string]int `json:"role_ranks,omitempty"`
	DefaultRoleRank int            `json:"default_role_rank,omitempty"`

	ABAMinDurationMinutes int `json:"aba_min_duration_minutes,omitempty"`
	ABAMaxDurationMinutes int `json:"aba_max_duration_minutes,omitempty"`

	MaxRestarts        int   `json:"max_restarts,omitempty"`
	MaxWallClockMillis int64 `json:"max_wall_clock_millis,omitempty"`
	NoImprovementLimit int   `json:"no_improvement_limit,omitempty"`

	Clients   []wireClient              `json:"clients"`
	Staff     []wireStaff               `json:"staff"`
	Insurance map[string]wireInsurance  `json:"insurance,omitempty"`
	Callouts  []wireCallout             `json:"callouts,omitempty"`

	InitialSchedule []wireEntry `json:"initial_schedule,omitempty"`
}

type wireClient struct {
	ID                    string               `json:"id"`
	Name                  string               `json:"name,omitempty"`
	TeamID                string               `json:"team_id,omitempty"`
	InsuranceRequirements []string             `json:"insurance_requirements,omitempty"`
	AlliedHealthNeeds     []wireAlliedHealth   `json:"allied_health_needs,omitempty"`
}

type wireAlliedHealth struct {
	ServiceType         string `json:"service_type"`
	SpecificDaysRRule   string `json:"specific_days_rrule,omitempty"`
	StartTime           string `json:"start_time"`
	EndTime             string `json:"end_time"`
	PreferredProviderID string `json:"preferred_provider_id,omitempty"`
}

type wireStaff struct {
	ID                   string   `json:"id"`
	Name                 string   `json:"name,omitempty"`
	Role                 string   `json:"role"`
	TeamID               string   `json:"team_id,omitempty"`
	Qualifications       []string `json:"qualifications,omitempty"`
	AlliedHealthServices []string `json:"allied_health_services,omitempty"`
}

type wireInsurance struct {
	MaxStaffPerDay            int     `json:"max_staff_per_day,omitempty"`
	MinSessionDurationMinutes int     `json:"min_session_duration_minutes,omitempty"`
	MaxSessionDurationMinutes int     `json:"max_session_duration_minutes,omitempty"`
	MaxHoursPerWeek           float64 `json:"max_hours_per_week,omitempty"`
	RoleHierarchyOrder        *int    `json:"role_hierarchy_order,omitempty"`
}

type wireCallout struct {
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
}

type wireEntry struct {
	ID          string `json:"id,omitempty"`
	ClientID    string `json:"client_id,omitempty"`
	StaffID     string `json:"staff_id,omitempty"`
	Day         string `json:"day"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	SessionType string `json:"session_type"`
}

type wireViolation struct {
	Rule     string `json:"rule"`
	EntryID  string `json:"entry_id,omitempty"`
	ClientID string `json:"client_id,omitempty"`
	StaffID  string `json:"staff_id,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

type wireResponse struct {
	Status     string          `json:"status"`
	Schedule   []wireEntry     `json:"schedule"`
	Violations []wireViolation `json:"hard_violations"`
	SoftScore  float64         `json:"soft_score"`
	Restarts   int             `json:"restarts"`
}

func parseDateOnly(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// toDomainClients parses the wire roster into domain.Client. Every client
// ID is round-tripped through shareddomain.ClientID so an empty ID in
// request.json is rejected here, at the I/O
// boundary, rather than surfacing later as a silently unmatched client
// reference deep in the solver. A whitespace-only ID is not empty and is
// accepted.
func toDomainClients(in []wireClient) ([]domain.Client, error) {
	out := make([]domain.Client, 0, len(in))
	for _, c := range in {
		id := shareddomain.NewClientID(c.ID)
		if id.IsEmpty() {
			return nil, fmt.Errorf("client has a blank id")
		}

		needs := make([]domain.AlliedHealthNeed, 0, len(c.AlliedHealthNeeds))
		for _, n := range c.AlliedHealthNeeds {
			needs = append(needs, domain.AlliedHealthNeed{
				ServiceType:         n.ServiceType,
				SpecificDaysRRule:   n.SpecificDaysRRule,
				StartTime:           n.StartTime,
				EndTime:             n.EndTime,
				PreferredProviderID: n.PreferredProviderID,
			})
		}
		out = append(out, domain.Client{
			ID:                    id.String(),
			Name:                  c.Name,
			TeamID:                c.TeamID,
			InsuranceRequirements: c.InsuranceRequirements,
			AlliedHealthNeeds:     needs,
		})
	}
	return out, nil
}

// toDomainStaff mirrors toDomainClients for the staff roster, using
// shareddomain.StaffID to reject a blank staff id at parse time.
func toDomainStaff(in []wireStaff) ([]domain.Staff, error) {
	out := make([]domain.Staff, 0, len(in))
	for _, s := range in {
		id := shareddomain.NewStaffID(s.ID)
		if id.IsEmpty() {
			return nil, fmt.Errorf("staff member has a blank id")
		}

		out = append(out, domain.Staff{
			ID:                   id.String(),
			Name:                 s.Name,
			Role:                 s.Role,
			TeamID:               s.TeamID,
			Qualifications:       s.Qualifications,
			AlliedHealthServices: s.AlliedHealthServices,
		})
	}
	return out, nil
}

func toDomainInsurance(in map[string]wireInsurance) domain.InsuranceTable {
	table := make(domain.InsuranceTable, len(in))
	for id, row := range in {
		q := domain.InsuranceQualification{
			ID:                        id,
			MaxStaffPerDay:            row.MaxStaffPerDay,
			MinSessionDurationMinutes: row.MinSessionDurationMinutes,
			MaxSessionDurationMinutes: row.MaxSessionDurationMinutes,
			MaxHoursPerWeek:           row.MaxHoursPerWeek,
		}
		if row.RoleHierarchyOrder != nil {
			q.RoleHierarchyOrder = *row.RoleHierarchyOrder
			q.HasRoleHierarchyOrder = true
		}
		table[id] = q
	}
	return table
}

func toDomainCallouts(in []wireCallout) ([]domain.Callout, error) {
	out := make([]domain.Callout, 0, len(in))
	for _, c := range in {
		start, err := parseDateOnly(c.StartDate)
		if err != nil {
			return nil, err
		}
		end, err := parseDateOnly(c.EndDate)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.Callout{
			EntityType: domain.CalloutEntityType(c.EntityType),
			EntityID:   c.EntityID,
			StartDate:  start,
			EndDate:    end,
			StartTime:  c.StartTime,
			EndTime:    c.EndTime,
		})
	}
	return out, nil
}

func toDomainInitialEntries(in []wireEntry, grid *domain.Grid) ([]domain.ScheduleEntry, error) {
	out := make([]domain.ScheduleEntry, 0, len(in))
	for _, e := range in {
		day, err := parseDateOnly(e.Day)
		if err != nil {
			return nil, err
		}
		startMin, err := domain.ParseClockTime(e.StartTime)
		if err != nil {
			return nil, err
		}
		endMin, err := domain.ParseClockTime(e.EndTime)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.ScheduleEntry{
			ID:          e.ID,
			ClientID:    e.ClientID,
			StaffID:     e.StaffID,
			Day:         day,
			StartSlot:   grid.SlotOfMinutes(startMin),
			Length:      (endMin - startMin) / domain.SlotMinutes,
			SessionType: domain.SessionType(e.SessionType),
		})
	}
	return out, nil
}

func fromDomainEntries(in []domain.ScheduleEntry, grid *domain.Grid) []wireEntry {
	out := make([]wireEntry, 0, len(in))
	for _, e := range in {
		out = append(out, wireEntry{
			ID:          e.ID,
			ClientID:    e.ClientID,
			StaffID:     e.StaffID,
			Day:         e.Day.Format("2006-01-02"),
			StartTime:   grid.ClockOfSlot(e.StartSlot),
			EndTime:     grid.ClockOfSlot(e.EndSlot()),
			SessionType: e.SessionType.String(),
		})
	}
	return out
}

func fromDomainViolations(in []domain.Violation) []wireViolation {
	out := make([]wireViolation, 0, len(in))
	for _, v := range in {
		out = append(out, wireViolation{
			Rule:     v.Rule.String(),
			EntryID:  v.EntryID,
			ClientID: v.ClientID,
			StaffID:  v.StaffID,
			Detail:   v.Detail,
		})
	}
	return out
}
