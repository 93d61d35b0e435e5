// Package services exposes the scheduling engine behind Orbita's engine
// lifecycle (internal/engine/sdk.Engine): identity via Metadata/Type, a
// JSON-schema-described ConfigSchema, and an explicit
// Initialize/HealthCheck/Shutdown lifecycle. Solve is the domain operation
// this engine adds beyond the base sdk.Engine contract.
package services

import (
	"context"
	"time"

	"github.com/clinicflow/scheduler/internal/engine/sdk"
	"github.com/clinicflow/scheduler/internal/scheduling/application"
	"github.com/clinicflow/scheduler/internal/scheduling/domain"
)

// SolveRequest is one day's scheduling request (spec §6's Solve contract).
type SolveRequest struct {
	Date           time.Time
	Clients        []domain.Client
	Staff          []domain.Staff
	Insurance      domain.InsuranceTable
	Callouts       []domain.Callout
	InitialEntries []domain.ScheduleEntry
}

// SolveResponse is the Solve contract's return shape: a schedule, its hard
// violations, soft score, and a status string — never a Go error for a
// soft failure (spec §7: hard_violations non-empty is not an error).
type SolveResponse struct {
	Schedule   []domain.ScheduleEntry
	Violations []domain.Violation
	SoftScore  float64
	Status     application.Status
	Restarts   int
}

// SchedulerEngine wraps the constructive scheduler + multi-restart driver
// behind sdk.Engine's lifecycle.
type SchedulerEngine struct {
	config      *domain.SystemConfig
	initialized bool
	shutdown    bool
}

// NewSchedulerEngine builds an uninitialized engine. Callers must call
// Initialize before Solve.
func NewSchedulerEngine() *SchedulerEngine {
	return &SchedulerEngine{}
}

// Metadata returns this engine's marketplace identification.
func (e *SchedulerEngine) Metadata() sdk.EngineMetadata {
	return sdk.EngineMetadata{
		ID:            "clinicflow.scheduler.aba-daily",
		Name:          "ABA Daily Scheduler",
		Version:       "1.0.0",
		Author:        "ClinicFlow",
		Description:   "Greedy constructive, multi-restart daily therapy-session scheduler for multi-team ABA clinics",
		License:       "Proprietary",
		Tags:          []string{"scheduler", "aba", "clinic", "multi-restart"},
		MinAPIVersion: "1.0.0",
		Capabilities:  []string{"solve_day", "validate_schedule", "score_schedule"},
	}
}

// Type returns the engine type.
func (e *SchedulerEngine) Type() sdk.EngineType {
	return sdk.EngineTypeScheduler
}

// ConfigSchema describes the tunable knobs behind domain.SystemConfig.
func (e *SchedulerEngine) ConfigSchema() sdk.ConfigSchema {
	return sdk.ConfigSchema{
		Schema: "https://json-schema.org/draft/2020-12/schema",
		Type:   "object",
		Title:  "ABA Daily Scheduler Configuration",
		Properties: map[string]sdk.PropertySchema{
			"op_start": {Type: "string", Title: "Operating Hours Start", Default: "08:00"},
			"op_end":   {Type: "string", Title: "Operating Hours End", Default: "17:00"},
			"ideal_lunch_start":          {Type: "string", Title: "Ideal Lunch Window Start", Default: "11:30"},
			"ideal_lunch_end_for_start":  {Type: "string", Title: "Ideal Lunch Window End", Default: "13:00"},
			"max_restarts": {
				Type: "integer", Title: "Max Restarts", Default: domain.DefaultMaxRestarts,
				UIHints: sdk.UIHints{Group: "Search Budget", Order: 1},
			},
			"max_wall_clock_millis": {
				Type: "integer", Title: "Wall Clock Budget (ms)", Default: domain.DefaultMaxWallClockMillis,
				UIHints: sdk.UIHints{Group: "Search Budget", Order: 2},
			},
			"no_improvement_limit": {
				Type: "integer", Title: "No-Improvement Limit", Default: domain.DefaultNoImprovementLimit,
				UIHints: sdk.UIHints{Group: "Search Budget", Order: 3},
			},
		},
		Required: []string{"op_start", "op_end", "ideal_lunch_start", "ideal_lunch_end_for_start"},
	}
}

// Initialize validates and stores the resolved SystemConfig this engine
// will use for every subsequent Solve call.
func (e *SchedulerEngine) Initialize(ctx context.Context, config sdk.EngineConfig) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	params := systemConfigParamsFromRaw(config.Raw)
	resolved, err := domain.NewSystemConfig(params)
	if err != nil {
		return sdk.NewEngineError(config.EngineID, "Initialize", err)
	}

	e.config = resolved
	e.initialized = true
	e.shutdown = false
	return nil
}

// HealthCheck reports whether the engine is ready to accept Solve calls.
func (e *SchedulerEngine) HealthCheck(ctx context.Context) sdk.HealthStatus {
	if e.shutdown {
		return sdk.NewHealthStatus(false, "engine has been shut down")
	}
	if !e.initialized {
		return sdk.NewHealthStatus(false, "engine not initialized")
	}
	return sdk.NewHealthStatus(true, "ready")
}

// Shutdown releases the engine's resolved config. Solve calls after
// Shutdown return an error.
func (e *SchedulerEngine) Shutdown(ctx context.Context) error {
	e.shutdown = true
	e.config = nil
	return nil
}

// Solve runs one scheduling request to completion (spec §6). It never
// returns an error for an infeasible-but-attempted schedule — that's
// carried in SolveResponse.Violations/Status (spec §7's "soft failure" is
// not a control-flow error) — but does return sdk error types for engine
// lifecycle violations and for infeasible *inputs* (empty rosters), which
// spec §7 classifies separately from soft failures.
func (e *SchedulerEngine) Solve(ctx context.Context, req SolveRequest) (SolveResponse, error) {
	if e.shutdown {
		return SolveResponse{}, sdk.ErrEngineShutdown
	}
	if !e.initialized {
		return SolveResponse{}, sdk.ErrEngineNotInitialized
	}
	if len(req.Clients) == 0 || len(req.Staff) == 0 {
		return SolveResponse{}, sdk.NewExecutionError(e.Metadata().ID, "", "Solve", domain.ErrEmptyRoster, false)
	}

	cancelled := func() bool {
		select {
		case <-ctx.Done():
			return true
		default:
			return false
		}
	}

	result := application.Solve(application.DriverInput{
		Date:           req.Date,
		Clients:        req.Clients,
		Staff:          req.Staff,
		Insurance:      req.Insurance,
		Callouts:       req.Callouts,
		Config:         e.config,
		InitialEntries: req.InitialEntries,
		Cancelled:      cancelled,
	})

	return SolveResponse{
		Schedule:   result.Schedule,
		Violations: result.Violations,
		SoftScore:  result.SoftScore,
		Status:     result.Status,
		Restarts:   result.Restarts,
	}, nil
}

// systemConfigParamsFromRaw translates an sdk.EngineConfig's loosely-typed
// Raw map into domain.SystemConfigParams, matching the config-resolver's
// clamp-and-continue posture (spec §7): missing or mistyped fields fall
// through to NewSystemConfig's own defaulting rather than erroring here.
func systemConfigParamsFromRaw(raw map[string]any) domain.SystemConfigParams {
	p := domain.SystemConfigParams{
		OpStart:                "08:00",
		OpEnd:                  "17:00",
		IdealLunchStart:        "11:30",
		IdealLunchEndForStart:  "13:00",
		LunchLengthMinutes:     30,
	}

	if v, ok := raw["op_start"].(string); ok && v != "" {
		p.OpStart = v
	}
	if v, ok := raw["op_end"].(string); ok && v != "" {
		p.OpEnd = v
	}
	if v, ok := raw["ideal_lunch_start"].(string); ok && v != "" {
		p.IdealLunchStart = v
	}
	if v, ok := raw["ideal_lunch_end_for_start"].(string); ok && v != "" {
		p.IdealLunchEndForStart = v
	}
	if v, ok := asInt(raw["lunch_length_minutes"]); ok {
		p.LunchLengthMinutes = v
	}
	if v, ok := asInt(raw["aba_min_duration_minutes"]); ok {
		p.ABAMinDurationMinutes = v
	}
	if v, ok := asInt(raw["aba_max_duration_minutes"]); ok {
		p.ABAMaxDurationMinutes = v
	}
	if v, ok := asInt(raw["max_restarts"]); ok {
		p.MaxRestarts = v
	}
	if v, ok := asInt(raw["max_wall_clock_millis"]); ok {
		p.MaxWallClockMillis = int64(v)
	}
	if v, ok := asInt(raw["no_improvement_limit"]); ok {
		p.NoImprovementLimit = v
	}
	if v, ok := asInt(raw["rng_seed"]); ok {
		p.RNGSeed = int64(v)
	}
	if m, ok := raw["role_ranks"].(map[string]any); ok {
		ranks := make(map[string]int, len(m))
		for role, val := range m {
			if iv, ok := asInt(val); ok {
				ranks[role] = iv
			}
		}
		p.RoleRanks = ranks
	}
	if v, ok := asInt(raw["default_role_rank"]); ok {
		p.DefaultRoleRank = v
	}

	return p
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
