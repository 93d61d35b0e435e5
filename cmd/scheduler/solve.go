package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/clinicflow/scheduler/internal/engine/sdk"
	"github.com/clinicflow/scheduler/internal/scheduling/application/services"
	"github.com/clinicflow/scheduler/internal/scheduling/domain"
	appconfig "github.com/clinicflow/scheduler/pkg/config"
	"github.com/clinicflow/scheduler/pkg/observability"
)

func zeroUUID() uuid.UUID { return uuid.UUID{} }

func newSolveCmd() *cobra.Command {
	var inPath, outPath string
	var seedOverride int64

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Solve one day's schedule from a JSON request file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(inPath, outPath, seedOverride, cmd.Flags().Changed("seed"))
		},
	}

	cmd.Flags().StringVar(&inPath, "in", "", "path to the request JSON file (required)")
	cmd.Flags().StringVar(&outPath, "out", "", "path to write the result JSON file (required)")
	cmd.Flags().Int64Var(&seedOverride, "seed", 0, "override the RNG seed used for the multi-restart search")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func runSolve(inPath, outPath string, seedOverride int64, haveSeedOverride bool) error {
	cliCfg, err := appconfig.Load()
	if err != nil {
		return fmt.Errorf("load cli config: %w", err)
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:       observability.LogLevel(cliCfg.LogLevel),
		Format:      observability.LogFormat(cliCfg.LogFormat),
		Output:      os.Stderr,
		ServiceName: "scheduler",
	})

	raw, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("read request file: %w", err)
	}
	var req wireRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return fmt.Errorf("parse request file: %w", err)
	}

	date, err := parseDateOnly(req.Date)
	if err != nil {
		return err
	}

	engineConfig := sdk.NewEngineConfig("clinicflow.scheduler.aba-daily", zeroUUID(), requestConfigRaw(req, cliCfg, seedOverride, haveSeedOverride))

	engine := services.NewSchedulerEngine()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := engine.Initialize(ctx, engineConfig); err != nil {
		return fmt.Errorf("initialize engine: %w", err)
	}
	defer func() { _ = engine.Shutdown(ctx) }()

	grid := mustGrid(req)

	initialEntries, err := toDomainInitialEntries(req.InitialSchedule, grid)
	if err != nil {
		return fmt.Errorf("parse initial_schedule: %w", err)
	}
	callouts, err := toDomainCallouts(req.Callouts)
	if err != nil {
		return fmt.Errorf("parse callouts: %w", err)
	}
	clients, err := toDomainClients(req.Clients)
	if err != nil {
		return fmt.Errorf("parse clients: %w", err)
	}
	staff, err := toDomainStaff(req.Staff)
	if err != nil {
		return fmt.Errorf("parse staff: %w", err)
	}

	logger.Info("solving schedule", "date", req.Date, "clients", len(req.Clients), "staff", len(req.Staff))
	start := time.Now()

	resp, err := engine.Solve(ctx, services.SolveRequest{
		Date:           date,
		Clients:        clients,
		Staff:          staff,
		Insurance:      toDomainInsurance(req.Insurance),
		Callouts:       callouts,
		InitialEntries: initialEntries,
	})
	if err != nil {
		return fmt.Errorf("solve: %w", err)
	}

	observability.LogDuration(logger, "solve", start)
	logger.Info("solve complete", "status", string(resp.Status), "violations", len(resp.Violations), "restarts", resp.Restarts)

	out := wireResponse{
		Status:     string(resp.Status),
		Schedule:   fromDomainEntries(resp.Schedule, grid),
		Violations: fromDomainViolations(resp.Violations),
		SoftScore:  resp.SoftScore,
		Restarts:   resp.Restarts,
	}

	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if err := os.WriteFile(outPath, encoded, 0o644); err != nil {
		return fmt.Errorf("write result file: %w", err)
	}
	return nil
}

// mustGrid builds a throwaway Grid from the request's (or default)
// operating hours, purely to convert HH:MM wire times to slot indices
// before the real SystemConfig is resolved inside Initialize.
func mustGrid(req wireRequest) *domain.Grid {
	opStart := req.OpStart
	if opStart == "" {
		opStart = "08:00"
	}
	opEnd := req.OpEnd
	if opEnd == "" {
		opEnd = "17:00"
	}
	grid, err := domain.NewGrid(opStart, opEnd)
	if err != nil {
		grid, _ = domain.NewGrid("08:00", "17:00")
	}
	return grid
}

func requestConfigRaw(req wireRequest, cliCfg *appconfig.Config, seedOverride int64, haveSeedOverride bool) map[string]any {
	raw := map[string]any{
		"op_start":                  req.OpStart,
		"op_end":                    req.OpEnd,
		"ideal_lunch_start":         req.IdealLunchStart,
		"ideal_lunch_end_for_start": req.IdealLunchEndForStart,
		"lunch_length_minutes":      req.LunchLengthMinutes,
		"aba_min_duration_minutes":  req.ABAMinDurationMinutes,
		"aba_max_duration_minutes":  req.ABAMaxDurationMinutes,
		"default_role_rank":         req.DefaultRoleRank,
	}
	if len(req.RoleRanks) > 0 {
		ranks := make(map[string]any, len(req.RoleRanks))
		for k, v := range req.RoleRanks {
			ranks[k] = v
		}
		raw["role_ranks"] = ranks
	}

	maxRestarts := req.MaxRestarts
	if maxRestarts == 0 {
		maxRestarts = cliCfg.MaxRestarts
	}
	raw["max_restarts"] = maxRestarts

	maxWall := req.MaxWallClockMillis
	if maxWall == 0 {
		maxWall = cliCfg.MaxWallClockMillis
	}
	raw["max_wall_clock_millis"] = maxWall

	noImprove := req.NoImprovementLimit
	if noImprove == 0 {
		noImprove = cliCfg.NoImprovementLimit
	}
	raw["no_improvement_limit"] = noImprove

	seed := cliCfg.RNGSeed
	if haveSeedOverride {
		seed = seedOverride
	}
	raw["rng_seed"] = seed

	return raw
}
