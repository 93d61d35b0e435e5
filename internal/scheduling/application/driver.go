package application

import (
	"math/rand"
	"time"

	"github.com/clinicflow/scheduler/internal/scheduling/domain"
)

// Status is the terminal classification of a Solve run (spec §6).
type Status string

const (
	StatusOptimal    Status = "OPTIMAL"    // zero violations and zero soft score
	StatusFeasible   Status = "FEASIBLE"   // zero violations, nonzero soft score
	StatusInfeasible Status = "INFEASIBLE" // restart budget spent with violations still present
)

// Result is one Solve run's outcome: the best candidate schedule found
// across every restart, its violations, its soft score, and why the
// driver stopped looking.
type Result struct {
	Schedule    []domain.ScheduleEntry
	Violations  []domain.Violation
	SoftScore   float64
	Objective   float64
	Status      Status
	Restarts    int
}

// DriverInput bundles one day's solve request for the multi-restart loop
// (component G, spec §4.7).
type DriverInput struct {
	Date      time.Time
	Clients   []domain.Client
	Staff     []domain.Staff
	Insurance domain.InsuranceTable
	Callouts  []domain.Callout
	Config    *domain.SystemConfig

	// InitialEntries is the caller's full advisory schedule, spanning Date
	// and, for weekly-minute accounting (spec §6), any other day in the
	// same week. Solve splits it by day before handing it to Construct.
	InitialEntries []domain.ScheduleEntry

	// Cancelled, when non-nil, is polled every 50 iterations (spec §4.7's
	// suspension/cancellation check) so a caller can abort a long-running
	// solve without killing the process.
	Cancelled func() bool
}

// iterationCap scales the restart budget to problem size, per spec §4.7:
// problemSize = |clients| * |staff|. Larger rosters get fewer restarts,
// not more — each construction pass over a bigger roster costs more
// wall-clock, so the budget narrows to keep the whole run inside T_max.
func iterationCap(numClients, numStaff int) int {
	size := numClients * numStaff
	switch {
	case size > 500:
		return 200
	case size > 200:
		return 500
	case size > 50:
		return 1000
	default:
		return 2000
	}
}

// splitByDay partitions a multi-day advisory schedule into the entries
// that fall on date and everything else.
func splitByDay(entries []domain.ScheduleEntry, date time.Time) (sameDay, otherDay []domain.ScheduleEntry) {
	marker := domain.ScheduleEntry{Day: date}
	for _, e := range entries {
		if e.SameDay(marker) {
			sameDay = append(sameDay, e)
		} else {
			otherDay = append(otherDay, e)
		}
	}
	return sameDay, otherDay
}

// Solve runs the multi-restart constructive search: each restart builds a
// fresh candidate from a fresh Tracker, drawing from the run's single
// seeded RNG stream, scores it, and keeps
// the best-scoring candidate seen. It exits as soon as a perfectly
// feasible, zero-soft-score candidate is found, or when the restart cap,
// wall-clock budget, or no-improvement limit is reached (spec §4.7).
func Solve(in DriverInput) Result {
	restartCap := iterationCap(len(in.Clients), len(in.Staff))
	if in.Config.MaxRestarts > 0 && in.Config.MaxRestarts < restartCap {
		restartCap = in.Config.MaxRestarts
	}

	staffByID := indexStaff(in.Staff)
	clientByID := indexClients(in.Clients)

	dayEntries, otherDayEntries := splitByDay(in.InitialEntries, in.Date)

	deadline := time.Now().Add(time.Duration(in.Config.MaxWallClockMillis) * time.Millisecond)
	rng := rand.New(rand.NewSource(in.Config.RNGSeed))

	var best []domain.ScheduleEntry
	var bestViolations []domain.Violation
	bestObjective := float64(-1)
	sinceImprovement := 0
	restartsRun := 0

	for restart := 0; restart < restartCap; restart++ {
		restartsRun = restart + 1

		if restart%50 == 0 {
			if in.Cancelled != nil && in.Cancelled() {
				break
			}
			if time.Now().After(deadline) {
				break
			}
		}

		candidate := Construct(ConstructInput{
			Date:            in.Date,
			Clients:         in.Clients,
			Staff:           in.Staff,
			Insurance:       in.Insurance,
			Callouts:        in.Callouts,
			Config:          in.Config,
			InitialEntries:  dayEntries,
			OtherDayEntries: otherDayEntries,
			Rng:             rng,
		})

		// Other-day entries feed weekly-minute accounting (above) but are
		// never placed on day D; they still need to appear in the entry
		// set Validate sees so coverage/insurance checks see the whole
		// week, not just today's candidate (spec §6).
		validationEntries := make([]domain.ScheduleEntry, 0, len(candidate)+len(otherDayEntries))
		validationEntries = append(validationEntries, candidate...)
		validationEntries = append(validationEntries, otherDayEntries...)

		violations := domain.Validate(domain.ValidationInput{
			Entries:   validationEntries,
			Staff:     staffByID,
			Clients:   clientByID,
			Callouts:  in.Callouts,
			Insurance: in.Insurance,
			Config:    in.Config,
		})

		soft := SoftScoreInput{
			Entries: candidate,
			Staff:   staffByID,
			Ranks:   in.Config.RoleRanks,
			Clients: clientByID,
		}
		objective := Objective(violations, soft)

		if bestObjective < 0 || objective < bestObjective {
			best = candidate
			bestViolations = violations
			bestObjective = objective
			sinceImprovement = 0
		} else {
			sinceImprovement++
		}

		if len(violations) == 0 && objective == 0 {
			break
		}
		if sinceImprovement >= in.Config.NoImprovementLimit {
			break
		}
	}

	var status Status
	switch {
	case len(bestViolations) > 0:
		status = StatusInfeasible
	case bestObjective == 0:
		status = StatusOptimal
	default:
		status = StatusFeasible
	}

	softScore := 0.0
	if len(bestViolations) == 0 {
		softScore = bestObjective
	}

	return Result{
		Schedule:   best,
		Violations: bestViolations,
		SoftScore:  softScore,
		Objective:  bestObjective,
		Status:     status,
		Restarts:   restartsRun,
	}
}
