package domain

import "fmt"

// RoleRank orders staff roles for the hierarchy-inheritance rule (spec
// §4.3): a staff role satisfies a qualification's required role if its
// rank is numerically >= the requirement's rank. Ranks are looked up by
// role name; DefaultRank is used for a role that never appears as a
// qualification row in the table ("the default-rank fallback", spec §6).
type RoleRank struct {
	ranks       map[string]int
	defaultRank int
}

// NewRoleRank builds a RoleRank table. A zero-value defaultRank disables
// the fallback (roles absent from ranks never outrank anything).
func NewRoleRank(ranks map[string]int, defaultRank int) RoleRank {
	cp := make(map[string]int, len(ranks))
	for k, v := range ranks {
		cp[k] = v
	}
	return RoleRank{ranks: cp, defaultRank: defaultRank}
}

// Rank returns role's configured rank. For a role absent from the table it
// returns (defaultRank, true) when a non-zero defaultRank is set, else
// (-1, false), matching §4.3's "rank(r) ≠ −1" escape hatch.
func (r RoleRank) Rank(role string) (rank int, known bool) {
	if v, ok := r.ranks[role]; ok {
		return v, true
	}
	if r.defaultRank != 0 {
		return r.defaultRank, true
	}
	return -1, false
}

// Outranks reports whether role a can cover a requirement qualified by
// role b: equal roles always qualify; otherwise a must have a known rank
// at least as high as b's.
func (r RoleRank) Outranks(a, b string) bool {
	if a == b {
		return true
	}
	ra, aok := r.Rank(a)
	rb, bok := r.Rank(b)
	if !aok || !bok {
		return false
	}
	return ra >= rb
}

// SystemConfig is the resolved, validated configuration for one Solve run
// (spec §3/§6). It is built once via NewSystemConfig and is immutable
// thereafter; the engine never reads environment variables, files, or
// sockets to populate it (component H's CLI layer does that translation
// before calling in).
type SystemConfig struct {
	Grid *Grid

	// IdealLunchStartMinutes / IdealLunchEndForStartMinutes bound the
	// window within which a staff's 30-minute lunch block may *begin*
	// (spec §6's ideal_lunch_start / ideal_lunch_end_for_start) — not the
	// window the whole block must fit inside.
	IdealLunchStartMinutes        int
	IdealLunchEndForStartMinutes  int
	LunchLengthSlots              int

	RoleRanks RoleRank

	ABAMinDurationMinutes int
	ABAMaxDurationMinutes int

	RNGSeed int64

	MaxRestarts        int
	MaxWallClockMillis int64
	NoImprovementLimit int
}

// SystemConfigParams are the raw, caller-supplied values NewSystemConfig
// validates and resolves. Zero-valued wall-clock, no-improvement, lunch
// length and ABA duration fields take the package defaults below; a zero
// MaxRestarts means "no override" and RNGSeed is used as given.
type SystemConfigParams struct {
	OpStart, OpEnd                             string
	IdealLunchStart, IdealLunchEndForStart      string
	LunchLengthMinutes                          int
	RoleRanks                                   map[string]int
	DefaultRoleRank                             int

	ABAMinDurationMinutes int
	ABAMaxDurationMinutes int

	RNGSeed            int64
	MaxRestarts        int
	MaxWallClockMillis int64
	NoImprovementLimit int
}

// Package defaults applied when SystemConfigParams leaves a driver-bound
// field at its zero value (SPEC_FULL driver overrides).
//
// DefaultMaxRestarts is NOT applied as a blanket default for MaxRestarts:
// the driver's restart budget is problem-size scaled (application.
// iterationCap, spec §4.7) and a flat fallback here would silently
// override that scaling for every roster smaller than the largest band.
// It exists only as the UI-facing default shown for ConfigSchema's
// max_restarts property, matching the band a maximal-size roster gets.
const (
	DefaultMaxRestarts           = 200
	DefaultMaxWallClockMillis    = 8_000
	DefaultNoImprovementLimit    = 150
	DefaultABAMinDurationMinutes = 60
	DefaultABAMaxDurationMinutes = 180
)

// NewSystemConfig validates params and builds a SystemConfig. Returns
// ErrInvalidOperatingHours / ErrInvalidLunchWindow for malformed bounds;
// these are the only errors this constructor returns; any role name in
// RoleRanks is accepted as-is and ranked by its configured value, not
// checked against a known role list (the config-resolver's "clamp and
// continue" posture).
func NewSystemConfig(p SystemConfigParams) (*SystemConfig, error) {
	grid, err := NewGrid(p.OpStart, p.OpEnd)
	if err != nil {
		return nil, err
	}

	lunchStart, err := ParseClockTime(p.IdealLunchStart)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLunchWindow, err)
	}
	lunchEndForStart, err := ParseClockTime(p.IdealLunchEndForStart)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLunchWindow, err)
	}
	if lunchEndForStart < lunchStart || lunchStart < grid.OpStartMinutes() || lunchEndForStart+30 > grid.OpEndMinutes() {
		return nil, fmt.Errorf("%w: ideal lunch window must lie within operating hours", ErrInvalidLunchWindow)
	}

	lunchLen := p.LunchLengthMinutes
	if lunchLen <= 0 {
		lunchLen = 30
	}
	lunchLenSlots := lunchLen / SlotMinutes
	if lunchLenSlots <= 0 {
		lunchLenSlots = 2
	}

	abaMin := p.ABAMinDurationMinutes
	if abaMin <= 0 {
		abaMin = DefaultABAMinDurationMinutes
	}
	abaMax := p.ABAMaxDurationMinutes
	if abaMax <= 0 || abaMax < abaMin {
		abaMax = DefaultABAMaxDurationMinutes
	}

	// MaxRestarts has no flat default: zero (or negative) means "let the
	// driver's problem-size-scaled iterationCap decide" (spec §4.7). Only
	// an explicit positive value overrides that scaling.
	maxRestarts := p.MaxRestarts
	if maxRestarts < 0 {
		maxRestarts = 0
	}
	maxWall := p.MaxWallClockMillis
	if maxWall <= 0 {
		maxWall = DefaultMaxWallClockMillis
	}
	noImprove := p.NoImprovementLimit
	if noImprove <= 0 {
		noImprove = DefaultNoImprovementLimit
	}

	return &SystemConfig{
		Grid:                         grid,
		IdealLunchStartMinutes:       lunchStart,
		IdealLunchEndForStartMinutes: lunchEndForStart,
		LunchLengthSlots:             lunchLenSlots,
		RoleRanks:                    NewRoleRank(p.RoleRanks, p.DefaultRoleRank),
		ABAMinDurationMinutes:        abaMin,
		ABAMaxDurationMinutes:        abaMax,
		RNGSeed:                      p.RNGSeed,
		MaxRestarts:                  maxRestarts,
		MaxWallClockMillis:           maxWall,
		NoImprovementLimit:           noImprove,
	}, nil
}

// LunchEarliestStartSlot returns the first slot at which a lunch block may
// begin.
func (c *SystemConfig) LunchEarliestStartSlot() int {
	return c.Grid.SlotOfMinutes(c.IdealLunchStartMinutes)
}

// LunchLatestStartSlot returns the last slot at which a lunch block may
// begin.
func (c *SystemConfig) LunchLatestStartSlot() int {
	return c.Grid.SlotOfMinutes(c.IdealLunchEndForStartMinutes)
}
