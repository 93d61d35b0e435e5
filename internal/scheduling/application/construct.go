package application

import (
	"math/rand"
	"sort"
	"time"

	"github.com/clinicflow/scheduler/internal/scheduling/domain"
)

// sortByKey is a small generic wrapper around sort.Slice so each candidate
// ranking below can define its own comparator struct without repeating the
// sort.Slice boilerplate.
func sortByKey[T any](s []T, less func(a, b T) bool) {
	sort.Slice(s, func(i, j int) bool { return less(s[i], s[j]) })
}

// ConstructInput bundles everything one construction pass needs (component
// E, spec §4.5). A single call is deterministic given Rng and these
// inputs; the multi-restart driver (component G) passes the same seeded
// Rng to every attempt, so each attempt draws from a later point of one
// stream.
type ConstructInput struct {
	Date      time.Time
	Clients   []domain.Client
	Staff     []domain.Staff
	Insurance domain.InsuranceTable
	Callouts  []domain.Callout
	Config    *domain.SystemConfig

	// InitialEntries seeds the construction (step 1) — typically the
	// caller-supplied initial schedule's day-D entries. Advisory only:
	// any entry that fails placement is silently dropped.
	InitialEntries []domain.ScheduleEntry

	// OtherDayEntries are the caller-supplied initial schedule's entries
	// for days other than Date, within the same week. They are never
	// placed on day D, but their billable minutes count against the
	// client's weekly insurance cap before any of day D's ABA is placed
	// (spec §6).
	OtherDayEntries []domain.ScheduleEntry

	Rng *rand.Rand
}

type constructor struct {
	date      time.Time
	clients   []domain.Client
	staff     []domain.Staff
	insurance domain.InsuranceTable
	callouts  []domain.Callout
	cfg       *domain.SystemConfig
	rng       *rand.Rand

	tracker *domain.Tracker

	staffByID  map[string]domain.Staff
	clientByID map[string]domain.Client

	entries      []domain.ScheduleEntry
	sessionCount map[string]int // staffID -> number of ABA entries placed this run
	lunchBySlot  map[int]int    // slot -> number of staff whose lunch covers that slot
	hasLunch     map[string]bool
}

// Construct runs one deterministic pass of the greedy constructive
// scheduler and returns its candidate day-D schedule.
func Construct(in ConstructInput) []domain.ScheduleEntry {
	c := &constructor{
		date:         truncateDate(in.Date),
		clients:      in.Clients,
		staff:        in.Staff,
		insurance:    in.Insurance,
		callouts:     in.Callouts,
		cfg:          in.Config,
		rng:          in.Rng,
		tracker:      domain.NewTracker(in.Config.Grid),
		staffByID:    indexStaff(in.Staff),
		clientByID:   indexClients(in.Clients),
		sessionCount: make(map[string]int),
		lunchBySlot:  make(map[int]int),
		hasLunch:     make(map[string]bool),
	}

	c.seedWeeklyMinutes(in.OtherDayEntries)
	c.seed(in.InitialEntries)
	c.seedCallouts()
	c.placeLunches()
	c.placeAlliedHealth()
	c.placeABA()
	c.cleanup()

	return c.entries
}

func truncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func indexStaff(staff []domain.Staff) map[string]domain.Staff {
	m := make(map[string]domain.Staff, len(staff))
	for _, s := range staff {
		m[s.ID] = s
	}
	return m
}

func indexClients(clients []domain.Client) map[string]domain.Client {
	m := make(map[string]domain.Client, len(clients))
	for _, c := range clients {
		m[c.ID] = c
	}
	return m
}

// ---- Step 0: fold prior days' billable minutes into this week's running total ----

func (c *constructor) seedWeeklyMinutes(otherDays []domain.ScheduleEntry) {
	for _, e := range otherDays {
		if e.ClientID == "" || !e.IsBillable() {
			continue
		}
		c.tracker.SeedWeeklyMinutes(e.ClientID, e.DurationMinutes())
	}
}

// ---- Step 1: seed from a prior (advisory) schedule ----

func (c *constructor) seed(initial []domain.ScheduleEntry) {
	for _, e := range initial {
		if !e.SameDay(domain.ScheduleEntry{Day: c.date}) {
			continue
		}
		if !c.canPlace(e.ClientID, e.StaffID, e.SessionType, e.StartSlot, e.Length) {
			continue
		}
		c.place(e)
	}
}

func (c *constructor) seedCallouts() {
	for _, callout := range c.callouts {
		if !callout.AppliesOn(c.date) {
			continue
		}
		start, length, ok := callout.SlotRange(c.cfg.Grid)
		if !ok {
			continue
		}
		switch callout.EntityType {
		case domain.CalloutEntityStaff:
			c.tracker.Place(domain.ScheduleEntry{StaffID: callout.EntityID, Day: c.date, StartSlot: start, Length: length})
		case domain.CalloutEntityClient:
			c.tracker.Place(domain.ScheduleEntry{ClientID: callout.EntityID, Day: c.date, StartSlot: start, Length: length})
		}
	}
}

// canPlace re-derives the checks §4.5 step 1 requires an advisory entry to
// pass: staff/client free, qualification, duration bounds, and no BTB.
func (c *constructor) canPlace(clientID, staffID string, sessionType domain.SessionType, start, length int) bool {
	if !c.cfg.Grid.InBounds(start, length) {
		return false
	}
	if staffID != "" && c.tracker.StaffBusy(staffID, c.date, start, length) {
		return false
	}
	if clientID != "" && c.tracker.ClientBusy(clientID, c.date, start, length) {
		return false
	}
	if sessionType != domain.SessionTypeABA || staffID == "" || clientID == "" {
		return true
	}

	staff, ok := c.staffByID[staffID]
	if !ok {
		return false
	}
	client, ok := c.clientByID[clientID]
	if !ok {
		return false
	}
	if !domain.StaffQualifies(client.InsuranceRequirements, staff.Role, staff.Qualifications, c.cfg.RoleRanks, c.insurance) {
		return false
	}

	resolved := c.insurance.Resolve(client.InsuranceRequirements)
	minutes := length * domain.SlotMinutes
	if minutes < resolved.MinSessionMinutes || minutes > resolved.MaxSessionMinutes {
		return false
	}
	if resolved.MaxDistinctStaff > 0 && !c.tracker.HasStaffedClient(clientID, staffID) &&
		c.tracker.DistinctStaffCount(clientID) >= resolved.MaxDistinctStaff {
		return false
	}
	if resolved.MaxWeeklyMinutes > 0 && c.tracker.ClientWeeklyBillableMinutes(clientID)+minutes > resolved.MaxWeeklyMinutes {
		return false
	}
	if c.wouldAbut(staffID, clientID, start, length) {
		return false
	}
	return true
}

func (c *constructor) wouldAbut(staffID, clientID string, start, length int) bool {
	for _, e := range c.entries {
		if e.StaffID != staffID || e.ClientID != clientID || e.SessionType != domain.SessionTypeABA {
			continue
		}
		if !e.SameDay(domain.ScheduleEntry{Day: c.date}) {
			continue
		}
		if domain.AbutsOrOverlaps(start, length, e.StartSlot, e.Length) {
			return true
		}
	}
	return false
}

func (c *constructor) place(e domain.ScheduleEntry) {
	e.Day = c.date
	c.tracker.Place(e)
	c.entries = append(c.entries, e)
	if e.SessionType == domain.SessionTypeABA && e.StaffID != "" {
		c.sessionCount[e.StaffID]++
	}
	if e.SessionType == domain.SessionTypeIndirectTime && e.StaffID != "" {
		c.hasLunch[e.StaffID] = true
	}
}

// ---- Step 2: lunches ----

func (c *constructor) placeLunches() {
	staffOrder := c.shuffledStaff()
	maxConcurrentLunches := len(c.staff) - len(c.clients)
	if maxConcurrentLunches < 1 {
		maxConcurrentLunches = 1
	}

	for _, s := range staffOrder {
		if c.hasLunch[s.ID] {
			continue
		}

		lunchLen := c.cfg.LunchLengthSlots
		earliest := c.cfg.LunchEarliestStartSlot()
		latest := c.cfg.LunchLatestStartSlot()

		type candidate struct {
			start int
			key   float64
		}
		candidates := make([]candidate, 0, latest-earliest+1)
		for start := earliest; start <= latest; start++ {
			load := 0
			for slot := start; slot < start+lunchLen; slot++ {
				load += c.lunchBySlot[slot]
			}
			candidates = append(candidates, candidate{start: start, key: float64(load) + (c.rng.Float64() - 0.5)})
		}
		sortByKey(candidates, func(a, b candidate) bool { return a.key < b.key })

		for _, cand := range candidates {
			if !c.cfg.Grid.InBounds(cand.start, lunchLen) {
				continue
			}
			if c.tracker.StaffBusy(s.ID, c.date, cand.start, lunchLen) {
				continue
			}
			overLimit := false
			for slot := cand.start; slot < cand.start+lunchLen; slot++ {
				if c.lunchBySlot[slot] >= maxConcurrentLunches {
					overLimit = true
					break
				}
			}
			if overLimit {
				continue
			}

			c.place(domain.NewScheduleEntry("", s.ID, c.date, cand.start, lunchLen, domain.SessionTypeIndirectTime))
			for slot := cand.start; slot < cand.start+lunchLen; slot++ {
				c.lunchBySlot[slot]++
			}
			break
		}
	}
}

// ---- Step 3: allied health ----

func (c *constructor) placeAlliedHealth() {
	clientOrder := c.shuffledClients()

	for _, client := range clientOrder {
		resolved := c.insurance.Resolve(client.InsuranceRequirements)

		for _, need := range client.AlliedHealthNeeds {
			if !need.AppliesOn(c.date) {
				continue
			}
			startMin, err := domain.ParseClockTime(need.StartTime)
			if err != nil {
				continue
			}
			endMin, err := domain.ParseClockTime(need.EndTime)
			if err != nil {
				continue
			}
			start := c.cfg.Grid.SlotOfMinutes(startMin)
			length := (endMin - startMin) / domain.SlotMinutes
			if length <= 0 || !c.cfg.Grid.InBounds(start, length) {
				continue
			}

			sessionType, ok := domain.AlliedHealthSessionType(need.ServiceType)
			if !ok {
				continue
			}

			if c.tracker.ClientBusy(client.ID, c.date, start, length) {
				continue
			}

			minutes := length * domain.SlotMinutes
			if resolved.MaxSessionMinutes > 0 && minutes > resolved.MaxSessionMinutes {
				continue
			}
			if resolved.MaxWeeklyMinutes > 0 && c.tracker.ClientWeeklyBillableMinutes(client.ID)+minutes > resolved.MaxWeeklyMinutes {
				continue
			}

			staffID := c.pickAlliedHealthStaff(need, start, length)
			c.place(domain.NewScheduleEntry(client.ID, staffID, c.date, start, length, sessionType))
		}
	}
}

func (c *constructor) pickAlliedHealthStaff(need domain.AlliedHealthNeed, start, length int) string {
	service := need.ServiceType

	if need.PreferredProviderID != "" {
		if s, ok := c.staffByID[need.PreferredProviderID]; ok && s.ProvidesAlliedHealth(service) &&
			!c.tracker.StaffBusy(s.ID, c.date, start, length) {
			return s.ID
		}
	}

	candidates := make([]domain.Staff, 0)
	for _, s := range c.staff {
		if s.ID == need.PreferredProviderID {
			continue
		}
		if !s.ProvidesAlliedHealth(service) {
			continue
		}
		if c.tracker.StaffBusy(s.ID, c.date, start, length) {
			continue
		}
		candidates = append(candidates, s)
	}
	if len(candidates) == 0 {
		return ""
	}
	c.rng.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })
	return candidates[0].ID
}

// ---- Step 4: ABA, slot-major ----

func (c *constructor) placeABA() {
	numSlots := c.cfg.Grid.NumSlots()

	for s := 0; s < numSlots; s++ {
		clientOrder := c.rankClientsForSlot(s)

		for _, client := range clientOrder {
			if c.tracker.ClientBusy(client.ID, c.date, s, 1) {
				continue
			}

			resolved := c.insurance.Resolve(client.InsuranceRequirements)
			candidates := c.rankStaffForSlot(client, s)

			placed := false
			for _, staff := range candidates {
				if resolved.MaxDistinctStaff > 0 && !c.tracker.HasStaffedClient(client.ID, staff.ID) &&
					c.tracker.DistinctStaffCount(client.ID) >= resolved.MaxDistinctStaff {
					continue
				}

				lenMax := resolved.MaxSessionMinutes / domain.SlotMinutes
				if resolved.MaxWeeklyMinutes > 0 {
					remaining := (resolved.MaxWeeklyMinutes - c.tracker.ClientWeeklyBillableMinutes(client.ID)) / domain.SlotMinutes
					if remaining < lenMax {
						lenMax = remaining
					}
				}
				lenMin := (resolved.MinSessionMinutes + domain.SlotMinutes - 1) / domain.SlotMinutes
				if lenMin < 1 {
					lenMin = 1
				}
				if lenMax > numSlots-s {
					lenMax = numSlots - s
				}

				for length := lenMax; length >= lenMin; length-- {
					if length <= 0 {
						break
					}
					if !c.cfg.Grid.InBounds(s, length) {
						continue
					}
					if c.tracker.ClientBusy(client.ID, c.date, s, length) || c.tracker.StaffBusy(staff.ID, c.date, s, length) {
						continue
					}
					if c.leavesUnfillableGap(client.ID, s, length, lenMin) {
						continue
					}
					if c.wouldAbut(staff.ID, client.ID, s, length) {
						continue
					}

					c.place(domain.NewScheduleEntry(client.ID, staff.ID, c.date, s, length, domain.SessionTypeABA))
					placed = true
					break
				}
				if placed {
					break
				}
			}
		}
	}
}

// leavesUnfillableGap rejects a candidate length if it would strand the
// client's next free run below the minimum session length — a heuristic
// against producing fragments too small for any future booking.
func (c *constructor) leavesUnfillableGap(clientID string, start, length, lenMin int) bool {
	end := start + length
	numSlots := c.cfg.Grid.NumSlots()
	gap := 0
	for slot := end; slot < numSlots; slot++ {
		if c.tracker.ClientBusy(clientID, c.date, slot, 1) {
			break
		}
		gap++
	}
	return gap > 0 && gap < lenMin
}

func (c *constructor) rankClientsForSlot(slot int) []domain.Client {
	type scored struct {
		client    domain.Client
		sameTeam  bool
		tiebreak  float64
	}
	scoredClients := make([]scored, 0, len(c.clients))
	for _, client := range c.clients {
		sameTeam := c.hasFreeQualifiedSameTeamStaff(client, slot)
		scoredClients = append(scoredClients, scored{client: client, sameTeam: sameTeam, tiebreak: c.rng.Float64()})
	}
	sortByKey(scoredClients, func(a, b scored) bool {
		if a.sameTeam != b.sameTeam {
			return a.sameTeam
		}
		return a.tiebreak < b.tiebreak
	})
	out := make([]domain.Client, len(scoredClients))
	for i, sc := range scoredClients {
		out[i] = sc.client
	}
	return out
}

func (c *constructor) hasFreeQualifiedSameTeamStaff(client domain.Client, slot int) bool {
	for _, staff := range c.staff {
		if staff.TeamID == "" || staff.TeamID != client.TeamID {
			continue
		}
		if staff.Role == "OT" || staff.Role == "SLP" {
			continue
		}
		if c.tracker.StaffBusy(staff.ID, c.date, slot, 1) {
			continue
		}
		if !domain.StaffQualifies(client.InsuranceRequirements, staff.Role, staff.Qualifications, c.cfg.RoleRanks, c.insurance) {
			continue
		}
		return true
	}
	return false
}

func (c *constructor) rankStaffForSlot(client domain.Client, slot int) []domain.Staff {
	type scored struct {
		staff    domain.Staff
		sameTeam bool
		k1       float64
		k2       float64
		k3       float64
		tiebreak float64
	}

	candidates := make([]scored, 0, len(c.staff))
	for _, staff := range c.staff {
		if staff.Role == "OT" || staff.Role == "SLP" {
			continue
		}
		if c.tracker.StaffBusy(staff.ID, c.date, slot, 1) {
			continue
		}
		if !domain.StaffQualifies(client.InsuranceRequirements, staff.Role, staff.Qualifications, c.cfg.RoleRanks, c.insurance) {
			continue
		}

		sameTeam := staff.TeamID != "" && staff.TeamID == client.TeamID
		alreadyAssigned := c.tracker.HasStaffedClient(client.ID, staff.ID)
		rank, known := c.cfg.RoleRanks.Rank(staff.Role)
		if !known {
			rank = 0
		}
		sessions := float64(c.sessionCount[staff.ID])

		var k1, k2, k3 float64
		if sameTeam {
			k1 = boolKey(alreadyAssigned)
			k2 = -float64(rank) // lower rank first
			k3 = sessions
		} else {
			k1 = boolKey(staff.Role == "CF")
			k2 = boolKey(alreadyAssigned)
			k3 = -float64(rank) // higher rank first among off-team generalists
		}

		candidates = append(candidates, scored{
			staff: staff, sameTeam: sameTeam,
			k1: k1, k2: k2, k3: k3,
			tiebreak: c.rng.Float64(),
		})
	}

	sortByKey(candidates, func(a, b scored) bool {
		if a.sameTeam != b.sameTeam {
			return a.sameTeam
		}
		if a.k1 != b.k1 {
			return a.k1 > b.k1
		}
		if a.k2 != b.k2 {
			return a.k2 > b.k2
		}
		if a.k3 != b.k3 {
			return a.k3 < b.k3
		}
		return a.tiebreak < b.tiebreak
	})

	out := make([]domain.Staff, len(candidates))
	for i, sc := range candidates {
		out[i] = sc.staff
	}
	return out
}

func boolKey(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// ---- Step 5: cleanup ----

func (c *constructor) cleanup() {
	billable := make(map[string]bool)
	for _, e := range c.entries {
		if e.StaffID != "" && e.IsBillable() {
			billable[e.StaffID] = true
		}
	}
	kept := c.entries[:0]
	for _, e := range c.entries {
		if e.SessionType == domain.SessionTypeIndirectTime && !billable[e.StaffID] {
			continue
		}
		kept = append(kept, e)
	}
	c.entries = kept
}

func (c *constructor) shuffledStaff() []domain.Staff {
	out := make([]domain.Staff, len(c.staff))
	copy(out, c.staff)
	c.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

func (c *constructor) shuffledClients() []domain.Client {
	out := make([]domain.Client, len(c.clients))
	copy(out, c.clients)
	c.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
