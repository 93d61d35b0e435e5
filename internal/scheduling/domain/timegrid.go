package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SlotMinutes is the width of one scheduling cell.
const SlotMinutes = 15

// ParseClockTime parses an "HH:MM" string into minutes since midnight.
func ParseClockTime(hhmm string) (int, error) {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("parse clock time %q: want HH:MM", hhmm)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("parse clock time %q: %w", hhmm, err)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("parse clock time %q: %w", hhmm, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("parse clock time %q: out of range", hhmm)
	}
	return h*60 + m, nil
}

// FormatClockTime renders minutes-since-midnight as "HH:MM".
func FormatClockTime(minutes int) string {
	h := minutes / 60
	m := minutes % 60
	return fmt.Sprintf("%02d:%02d", h, m)
}

// Grid converts between clock time, minutes, and slot index for one
// operating day. It is constructed once per SystemConfig and is immutable.
type Grid struct {
	opStartMinutes int
	opEndMinutes   int
	numSlots       int
}

// NewGrid builds a Grid from operating-hours bounds expressed in "HH:MM".
// Returns ErrInvalidOperatingHours if the bounds invert or don't land on
// the 15-minute grid.
func NewGrid(opStart, opEnd string) (*Grid, error) {
	start, err := ParseClockTime(opStart)
	if err != nil {
		return nil, err
	}
	end, err := ParseClockTime(opEnd)
	if err != nil {
		return nil, err
	}
	if end <= start {
		return nil, fmt.Errorf("%w: op_end %q must be after op_start %q", ErrInvalidOperatingHours, opEnd, opStart)
	}
	if (end-start)%SlotMinutes != 0 {
		return nil, fmt.Errorf("%w: operating window must be a multiple of %d minutes", ErrInvalidOperatingHours, SlotMinutes)
	}
	return &Grid{
		opStartMinutes: start,
		opEndMinutes:   end,
		numSlots:       (end - start) / SlotMinutes,
	}, nil
}

// NumSlots returns NUM_SLOTS for the day.
func (g *Grid) NumSlots() int { return g.numSlots }

// OpStartMinutes returns operating-hours start, in minutes since midnight.
func (g *Grid) OpStartMinutes() int { return g.opStartMinutes }

// OpEndMinutes returns operating-hours end, in minutes since midnight.
func (g *Grid) OpEndMinutes() int { return g.opEndMinutes }

// SlotOf converts an "HH:MM" clock time to a slot index. Times outside
// operating hours produce an out-of-range index; callers validate bounds
// at entry points (see Validate*).
func (g *Grid) SlotOf(hhmm string) (int, error) {
	m, err := ParseClockTime(hhmm)
	if err != nil {
		return 0, err
	}
	return g.SlotOfMinutes(m), nil
}

// SlotOfMinutes converts minutes-since-midnight to a slot index.
func (g *Grid) SlotOfMinutes(minutes int) int {
	return (minutes - g.opStartMinutes) / SlotMinutes
}

// MinutesOfSlot converts a slot index back to minutes-since-midnight.
func (g *Grid) MinutesOfSlot(slot int) int {
	return g.opStartMinutes + slot*SlotMinutes
}

// ClockOfSlot renders a slot index as "HH:MM".
func (g *Grid) ClockOfSlot(slot int) string {
	return FormatClockTime(g.MinutesOfSlot(slot))
}

// InBounds reports whether the half-open slot range [start, start+length)
// lies entirely within [0, NumSlots).
func (g *Grid) InBounds(start, length int) bool {
	return start >= 0 && length > 0 && start+length <= g.numSlots
}

// SessionsOverlap reports whether two half-open slot intervals intersect.
func SessionsOverlap(aStart, aLen, bStart, bLen int) bool {
	aEnd := aStart + aLen
	bEnd := bStart + bLen
	return aStart < bEnd && bStart < aEnd
}

// AbutsOrOverlaps reports whether two half-open slot intervals share an
// endpoint (back-to-back) or overlap. Used by the no-BTB rule (§4.4 ABA_BTB).
func AbutsOrOverlaps(aStart, aLen, bStart, bLen int) bool {
	aEnd := aStart + aLen
	bEnd := bStart + bLen
	if SessionsOverlap(aStart, aLen, bStart, bLen) {
		return true
	}
	return aEnd == bStart || bEnd == aStart
}

// DateInCalloutRange reports whether date falls within [start, end]
// inclusive on both ends, comparing by calendar day only.
func DateInCalloutRange(date, start, end time.Time) bool {
	d := truncateToDay(date)
	s := truncateToDay(start)
	e := truncateToDay(end)
	return !d.Before(s) && !d.After(e)
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
