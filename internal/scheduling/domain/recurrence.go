package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// weekdayRRuleTokens maps time.Weekday to the RFC 5545 BYDAY token used to
// build a synthetic RRULE from a plain weekday set.
var weekdayRRuleTokens = map[time.Weekday]string{
	time.Sunday:    "SU",
	time.Monday:    "MO",
	time.Tuesday:   "TU",
	time.Wednesday: "WE",
	time.Thursday:  "TH",
	time.Friday:    "FR",
	time.Saturday:  "SA",
}

// WeeklyRRule builds an RFC 5545 "FREQ=WEEKLY;BYDAY=..." string from a set
// of weekdays. Callers that think in plain weekday sets (rather than
// RRULEs) use this to populate AlliedHealthNeed.SpecificDaysRRule. The
// result is validated by round-tripping it through rrule.StrToRRule before
// being returned.
func WeeklyRRule(weekdays ...time.Weekday) (string, error) {
	if len(weekdays) == 0 {
		return "", fmt.Errorf("recurrence: at least one weekday required")
	}
	tokens := make([]string, 0, len(weekdays))
	for _, wd := range weekdays {
		tok, ok := weekdayRRuleTokens[wd]
		if !ok {
			return "", fmt.Errorf("recurrence: invalid weekday %v", wd)
		}
		tokens = append(tokens, tok)
	}
	rule := fmt.Sprintf("FREQ=WEEKLY;BYDAY=%s", strings.Join(tokens, ","))
	if _, err := rrule.StrToRRule(rule); err != nil {
		return "", fmt.Errorf("recurrence: build weekly rule: %w", err)
	}
	return rule, nil
}

// AppliesOn reports whether an allied-health need's SpecificDaysRRule
// recurs on date. An empty rule string means "every operating day" (the
// need has no day restriction). Malformed rule strings are treated as
// never matching rather than erroring the whole Solve call; recurrence
// parsing is a config-resolver concern (spec §7's clamp-and-continue
// posture), not a hard failure.
func (n AlliedHealthNeed) AppliesOn(date time.Time) bool {
	if n.SpecificDaysRRule == "" {
		return true
	}
	day := truncateToDay(date)

	parsed, err := rrule.StrToRRule(n.SpecificDaysRRule)
	if err != nil {
		return false
	}
	opts := parsed.OrigOptions
	opts.Dtstart = day.Add(-7 * 24 * time.Hour)
	anchored, err := rrule.NewRRule(opts)
	if err != nil {
		return false
	}
	occurrences := anchored.Between(day, day.Add(24*time.Hour), true)
	return len(occurrences) > 0
}
