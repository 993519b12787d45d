package ics

import (
	"time"

	"github.com/teambition/rrule-go"

	appLog "meetcron/internal/log"
)

// occurrenceCap bounds recurrence expansion around a single day. Anything
// near the cap indicates a degenerate rule.
const occurrenceCap = 100

// OccursOn reports whether ev has an occurrence on the calendar day of date
// (interpreted in loc). All-day events compare calendar dates directly,
// never through a timezone conversion; timed events are converted into loc
// first. Recurring events expand through their RRULE and EXDATEs.
func OccursOn(ev Event, date time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.Local
	}

	y, m, d := date.In(loc).Date()

	matches := func(t time.Time) bool {
		if !ev.AllDay {
			t = t.In(loc)
		}
		ty, tm, td := t.Date()
		return ty == y && tm == m && td == d
	}

	if ev.RawRRule == "" {
		return matches(ev.Start)
	}

	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		appLog.Debug("holiday RRULE unparseable, treating as non-recurring",
			"summary", ev.Summary, "rrule", ev.RawRRule)
		return matches(ev.Start)
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	// Expand a window one day wide on each side of the target so no
	// timezone offset can push the matching occurrence outside it, then
	// test each occurrence by calendar date.
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, loc)
	winStart := dayStart.Add(-24 * time.Hour).In(ev.Start.Location())
	winEnd := dayStart.Add(48 * time.Hour).In(ev.Start.Location())

	occ := set.Between(winStart, winEnd, true)
	if len(occ) > occurrenceCap {
		occ = occ[:occurrenceCap]
	}

	for _, t := range occ {
		if matches(t) {
			return true
		}
	}
	return false
}

// HolidayNameOn returns the summary of the first event occurring on the
// given day, if any.
func HolidayNameOn(events []Event, date time.Time, loc *time.Location) (string, bool) {
	for _, ev := range events {
		if OccursOn(ev, date, loc) {
			return ev.Summary, true
		}
	}
	return "", false
}
