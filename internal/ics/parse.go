package ics

import (
	"bytes"
	"errors"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "meetcron/internal/log"
)

// Event is the slice of a VEVENT the holiday lookup needs: a name, when it
// occurs, and enough recurrence data to expand it.
type Event struct {
	Summary string

	Start  time.Time
	End    time.Time
	AllDay bool

	// RawRRule is the unexpanded RRULE string, if the event recurs.
	// Holiday feeds typically use yearly rules.
	RawRRule string
	ExDates  []time.Time
}

// Parse parses an ICS payload into Events. Malformed VEVENTs are logged and
// skipped; the rest of the feed still parses.
func Parse(body []byte) ([]Event, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	events := make([]Event, 0)
	for _, ve := range cal.Events() {
		ev, perr := parseVEvent(ve)
		if perr != nil {
			appLog.Debug("holiday vevent skipped", "reason", perr.Error())
			continue
		}
		events = append(events, ev)
	}

	return events, nil
}

func parseVEvent(ve *ical.VEvent) (Event, error) {
	var out Event

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}
	if out.Summary == "" {
		return out, errors.New("missing SUMMARY")
	}

	dtStartProp := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStartProp == nil || dtStartProp.Value == "" {
		return out, errors.New("missing DTSTART")
	}

	// All-day when DTSTART carries VALUE=DATE or has no time part. Holiday
	// feeds are almost exclusively all-day events.
	if params := dtStartProp.ICalParameters; params != nil {
		if vs, ok := params["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
			out.AllDay = true
		}
	}
	if !strings.Contains(dtStartProp.Value, "T") {
		out.AllDay = true
	}

	if out.AllDay {
		// A date-only value names a calendar day, not an instant. Parse it
		// directly so its Y/M/D fields are authoritative and never shifted
		// by a timezone conversion.
		start, err := parseICSTime(strings.SplitN(dtStartProp.Value, "T", 2)[0])
		if err != nil {
			return out, errors.New("invalid DTSTART: " + dtStartProp.Value)
		}
		out.Start = start
		out.End = start
	} else {
		start, err := ve.GetStartAt()
		if err != nil {
			start, err = parseICSTime(dtStartProp.Value)
			if err != nil {
				return out, errors.New("invalid DTSTART: " + dtStartProp.Value)
			}
		}
		out.Start = start

		if end, err := ve.GetEndAt(); err == nil {
			out.End = end
		} else {
			out.End = start
		}
	}

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		out.RawRRule = p.Value
	}

	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if t, err := parseICSTime(part); err == nil {
				out.ExDates = append(out.ExDates, t)
			}
		}
	}

	return out, nil
}

// parseICSTime parses basic ICS DATE / DATE-TIME / UTC forms.
func parseICSTime(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, errors.New("empty time value")
	}

	if strings.HasSuffix(v, "Z") {
		return time.Parse("20060102T150405Z", v)
	}
	if strings.Contains(v, "T") {
		return time.ParseInLocation("20060102T150405", v, time.Local)
	}
	return time.ParseInLocation("20060102", v, time.Local)
}
