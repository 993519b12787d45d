package agenda

import (
	"context"
	"strings"
	"time"

	appLog "meetcron/internal/log"
	"meetcron/internal/model"
)

// HolidayLookup resolves the holiday name for a date, if any. A nil lookup
// disables holiday detection entirely.
type HolidayLookup interface {
	EventName(ctx context.Context, date time.Time) (string, bool, error)
}

// Classifier decides the day's AgendaMode.
//
// Check order is a versioned policy choice: the current default checks
// out-of-office before holiday; HolidayFirst restores the older precedence.
// Either way both run before the Empty check, and Normal is the fallthrough.
type Classifier struct {
	Lookup       HolidayLookup
	AllDayMarker string
	HolidayFirst bool
}

// Classify inspects the parsed meetings and the raw agenda text and returns
// the active mode with a human-readable reason. The decision is logged.
func (c *Classifier) Classify(ctx context.Context, meetings []model.Meeting, rawAgenda string, date time.Time) (model.AgendaMode, string) {
	mode, reason := c.classify(ctx, meetings, rawAgenda, date)
	appLog.Info("agenda classified", "mode", mode.String(), "reason", reason, "date", date.Format("2006-01-02"))
	return mode, reason
}

func (c *Classifier) classify(ctx context.Context, meetings []model.Meeting, rawAgenda string, date time.Time) (model.AgendaMode, string) {
	checks := []func(context.Context, string, time.Time) (model.AgendaMode, string, bool){
		c.checkOutOfOffice,
		c.checkHoliday,
	}
	if c.HolidayFirst {
		checks[0], checks[1] = checks[1], checks[0]
	}

	for _, check := range checks {
		if mode, reason, ok := check(ctx, rawAgenda, date); ok {
			return mode, reason
		}
	}

	if strings.TrimSpace(rawAgenda) == "" {
		return model.ModeEmpty, "agenda is empty"
	}

	schedulable := 0
	for _, m := range meetings {
		if m.JoinLink != "" {
			schedulable++
		}
	}
	if schedulable == 0 {
		return model.ModeEmpty, "no meetings carry a join link"
	}

	return model.ModeNormal, "schedulable meetings found"
}

func (c *Classifier) checkOutOfOffice(_ context.Context, rawAgenda string, _ time.Time) (model.AgendaMode, string, bool) {
	lower := strings.ToLower(rawAgenda)
	if strings.Contains(lower, "ooo") || strings.Contains(lower, "out of office") {
		return model.ModeOutOfOffice, "agenda contains an out-of-office marker", true
	}
	return 0, "", false
}

// checkHoliday requires double confirmation: the holiday source must name an
// event for the date, and that name must also appear in the agenda on a
// timed (non-all-day) line. This guards against holiday feeds that list
// every day. An unavailable or failing lookup skips holiday detection.
func (c *Classifier) checkHoliday(ctx context.Context, rawAgenda string, date time.Time) (model.AgendaMode, string, bool) {
	if c.Lookup == nil {
		return 0, "", false
	}

	name, ok, err := c.Lookup.EventName(ctx, date)
	if err != nil {
		appLog.Error("holiday lookup failed, skipping holiday detection", err)
		return 0, "", false
	}
	if !ok || name == "" {
		return 0, "", false
	}

	if !c.confirmedInAgenda(rawAgenda, name) {
		appLog.Debug("holiday not confirmed by agenda", "holiday", name)
		return 0, "", false
	}

	return model.ModeHoliday, "holiday confirmed by agenda: " + name, true
}

// confirmedInAgenda reports whether the agenda carries the holiday name on a
// line whose second field is a timed start rather than the all-day marker.
func (c *Classifier) confirmedInAgenda(rawAgenda, name string) bool {
	lowerName := strings.ToLower(name)

	for _, line := range strings.Split(rawAgenda, "\n") {
		if !strings.Contains(strings.ToLower(line), lowerName) {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			continue
		}
		timeField := strings.TrimSpace(fields[1])
		if timeField == c.AllDayMarker {
			continue
		}
		if hhmmRe.MatchString(timeField) {
			return true
		}
	}

	return false
}
