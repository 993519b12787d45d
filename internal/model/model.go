package model

import "time"

// Meeting is one schedulable entry parsed from a single agenda record.
// It is constructed once per parse and never mutated afterwards.
type Meeting struct {
	Title string

	// StartHour / StartMinute are the wall-clock start time of the meeting
	// in the user's local timezone. Meaningless when AllDay is true.
	StartHour   int
	StartMinute int

	// Date is the calendar day the meeting occurs on.
	Date time.Time

	// JoinLink is the meeting-platform URL, if the agenda record carried
	// one. A meeting without a join link is never scheduled.
	JoinLink string

	AllDay bool
}

// Schedulable reports whether this meeting can produce a crontab entry.
func (m Meeting) Schedulable() bool {
	return m.JoinLink != "" && !m.AllDay
}

// AgendaMode classifies a whole day's agenda. Exactly one mode is active
// per run; anything other than ModeNormal suppresses scheduling.
type AgendaMode int

const (
	ModeNormal AgendaMode = iota
	ModeHoliday
	ModeOutOfOffice
	ModeEmpty
)

func (m AgendaMode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeHoliday:
		return "holiday"
	case ModeOutOfOffice:
		return "out-of-office"
	case ModeEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// ScheduledJob is a single crontab entry derived from one meeting. It is
// owned by the reconciler until it has been formatted into the table.
type ScheduledJob struct {
	TriggerHour   int
	TriggerMinute int

	// Weekday is the cron day-of-week field value (0 = Sunday) for the
	// meeting's date. Each run fully replaces prior entries, so jobs are
	// scoped to a single weekday rather than recurring.
	Weekday int

	Command string
	Comment string

	SourceMeetingTitle string
}

// RunReport summarizes one coordinator invocation for the run log and the
// status API.
type RunReport struct {
	Mode       string    `json:"mode"`
	Reason     string    `json:"reason"`
	Meetings   int       `json:"meetings"`
	Inserted   int       `json:"inserted"`
	Skipped    int       `json:"skipped"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}
