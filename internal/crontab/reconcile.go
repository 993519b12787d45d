// Package crontab owns the managed block of the user's crontab: locating
// the anchor marker, stripping previously inserted entries, and appending
// fresh ones for today's meetings.
package crontab

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	appLog "meetcron/internal/log"
	"meetcron/internal/model"
	"meetcron/internal/timeutil"
)

// specParser validates the five-field specs this package emits. Same field
// set the system crontab uses.
var specParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Reconciler rewrites the managed block of a crontab. It never touches
// lines above the anchor.
type Reconciler struct {
	// Anchor is the sentinel line opening the managed block.
	Anchor string
	// OffsetMinutes is subtracted from each meeting start to get the
	// trigger time.
	OffsetMinutes int
	// LaunchCommand is the meeting-client invocation with "%s" standing in
	// for the join link. PauseCommand, if set, runs first.
	LaunchCommand string
	PauseCommand  string
}

// RetainedPrefix returns the table lines preceding the first anchor line and
// whether an anchor was found. The anchor itself and everything after it are
// the managed block and are dropped. Only one contiguous block is supported;
// a table with several anchors collapses to one on the next append.
// Trailing blank lines are trimmed so repeated reconciles do not accrete
// whitespace.
func RetainedPrefix(table, anchor string) ([]string, bool) {
	found := false

	var prefix []string
	for _, line := range strings.Split(table, "\n") {
		if strings.TrimSpace(line) == anchor {
			found = true
			break
		}
		prefix = append(prefix, line)
	}

	for len(prefix) > 0 && strings.TrimSpace(prefix[len(prefix)-1]) == "" {
		prefix = prefix[:len(prefix)-1]
	}

	return prefix, found
}

// Reconcile strips the previous managed block from table and, when meetings
// is non-empty, appends a fresh block for them. Meetings whose trigger time
// is not strictly in the future are silently dropped. Returns the rebuilt
// table and the number of jobs inserted.
//
// Reconcile is idempotent over the unmanaged prefix: the same meetings and
// the same now produce byte-identical output. The already-passed filter is
// deliberately relative to now.
func (r *Reconciler) Reconcile(table string, meetings []model.Meeting, now time.Time) (string, int) {
	prefix, _ := RetainedPrefix(table, r.Anchor)

	if len(meetings) == 0 {
		return render(prefix), 0
	}

	lines := append([]string{}, prefix...)
	lines = append(lines, r.Anchor)

	inserted := 0
	for _, m := range meetings {
		job, ok := r.buildJob(m, now)
		if !ok {
			continue
		}
		lines = append(lines, "# "+job.Comment, formatJobLine(job))
		inserted++
	}

	return render(lines), inserted
}

// buildJob turns one meeting into a ScheduledJob, or reports false when the
// meeting cannot or should not be scheduled.
func (r *Reconciler) buildJob(m model.Meeting, now time.Time) (model.ScheduledJob, bool) {
	if !m.Schedulable() {
		return model.ScheduledJob{}, false
	}

	hour, minute := timeutil.ApplyOffsetMinutes(m.StartHour, m.StartMinute, r.OffsetMinutes)
	if !timeutil.IsStrictlyFuture(now.Hour(), now.Minute(), hour, minute) {
		appLog.Debug("meeting already passed, not scheduling",
			"title", m.Title, "trigger", fmt.Sprintf("%02d:%02d", hour, minute))
		return model.ScheduledJob{}, false
	}

	job := model.ScheduledJob{
		TriggerHour:        hour,
		TriggerMinute:      minute,
		Weekday:            int(m.Date.Weekday()),
		Command:            r.command(m.JoinLink),
		Comment:            fmt.Sprintf("meetcron: %s at %02d:%02d", m.Title, m.StartHour, m.StartMinute),
		SourceMeetingTitle: m.Title,
	}

	if err := validateSpec(job); err != nil {
		appLog.Error("generated cron spec is invalid, dropping job", err, "title", m.Title)
		return model.ScheduledJob{}, false
	}

	return job, true
}

func (r *Reconciler) command(link string) string {
	launch := strings.ReplaceAll(r.LaunchCommand, "%s", link)
	if r.PauseCommand == "" {
		return launch
	}
	return r.PauseCommand + " && " + launch
}

func formatJobLine(job model.ScheduledJob) string {
	return fmt.Sprintf("%d %d * * %d %s",
		job.TriggerMinute, job.TriggerHour, job.Weekday, job.Command)
}

// validateSpec runs the job's five-field schedule through the standard cron
// parser before it is allowed into the table.
func validateSpec(job model.ScheduledJob) error {
	spec := fmt.Sprintf("%d %d * * %d", job.TriggerMinute, job.TriggerHour, job.Weekday)
	_, err := specParser.Parse(spec)
	return err
}

// render joins lines back into table text. A non-empty table always ends
// with a newline, the form crontab(1) expects.
func render(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
