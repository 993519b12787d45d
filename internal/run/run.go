// Package run drives one meetcron invocation end to end: probe the external
// tools, read the crontab, fetch and classify the agenda, reconcile the
// managed block, and record what happened.
package run

import (
	"context"
	"errors"
	"fmt"
	"time"

	"meetcron/internal/agenda"
	"meetcron/internal/crontab"
	appLog "meetcron/internal/log"
	"meetcron/internal/model"
)

// ErrMissingDependency marks a required external tool that is unavailable.
// It is fatal: the run halts before touching any state.
var ErrMissingDependency = errors.New("missing required dependency")

// CalendarSource provides the day's agenda. The production implementation
// shells out to gcalcli; tests use an in-memory fake.
type CalendarSource interface {
	Probe() error
	FetchAgenda(ctx context.Context, date time.Time) (string, error)
}

// ScheduleStore persists the job table. The production implementation wraps
// crontab(1).
type ScheduleStore interface {
	Probe() error
	Read(ctx context.Context) (string, error)
	Write(ctx context.Context, text string) error
}

// RunLog is the run-history file.
type RunLog interface {
	Append(msg string) error
	ReadAll() ([]string, error)
	TruncateToLast(n int) error
}

// BackupSink stores before/after snapshots of the table, dropping pairs
// that did not change.
type BackupSink interface {
	Store(periodKey, before, after string) error
}

// Coordinator wires one run. There is no internal concurrency and no
// retry: every external call happens exactly once, and a failure after the
// table has been committed is not rolled back.
type Coordinator struct {
	Calendar CalendarSource
	Store    ScheduleStore
	Log      RunLog
	Backup   BackupSink

	Parser     *agenda.Parser
	Classifier *agenda.Classifier
	Reconciler *crontab.Reconciler

	EnableBackup bool
	LogLimit     int

	// Clock returns now; nil means time.Now. Injected for tests.
	Clock func() time.Time
}

func (c *Coordinator) now() time.Time {
	if c.Clock != nil {
		return c.Clock()
	}
	return time.Now()
}

// Run executes a single reconciliation pass and returns its report.
func (c *Coordinator) Run(ctx context.Context) (model.RunReport, error) {
	started := c.now()
	report := model.RunReport{StartedAt: started}

	if err := c.Calendar.Probe(); err != nil {
		appLog.Error("calendar tool unavailable, aborting run", err)
		return report, fmt.Errorf("%w: %v", ErrMissingDependency, err)
	}
	if err := c.Store.Probe(); err != nil {
		appLog.Error("schedule tool unavailable, aborting run", err)
		return report, fmt.Errorf("%w: %v", ErrMissingDependency, err)
	}

	before, err := c.Store.Read(ctx)
	if err != nil {
		return report, fmt.Errorf("reading schedule table: %w", err)
	}

	raw, err := c.Calendar.FetchAgenda(ctx, started)
	if err != nil {
		return report, fmt.Errorf("fetching agenda: %w", err)
	}

	parsed := c.Parser.Parse(raw, started)
	report.Meetings = len(parsed.Meetings)
	report.Skipped = len(parsed.Skipped)

	mode, reason := c.Classifier.Classify(ctx, parsed.Meetings, raw, started)
	report.Mode = mode.String()
	report.Reason = reason

	// Any non-normal mode strips the managed block and inserts nothing.
	meetings := parsed.Meetings
	if mode != model.ModeNormal {
		meetings = nil
	}

	after, inserted := c.Reconciler.Reconcile(before, meetings, started)
	report.Inserted = inserted

	if after != before {
		if err := c.Store.Write(ctx, after); err != nil {
			return report, fmt.Errorf("writing schedule table: %w", err)
		}
	} else {
		appLog.Debug("schedule table unchanged, skipping write")
	}

	summary := fmt.Sprintf("mode=%s inserted=%d meetings=%d skipped=%d reason=%q",
		report.Mode, report.Inserted, report.Meetings, report.Skipped, report.Reason)
	if err := c.Log.Append(summary); err != nil {
		return report, fmt.Errorf("appending run log: %w", err)
	}
	if c.LogLimit > 0 {
		if err := c.Log.TruncateToLast(c.LogLimit); err != nil {
			return report, fmt.Errorf("trimming run log: %w", err)
		}
	}

	if c.EnableBackup && c.Backup != nil {
		periodKey := started.Format("2006-01-02_15")
		if err := c.Backup.Store(periodKey, before, after); err != nil {
			return report, fmt.Errorf("storing backup: %w", err)
		}
	}

	report.FinishedAt = c.now()
	appLog.Info("run finished",
		"mode", report.Mode,
		"inserted", report.Inserted,
		"meetings", report.Meetings,
		"skipped", report.Skipped,
	)

	return report, nil
}
