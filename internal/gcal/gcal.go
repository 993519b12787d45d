// Package gcal wraps the gcalcli binary as the production calendar source.
// It shells out for agenda and calendar-list queries and filters out the
// records the reconciler must never see (header rows, excluded calendars).
package gcal

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	appLog "meetcron/internal/log"
)

// Source runs gcalcli. All methods attempt their command exactly once; a
// transient failure is returned as-is, never retried.
type Source struct {
	// Binary is the gcalcli executable name or path.
	Binary string
	// Exclude lists calendar names whose records are dropped from agendas.
	Exclude []string
}

// Probe verifies the gcalcli binary is available. The coordinator treats a
// failure as a missing hard dependency and aborts the run.
func (s *Source) Probe() error {
	if _, err := exec.LookPath(s.Binary); err != nil {
		return fmt.Errorf("calendar binary %q not found: %w", s.Binary, err)
	}
	return nil
}

// FetchAgenda returns the day's agenda as tab-separated records, with
// header rows and excluded-calendar rows already filtered out.
func (s *Source) FetchAgenda(ctx context.Context, date time.Time) (string, error) {
	out, err := s.run(ctx,
		"--nocolor",
		"agenda",
		date.Format("2006-01-02"),
		date.AddDate(0, 0, 1).Format("2006-01-02"),
		"--tsv",
		"--details", "url",
		"--details", "calendar",
	)
	if err != nil {
		return "", err
	}

	return FilterAgenda(out, s.Exclude), nil
}

// FetchHolidayAgenda returns the named calendar's agenda for the date,
// unfiltered.
func (s *Source) FetchHolidayAgenda(ctx context.Context, calendarID string, date time.Time) (string, error) {
	out, err := s.run(ctx,
		"--nocolor",
		"--calendar", calendarID,
		"agenda",
		date.Format("2006-01-02"),
		date.AddDate(0, 0, 1).Format("2006-01-02"),
		"--tsv",
	)
	if err != nil {
		return "", err
	}

	return FilterAgenda(out, nil), nil
}

// ListCalendars returns the names of the user's calendars.
func (s *Source) ListCalendars(ctx context.Context) ([]string, error) {
	out, err := s.run(ctx, "--nocolor", "list")
	if err != nil {
		return nil, err
	}
	return ParseCalendarList(out), nil
}

func (s *Source) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, s.Binary, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("%s %s: %w: %s",
			s.Binary, args[len(args)-1], err, strings.TrimSpace(stderr.String()))
	}

	appLog.Debug("calendar tool run", "args", strings.Join(args, " "), "bytes", len(out))
	return string(out), nil
}

// FilterAgenda removes header rows and rows belonging to excluded calendars
// from raw tab-separated agenda output. Remaining lines pass through
// verbatim, order preserved.
func FilterAgenda(raw string, exclude []string) string {
	var kept []string

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimRight(line, "\r")
		if strings.TrimSpace(trimmed) == "" {
			continue
		}

		fields := strings.Split(trimmed, "\t")
		if strings.EqualFold(strings.TrimSpace(fields[0]), "start_date") {
			continue
		}
		if matchesExcluded(fields, exclude) {
			continue
		}

		kept = append(kept, trimmed)
	}

	if len(kept) == 0 {
		return ""
	}
	return strings.Join(kept, "\n") + "\n"
}

func matchesExcluded(fields []string, exclude []string) bool {
	for _, f := range fields {
		f = strings.TrimSpace(f)
		for _, ex := range exclude {
			if strings.EqualFold(f, ex) {
				return true
			}
		}
	}
	return false
}

// ParseCalendarList extracts calendar titles from `gcalcli list` output,
// which prints an access column followed by the title.
func ParseCalendarList(raw string) []string {
	var names []string

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(strings.TrimRight(line, "\r"))
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		if strings.EqualFold(fields[0], "access") || strings.HasPrefix(fields[0], "---") {
			continue
		}

		names = append(names, strings.Join(fields[1:], " "))
	}

	return names
}
