// Package agenda turns the raw tab-delimited agenda emitted by the calendar
// tool into Meeting values and classifies the day as a whole.
package agenda

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	appLog "meetcron/internal/log"
	"meetcron/internal/model"
)

// hhmmRe matches a bare HH:MM start-time token.
var hhmmRe = regexp.MustCompile(`^\d{1,2}:\d{2}$`)

// SkipDiagnostic records one agenda record that was excluded from parsing.
// Skips are non-fatal; they only surface through the log.
type SkipDiagnostic struct {
	Record string
	Reason string
}

// ParseResult is the ordered outcome of parsing one day's agenda.
type ParseResult struct {
	Meetings []model.Meeting
	Skipped  []SkipDiagnostic
}

// Parser extracts meetings from tab-delimited agenda records. Each record's
// second field is either an HH:MM start time or the all-day marker; the
// remaining fields are free-form tags that may include a join link and a
// human title. Parsing is pure and order-stable: re-parsing the same input
// yields the same result.
type Parser struct {
	linkRe       *regexp.Regexp
	allDayMarker string
}

// NewParser compiles the join-link pattern. allDayMarker is the literal the
// calendar tool prints in place of a start time for all-day events.
func NewParser(linkPattern, allDayMarker string) (*Parser, error) {
	re, err := regexp.Compile(linkPattern)
	if err != nil {
		return nil, fmt.Errorf("compiling link pattern %q: %w", linkPattern, err)
	}
	return &Parser{linkRe: re, allDayMarker: allDayMarker}, nil
}

// Parse walks the raw agenda line by line. Records without a join link or
// without a parseable start time are excluded and reported as skipped.
// Output preserves input order.
func (p *Parser) Parse(raw string, date time.Time) ParseResult {
	var result ParseResult

	dateToken := date.Format("2006-01-02")

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		meeting, skip := p.parseRecord(line, date, dateToken)
		if skip != nil {
			appLog.Debug("agenda record skipped", "reason", skip.Reason, "record", line)
			result.Skipped = append(result.Skipped, *skip)
			continue
		}

		result.Meetings = append(result.Meetings, meeting)
	}

	return result
}

func (p *Parser) parseRecord(line string, date time.Time, dateToken string) (model.Meeting, *SkipDiagnostic) {
	fields := strings.Split(line, "\t")

	link := ""
	for _, f := range fields {
		if p.linkRe.MatchString(f) {
			link = p.linkRe.FindString(f)
			break
		}
	}
	if link == "" {
		return model.Meeting{}, &SkipDiagnostic{Record: line, Reason: "no join link"}
	}

	meeting := model.Meeting{
		Date:     date,
		JoinLink: link,
		Title:    p.extractTitle(fields, dateToken),
	}

	if len(fields) < 2 {
		return model.Meeting{}, &SkipDiagnostic{Record: line, Reason: "missing start time field"}
	}

	timeField := strings.TrimSpace(fields[1])
	if timeField == p.allDayMarker {
		meeting.AllDay = true
		return meeting, nil
	}

	hour, minute, err := parseHHMM(timeField)
	if err != nil {
		return model.Meeting{}, &SkipDiagnostic{Record: line, Reason: "bad start time: " + err.Error()}
	}
	meeting.StartHour = hour
	meeting.StartMinute = minute

	return meeting, nil
}

// extractTitle picks the first field that is not a time token, not the
// all-day marker, not a URL, and not the current date string. Original
// field order breaks ties.
func (p *Parser) extractTitle(fields []string, dateToken string) string {
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if hhmmRe.MatchString(f) {
			continue
		}
		if f == p.allDayMarker {
			continue
		}
		if strings.HasPrefix(f, "http://") || strings.HasPrefix(f, "https://") {
			continue
		}
		if f == dateToken {
			continue
		}
		return f
	}
	return ""
}

func parseHHMM(s string) (int, int, error) {
	if !hhmmRe.MatchString(s) {
		return 0, 0, fmt.Errorf("%q is not HH:MM", s)
	}

	parts := strings.SplitN(s, ":", 2)
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, err
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, err
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%q is out of range", s)
	}

	return hour, minute, nil
}
