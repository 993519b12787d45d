package ics_test

import (
	"strings"
	"testing"
	"time"

	"meetcron/internal/ics"
)

const holidayFeed = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//test//holidays//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:liberation@test\r\n" +
	"DTSTAMP:20250101T000000Z\r\n" +
	"DTSTART;VALUE=DATE:20250827\r\n" +
	"SUMMARY:Liberation Day\r\n" +
	"RRULE:FREQ=YEARLY\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:oneoff@test\r\n" +
	"DTSTAMP:20250101T000000Z\r\n" +
	"DTSTART:20261224T090000Z\r\n" +
	"SUMMARY:Company Day\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestParse(t *testing.T) {
	events, err := ics.Parse([]byte(holidayFeed))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}

	byName := map[string]ics.Event{}
	for _, ev := range events {
		byName[ev.Summary] = ev
	}

	lib, ok := byName["Liberation Day"]
	if !ok {
		t.Fatal("Liberation Day not parsed")
	}
	if !lib.AllDay {
		t.Error("Liberation Day should be all-day")
	}
	if lib.RawRRule == "" {
		t.Error("Liberation Day should carry its RRULE")
	}

	if _, ok := byName["Company Day"]; !ok {
		t.Fatal("Company Day not parsed")
	}
}

func TestParseRejectsEmptyBody(t *testing.T) {
	if _, err := ics.Parse(nil); err == nil {
		t.Error("Parse(nil) should fail")
	}
}

func TestParseSkipsSummarylessEvents(t *testing.T) {
	feed := strings.ReplaceAll(holidayFeed, "SUMMARY:Company Day\r\n", "")

	events, err := ics.Parse([]byte(feed))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1 (summaryless skipped)", len(events))
	}
}

func TestHolidayNameOn(t *testing.T) {
	events, err := ics.Parse([]byte(holidayFeed))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	tests := []struct {
		name     string
		date     time.Time
		wantName string
		wantOK   bool
	}{
		{
			name:     "yearly rule hits original year",
			date:     time.Date(2025, 8, 27, 12, 0, 0, 0, time.UTC),
			wantName: "Liberation Day",
			wantOK:   true,
		},
		{
			name:     "yearly rule recurs next year",
			date:     time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC),
			wantName: "Liberation Day",
			wantOK:   true,
		},
		{
			name:     "one-off event on its day",
			date:     time.Date(2026, 12, 24, 8, 0, 0, 0, time.UTC),
			wantName: "Company Day",
			wantOK:   true,
		},
		{
			name:   "ordinary day",
			date:   time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
			wantOK: false,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			name, ok := ics.HolidayNameOn(events, tt.date, time.UTC)

			if ok != tt.wantOK {
				t.Fatalf("HolidayNameOn() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && name != tt.wantName {
				t.Errorf("HolidayNameOn() = %q, want %q", name, tt.wantName)
			}
		})
	}
}
