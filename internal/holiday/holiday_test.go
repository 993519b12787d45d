package holiday_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"meetcron/internal/config"
	"meetcron/internal/holiday"
)

const feedBody = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//test//holidays//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:lib@test\r\n" +
	"DTSTAMP:20250101T000000Z\r\n" +
	"DTSTART;VALUE=DATE:20260827\r\n" +
	"SUMMARY:Liberation Day\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestFeedLookupFindsHoliday(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(feedBody))
	}))
	defer srv.Close()

	cfg := config.HolidayConfig{
		ICSByCountry: map[string]string{"DE": srv.URL},
		CacheDir:     t.TempDir(),
	}
	lookup := holiday.NewFeedLookup(cfg, holiday.Static("DE"), time.Local)

	name, ok, err := lookup.EventName(context.Background(), time.Date(2026, 8, 27, 9, 0, 0, 0, time.Local))
	if err != nil {
		t.Fatalf("EventName() error = %v", err)
	}
	if !ok || name != "Liberation Day" {
		t.Errorf("EventName() = %q, %v; want Liberation Day, true", name, ok)
	}

	// Ordinary day.
	_, ok, err = lookup.EventName(context.Background(), time.Date(2026, 3, 3, 9, 0, 0, 0, time.Local))
	if err != nil {
		t.Fatalf("EventName() error = %v", err)
	}
	if ok {
		t.Error("EventName() found a holiday on an ordinary day")
	}
}

func TestFeedLookupSkipsWhenNoFeedForCountry(t *testing.T) {
	cfg := config.HolidayConfig{
		ICSByCountry: map[string]string{},
		CacheDir:     t.TempDir(),
	}
	lookup := holiday.NewFeedLookup(cfg, holiday.Static("FR"), time.Local)

	name, ok, err := lookup.EventName(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("EventName() error = %v, want nil (detection skipped)", err)
	}
	if ok || name != "" {
		t.Errorf("EventName() = %q, %v; want skipped", name, ok)
	}
}

type fakeAgendaSource struct {
	calendars []string
	agenda    string
	err       error
}

func (f *fakeAgendaSource) ListCalendars(context.Context) ([]string, error) {
	return f.calendars, f.err
}

func (f *fakeAgendaSource) FetchHolidayAgenda(context.Context, string, time.Time) (string, error) {
	return f.agenda, f.err
}

func TestCalendarLookup(t *testing.T) {
	date := time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		source   *fakeAgendaSource
		wantName string
		wantOK   bool
		wantErr  bool
	}{
		{
			name: "holiday calendar found",
			source: &fakeAgendaSource{
				calendars: []string{"Work", "Holidays in Germany"},
				agenda:    "2026-08-27\tAll day\tLiberation Day\n",
			},
			wantName: "Liberation Day",
			wantOK:   true,
		},
		{
			name: "no calendar matches hint",
			source: &fakeAgendaSource{
				calendars: []string{"Work", "Home"},
			},
			wantOK: false,
		},
		{
			name: "empty holiday agenda",
			source: &fakeAgendaSource{
				calendars: []string{"Holidays in Germany"},
				agenda:    "",
			},
			wantOK: false,
		},
		{
			name:    "listing fails",
			source:  &fakeAgendaSource{err: errors.New("gcalcli exploded")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			lookup := &holiday.CalendarLookup{
				Source:       tt.source,
				Hint:         "Holidays",
				AllDayMarker: "All day",
			}

			name, ok, err := lookup.EventName(context.Background(), date)

			if (err != nil) != tt.wantErr {
				t.Fatalf("EventName() error = %v, wantErr %v", err, tt.wantErr)
			}
			if ok != tt.wantOK {
				t.Errorf("EventName() ok = %v, want %v", ok, tt.wantOK)
			}
			if name != tt.wantName {
				t.Errorf("EventName() = %q, want %q", name, tt.wantName)
			}
		})
	}
}

func TestStaticResolver(t *testing.T) {
	code, err := holiday.Static("US").Country(context.Background())
	if err != nil {
		t.Fatalf("Country() error = %v", err)
	}
	if code != "US" {
		t.Errorf("Country() = %q, want US", code)
	}
}
