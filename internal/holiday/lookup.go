package holiday

import (
	"context"
	"strings"
	"time"

	"meetcron/internal/config"
	"meetcron/internal/ics"
	appLog "meetcron/internal/log"
)

// FeedLookup answers holiday queries from a holiday ICS feed. The feed URL
// is either configured directly or selected per country. An unresolvable
// feed is not an error: holiday detection is simply skipped.
type FeedLookup struct {
	cfg      config.HolidayConfig
	fetcher  *ics.Fetcher
	resolver Resolver
	loc      *time.Location
}

// NewFeedLookup wires a FeedLookup from config. loc is the timezone dates
// are interpreted in; nil means local.
func NewFeedLookup(cfg config.HolidayConfig, resolver Resolver, loc *time.Location) *FeedLookup {
	if resolver == nil {
		resolver = NewResolver(cfg.CountryURL)
	}
	return &FeedLookup{
		cfg:      cfg,
		fetcher:  ics.NewFetcher(cfg.CacheDir),
		resolver: resolver,
		loc:      loc,
	}
}

// EventName returns the holiday name for date, if the feed lists one.
func (l *FeedLookup) EventName(ctx context.Context, date time.Time) (string, bool, error) {
	url := l.cfg.ICSURL
	if url == "" {
		country, err := l.resolver.Country(ctx)
		if err != nil {
			appLog.Debug("country unresolved, skipping holiday detection", "err", err.Error())
			return "", false, nil
		}
		url = l.cfg.ICSByCountry[strings.ToUpper(country)]
		if url == "" {
			appLog.Debug("no holiday feed for country", "country", country)
			return "", false, nil
		}
	}

	body, fromCache, err := l.fetcher.Fetch(ctx, url)
	if err != nil {
		return "", false, err
	}
	appLog.Debug("holiday feed loaded", "from_cache", fromCache, "bytes", len(body))

	events, err := ics.Parse(body)
	if err != nil {
		return "", false, err
	}

	name, ok := ics.HolidayNameOn(events, date, l.loc)
	return name, ok, nil
}

// AgendaSource is the slice of the calendar tool the CalendarLookup needs.
type AgendaSource interface {
	ListCalendars(ctx context.Context) ([]string, error)
	FetchHolidayAgenda(ctx context.Context, calendarID string, date time.Time) (string, error)
}

// CalendarLookup answers holiday queries from a holiday calendar found among
// the user's calendars (e.g. "Holidays in Germany"). Used when no ICS feed
// is configured.
type CalendarLookup struct {
	Source AgendaSource
	// Hint is the substring identifying the holiday calendar by name.
	Hint         string
	AllDayMarker string
}

// EventName lists calendars, picks the first whose name contains the hint,
// and reads its agenda for the date. No matching calendar skips detection.
func (l *CalendarLookup) EventName(ctx context.Context, date time.Time) (string, bool, error) {
	names, err := l.Source.ListCalendars(ctx)
	if err != nil {
		return "", false, err
	}

	target := ""
	lowerHint := strings.ToLower(l.Hint)
	for _, n := range names {
		if strings.Contains(strings.ToLower(n), lowerHint) {
			target = n
			break
		}
	}
	if target == "" {
		appLog.Debug("no holiday calendar matched hint", "hint", l.Hint)
		return "", false, nil
	}

	raw, err := l.Source.FetchHolidayAgenda(ctx, target, date)
	if err != nil {
		return "", false, err
	}

	name := l.firstEventName(raw, date)
	return name, name != "", nil
}

// firstEventName extracts the first record's title from a holiday agenda:
// the first field that is not the date token, a time token, the all-day
// marker, or a URL.
func (l *CalendarLookup) firstEventName(raw string, date time.Time) string {
	dateToken := date.Format("2006-01-02")

	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		for _, f := range strings.Split(line, "\t") {
			f = strings.TrimSpace(f)
			if f == "" || f == dateToken || f == l.AllDayMarker {
				continue
			}
			if looksLikeTime(f) || strings.HasPrefix(f, "http://") || strings.HasPrefix(f, "https://") {
				continue
			}
			return f
		}
	}
	return ""
}

func looksLikeTime(s string) bool {
	if len(s) < 4 || len(s) > 5 {
		return false
	}
	colon := strings.IndexByte(s, ':')
	if colon < 1 {
		return false
	}
	for i, r := range s {
		if i == colon {
			continue
		}
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
