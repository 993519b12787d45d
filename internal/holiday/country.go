// Package holiday resolves whether a given date is a public holiday, using
// either a holiday ICS feed or a holiday calendar exposed by the calendar
// tool. The country feeding the feed choice comes from the locale
// environment, with a network lookup as fallback.
package holiday

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	appLog "meetcron/internal/log"
)

// Resolver abstracts how the user's country code is obtained. This allows a
// static implementation for tests, an environment-based one for the common
// case, and a network-backed fallback.
type Resolver interface {
	Country(ctx context.Context) (string, error)
}

// localeCountryRe extracts the territory from a POSIX locale value such as
// "en_US.UTF-8" or "de_DE".
var localeCountryRe = regexp.MustCompile(`^[a-z]{2,3}[_-]([A-Za-z]{2})`)

// envResolver reads the country from LC_ALL / LANG.
type envResolver struct{}

func (envResolver) Country(_ context.Context) (string, error) {
	for _, key := range []string{"LC_ALL", "LANG"} {
		v := os.Getenv(key)
		if m := localeCountryRe.FindStringSubmatch(v); m != nil {
			return strings.ToUpper(m[1]), nil
		}
	}
	return "", errors.New("no country in locale environment")
}

// httpResolver queries an endpoint that returns a bare two-letter country
// code, used when the locale environment is ambiguous.
type httpResolver struct {
	url    string
	client *http.Client
}

func (r *httpResolver) Country(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return "", err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.New("country lookup: " + resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16))
	if err != nil {
		return "", err
	}

	code := strings.ToUpper(strings.TrimSpace(string(body)))
	if len(code) != 2 {
		return "", errors.New("country lookup returned " + code)
	}
	return code, nil
}

// chainResolver tries each resolver in order, returning the first success.
type chainResolver []Resolver

func (c chainResolver) Country(ctx context.Context) (string, error) {
	var lastErr error
	for _, r := range c {
		code, err := r.Country(ctx)
		if err == nil {
			return code, nil
		}
		lastErr = err
		appLog.Debug("country resolver miss", "err", err.Error())
	}
	if lastErr == nil {
		lastErr = errors.New("no country resolvers configured")
	}
	return "", lastErr
}

// NewResolver returns the production chain: locale environment first, then
// the configured country endpoint.
func NewResolver(countryURL string) Resolver {
	return chainResolver{
		envResolver{},
		&httpResolver{url: countryURL, client: &http.Client{Timeout: 10 * time.Second}},
	}
}

// Static returns a Resolver that always yields code. Test helper.
func Static(code string) Resolver {
	return staticResolver(code)
}

type staticResolver string

func (s staticResolver) Country(context.Context) (string, error) {
	return string(s), nil
}
