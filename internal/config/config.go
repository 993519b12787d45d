package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/caarlos0/env"
	"gopkg.in/yaml.v3"
)

// CalendarConfig describes the external calendar tool and which calendars
// to ignore when building the day's agenda.
type CalendarConfig struct {
	// Binary is the gcalcli executable name or path.
	Binary string `yaml:"binary" json:"binary"`
	// Exclude lists calendar names whose records are filtered out of the
	// agenda (e.g. "Home").
	Exclude []string `yaml:"exclude" json:"exclude"`
	// HolidayHint is a substring used to locate a holiday calendar among
	// the user's calendars when no holiday ICS feed is configured.
	HolidayHint string `yaml:"holiday_hint" json:"holiday_hint"`
}

// HolidayConfig controls how the holiday lookup resolves its data source.
type HolidayConfig struct {
	// ICSURL, if set, is used directly as the holiday feed.
	ICSURL string `yaml:"ics_url" json:"ics_url"`
	// ICSByCountry maps an ISO 3166-1 alpha-2 country code to a holiday
	// feed URL. Consulted when ICSURL is empty.
	ICSByCountry map[string]string `yaml:"ics_by_country" json:"ics_by_country"`
	// CountryURL is the endpoint queried when the locale environment does
	// not yield a country code. It must return a bare two-letter code.
	CountryURL string `yaml:"country_url" json:"country_url"`
	// CacheDir is where conditional-fetch metadata and feed bodies are kept.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`
}

// ClassifyConfig makes the historical OOO-vs-Holiday precedence explicit.
type ClassifyConfig struct {
	// HolidayFirst checks holiday before out-of-office. Default is false:
	// out-of-office wins, the most recent policy.
	HolidayFirst bool `yaml:"holiday_first" json:"holiday_first"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the status server.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the daemon-mode status server.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone the agenda is interpreted in. Empty
	// means the process-local timezone.
	Timezone string `yaml:"timezone" json:"timezone"`

	// RefreshCron is the cron schedule for daemon-mode reruns.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// OffsetMinutes is subtracted from each meeting start to compute the
	// trigger time. Must be >= 0.
	OffsetMinutes int `yaml:"offset_minutes" json:"offset_minutes"`

	// LogFile is the run-history log appended to after every run.
	LogFile string `yaml:"log_file" json:"log_file"`
	// LogLimit is the maximum number of run-log lines retained.
	LogLimit int `yaml:"log_limit" json:"log_limit"`

	BackupDir    string `yaml:"backup_dir" json:"backup_dir"`
	EnableBackup bool   `yaml:"enable_backup" json:"enable_backup"`

	Debug bool `yaml:"debug" json:"debug"`

	// Anchor is the sentinel line that opens the managed crontab block.
	Anchor string `yaml:"anchor" json:"anchor"`

	// LinkPattern is the regexp an agenda field must match to count as a
	// meeting join link.
	LinkPattern string `yaml:"link_pattern" json:"link_pattern"`

	// AllDayMarker is the literal the calendar tool emits in place of a
	// start time for all-day events.
	AllDayMarker string `yaml:"all_day_marker" json:"all_day_marker"`

	// LaunchCommand is the meeting-client invocation; "%s" is replaced by
	// the join link. PauseCommand, if set, is prepended with "&&" to pause
	// media playback before joining.
	LaunchCommand string `yaml:"launch_command" json:"launch_command"`
	PauseCommand  string `yaml:"pause_command" json:"pause_command"`

	Calendar CalendarConfig `yaml:"calendar" json:"calendar"`
	Holiday  HolidayConfig  `yaml:"holiday" json:"holiday"`
	Classify ClassifyConfig `yaml:"classify" json:"classify"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// status endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultAnchor marks the start of the managed crontab block. Everything
// from this line to end-of-table is owned by meetcron and replaced on every
// run.
const DefaultAnchor = "# >>> meetcron managed meetings >>>"

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:        "127.0.0.1:8099",
		Timezone:      "",
		RefreshCron:   "*/15 * * * *",
		OffsetMinutes: 1,
		LogFile:       "./var/meetcron.log",
		LogLimit:      100,
		BackupDir:     "./var/backups",
		EnableBackup:  false,
		Anchor:        DefaultAnchor,
		LinkPattern:   `https://[A-Za-z0-9.-]*zoom\.us/(j|my)/[^\s>]+`,
		AllDayMarker:  "All day",
		LaunchCommand: `xdg-open '%s'`,
		PauseCommand:  "",
		Calendar: CalendarConfig{
			Binary:      "gcalcli",
			Exclude:     []string{"Home"},
			HolidayHint: "Holidays",
		},
		Holiday: HolidayConfig{
			ICSByCountry: map[string]string{},
			CountryURL:   "https://ipinfo.io/country",
			CacheDir:     "./var/holiday-cache",
		},
		Classify: ClassifyConfig{HolidayFirst: false},
		BasicAuth: nil,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	def := DefaultConfig()

	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.RefreshCron == "" {
		c.RefreshCron = def.RefreshCron
	}
	if c.OffsetMinutes < 0 {
		c.OffsetMinutes = def.OffsetMinutes
	}
	if c.LogFile == "" {
		c.LogFile = def.LogFile
	}
	if c.LogLimit <= 0 {
		c.LogLimit = def.LogLimit
	}
	if c.BackupDir == "" {
		c.BackupDir = def.BackupDir
	}
	if c.Anchor == "" {
		c.Anchor = def.Anchor
	}
	if c.LinkPattern == "" {
		c.LinkPattern = def.LinkPattern
	}
	if c.AllDayMarker == "" {
		c.AllDayMarker = def.AllDayMarker
	}
	if c.LaunchCommand == "" {
		c.LaunchCommand = def.LaunchCommand
	}
	if c.Calendar.Binary == "" {
		c.Calendar.Binary = def.Calendar.Binary
	}
	if c.Calendar.Exclude == nil {
		c.Calendar.Exclude = def.Calendar.Exclude
	}
	if c.Calendar.HolidayHint == "" {
		c.Calendar.HolidayHint = def.Calendar.HolidayHint
	}
	if c.Holiday.ICSByCountry == nil {
		c.Holiday.ICSByCountry = map[string]string{}
	}
	if c.Holiday.CountryURL == "" {
		c.Holiday.CountryURL = def.Holiday.CountryURL
	}
	if c.Holiday.CacheDir == "" {
		c.Holiday.CacheDir = def.Holiday.CacheDir
	}
}

// envOverrides mirrors the environment-variable surface. Values are applied
// over the file config only when the variable is actually set, so a zero
// value in the environment still overrides.
type envOverrides struct {
	BackupDir     string `env:"MEETCRON_BACKUP_DIR"`
	EnableBackup  bool   `env:"MEETCRON_ENABLE_BACKUP"`
	Debug         bool   `env:"MEETCRON_DEBUG"`
	LogFile       string `env:"MEETCRON_LOG_FILE"`
	LogLimit      int    `env:"MEETCRON_LOG_LIMIT"`
	OffsetMinutes int    `env:"MEETCRON_OFFSET_MINUTES"`
}

// ApplyEnv overlays MEETCRON_* environment variables on the config.
func (c *Config) ApplyEnv() error {
	var ov envOverrides
	if err := env.Parse(&ov); err != nil {
		return err
	}

	if _, ok := os.LookupEnv("MEETCRON_BACKUP_DIR"); ok {
		c.BackupDir = ov.BackupDir
	}
	if _, ok := os.LookupEnv("MEETCRON_ENABLE_BACKUP"); ok {
		c.EnableBackup = ov.EnableBackup
	}
	if _, ok := os.LookupEnv("MEETCRON_DEBUG"); ok {
		c.Debug = ov.Debug
	}
	if _, ok := os.LookupEnv("MEETCRON_LOG_FILE"); ok {
		c.LogFile = ov.LogFile
	}
	if _, ok := os.LookupEnv("MEETCRON_LOG_LIMIT"); ok {
		c.LogLimit = ov.LogLimit
	}
	if _, ok := os.LookupEnv("MEETCRON_OFFSET_MINUTES"); ok {
		c.OffsetMinutes = ov.OffsetMinutes
	}

	c.Normalize()

	return nil
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written there (0600,
//     parent directory created) and returned.
//   - Otherwise the YAML is unmarshalled and normalized.
//   - Environment overrides are applied last in both cases.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			if err := cfg.ApplyEnv(); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// Atomic write: write to temp file in same directory then rename.
	tmp, err := os.CreateTemp(dir, ".meetcron-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	return nil
}

// Save delegates to the package-level Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
