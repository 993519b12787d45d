package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"meetcron/internal/config"
)

func TestLoadCreatesDefaultConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "config.yaml")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Anchor != config.DefaultAnchor {
		t.Errorf("Anchor = %q, want %q", cfg.Anchor, config.DefaultAnchor)
	}
	if cfg.LogLimit != 100 {
		t.Errorf("LogLimit = %d, want 100", cfg.LogLimit)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config file not created: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config file perm = %o, want 600", perm)
	}
}

func TestLoadNormalizesPartialConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	partial := "offset_minutes: 5\nlog_limit: 0\n"
	if err := os.WriteFile(path, []byte(partial), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.OffsetMinutes != 5 {
		t.Errorf("OffsetMinutes = %d, want 5", cfg.OffsetMinutes)
	}
	if cfg.LogLimit != 100 {
		t.Errorf("LogLimit = %d, want default 100", cfg.LogLimit)
	}
	if cfg.Calendar.Binary != "gcalcli" {
		t.Errorf("Calendar.Binary = %q, want gcalcli", cfg.Calendar.Binary)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("MEETCRON_OFFSET_MINUTES", "3")
	t.Setenv("MEETCRON_ENABLE_BACKUP", "true")
	t.Setenv("MEETCRON_LOG_FILE", "/tmp/other.log")

	cfg := config.DefaultConfig()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}

	if cfg.OffsetMinutes != 3 {
		t.Errorf("OffsetMinutes = %d, want 3", cfg.OffsetMinutes)
	}
	if !cfg.EnableBackup {
		t.Error("EnableBackup = false, want true")
	}
	if cfg.LogFile != "/tmp/other.log" {
		t.Errorf("LogFile = %q, want /tmp/other.log", cfg.LogFile)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := config.DefaultConfig()
	cfg.OffsetMinutes = 7
	cfg.Calendar.Exclude = []string{"Home", "Birthdays"}

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if loaded.OffsetMinutes != 7 {
		t.Errorf("OffsetMinutes = %d, want 7", loaded.OffsetMinutes)
	}
	if len(loaded.Calendar.Exclude) != 2 {
		t.Errorf("Calendar.Exclude = %v, want 2 entries", loaded.Calendar.Exclude)
	}
}
