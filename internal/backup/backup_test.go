package backup_test

import (
	"os"
	"path/filepath"
	"testing"

	"meetcron/internal/backup"
)

func TestStoreKeepsChangedSnapshot(t *testing.T) {
	dir := t.TempDir()
	sink := &backup.DirSink{Dir: dir}

	if err := sink.Store("2026-08-27_08", "old\n", "new\n"); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	before, err := os.ReadFile(filepath.Join(dir, "2026-08-27_08", "crontab.before"))
	if err != nil {
		t.Fatalf("before snapshot missing: %v", err)
	}
	if string(before) != "old\n" {
		t.Errorf("before = %q, want old", before)
	}

	after, err := os.ReadFile(filepath.Join(dir, "2026-08-27_08", "crontab.after"))
	if err != nil {
		t.Fatalf("after snapshot missing: %v", err)
	}
	if string(after) != "new\n" {
		t.Errorf("after = %q, want new", after)
	}
}

func TestStoreDiscardsUnchangedSnapshot(t *testing.T) {
	dir := t.TempDir()
	sink := &backup.DirSink{Dir: dir}

	// A previous run in the same period left a snapshot behind.
	if err := sink.Store("2026-08-27_08", "a\n", "b\n"); err != nil {
		t.Fatal(err)
	}

	if err := sink.Store("2026-08-27_08", "same\n", "same\n"); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "2026-08-27_08")); !os.IsNotExist(err) {
		t.Error("period dir should be removed when before == after")
	}
}

func TestStoreRejectsEmptyKeys(t *testing.T) {
	sink := &backup.DirSink{Dir: t.TempDir()}

	if err := sink.Store("", "a", "b"); err == nil {
		t.Error("Store with empty period key should fail")
	}

	sink = &backup.DirSink{}
	if err := sink.Store("key", "a", "b"); err == nil {
		t.Error("Store with empty dir should fail")
	}
}
