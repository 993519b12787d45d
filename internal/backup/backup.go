// Package backup snapshots the crontab around each run. A snapshot is only
// worth keeping when the run actually changed something, so identical
// before/after pairs are discarded.
package backup

import (
	"errors"
	"os"
	"path/filepath"
)

const (
	beforeFile = "crontab.before"
	afterFile  = "crontab.after"
)

// DirSink stores snapshots as per-period directories under Dir. The period
// key (typically day or day+hour) deduplicates runs: a later run in the
// same period overwrites the period's snapshot.
type DirSink struct {
	Dir string
}

// Store writes the before/after pair for periodKey. When before and after
// are byte-identical the period directory is removed instead, so unchanged
// runs leave no artifact behind.
func (s *DirSink) Store(periodKey, before, after string) error {
	if s.Dir == "" {
		return errors.New("backup dir is empty")
	}
	if periodKey == "" {
		return errors.New("backup period key is empty")
	}

	dir := filepath.Join(s.Dir, periodKey)

	if before == after {
		if err := os.RemoveAll(dir); err != nil {
			return err
		}
		return nil
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, beforeFile), []byte(before), 0o600); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, afterFile), []byte(after), 0o600)
}
