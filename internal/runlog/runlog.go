// Package runlog keeps the run-history file: one line per coordinator run,
// trimmed to a configured number of retained lines. This file is a domain
// artifact the user reads, distinct from diagnostic logging.
package runlog

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileLog appends to and trims a plain text log file.
type FileLog struct {
	Path string
}

// Append writes one timestamped line. The file and its parent directory are
// created on first use.
func (l *FileLog) Append(msg string) error {
	if l.Path == "" {
		return errors.New("run log path is empty")
	}

	if err := os.MkdirAll(filepath.Dir(l.Path), 0o700); err != nil {
		return err
	}

	f, err := os.OpenFile(l.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	line := time.Now().Format("2006-01-02 15:04:05") + " " + msg + "\n"
	_, err = f.WriteString(line)
	return err
}

// ReadAll returns all log lines in file order. A missing file reads as
// empty.
func (l *FileLog) ReadAll() ([]string, error) {
	data, err := os.ReadFile(l.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	text := strings.TrimRight(string(data), "\n")
	if text == "" {
		return nil, nil
	}
	return strings.Split(text, "\n"), nil
}

// TruncateToLast keeps only the last n lines, in original order. This is a
// destructive tail-truncation, not rotation. The rewrite is atomic via a
// temp file and rename.
func (l *FileLog) TruncateToLast(n int) error {
	if n <= 0 {
		return errors.New("retain count must be positive")
	}

	lines, err := l.ReadAll()
	if err != nil {
		return err
	}
	if len(lines) <= n {
		return nil
	}
	lines = lines[len(lines)-n:]

	dir := filepath.Dir(l.Path)
	tmp, err := os.CreateTemp(dir, ".meetcron-log-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.WriteString(strings.Join(lines, "\n") + "\n"); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, l.Path)
}
