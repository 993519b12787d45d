package crontab

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	appLog "meetcron/internal/log"
)

// Store reads and writes the user's crontab through the crontab binary.
//
// The read-modify-write cycle is not locked: meetcron assumes it is the only
// writer of its managed block. Concurrent runs race and the last writer
// wins, matching crontab(1)'s own semantics.
type Store struct {
	// Binary is the crontab executable name or path.
	Binary string
}

// Probe verifies the crontab binary is available. A missing binary is a
// hard dependency failure; the coordinator aborts the run on it.
func (s *Store) Probe() error {
	if _, err := exec.LookPath(s.Binary); err != nil {
		return fmt.Errorf("crontab binary %q not found: %w", s.Binary, err)
	}
	return nil
}

// Read returns the current crontab text. A user with no crontab yet reads
// as empty rather than as an error.
func (s *Store) Read(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, s.Binary, "-l")

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		// "no crontab for <user>" exits non-zero but is not a failure.
		if strings.Contains(strings.ToLower(stderr.String()), "no crontab") {
			return "", nil
		}
		return "", fmt.Errorf("reading crontab: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	return string(out), nil
}

// Write replaces the whole crontab with text by piping it to `crontab -`.
func (s *Store) Write(ctx context.Context, text string) error {
	cmd := exec.CommandContext(ctx, s.Binary, "-")
	cmd.Stdin = strings.NewReader(text)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("writing crontab: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	appLog.Debug("crontab written", "bytes", len(text))
	return nil
}
