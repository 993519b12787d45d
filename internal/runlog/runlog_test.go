package runlog_test

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"meetcron/internal/runlog"
)

func TestAppendAndReadAll(t *testing.T) {
	l := &runlog.FileLog{Path: filepath.Join(t.TempDir(), "sub", "run.log")}

	if err := l.Append("mode=normal inserted=2"); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := l.Append("mode=empty inserted=0"); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	lines, err := l.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if !strings.HasSuffix(lines[0], "mode=normal inserted=2") {
		t.Errorf("line 1 = %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], "mode=empty inserted=0") {
		t.Errorf("line 2 = %q", lines[1])
	}
}

func TestReadAllMissingFile(t *testing.T) {
	l := &runlog.FileLog{Path: filepath.Join(t.TempDir(), "absent.log")}

	lines, err := l.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if lines != nil {
		t.Errorf("ReadAll() = %v, want nil", lines)
	}
}

func TestTruncateToLast(t *testing.T) {
	l := &runlog.FileLog{Path: filepath.Join(t.TempDir(), "run.log")}

	for i := 1; i <= 150; i++ {
		if err := l.Append(fmt.Sprintf("run %d", i)); err != nil {
			t.Fatal(err)
		}
	}

	if err := l.TruncateToLast(100); err != nil {
		t.Fatalf("TruncateToLast() error = %v", err)
	}

	lines, err := l.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 100 {
		t.Fatalf("got %d lines, want exactly 100", len(lines))
	}
	if !strings.HasSuffix(lines[0], "run 51") {
		t.Errorf("first retained line = %q, want run 51", lines[0])
	}
	if !strings.HasSuffix(lines[99], "run 150") {
		t.Errorf("last retained line = %q, want run 150", lines[99])
	}
}

func TestTruncateToLastNoopWhenShort(t *testing.T) {
	l := &runlog.FileLog{Path: filepath.Join(t.TempDir(), "run.log")}

	for i := 0; i < 5; i++ {
		if err := l.Append("run"); err != nil {
			t.Fatal(err)
		}
	}

	if err := l.TruncateToLast(100); err != nil {
		t.Fatalf("TruncateToLast() error = %v", err)
	}

	lines, _ := l.ReadAll()
	if len(lines) != 5 {
		t.Errorf("got %d lines, want 5", len(lines))
	}
}

func TestTruncateRejectsNonPositive(t *testing.T) {
	l := &runlog.FileLog{Path: filepath.Join(t.TempDir(), "run.log")}

	if err := l.TruncateToLast(0); err == nil {
		t.Error("TruncateToLast(0) should fail")
	}
}
