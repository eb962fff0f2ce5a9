package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestConsoleFieldFormatting(t *testing.T) {
	var buf bytes.Buffer
	con := &console{out: &buf}

	con.field("Daemon", statusOK, "pid 42")
	con.field("Failed", statusWarn, "3")

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "Daemon:") || !strings.Contains(lines[0], "[OK] pid 42") {
		t.Fatalf("unexpected field line: %q", lines[0])
	}
	if strings.Contains(lines[0], "\x1b[") {
		t.Fatalf("non-terminal output should not carry ansi codes: %q", lines[0])
	}
	if !strings.Contains(lines[1], "[WARN] 3") {
		t.Fatalf("unexpected field line: %q", lines[1])
	}
}

func TestConsoleFieldColorized(t *testing.T) {
	var buf bytes.Buffer
	con := &console{out: &buf, colorize: true}

	con.field("Workflow", statusError, "stopped")
	out := buf.String()
	if !strings.HasPrefix(out, ansiRed) || !strings.Contains(out, ansiReset) {
		t.Fatalf("expected red error line, got %q", out)
	}
}

func TestConsoleSection(t *testing.T) {
	var buf bytes.Buffer
	con := &console{out: &buf}

	con.section("  Queue ")
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and rule, got %q", buf.String())
	}
	if lines[0] != "== Queue ==" {
		t.Fatalf("header = %q", lines[0])
	}
	if lines[1] != strings.Repeat("-", len(lines[0])) {
		t.Fatalf("rule %q does not match header width", lines[1])
	}
}

func TestConsoleTablePadsShortRows(t *testing.T) {
	var buf bytes.Buffer
	con := &console{out: &buf}

	con.table(
		[]string{"ID", "Attempts"},
		[][]string{{"job-1", "2"}, {"job-2"}},
		1,
	)
	out := buf.String()
	for _, want := range []string{"ID", "Attempts", "job-1", "job-2"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table output missing %q: %s", want, out)
		}
	}
}
