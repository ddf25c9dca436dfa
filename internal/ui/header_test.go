package ui

import (
	"testing"
	"time"

	"github.com/kmaclean/osprey/internal/burrow"
)

func TestTruncate(t *testing.T) {
	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly-ten", 11, "exactly-ten"},
		{"this is a longer string", 10, "this is..."},
		{"abc", 2, "ab"},
		{"abc", 0, ""},
	}
	for _, c := range cases {
		if got := truncate(c.in, c.max); got != c.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", c.in, c.max, got, c.want)
		}
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("abc"); got != "abc" {
		t.Fatalf("shortID(abc) = %q", got)
	}
	if got := shortID("0123456789abcdef"); got != "0123456789ab" {
		t.Fatalf("shortID trimmed to %q", got)
	}
}

func TestFormatProgress(t *testing.T) {
	running := burrow.Task{Status: burrow.TaskRunning, Progress: 0.42}
	if got := formatProgress(running); got != " 42%" {
		t.Fatalf("formatProgress(running 0.42) = %q", got)
	}
	unknown := burrow.Task{Status: burrow.TaskRunning}
	if got := formatProgress(unknown); got != "-" {
		t.Fatalf("formatProgress(running, no progress) = %q", got)
	}
	done := burrow.Task{
		Status:    burrow.TaskSuccess,
		Progress:  1,
		StartTime: "2026-08-20T10:00:00Z",
		EndTime:   "2026-08-20T10:01:30Z",
	}
	if got := formatProgress(done); got != "1m30s" {
		t.Fatalf("formatProgress(terminal) = %q, want total duration", got)
	}
	noTimes := burrow.Task{Status: burrow.TaskFailed}
	if got := formatProgress(noTimes); got != "" {
		t.Fatalf("formatProgress(terminal without times) = %q, want empty", got)
	}
	backwards := burrow.Task{
		Status:    burrow.TaskCanceled,
		StartTime: "2026-08-20T10:01:00Z",
		EndTime:   "2026-08-20T10:00:00Z",
	}
	if got := formatProgress(backwards); got != "" {
		t.Fatalf("formatProgress(end before start) = %q, want empty", got)
	}
}

func TestHeadlineFor(t *testing.T) {
	cases := map[string]string{
		"backup server is not running":  "OFFLINE",
		"dial tcp: connection refused":  "OFFLINE",
		"request timeout exceeded":      "TIMEOUT",
		"authentication failed":         "AUTH",
		"push channel needs credentials": "AUTH",
		"something exploded":            "ERROR",
	}
	for msg, want := range cases {
		if got := headlineFor(msg); got != want {
			t.Errorf("headlineFor(%q) = %q, want %q", msg, got, want)
		}
	}
}

func TestRelativeAge(t *testing.T) {
	if got := relativeAge(time.Time{}); got != "never" {
		t.Fatalf("relativeAge(zero) = %q", got)
	}
	if got := relativeAge(time.Now().Add(-10 * time.Second)); got != "now" {
		t.Fatalf("relativeAge(10s ago) = %q", got)
	}
	if got := relativeAge(time.Now().Add(-5 * time.Minute)); got != "5m ago" {
		t.Fatalf("relativeAge(5m ago) = %q", got)
	}
	if got := relativeAge(time.Now().Add(-3 * time.Hour)); got != "3h ago" {
		t.Fatalf("relativeAge(3h ago) = %q", got)
	}
	if got := relativeAge(time.Now().Add(-49 * time.Hour)); got != "2d ago" {
		t.Fatalf("relativeAge(49h ago) = %q", got)
	}
}

func TestLatestSnapshotTime(t *testing.T) {
	snapshots := []burrow.Snapshot{
		{ID: "a", StartTime: "2026-08-20T10:00:00Z"},
		{ID: "b", StartTime: "2026-08-22T09:30:00Z"},
		{ID: "c", StartTime: "not-a-time"},
	}
	got := latestSnapshotTime(snapshots)
	want := time.Date(2026, 8, 22, 9, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("latestSnapshotTime = %v, want %v", got, want)
	}
	if !latestSnapshotTime(nil).IsZero() {
		t.Fatal("latestSnapshotTime(nil) should be zero")
	}
}
