package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/kmaclean/osprey/internal/burrow"
)

// renderHeader renders the one-line status bar above the task table.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()

	var parts []string
	parts = append(parts, styles.Logo.Render("osprey"))

	server := m.eng.ServerStatus()
	switch {
	case server.Err != "":
		parts = append(parts, styles.DangerText.Render("● "+headlineFor(server.Err)))
	case server.HasValue && server.Value.Running:
		parts = append(parts, styles.SuccessText.Render("● ON"))
	case server.HasValue:
		parts = append(parts, styles.DangerText.Render("● OFF"))
	default:
		parts = append(parts, styles.WarningText.Render("● connecting..."))
	}

	repo := m.eng.RepoStatus()
	if repo.HasValue && repo.Value.Connected {
		label := "repo"
		if repo.Value.Storage != "" {
			label = repo.Value.Storage
		}
		parts = append(parts, styles.InfoText.Render(label)+" "+styles.SuccessText.Render("connected"))
	} else if repo.HasValue {
		parts = append(parts, styles.InfoText.Render("repo")+" "+styles.MutedText.Render("disconnected"))
	}

	if snaps := m.eng.Snapshots(); snaps.HasValue && len(snaps.Value) > 0 {
		parts = append(parts,
			styles.MutedText.Render("last snap:")+" "+styles.Text.Render(relativeAge(latestSnapshotTime(snaps.Value))))
	}

	if m.eng.IsPushConnected() {
		parts = append(parts, styles.AccentText.Render("PUSH"))
	} else if m.eng.IsPolling() {
		parts = append(parts, styles.MutedText.Render("POLL"))
	}

	parts = append(parts, m.renderTaskCounts(styles)...)

	if m.notice != "" {
		parts = append(parts, styles.WarningText.Render(truncate(m.notice, 60)))
	}

	return styles.Header.Width(m.width).Render(strings.Join(parts, "  "))
}

// renderTaskCounts summarizes the task summary counts, skipping zeroes.
func (m Model) renderTaskCounts(styles Styles) []string {
	summary := m.eng.TaskSummary()
	if !summary.HasValue {
		return nil
	}

	type entry struct {
		status string
		label  string
	}
	order := []entry{
		{burrow.TaskRunning, "run"},
		{burrow.TaskPending, "wait"},
		{burrow.TaskFailed, "fail"},
	}

	var parts []string
	for _, e := range order {
		n := summary.Value[e.status]
		if n == 0 {
			continue
		}
		parts = append(parts,
			styles.MutedText.Render(e.label+":")+styles.StatusStyle(e.status).Render(fmt.Sprintf("%d", n)))
	}
	return parts
}

// renderCommandBar renders the key hints at the bottom of the screen.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles()

	type cmd struct{ key, desc string }
	commands := []cmd{
		{"j/k", "Navigate"},
		{"c", "Cancel task"},
		{"r", "Refresh"},
		{"p", pushLabel(m.eng.UsePush())},
		{"T", m.theme.Name},
		{"q", "Quit"},
	}

	segments := make([]string, 0, len(commands))
	for _, c := range commands {
		segments = append(segments,
			styles.AccentText.Render(c.key)+":"+styles.MutedText.Render(c.desc))
	}

	return styles.Footer.Width(m.width).Render(strings.Join(segments, "  "))
}

func pushLabel(enabled bool) string {
	if enabled {
		return "Push off"
	}
	return "Push on"
}

// headlineFor condenses a stored fetch error into a short badge.
func headlineFor(msg string) string {
	switch {
	case strings.Contains(msg, "not running"), strings.Contains(msg, "connection refused"):
		return "OFFLINE"
	case strings.Contains(msg, "timeout"):
		return "TIMEOUT"
	case strings.Contains(msg, "authentication"), strings.Contains(msg, "credentials"):
		return "AUTH"
	default:
		return "ERROR"
	}
}

// shortID trims a task ID for table display.
func shortID(id string) string {
	if len(id) <= 12 {
		return id
	}
	return id[:12]
}

// formatProgress fills the PROG column: percentage while running, total
// duration once the task is terminal.
func formatProgress(task burrow.Task) string {
	if burrow.IsTerminalStatus(task.Status) {
		return formatTaskDuration(task)
	}
	if task.Status != burrow.TaskRunning {
		return ""
	}
	if task.Progress <= 0 {
		return "-"
	}
	return fmt.Sprintf("%3.0f%%", task.Progress*100)
}

func formatTaskDuration(task burrow.Task) string {
	start := task.ParsedStartTime()
	end := task.ParsedEndTime()
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return ""
	}
	return end.Sub(start).Round(time.Second).String()
}

func formatStarted(task burrow.Task) string {
	start := task.ParsedStartTime()
	if start.IsZero() {
		return ""
	}
	return start.Local().Format("15:04:05")
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func latestSnapshotTime(snapshots []burrow.Snapshot) time.Time {
	var latest time.Time
	for _, s := range snapshots {
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
			if t, err := time.Parse(layout, s.StartTime); err == nil {
				if t.After(latest) {
					latest = t
				}
				break
			}
		}
	}
	return latest
}

// relativeAge renders how long ago a timestamp was, for snapshot rows.
func relativeAge(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	since := time.Since(t)
	switch {
	case since < time.Minute:
		return "now"
	case since < time.Hour:
		return fmt.Sprintf("%dm ago", int(since.Minutes()))
	case since < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(since.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(since.Hours()/24))
	}
}
