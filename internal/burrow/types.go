package burrow

import "time"

// Task statuses reported by the daemon.
const (
	TaskRunning  = "RUNNING"
	TaskPending  = "PENDING"
	TaskSuccess  = "SUCCESS"
	TaskFailed   = "FAILED"
	TaskCanceled = "CANCELED"
)

// IsTerminalStatus reports whether a task status can no longer change.
func IsTerminalStatus(status string) bool {
	switch status {
	case TaskSuccess, TaskFailed, TaskCanceled:
		return true
	}
	return false
}

// StatusResponse mirrors /api/status.
type StatusResponse struct {
	Running       bool   `json:"running"`
	Version       string `json:"version"`
	PID           int    `json:"pid"`
	UptimeSeconds int64  `json:"uptimeSeconds"`
	ConfigPath    string `json:"configPath"`
}

// RepoStatus mirrors /api/repo/status.
type RepoStatus struct {
	Connected   bool   `json:"connected"`
	ConfigFile  string `json:"configFile"`
	Storage     string `json:"storage"`
	Description string `json:"description"`
	ReadOnly    bool   `json:"readOnly"`
	Hash        string `json:"hash"`
	Encryption  string `json:"encryption"`
}

// Source identifies a backed-up directory and its latest activity.
type Source struct {
	Path           string `json:"path"`
	Status         string `json:"status"`
	LastSnapshot   string `json:"lastSnapshot"`
	NextSnapshot   string `json:"nextSnapshot"`
	PendingUploads int64  `json:"pendingUploads"`
}

// Snapshot describes one stored snapshot of a source.
type Snapshot struct {
	ID         string `json:"id"`
	SourcePath string `json:"sourcePath"`
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime"`
	SizeBytes  int64  `json:"sizeBytes"`
	FileCount  int64  `json:"fileCount"`
	DirCount   int64  `json:"dirCount"`
	Incomplete bool   `json:"incomplete"`
	Pinned     bool   `json:"pinned"`
}

// Policy carries retention and scheduling rules for a target path.
type Policy struct {
	Target        string `json:"target"`
	KeepLatest    int    `json:"keepLatest"`
	KeepHourly    int    `json:"keepHourly"`
	KeepDaily     int    `json:"keepDaily"`
	KeepWeekly    int    `json:"keepWeekly"`
	KeepMonthly   int    `json:"keepMonthly"`
	KeepAnnual    int    `json:"keepAnnual"`
	Schedule      string `json:"schedule"`
	Compression   string `json:"compression"`
	IgnoreRules   []string `json:"ignoreRules"`
	NoParentRules bool   `json:"noParentRules"`
}

// Task describes a background operation inside the daemon.
type Task struct {
	ID          string  `json:"id"`
	Kind        string  `json:"kind"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Progress    float64 `json:"progress"`
	StartTime   string  `json:"startTime"`
	EndTime     string  `json:"endTime"`
	ErrorMsg    string  `json:"errorMessage"`
}

// TaskListResponse mirrors /api/tasks.
type TaskListResponse struct {
	Tasks []Task `json:"tasks"`
}

// TaskSummary mirrors /api/tasks-summary: counts keyed by status.
type TaskSummary map[string]int

// Mount reports an active snapshot mount.
type Mount struct {
	SnapshotID string `json:"snapshotId"`
	MountPoint string `json:"mountPoint"`
	Root       string `json:"root"`
}

// MountListResponse mirrors /api/mounts.
type MountListResponse struct {
	Mounts []Mount `json:"mounts"`
}

// MaintenanceInfo mirrors /api/repo/maintenance.
type MaintenanceInfo struct {
	Enabled      bool   `json:"enabled"`
	Owner        string `json:"owner"`
	LastQuickRun string `json:"lastQuickRun"`
	LastFullRun  string `json:"lastFullRun"`
	NextQuickRun string `json:"nextQuickRun"`
	NextFullRun  string `json:"nextFullRun"`
}

// SnapshotListResponse mirrors /api/snapshots.
type SnapshotListResponse struct {
	Snapshots []Snapshot `json:"snapshots"`
}

// SourceListResponse mirrors /api/sources.
type SourceListResponse struct {
	Sources []Source `json:"sources"`
}

// PolicyListResponse mirrors /api/policies.
type PolicyListResponse struct {
	Policies []Policy `json:"policies"`
}

// ParsedStartTime returns the task start time as time.Time when possible.
func (t Task) ParsedStartTime() time.Time {
	return parseTime(t.StartTime)
}

// ParsedEndTime returns the task end time as time.Time when possible.
func (t Task) ParsedEndTime() time.Time {
	return parseTime(t.EndTime)
}

// Label returns the human-facing identity of a task for notifications and
// table rows: the description when present, the kind otherwise.
func (t Task) Label() string {
	if t.Description != "" {
		return t.Description
	}
	return t.Kind
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
