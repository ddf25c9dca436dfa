package burrow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// API is the full burrowd contract the engine depends on. It is implemented
// by *Client and by test fakes.
type API interface {
	ServerStatus(ctx context.Context) (StatusResponse, error)
	RepositoryStatus(ctx context.Context) (RepoStatus, error)
	ListSnapshots(ctx context.Context) ([]Snapshot, error)
	ListSources(ctx context.Context) ([]Source, error)
	ListPolicies(ctx context.Context) ([]Policy, error)
	ListTasks(ctx context.Context) ([]Task, error)
	TasksSummary(ctx context.Context) (TaskSummary, error)
	ListMounts(ctx context.Context) ([]Mount, error)
	MaintenanceInfo(ctx context.Context) (MaintenanceInfo, error)

	CreateSnapshot(ctx context.Context, path string) error
	DeleteSnapshots(ctx context.Context, ids []string) error
	SetPolicy(ctx context.Context, policy Policy) error
	DeletePolicy(ctx context.Context, target string) error
	CancelTask(ctx context.Context, id string) error
	MountSnapshot(ctx context.Context, id string) error
	UnmountSnapshot(ctx context.Context, id string) error

	DialEvents(ctx context.Context) (EventStream, error)
}

// Ensure Client implements API at compile time.
var _ API = (*Client)(nil)

// Client talks to the burrowd HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	username  string
	password  string
	userAgent string
}

const (
	defaultAPIBind   = "127.0.0.1:9482"
	defaultUserAgent = "osprey/0.1"
	requestTimeout   = 10 * time.Second
)

// NewClient builds a Client using the provided apiBind host:port value and
// optional basic-auth credentials.
func NewClient(apiBind, username, password string) (*Client, error) {
	base, err := parseBaseURL(apiBind)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		username:  username,
		password:  password,
		userAgent: defaultUserAgent,
	}, nil
}

// ServerStatus retrieves daemon liveness and version information.
func (c *Client) ServerStatus(ctx context.Context) (StatusResponse, error) {
	var payload StatusResponse
	err := c.do(ctx, http.MethodGet, "/api/status", nil, &payload)
	return payload, err
}

// RepositoryStatus retrieves the connected repository description.
func (c *Client) RepositoryStatus(ctx context.Context) (RepoStatus, error) {
	var payload RepoStatus
	err := c.do(ctx, http.MethodGet, "/api/repo/status", nil, &payload)
	return payload, err
}

// ListSnapshots retrieves the snapshot inventory across all sources.
func (c *Client) ListSnapshots(ctx context.Context) ([]Snapshot, error) {
	var payload SnapshotListResponse
	if err := c.do(ctx, http.MethodGet, "/api/snapshots", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Snapshots, nil
}

// ListSources retrieves the configured backup sources.
func (c *Client) ListSources(ctx context.Context) ([]Source, error) {
	var payload SourceListResponse
	if err := c.do(ctx, http.MethodGet, "/api/sources", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Sources, nil
}

// ListPolicies retrieves all retention policies.
func (c *Client) ListPolicies(ctx context.Context) ([]Policy, error) {
	var payload PolicyListResponse
	if err := c.do(ctx, http.MethodGet, "/api/policies", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Policies, nil
}

// ListTasks retrieves the background task list, newest first.
func (c *Client) ListTasks(ctx context.Context) ([]Task, error) {
	var payload TaskListResponse
	if err := c.do(ctx, http.MethodGet, "/api/tasks", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Tasks, nil
}

// TasksSummary retrieves task counts keyed by status.
func (c *Client) TasksSummary(ctx context.Context) (TaskSummary, error) {
	var payload TaskSummary
	err := c.do(ctx, http.MethodGet, "/api/tasks-summary", nil, &payload)
	return payload, err
}

// ListMounts retrieves active snapshot mounts.
func (c *Client) ListMounts(ctx context.Context) ([]Mount, error) {
	var payload MountListResponse
	if err := c.do(ctx, http.MethodGet, "/api/mounts", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Mounts, nil
}

// MaintenanceInfo retrieves repository maintenance scheduling state.
func (c *Client) MaintenanceInfo(ctx context.Context) (MaintenanceInfo, error) {
	var payload MaintenanceInfo
	err := c.do(ctx, http.MethodGet, "/api/repo/maintenance", nil, &payload)
	return payload, err
}

// CreateSnapshot starts a snapshot of the given source path.
func (c *Client) CreateSnapshot(ctx context.Context, path string) error {
	body := map[string]string{"path": path}
	return c.do(ctx, http.MethodPost, "/api/snapshots", body, nil)
}

// DeleteSnapshots removes the identified snapshots.
func (c *Client) DeleteSnapshots(ctx context.Context, ids []string) error {
	body := map[string][]string{"ids": ids}
	return c.do(ctx, http.MethodPost, "/api/snapshots/delete", body, nil)
}

// SetPolicy creates or replaces the policy for its target.
func (c *Client) SetPolicy(ctx context.Context, policy Policy) error {
	return c.do(ctx, http.MethodPut, "/api/policies", policy, nil)
}

// DeletePolicy removes the policy for a target.
func (c *Client) DeletePolicy(ctx context.Context, target string) error {
	rel := &url.URL{Path: "/api/policies", RawQuery: url.Values{"target": {target}}.Encode()}
	return c.doURL(ctx, http.MethodDelete, rel, nil, nil)
}

// CancelTask requests cancellation of a running task.
func (c *Client) CancelTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/api/tasks/"+url.PathEscape(id)+"/cancel", nil, nil)
}

// MountSnapshot mounts a snapshot as a browsable filesystem.
func (c *Client) MountSnapshot(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/api/mounts/"+url.PathEscape(id), nil, nil)
}

// UnmountSnapshot removes a snapshot mount.
func (c *Client) UnmountSnapshot(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/mounts/"+url.PathEscape(id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	rel := &url.URL{Path: path}
	return c.doURL(ctx, method, rel, body, dest)
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, body, dest any) error {
	if c == nil {
		return &APIError{Kind: KindInternal, Message: "client is nil"}
	}
	reqURL := c.baseURL.ResolveReference(rel)

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Classify(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		var envelope errorBody
		_ = json.NewDecoder(resp.Body).Decode(&envelope)
		return statusError(resp.StatusCode, envelope)
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(apiBind string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiBind)
	if trimmed == "" {
		trimmed = defaultAPIBind
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_bind %q: %w", apiBind, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
