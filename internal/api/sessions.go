package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
)

// Session is the remote conversation entity. State values observed:
// init, active, chat, task_processing, task_finished.
type Session struct {
	ID        string `json:"id"`
	State     string `json:"state"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// SessionPage is one page of a session listing.
type SessionPage struct {
	Sessions []Session `json:"sessions"`
	Total    int       `json:"total"`
}

// ListOptions filters and paginates ListSessions.
type ListOptions struct {
	State  string
	Limit  int
	Offset int
}

// TaskResult is the acknowledgement for task start/stop.
type TaskResult struct {
	Message string `json:"message"`
}

// ListSessions returns one page of sessions plus the reported total.
func (c *Client) ListSessions(ctx context.Context, opts ListOptions) (*SessionPage, error) {
	q := query(map[string]string{
		"limit":  strconv.Itoa(opts.Limit),
		"offset": strconv.Itoa(opts.Offset),
		"state":  opts.State,
	})
	out := &SessionPage{}
	if err := c.Do(ctx, http.MethodGet, "/api/v1/sessions"+q, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetSession fetches session metadata.
func (c *Client) GetSession(ctx context.Context, id string) (*Session, error) {
	out := &Session{}
	if err := c.Do(ctx, http.MethodGet, "/api/v1/sessions/"+id, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateSession creates a fresh session.
func (c *Client) CreateSession(ctx context.Context) (*Session, error) {
	out := &Session{}
	if err := c.Do(ctx, http.MethodPost, "/api/v1/sessions", nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteSession deletes a session, optionally forcing removal of sessions
// with running tasks.
func (c *Client) DeleteSession(ctx context.Context, id string, force bool) error {
	path := "/api/v1/sessions/" + id
	if force {
		path += query(map[string]string{"force": "true"})
	}
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}

// StartTask starts task execution for a session.
func (c *Client) StartTask(ctx context.Context, id string) (*TaskResult, error) {
	out := &TaskResult{}
	path := fmt.Sprintf("/api/v1/sessions/%s/task/start", id)
	if err := c.Do(ctx, http.MethodPost, path, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// StopTask stops a running task.
func (c *Client) StopTask(ctx context.Context, id string) (*TaskResult, error) {
	out := &TaskResult{}
	path := fmt.Sprintf("/api/v1/sessions/%s/task/stop", id)
	if err := c.Do(ctx, http.MethodPost, path, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}
