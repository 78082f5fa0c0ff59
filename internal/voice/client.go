// Package voice wraps the synchronous voice-call API: place a call, poll
// it to completion, fetch its status. One blocking request/response
// surface, no streaming.
package voice

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"pinecli/internal/api"
)

const defaultPollInterval = 5 * time.Second

// Client places and monitors voice calls through the REST API.
type Client struct {
	api          *api.Client
	pollInterval time.Duration
}

// New wraps an authenticated API client.
func New(apiClient *api.Client) *Client {
	return &Client{api: apiClient, pollInterval: defaultPollInterval}
}

// CallRequest describes the call to place. To is E.164.
type CallRequest struct {
	To                 string `json:"to"`
	Name               string `json:"name"`
	Context            string `json:"context"`
	Objective          string `json:"objective"`
	Instructions       string `json:"instructions,omitempty"`
	Caller             string `json:"caller,omitempty"` // negotiator | communicator
	Voice              string `json:"voice,omitempty"`  // male | female
	MaxDurationMinutes int    `json:"max_duration_minutes,omitempty"`
	EnableSummary      bool   `json:"enable_summary,omitempty"`
}

// TranscriptEntry is one line of a completed call's transcript.
type TranscriptEntry struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// Call is the service's view of a voice call. Summary, credits, and
// transcript are only populated once the call has finished.
type Call struct {
	CallID          string            `json:"call_id"`
	Status          string            `json:"status"`
	DurationSeconds int               `json:"duration_seconds,omitempty"`
	Summary         string            `json:"summary,omitempty"`
	CreditsCharged  int               `json:"credits_charged,omitempty"`
	Transcript      []TranscriptEntry `json:"transcript,omitempty"`
}

// Finished reports whether the call reached a terminal status.
func (c *Call) Finished() bool {
	switch c.Status {
	case "completed", "failed", "cancelled":
		return true
	}
	return false
}

// Create places a call without waiting for it to finish.
func (c *Client) Create(ctx context.Context, req CallRequest) (*Call, error) {
	out := &Call{}
	if err := c.api.Do(ctx, http.MethodPost, "/api/v1/voice/calls", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches the current status of a call.
func (c *Client) Get(ctx context.Context, callID string) (*Call, error) {
	out := &Call{}
	if err := c.api.Do(ctx, http.MethodGet, "/api/v1/voice/calls/"+callID, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateAndWait places a call and polls until it reaches a terminal
// status. onProgress, when non-nil, fires on every status change.
func (c *Client) CreateAndWait(ctx context.Context, req CallRequest, onProgress func(*Call)) (*Call, error) {
	call, err := c.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	if onProgress != nil {
		onProgress(call)
	}
	if call.Finished() {
		return call, nil
	}

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	lastStatus := call.Status
	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("call %s still %s: %w", call.CallID, call.Status, ctx.Err())
		case <-ticker.C:
			call, err = c.Get(ctx, call.CallID)
			if err != nil {
				return nil, err
			}
			if onProgress != nil && call.Status != lastStatus {
				onProgress(call)
				lastStatus = call.Status
			}
			if call.Finished() {
				return call, nil
			}
		}
	}
}
