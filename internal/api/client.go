// Package api is the REST client for the Pine AI service: authentication,
// session CRUD, task lifecycle. The live event stream lives in
// internal/stream; everything request/response shaped goes through here.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 60 * time.Second

// Client talks to the Pine AI REST API.
type Client struct {
	baseURL    string
	token      string
	userID     string
	httpClient *http.Client
}

// Config holds client construction options.
type Config struct {
	BaseURL     string
	AccessToken string
	UserID      string
	Timeout     time.Duration
}

// New creates an API client. AccessToken may be empty for the
// pre-authentication endpoints (request/verify code).
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.AccessToken,
		userID:  cfg.UserID,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// BaseURL returns the endpoint the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// UserID returns the authenticated user id, if any.
func (c *Client) UserID() string {
	return c.userID
}

// AccessToken returns the bearer token, if any.
func (c *Client) AccessToken() string {
	return c.token
}

// Do sends one JSON request and decodes the response into out (when out is
// non-nil). Non-2xx responses become *Error with the service error code
// when the body carries one.
func (c *Client) Do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.userID != "" {
		req.Header.Set("X-Pine-User-Id", c.userID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, data)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// query builds an encoded query string from non-empty values.
func query(params map[string]string) string {
	values := url.Values{}
	for k, v := range params {
		if v != "" {
			values.Set(k, v)
		}
	}
	if len(values) == 0 {
		return ""
	}
	return "?" + values.Encode()
}
