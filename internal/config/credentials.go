// Package config manages the Pine CLI credential file.
//
// Credentials live in a single JSON file under the user's home directory
// (~/.pine/config.json). The file is read fully and written fully; the CLI
// process is short-lived so there is no locking. Concurrent invocations
// racing on login/logout are a documented limitation.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultBaseURL is the Pine AI endpoint used when none is saved.
const DefaultBaseURL = "https://www.19pine.ai"

// ErrNotLoggedIn is returned by RequireAuth when no usable credentials exist.
var ErrNotLoggedIn = errors.New("not logged in: run 'pine auth login' first")

// Credentials is the on-disk credential record.
type Credentials struct {
	AccessToken string `json:"access_token,omitempty"`
	UserID      string `json:"user_id,omitempty"`
	Email       string `json:"email,omitempty"`
	BaseURL     string `json:"base_url,omitempty"`
}

// DefaultPath returns ~/.pine/config.json, falling back to a relative path
// when the home directory cannot be resolved.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".pine", "config.json")
	}
	return filepath.Join(home, ".pine", "config.json")
}

// Load reads credentials from path. A missing or unparseable file means
// "no credentials" and yields an empty record, never an error: load is
// only fatal when the file exists but cannot be read at all.
func Load(path string) (*Credentials, error) {
	creds := &Credentials{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return creds, nil
		}
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}

	if err := json.Unmarshal(data, creds); err != nil {
		// Corrupt file is treated as logged out; re-login overwrites it.
		return &Credentials{}, nil
	}

	return creds, nil
}

// Save writes the full record to path, creating the directory if needed.
// The file is user-only: it holds an access token.
func (c *Credentials) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}

	return nil
}

// Clear overwrites path with an empty record (logout).
func Clear(path string) error {
	empty := &Credentials{}
	return empty.Save(path)
}

// LoggedIn reports whether the record carries a usable token.
func (c *Credentials) LoggedIn() bool {
	return c.AccessToken != "" && c.UserID != ""
}

// ResolveBaseURL picks the override, then the saved URL, then the default.
func (c *Credentials) ResolveBaseURL(override string) string {
	if override != "" {
		return override
	}
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return DefaultBaseURL
}

// RequireAuth loads credentials from path and fails with ErrNotLoggedIn
// when they are missing or incomplete.
func RequireAuth(path string) (*Credentials, error) {
	creds, err := Load(path)
	if err != nil {
		return nil, err
	}
	if !creds.LoggedIn() {
		return nil, ErrNotLoggedIn
	}
	return creds, nil
}
