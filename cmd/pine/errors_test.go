package main

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"pinecli/internal/api"
	"pinecli/internal/config"
	"pinecli/internal/render"
)

func TestExitCodeFor(t *testing.T) {
	assert.Equal(t, exitInterrupted, exitCodeFor(errInterrupted))
	assert.Equal(t, exitInterrupted, exitCodeFor(fmt.Errorf("wrapped: %w", errInterrupted)))
	assert.Equal(t, exitFailure, exitCodeFor(errors.New("boom")))
	assert.Equal(t, exitFailure, exitCodeFor(&api.Error{Code: "RATE_LIMITED", Message: "slow down"}))
	assert.Equal(t, exitFailure, exitCodeFor(config.ErrNotLoggedIn))
}

func TestReportError_APIErrorKeepsCode(t *testing.T) {
	var buf bytes.Buffer
	console := render.NewConsole(&buf)

	reportError(console, &api.Error{Code: "SESSION_NOT_FOUND", Message: "no such session", Status: 404})

	out := buf.String()
	assert.Contains(t, out, "SESSION_NOT_FOUND")
	assert.Contains(t, out, "no such session")
	assert.NotContains(t, out, "404", "HTTP status is diagnostic, not user output")
}

func TestReportError_APIErrorWithoutCode(t *testing.T) {
	var buf bytes.Buffer
	console := render.NewConsole(&buf)

	reportError(console, &api.Error{Message: "request failed", Status: 500})

	out := buf.String()
	assert.Contains(t, out, "Error: request failed")
	assert.NotContains(t, out, "()")
}

func TestReportError_Interrupted(t *testing.T) {
	var buf bytes.Buffer
	console := render.NewConsole(&buf)

	reportError(console, errInterrupted)

	assert.Contains(t, buf.String(), "Interrupted.")
	assert.NotContains(t, buf.String(), "Error")
}

func TestReportError_WrappedAPIError(t *testing.T) {
	var buf bytes.Buffer
	console := render.NewConsole(&buf)

	wrapped := fmt.Errorf("join session: %w", &api.Error{Code: "FORBIDDEN", Message: "not yours"})
	reportError(console, wrapped)

	assert.Contains(t, buf.String(), "FORBIDDEN")
}

func TestReportError_PlainError(t *testing.T) {
	var buf bytes.Buffer
	console := render.NewConsole(&buf)

	reportError(console, errors.New("dial tcp: connection refused"))

	assert.Contains(t, buf.String(), "Error: dial tcp: connection refused")
}
