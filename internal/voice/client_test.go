package voice

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pinecli/internal/api"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := New(api.New(api.Config{BaseURL: srv.URL, AccessToken: "tok"}))
	c.pollInterval = 5 * time.Millisecond
	return c
}

func TestCreate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/voice/calls", r.URL.Path)

		var req CallRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "+14155551234", req.To)
		assert.Equal(t, "Acme Support", req.Name)

		_ = json.NewEncoder(w).Encode(Call{CallID: "call-1", Status: "initiated"})
	})

	call, err := client.Create(context.Background(), CallRequest{
		To:        "+14155551234",
		Name:      "Acme Support",
		Context:   "Double-charged invoice",
		Objective: "Get a refund",
	})
	require.NoError(t, err)
	assert.Equal(t, "call-1", call.CallID)
	assert.False(t, call.Finished())
}

func TestCreateAndWait_PollsToCompletion(t *testing.T) {
	var gets atomic.Int64
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			_ = json.NewEncoder(w).Encode(Call{CallID: "call-1", Status: "dialing"})
			return
		}
		switch gets.Add(1) {
		case 1:
			_ = json.NewEncoder(w).Encode(Call{CallID: "call-1", Status: "in_progress", DurationSeconds: 12})
		default:
			_ = json.NewEncoder(w).Encode(Call{
				CallID:          "call-1",
				Status:          "completed",
				DurationSeconds: 95,
				Summary:         "Refund confirmed",
				CreditsCharged:  3,
				Transcript: []TranscriptEntry{
					{Speaker: "agent", Text: "Hello, calling about an invoice."},
				},
			})
		}
	})

	var statuses []string
	call, err := client.CreateAndWait(context.Background(),
		CallRequest{To: "+1", Name: "x", Context: "c", Objective: "o"},
		func(c *Call) { statuses = append(statuses, c.Status) })

	require.NoError(t, err)
	assert.Equal(t, "completed", call.Status)
	assert.Equal(t, "Refund confirmed", call.Summary)
	assert.Equal(t, []string{"dialing", "in_progress", "completed"}, statuses)
}

func TestCreateAndWait_ContextCancelled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Call{CallID: "call-1", Status: "in_progress"})
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := client.CreateAndWait(ctx, CallRequest{To: "+1", Name: "x", Context: "c", Objective: "o"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFinished(t *testing.T) {
	for status, want := range map[string]bool{
		"completed":   true,
		"failed":      true,
		"cancelled":   true,
		"dialing":     false,
		"in_progress": false,
		"":            false,
	} {
		assert.Equal(t, want, (&Call{Status: status}).Finished(), "status %q", status)
	}
}
