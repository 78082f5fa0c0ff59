package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{
		BaseURL:     srv.URL,
		AccessToken: "tok-1",
		UserID:      "user-1",
	})
}

func TestListSessions(t *testing.T) {
	var gotPath, gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.String()
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(SessionPage{
			Sessions: []Session{
				{ID: "s-1", State: "chat", Title: "Refund call"},
				{ID: "s-2", State: "init"},
			},
			Total: 7,
		})
	})

	page, err := client.ListSessions(context.Background(), ListOptions{Limit: 10, Offset: 10, State: "chat"})
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.Contains(t, gotPath, "/api/v1/sessions?")
	assert.Contains(t, gotPath, "limit=10")
	assert.Contains(t, gotPath, "offset=10")
	assert.Contains(t, gotPath, "state=chat")

	want := &SessionPage{
		Sessions: []Session{
			{ID: "s-1", State: "chat", Title: "Refund call"},
			{ID: "s-2", State: "init"},
		},
		Total: 7,
	}
	if diff := cmp.Diff(want, page); diff != "" {
		t.Errorf("page mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateSession(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/sessions", r.URL.Path)
		_ = json.NewEncoder(w).Encode(Session{ID: "s-new", State: "init"})
	})

	s, err := client.CreateSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "s-new", s.ID)
}

func TestDeleteSession_Force(t *testing.T) {
	var gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		gotQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.DeleteSession(context.Background(), "s-1", true))
	assert.Equal(t, "force=true", gotQuery)
}

func TestErrorDecoding(t *testing.T) {
	t.Run("nested error object", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"code":"AUTH_EXPIRED","message":"token expired"}}`))
		})

		_, err := client.ListSessions(context.Background(), ListOptions{Limit: 10})
		var apiErr *Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "AUTH_EXPIRED", apiErr.Code)
		assert.Equal(t, "token expired", apiErr.Message)
		assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
		assert.Equal(t, "token expired (AUTH_EXPIRED)", apiErr.Error())
	})

	t.Run("flat error body", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"code":"SESSION_NOT_FOUND","message":"no such session"}`))
		})

		_, err := client.GetSession(context.Background(), "missing")
		var apiErr *Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "SESSION_NOT_FOUND", apiErr.Code)
	})

	t.Run("non-JSON body", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("upstream exploded"))
		})

		_, err := client.CreateSession(context.Background())
		var apiErr *Error
		require.ErrorAs(t, err, &apiErr)
		assert.Empty(t, apiErr.Code)
		assert.Equal(t, "request failed with status 502", apiErr.Message)
	})
}

func TestRequestCode(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/request_code", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "pat@example.com", body["email"])
		_ = json.NewEncoder(w).Encode(CodeGrant{RequestToken: "rt-1"})
	})

	grant, err := client.RequestCode(context.Background(), "pat@example.com")
	require.NoError(t, err)
	assert.Equal(t, "rt-1", grant.RequestToken)
}

func TestVerifyCode(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "123456", body["code"])
		assert.Equal(t, "rt-1", body["request_token"])
		_ = json.NewEncoder(w).Encode(Identity{ID: "u-1", Email: "pat@example.com", AccessToken: "tok-9"})
	})

	id, err := client.VerifyCode(context.Background(), "pat@example.com", "123456", "rt-1")
	require.NoError(t, err)
	assert.Equal(t, "tok-9", id.AccessToken)
}
