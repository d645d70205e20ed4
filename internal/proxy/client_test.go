package proxy

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/privcal/calagent/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(config.Config{
		ProxyURL:     server.URL,
		ProxyAPIKey:  "test-key",
		ProxyTimeout: 5 * time.Second,
	}, nil)
}

func TestListCalendarsSendsBearerCredential(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items": [{"id": "primary", "summary": "Work", "primary": true}]}`))
	})

	list, err := client.ListCalendars(context.Background(), ListCalendarsOptions{})
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-key", gotAuth)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "primary", list.Items[0].Id)
	assert.True(t, list.Items[0].Primary)
}

func TestListEventsQueryParameters(t *testing.T) {
	var gotQuery map[string][]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		assert.Equal(t, "/calendar/v3/calendars/primary/events", r.URL.Path)
		_, _ = w.Write([]byte(`{"items": [], "nextPageToken": "tok-2"}`))
	})

	timeMin := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	events, err := client.ListEvents(context.Background(), "primary", ListEventsOptions{
		MaxResults:   50,
		TimeMin:      timeMin,
		Query:        "standup",
		OrderBy:      "startTime",
		SingleEvents: true,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"true"}, gotQuery["singleEvents"])
	assert.Equal(t, []string{"50"}, gotQuery["maxResults"])
	assert.Equal(t, []string{"standup"}, gotQuery["q"])
	assert.Equal(t, []string{"startTime"}, gotQuery["orderBy"])
	assert.Equal(t, []string{timeMin.Format(time.RFC3339)}, gotQuery["timeMin"])
	assert.Equal(t, "tok-2", events.NextPageToken)
}

func TestAuthErrorOn401(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail": "API key expired"}`))
	})

	_, err := client.GetCalendar(context.Background(), "primary")
	require.Error(t, err)

	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Contains(t, authErr.Message, "API key expired")
}

func TestForbiddenErrorPlain403(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"detail": "write access disabled"}`))
	})

	_, err := client.GetEvent(context.Background(), "primary", "evt1", "")
	require.Error(t, err)

	var forbidden *ForbiddenError
	require.True(t, errors.As(err, &forbidden))
	assert.False(t, forbidden.ConfirmationRequired)
	assert.Contains(t, forbidden.Message, "write access disabled")
}

func TestForbiddenErrorConfirmationShape(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"detail": {"confirmation_required": true, "action": "delete", "target": "Team Meeting"}}`))
	})

	err := client.DeleteEvent(context.Background(), "primary", "evt1", WriteOptions{})
	require.Error(t, err)

	var forbidden *ForbiddenError
	require.True(t, errors.As(err, &forbidden))
	assert.True(t, forbidden.ConfirmationRequired)
	assert.Equal(t, "delete", forbidden.Action)
	assert.Equal(t, "Team Meeting", forbidden.Target)
	assert.Contains(t, forbidden.Message, "Team Meeting")
	assert.Contains(t, strings.ToLower(forbidden.Message), "confirm")
}

func TestConfirmationNotAssumedForAll403s(t *testing.T) {
	// A 403 without the documented shape must not be treated as a
	// confirmation request even on a delete.
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"detail": "calendar is read-only"}`))
	})

	err := client.DeleteEvent(context.Background(), "primary", "evt1", WriteOptions{})
	require.Error(t, err)

	var forbidden *ForbiddenError
	require.True(t, errors.As(err, &forbidden))
	assert.False(t, forbidden.ConfirmationRequired)
}

func TestNotFoundErrorOn404(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail": "Event not found"}`))
	})

	_, err := client.GetEvent(context.Background(), "primary", "missing", "")
	require.Error(t, err)

	var notFound *NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Contains(t, notFound.Message, "Event not found")
}

func TestRateLimitErrorOn429(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"detail": "slow down"}`))
	})

	_, err := client.ListCalendars(context.Background(), ListCalendarsOptions{})
	require.Error(t, err)

	var rateLimited *RateLimitError
	require.True(t, errors.As(err, &rateLimited))
	assert.Equal(t, 30*time.Second, rateLimited.RetryAfter)
	assert.Contains(t, rateLimited.Message, "slow down")
}

func TestRateLimitWithoutRetryAfterHint(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.ListCalendars(context.Background(), ListCalendarsOptions{})
	require.Error(t, err)

	var rateLimited *RateLimitError
	require.True(t, errors.As(err, &rateLimited))
	assert.Zero(t, rateLimited.RetryAfter)
}

func TestGenericErrorCarriesStatusAndTruncatedBody(t *testing.T) {
	longBody := strings.Repeat("x", 2000)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(longBody))
	})

	_, err := client.GetCalendar(context.Background(), "primary")
	require.Error(t, err)

	var proxyErr *Error
	require.True(t, errors.As(err, &proxyErr))
	assert.Equal(t, http.StatusBadGateway, proxyErr.StatusCode)
	assert.False(t, proxyErr.Connectivity)
	assert.Less(t, len(proxyErr.Body), len(longBody))
	assert.Contains(t, proxyErr.Body, "(truncated)")
}

func TestConnectivityFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	serverURL := server.URL
	server.Close() // nothing is listening anymore

	client := NewClient(config.Config{
		ProxyURL:     serverURL,
		ProxyAPIKey:  "test-key",
		ProxyTimeout: time.Second,
	}, nil)

	_, err := client.ListCalendars(context.Background(), ListCalendarsOptions{})
	require.Error(t, err)

	var proxyErr *Error
	require.True(t, errors.As(err, &proxyErr))
	assert.True(t, proxyErr.Connectivity)
	assert.Zero(t, proxyErr.StatusCode)
}

func TestDeleteEventNoContentIsSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "all", r.URL.Query().Get("sendUpdates"))
		w.WriteHeader(http.StatusNoContent)
	})

	err := client.DeleteEvent(context.Background(), "primary", "evt1", WriteOptions{SendUpdates: "all"})
	assert.NoError(t, err)
}

func TestCreateEventWriteOptions(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "none", r.URL.Query().Get("sendUpdates"))
		assert.Equal(t, "1", r.URL.Query().Get("conferenceDataVersion"))
		_, _ = w.Write([]byte(`{"id": "evt-new", "summary": "Planning"}`))
	})

	created, err := client.CreateEvent(context.Background(), "primary", nil, WriteOptions{
		SendUpdates:           "none",
		ConferenceDataVersion: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "evt-new", created.Id)
}

func TestPatchEventPassesBodyThrough(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), `"summary":"Renamed"`)
		_, _ = w.Write([]byte(`{"id": "evt1", "summary": "Renamed"}`))
	})

	patched, err := client.PatchEvent(context.Background(), "primary", "evt1",
		map[string]any{"summary": "Renamed"}, WriteOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", patched.Summary)
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"", 0},
		{"15", 15 * time.Second},
		{"-1", 0},
		{"soon", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseRetryAfter(tt.value), "value %q", tt.value)
	}
}
