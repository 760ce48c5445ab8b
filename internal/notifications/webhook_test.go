package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhook_Notify(t *testing.T) {
	var (
		got        OutcomeNotification
		user, pass string
		hasAuth    bool
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		user, pass, hasAuth = r.BasicAuth()
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	finished := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	hook := &Webhook{URL: srv.URL, Username: "ops", Password: "secret", Verify: true}
	err := hook.Notify(context.Background(), OutcomeNotification{
		Service:    "retrysentry",
		SessionID:  "req-1",
		Name:       "constant",
		Policy:     "constant",
		State:      "exhausted",
		Attempts:   4,
		Message:    "unexpected error in service",
		FinishedAt: finished,
	})
	require.NoError(t, err)

	assert.True(t, hasAuth)
	assert.Equal(t, "ops", user)
	assert.Equal(t, "secret", pass)
	assert.Equal(t, "req-1", got.SessionID)
	assert.Equal(t, "exhausted", got.State)
	assert.Equal(t, 4, got.Attempts)
	assert.True(t, finished.Equal(got.FinishedAt))
}

func TestWebhook_NotifyWithoutAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _, ok := r.BasicAuth()
		assert.False(t, ok)
	}))
	defer srv.Close()

	hook := &Webhook{URL: srv.URL}
	assert.NoError(t, hook.Notify(context.Background(), OutcomeNotification{State: "succeeded"}))
}

func TestWebhook_NotifyErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"server error", http.StatusInternalServerError},
		{"unauthorized", http.StatusUnauthorized},
		{"redirect without location", http.StatusMultipleChoices},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			hook := &Webhook{URL: srv.URL}
			err := hook.Notify(context.Background(), OutcomeNotification{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), strconv.Itoa(tt.status))
		})
	}
}

func TestWebhook_Enabled(t *testing.T) {
	var nilHook *Webhook
	assert.False(t, nilHook.Enabled())
	assert.False(t, (&Webhook{}).Enabled())
	assert.True(t, (&Webhook{URL: "http://localhost"}).Enabled())
}
