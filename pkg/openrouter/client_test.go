package openrouter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteSuccess(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"the stars align"}}]}`))
	}))
	defer srv.Close()

	c := New("test-key", srv.URL, 0.2, 400, 5*time.Second)
	res, err := c.Complete(context.Background(), "deepseek/deepseek-chat-v3.1:free", "be brief", "hello")
	require.NoError(t, err)

	assert.Equal(t, "the stars align", res.Text)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Greater(t, res.Duration, time.Duration(0))

	assert.Equal(t, "deepseek/deepseek-chat-v3.1:free", gotBody["model"])
	msgs, ok := gotBody["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
}

func TestCompleteProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"rate_limit"}}`))
	}))
	defer srv.Close()

	c := New("test-key", srv.URL, 0.2, 400, 5*time.Second)
	res, err := c.Complete(context.Background(), "some/model", "", "hello")
	require.Error(t, err)

	// The status still comes back for the audit row.
	assert.Equal(t, http.StatusTooManyRequests, res.StatusCode)
	assert.Empty(t, res.Text)
}

func TestFriendly(t *testing.T) {
	assert.Contains(t, Friendly(http.StatusUnauthorized), "OPENROUTER_API_KEY")
	assert.Contains(t, Friendly(http.StatusTooManyRequests), "later")
	assert.Contains(t, Friendly(http.StatusTeapot), "unavailable")
}
