package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chatinsight/core/internal/config"
	"github.com/chatinsight/core/internal/models"
	"github.com/chatinsight/core/internal/modules/insight"
)

func newTestApp(t *testing.T) (*App, string) {
	t.Helper()
	cfg := config.Default()
	cfg.Env = "test"
	cfg.Storage.Driver = config.DriverMemory
	cfg.LLM.StubDelay = 0
	cfg.RateLimit.RequestsPerMinute = 1000

	a, err := New(context.Background(), zap.NewNop(), &cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })

	u := &models.User{Email: "ops@example.com", APIKey: "test-key"}
	require.NoError(t, a.Store().CreateUser(context.Background(), u))
	return a, u.APIKey
}

func call(a *App, method, path, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}
	w := httptest.NewRecorder()
	a.Router().ServeHTTP(w, req)
	return w
}

func TestEndToEnd(t *testing.T) {
	a, key := newTestApp(t)

	assert.Equal(t, http.StatusOK, call(a, http.MethodGet, "/health", "", "").Code)
	assert.Equal(t, http.StatusOK, call(a, http.MethodGet, "/api/v1/health", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(a, http.MethodPost, "/api/v1/chats/summarize", "", `{"conversation_id":"c1"}`).Code)

	msg := `{"conversation_id":"c1","message_id":"m1","message_content":"My card was charged twice","user_id":"u1","user_type":"customer"}`
	require.Equal(t, http.StatusCreated, call(a, http.MethodPost, "/api/v1/chats", key, msg).Code)

	w := call(a, http.MethodPost, "/api/v1/chats/summarize", key, `{"conversation_id":"c1"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var summary models.ConversationSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, insight.StubSummary, summary.Summary)
	assert.Equal(t, models.OutcomeMaybe, summary.Outcome)

	assert.Equal(t, http.StatusOK, call(a, http.MethodGet, "/api/v1/chats/c1/summary", key, "").Code)
	assert.Equal(t, http.StatusNoContent, call(a, http.MethodDelete, "/api/v1/chats/c1", key, "").Code)
	assert.Equal(t, http.StatusNotFound, call(a, http.MethodGet, "/api/v1/chats/c1/summary", key, "").Code)
	assert.Equal(t, http.StatusNotFound, call(a, http.MethodPost, "/api/v1/chats/summarize", key, `{"conversation_id":"c1"}`).Code)
}

func TestNewRejectsBadTrustedProxy(t *testing.T) {
	cfg := config.Default()
	cfg.Env = "test"
	cfg.Storage.Driver = config.DriverMemory
	cfg.TrustedProxies = []string{"not-an-ip"}

	_, err := New(context.Background(), zap.NewNop(), &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trusted_proxies")
}

func TestOpenStoreUnknownDriver(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Driver = "cassandra"
	_, err := OpenStore(context.Background(), &cfg)
	assert.Error(t, err)
}

func TestMatchOriginPattern(t *testing.T) {
	cases := []struct {
		pattern, origin string
		want            bool
	}{
		{"https://app.example.com", "https://app.example.com", true},
		{"app.example.com", "https://app.example.com", true},
		{"*.example.com", "https://dash.example.com", true},
		{"*.example.com", "https://example.org", false},
		{"localhost:*", "http://localhost:8501", true},
		{"localhost:*", "http://127.0.0.1:8501", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, matchOriginPattern(tc.pattern, extractOriginHost(tc.origin)), tc.pattern+" "+tc.origin)
	}
	assert.True(t, containsWildcard([]string{"a.com", "*"}))
}
