package insight

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatinsight/core/internal/config"
	"github.com/chatinsight/core/internal/models"
)

func newTestRouter(t *testing.T) (*gin.Engine, *testEnv) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc, mem, p := newTestService(t)
	r := gin.New()
	NewHandler(svc, nil).RegisterRoutes(r.Group("/api/v1"), func(c *gin.Context) { c.Next() })
	return r, &testEnv{seed: func(id string) { seed(t, mem, id) }, provider: p}
}

type testEnv struct {
	seed     func(string)
	provider *countingProvider
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSummarizeEndpoint(t *testing.T) {
	r, env := newTestRouter(t)
	env.seed("c1")

	w := do(r, http.MethodPost, "/api/v1/chats/summarize", `{"conversation_id":"c1"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got models.ConversationSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "c1", got.ConversationID)
	assert.Equal(t, "Refund issued", got.Summary)

	w = do(r, http.MethodGet, "/api/v1/chats/c1/summary", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int32(1), env.provider.calls.Load())
}

func TestSummarizeEndpointErrors(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(r, http.MethodPost, "/api/v1/chats/summarize", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/api/v1/chats/summarize", `{"conversation_id":"nope"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Conversation nope not found")

	w = do(r, http.MethodGet, "/api/v1/chats/nope/summary", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInsightsEndpoint(t *testing.T) {
	r, env := newTestRouter(t)

	body := `[{"conversation_id":"x","message_id":"1","message_content":"hi","user_id":"u","user_type":"customer"}]`
	w := do(r, http.MethodPost, "/api/v1/chats/insights", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got models.Insights
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, models.SentimentPositive, got.Sentiment)
	assert.Equal(t, []string{}, got.Questions)
	assert.Equal(t, int32(1), env.provider.calls.Load())

	w = do(r, http.MethodPost, "/api/v1/chats/insights", `[]`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/api/v1/chats/insights", `[{"conversation_id":"x","message_content":"hi","user_id":"u","user_type":"robot"}]`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInsightsEndpointWithStub(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sel := NewSelector(config.LLMConfig{}, nil)
	svc := NewService(nil, nil, sel, nil)
	r := gin.New()
	NewHandler(svc, nil).RegisterRoutes(r.Group("/api/v1"), func(c *gin.Context) { c.Next() })

	body := `[{"conversation_id":"x","message_content":"hi","user_id":"u","user_type":"support_agent"}]`
	w := do(r, http.MethodPost, "/api/v1/chats/insights?provider=grok", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), StubSummary)
}
