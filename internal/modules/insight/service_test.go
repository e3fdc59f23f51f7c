package insight

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatinsight/core/internal/config"
	"github.com/chatinsight/core/internal/models"
	"github.com/chatinsight/core/internal/store"
)

// countingProvider wraps the stub and counts bundle requests.
type countingProvider struct {
	*Stub
	calls atomic.Int32
	out   models.Insights
}

func (p *countingProvider) GenerateFullInsights(context.Context, []models.ChatMessage) models.Insights {
	p.calls.Add(1)
	return p.out
}

type fixedSelector struct{ p Provider }

func (s fixedSelector) Select(string) Provider { return s.p }

func newTestService(t *testing.T) (*Service, *store.Memory, *countingProvider) {
	t.Helper()
	mem := store.NewMemory()
	p := &countingProvider{Stub: NewStub(0), out: models.Insights{
		Summary:   "Refund issued",
		Keywords:  []string{"refund"},
		Sentiment: models.SentimentPositive,
		Outcome:   models.OutcomeYes,
	}}
	svc := NewService(mem, mem, fixedSelector{p}, nil)
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	return svc, mem, p
}

func seed(t *testing.T, mem *store.Memory, conversationID string) {
	t.Helper()
	for i, m := range conversation() {
		m.ConversationID = conversationID
		m.Timestamp = time.Date(2024, 5, 1, 10, i, 0, 0, time.UTC)
		require.NoError(t, mem.InsertMessage(context.Background(), &m))
	}
}

func TestSummarizeIsComputedOnce(t *testing.T) {
	ctx := context.Background()
	svc, mem, p := newTestService(t)
	seed(t, mem, "c1")

	first, err := svc.Summarize(ctx, "c1", "")
	require.NoError(t, err)
	assert.Equal(t, "Refund issued", first.Summary)
	assert.Equal(t, models.OutcomeYes, first.Outcome)
	assert.Equal(t, models.StringArray{}, first.ActionItems)

	second, err := svc.Summarize(ctx, "c1", "")
	require.NoError(t, err)

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	assert.JSONEq(t, string(a), string(b))
	assert.Equal(t, int32(1), p.calls.Load())

	stored, err := svc.GetSummary(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Refund issued", stored.Summary)
}

func TestSummarizeUnknownConversation(t *testing.T) {
	svc, _, p := newTestService(t)

	_, err := svc.Summarize(context.Background(), "missing", "")
	require.ErrorIs(t, err, ErrConversationNotFound)
	assert.Zero(t, p.calls.Load())

	_, err = svc.GetSummary(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSummaryNotFound)
}

func TestSummarizeAfterDelete(t *testing.T) {
	ctx := context.Background()
	svc, mem, p := newTestService(t)
	seed(t, mem, "c1")

	_, err := svc.Summarize(ctx, "c1", "")
	require.NoError(t, err)

	deleted, err := mem.DeleteConversation(ctx, "c1")
	require.NoError(t, err)
	require.True(t, deleted)

	_, err = svc.Summarize(ctx, "c1", "")
	require.ErrorIs(t, err, ErrConversationNotFound)
	assert.Equal(t, int32(1), p.calls.Load())
}

func TestServiceClockMatchesStorePrecision(t *testing.T) {
	svc := NewService(nil, nil, nil, nil)
	for range 5 {
		assert.Zero(t, svc.now().Nanosecond()%int(time.Millisecond))
	}
}

func TestGenerateInsights(t *testing.T) {
	svc, mem, p := newTestService(t)

	_, err := svc.GenerateInsights(context.Background(), nil, "")
	require.ErrorIs(t, err, ErrNoMessages)

	got, err := svc.GenerateInsights(context.Background(), conversation(), "")
	require.NoError(t, err)
	assertSchema(t, got)
	assert.Equal(t, "Refund issued", got.Summary)
	assert.Equal(t, int32(1), p.calls.Load())

	_, err = mem.GetSummary(context.Background(), "c1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSelector(t *testing.T) {
	none := NewSelector(config.LLMConfig{}, nil)
	assert.Equal(t, ProviderStub, none.Select("").Name())
	assert.Equal(t, ProviderStub, none.Select("grok").Name())
	assert.Equal(t, ProviderStub, none.Select("nonsense").Name())

	both := NewSelector(config.LLMConfig{
		Grok:   config.ProviderConfig{APIKey: "g"},
		Gemini: config.ProviderConfig{APIKey: "m"},
		Claude: config.ProviderConfig{APIKey: "c"},
	}, nil)
	assert.Equal(t, ProviderGrok, both.Select("").Name())
	assert.Equal(t, ProviderGemini, both.Select(" Gemini ").Name())
	assert.Equal(t, ProviderClaude, both.Select("claude").Name())
	assert.Equal(t, ProviderStub, both.Select("stub").Name())

	geminiOnly := NewSelector(config.LLMConfig{Gemini: config.ProviderConfig{APIKey: "m"}, Claude: config.ProviderConfig{APIKey: "c"}}, nil)
	assert.Equal(t, ProviderGemini, geminiOnly.Select("").Name())

	configured := NewSelector(config.LLMConfig{Provider: "claude", Claude: config.ProviderConfig{APIKey: "c"}}, nil)
	assert.Equal(t, ProviderClaude, configured.Select("").Name())
	assert.Equal(t, ProviderStub, configured.Select("mock").Name())
}
