package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsightsNormalize(t *testing.T) {
	got := Insights{
		Summary:     "  ",
		ActionItems: []string{" call back ", "", "  "},
		Sentiment:   "angry",
		Outcome:     OutcomeCurious,
	}.Normalize()

	assert.Equal(t, DefaultSummaryText, got.Summary)
	assert.Equal(t, []string{"call back"}, got.ActionItems)
	assert.NotNil(t, got.Decisions)
	assert.NotNil(t, got.Questions)
	assert.NotNil(t, got.Keywords)
	assert.Equal(t, SentimentNeutral, got.Sentiment)
	assert.Equal(t, OutcomeCurious, got.Outcome)
}

func TestSummaryJSONNeverNull(t *testing.T) {
	s := &ConversationSummary{ConversationID: "c1", Sentiment: SentimentMixed, Outcome: OutcomeNo}
	b, err := json.Marshal(s)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))
	for _, key := range []string{"action_items", "decisions", "questions", "keywords"} {
		assert.Equal(t, []any{}, decoded[key], key)
	}
	assert.NotContains(t, decoded, "id")
}

func TestNewSummaryRoundTrip(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	in := Insights{Summary: "ok", Keywords: []string{"refund"}, Sentiment: SentimentPositive, Outcome: OutcomeYes}
	s := NewSummary("c1", in, now)

	assert.Equal(t, now, s.CreatedAt)
	assert.Equal(t, now, s.UpdatedAt)
	assert.Equal(t, in.Normalize(), s.Insights())
}

func TestStringArrayScan(t *testing.T) {
	cases := map[string]struct {
		in   any
		want StringArray
	}{
		"nil":    {nil, StringArray{}},
		"null":   {"null", StringArray{}},
		"json":   {[]byte(`["a","b"]`), StringArray{"a", "b"}},
		"legacy": {"plain", StringArray{"plain"}},
		"empty":  {"[]", StringArray{}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			var a StringArray
			require.NoError(t, a.Scan(tc.in))
			assert.Equal(t, tc.want, a)
		})
	}

	var a StringArray
	assert.Error(t, a.Scan(42))

	v, err := StringArray(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
}

func TestParseUserType(t *testing.T) {
	ut, ok := ParseUserType(" Support_Agent ")
	assert.True(t, ok)
	assert.Equal(t, UserTypeSupportAgent, ut)

	_, ok = ParseUserType("bot")
	assert.False(t, ok)
}

func TestChatMessageValidate(t *testing.T) {
	m := ChatMessage{ConversationID: "c", MessageContent: "hi", UserID: "u", UserType: UserTypeCustomer}
	require.NoError(t, m.Validate())

	bad := m
	bad.UserType = "robot"
	assert.Error(t, bad.Validate())

	bad = m
	bad.MessageContent = "  "
	assert.Error(t, bad.Validate())
}
