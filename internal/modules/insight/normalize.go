package insight

import (
	"encoding/json"
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/chatinsight/core/internal/models"
)

var errInvalidJSON = errors.New("invalid JSON response from model")

// ParseInsights decodes a full-insights response. It reports false when the
// text holds no JSON object, which sends the caller down the per-field path.
// Keys that are absent or of the wrong type take their defaults.
func ParseInsights(raw string) (models.Insights, bool) {
	var obj map[string]json.RawMessage
	if err := decodeModelObject(raw, &obj); err != nil || obj == nil {
		return models.Insights{}, false
	}

	out := models.DefaultInsights()
	if s, ok := stringField(obj, fieldSummary); ok {
		out.Summary = s
	}
	out.ActionItems = listField(obj, fieldActionItems)
	out.Decisions = listField(obj, fieldDecisions)
	out.Questions = listField(obj, fieldQuestions)
	out.Keywords = listField(obj, fieldKeywords)
	if s, ok := stringField(obj, fieldSentiment); ok {
		out.Sentiment = ParseSentiment(s)
	}
	if s, ok := stringField(obj, fieldOutcome); ok {
		out.Outcome = ParseOutcome(s)
	}
	return out.Normalize(), true
}

// ParseSummary trims a summary response, substituting the failure text for
// an empty one.
func ParseSummary(raw string) string {
	if s := strings.TrimSpace(raw); s != "" {
		return s
	}
	return models.DefaultSummaryText
}

// ParseList turns a list-field response into items. A JSON array of strings
// is used as is; otherwise the text is split into lines (commas for
// keywords). Action items and decisions drop header lines ending in ":",
// questions keep only lines ending in "?", keywords keep tokens longer than
// one character.
func ParseList(f field, raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}
	}

	var arr []any
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &arr); err == nil {
		return stringItems(arr)
	}

	out := make([]string, 0)
	if f == fieldKeywords {
		for _, token := range strings.Split(raw, ",") {
			token = strings.TrimSpace(token)
			if utf8.RuneCountInString(token) > 1 {
				out = append(out, token)
			}
		}
		return out
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		switch f {
		case fieldQuestions:
			if !strings.HasSuffix(line, "?") {
				continue
			}
		default:
			if strings.HasSuffix(line, ":") {
				continue
			}
		}
		out = append(out, line)
	}
	return out
}

// ParseSentiment maps free text onto a sentiment. Exact values win, then
// containment in the order positive, negative, mixed, else neutral.
func ParseSentiment(raw string) models.Sentiment {
	s := strings.ToLower(strings.TrimSpace(raw))
	if v := models.Sentiment(s); v.Valid() {
		return v
	}
	switch {
	case strings.Contains(s, "positive"):
		return models.SentimentPositive
	case strings.Contains(s, "negative"):
		return models.SentimentNegative
	case strings.Contains(s, "mixed"):
		return models.SentimentMixed
	default:
		return models.SentimentNeutral
	}
}

// ParseOutcome maps free text onto an outcome. Exact values win. Negative
// phrasing is checked before "yes"/"resolved" so "not resolved" reads as no.
func ParseOutcome(raw string) models.Outcome {
	s := strings.ToLower(strings.TrimSpace(raw))
	if v := models.Outcome(s); v.Valid() {
		return v
	}
	switch {
	case strings.Contains(s, "not resolved"), strings.Contains(s, "unresolved"), hasWord(s, "no"):
		return models.OutcomeNo
	case strings.Contains(s, "yes"), strings.Contains(s, "resolved"):
		return models.OutcomeYes
	case strings.Contains(s, "no"):
		return models.OutcomeNo
	case strings.Contains(s, "curious"), strings.Contains(s, "question"):
		return models.OutcomeCurious
	default:
		return models.OutcomeMaybe
	}
}

func hasWord(s, word string) bool {
	for _, w := range strings.FieldsFunc(s, func(r rune) bool { return !unicode.IsLetter(r) }) {
		if w == word {
			return true
		}
	}
	return false
}

func stringField(obj map[string]json.RawMessage, f field) (string, bool) {
	v, ok := obj[string(f)]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

func listField(obj map[string]json.RawMessage, f field) []string {
	v, ok := obj[string(f)]
	if !ok {
		return []string{}
	}
	var decoded any
	if err := json.Unmarshal(v, &decoded); err != nil {
		return []string{}
	}
	switch t := decoded.(type) {
	case []any:
		return stringItems(t)
	case string:
		return ParseList(f, t)
	default:
		return []string{}
	}
}

func stringItems(items []any) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func stripCodeFence(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```JSON")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}

// decodeModelObject accepts a bare JSON object, one wrapped in a code fence,
// or one surrounded by prose.
func decodeModelObject(raw string, out any) error {
	cleaned := stripCodeFence(raw)
	if err := json.Unmarshal([]byte(cleaned), out); err == nil {
		return nil
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), out); err == nil {
			return nil
		}
	}
	return errInvalidJSON
}
