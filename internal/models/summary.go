package models

import (
	"strings"
	"time"
)

// Sentiment is the overall tone of a conversation.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
	SentimentMixed    Sentiment = "mixed"
)

func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNegative, SentimentNeutral, SentimentMixed:
		return true
	}
	return false
}

// Outcome says whether the customer's issue was resolved.
type Outcome string

const (
	OutcomeYes     Outcome = "yes"
	OutcomeNo      Outcome = "no"
	OutcomeMaybe   Outcome = "maybe"
	OutcomeCurious Outcome = "curious"
)

func (o Outcome) Valid() bool {
	switch o {
	case OutcomeYes, OutcomeNo, OutcomeMaybe, OutcomeCurious:
		return true
	}
	return false
}

// DefaultSummaryText replaces a summary the provider failed to produce.
const DefaultSummaryText = "Failed to generate summary."

// Insights is the seven-field bundle produced for one conversation.
type Insights struct {
	Summary     string    `json:"summary"`
	ActionItems []string  `json:"action_items"`
	Decisions   []string  `json:"decisions"`
	Questions   []string  `json:"questions"`
	Sentiment   Sentiment `json:"sentiment"`
	Outcome     Outcome   `json:"outcome"`
	Keywords    []string  `json:"keywords"`
}

// DefaultInsights is the bundle used when the provider returned nothing.
func DefaultInsights() Insights {
	return Insights{
		Summary:     DefaultSummaryText,
		ActionItems: []string{},
		Decisions:   []string{},
		Questions:   []string{},
		Sentiment:   SentimentNeutral,
		Outcome:     OutcomeMaybe,
		Keywords:    []string{},
	}
}

// Normalize returns a copy that satisfies the stored schema: a non-empty
// summary, valid enums and non-nil lists holding only non-empty strings.
func (i Insights) Normalize() Insights {
	out := Insights{
		Summary:     strings.TrimSpace(i.Summary),
		ActionItems: CleanList(i.ActionItems),
		Decisions:   CleanList(i.Decisions),
		Questions:   CleanList(i.Questions),
		Sentiment:   i.Sentiment,
		Outcome:     i.Outcome,
		Keywords:    CleanList(i.Keywords),
	}
	if out.Summary == "" {
		out.Summary = DefaultSummaryText
	}
	if !out.Sentiment.Valid() {
		out.Sentiment = SentimentNeutral
	}
	if !out.Outcome.Valid() {
		out.Outcome = OutcomeMaybe
	}
	return out
}

// CleanList trims every entry and drops the empty ones. It never returns nil.
func CleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if v := strings.TrimSpace(item); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// ConversationSummary is the stored insight bundle of one conversation.
type ConversationSummary struct {
	ID             uint        `json:"-"               bson:"-"               gorm:"primaryKey;autoIncrement"`
	ConversationID string      `json:"conversation_id" bson:"conversation_id" gorm:"size:191;not null;uniqueIndex"`
	Summary        string      `json:"summary"         bson:"summary"         gorm:"type:text;not null"`
	ActionItems    StringArray `json:"action_items"    bson:"action_items"    gorm:"type:text"`
	Decisions      StringArray `json:"decisions"       bson:"decisions"       gorm:"type:text"`
	Questions      StringArray `json:"questions"       bson:"questions"       gorm:"type:text"`
	Sentiment      Sentiment   `json:"sentiment"       bson:"sentiment"       gorm:"size:16;not null"`
	Outcome        Outcome     `json:"outcome"         bson:"outcome"         gorm:"size:16;not null"`
	Keywords       StringArray `json:"keywords"        bson:"keywords"        gorm:"type:text"`
	CreatedAt      time.Time   `json:"created_at"      bson:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"      bson:"updated_at"`
}

func (ConversationSummary) TableName() string { return "conversation_summaries" }

// NewSummary builds the stored form of a normalised bundle. Both timestamps
// are set to now; the store keeps the original created_at on replacement.
func NewSummary(conversationID string, insights Insights, now time.Time) *ConversationSummary {
	n := insights.Normalize()
	return &ConversationSummary{
		ConversationID: conversationID,
		Summary:        n.Summary,
		ActionItems:    n.ActionItems,
		Decisions:      n.Decisions,
		Questions:      n.Questions,
		Sentiment:      n.Sentiment,
		Outcome:        n.Outcome,
		Keywords:       n.Keywords,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Insights returns the bundle held by the summary.
func (s *ConversationSummary) Insights() Insights {
	return Insights{
		Summary:     s.Summary,
		ActionItems: s.ActionItems.Strings(),
		Decisions:   s.Decisions.Strings(),
		Questions:   s.Questions.Strings(),
		Sentiment:   s.Sentiment,
		Outcome:     s.Outcome,
		Keywords:    s.Keywords.Strings(),
	}
}
