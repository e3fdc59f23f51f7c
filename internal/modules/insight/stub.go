package insight

import (
	"context"
	"time"

	"github.com/chatinsight/core/internal/models"
)

// StubSummary is the canned summary returned by the stub provider.
const StubSummary = "This is a mock summary of the conversation."

// Stub is a deterministic provider used when no remote credential is
// configured, and in tests.
type Stub struct {
	delay time.Duration
}

func NewStub(delay time.Duration) *Stub {
	return &Stub{delay: delay}
}

func (s *Stub) Name() string { return ProviderStub }

// wait simulates model latency and gives up early when ctx is done.
func (s *Stub) wait(ctx context.Context) {
	if s.delay <= 0 {
		return
	}
	t := time.NewTimer(s.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (s *Stub) GenerateSummary(ctx context.Context, _ []models.ChatMessage) string {
	s.wait(ctx)
	return StubSummary
}

func (s *Stub) ExtractActionItems(context.Context, []models.ChatMessage) []string { return []string{} }
func (s *Stub) ExtractDecisions(context.Context, []models.ChatMessage) []string   { return []string{} }
func (s *Stub) ExtractQuestions(context.Context, []models.ChatMessage) []string   { return []string{} }
func (s *Stub) ExtractKeywords(context.Context, []models.ChatMessage) []string    { return []string{} }

func (s *Stub) AnalyzeSentiment(context.Context, []models.ChatMessage) models.Sentiment {
	return models.SentimentNeutral
}

func (s *Stub) DetermineOutcome(context.Context, []models.ChatMessage) models.Outcome {
	return models.OutcomeMaybe
}

func (s *Stub) GenerateFullInsights(ctx context.Context, msgs []models.ChatMessage) models.Insights {
	out := models.DefaultInsights()
	out.Summary = s.GenerateSummary(ctx, msgs)
	return out
}
