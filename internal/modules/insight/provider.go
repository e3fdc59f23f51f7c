package insight

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/chatinsight/core/internal/models"
)

const (
	ProviderGrok   = "grok"
	ProviderGemini = "gemini"
	ProviderClaude = "claude"
	ProviderStub   = "mock"
)

// Provider produces insights for a message list. Implementations never
// return errors: remote failures are logged and replaced by defaults.
type Provider interface {
	Name() string
	GenerateSummary(ctx context.Context, msgs []models.ChatMessage) string
	ExtractActionItems(ctx context.Context, msgs []models.ChatMessage) []string
	ExtractDecisions(ctx context.Context, msgs []models.ChatMessage) []string
	ExtractQuestions(ctx context.Context, msgs []models.ChatMessage) []string
	AnalyzeSentiment(ctx context.Context, msgs []models.ChatMessage) models.Sentiment
	DetermineOutcome(ctx context.Context, msgs []models.ChatMessage) models.Outcome
	ExtractKeywords(ctx context.Context, msgs []models.ChatMessage) []string
	GenerateFullInsights(ctx context.Context, msgs []models.ChatMessage) models.Insights
}

// completer sends one instruction plus the conversation to a remote model
// and returns its raw text.
type completer interface {
	complete(ctx context.Context, system string, msgs []models.ChatMessage) (string, error)
}

// remoteProvider implements Provider on top of a vendor completer.
type remoteProvider struct {
	name string
	c    completer
	log  *zap.Logger
}

func newRemoteProvider(name string, c completer, log *zap.Logger) *remoteProvider {
	if log == nil {
		log = zap.NewNop()
	}
	return &remoteProvider{name: name, c: c, log: log.With(zap.String("provider", name))}
}

func (p *remoteProvider) Name() string { return p.name }

func (p *remoteProvider) ask(ctx context.Context, f field, msgs []models.ChatMessage) (string, bool) {
	raw, err := p.c.complete(ctx, prompts[f], msgs)
	if err != nil {
		p.log.Warn("provider call failed", zap.String("field", string(f)), zap.Error(err))
		return "", false
	}
	return raw, true
}

func (p *remoteProvider) GenerateSummary(ctx context.Context, msgs []models.ChatMessage) string {
	raw, _ := p.ask(ctx, fieldSummary, msgs)
	return ParseSummary(raw)
}

func (p *remoteProvider) list(ctx context.Context, f field, msgs []models.ChatMessage) []string {
	raw, ok := p.ask(ctx, f, msgs)
	if !ok {
		return []string{}
	}
	return ParseList(f, raw)
}

func (p *remoteProvider) ExtractActionItems(ctx context.Context, msgs []models.ChatMessage) []string {
	return p.list(ctx, fieldActionItems, msgs)
}

func (p *remoteProvider) ExtractDecisions(ctx context.Context, msgs []models.ChatMessage) []string {
	return p.list(ctx, fieldDecisions, msgs)
}

func (p *remoteProvider) ExtractQuestions(ctx context.Context, msgs []models.ChatMessage) []string {
	return p.list(ctx, fieldQuestions, msgs)
}

func (p *remoteProvider) ExtractKeywords(ctx context.Context, msgs []models.ChatMessage) []string {
	return p.list(ctx, fieldKeywords, msgs)
}

func (p *remoteProvider) AnalyzeSentiment(ctx context.Context, msgs []models.ChatMessage) models.Sentiment {
	raw, ok := p.ask(ctx, fieldSentiment, msgs)
	if !ok {
		return models.SentimentNeutral
	}
	return ParseSentiment(raw)
}

func (p *remoteProvider) DetermineOutcome(ctx context.Context, msgs []models.ChatMessage) models.Outcome {
	raw, ok := p.ask(ctx, fieldOutcome, msgs)
	if !ok {
		return models.OutcomeMaybe
	}
	return ParseOutcome(raw)
}

// GenerateFullInsights asks for the whole bundle in one call. A response
// that is not a JSON object is retried field by field; no response at all
// yields the default bundle.
func (p *remoteProvider) GenerateFullInsights(ctx context.Context, msgs []models.ChatMessage) models.Insights {
	raw, ok := p.ask(ctx, fieldAll, msgs)
	if !ok || strings.TrimSpace(raw) == "" {
		return models.DefaultInsights()
	}
	if out, ok := ParseInsights(raw); ok {
		return out
	}

	p.log.Info("full insights response was not JSON, extracting fields one by one")
	return models.Insights{
		Summary:     p.GenerateSummary(ctx, msgs),
		ActionItems: p.ExtractActionItems(ctx, msgs),
		Decisions:   p.ExtractDecisions(ctx, msgs),
		Questions:   p.ExtractQuestions(ctx, msgs),
		Sentiment:   p.AnalyzeSentiment(ctx, msgs),
		Outcome:     p.DetermineOutcome(ctx, msgs),
		Keywords:    p.ExtractKeywords(ctx, msgs),
	}.Normalize()
}
