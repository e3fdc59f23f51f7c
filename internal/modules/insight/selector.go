package insight

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/chatinsight/core/internal/config"
)

// autoOrder is tried when neither the request nor the configuration names a
// provider. Claude is only used when named.
var autoOrder = []string{ProviderGrok, ProviderGemini}

// Selector resolves provider names to providers built once at startup.
type Selector struct {
	defaultName string
	configured  map[string]bool
	providers   map[string]Provider
	stub        Provider
	log         *zap.Logger
}

// NewSelector builds every provider that has a credential.
func NewSelector(cfg config.LLMConfig, log *zap.Logger) *Selector {
	if log == nil {
		log = zap.NewNop()
	}
	httpClient := &http.Client{Timeout: cfg.Timeout}

	s := &Selector{
		defaultName: strings.ToLower(strings.TrimSpace(cfg.Provider)),
		configured: map[string]bool{
			ProviderGrok:   cfg.Grok.Configured(),
			ProviderGemini: cfg.Gemini.Configured(),
			ProviderClaude: cfg.Claude.Configured(),
		},
		providers: make(map[string]Provider, 3),
		stub:      NewStub(cfg.StubDelay),
		log:       log,
	}
	if cfg.Grok.Configured() {
		s.providers[ProviderGrok] = NewGrok(cfg.Grok, httpClient, log)
	}
	if cfg.Gemini.Configured() {
		s.providers[ProviderGemini] = NewGemini(cfg.Gemini, httpClient, log)
	}
	if cfg.Claude.Configured() {
		s.providers[ProviderClaude] = NewClaude(cfg.Claude, httpClient, log)
	}
	return s
}

// Select returns the provider for name. An empty name means the configured
// default, then the first credentialed provider in priority order. Unknown or
// uncredentialed names fall back to the stub with a warning.
func (s *Selector) Select(name string) Provider {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = s.defaultName
	}

	switch name {
	case "":
		for _, candidate := range autoOrder {
			if p, ok := s.providers[candidate]; ok {
				return p
			}
		}
		return s.stub
	case ProviderStub, "stub":
		return s.stub
	}

	if p, ok := s.providers[name]; ok {
		return p
	}
	if _, known := s.configured[name]; known {
		s.log.Warn("provider has no credential configured, using stub", zap.String("provider", name))
	} else {
		s.log.Warn("unknown provider requested, using stub", zap.String("provider", name))
	}
	return s.stub
}
