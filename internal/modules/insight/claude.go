package insight

import (
	"context"
	"errors"
	"net/http"
	"strings"

	anthropicclient "github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	jetai "go.jetify.com/ai"
	jetapi "go.jetify.com/ai/api"
	jetanthropic "go.jetify.com/ai/provider/anthropic"
	"go.uber.org/zap"

	"github.com/chatinsight/core/internal/config"
	"github.com/chatinsight/core/internal/models"
)

const defaultClaudeModel = "claude-haiku-4-5-20251001"

type claudeCompleter struct {
	model jetapi.LanguageModel
}

// NewClaude builds the Claude provider. It is only used when a request or
// the configuration names it.
func NewClaude(cfg config.ProviderConfig, httpClient *http.Client, log *zap.Logger) Provider {
	modelID := strings.TrimSpace(cfg.Model)
	if modelID == "" {
		modelID = defaultClaudeModel
	}

	opts := []anthropicoption.RequestOption{
		anthropicoption.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		anthropicoption.WithMaxRetries(0),
	}
	if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
		opts = append(opts, anthropicoption.WithBaseURL(strings.TrimRight(endpoint, "/")))
	}
	if httpClient != nil {
		opts = append(opts, anthropicoption.WithHTTPClient(httpClient))
	}

	client := anthropicclient.NewClient(opts...)
	c := &claudeCompleter{model: jetanthropic.NewLanguageModel(modelID, jetanthropic.WithClient(client))}
	return newRemoteProvider(ProviderClaude, c, log)
}

func (c *claudeCompleter) complete(ctx context.Context, system string, msgs []models.ChatMessage) (string, error) {
	resp, err := jetai.GenerateText(
		ctx,
		claudeMessages(system, msgs),
		jetai.WithModel(c.model),
		jetai.WithMaxOutputTokens(1000),
	)
	if err != nil {
		return "", err
	}
	return responseText(resp)
}

func claudeMessages(system string, msgs []models.ChatMessage) []jetapi.Message {
	out := make([]jetapi.Message, 0, len(msgs)+1)
	out = append(out, &jetapi.SystemMessage{Content: system})
	for _, m := range msgs {
		if m.UserType == models.UserTypeCustomer {
			out = append(out, &jetapi.UserMessage{Content: jetapi.ContentFromText(m.MessageContent)})
		} else {
			out = append(out, &jetapi.AssistantMessage{Content: jetapi.ContentFromText(m.MessageContent)})
		}
	}
	return out
}

func responseText(resp *jetapi.Response) (string, error) {
	if resp == nil {
		return "", errors.New("empty response from claude")
	}
	var full strings.Builder
	for _, block := range resp.Content {
		if text, ok := block.(*jetapi.TextBlock); ok {
			full.WriteString(text.Text)
		}
	}
	return full.String(), nil
}
