package insight

import (
	"context"
	"errors"
	"net/http"
	"strings"

	openai "github.com/openai/openai-go/v2"
	openaioption "github.com/openai/openai-go/v2/option"
	"go.uber.org/zap"

	"github.com/chatinsight/core/internal/config"
	"github.com/chatinsight/core/internal/models"
)

const (
	defaultGrokEndpoint = "https://api.grok.com/v1"
	defaultGrokModel    = "grok-1"
)

// grokCompleter talks to Grok's OpenAI-compatible chat completions API.
type grokCompleter struct {
	client openai.Client
	model  string
}

// NewGrok builds the Grok provider. The endpoint must include the /v1 path.
func NewGrok(cfg config.ProviderConfig, httpClient *http.Client, log *zap.Logger) Provider {
	endpoint := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	if endpoint == "" {
		endpoint = defaultGrokEndpoint
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultGrokModel
	}

	opts := []openaioption.RequestOption{
		openaioption.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		openaioption.WithBaseURL(endpoint),
		openaioption.WithMaxRetries(0),
	}
	if httpClient != nil {
		opts = append(opts, openaioption.WithHTTPClient(httpClient))
	}

	c := &grokCompleter{client: openai.NewClient(opts...), model: model}
	return newRemoteProvider(ProviderGrok, c, log)
}

func (g *grokCompleter) complete(ctx context.Context, system string, msgs []models.ChatMessage) (string, error) {
	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(g.model),
		Messages:    grokMessages(system, msgs),
		Temperature: openai.Float(0.1),
		MaxTokens:   openai.Int(1000),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty response from grok")
	}
	return resp.Choices[0].Message.Content, nil
}

func grokMessages(system string, msgs []models.ChatMessage) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs)+1)
	out = append(out, openai.SystemMessage(system))
	for _, m := range msgs {
		if m.UserType == models.UserTypeCustomer {
			out = append(out, openai.UserMessage(m.MessageContent))
		} else {
			out = append(out, openai.AssistantMessage(m.MessageContent))
		}
	}
	return out
}
