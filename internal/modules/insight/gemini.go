package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/chatinsight/core/internal/config"
	"github.com/chatinsight/core/internal/models"
)

const (
	defaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel    = "gemini-pro"
)

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

// geminiCompleter calls the generateContent REST endpoint.
type geminiCompleter struct {
	http     *http.Client
	endpoint string
	model    string
	apiKey   string
}

// NewGemini builds the Gemini provider.
func NewGemini(cfg config.ProviderConfig, httpClient *http.Client, log *zap.Logger) Provider {
	endpoint := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	if endpoint == "" {
		endpoint = defaultGeminiEndpoint
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultGeminiModel
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	c := &geminiCompleter{
		http:     httpClient,
		endpoint: endpoint,
		model:    model,
		apiKey:   strings.TrimSpace(cfg.APIKey),
	}
	return newRemoteProvider(ProviderGemini, c, log)
}

func (g *geminiCompleter) url() string {
	return fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.endpoint, g.model, neturl.QueryEscape(g.apiKey))
}

func (g *geminiCompleter) complete(ctx context.Context, system string, msgs []models.ChatMessage) (string, error) {
	body, err := json.Marshal(geminiRequest{
		Contents: geminiContents(system, msgs),
		GenerationConfig: geminiGenerationConfig{
			Temperature:     0.1,
			TopP:            0.8,
			TopK:            40,
			MaxOutputTokens: 1000,
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url(), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("gemini error: status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var result struct {
		Candidates []struct {
			Content geminiContent `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", err
	}
	if len(result.Candidates) == 0 {
		return "", errors.New("empty response from gemini")
	}

	var text strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	return text.String(), nil
}

// geminiContents folds the instruction into a leading user turn since the
// endpoint has no system role.
func geminiContents(system string, msgs []models.ChatMessage) []geminiContent {
	out := make([]geminiContent, 0, len(msgs)+1)
	out = append(out, geminiContent{
		Role:  "user",
		Parts: []geminiPart{{Text: "System: " + system + "\n\nUser: "}},
	})
	for _, m := range msgs {
		role := "model"
		if m.UserType == models.UserTypeCustomer {
			role = "user"
		}
		out = append(out, geminiContent{Role: role, Parts: []geminiPart{{Text: m.MessageContent}}})
	}
	return out
}
