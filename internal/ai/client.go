// Package ai calls the OpenRouter text-generation service and parses its
// structured JSON answers. The paper-trading core never depends on it.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"investopaper/internal/apperr"
	"investopaper/internal/config"
)

const (
	openRouterBaseURL = "https://openrouter.ai/api/v1"
	defaultModel      = "openai/gpt-4o-mini"
)

// Message is one chat-completion message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Temperature float64   `json:"temperature"`
	TopP        float64   `json:"top_p"`
	Messages    []Message `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Client talks to the OpenRouter chat-completions endpoint.
type Client struct {
	client *resty.Client
	apiKey string
	model  string
	logger *zap.Logger
}

// NewClient creates an OpenRouter client from configuration.
func NewClient(cfg *config.AI, logger *zap.Logger) *Client {
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	return &Client{
		client: resty.New().SetBaseURL(openRouterBaseURL),
		apiKey: cfg.APIKey,
		model:  model,
		logger: logger,
	}
}

// Complete sends the messages with temperature 0 and returns the model's
// answer parsed as a JSON object.
func (c *Client) Complete(ctx context.Context, messages []Message) (map[string]any, error) {
	if c.apiKey == "" {
		return nil, apperr.NotImplemented("OpenRouter API key is not configured")
	}

	var result chatResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(c.apiKey).
		SetHeader("X-Title", "InvestoPaper").
		SetBody(chatRequest{Model: c.model, Temperature: 0, TopP: 1, Messages: messages}).
		SetResult(&result).
		Post("/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("openrouter request failed: %w", err)
	}
	if resp.IsError() {
		return nil, apperr.Upstream("openrouter request failed (%d): %s", resp.StatusCode(), resp.String())
	}

	if len(result.Choices) == 0 || result.Choices[0].Message.Content == "" {
		return nil, apperr.Upstream("openrouter returned an empty response")
	}

	return parseJSONContent(result.Choices[0].Message.Content)
}

// parseJSONContent decodes the answer as JSON, falling back to the first
// top-level object embedded in surrounding prose.
func parseJSONContent(content string) (map[string]any, error) {
	var parsed map[string]any
	if err := json.Unmarshal([]byte(content), &parsed); err == nil {
		return parsed, nil
	}

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return nil, apperr.Upstream("openrouter response was not valid JSON")
	}
	if err := json.Unmarshal([]byte(content[start:end+1]), &parsed); err != nil {
		return nil, apperr.Upstream("openrouter response was not valid JSON")
	}
	return parsed, nil
}
