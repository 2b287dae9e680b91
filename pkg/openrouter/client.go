// Package openrouter wraps the OpenRouter chat-completion API, which is
// OpenAI-compatible, behind a single-call client. Callers get back the
// reply text plus the status code and duration needed for the audit log.
package openrouter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultBaseURL is the OpenRouter API root.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

// Result carries one completed (or failed) provider call.
type Result struct {
	Text       string
	StatusCode int
	Duration   time.Duration
}

// Client is a thin chat-completion client.
type Client struct {
	api         *openai.Client
	temperature float32
	maxTokens   int
}

// New creates a client. An empty baseURL means DefaultBaseURL.
func New(apiKey, baseURL string, temperature float32, maxTokens int, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if maxTokens <= 0 {
		maxTokens = 400
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	return &Client{
		api:         openai.NewClientWithConfig(cfg),
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

// Complete sends one system+user exchange to the given model. The Result
// is populated even on error, so the caller can audit failed calls.
func (c *Client) Complete(ctx context.Context, model, system, user string) (Result, error) {
	var messages []openai.ChatCompletionMessage
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: user,
	})

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	res := Result{Duration: time.Since(start)}

	if err != nil {
		res.StatusCode = statusOf(err)
		return res, fmt.Errorf("openrouter completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		res.StatusCode = http.StatusOK
		return res, errors.New("openrouter: no choices returned")
	}

	res.StatusCode = http.StatusOK
	res.Text = resp.Choices[0].Message.Content
	return res, nil
}

func statusOf(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

// Friendly maps a provider status code to a user-facing message.
func Friendly(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "The request was malformed."
	case http.StatusUnauthorized:
		return "The OpenRouter key was rejected. Check OPENROUTER_API_KEY."
	case http.StatusForbidden:
		return "No access to this model."
	case http.StatusNotFound:
		return "Endpoint not found. Check the provider base URL."
	case http.StatusTooManyRequests:
		return "Free-tier limits exceeded. Try again later."
	default:
		return "The service is unavailable. Try again later."
	}
}
