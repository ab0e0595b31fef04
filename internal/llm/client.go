package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hetulpatel/arbscanner/internal/logging"
)

const (
	defaultBaseURL    = "https://api.tokenfactory.nebius.com/v1"
	defaultModel      = "openai/gpt-oss-120b"
	defaultMaxTokens  = 400
	defaultTimeout    = 60 * time.Second
	defaultMaxRetries = 2
	defaultRetryDelay = 500 * time.Millisecond
)

// Completer sends one system+user prompt and returns the reply text.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Config holds client settings. JSONMode asks the server for a JSON object
// reply; not every OpenAI-compatible server honours it.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Timeout     time.Duration
	Temperature float32
	MaxTokens   int
	MaxRetries  int
	JSONMode    bool
}

// Client wraps an OpenAI-compatible chat completion API. Rate limits and
// server errors are retried with a linear backoff.
type Client struct {
	api         *openai.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
	maxRetries  int
	retryDelay  time.Duration
	jsonMode    bool
}

func New(cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("llm: API key is required")
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}

	conf := openai.DefaultConfig(apiKey)
	conf.BaseURL = strings.TrimRight(baseURL, "/")

	c := &Client{
		api:         openai.NewClientWithConfig(conf),
		model:       model,
		temperature: max(cfg.Temperature, 0),
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.Timeout,
		maxRetries:  cfg.MaxRetries,
		retryDelay:  defaultRetryDelay,
		jsonMode:    cfg.JSONMode,
	}
	if c.maxTokens <= 0 {
		c.maxTokens = defaultMaxTokens
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	if c.maxRetries < 0 {
		c.maxRetries = 0
	} else if c.maxRetries == 0 {
		c.maxRetries = defaultMaxRetries
	}
	return c, nil
}

// Complete sends a single-shot prompt and returns the trimmed reply text.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if c == nil {
		return "", fmt.Errorf("llm: client is nil")
	}
	if systemPrompt == "" || userPrompt == "" {
		return "", fmt.Errorf("llm: prompts must be provided")
	}

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}
	if c.jsonMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	for attempt := 0; ; attempt++ {
		resp, err := c.send(ctx, req)
		if err == nil {
			if len(resp.Choices) == 0 {
				return "", fmt.Errorf("llm: empty response")
			}
			logging.Debugf("[llm] model=%s prompt_tokens=%d completion_tokens=%d", c.model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
			return strings.TrimSpace(resp.Choices[0].Message.Content), nil
		}
		if attempt >= c.maxRetries || !retryable(err) {
			return "", fmt.Errorf("llm: %w", err)
		}
		logging.Debugf("[llm] attempt %d failed, retrying: %v", attempt+1, err)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Duration(attempt+1) * c.retryDelay):
		}
	}
}

func (c *Client) send(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.api.CreateChatCompletion(ctx, req)
}

func retryable(err error) bool {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}
