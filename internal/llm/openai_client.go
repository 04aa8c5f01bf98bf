package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	maxRateLimitAttempts = 5
)

// Config carries the settings shared by all providers. Temperature and
// MaxTokens apply to requests that leave their own values at zero.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float32
	MaxTokens   int
}

type OpenAIClient struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	backoff     time.Duration
}

func NewOpenAIClient(cfg Config) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set")
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	return &OpenAIClient{
		client:      openai.NewClientWithConfig(oc),
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		backoff:     3 * time.Second,
	}, nil
}

func (c *OpenAIClient) Provider() string { return ProviderOpenAI }

// Chat sends the messages and returns the first choice. Rate-limited calls
// are retried with exponential backoff.
func (c *OpenAIClient) Chat(ctx context.Context, req ChatRequest) (string, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := openai.ChatMessageRoleUser
		if m.Role == RoleSystem {
			role = openai.ChatMessageRoleSystem
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	req = req.withDefaults(c.temperature, c.maxTokens)
	creq := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    msgs,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.JSON {
		creq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	var resp openai.ChatCompletionResponse
	var err error

	for attempt := 0; attempt < maxRateLimitAttempts; attempt++ {
		resp, err = c.client.CreateChatCompletion(ctx, creq)
		if err == nil {
			break
		}
		if !isRateLimited(err) {
			return "", fmt.Errorf("OpenAI error: %w", err)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.backoff * time.Duration(1<<attempt)):
		}
	}
	if err != nil {
		return "", fmt.Errorf("OpenAI error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}

	return resp.Choices[0].Message.Content, nil
}

func isRateLimited(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	return false
}
