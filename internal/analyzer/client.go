package analyzer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"github.com/BerylCAtieno/cheatsheet-api/internal/utils"
)

const (
	// Temperature is fixed for every completion.
	Temperature = 0.7

	DefaultMaxTokens = 4096
	DefaultModel     = "gpt-4o-mini"
)

var (
	ErrModelCallFailed    = errors.New("model call failed")
	ErrEmptyModelResponse = errors.New("empty model response")
)

// ModelClient sends a prompt to a language model and returns the raw text of
// the first completion.
type ModelClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type ClientConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

type OpenAIClient struct {
	client    openai.Client
	model     string
	maxTokens int64
	logger    *utils.Logger
}

// NewOpenAIClient builds a chat completion client for OpenAI or any
// OpenAI-compatible host. SDK retries are disabled.
func NewOpenAIClient(cfg ClientConfig, logger *utils.Logger) *OpenAIClient {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithHTTPClient(httpClient),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(ensureTrailingSlash(cfg.BaseURL)))
	}

	return &OpenAIClient{
		client:    openai.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: int64(cfg.MaxTokens),
		logger:    logger,
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(Temperature),
		MaxTokens:   openai.Int(c.maxTokens),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			c.logger.Error("Model API error", "status", apiErr.StatusCode, "model", c.model)
		} else {
			c.logger.Error("Model request failed", "error", err, "model", c.model)
		}
		return "", fmt.Errorf("%w: %v", ErrModelCallFailed, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", ErrEmptyModelResponse)
	}

	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%w: blank completion", ErrEmptyModelResponse)
	}

	c.logger.Debug("Model completion received",
		"model", c.model,
		"duration_ms", time.Since(start).Milliseconds(),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
	)

	return content, nil
}

func ensureTrailingSlash(u string) string {
	if strings.HasSuffix(u, "/") {
		return u
	}
	return u + "/"
}
