package llm

import (
	"context"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"

	"gripulse/internal/config"
	apierrors "gripulse/internal/errors"
	"gripulse/pkg/contracts/domain"
)

// Completer is the chat completion surface the agent depends on. The
// production implementation talks to an OpenAI-compatible endpoint;
// tests substitute a stub.
type Completer interface {
	Complete(ctx context.Context, messages []domain.ChatMessage) (string, error)
	Configured() bool
}

// Client calls a hosted OpenAI-compatible chat completion API. The
// default configuration targets Groq.
type Client struct {
	api    *openai.Client
	cfg    config.LLMConfig
	logger *slog.Logger
}

// NewClient creates a client from the LLM configuration.
func NewClient(cfg config.LLMConfig, logger *slog.Logger) *Client {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	return &Client{
		api:    openai.NewClientWithConfig(apiCfg),
		cfg:    cfg,
		logger: logger.With(slog.String("component", "llm")),
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.cfg.APIKey != ""
}

// Complete sends the message history and returns the model's reply.
func (c *Client) Complete(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	if !c.Configured() {
		return "", apierrors.NewLLMError("llm api key not configured", nil)
	}

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	req := openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    toAPIMessages(messages),
		Temperature: float32(c.cfg.Temperature),
		MaxTokens:   c.cfg.MaxTokens,
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		c.logger.WarnContext(ctx, "chat completion failed",
			slog.String("model", c.cfg.Model),
			slog.String("error", err.Error()))
		return "", apierrors.NewLLMError("chat completion failed", err)
	}
	if len(resp.Choices) == 0 {
		return "", apierrors.NewLLMError("chat completion returned no choices", nil)
	}

	c.logger.DebugContext(ctx, "chat completion succeeded",
		slog.String("model", resp.Model),
		slog.Int("prompt_tokens", resp.Usage.PromptTokens),
		slog.Int("completion_tokens", resp.Usage.CompletionTokens))

	return resp.Choices[0].Message.Content, nil
}

func toAPIMessages(messages []domain.ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		out[i] = openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		}
	}
	return out
}

var _ Completer = (*Client)(nil)
