package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/spigell/resume-sieve/internal/ai"
	"github.com/spigell/resume-sieve/internal/logger"
)

const (
	ProviderName = "openai"
	DefaultModel = openai.GPT4oMini

	systemPrompt = "You extract structured data. Reply with a single JSON value and nothing else."
	temperature  = 0.1
)

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Generator is a chat completion provider using the OpenAI-compatible API.
type Generator struct {
	client chatCompleter
	model  string
	logger *zap.Logger
}

// Config holds the chat completion provider settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Logger  *zap.Logger
}

// NewGenerator creates an OpenAI-compatible generator.
func NewGenerator(cfg Config) (*Generator, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}

	clientCfg := openai.DefaultConfig(apiKey)
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		clientCfg.BaseURL = baseURL
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	return &Generator{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
		logger: logger.WithServiceFields(cfg.Logger, ProviderName, model),
	}, nil
}

// GenerateContent performs a single chat completion request.
func (g *Generator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if g == nil || g.client == nil {
		return "", errors.New("openai generator is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	log := g.logger
	if log == nil {
		log = zap.NewNop()
	}

	req := openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}

	started := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		log.Debug("openai request failed", zap.Duration("elapsed", time.Since(started)), zap.Error(err))
		return "", classify(err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("openai api returned no choices")
	}

	output := strings.TrimSpace(resp.Choices[0].Message.Content)
	if output == "" {
		return "", errors.New("openai api returned empty response")
	}

	log.Debug("openai response received",
		zap.Duration("elapsed", time.Since(started)),
		zap.Int("response_length", utf8.RuneCountInString(output)),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)

	return output, nil
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}

func (g *Generator) Provider() string {
	return ProviderName
}

// classify maps API failures to transient or permanent errors.
func classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		wrapped := fmt.Errorf("openai api error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, err)
		if transientCode(apiErr.HTTPStatusCode) || overloaded(apiErr.Message) {
			return ai.Transient(wrapped)
		}
		return wrapped
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		wrapped := fmt.Errorf("openai request error %d: %w", reqErr.HTTPStatusCode, err)
		if transientCode(reqErr.HTTPStatusCode) || overloaded(string(reqErr.Body)) {
			return ai.Transient(wrapped)
		}
		return wrapped
	}

	if overloaded(err.Error()) {
		return ai.Transient(err)
	}
	return fmt.Errorf("openai request failed: %w", err)
}

func transientCode(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

func overloaded(msg string) bool {
	return strings.Contains(strings.ToLower(msg), "overloaded")
}
