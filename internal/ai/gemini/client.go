package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/resume-sieve/internal/ai"
	"github.com/spigell/resume-sieve/internal/logger"
)

const (
	ProviderName = "gemini"
	DefaultModel = "gemini-2.0-flash"

	// MaxRetryAfter is the longest server-requested delay still treated as a transient failure.
	MaxRetryAfter = 30 * time.Second

	systemInstruction = "You extract structured data. Reply with a single JSON value and nothing else."
	temperature       = 0.1
)

var retryAfterPattern = regexp.MustCompile(`(?i)retry (?:after|in) ([0-9]+(?:\.[0-9]+)?)\s*(s|sec|secs|second|seconds)?\b`)

type chatSession interface {
	SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type chatCreator interface {
	Create(ctx context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error)
}

type chatsAdapter struct {
	chats *genai.Chats
}

func (a chatsAdapter) Create(ctx context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error) {
	chat, err := a.chats.Create(ctx, model, config, history)
	if err != nil {
		return nil, err
	}
	return chat, nil
}

// Generator sends prompts to the Gemini API. Every call opens a fresh chat so
// prompts never share history.
type Generator struct {
	chats  chatCreator
	model  string
	logger *zap.Logger
}

// NewGenerator creates a Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, apiKey, model string, log *zap.Logger) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = DefaultModel
	}

	return &Generator{
		chats:  chatsAdapter{chats: client.Chats},
		model:  model,
		logger: logger.WithServiceFields(log, ProviderName, model),
	}, nil
}

// GenerateContent performs a single request. Overload-class failures are
// returned as ai.TransientError so the caller can retry them.
func (g *Generator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if g == nil || g.chats == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	log := g.logger
	if log == nil {
		log = zap.NewNop()
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		Temperature:       genai.Ptr[float32](temperature),
	}

	chat, err := g.chats.Create(ctx, g.model, cfg, nil)
	if err != nil {
		return "", classify(fmt.Errorf("create chat: %w", err))
	}

	started := time.Now()
	resp, err := chat.SendMessage(ctx, genai.Part{Text: prompt})
	if err != nil {
		log.Debug("gemini request failed", zap.Duration("elapsed", time.Since(started)), zap.Error(err))
		return "", classify(fmt.Errorf("send message: %w", err))
	}

	output := responseText(resp)
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}

	log.Debug("gemini response received",
		zap.Duration("elapsed", time.Since(started)),
		zap.Int("response_length", utf8.RuneCountInString(output)),
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

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	return strings.TrimSpace(builder.String())
}

func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	apiErr, ok := asAPIError(err)
	if !ok {
		if isOverloadedMessage(err.Error()) {
			return ai.Transient(err)
		}
		return err
	}

	if delay, found := retryAfter(apiErr.Message); found && delay > MaxRetryAfter {
		return fmt.Errorf("gemini asked to retry after %s, longer than %s: %w", delay, MaxRetryAfter, err)
	}

	if transientCode(apiErr.Code) || transientStatus(apiErr.Status) || isOverloadedMessage(apiErr.Message) {
		return ai.Transient(err)
	}

	return err
}

func asAPIError(err error) (genai.APIError, bool) {
	var value genai.APIError
	if errors.As(err, &value) {
		return value, true
	}
	var ptr *genai.APIError
	if errors.As(err, &ptr) && ptr != nil {
		return *ptr, true
	}
	return genai.APIError{}, false
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

func transientStatus(status string) bool {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case "UNAVAILABLE", "RESOURCE_EXHAUSTED", "INTERNAL":
		return true
	}
	return false
}

func isOverloadedMessage(msg string) bool {
	return strings.Contains(strings.ToLower(msg), "overloaded")
}

func retryAfter(msg string) (time.Duration, bool) {
	match := retryAfterPattern.FindStringSubmatch(msg)
	if len(match) < 2 {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, false
	}
	return time.Duration(seconds * float64(time.Second)), true
}
