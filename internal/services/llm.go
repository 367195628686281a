package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/mock-interview/internal/config"
	"alfredoptarigan/mock-interview/internal/logger"
)

// ErrAIDisabled is returned when the configured provider has no credentials.
var ErrAIDisabled = errors.New("ai provider disabled")

// LLMClient is the text generation capability shared by every AI provider.
type LLMClient interface {
	GenerateText(ctx context.Context, prompt string, temperature float32) (string, error)
	Provider() string
	Model() string
}

// RetryPolicy bounds the attempts made against an LLM for a single call.
type RetryPolicy struct {
	Attempts     int
	InitialDelay time.Duration
}

// CallOptions bound a whole AI-backed operation, retries included.
type CallOptions struct {
	Timeout time.Duration
	Retry   RetryPolicy
}

// wait pauses for d or until ctx is done.
var wait = func(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// NewLLMClient picks the client for cfg.Provider. gemini may be nil when no
// Gemini key is configured.
func NewLLMClient(cfg config.AIConfig, gemini GeminiService) (LLMClient, error) {
	switch cfg.Provider {
	case "gemini":
		if gemini == nil {
			return nil, fmt.Errorf("%w: GEMINI_API_KEY is not set", ErrAIDisabled)
		}
		return gemini, nil
	case "deepseek":
		if strings.TrimSpace(cfg.DeepSeekAPIKey) == "" {
			return nil, fmt.Errorf("%w: DEEPSEEK_API_KEY is not set", ErrAIDisabled)
		}
		return NewDeepSeekClient(DeepSeekConfig{
			BaseURL: cfg.DeepSeekBaseURL,
			APIKey:  cfg.DeepSeekAPIKey,
			Model:   cfg.DeepSeekModel,
		}, nil), nil
	case "", "none":
		return nil, ErrAIDisabled
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrAIDisabled, cfg.Provider)
	}
}

// GenerateTextWithRetry calls client until it succeeds, the attempts run out or
// ctx is done. The delay doubles after each failure.
func GenerateTextWithRetry(ctx context.Context, client LLMClient, prompt string, temperature float32, policy RetryPolicy, log *zap.Logger) (string, error) {
	if client == nil {
		return "", ErrAIDisabled
	}

	attempts := policy.Attempts
	if attempts < 1 {
		attempts = 1
	}
	delay := policy.InitialDelay
	log = logger.WithCommonFields(log, client.Provider(), client.Model())

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := client.GenerateText(ctx, prompt, temperature)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return "", fmt.Errorf("context cancelled: %w", ctx.Err())
		}
		if attempt == attempts {
			break
		}

		log.Warn("LLM attempt failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if err := wait(ctx, delay); err != nil {
			return "", fmt.Errorf("context cancelled: %w", err)
		}
		delay *= 2
	}

	return "", fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}

// extractJSON pulls the first JSON object or array out of a model response that
// may be wrapped in markdown fences or prose.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	startObj := strings.Index(text, "{")
	startArr := strings.Index(text, "[")
	endObj := strings.LastIndex(text, "}")
	endArr := strings.LastIndex(text, "]")

	// Whichever bracket opens first decides the shape.
	if startArr != -1 && endArr > startArr && (startObj == -1 || startArr < startObj) {
		return text[startArr : endArr+1]
	}
	if startObj != -1 && endObj > startObj {
		return text[startObj : endObj+1]
	}

	return strings.TrimSpace(text)
}
