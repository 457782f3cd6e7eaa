package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/spice-assistant/internal/common"
	"github.com/Veraticus/spice-assistant/internal/service"
)

const suggestionSystemPrompt = "You are a personal finance assistant. Amounts are in CNY (¥). " +
	"Answer in plain text with short numbered suggestions and no markdown headings."

// Config holds configuration for the LLM suggestion provider.
type Config struct {
	Provider       string
	APIKey         string
	BaseURL        string
	Model          string
	ClaudeCodePath string
	MaxRetries     int
	RetryDelay     time.Duration
	CacheTTL       time.Duration
	RateLimit      int
	Temperature    float64
	MaxTokens      int
}

func (c Config) temperature() float64 {
	if c.Temperature == 0 {
		return 0.3
	}
	return c.Temperature
}

func (c Config) maxTokens() int {
	if c.MaxTokens == 0 {
		return 512
	}
	return c.MaxTokens
}

// Suggester generates spending suggestions from a ledger summary.
type Suggester struct {
	client      Client
	cache       *responseCache
	logger      *slog.Logger
	rateLimiter *rateLimiter
	retryOpts   service.RetryOptions
}

var _ service.Summarizer = (*Suggester)(nil)

// NewSuggester creates a suggester for the configured provider.
func NewSuggester(cfg Config, logger *slog.Logger) (*Suggester, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return NewSuggesterWithClient(client, cfg, logger), nil
}

// NewSuggesterWithClient wraps an existing client.
func NewSuggesterWithClient(client Client, cfg Config, logger *slog.Logger) *Suggester {
	if logger == nil {
		logger = slog.Default()
	}

	retryOpts := service.RetryOptions{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
	if retryOpts.MaxAttempts == 0 {
		retryOpts.MaxAttempts = 3
	}
	if retryOpts.InitialDelay == 0 {
		retryOpts.InitialDelay = time.Second
	}

	return &Suggester{
		client:      client,
		cache:       newResponseCache(cfg.CacheTTL),
		logger:      logger,
		retryOpts:   retryOpts,
		rateLimiter: newRateLimiter(cfg.RateLimit),
	}
}

// Suggest asks the provider to follow instruction over summary.
func (s *Suggester) Suggest(ctx context.Context, summary, instruction string) (string, error) {
	req := Request{
		System: suggestionSystemPrompt,
		Prompt: instruction + "\n\n" + summary,
	}

	key := cacheKey(req)
	if text, found := s.cache.get(key); found {
		s.logger.Debug("cache hit for suggestion request")
		return text, nil
	}

	var text string
	err := common.WithRetry(ctx, func() error {
		if err := s.rateLimiter.wait(ctx); err != nil {
			return &common.RetryableError{Err: err, Retryable: false}
		}
		var completeErr error
		text, completeErr = s.client.Complete(ctx, req)
		return completeErr
	}, s.retryOpts)
	if err != nil {
		return "", fmt.Errorf("suggestion request failed: %w", err)
	}

	s.cache.set(key, text)
	s.logger.Debug("Generated suggestions", "summary_bytes", len(summary), "reply_bytes", len(text))
	return text, nil
}
