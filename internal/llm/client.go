package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Veraticus/spice-assistant/internal/common"
)

// Client defines the interface for LLM providers.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Request is a single-turn completion request.
type Request struct {
	System string
	Prompt string
}

// classifyStatus marks provider failures as retryable or not based on the HTTP status.
func classifyStatus(provider string, status int, err error) error {
	switch {
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%s: %w: %w", provider, common.ErrRateLimit, err)
	case status >= http.StatusInternalServerError:
		return &common.RetryableError{Err: fmt.Errorf("%s server error (status %d): %w", provider, status, err), Retryable: true}
	case status >= http.StatusBadRequest:
		return &common.RetryableError{Err: fmt.Errorf("%s request rejected (status %d): %w", provider, status, err), Retryable: false}
	default:
		return fmt.Errorf("%s request failed: %w", provider, err)
	}
}

var errEmptyCompletion = errors.New("empty completion")
