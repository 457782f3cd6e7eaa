package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	defaultOpenAIModel   = "gpt-4o-mini"
	defaultDeepSeekModel = "deepseek-chat"
	deepSeekBaseURL      = "https://api.deepseek.com"
)

// openAIClient implements Client for the OpenAI chat completions API and
// compatible endpoints.
type openAIClient struct {
	client      openai.Client
	provider    string
	model       string
	temperature float64
	maxTokens   int
}

func newOpenAIClient(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	return buildOpenAIClient("openai", cfg, defaultOpenAIModel, cfg.BaseURL), nil
}

// newDeepSeekClient talks to DeepSeek through its OpenAI-compatible endpoint.
func newDeepSeekClient(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("DeepSeek API key is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = deepSeekBaseURL
	}
	return buildOpenAIClient("deepseek", cfg, defaultDeepSeekModel, baseURL), nil
}

func buildOpenAIClient(provider string, cfg Config, defaultModel, baseURL string) *openAIClient {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		// Retries are handled by the Suggester.
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	return &openAIClient{
		client:      openai.NewClient(opts...),
		provider:    provider,
		model:       model,
		temperature: cfg.temperature(),
		maxTokens:   cfg.maxTokens(),
	}
}

// Complete sends a chat completion request.
func (c *openAIClient) Complete(ctx context.Context, req Request) (string, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    messages,
		Temperature: openai.Float(c.temperature),
		MaxTokens:   openai.Int(int64(c.maxTokens)),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", classifyStatus(c.provider, apiErr.StatusCode, err)
		}
		return "", classifyStatus(c.provider, 0, err)
	}

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%s: no completion choices returned", c.provider)
	}

	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("%s: %w", c.provider, errEmptyCompletion)
	}
	return content, nil
}
