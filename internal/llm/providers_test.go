package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-assistant/internal/common"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "openai", cfg: Config{Provider: "openai", APIKey: "k"}},
		{name: "deepseek", cfg: Config{Provider: "DeepSeek", APIKey: "k"}},
		{name: "anthropic", cfg: Config{Provider: "anthropic", APIKey: "k"}},
		{name: "openai without key", cfg: Config{Provider: "openai"}, wantErr: "API key is required"},
		{name: "deepseek without key", cfg: Config{Provider: "deepseek"}, wantErr: "API key is required"},
		{name: "anthropic without key", cfg: Config{Provider: "anthropic"}, wantErr: "API key is required"},
		{name: "claudecode missing binary", cfg: Config{Provider: "claudecode", ClaudeCodePath: "/nonexistent/claude"}, wantErr: "claude CLI not found"},
		{name: "unknown", cfg: Config{Provider: "nope"}, wantErr: "unsupported LLM provider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.cfg)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, client)
		})
	}
}

func TestDeepSeekDefaults(t *testing.T) {
	client, err := newDeepSeekClient(Config{APIKey: "k"})
	require.NoError(t, err)
	c := client.(*openAIClient)
	assert.Equal(t, "deepseek", c.provider)
	assert.Equal(t, defaultDeepSeekModel, c.model)
	assert.InDelta(t, 0.3, c.temperature, 0.001)
	assert.Equal(t, 512, c.maxTokens)
}

func TestOpenAIClient_Complete(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1715760000,
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "finish_reason": "stop",
				"message": {"role": "assistant", "content": "  1. Cook at home.\n"}}]
		}`)
	}))
	defer server.Close()

	client, err := newOpenAIClient(Config{APIKey: "test-key", BaseURL: server.URL, Model: "gpt-4o-mini"})
	require.NoError(t, err)

	text, err := client.Complete(context.Background(), Request{System: "be brief", Prompt: "tips please"})
	require.NoError(t, err)
	assert.Equal(t, "1. Cook at home.", text)

	assert.Equal(t, "gpt-4o-mini", got["model"])
	messages, ok := got["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	assert.Equal(t, "user", messages[1].(map[string]any)["role"])
}

func TestOpenAIClient_ErrorStatus(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		retryable bool
		rateLimit bool
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, rateLimit: true},
		{name: "server error", status: http.StatusBadGateway, retryable: true},
		{name: "unauthorized", status: http.StatusUnauthorized, retryable: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, `{"error": {"message": "nope", "type": "error"}}`)
			}))
			defer server.Close()

			client, err := newOpenAIClient(Config{APIKey: "k", BaseURL: server.URL})
			require.NoError(t, err)

			_, err = client.Complete(context.Background(), Request{Prompt: "p"})
			require.Error(t, err)
			if tt.rateLimit {
				assert.ErrorIs(t, err, common.ErrRateLimit)
				return
			}
			assert.Equal(t, tt.retryable, common.IsRetryable(err))
		})
	}
}

func TestAnthropicClient_Complete(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/v1/messages"), r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-3-5-haiku-latest",
			"content": [
				{"type": "text", "text": "1. Cook at home."},
				{"type": "text", "text": "\n2. Walk to work."}
			],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 12}
		}`)
	}))
	defer server.Close()

	client, err := newAnthropicClient(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	text, err := client.Complete(context.Background(), Request{System: "be brief", Prompt: "tips please"})
	require.NoError(t, err)
	assert.Equal(t, "1. Cook at home.\n2. Walk to work.", text)

	assert.Equal(t, defaultAnthropicModel, got["model"])
	assert.InDelta(t, 512.0, got["max_tokens"], 0.001)
	assert.NotNil(t, got["system"])
}

func TestAnthropicClient_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"type": "error", "error": {"type": "rate_limit_error", "message": "slow down"}}`)
	}))
	defer server.Close()

	client, err := newAnthropicClient(Config{APIKey: "k", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), Request{Prompt: "p"})
	assert.ErrorIs(t, err, common.ErrRateLimit)
}

func writeFakeClaude(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "claude")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestClaudeCodeClient_Complete(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		want    string
		wantErr string
	}{
		{
			name:   "json result",
			script: `echo '{"type":"result","result":"1. Cook at home.","is_error":false}'`,
			want:   "1. Cook at home.",
		},
		{
			name:   "plain text output",
			script: `echo "1. Walk more."`,
			want:   "1. Walk more.",
		},
		{
			name:    "error flag",
			script:  `echo '{"type":"result","result":"quota","is_error":true}'`,
			wantErr: "error in response",
		},
		{
			name:    "non-zero exit with stderr",
			script:  `echo "not logged in" >&2; exit 1`,
			wantErr: "not logged in",
		},
		{
			name:    "empty result",
			script:  `echo '{"type":"result","result":"  "}'`,
			wantErr: "empty completion",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := newClaudeCodeClient(Config{ClaudeCodePath: writeFakeClaude(t, tt.script)})
			require.NoError(t, err)

			text, err := client.Complete(context.Background(), Request{System: "s", Prompt: "p"})
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, text)
		})
	}
}

func TestClaudeCodeClient_PassesPrompt(t *testing.T) {
	// Echo the -p argument back as the result.
	script := `printf '{"result":"%s"}' "$2"`
	client, err := newClaudeCodeClient(Config{ClaudeCodePath: writeFakeClaude(t, script), Model: "haiku"})
	require.NoError(t, err)

	text, err := client.Complete(context.Background(), Request{Prompt: "tips"})
	require.NoError(t, err)
	assert.Equal(t, "tips", text)
}
