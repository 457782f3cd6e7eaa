package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const claudeCodeTimeout = 2 * time.Minute

// claudeCodeClient implements Client using the Claude Code CLI.
type claudeCodeClient struct {
	model   string
	cliPath string
}

func newClaudeCodeClient(cfg Config) (Client, error) {
	cliPath := cfg.ClaudeCodePath
	if cliPath == "" {
		cliPath = "claude"
	}

	if _, err := exec.LookPath(cliPath); err != nil {
		return nil, fmt.Errorf("claude CLI not found at %s: ensure @anthropic-ai/claude-code is installed", cliPath)
	}

	model := cfg.Model
	if model == "" {
		model = "sonnet"
	}

	return &claudeCodeClient{
		model:   model,
		cliPath: cliPath,
	}, nil
}

// claudeCodeResponse represents the JSON response from Claude Code CLI.
type claudeCodeResponse struct {
	Result    string  `json:"result"`
	Type      string  `json:"type"`
	SessionID string  `json:"session_id"`
	IsError   bool    `json:"is_error"`
	TotalCost float64 `json:"total_cost_usd"`
}

// Complete runs one non-interactive Claude Code turn.
func (c *claudeCodeClient) Complete(ctx context.Context, req Request) (string, error) {
	prompt := req.Prompt
	if req.System != "" {
		prompt = req.System + "\n\n" + req.Prompt
	}

	cmdCtx := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		cmdCtx, cancel = context.WithTimeout(ctx, claudeCodeTimeout)
		defer cancel()
	}

	cmd := exec.CommandContext(cmdCtx, c.cliPath,
		"-p", prompt,
		"--output-format", "json",
		"--model", c.model,
		"--max-turns", "1",
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return "", fmt.Errorf("claude code error: %s", strings.TrimSpace(stderr.String()))
		}
		return "", fmt.Errorf("failed to execute claude: %w", err)
	}

	var response claudeCodeResponse
	if err := json.Unmarshal(stdout.Bytes(), &response); err != nil {
		// Older CLI versions print plain text.
		content := strings.TrimSpace(stdout.String())
		if content == "" {
			return "", fmt.Errorf("claude code: %w", errEmptyCompletion)
		}
		return content, nil
	}

	if response.IsError {
		return "", fmt.Errorf("claude code error in response: %s", response.Result)
	}

	content := strings.TrimSpace(response.Result)
	if content == "" {
		return "", fmt.Errorf("claude code: %w", errEmptyCompletion)
	}
	return content, nil
}
