// Package classifier runs the external intent and entity classifier process and
// decodes its output.
package classifier

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/Veraticus/spice-assistant/internal/common"
	"github.com/Veraticus/spice-assistant/internal/model"
)

// DefaultTimeout bounds a single classifier invocation when none is configured.
const DefaultTimeout = 15 * time.Second

// Config holds configuration for the classifier process.
type Config struct {
	Path    string
	Dir     string
	Args    []string
	Timeout time.Duration
}

// Process invokes the classifier executable once per utterance.
type Process struct {
	logger  *slog.Logger
	path    string
	dir     string
	args    []string
	timeout time.Duration
}

// Error describes a failed classifier run. Output holds everything the process
// printed and is meant for logs, never for the end user.
type Error struct {
	Err      error
	Output   string
	ExitCode int
}

func (e *Error) Error() string {
	if e.ExitCode != 0 {
		return fmt.Sprintf("classifier exited with status %d: %v", e.ExitCode, e.Err)
	}
	return fmt.Sprintf("classifier: %v", e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a classifier bound to the executable in cfg.
func New(cfg Config, logger *slog.Logger) (*Process, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, fmt.Errorf("%w: classifier.path", common.ErrMissingConfig)
	}
	path, err := exec.LookPath(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("classifier not found at %s: %w", cfg.Path, err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Process{
		path:    path,
		dir:     cfg.Dir,
		args:    append([]string(nil), cfg.Args...),
		timeout: timeout,
		logger:  logger,
	}, nil
}

// Classify runs the classifier on text and returns its intent and raw entities.
func (p *Process) Classify(ctx context.Context, text string) (model.ClassificationResult, error) {
	cmdCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	args := append(append([]string(nil), p.args...), "-t", text)
	cmd := exec.CommandContext(cmdCtx, p.path, args...)
	cmd.Dir = p.dir
	// A killed process may leave children holding the pipe open.
	cmd.WaitDelay = time.Second

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	if errors.Is(cmdCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		p.logger.Error("classifier timed out",
			"timeout", p.timeout,
			"output", output.String())
		return model.ClassificationResult{}, &Error{
			Err:    fmt.Errorf("%w after %s", common.ErrClassificationTimeout, p.timeout),
			Output: output.String(),
		}
	}

	if runErr != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		p.logger.Error("classifier process failed",
			"exit_code", exitCode,
			"error", runErr,
			"output", output.String())
		return model.ClassificationResult{}, &Error{
			Err:      fmt.Errorf("%w: %w", common.ErrClassificationFailed, runErr),
			Output:   output.String(),
			ExitCode: exitCode,
		}
	}

	result, err := ParseOutput(output.String())
	if err != nil {
		p.logger.Error("classifier produced no usable result",
			"error", err,
			"output", output.String())
		return model.ClassificationResult{}, &Error{Err: err, Output: output.String()}
	}

	p.logger.Debug("utterance classified",
		"intent", result.Intent,
		"entities", len(result.Entities),
		"duration", elapsed)

	return result, nil
}
