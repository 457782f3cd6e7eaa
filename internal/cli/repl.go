package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Veraticus/spice-assistant/internal/model"
)

// Replier produces one reply per user utterance.
type Replier interface {
	Reply(ctx context.Context, user, text string) model.Reply
}

// REPL runs a line-oriented conversation on plain terminals and pipes.
type REPL struct {
	replier Replier
	reader  *NonBlockingReader
	out     io.Writer
	user    string
	prompt  bool
}

// NewREPL creates a REPL. When prompt is false no prompt or banner is
// printed, which suits piped input.
func NewREPL(replier Replier, user string, in io.Reader, out io.Writer, prompt bool) *REPL {
	return &REPL{
		replier: replier,
		reader:  NewNonBlockingReader(in),
		out:     out,
		user:    user,
		prompt:  prompt,
	}
}

// Run reads utterances until EOF, "exit"/"quit", or ctx cancellation.
func (r *REPL) Run(ctx context.Context) error {
	if r.prompt {
		r.printf("%s\n%s\n", FormatTitle("spice"), SubtleStyle.Render("Type 'exit' to leave."))
	}

	for {
		if r.prompt {
			r.printf("%s", FormatPrompt(r.user))
		}

		line, err := r.reader.ReadLine(ctx)
		switch {
		case errors.Is(err, io.EOF), errors.Is(err, ErrInputCancelled):
			return nil
		case err != nil:
			return fmt.Errorf("read input: %w", err)
		}

		if line == "" {
			continue
		}
		if isExit(line) {
			return nil
		}

		r.printf("%s\n", FormatReply(r.replier.Reply(ctx, r.user, line)))
	}
}

func (r *REPL) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, format, args...)
}

func isExit(line string) bool {
	switch strings.ToLower(line) {
	case "exit", "quit", ":q":
		return true
	default:
		return false
	}
}
