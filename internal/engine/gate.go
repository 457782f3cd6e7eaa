package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/Veraticus/spice-assistant/internal/model"
)

var (
	affirmations  = map[string]bool{"yes": true, "confirm": true}
	cancellations = map[string]bool{"no": true, "cancel": true}
)

// confirmOrEdit handles a message for a session whose slots are all filled.
func (e *Engine) confirmOrEdit(ctx context.Context, user string, s *model.Session, text string) (model.Reply, error) {
	answer := strings.ToLower(strings.TrimSpace(text))

	switch {
	case affirmations[answer]:
		if !s.Confirm() {
			return model.Reply{}, fmt.Errorf("session for %s confirmed with missing fields %v", user, s.MissingSlots)
		}
		reply, err := e.commit(ctx, user, s)
		if err != nil {
			return model.Reply{}, err
		}
		if err := e.sessions.Remove(ctx, user); err != nil {
			// The entry is already recorded; report success.
			e.logger.Error("Failed to remove committed session", "user", user, "error", err)
		}
		return reply, nil

	case cancellations[answer]:
		if err := e.sessions.Remove(ctx, user); err != nil {
			return model.Reply{}, fmt.Errorf("failed to cancel session: %w", err)
		}
		e.logger.Debug("Canceled session", "user", user)
		return model.TextReply(MsgCanceled), nil
	}

	if update, ok := e.modifier.Parse(text); ok {
		update.Apply(s.Slots)
		e.logger.Debug("Applied edit", "user", user, "field", update.Field, "value", update.Value)
	} else {
		e.logger.Debug("Ignored unrecognized edit", "user", user, "text", text)
	}

	if err := e.sessions.Put(ctx, user, s); err != nil {
		return model.Reply{}, fmt.Errorf("failed to save session: %w", err)
	}
	return model.TextReply(RenderPreview(s, updatedHeader)), nil
}
