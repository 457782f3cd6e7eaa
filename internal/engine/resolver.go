package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/spice-assistant/internal/common"
	"github.com/Veraticus/spice-assistant/internal/model"
	"github.com/Veraticus/spice-assistant/internal/slot"
)

// startTransaction normalizes a fresh RecordExpense/RecordIncome classification and
// either commits it straight away or opens a session asking for the first gap.
func (e *Engine) startTransaction(ctx context.Context, user string, result model.ClassificationResult) (model.Reply, error) {
	slots := make(map[string]string, len(result.Entities))
	for k, v := range result.Entities {
		if v = strings.TrimSpace(v); v != "" {
			slots[k] = v
		}
	}
	// operation is derived from the intent unless the user edits it.
	delete(slots, model.FieldOperation)

	for _, field := range []model.Field{model.FieldAmount, model.FieldTime} {
		raw, ok := slots[field]
		if !ok {
			continue
		}
		value, err := e.normalizer.Normalize(field, raw)
		if err != nil {
			e.logger.Debug("Dropped unparseable entity", "user", user, "field", field, "raw", raw, "error", err)
			delete(slots, field)
			continue
		}
		slots[field] = value
	}

	missing := model.MissingFields(slots)
	s := model.NewSession(result.Intent, slots, missing, e.now())
	if len(missing) == 0 {
		return e.commit(ctx, user, s)
	}

	if err := e.sessions.Put(ctx, user, s); err != nil {
		return model.Reply{}, fmt.Errorf("failed to save session: %w", err)
	}
	e.logger.Debug("Opened session", "user", user, "intent", s.Intent, "missing", missing)

	return model.TextReply(promptFor(missing[0])), nil
}

// resolveMissing treats text as the answer for field, the first missing slot.
func (e *Engine) resolveMissing(ctx context.Context, user string, s *model.Session, field model.Field, text string) (model.Reply, error) {
	raw, err := e.extract(ctx, field, text)
	if err != nil {
		return model.Reply{}, err
	}
	if raw == "" {
		return model.TextReply(retryPrompt(field)), nil
	}

	value, err := e.normalizer.Normalize(field, raw)
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			e.logger.Debug("Rejected slot value", "user", user, "field", field, "error", err)
			return model.TextReply(retryPrompt(field)), nil
		}
		return model.Reply{}, err
	}

	s.Resolve(field, value)
	if err := e.sessions.Put(ctx, user, s); err != nil {
		return model.Reply{}, fmt.Errorf("failed to save session: %w", err)
	}
	e.logger.Debug("Resolved slot", "user", user, "field", field, "remaining", len(s.MissingSlots))

	if next, ok := s.NextMissing(); ok {
		return model.TextReply(promptFor(next)), nil
	}
	return model.TextReply(RenderPreview(s, previewHeader)), nil
}

// extract pulls the raw value for field out of a continuation utterance.
// merchant and category take the utterance verbatim; other fields ask the
// classifier once and fall back to the part of the utterance that looks like a value.
func (e *Engine) extract(ctx context.Context, field model.Field, text string) (string, error) {
	switch field {
	case model.FieldMerchant, model.FieldCategory:
		return strings.TrimSpace(text), nil
	}

	result, err := e.classifier.Classify(ctx, text)
	if err != nil {
		return "", err
	}
	if v := strings.TrimSpace(result.Entity(field)); v != "" {
		return v, nil
	}
	if v, ok := slot.Candidate(field, text); ok {
		return v, nil
	}
	return "", nil
}
