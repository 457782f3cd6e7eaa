package slot

import (
	"strings"

	"github.com/Veraticus/spice-assistant/internal/common"
	"github.com/Veraticus/spice-assistant/internal/model"
)

// Text passes free text through, rejecting blank input.
func Text(field, raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", common.ValidationError(field, raw, nil)
	}
	return value, nil
}

// Normalize canonicalizes raw for the named field. Fields without a dedicated
// normalizer are trimmed and must be non-blank.
func (n *Normalizer) Normalize(field model.Field, raw string) (string, error) {
	switch field {
	case model.FieldAmount:
		return Amount(raw)
	case model.FieldTime:
		return n.Time(raw)
	default:
		return Text(field, raw)
	}
}

// Candidate returns the part of an utterance that could itself be a value for
// field. Times are cut out of the surrounding words so the result normalizes.
func Candidate(field model.Field, text string) (string, bool) {
	switch field {
	case model.FieldAmount:
		if !LooksLikeAmount(text) {
			return "", false
		}
		return strings.TrimSpace(text), true
	case model.FieldTime:
		v := FindTime(text)
		return v, v != ""
	default:
		v := strings.TrimSpace(text)
		return v, v != ""
	}
}
