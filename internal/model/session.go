package model

import (
	"strings"
	"time"
)

// Session is the in-progress transaction-entry conversation of one user.
type Session struct {
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	Slots        map[string]string `json:"slots"`
	Intent       Intent            `json:"intent"`
	MissingSlots []Field           `json:"missing_slots"`
	Confirmed    bool              `json:"confirmed"`
}

// NewSession starts a session for intent with the slots gathered so far.
func NewSession(intent Intent, slots map[string]string, missing []Field, now time.Time) *Session {
	s := &Session{
		Intent:       intent,
		Slots:        make(map[string]string, len(slots)),
		MissingSlots: append([]Field(nil), missing...),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for k, v := range slots {
		s.Slots[k] = v
	}
	return s
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Slots = make(map[string]string, len(s.Slots))
	for k, v := range s.Slots {
		c.Slots[k] = v
	}
	c.MissingSlots = append([]Field(nil), s.MissingSlots...)
	return &c
}

// NextMissing returns the first unresolved field.
func (s *Session) NextMissing() (Field, bool) {
	if len(s.MissingSlots) == 0 {
		return "", false
	}
	return s.MissingSlots[0], true
}

// AwaitingConfirmation reports whether every required field is present and the user
// has not yet affirmed.
func (s *Session) AwaitingConfirmation() bool {
	return len(s.MissingSlots) == 0 && !s.Confirmed
}

// Resolve stores value for the first missing field and pops it.
// It does nothing if field is not the first missing field.
func (s *Session) Resolve(field Field, value string) bool {
	next, ok := s.NextMissing()
	if !ok || next != field {
		return false
	}
	if s.Slots == nil {
		s.Slots = make(map[string]string)
	}
	s.Slots[field] = value
	s.MissingSlots = append([]Field(nil), s.MissingSlots[1:]...)
	return true
}

// Confirm flips the session to confirmed. It refuses while fields are missing.
func (s *Session) Confirm() bool {
	if len(s.MissingSlots) > 0 {
		return false
	}
	s.Confirmed = true
	return true
}

// Operation returns the operation override if one was set, otherwise the one derived
// from the intent.
func (s *Session) Operation() Operation {
	if op := strings.TrimSpace(s.Slots[FieldOperation]); op != "" {
		return Operation(op)
	}
	return s.Intent.Operation()
}

// MissingFields computes which required fields are absent or blank in slots.
func MissingFields(slots map[string]string) []Field {
	var missing []Field
	for _, f := range RequiredFields() {
		if strings.TrimSpace(slots[f]) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}
