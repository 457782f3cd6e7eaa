package engine

import (
	"context"
	"fmt"

	"github.com/Veraticus/spice-assistant/internal/common"
	"github.com/Veraticus/spice-assistant/internal/model"
)

// commit hands a copy of the session's slots, with operation filled in, to the ledger.
// The caller owns session removal.
func (e *Engine) commit(ctx context.Context, user string, s *model.Session) (model.Reply, error) {
	fields := make(map[string]string, len(s.Slots)+1)
	for k, v := range s.Slots {
		fields[k] = v
	}
	op := s.Operation()
	fields[model.FieldOperation] = string(op)

	entry, err := e.ledger.AddTransactionFromEntities(ctx, user, fields)
	if err != nil {
		return model.Reply{}, fmt.Errorf("%w: %w", common.ErrCommitFailed, err)
	}

	e.logger.Info("Committed transaction",
		"user", user,
		"operation", op,
		"amount", fields[model.FieldAmount],
		"entry_id", entryID(entry))

	return model.TextReply(recordedMessage(op, fields[model.FieldAmount])), nil
}

func entryID(entry *model.LedgerEntry) string {
	if entry == nil {
		return ""
	}
	return entry.ID
}
