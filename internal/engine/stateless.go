package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/spice-assistant/internal/model"
)

var errNoSummarizer = errors.New("no suggestion provider configured")

// stateless answers intents that never touch session state.
func (e *Engine) stateless(ctx context.Context, user string, intent model.Intent) (model.Reply, error) {
	switch intent {
	case model.IntentQueryBalance:
		balance, err := e.ledger.GetBalance(ctx, user)
		if err != nil {
			return model.Reply{}, fmt.Errorf("failed to get balance: %w", err)
		}
		return model.TextReply(fmt.Sprintf("Your balance is: ¥%.2f", balance)), nil

	case model.IntentQuerySpendTime:
		spent, err := e.ledger.GetMonthExpense(ctx, user, e.now())
		if err != nil {
			return model.Reply{}, fmt.Errorf("failed to get monthly expense: %w", err)
		}
		return model.TextReply(fmt.Sprintf("You spent ¥%.2f this month.", spent)), nil

	case model.IntentQuerySuggestion:
		return e.suggest(ctx, user)

	case model.IntentGreeting:
		return model.TextReply(MsgGreeting), nil
	case model.IntentThanking:
		return model.TextReply(MsgThanking), nil
	case model.IntentFarewell:
		return model.TextReply(MsgFarewell), nil

	default:
		e.logger.Debug("Unhandled intent", "user", user, "intent", intent)
		return model.TextReply(MsgCapabilities), nil
	}
}

func (e *Engine) suggest(ctx context.Context, user string) (model.Reply, error) {
	summary, err := e.ledger.BuildTransactionSummary(ctx, user)
	if err != nil {
		return model.Reply{}, fmt.Errorf("failed to build transaction summary: %w", err)
	}
	if strings.TrimSpace(summary) == "" {
		return model.ErrorReply(MsgNoTransactions), nil
	}
	if e.summarizer == nil {
		return model.Reply{}, errNoSummarizer
	}

	suggestions, err := e.summarizer.Suggest(ctx, summary, e.instruction)
	if err != nil {
		return model.Reply{}, fmt.Errorf("failed to generate suggestions: %w", err)
	}
	return model.TextReply("Suggestions:\n" + strings.TrimSpace(suggestions)), nil
}
