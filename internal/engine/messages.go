package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Veraticus/spice-assistant/internal/model"
)

// Fixed replies.
const (
	MsgNotAuthenticated = "Please log in first."
	MsgUnexpectedError  = "Sorry, an unexpected error occurred."
	MsgConfirmPrompt    = "Reply 'yes' to confirm, or tell me what to change."
	MsgCanceled         = "Transaction canceled."
	MsgSessionTimedOut  = "Your previous transaction entry timed out."
	MsgNoTransactions   = "No transactions loaded."
	MsgGreeting         = "Hi! I can tell you your balance, monthly spending, or record expense/income and give you some suggestions."
	MsgThanking         = "My honor."
	MsgFarewell         = "Bye, have a nice day!"
	MsgCapabilities     = "I can tell you your balance, monthly spending, or record expense/income."

	previewHeader = "Please confirm the transaction:"
	updatedHeader = "Updated transaction:"
)

// DefaultSuggestionInstruction is sent with the ledger summary when suggestions are requested.
const DefaultSuggestionInstruction = "Analyze these transactions and give 2-3 brief, actionable suggestions."

func promptFor(field model.Field) string {
	return fmt.Sprintf("Please tell me %s.", field)
}

func retryPrompt(field model.Field) string {
	return fmt.Sprintf("AI didn't recognize %s, please tell me again.", field)
}

func recordedMessage(op model.Operation, amount string) string {
	word := "expense"
	if op == model.OperationIncome {
		word = "income"
	}
	return fmt.Sprintf("Recorded %s: ¥%s", word, amount)
}

// withNotice puts notice on its own line ahead of the reply's text.
func withNotice(notice string, reply model.Reply) model.Reply {
	if notice == "" {
		return reply
	}
	if reply.IsError() {
		reply.Error = notice + "\n" + reply.Error
		return reply
	}
	reply.Text = notice + "\n" + reply.Text
	return reply
}

// RenderPreview lists the session's slots under header, followed by the confirm prompt.
// Required fields come first in resolution order, then operation, then any other slots
// by name.
func RenderPreview(s *model.Session, header string) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteByte('\n')

	shown := make(map[string]bool, len(s.Slots))
	for _, f := range model.RequiredFields() {
		fmt.Fprintf(&b, "%s: %s\n", f, s.Slots[f])
		shown[f] = true
	}
	fmt.Fprintf(&b, "%s: %s\n", model.FieldOperation, s.Operation())
	shown[model.FieldOperation] = true

	extra := make([]string, 0, len(s.Slots))
	for k, v := range s.Slots {
		if !shown[k] && strings.TrimSpace(v) != "" {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		fmt.Fprintf(&b, "%s: %s\n", k, s.Slots[k])
	}

	b.WriteString(MsgConfirmPrompt)
	return b.String()
}
