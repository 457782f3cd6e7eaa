// Package ofx converts OFX/QFX bank and credit card statements into ledger entries.
package ofx

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-assistant/internal/model"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	// Opening tags at end of line that are missing their closing bracket.
	tagFixRegex = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Categories inferred from the OFX transaction type. Other types import as "uncategorized".
var typeCategories = map[string]string{
	"INT":    "interest",
	"DIV":    "interest",
	"FEE":    "bank fees",
	"SRVCHG": "bank fees",
	"ATM":    "cash",
}

// Parser converts statements for one ledger user.
type Parser struct {
	logger   *slog.Logger
	location *time.Location
	user     string
}

// NewParser creates a parser whose entries belong to user.
func NewParser(user string, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{user: user, logger: logger, location: time.Local}
}

// preprocessOFX fixes common formatting issues in OFX files.
func preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

// Parse reads a statement file and returns one ledger entry per transaction.
func (p *Parser) Parse(ctx context.Context, reader io.Reader) ([]model.LedgerEntry, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var entries []model.LedgerEntry
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		bankStmts++
		entries = p.appendTransactions(entries, stmt.BankTranList.Transactions, string(stmt.BankAcctFrom.AcctID))
	}

	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		ccStmts++
		entries = p.appendTransactions(entries, stmt.BankTranList.Transactions, string(stmt.CCAcctFrom.AcctID))
	}

	p.logger.Info("Parsed OFX file",
		"entries", len(entries),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return entries, nil
}

func (p *Parser) appendTransactions(entries []model.LedgerEntry, txns []ofxgo.Transaction, accountID string) []model.LedgerEntry {
	for _, tx := range txns {
		entry, ok := p.convertTransaction(tx, accountID)
		if !ok {
			p.logger.Warn("Skipping zero-amount OFX transaction", "fitid", string(tx.FiTID))
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

// convertTransaction maps one OFX transaction. OFX amounts are negative for debits.
func (p *Parser) convertTransaction(tx ofxgo.Transaction, accountID string) (model.LedgerEntry, bool) {
	raw, _ := tx.TrnAmt.Float64()
	amount := decimal.NewFromFloat(raw).Round(2)
	if amount.IsZero() {
		return model.LedgerEntry{}, false
	}

	op := model.OperationIncome
	if amount.IsNegative() {
		op = model.OperationExpense
	}

	trnType := tx.TrnType.String()
	entry := model.LedgerEntry{
		ID:            uuid.NewString(),
		Username:      p.user,
		Operation:     op,
		Amount:        amount.Abs(),
		Time:          tx.DtPosted.Time.In(p.location),
		Merchant:      extractMerchantName(tx),
		Type:          trnType,
		Remark:        strings.TrimSpace(string(tx.Memo)),
		Category:      typeCategories[trnType],
		PaymentMethod: maskAccount(accountID),
		Recurrence:    "u",
		Hash:          importHash(p.user, accountID, tx),
	}
	if entry.Category == "" {
		entry.Category = "uncategorized"
	}
	if tx.CheckNum != "" {
		entry.Tag = "check " + string(tx.CheckNum)
	}
	return entry, true
}

// importHash identifies a statement line so re-importing the same file is a no-op.
// FITIDs are unique per account, so the hash does not depend on parsed fields.
func importHash(user, accountID string, tx ofxgo.Transaction) string {
	data := fmt.Sprintf("ofx:%s:%s:%s", user, accountID, tx.FiTID)
	if tx.FiTID == "" {
		data = fmt.Sprintf("ofx:%s:%s:%s:%s:%s", user, accountID,
			tx.DtPosted.Format(time.RFC3339), tx.TrnAmt.String(), tx.Name)
	}
	return fmt.Sprintf("%x", sha256.Sum256([]byte(data)))
}

func maskAccount(id string) string {
	if len(id) <= 4 {
		return id
	}
	return "****" + id[len(id)-4:]
}

// extractMerchantName tries to get a clean merchant name from OFX data.
func extractMerchantName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := string(tx.Name)
	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}
	name = strings.TrimSpace(name)

	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"MC PURCHASE ",
		"DEBIT PURCHASE ",
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Leading "MM/DD " dates.
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}
	if name == "" {
		return "unknown"
	}
	return name
}

func isGenericDescription(name string) bool {
	switch strings.ToUpper(name) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	}
	return false
}
