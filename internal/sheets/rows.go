package sheets

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-assistant/internal/model"
)

// Layout of the exported sheet.
const (
	headerRows   = 7
	ledgerColumn = 9
	amountColumn = 2
)

var ledgerHeader = []any{"Time", "Operation", "Amount", "Category", "Merchant", "Payment method", "Location", "Tag", "Remark"}

// ledgerRows lays out a title, totals and one row per entry, newest first.
func ledgerRows(user string, entries []model.LedgerEntry) [][]any {
	sorted := append([]model.LedgerEntry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time.After(sorted[j].Time)
	})

	income, expense := decimal.Zero, decimal.Zero
	for _, e := range sorted {
		if e.Operation == model.OperationIncome {
			income = income.Add(e.Amount)
		} else {
			expense = expense.Add(e.Amount)
		}
	}

	values := make([][]any, 0, headerRows+len(sorted))
	values = append(values,
		[]any{"Ledger for " + user},
		[]any{},
		[]any{"Total income", income.StringFixed(2)},
		[]any{"Total expense", expense.StringFixed(2)},
		[]any{"Net", income.Sub(expense).StringFixed(2)},
		[]any{},
		ledgerHeader,
	)

	for _, e := range sorted {
		values = append(values, []any{
			e.Time.Format(model.TimeLayout),
			string(e.Operation),
			e.Amount.StringFixed(2),
			e.Category,
			e.Merchant,
			e.PaymentMethod,
			e.Location,
			e.Tag,
			e.Remark,
		})
	}
	return values
}
