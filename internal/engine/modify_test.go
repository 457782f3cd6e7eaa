package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/spice-assistant/internal/model"
	"github.com/Veraticus/spice-assistant/internal/slot"
)

func TestModificationParser_Parse(t *testing.T) {
	parser := NewModificationParser(slot.NewNormalizer(func() time.Time { return testNow }))

	tests := []struct {
		name   string
		input  string
		want   FieldUpdate
		wantOK bool
	}{
		{name: "change amount", input: "change amount to 120", want: FieldUpdate{Field: "amount", Value: "120.00"}, wantOK: true},
		{name: "set amount with decimals", input: "  SET Amount To 120.5 ", want: FieldUpdate{Field: "amount", Value: "120.50"}, wantOK: true},
		{name: "amount with local unit", input: "change amount to 30 yuan", want: FieldUpdate{Field: "amount", Value: "30.00"}, wantOK: true},
		{name: "foreign amount", input: "change amount to 30 usd", wantOK: false},
		{name: "non-numeric amount", input: "change amount to lots", wantOK: false},
		{name: "time keyword", input: "change time to yesterday", want: FieldUpdate{Field: "time", Value: "2024/05/14 09:30"}, wantOK: true},
		{name: "date alias", input: "set date to 2024/05/01 12:00", want: FieldUpdate{Field: "time", Value: "2024/05/01 12:00"}, wantOK: true},
		{name: "bad time", input: "set time to whenever", wantOK: false},
		{name: "category is lowercased", input: "Change Category To Fast Food", want: FieldUpdate{Field: "category", Value: "fast food"}, wantOK: true},
		{name: "merchant is lowercased", input: "set merchant to KFC", want: FieldUpdate{Field: "merchant", Value: "kfc"}, wantOK: true},
		{name: "merchant trims", input: "set merchant to  Pizza Hut ", want: FieldUpdate{Field: "merchant", Value: "pizza hut"}, wantOK: true},
		{name: "remark is lowercased", input: "SET REMARK TO Team Lunch", want: FieldUpdate{Field: "remark", Value: "team lunch"}, wantOK: true},
		{name: "operation income", input: "change operation to income", want: FieldUpdate{Field: "operation", Value: "Income"}, wantOK: true},
		{name: "operation expense", input: "set operation to EXPENSE", want: FieldUpdate{Field: "operation", Value: "Expense"}, wantOK: true},
		{name: "operation other", input: "set operation to transfer", wantOK: false},
		{name: "remark", input: "set note to team lunch", want: FieldUpdate{Field: "remark", Value: "team lunch"}, wantOK: true},
		{name: "payment method", input: "change payment method to card", want: FieldUpdate{Field: "paymentMethod", Value: "card"}, wantOK: true},
		{name: "missing verb", input: "amount to 5", wantOK: false},
		{name: "unrelated", input: "what is my balance", wantOK: false},
		{name: "empty", input: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parser.Parse(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestFieldUpdate_ApplyTouchesOneSlot(t *testing.T) {
	slots := map[string]string{
		model.FieldAmount:   "50.00",
		model.FieldTime:     "2024/05/01 12:00",
		model.FieldCategory: "Food",
		model.FieldMerchant: "KFC",
	}
	FieldUpdate{Field: model.FieldMerchant, Value: "Subway"}.Apply(slots)

	assert.Equal(t, map[string]string{
		model.FieldAmount:   "50.00",
		model.FieldTime:     "2024/05/01 12:00",
		model.FieldCategory: "Food",
		model.FieldMerchant: "Subway",
	}, slots)
}

func TestRenderPreview(t *testing.T) {
	s := model.NewSession(model.IntentRecordIncome, map[string]string{
		"amount":   "10.00",
		"time":     "2024/05/01 12:00",
		"category": "Gift",
		"merchant": "Mom",
		"tag":      "family",
		"location": "Home",
		"remark":   " ",
	}, nil, testNow)

	want := "Please confirm the transaction:\n" +
		"amount: 10.00\n" +
		"time: 2024/05/01 12:00\n" +
		"category: Gift\n" +
		"merchant: Mom\n" +
		"operation: Income\n" +
		"location: Home\n" +
		"tag: family\n" +
		MsgConfirmPrompt
	assert.Equal(t, want, RenderPreview(s, previewHeader))
}
