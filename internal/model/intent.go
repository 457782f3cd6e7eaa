// Package model defines the core domain models used throughout the application.
package model

// Intent is the classified purpose of an utterance.
type Intent string

// Intent constants produced by the classifier process.
const (
	IntentRecordExpense   Intent = "RecordExpense"
	IntentRecordIncome    Intent = "RecordIncome"
	IntentQueryBalance    Intent = "QueryBalance"
	IntentQuerySpendTime  Intent = "QuerySpendTime"
	IntentQuerySuggestion Intent = "QuerySuggestion"
	IntentGreeting        Intent = "Greeting"
	IntentThanking        Intent = "Thanking"
	IntentFarewell        Intent = "Farewell"
)

// IsTransactional reports whether the intent assembles a ledger entry.
func (i Intent) IsTransactional() bool {
	return i == IntentRecordExpense || i == IntentRecordIncome
}

// Operation returns the ledger operation the intent records.
func (i Intent) Operation() Operation {
	if i == IntentRecordIncome {
		return OperationIncome
	}
	return OperationExpense
}

// Operation is the direction of a ledger entry.
type Operation string

// Operation constants as stored in the ledger.
const (
	OperationExpense Operation = "Expense"
	OperationIncome  Operation = "Income"
)

// Field names a slot of a transaction.
type Field = string

// Slot names.
const (
	FieldAmount        Field = "amount"
	FieldTime          Field = "time"
	FieldCategory      Field = "category"
	FieldMerchant      Field = "merchant"
	FieldOperation     Field = "operation"
	FieldType          Field = "type"
	FieldRemark        Field = "remark"
	FieldPaymentMethod Field = "paymentMethod"
	FieldLocation      Field = "location"
	FieldTag           Field = "tag"
	FieldAttachment    Field = "attachment"
	FieldRecurrence    Field = "recurrence"
)

// RequiredFields lists the slots a transaction needs, in the order they are asked for.
func RequiredFields() []Field {
	return []Field{FieldAmount, FieldTime, FieldCategory, FieldMerchant}
}

// TimeLayout is the canonical timestamp format of the time slot.
const TimeLayout = "2006/01/02 15:04"
