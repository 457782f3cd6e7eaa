package ofx

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-assistant/internal/model"
)

const ofxHeader = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
`

const checkingStatement = ofxHeader + `<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>CNY
<BANKACCTFROM>
<BANKID>95588
<ACCTID>6222020011112222
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240501000000[0:GMT]
<DTEND>20240531000000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240503120000[0:GMT]
<TRNAMT>-38.50
<FITID>B20240503001
<NAME>POS PURCHASE LUCKIN COFFEE
<MEMO>latte
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240510090000[0:GMT]
<TRNAMT>8000.00
<FITID>B20240510001
<NAME>ACME PAYROLL
</STMTTRN>
<STMTTRN>
<TRNTYPE>INT
<DTPOSTED>20240521000000[0:GMT]
<TRNAMT>1.27
<FITID>B20240521001
<NAME>INTEREST
</STMTTRN>
<STMTTRN>
<TRNTYPE>CHECK
<DTPOSTED>20240525120000[0:GMT]
<TRNAMT>-500.00
<FITID>B20240525001
<CHECKNUM>1042
<NAME>CHECK 1042
</STMTTRN>
<STMTTRN>
<TRNTYPE>OTHER
<DTPOSTED>20240526120000[0:GMT]
<TRNAMT>0.00
<FITID>B20240526001
<NAME>ADJUSTMENT
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>10462.77
<DTASOF>20240531000000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

const cardStatement = ofxHeader + `<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>CNY
<CCACCTFROM>
<ACCTID>4111111111111111
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20240501000000[0:GMT]
<DTEND>20240531000000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240512120000[0:GMT]
<TRNAMT>-259.00
<FITID>CC20240512001
<NAME>05/12 JD.COM
</STMTTRN>
<STMTTRN>
<TRNTYPE>FEE
<DTPOSTED>20240531000000[0:GMT]
<TRNAMT>-10.00
<FITID>CC20240531001
<NAME>ANNUAL FEE
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-269.00
<DTASOF>20240531000000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

func newTestParser(user string) *Parser {
	p := NewParser(user, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	p.location = time.UTC
	return p
}

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		wantCount int
		wantErr   bool
	}{
		{name: "checking statement skips zero amounts", data: checkingStatement, wantCount: 4},
		{name: "credit card statement", data: cardStatement, wantCount: 2},
		{name: "leading blank lines", data: "\n\n  " + cardStatement, wantCount: 2},
		{name: "not OFX", data: "not valid OFX", wantErr: true},
		{name: "empty", data: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := newTestParser("alice").Parse(context.Background(), strings.NewReader(tt.data))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, entries, tt.wantCount)
		})
	}
}

func TestParse_CheckingEntries(t *testing.T) {
	entries, err := newTestParser("alice").Parse(context.Background(), strings.NewReader(checkingStatement))
	require.NoError(t, err)
	require.Len(t, entries, 4)

	coffee := entries[0]
	assert.Equal(t, "alice", coffee.Username)
	assert.Equal(t, model.OperationExpense, coffee.Operation)
	assert.Equal(t, "38.50", coffee.Amount.StringFixed(2))
	assert.Equal(t, "LUCKIN COFFEE", coffee.Merchant)
	assert.Equal(t, "latte", coffee.Remark)
	assert.Equal(t, "uncategorized", coffee.Category)
	assert.Equal(t, "DEBIT", coffee.Type)
	assert.Equal(t, "****2222", coffee.PaymentMethod)
	assert.Equal(t, "u", coffee.Recurrence)
	assert.Equal(t, "2024/05/03 12:00", coffee.Time.Format(model.TimeLayout))
	assert.NotEmpty(t, coffee.ID)
	assert.NotEmpty(t, coffee.Hash)

	salary := entries[1]
	assert.Equal(t, model.OperationIncome, salary.Operation)
	assert.Equal(t, "8000.00", salary.Amount.StringFixed(2))
	assert.Equal(t, "ACME PAYROLL", salary.Merchant)

	interest := entries[2]
	assert.Equal(t, model.OperationIncome, interest.Operation)
	assert.Equal(t, "interest", interest.Category)

	check := entries[3]
	assert.Equal(t, model.OperationExpense, check.Operation)
	assert.Equal(t, "check 1042", check.Tag)
}

func TestParse_CardEntries(t *testing.T) {
	entries, err := newTestParser("bob").Parse(context.Background(), strings.NewReader(cardStatement))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "JD.COM", entries[0].Merchant)
	assert.Equal(t, "****1111", entries[0].PaymentMethod)
	assert.Equal(t, "bank fees", entries[1].Category)
	assert.Equal(t, "10.00", entries[1].Amount.StringFixed(2))
}

func TestParse_HashIsStableAcrossImports(t *testing.T) {
	first, err := newTestParser("alice").Parse(context.Background(), strings.NewReader(checkingStatement))
	require.NoError(t, err)
	second, err := newTestParser("alice").Parse(context.Background(), strings.NewReader(checkingStatement))
	require.NoError(t, err)
	other, err := newTestParser("bob").Parse(context.Background(), strings.NewReader(checkingStatement))
	require.NoError(t, err)

	for i := range first {
		assert.Equal(t, first[i].Hash, second[i].Hash)
		assert.NotEqual(t, first[i].ID, second[i].ID)
		assert.NotEqual(t, first[i].Hash, other[i].Hash)
	}
}

func TestParse_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestParser("alice").Parse(ctx, strings.NewReader(cardStatement))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtractMerchantName(t *testing.T) {
	tests := []struct {
		name string
		tx   ofxgo.Transaction
		want string
	}{
		{name: "strips POS prefix", tx: ofxgo.Transaction{Name: "POS PURCHASE STARBUCKS"}, want: "STARBUCKS"},
		{name: "strips debit card prefix", tx: ofxgo.Transaction{Name: "DEBIT CARD PURCHASE HEMA"}, want: "HEMA"},
		{name: "strips leading date", tx: ofxgo.Transaction{Name: "05/12 JD.COM"}, want: "JD.COM"},
		{name: "keeps clean name", tx: ofxgo.Transaction{Name: "NETFLIX.COM"}, want: "NETFLIX.COM"},
		{name: "trims whitespace", tx: ofxgo.Transaction{Name: "  AMAZON.COM  "}, want: "AMAZON.COM"},
		{name: "generic name uses memo", tx: ofxgo.Transaction{Name: "PURCHASE", Memo: "Meituan"}, want: "Meituan"},
		{name: "payee wins", tx: ofxgo.Transaction{Name: "X", Payee: &ofxgo.Payee{Name: "Didi"}}, want: "Didi"},
		{name: "blank falls back", tx: ofxgo.Transaction{Name: "   "}, want: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractMerchantName(tt.tx))
		})
	}
}

func TestMaskAccount(t *testing.T) {
	assert.Equal(t, "123", maskAccount("123"))
	assert.Equal(t, "****5678", maskAccount("12345678"))
}
