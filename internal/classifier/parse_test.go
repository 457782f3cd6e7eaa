package classifier

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-assistant/internal/common"
	"github.com/Veraticus/spice-assistant/internal/model"
)

func TestParseOutput(t *testing.T) {
	tests := []struct {
		name         string
		output       string
		wantIntent   model.Intent
		wantEntities map[string]string
		wantErr      bool
	}{
		{
			name:         "single JSON line",
			output:       `{"intent":"QueryBalance","entities":{}}`,
			wantIntent:   model.IntentQueryBalance,
			wantEntities: map[string]string{},
		},
		{
			name: "model noise before the payload",
			output: "loading tokenizer...\n" +
				"Some weights were not used\n" +
				`  {"intent":"RecordExpense","entities":{"amount":"50","merchant":"KFC"}}  ` + "\n",
			wantIntent:   model.IntentRecordExpense,
			wantEntities: map[string]string{"amount": "50", "merchant": "KFC"},
		},
		{
			name: "last JSON line wins",
			output: `{"intent":"Greeting","entities":{}}` + "\n" +
				"debug\n" +
				`{"intent":"Farewell","entities":{}}` + "\n",
			wantIntent:   model.IntentFarewell,
			wantEntities: map[string]string{},
		},
		{
			name:         "numeric entity values are stringified",
			output:       `{"intent":"RecordIncome","entities":{"amount":3000,"time":null},"confidence":0.91}`,
			wantIntent:   model.IntentRecordIncome,
			wantEntities: map[string]string{"amount": "3000"},
		},
		{
			name:    "no JSON line",
			output:  "Traceback (most recent call last):\n  File predict.py\n",
			wantErr: true,
		},
		{
			name:    "line wrapped in braces but not JSON",
			output:  "{not json}",
			wantErr: true,
		},
		{
			name:    "missing intent",
			output:  `{"entities":{"amount":"5"}}`,
			wantErr: true,
		},
		{
			name:    "empty output",
			output:  "",
			wantErr: true,
		},
		{
			name: "oversized line after the payload",
			output: `{"intent":"Greeting","entities":{}}` + "\n" +
				strings.Repeat("x", maxLineSize+1) + "\n" +
				`{"intent":"Farewell","entities":{}}` + "\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseOutput(tt.output)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, common.ErrClassificationFailed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantIntent, got.Intent)
			assert.Equal(t, tt.wantEntities, got.Entities)
		})
	}
}

func TestParseOutput_OversizedLineIsReported(t *testing.T) {
	output := `{"intent":"Greeting","entities":{}}` + "\n" + strings.Repeat("x", maxLineSize+1)

	_, err := ParseOutput(output)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrClassificationFailed)
	assert.ErrorIs(t, err, bufio.ErrTooLong)
}
