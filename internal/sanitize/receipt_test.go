package sanitize

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avoronov/snapledger/internal/common"
)

func TestValidateReceiptJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{
			name: "minimal valid receipt",
			raw:  `{"merchant":"Tesco","category":"food","total_amount":12.50,"positions":[]}`,
		},
		{
			name: "markdown fenced output accepted",
			raw:  "```json\n{\"merchant\":\"Tesco\",\"category\":\"food\",\"total_amount\":1}\n```",
		},
		{
			name:    "non-JSON fails as malformed output",
			raw:     "sorry, I could not read that receipt",
			wantErr: common.ErrMalformedOutput,
		},
		{
			name:    "JSON array is not an object",
			raw:     `[1,2,3]`,
			wantErr: common.ErrMalformedOutput,
		},
		{
			name:    "missing merchant key fails",
			raw:     `{"category":"food","total_amount":5}`,
			wantErr: common.ErrMalformedOutput,
		},
		{
			name:    "missing total fails",
			raw:     `{"merchant":"Tesco","category":"food"}`,
			wantErr: common.ErrMalformedOutput,
		},
		{
			name:    "non-numeric total fails",
			raw:     `{"merchant":"Tesco","category":"food","total_amount":"a lot"}`,
			wantErr: common.ErrMalformedOutput,
		},
		{
			name: "total at upper bound passes",
			raw:  `{"merchant":"Tesco","category":"food","total_amount":1000000}`,
		},
		{
			name:    "total above upper bound fails",
			raw:     `{"merchant":"Tesco","category":"food","total_amount":1000001}`,
			wantErr: common.ErrMalformedOutput,
		},
		{
			name:    "negative total fails",
			raw:     `{"merchant":"Tesco","category":"food","total_amount":-1}`,
			wantErr: common.ErrMalformedOutput,
		},
		{
			name: "null merchant allowed for downstream defaulting",
			raw:  `{"merchant":null,"category":null,"total_amount":12.5}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ValidateReceiptJSON(tt.raw)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, doc)
		})
	}
}

func TestValidateReceiptJSON_DateHandling(t *testing.T) {
	tests := []struct {
		name     string
		date     string
		wantKept bool
	}{
		{name: "valid date kept", date: "02 Jan 2026", wantKept: true},
		{name: "iso date dropped", date: "2026-01-02", wantKept: false},
		{name: "gibberish dropped", date: "someday", wantKept: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := fmt.Sprintf(`{"merchant":"Tesco","category":"food","total_amount":1,"date":%q}`, tt.date)
			doc, err := ValidateReceiptJSON(raw)
			require.NoError(t, err)

			if tt.wantKept {
				assert.Equal(t, tt.date, doc["date"])
			} else {
				assert.Nil(t, doc["date"])
			}
		})
	}
}

func TestValidateReceiptJSON_Positions(t *testing.T) {
	t.Run("invalid positions dropped without failing the receipt", func(t *testing.T) {
		raw := `{"merchant":"Tesco","category":"food","total_amount":20,"positions":[
			{"description":"bread","price":2.5,"quantity":"1"},
			"not an object",
			{"description":"milk","price":-1},
			{"description":"","price":3},
			{"price":4},
			{"description":"caviar","price":150000},
			{"description":"cheese","price":"4.20"}
		]}`

		doc, err := ValidateReceiptJSON(raw)
		require.NoError(t, err)

		positions, ok := doc["positions"].([]any)
		require.True(t, ok)
		require.Len(t, positions, 2)

		first := positions[0].(map[string]any)
		assert.Equal(t, "bread", first["description"])
		assert.InDelta(t, 2.5, first["price"], 0.001)

		second := positions[1].(map[string]any)
		assert.Equal(t, "cheese", second["description"])
		assert.InDelta(t, 4.20, second["price"], 0.001)
	})

	t.Run("positions capped at fifty", func(t *testing.T) {
		items := make([]string, 0, 60)
		for i := 0; i < 60; i++ {
			items = append(items, fmt.Sprintf(`{"description":"item %d","price":1}`, i))
		}
		raw := fmt.Sprintf(`{"merchant":"Tesco","category":"food","total_amount":60,"positions":[%s]}`,
			strings.Join(items, ","))

		doc, err := ValidateReceiptJSON(raw)
		require.NoError(t, err)

		positions := doc["positions"].([]any)
		assert.Len(t, positions, 50)
	})

	t.Run("missing positions normalizes to empty list", func(t *testing.T) {
		doc, err := ValidateReceiptJSON(`{"merchant":"Tesco","category":"food","total_amount":1}`)
		require.NoError(t, err)
		assert.Empty(t, doc["positions"])
	})
}

func TestValidateReceiptJSON_SanitizesStrings(t *testing.T) {
	doc, err := ValidateReceiptJSON(`{"merchant":"<b>Tesco</b>\u0000 ","category":" food ","total_amount":1,"description":"trip  to   Japan"}`)
	require.NoError(t, err)

	assert.Equal(t, "Tesco", doc["merchant"])
	assert.Equal(t, "food", doc["category"])
	assert.Equal(t, "trip to Japan", doc["description"])
}

func TestValidateReceiptJSON_RoundTripsToJSON(t *testing.T) {
	doc, err := ValidateReceiptJSON(`{"merchant":"Tesco","category":"food","total_amount":12.5,"reference_receipts_ids":[5,"6"]}`)
	require.NoError(t, err)

	_, err = json.Marshal(doc)
	require.NoError(t, err)
}
