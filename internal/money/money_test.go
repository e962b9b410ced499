package money

import (
	"encoding/json"
	"testing"

	"saldo/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "12.34", want: "12.34"},
		{in: "12,34", want: "12.34"},
		{in: " 7 ", want: "7"},
		{in: "12.345", want: "12.35"},
		{in: "12.344", want: "12.34"},
		{in: ".5", want: "0.5"},
		{in: "", wantErr: true},
		{in: "-5", wantErr: true},
		{in: "+5", wantErr: true},
		{in: "0", wantErr: true},
		{in: "0.001", wantErr: true},
		{in: "1.2.3", wantErr: true},
		{in: "1,2.3", wantErr: true},
		{in: "abc", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tc.want)), "got %s", got)
		})
	}
}

func TestParseSigned(t *testing.T) {
	got, err := ParseSigned("-150,5")
	require.NoError(t, err)
	assert.Equal(t, "-150.5", got.String())

	_, err = ParseSigned("  ")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestSigned(t *testing.T) {
	hundred := decimal.NewFromInt(100)

	assert.Equal(t, "-100", Signed(hundred, models.TransactionTypeExpense).String())
	assert.Equal(t, "-100", Signed(hundred.Neg(), models.TransactionTypeExpense).String())
	assert.Equal(t, "100", Signed(hundred, models.TransactionTypeIncome).String())
	assert.Equal(t, "100", Signed(hundred.Neg(), models.TransactionTypeIncome).String())
}

func TestSignMatches(t *testing.T) {
	assert.True(t, SignMatches(decimal.NewFromInt(-1), models.TransactionTypeExpense))
	assert.False(t, SignMatches(decimal.NewFromInt(1), models.TransactionTypeExpense))
	assert.True(t, SignMatches(decimal.NewFromInt(1), models.TransactionTypeIncome))
	assert.False(t, SignMatches(decimal.NewFromInt(-1), models.TransactionTypeIncome))
	assert.True(t, SignMatches(decimal.Zero, models.TransactionTypeIncome))
	assert.True(t, SignMatches(decimal.Zero, models.TransactionTypeExpense))
	assert.False(t, SignMatches(decimal.NewFromInt(1), models.TransactionType("transfer")))
}

func TestAmountJSON(t *testing.T) {
	var body struct {
		A Amount `json:"a"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"a": 42.5}`), &body))
	assert.Equal(t, "42.5", body.A.String())

	require.NoError(t, json.Unmarshal([]byte(`{"a": "19,99"}`), &body))
	assert.Equal(t, "19.99", body.A.String())

	assert.Error(t, json.Unmarshal([]byte(`{"a": "twelve"}`), &body))

	out, err := json.Marshal(NewAmount(decimal.RequireFromString("3.10")))
	require.NoError(t, err)
	assert.Equal(t, `"3.1"`, string(out))
}
