package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestMoneyBSONDecimal128(t *testing.T) {
	in := Order{TotalAmount: NewMoney(decimal.RequireFromString("70.50"))}
	raw, err := bson.Marshal(in)
	require.NoError(t, err)

	var out Order
	require.NoError(t, bson.Unmarshal(raw, &out))
	assert.True(t, out.TotalAmount.Equal(decimal.RequireFromString("70.5")))
}

func TestMoneyDecodesLegacyDouble(t *testing.T) {
	raw, err := bson.Marshal(bson.M{"total_amount": 25.0})
	require.NoError(t, err)

	var out Order
	require.NoError(t, bson.Unmarshal(raw, &out))
	assert.Equal(t, "25", out.TotalAmount.String())
}

func TestMoneyJSONNumber(t *testing.T) {
	var o Order
	require.NoError(t, json.Unmarshal([]byte(`{"total_amount": 35.25}`), &o))
	assert.Equal(t, "35.25", o.TotalAmount.String())

	out, err := json.Marshal(struct {
		A Money `json:"a"`
	}{o.TotalAmount})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":35.25}`, string(out))
}
