package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney_Format(t *testing.T) {
	tests := []struct {
		name  string
		money Money
		want  string
	}{
		{"rupiah grouping", Rupiah(18000), "Rp 18.000"},
		{"rupiah millions", Rupiah(1250000), "Rp 1.250.000"},
		{"rupiah small", Rupiah(500), "Rp 500"},
		{"zero", Zero(IDR), "Rp 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.money.Format())
		})
	}
}

func TestMoney_Arithmetic(t *testing.T) {
	line := Rupiah(18000).MultiplyByInt(3)
	assert.Equal(t, int64(54000), line.IntPart())

	total, err := Sum(IDR, line, Rupiah(15000))
	require.NoError(t, err)
	assert.Equal(t, int64(69000), total.IntPart())

	usd, err := NewMoneyFromInt(1, USD)
	require.NoError(t, err)
	_, err = line.Add(usd)
	assert.Error(t, err)
}

func TestNewMoney_EmptyCurrency(t *testing.T) {
	_, err := NewMoney(decimal.NewFromInt(1), "")
	assert.Error(t, err)
}

func TestMoney_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(Rupiah(25000))
	require.NoError(t, err)

	var out map[string]string
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "25000", out["amount"])
	assert.Equal(t, "IDR", out["currency"])
	assert.Equal(t, "Rp 25.000", out["formatted"])
}
