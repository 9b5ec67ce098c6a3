package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoneyRoundsHalfEven(t *testing.T) {
	m := NewMoney(decimal.NewFromFloat(1.005))
	assert.Equal(t, "1.00", m.String())

	m2 := NewMoney(decimal.NewFromFloat(1.015))
	assert.Equal(t, "1.02", m2.String())
}

func TestNewRateRoundsToFourPlaces(t *testing.T) {
	r := NewRate(decimal.NewFromFloat(0.057499))
	assert.Equal(t, "0.0575", r.String())
}

func TestRateMax(t *testing.T) {
	low := RateFromFloat(0.01)
	high := RateFromFloat(0.05)
	assert.Equal(t, high, low.Max(high))
	assert.Equal(t, high, high.Max(low))
}

func TestReconcileSumPreservesInvariant(t *testing.T) {
	total := MoneyFromFloat(521.23)
	parts := []Money{
		MoneyFromFloat(472.60),
		MoneyFromFloat(23.62), // deliberately off by a cent from 23.63
		MoneyFromFloat(25.00),
	}
	reconciled := ReconcileSum(total, parts...)

	sum := ZeroMoney()
	for _, p := range reconciled {
		sum = sum.Add(p)
	}
	require.Equal(t, total.String(), sum.String())
	// the largest part absorbs the residual
	assert.Equal(t, "472.61", reconciled[0].String())
}

func TestReconcileSumNoOpWhenExact(t *testing.T) {
	total := MoneyFromFloat(100.00)
	parts := []Money{MoneyFromFloat(60.00), MoneyFromFloat(40.00)}
	reconciled := ReconcileSum(total, parts...)
	assert.Equal(t, parts, reconciled)
}

func TestRawRateDefersRounding(t *testing.T) {
	base := NewRawRate(decimal.NewFromFloat(0.05))
	adjusted := base.Mul(decimal.NewFromFloat(1.15))
	final := adjusted.Finalize(RateFromFloat(0.0))
	assert.Equal(t, "0.0575", final.String())
}

func TestRawRateFinalizeClampsToFloor(t *testing.T) {
	base := NewRawRate(decimal.NewFromFloat(0.001))
	final := base.Finalize(RateFromFloat(0.02))
	assert.Equal(t, "0.0200", final.String())
}
