package fees

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/locatepricer/internal/money"
	"github.com/sawpanic/locatepricer/internal/persistence"
)

func TestCalculateFlatFeePreservesSumInvariant(t *testing.T) {
	client := &persistence.ClientConfig{
		ClientID:           "acme",
		MarkupPercentage:   decimal.NewFromFloat(5.0),
		TransactionFeeType: persistence.TransactionFeeFlat,
		TransactionAmount:  decimal.NewFromFloat(25.00),
		Active:             true,
	}
	rate := money.RateFromFloat(0.0525)

	breakdown := Calculate(decimal.NewFromFloat(100000), 30, rate, client)

	sum := breakdown.BorrowCost.Add(breakdown.Markup).Add(breakdown.TransactionFees)
	require.Equal(t, breakdown.TotalFee.String(), sum.String())
	assert.Equal(t, "25.00", breakdown.TransactionFees.String())
}

func TestCalculatePercentageFee(t *testing.T) {
	client := &persistence.ClientConfig{
		ClientID:           "acme",
		MarkupPercentage:   decimal.NewFromFloat(0),
		TransactionFeeType: persistence.TransactionFeePercentage,
		TransactionAmount:  decimal.NewFromFloat(0.1), // 0.1%
		Active:             true,
	}
	rate := money.RateFromFloat(0.02)

	breakdown := Calculate(decimal.NewFromFloat(50000), 365, rate, client)

	// position_value * 0.1/100 = 50
	assert.Equal(t, "50.00", breakdown.TransactionFees.String())
}

func TestFormulaForUnknownTypeDefaultsToFlat(t *testing.T) {
	formula := FormulaFor(persistence.TransactionFeeType("BOGUS"))
	assert.IsType(t, FlatFee{}, formula)
}
