// Package fees implements the fee calculator (C6): given a resolved rate
// and client configuration, computes borrow cost, markup, transaction fee,
// and total, preserving the sum invariant to the cent.
package fees

import (
	"github.com/shopspring/decimal"

	"github.com/sawpanic/locatepricer/internal/money"
	"github.com/sawpanic/locatepricer/internal/persistence"
)

// TransactionFeeFormula is a tagged union over the two fee types a client
// config can declare. Each variant knows how to compute its own fee from
// the shared inputs; callers never branch on the client's fee-type string
// directly.
type TransactionFeeFormula interface {
	Compute(positionValue decimal.Decimal, amount decimal.Decimal) decimal.Decimal
}

// FlatFee charges a fixed dollar amount regardless of position size.
type FlatFee struct{}

func (FlatFee) Compute(_ decimal.Decimal, amount decimal.Decimal) decimal.Decimal {
	return amount
}

// PercentageFee charges a percentage of the position value.
type PercentageFee struct{}

func (PercentageFee) Compute(positionValue decimal.Decimal, amount decimal.Decimal) decimal.Decimal {
	return positionValue.Mul(amount).Div(decimal.NewFromInt(100))
}

// FormulaFor resolves a client's declared fee type to its formula,
// returning an error-free default (FlatFee) for an unrecognized type so the
// caller cannot panic on bad data; the repository layer is the place that
// should reject malformed rows.
func FormulaFor(t persistence.TransactionFeeType) TransactionFeeFormula {
	switch t {
	case persistence.TransactionFeePercentage:
		return PercentageFee{}
	default:
		return FlatFee{}
	}
}

// Breakdown is the transient per-request fee computation result.
type Breakdown struct {
	BorrowCost      money.Money `json:"borrow_cost"`
	Markup          money.Money `json:"markup"`
	TransactionFees money.Money `json:"transaction_fees"`
	TotalFee        money.Money `json:"total_fee"`
	BorrowRateUsed  money.Rate  `json:"borrow_rate_used"`
}

const daysPerYear = 365

// Calculate implements the §4.6 algorithm: borrow cost, markup, transaction
// fee, reconciled total, in that order, with decimal arithmetic throughout.
func Calculate(
	positionValue decimal.Decimal,
	loanDays int,
	currentRate money.Rate,
	client *persistence.ClientConfig,
) Breakdown {
	rateDecimal := currentRate.Decimal()

	// 2. borrow_cost = position_value * rate * (loan_days / 365)
	dayFraction := decimal.NewFromInt(int64(loanDays)).Div(decimal.NewFromInt(daysPerYear))
	borrowCostRaw := positionValue.Mul(rateDecimal).Mul(dayFraction)
	borrowCost := money.NewMoney(borrowCostRaw)

	// 3. markup = borrow_cost * (markup_percentage / 100)
	markupRaw := borrowCostRaw.Mul(client.MarkupPercentage).Div(decimal.NewFromInt(100))
	markup := money.NewMoney(markupRaw)

	// 4. transaction fee via the tagged-union formula
	formula := FormulaFor(client.TransactionFeeType)
	txFeeRaw := formula.Compute(positionValue, client.TransactionAmount)
	txFee := money.NewMoney(txFeeRaw)

	// 5. total, reconciled so components sum exactly (residual absorbed by
	// the largest component per §4.6).
	totalRaw := borrowCostRaw.Add(markupRaw).Add(txFeeRaw)
	total := money.NewMoney(totalRaw)

	reconciled := money.ReconcileSum(total, borrowCost, markup, txFee)

	return Breakdown{
		BorrowCost:      reconciled[0],
		Markup:          reconciled[1],
		TransactionFees: reconciled[2],
		TotalFee:        total,
		BorrowRateUsed:  currentRate,
	}
}
