// Package money implements the exact fixed-point decimal arithmetic used by
// the pricing pipeline (C1). Money wraps a 2-decimal dollar amount, Rate a
// 4-decimal annualized rate, both backed by shopspring/decimal's big.Int
// representation so there is no float anywhere in the pipeline.
package money

import "github.com/shopspring/decimal"

// RateScale is the number of decimal places a Rate is rounded to at its
// public boundary.
const RateScale = 4

// DollarScale is the number of decimal places a Money value is rounded to at
// its public boundary.
const DollarScale = 2

// Money is a dollar amount rounded half-even to 2 decimal places at every
// public constructor and accessor.
type Money struct {
	d decimal.Decimal
}

// Rate is an annualized rate rounded half-even to 4 decimal places at every
// public constructor and accessor.
type Rate struct {
	d decimal.Decimal
}

// NewMoney rounds d half-even to DollarScale and wraps it.
func NewMoney(d decimal.Decimal) Money {
	return Money{d: d.RoundBank(DollarScale)}
}

// MoneyFromFloat builds a Money from a float64 literal (test/config
// convenience only — never used in the hot arithmetic path).
func MoneyFromFloat(f float64) Money {
	return NewMoney(decimal.NewFromFloat(f))
}

// ZeroMoney is the additive identity.
func ZeroMoney() Money { return Money{d: decimal.Zero} }

// Decimal returns the rounded underlying decimal.
func (m Money) Decimal() decimal.Decimal { return m.d }

// Add returns m+o, rounded.
func (m Money) Add(o Money) Money { return NewMoney(m.d.Add(o.d)) }

// Sub returns m-o, rounded.
func (m Money) Sub(o Money) Money { return NewMoney(m.d.Sub(o.d)) }

// Cmp compares m and o (-1, 0, 1).
func (m Money) Cmp(o Money) int { return m.d.Cmp(o.d) }

// String renders the amount with exactly DollarScale decimals.
func (m Money) String() string { return m.d.StringFixed(DollarScale) }

// Float64 is for JSON/display only; never fed back into arithmetic.
func (m Money) Float64() float64 { f, _ := m.d.Float64(); return f }

// MarshalJSON renders Money as a JSON number with fixed 2-decimal precision.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.d.StringFixed(DollarScale)), nil
}

// UnmarshalJSON parses a JSON number/string into a rounded Money.
func (m *Money) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	*m = NewMoney(d)
	return nil
}

// NewRate rounds d half-even to RateScale and wraps it.
func NewRate(d decimal.Decimal) Rate {
	return Rate{d: d.RoundBank(RateScale)}
}

// RateFromFloat builds a Rate from a float64 literal (config/test
// convenience only).
func RateFromFloat(f float64) Rate {
	return NewRate(decimal.NewFromFloat(f))
}

// Decimal returns the rounded underlying decimal. Callers doing further
// arithmetic (e.g. the resolver's adjustment chain) should prefer RawRate,
// which does not force intermediate rounding — see §4.1/§9: rounding happens only
// at final output.
func (r Rate) Decimal() decimal.Decimal { return r.d }

// Max returns the larger of two rates.
func (r Rate) Max(o Rate) Rate {
	if r.d.Cmp(o.d) >= 0 {
		return r
	}
	return o
}

// Cmp compares r and o (-1, 0, 1).
func (r Rate) Cmp(o Rate) int { return r.d.Cmp(o.d) }

// String renders the rate with exactly RateScale decimals.
func (r Rate) String() string { return r.d.StringFixed(RateScale) }

// Float64 is for JSON/display only; never fed back into arithmetic.
func (r Rate) Float64() float64 { f, _ := r.d.Float64(); return f }

// MarshalJSON renders Rate as a JSON number with fixed 4-decimal precision.
func (r Rate) MarshalJSON() ([]byte, error) {
	return []byte(r.d.StringFixed(RateScale)), nil
}

// UnmarshalJSON parses a JSON number/string into a rounded Rate.
func (r *Rate) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	*r = NewRate(d)
	return nil
}

// RawRate is an unrounded decimal used for the adjustment chain in the
// resolver, where rounding must be deferred to final output (spec §4.1/§9).
// It is distinct from Rate purely so the type system flags any place that
// accidentally rounds mid-pipeline.
type RawRate struct {
	d decimal.Decimal
}

// NewRawRate wraps d without rounding.
func NewRawRate(d decimal.Decimal) RawRate { return RawRate{d: d} }

// Decimal returns the unrounded underlying decimal.
func (r RawRate) Decimal() decimal.Decimal { return r.d }

// Mul returns r*o unrounded.
func (r RawRate) Mul(o decimal.Decimal) RawRate { return RawRate{d: r.d.Mul(o)} }

// Finalize rounds the raw rate into a public Rate, clamped to floor if floor
// is larger.
func (r RawRate) Finalize(floor Rate) Rate {
	rounded := NewRate(r.d)
	return rounded.Max(floor)
}

// ReconcileSum adjusts rounded parts so their sum exactly equals total,
// correcting for up to a one-cent rounding drift by nudging the largest
// part. total and parts are assumed already rounded to DollarScale.
func ReconcileSum(total Money, parts ...Money) []Money {
	if len(parts) == 0 {
		return parts
	}
	sum := ZeroMoney()
	largest := 0
	for i, p := range parts {
		sum = sum.Add(p)
		if p.Cmp(parts[largest]) > 0 {
			largest = i
		}
	}
	residual := total.Sub(sum)
	if residual.Decimal().IsZero() {
		return parts
	}
	out := make([]Money, len(parts))
	copy(out, parts)
	out[largest] = out[largest].Add(residual)
	return out
}
