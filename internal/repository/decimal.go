package repository

import "github.com/shopspring/decimal"

// decimalFromText parses a numeric column scanned as text (Postgres NUMERIC
// cast via ::text) into a decimal.Decimal, avoiding any float round trip.
func decimalFromText(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
