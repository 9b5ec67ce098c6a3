package facade

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/locatepricer/internal/audit"
	"github.com/sawpanic/locatepricer/internal/fallback"
	"github.com/sawpanic/locatepricer/internal/money"
	"github.com/sawpanic/locatepricer/internal/persistence"
	"github.com/sawpanic/locatepricer/internal/pricing/resolver"
	"github.com/sawpanic/locatepricer/internal/pricingerr"
)

type fakeResolver struct {
	rate *resolver.ResolvedRate
	err  error
}

func (f *fakeResolver) ResolveRate(context.Context, string) (*resolver.ResolvedRate, error) {
	return f.rate, f.err
}

type fakeClientRepo struct {
	cfg *persistence.ClientConfig
	err error
}

func (f *fakeClientRepo) ByID(context.Context, string) (*persistence.ClientConfig, error) {
	return f.cfg, f.err
}

func newTestFacade(res RateResolver, clients persistence.ClientRepo) *Facade {
	emitter := audit.NewEmitter(audit.NoopSink{}, 16, 1)
	return New(res, clients, emitter, 2*time.Second)
}

func TestCalculateFeeRejectsInactiveClient(t *testing.T) {
	res := &fakeResolver{rate: &resolver.ResolvedRate{Ticker: "AAPL", CurrentRate: money.RateFromFloat(0.02)}}
	clients := &fakeClientRepo{cfg: &persistence.ClientConfig{ClientID: "acme", Active: false}}
	f := newTestFacade(res, clients)

	_, err := f.CalculateFee(context.Background(), CalculateFeeRequest{
		Ticker:        "AAPL",
		PositionValue: decimal.NewFromInt(1000),
		LoanDays:      10,
		ClientID:      "acme",
	})

	require.Error(t, err)
	assert.Equal(t, pricingerr.KindClientNotFound, pricingerr.KindOf(err))
}

func TestCalculateFeeRejectsInvalidPositionValue(t *testing.T) {
	f := newTestFacade(&fakeResolver{}, &fakeClientRepo{})

	_, err := f.CalculateFee(context.Background(), CalculateFeeRequest{
		Ticker:        "AAPL",
		PositionValue: decimal.NewFromInt(0),
		LoanDays:      10,
		ClientID:      "acme",
	})

	require.Error(t, err)
	assert.Equal(t, pricingerr.KindValidation, pricingerr.KindOf(err))
}

func TestCalculateFeeHappyPathEmitsAudit(t *testing.T) {
	res := &fakeResolver{rate: &resolver.ResolvedRate{
		Ticker:      "AAPL",
		CurrentRate: money.RateFromFloat(0.02),
		Provenance:  fallback.Provenance{Base: fallback.BaseLive},
	}}
	clients := &fakeClientRepo{cfg: &persistence.ClientConfig{
		ClientID:           "acme",
		Active:             true,
		MarkupPercentage:   decimal.NewFromFloat(5),
		TransactionFeeType: persistence.TransactionFeeFlat,
		TransactionAmount:  decimal.NewFromFloat(10),
	}}
	f := newTestFacade(res, clients)

	breakdown, err := f.CalculateFee(context.Background(), CalculateFeeRequest{
		Ticker:        "AAPL",
		PositionValue: decimal.NewFromInt(100000),
		LoanDays:      30,
		ClientID:      "acme",
	})

	require.NoError(t, err)
	assert.Equal(t, "10.00", breakdown.TransactionFees.String())
	assert.Equal(t, int64(1), f.auditEmitter.Stats().Submitted)
}

func TestGetBorrowRateRejectsMalformedTicker(t *testing.T) {
	f := newTestFacade(&fakeResolver{}, &fakeClientRepo{})
	_, err := f.GetBorrowRate(context.Background(), "too-long-ticker")
	require.Error(t, err)
	assert.Equal(t, pricingerr.KindValidation, pricingerr.KindOf(err))
}
