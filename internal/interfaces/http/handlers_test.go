package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/locatepricer/internal/facade"
	"github.com/sawpanic/locatepricer/internal/fallback"
	"github.com/sawpanic/locatepricer/internal/money"
	"github.com/sawpanic/locatepricer/internal/pricing/fees"
	"github.com/sawpanic/locatepricer/internal/pricing/resolver"
	"github.com/sawpanic/locatepricer/internal/pricingerr"
)

type fakeFacade struct {
	rate      *resolver.ResolvedRate
	rateErr   error
	breakdown *fees.Breakdown
	feeErr    error
}

func (f *fakeFacade) GetBorrowRate(context.Context, string) (*resolver.ResolvedRate, error) {
	return f.rate, f.rateErr
}

func (f *fakeFacade) CalculateFee(context.Context, facade.CalculateFeeRequest) (*fees.Breakdown, error) {
	return f.breakdown, f.feeErr
}

func newTestRouter(f FacadeAPI) *mux.Router {
	h := NewHandlers(f, nil, nil, "test")
	r := mux.NewRouter()
	r.HandleFunc("/api/v1/rates/{ticker}", h.GetBorrowRate).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/calculate-locate", h.CalculateLocate).Methods(http.MethodPost)
	return r
}

func TestGetBorrowRateReturnsRate(t *testing.T) {
	f := &fakeFacade{rate: &resolver.ResolvedRate{
		Ticker:      "AAPL",
		CurrentRate: money.RateFromFloat(0.02),
		Provenance:  fallback.Provenance{Base: fallback.BaseLive},
	}}
	router := newTestRouter(f)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rates/AAPL", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp BorrowRateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "AAPL", resp.Ticker)
}

func TestGetBorrowRateTickerNotFoundReturns404(t *testing.T) {
	f := &fakeFacade{rateErr: pricingerr.TickerNotFound("ZZZZ")}
	router := newTestRouter(f)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rates/ZZZZ", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "TICKER_NOT_FOUND", resp.Error)
}

func TestCalculateLocateMalformedBodyReturns400(t *testing.T) {
	f := &fakeFacade{}
	router := newTestRouter(f)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/calculate-locate", bytes.NewBufferString("{not-json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCalculateLocateSuccess(t *testing.T) {
	f := &fakeFacade{breakdown: &fees.Breakdown{
		BorrowCost:      money.MoneyFromFloat(100),
		Markup:          money.MoneyFromFloat(5),
		TransactionFees: money.MoneyFromFloat(10),
		TotalFee:        money.MoneyFromFloat(115),
		BorrowRateUsed:  money.RateFromFloat(0.02),
	}}
	router := newTestRouter(f)

	body, _ := json.Marshal(CalculateLocateRequest{Ticker: "AAPL", PositionValue: decimal.NewFromInt(100000), LoanDays: 30, ClientID: "acme"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/calculate-locate", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp CalculateLocateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "115.00", resp.TotalFee.String())
	assert.Equal(t, "100.00", resp.Breakdown.BorrowCost.String())
}
