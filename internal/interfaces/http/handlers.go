package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/sawpanic/locatepricer/internal/cache"
	"github.com/sawpanic/locatepricer/internal/facade"
	"github.com/sawpanic/locatepricer/internal/persistence"
	"github.com/sawpanic/locatepricer/internal/pricing/fees"
	"github.com/sawpanic/locatepricer/internal/pricing/resolver"
	"github.com/sawpanic/locatepricer/internal/pricingerr"
)

// FacadeAPI is the subset of facade.Facade the HTTP layer depends on,
// narrowed to an interface so handler tests can substitute a fake.
type FacadeAPI interface {
	GetBorrowRate(ctx context.Context, ticker string) (*resolver.ResolvedRate, error)
	CalculateFee(ctx context.Context, req facade.CalculateFeeRequest) (*fees.Breakdown, error)
}

// Handlers holds the facade and the dependencies the health check needs to
// report on (cache, database) without going through the facade itself.
type Handlers struct {
	facade    FacadeAPI
	cache     cache.Cache
	dbHealth  persistence.RepositoryHealth
	startedAt time.Time
	version   string
}

// NewHandlers builds the HTTP handler set bound to f, cache, and dbHealth.
func NewHandlers(f FacadeAPI, cacheBackend cache.Cache, dbHealth persistence.RepositoryHealth, version string) *Handlers {
	return &Handlers{facade: f, cache: cacheBackend, dbHealth: dbHealth, startedAt: time.Now(), version: version}
}

// writeJSON writes v as a JSON body with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes the standardized error envelope for err, mapping its
// pricingerr.Kind to a stable HTTP status and code.
func writeError(w http.ResponseWriter, requestID string, err error) {
	kind := pricingerr.KindOf(err)
	resp := ErrorResponse{
		Status:    "error",
		Error:     kind.HTTPCode(),
		Message:   err.Error(),
		RequestID: requestID,
		Timestamp: time.Now(),
	}
	if pe, ok := err.(*pricingerr.Error); ok && pe.Field != "" {
		resp.Field = pe.Field
	}
	writeJSON(w, kind.HTTPStatus(), resp)
}

// GetBorrowRate handles GET /api/v1/rates/{ticker}.
func (h *Handlers) GetBorrowRate(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFrom(r.Context())
	ticker := mux.Vars(r)["ticker"]

	resolved, err := h.facade.GetBorrowRate(r.Context(), ticker)
	if err != nil {
		writeError(w, requestID, err)
		return
	}

	writeJSON(w, http.StatusOK, resolvedRateToResponse(resolved))
}

// CalculateLocate handles POST /api/v1/calculate-locate.
func (h *Handlers) CalculateLocate(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFrom(r.Context())

	var body CalculateLocateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, requestID, pricingerr.Validation("body", "malformed JSON"))
		return
	}

	breakdown, err := h.facade.CalculateFee(r.Context(), facade.CalculateFeeRequest{
		RequestID:     requestID,
		Ticker:        body.Ticker,
		PositionValue: body.PositionValue,
		LoanDays:      body.LoanDays,
		ClientID:      body.ClientID,
	})
	if err != nil {
		writeError(w, requestID, err)
		return
	}

	writeJSON(w, http.StatusOK, CalculateLocateResponse{
		Status: "success",
		Breakdown: BreakdownPayload{
			BorrowCost:      breakdown.BorrowCost,
			Markup:          breakdown.Markup,
			TransactionFees: breakdown.TransactionFees,
		},
		TotalFee:       breakdown.TotalFee,
		BorrowRateUsed: breakdown.BorrowRateUsed,
	})
}

func resolvedRateToResponse(r *resolver.ResolvedRate) BorrowRateResponse {
	resp := BorrowRateResponse{
		Status:       "success",
		Ticker:       r.Ticker,
		CurrentRate:  r.CurrentRate,
		BorrowStatus: string(r.BorrowStatus),
		Provenance:   r.Provenance,
		LastUpdated:  r.ComputedAt,
	}
	if r.VolatilityIndex != nil {
		f, _ := r.VolatilityIndex.Float64()
		resp.VolatilityIndex = &f
	}
	resp.EventRiskFactor = r.EventRiskFactor
	return resp
}
