package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) Config {
	return Config{
		BaseURL:                 baseURL,
		RequestTimeout:          2 * time.Second,
		MaxRetries:              1,
		BackoffBase:             5 * time.Millisecond,
		BackoffMax:              20 * time.Millisecond,
		BreakerFailureThreshold: 5,
		BreakerCooldown:         50 * time.Millisecond,
		RateLimitRPS:            100,
		RateLimitBurst:          100,
	}
}

func TestBorrowRateClientFetchRateLive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ticker":"AAPL","rate":0.015,"status":"EASY","timestamp":"2026-01-01T00:00:00Z"}`))
	}))
	defer srv.Close()

	c := NewBorrowRateClient(testConfig(srv.URL))
	res, err := c.FetchRate(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.False(t, res.NotFound)
	assert.Equal(t, SourceLive, res.Source)
	assert.Equal(t, BorrowStatusEasy, res.Status)
	assert.True(t, res.Rate.Equal(decimal.RequireFromString("0.015")))
}

func TestBorrowRateClientFetchRateNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewBorrowRateClient(testConfig(srv.URL))
	res, err := c.FetchRate(context.Background(), "ZZZZ")
	require.NoError(t, err)
	assert.True(t, res.NotFound)
}

func TestBorrowRateClientFetchRateServerErrorReturnsErr(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewBorrowRateClient(testConfig(srv.URL))
	_, err := c.FetchRate(context.Background(), "AAPL")
	assert.Error(t, err)
}
