package persistence

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestErrNotFoundIsStableSentinel(t *testing.T) {
	assert.Equal(t, "not found", ErrNotFound.Error())
	assert.Equal(t, ErrNotFound, ErrNotFound)
}

func TestStockFields(t *testing.T) {
	s := Stock{
		Ticker:        "AAPL",
		BorrowStatus:  BorrowStatusEasy,
		MinBorrowRate: decimal.NewFromFloat(0.02),
		LastUpdated:   time.Now(),
	}
	assert.Equal(t, BorrowStatusEasy, s.BorrowStatus)
	assert.Nil(t, s.LenderAPIID)
}

func TestClientConfigActiveFlag(t *testing.T) {
	c := ClientConfig{
		ClientID:           "acme",
		MarkupPercentage:   decimal.NewFromFloat(0.1),
		TransactionFeeType: TransactionFeeFlat,
		TransactionAmount:  decimal.NewFromFloat(25),
		Active:             false,
	}
	assert.False(t, c.Active)
	assert.Equal(t, TransactionFeeFlat, c.TransactionFeeType)
}

func TestHealthCheckStructure(t *testing.T) {
	hc := HealthCheck{
		Healthy:        true,
		ConnectionPool: map[string]int{"active": 5, "idle": 10, "max": 20},
		LastCheck:      time.Now(),
		ResponseTimeMS: 45,
	}
	assert.True(t, hc.Healthy)
	assert.Empty(t, hc.Errors)
	assert.Contains(t, hc.ConnectionPool, "active")
}
