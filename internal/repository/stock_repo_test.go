package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/locatepricer/internal/cache"
	"github.com/sawpanic/locatepricer/internal/persistence"
)

func testNamespacer() *cache.Namespacer {
	return cache.NewNamespacer("locatepricer", map[cache.Namespace]time.Duration{
		cache.NamespaceStock:        time.Minute,
		cache.NamespaceBrokerConfig: time.Minute,
	})
}

func TestNormalizeTicker(t *testing.T) {
	t.Run("uppercases and trims", func(t *testing.T) {
		got, ok := NormalizeTicker(" aapl ")
		assert.True(t, ok)
		assert.Equal(t, "AAPL", got)
	})
	t.Run("rejects too long", func(t *testing.T) {
		_, ok := NormalizeTicker("TOOLONG")
		assert.False(t, ok)
	})
	t.Run("rejects digits", func(t *testing.T) {
		_, ok := NormalizeTicker("AAP1")
		assert.False(t, ok)
	})
}

func TestStockRepoByTickerCacheMiss(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	sqlxDB := sqlx.NewDb(mockDB, "postgres")

	rows := sqlmock.NewRows([]string{"ticker", "borrow_status", "lender_api_id", "min_borrow_rate", "last_updated"}).
		AddRow("AAPL", "EASY", nil, "0.0200", time.Now())
	mock.ExpectQuery("SELECT ticker").WithArgs("AAPL").WillReturnRows(rows)

	repo := NewStockRepo(sqlxDB, cache.NewMemoryCache(time.Minute), testNamespacer(), time.Second)
	stock, err := repo.ByTicker(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", stock.Ticker)
	assert.Equal(t, persistence.BorrowStatusEasy, stock.BorrowStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStockRepoByTickerNotFound(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	sqlxDB := sqlx.NewDb(mockDB, "postgres")

	mock.ExpectQuery("SELECT ticker").WithArgs("ZZZZ").WillReturnError(sql.ErrNoRows)

	repo := NewStockRepo(sqlxDB, cache.NewMemoryCache(time.Minute), testNamespacer(), time.Second)
	_, err = repo.ByTicker(context.Background(), "ZZZZ")
	assert.ErrorIs(t, err, persistence.ErrNotFound)
}

func TestStockRepoByTickerServesFromCacheOnSecondCall(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	sqlxDB := sqlx.NewDb(mockDB, "postgres")

	rows := sqlmock.NewRows([]string{"ticker", "borrow_status", "lender_api_id", "min_borrow_rate", "last_updated"}).
		AddRow("AAPL", "EASY", nil, "0.0200", time.Now())
	mock.ExpectQuery("SELECT ticker").WithArgs("AAPL").WillReturnRows(rows)

	repo := NewStockRepo(sqlxDB, cache.NewMemoryCache(time.Minute), testNamespacer(), time.Second)
	_, err = repo.ByTicker(context.Background(), "AAPL")
	require.NoError(t, err)

	_, err = repo.ByTicker(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}
