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

func TestClientRepoByIDReturnsInactiveClientsUnfiltered(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	sqlxDB := sqlx.NewDb(mockDB, "postgres")

	rows := sqlmock.NewRows([]string{"client_id", "markup_percentage", "transaction_fee_type", "transaction_amount", "active", "last_updated"}).
		AddRow("acme", "0.1000", "FLAT", "25.00", false, time.Now())
	mock.ExpectQuery("SELECT client_id").WithArgs("acme").WillReturnRows(rows)

	repo := NewClientRepo(sqlxDB, cache.NewMemoryCache(time.Minute), testNamespacer(), time.Second)
	client, err := repo.ByID(context.Background(), "acme")
	require.NoError(t, err)
	assert.False(t, client.Active)
	assert.Equal(t, persistence.TransactionFeeFlat, client.TransactionFeeType)
}

func TestClientRepoByIDNotFound(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	sqlxDB := sqlx.NewDb(mockDB, "postgres")

	mock.ExpectQuery("SELECT client_id").WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	repo := NewClientRepo(sqlxDB, cache.NewMemoryCache(time.Minute), testNamespacer(), time.Second)
	_, err = repo.ByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, persistence.ErrNotFound)
}

func TestDecimalFromTextParsesScaledStrings(t *testing.T) {
	d, err := decimalFromText("0.0200")
	require.NoError(t, err)
	assert.Equal(t, "0.02", d.StringFixed(2))
}
