package stock

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

func TestGetAvailableStock(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := NewQueryService(mock)

	mock.ExpectQuery(regexp.QuoteMeta(availabilitySQL)).
		WithArgs("P1").
		WillReturnRows(pgxmock.NewRows([]string{"cnt", "percent"}).AddRow(12, 10.0))

	a, err := svc.GetAvailableStock(context.Background(), "P1")
	require.NoError(t, err)
	require.Equal(t, Availability{ProductID: "P1", Count: 12, DiscountPercent: 10}, a)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAvailableStock_NoStockNoDiscount(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := NewQueryService(mock)

	mock.ExpectQuery(regexp.QuoteMeta(availabilitySQL)).
		WithArgs("P2").
		WillReturnRows(pgxmock.NewRows([]string{"cnt", "percent"}).AddRow(0, 0.0))

	a, err := svc.GetAvailableStock(context.Background(), "P2")
	require.NoError(t, err)
	require.Equal(t, 0, a.Count)
	require.Equal(t, 0.0, a.DiscountPercent)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAvailableStock_QueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := NewQueryService(mock)

	mock.ExpectQuery(regexp.QuoteMeta(availabilitySQL)).
		WithArgs("P3").
		WillReturnError(errors.New("connection reset"))

	_, err = svc.GetAvailableStock(context.Background(), "P3")
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
