package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

func TestGetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(mock)
	created := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT id, name, price, stock_policy, created_at").
		WithArgs("P1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "price", "stock_policy", "created_at"}).
			AddRow("P1", "Spotify Premium", 1000.0, PolicyInstant, created))

	p, err := repo.GetByID(context.Background(), "P1")
	require.NoError(t, err)
	require.Equal(t, "Spotify Premium", p.Name)
	require.Equal(t, 1000.0, p.Price)
	require.Equal(t, PolicyInstant, p.StockPolicy)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(mock)

	mock.ExpectQuery("SELECT id, name, price, stock_policy, created_at").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err = repo.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestList(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(mock)
	created := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT id, name, price, stock_policy, created_at").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "price", "stock_policy", "created_at"}).
			AddRow("P2", "ChatGPT Plus", 2000.0, PolicyPreorder, created).
			AddRow("P1", "Spotify Premium", 1000.0, PolicyInstant, created))

	products, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	require.Equal(t, "P2", products[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(mock)
	p := Product{ID: "P1", Name: "Spotify Premium", Price: 1000, StockPolicy: PolicyInstant}

	mock.ExpectExec("INSERT INTO products").
		WithArgs(p.ID, p.Name, p.Price, p.StockPolicy).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Upsert(context.Background(), p))
	require.NoError(t, mock.ExpectationsWereMet())
}
