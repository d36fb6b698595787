package promo

import (
	"context"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

func TestValidatePromoCode(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT percent FROM promo_codes WHERE ` + validCodeCond)).
		WithArgs("SAVE10").
		WillReturnRows(pgxmock.NewRows([]string{"percent"}).AddRow(10.0))

	percent, err := repo.ValidatePromoCode(context.Background(), "SAVE10")
	require.NoError(t, err)
	require.Equal(t, 10.0, percent)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestValidatePromoCode_Unknown(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT percent FROM promo_codes WHERE ` + validCodeCond)).
		WithArgs("NOPE").
		WillReturnError(pgx.ErrNoRows)

	_, err = repo.ValidatePromoCode(context.Background(), "NOPE")
	require.ErrorIs(t, err, ErrInvalidCode)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedeemPromoCode(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE promo_codes SET used = used + 1 WHERE ` + validCodeCond)).
		WithArgs("SAVE10").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.RedeemPromoCode(context.Background(), "SAVE10"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedeemPromoCode_ExhaustedUses(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE promo_codes SET used = used + 1 WHERE ` + validCodeCond)).
		WithArgs("SPENT").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = repo.RedeemPromoCode(context.Background(), "SPENT")
	require.ErrorIs(t, err, ErrInvalidCode)
	require.NoError(t, mock.ExpectationsWereMet())
}
