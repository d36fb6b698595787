package sequence

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

func TestNextSequence(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(mock)

	mock.ExpectQuery("INSERT INTO event_sequence").
		WithArgs("order-1").
		WillReturnRows(pgxmock.NewRows([]string{"last_sequence"}).AddRow(int64(4)))

	seq, err := repo.NextSequence(context.Background(), "order-1")
	require.NoError(t, err)
	require.Equal(t, int64(4), seq)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNextSequence_QueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(mock)

	mock.ExpectQuery("INSERT INTO event_sequence").
		WithArgs("order-1").
		WillReturnError(errors.New("connection reset"))

	_, err = repo.NextSequence(context.Background(), "order-1")
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
