package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/seatledger/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSeat(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewSeatRepository(mock)
	now := time.Now()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(`SELECT id, flight_id, seat_number`).
			WithArgs(int64(7)).
			WillReturnRows(pgxmock.NewRows([]string{"id", "flight_id", "seat_number", "class", "is_booked", "updated_at"}).
				AddRow(int64(7), int64(1), "12A", "BUSINESS", false, now))

		seat, err := repo.GetSeat(context.Background(), 7)
		require.NoError(t, err)
		assert.Equal(t, "12A", seat.SeatNumber)
		assert.Equal(t, domain.SeatClassBusiness, seat.Class)
		assert.False(t, seat.Booked)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT id, flight_id, seat_number`).
			WithArgs(int64(8)).
			WillReturnError(pgx.ErrNoRows)

		seat, err := repo.GetSeat(context.Background(), 8)
		assert.Nil(t, seat)
		assert.True(t, errors.Is(err, domain.ErrSeatNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestListByFlight(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	now := time.Now()

	mock.ExpectQuery(`SELECT id, flight_id, seat_number`).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "flight_id", "seat_number", "class", "is_booked", "updated_at"}).
			AddRow(int64(7), int64(1), "12A", "ECONOMY", true, now).
			AddRow(int64(8), int64(1), "12B", "ECONOMY", false, now))

	seats, err := NewSeatRepository(mock).ListByFlight(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, seats, 2)
	assert.True(t, seats[0].Booked)
	assert.Equal(t, "12B", seats[1].SeatNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFlightRepository(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewFlightRepository(mock)
	now := time.Now()
	columns := []string{"id", "departure_city", "departure_code", "departure_time", "arrival_city", "arrival_code", "arrival_time", "base_price", "airplane_id", "created_at", "updated_at"}

	t.Run("GetByID", func(t *testing.T) {
		mock.ExpectQuery(`SELECT id, departure_city`).
			WithArgs(int64(1)).
			WillReturnRows(pgxmock.NewRows(columns).
				AddRow(int64(1), "Jakarta", "CGK", now, "Denpasar", "DPS", now.Add(2*time.Hour), int64(1_000_000), int64(3), now, now))

		flight, err := repo.GetByID(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, int64(1_000_000), flight.BasePrice)
		assert.Equal(t, "DPS", flight.ArrivalCode)
	})

	t.Run("GetByID not found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT id, departure_city`).
			WithArgs(int64(2)).
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.GetByID(context.Background(), 2)
		assert.True(t, errors.Is(err, domain.ErrFlightNotFound))
	})

	t.Run("List", func(t *testing.T) {
		mock.ExpectQuery(`SELECT id, departure_city`).
			WillReturnRows(pgxmock.NewRows(columns).
				AddRow(int64(1), "Jakarta", "CGK", now, "Denpasar", "DPS", now, int64(1_000_000), int64(3), now, now))

		flights, err := repo.List(context.Background())
		require.NoError(t, err)
		assert.Len(t, flights, 1)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
