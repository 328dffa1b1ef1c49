package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/seatledger/internal/domain"
	"github.com/jackc/pgx/v5"
)

// SeatRepository is the read-only seat catalog. Seats are created by the scheduling side;
// the booked flag is written only by PGTicketRepository.Transition.
type SeatRepository interface {
	GetSeat(ctx context.Context, seatID int64) (*domain.FlightSeat, error)
	ListByFlight(ctx context.Context, flightID int64) ([]domain.FlightSeat, error)
}

type PGSeatRepository struct {
	db DB
}

func NewSeatRepository(db DB) SeatRepository {
	return &PGSeatRepository{db: db}
}

const selectSeat = `SELECT id, flight_id, seat_number, class, is_booked, updated_at FROM flight_seats`

func (r *PGSeatRepository) GetSeat(ctx context.Context, seatID int64) (*domain.FlightSeat, error) {
	s, err := scanSeat(r.db.QueryRow(ctx, selectSeat+` WHERE id=$1`, seatID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSeatNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get seat %d: %w", seatID, err)
	}
	return s, nil
}

func (r *PGSeatRepository) ListByFlight(ctx context.Context, flightID int64) ([]domain.FlightSeat, error) {
	rows, err := r.db.Query(ctx, selectSeat+` WHERE flight_id=$1 ORDER BY seat_number`, flightID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make([]domain.FlightSeat, 0)
	for rows.Next() {
		s, err := scanSeat(rows)
		if err != nil {
			return nil, err
		}
		seats = append(seats, *s)
	}
	return seats, rows.Err()
}

func scanSeat(row pgx.Row) (*domain.FlightSeat, error) {
	var (
		s     domain.FlightSeat
		class string
	)
	if err := row.Scan(&s.ID, &s.FlightID, &s.SeatNumber, &class, &s.Booked, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.Class = domain.SeatClass(class)
	return &s, nil
}

var _ SeatRepository = (*PGSeatRepository)(nil)
