package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/seatledger/internal/domain"
	"github.com/jackc/pgx/v5"
)

type FlightRepository interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
}

type PGFlightRepository struct {
	db DB
}

func NewFlightRepository(db DB) FlightRepository {
	return &PGFlightRepository{db: db}
}

const selectFlight = `SELECT id, departure_city, departure_code, departure_time, arrival_city, arrival_code, arrival_time, base_price, airplane_id, created_at, updated_at FROM flights`

func (r *PGFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, selectFlight+` ORDER BY departure_time`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, *f)
	}
	return flights, rows.Err()
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	f, err := scanFlight(r.db.QueryRow(ctx, selectFlight+` WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrFlightNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get flight %d: %w", id, err)
	}
	return f, nil
}

func scanFlight(row pgx.Row) (*domain.Flight, error) {
	var f domain.Flight
	if err := row.Scan(&f.ID, &f.DepartureCity, &f.DepartureCode, &f.DepartureTime, &f.ArrivalCity, &f.ArrivalCode, &f.ArrivalTime, &f.BasePrice, &f.AirplaneID, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

var _ FlightRepository = (*PGFlightRepository)(nil)
