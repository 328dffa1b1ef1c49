package flights

import (
	"context"

	"github.com/Domenick1991/seatledger/internal/domain"
	"github.com/Domenick1991/seatledger/internal/repository"
	"github.com/sirupsen/logrus"
)

type FlightUseCase interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	ListSeats(ctx context.Context, flightID int64) ([]domain.FlightSeat, error)
}

type FlightCache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, error)
	SetFlights(ctx context.Context, flights []domain.Flight) error
	GetFlight(ctx context.Context, id int64) (*domain.Flight, error)
	SetFlight(ctx context.Context, flight *domain.Flight) error
}

type FlightService struct {
	repo   repository.FlightRepository
	seats  repository.SeatRepository
	cache  FlightCache
	logger *logrus.Logger
}

func NewFlightService(repo repository.FlightRepository, seats repository.SeatRepository, cache FlightCache, logger *logrus.Logger) *FlightService {
	return &FlightService{repo: repo, seats: seats, cache: cache, logger: logger}
}

func (s *FlightService) List(ctx context.Context) ([]domain.Flight, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetFlights(ctx); err == nil && cached != nil {
			return cached, nil
		} else if err != nil {
			s.logger.WithContext(ctx).WithError(err).Warn("flights cache read failed")
		}
	}

	flights, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetFlights(ctx, flights); err != nil {
			s.logger.WithContext(ctx).WithError(err).Warn("flights cache write failed")
		}
	}
	return flights, nil
}

// GetByID is read-through: flights never change once seats are sold on them.
func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetFlight(ctx, id); err == nil && cached != nil {
			return cached, nil
		} else if err != nil {
			s.logger.WithContext(ctx).WithError(err).WithField("flight_id", id).Warn("flight cache read failed")
		}
	}

	flight, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetFlight(ctx, flight); err != nil {
			s.logger.WithContext(ctx).WithError(err).WithField("flight_id", id).Warn("flight cache write failed")
		}
	}
	return flight, nil
}

// ListSeats always reads the ledger; booked flags are never served from cache.
func (s *FlightService) ListSeats(ctx context.Context, flightID int64) ([]domain.FlightSeat, error) {
	if _, err := s.GetByID(ctx, flightID); err != nil {
		return nil, err
	}
	return s.seats.ListByFlight(ctx, flightID)
}

var _ FlightUseCase = (*FlightService)(nil)
