// Package repotest provides an in-memory ledger with the same uniqueness and locking
// semantics as the Postgres repositories, for service-level tests.
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Domenick1991/seatledger/internal/domain"
	"github.com/Domenick1991/seatledger/internal/repository"
)

type Store struct {
	mu      sync.Mutex
	flights map[int64]domain.Flight
	seats   map[int64]domain.FlightSeat
	tickets map[int64]domain.Ticket
	nextID  int64
	now     func() time.Time
}

func NewStore() *Store {
	return &Store{
		flights: make(map[int64]domain.Flight),
		seats:   make(map[int64]domain.FlightSeat),
		tickets: make(map[int64]domain.Ticket),
		now:     time.Now,
	}
}

// SetClock overrides the clock used for created_at.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) AddFlight(f domain.Flight) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flights[f.ID] = f
}

func (s *Store) AddSeat(seat domain.FlightSeat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seats[seat.ID] = seat
}

// Seat returns a copy of the stored seat.
func (s *Store) Seat(id int64) domain.FlightSeat {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seats[id]
}

// Tickets returns every stored ticket for seatID, including terminal ones.
func (s *Store) Tickets(seatID int64) []domain.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Ticket
	for _, t := range s.tickets {
		if t.SeatID == seatID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Flights

func (s *Store) List(_ context.Context) ([]domain.Flight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Flight, 0, len(s.flights))
	for _, f := range s.flights {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DepartureTime.Before(out[j].DepartureTime) })
	return out, nil
}

func (s *Store) GetByID(_ context.Context, id int64) (*domain.Flight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.flights[id]
	if !ok {
		return nil, domain.ErrFlightNotFound
	}
	return &f, nil
}

// Seats

func (s *Store) GetSeat(_ context.Context, seatID int64) (*domain.FlightSeat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seat, ok := s.seats[seatID]
	if !ok {
		return nil, domain.ErrSeatNotFound
	}
	return &seat, nil
}

func (s *Store) ListByFlight(_ context.Context, flightID int64) ([]domain.FlightSeat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.FlightSeat, 0)
	for _, seat := range s.seats {
		if seat.FlightID == flightID {
			out = append(out, seat)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SeatNumber < out[j].SeatNumber })
	return out, nil
}

// Tickets

func (s *Store) FindLiveBySeat(_ context.Context, seatID int64) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.liveTicket(seatID); ok {
		return &t, nil
	}
	return nil, nil
}

func (s *Store) liveTicket(seatID int64) (domain.Ticket, bool) {
	for _, t := range s.tickets {
		if t.SeatID == seatID && t.Status.Live() {
			return t, true
		}
	}
	return domain.Ticket{}, false
}

func (s *Store) GetByOrderCode(_ context.Context, orderCode string) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.byOrderCode(orderCode)
	if !ok {
		return nil, domain.ErrTicketNotFound
	}
	return &t, nil
}

func (s *Store) byOrderCode(orderCode string) (domain.Ticket, bool) {
	for _, t := range s.tickets {
		if t.OrderCode == orderCode {
			return t, true
		}
	}
	return domain.Ticket{}, false
}

func (s *Store) ListByStatusBefore(_ context.Context, status domain.TicketStatus, before time.Time, limit int) ([]domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Ticket, 0)
	for _, t := range s.tickets {
		if t.Status == status && t.UpdatedAt.Before(before) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) CreatePending(_ context.Context, t *domain.Ticket, staleTicketID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seat, ok := s.seats[t.SeatID]
	if !ok {
		return domain.ErrSeatNotFound
	}
	if seat.Booked {
		return domain.ErrSeatUnavailable
	}

	if staleTicketID != 0 {
		stale, ok := s.tickets[staleTicketID]
		if !ok || stale.SeatID != t.SeatID || stale.Status != domain.TicketStatusPending {
			return domain.Errorf(domain.KindConflict, "ticket %d changed concurrently", staleTicketID)
		}
		delete(s.tickets, staleTicketID)
	}

	if _, ok := s.liveTicket(t.SeatID); ok {
		return domain.Errorf(domain.KindConflict, "seat %d already has a live ticket", t.SeatID)
	}
	if _, ok := s.byOrderCode(t.OrderCode); ok {
		return domain.Errorf(domain.KindConflict, "order code %s already used", t.OrderCode)
	}

	s.nextID++
	now := s.now()
	t.ID = s.nextID
	t.Status = domain.TicketStatusPending
	t.CreatedAt = now
	t.UpdatedAt = now
	s.tickets[t.ID] = *t
	return nil
}

func (s *Store) Delete(_ context.Context, ticketID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[ticketID]
	if !ok || (t.Status != domain.TicketStatusPending && t.Status != domain.TicketStatusFailed) {
		return domain.Wrap(domain.KindConflict, "ticket is not deletable", domain.ErrIllegalTransition)
	}
	delete(s.tickets, ticketID)
	return nil
}

func (s *Store) Transition(_ context.Context, orderCode string, fn repository.TransitionFunc) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.byOrderCode(orderCode)
	if !ok {
		return nil, domain.ErrTicketNotFound
	}

	t := stored
	changed, err := fn(&t)
	if err != nil {
		return &stored, err
	}
	if !changed {
		return &t, nil
	}

	s.tickets[t.ID] = t
	seat := s.seats[t.SeatID]
	seat.Booked = t.SeatBooked()
	seat.UpdatedAt = t.UpdatedAt
	s.seats[t.SeatID] = seat

	out := t
	return &out, nil
}

var (
	_ repository.FlightRepository = (*Store)(nil)
	_ repository.SeatRepository   = (*Store)(nil)
	_ repository.TicketRepository = (*Store)(nil)
)
