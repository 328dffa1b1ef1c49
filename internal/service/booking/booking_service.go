package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/seatledger/internal/domain"
	"github.com/Domenick1991/seatledger/internal/kafka"
	"github.com/Domenick1991/seatledger/internal/payment"
	"github.com/Domenick1991/seatledger/internal/repository"
	"github.com/sirupsen/logrus"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Ticket, error)
	GetTicket(ctx context.Context, orderCode, customerID string) (*domain.Ticket, error)
	CancelBooking(ctx context.Context, orderCode, customerID string) (*domain.Ticket, error)
	PurgeFailedTickets(ctx context.Context) (int, error)
}

type FlightCatalog interface {
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	seats              repository.SeatRepository
	tickets            repository.TicketRepository
	flights            FlightCatalog
	gateway            payment.Gateway
	producer           Producer
	logger             *logrus.Logger
	ticketTopic        string
	notificationsTopic string
	holdTTL            time.Duration
	failedRetention    time.Duration
	batchSize          int
	now                func() time.Time
}

type CreateBookingInput struct {
	CustomerID    string
	CustomerEmail string
	FlightID      int64
	SeatID        int64
	SeatClass     domain.SeatClass
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

// WithHoldTTL protects another customer's PENDING ticket from replacement while it is younger than ttl.
func WithHoldTTL(ttl time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		s.holdTTL = ttl
	}
}

func WithFailedRetention(retention time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		s.failedRetention = retention
	}
}

func WithBatchSize(n int) BookingServiceOption {
	return func(s *BookingService) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func NewBookingService(
	seats repository.SeatRepository,
	tickets repository.TicketRepository,
	flights FlightCatalog,
	gateway payment.Gateway,
	producer Producer,
	logger *logrus.Logger,
	ticketTopic string,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		seats:           seats,
		tickets:         tickets,
		flights:         flights,
		gateway:         gateway,
		producer:        producer,
		logger:          logger,
		ticketTopic:     ticketTopic,
		failedRetention: 30 * 24 * time.Hour,
		batchSize:       100,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (i CreateBookingInput) validate() error {
	switch {
	case i.CustomerID == "":
		return domain.ErrUnauthenticated
	case i.FlightID <= 0:
		return domain.Errorf(domain.KindValidation, "flight_id must be positive")
	case i.SeatID <= 0:
		return domain.Errorf(domain.KindValidation, "seat_id must be positive")
	case !i.SeatClass.Valid():
		return domain.Errorf(domain.KindValidation, "unknown seat class %q", i.SeatClass)
	}
	return nil
}

// CreateBooking opens a payment session for the seat and records a PENDING ticket for it.
// The gateway is called before anything is written, so a gateway failure leaves the ledger untouched.
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Ticket, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	log := s.logger.WithContext(ctx).WithFields(logrus.Fields{
		"customer_id": input.CustomerID,
		"flight_id":   input.FlightID,
		"seat_id":     input.SeatID,
	})

	seat, err := s.seats.GetSeat(ctx, input.SeatID)
	if err != nil {
		return nil, err
	}
	if seat.FlightID != input.FlightID {
		return nil, domain.Wrap(domain.KindSeatNotFound, fmt.Sprintf("seat %d does not belong to flight %d", seat.ID, input.FlightID), domain.ErrSeatNotFound)
	}
	if seat.Class != input.SeatClass {
		return nil, domain.Errorf(domain.KindValidation, "seat %s is %s, not %s", seat.SeatNumber, seat.Class, input.SeatClass)
	}
	if seat.Booked {
		return nil, domain.ErrSeatUnavailable
	}

	now := s.now()
	staleID, err := s.staleTicket(ctx, seat.ID, input.CustomerID, now)
	if err != nil {
		return nil, err
	}

	flight, err := s.flights.GetByID(ctx, input.FlightID)
	if err != nil {
		return nil, err
	}
	price, err := seat.Class.Price(flight.BasePrice)
	if err != nil {
		return nil, err
	}

	orderCode, err := domain.NewOrderCode(now)
	if err != nil {
		return nil, fmt.Errorf("generate order code: %w", err)
	}
	log = log.WithField("order_code", orderCode)

	session, err := s.gateway.CreateSession(ctx, payment.SessionRequest{
		OrderCode:     orderCode,
		GrossAmount:   price,
		CustomerID:    input.CustomerID,
		CustomerEmail: input.CustomerEmail,
		ItemID:        fmt.Sprintf("seat-%d", seat.ID),
		ItemName:      fmt.Sprintf("%s-%s seat %s (%s)", flight.DepartureCode, flight.ArrivalCode, seat.SeatNumber, seat.Class),
	})
	if err != nil {
		log.WithError(err).Warn("payment session not created")
		return nil, err
	}

	ticket := &domain.Ticket{
		OrderCode:     orderCode,
		FlightID:      input.FlightID,
		SeatID:        seat.ID,
		CustomerID:    input.CustomerID,
		CustomerEmail: input.CustomerEmail,
		Price:         price,
		PaymentToken:  session.Token,
		RedirectURL:   session.RedirectURL,
	}
	if err := s.tickets.CreatePending(ctx, ticket, staleID); err != nil {
		// The session is abandoned and expires at the gateway.
		log.WithError(err).Warn("pending ticket not written")
		return nil, err
	}

	if staleID != 0 {
		log.WithField("stale_ticket_id", staleID).Info("replaced abandoned pending ticket")
	}
	log.WithField("price", price).Info("pending ticket created")
	s.publish(ctx, kafka.EventTicketPending, ticket)
	return ticket, nil
}

// staleTicket returns the id of the PENDING ticket the new booking replaces, or 0 when the seat is free.
func (s *BookingService) staleTicket(ctx context.Context, seatID int64, customerID string, now time.Time) (int64, error) {
	live, err := s.tickets.FindLiveBySeat(ctx, seatID)
	if err != nil {
		return 0, err
	}
	if live == nil {
		return 0, nil
	}
	if live.Status == domain.TicketStatusSuccess {
		return 0, domain.ErrSeatUnavailable
	}
	if s.holdTTL > 0 && live.CustomerID != customerID && now.Sub(live.CreatedAt) < s.holdTTL {
		return 0, domain.ErrSeatUnavailable
	}
	return live.ID, nil
}

func (s *BookingService) GetTicket(ctx context.Context, orderCode, customerID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByOrderCode(ctx, orderCode)
	if err != nil {
		return nil, err
	}
	if ticket.CustomerID != customerID {
		return nil, domain.ErrTicketNotFound
	}
	return ticket, nil
}

// CancelBooking moves the customer's ticket to CANCELLED and releases the seat in the same transaction.
func (s *BookingService) CancelBooking(ctx context.Context, orderCode, customerID string) (*domain.Ticket, error) {
	var changed bool
	ticket, err := s.tickets.Transition(ctx, orderCode, func(t *domain.Ticket) (bool, error) {
		var err error
		changed, err = t.Cancel(customerID, s.now())
		return changed, err
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.logger.WithContext(ctx).WithField("order_code", orderCode).Info("ticket cancelled")
		s.publish(ctx, kafka.EventTicketCancelled, ticket)
	}
	return ticket, nil
}

// PurgeFailedTickets deletes FAILED tickets older than the retention window.
// Until then they are kept so redelivered FAILED notifications stay no-ops.
func (s *BookingService) PurgeFailedTickets(ctx context.Context) (int, error) {
	before := s.now().Add(-s.failedRetention)
	candidates, err := s.tickets.ListByStatusBefore(ctx, domain.TicketStatusFailed, before, s.batchSize)
	if err != nil {
		return 0, err
	}

	purged := 0
	for _, t := range candidates {
		if err := s.tickets.Delete(ctx, t.ID); err != nil {
			s.logger.WithContext(ctx).WithError(err).WithField("order_code", t.OrderCode).Warn("failed to purge ticket")
			continue
		}
		purged++
	}
	return purged, nil
}

// publish is best effort: the ledger is already committed and stays authoritative.
func (s *BookingService) publish(ctx context.Context, eventType string, ticket *domain.Ticket) {
	if s.producer == nil {
		return
	}
	event := kafka.NewTicketEvent(eventType, ticket, s.now())

	for _, topic := range []string{s.ticketTopic, s.notificationsTopic} {
		if topic == "" {
			continue
		}
		if err := s.producer.Publish(ctx, topic, ticket.OrderCode, event); err != nil {
			s.logger.WithContext(ctx).WithError(err).WithFields(logrus.Fields{
				"topic":      topic,
				"event_type": eventType,
				"order_code": ticket.OrderCode,
			}).Warn("failed to publish ticket event")
		}
	}
}

var _ BookingUseCase = (*BookingService)(nil)
