package kafka

import (
	"time"

	"github.com/Domenick1991/seatledger/internal/domain"
	"github.com/google/uuid"
)

const (
	EventTicketPending   = "ticket_pending"
	EventTicketPaid      = "ticket_paid"
	EventTicketFailed    = "ticket_failed"
	EventTicketCancelled = "ticket_cancelled"
	EventIntegrityAlert  = "integrity_alert"
)

type TicketEvent struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	OrderCode   string    `json:"order_code"`
	FlightID    int64     `json:"flight_id"`
	SeatID      int64     `json:"seat_id"`
	CustomerID  string    `json:"customer_id"`
	Email       string    `json:"email"`
	Status      string    `json:"status"`
	Price       int64     `json:"price"`
	RedirectURL string    `json:"redirect_url,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func NewTicketEvent(eventType string, t *domain.Ticket, now time.Time) TicketEvent {
	return TicketEvent{
		ID:          uuid.NewString(),
		Type:        eventType,
		OrderCode:   t.OrderCode,
		FlightID:    t.FlightID,
		SeatID:      t.SeatID,
		CustomerID:  t.CustomerID,
		Email:       t.CustomerEmail,
		Status:      string(t.Status),
		Price:       t.Price,
		RedirectURL: t.RedirectURL,
		OccurredAt:  now,
	}
}

// IntegrityAlert is raised when a payment notification cannot be reconciled with the ledger.
type IntegrityAlert struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	OrderCode     string    `json:"order_code"`
	Outcome       string    `json:"outcome"`
	GrossAmount   int64     `json:"gross_amount"`
	CurrentStatus string    `json:"current_status,omitempty"`
	Reason        string    `json:"reason"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func NewIntegrityAlert(orderCode, outcome string, grossAmount int64, current domain.TicketStatus, reason string, now time.Time) IntegrityAlert {
	return IntegrityAlert{
		ID:            uuid.NewString(),
		Type:          EventIntegrityAlert,
		OrderCode:     orderCode,
		Outcome:       outcome,
		GrossAmount:   grossAmount,
		CurrentStatus: string(current),
		Reason:        reason,
		OccurredAt:    now,
	}
}
