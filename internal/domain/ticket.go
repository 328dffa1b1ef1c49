package domain

import "time"

type TicketStatus string

const (
	TicketStatusPending   TicketStatus = "PENDING"
	TicketStatusSuccess   TicketStatus = "SUCCESS"
	TicketStatusFailed    TicketStatus = "FAILED"
	TicketStatusCancelled TicketStatus = "CANCELLED"
)

// transitions lists every legal status change. SUCCESS -> CANCELLED is only reachable through Cancel.
var transitions = map[TicketStatus][]TicketStatus{
	TicketStatusPending: {TicketStatusSuccess, TicketStatusFailed, TicketStatusCancelled},
	TicketStatusSuccess: {TicketStatusCancelled},
}

func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusPending, TicketStatusSuccess, TicketStatusFailed, TicketStatusCancelled:
		return true
	}
	return false
}

// Live reports whether the status holds the seat (PENDING or SUCCESS).
func (s TicketStatus) Live() bool {
	return s == TicketStatusPending || s == TicketStatusSuccess
}

func (s TicketStatus) Terminal() bool {
	return s != TicketStatusPending
}

func (s TicketStatus) CanTransition(to TicketStatus) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// ParseOutcome accepts the two outcomes a payment notification may carry.
func ParseOutcome(raw string) (TicketStatus, error) {
	switch s := TicketStatus(raw); s {
	case TicketStatusSuccess, TicketStatusFailed:
		return s, nil
	}
	return "", Errorf(KindValidation, "unsupported outcome %q", raw)
}

type Ticket struct {
	ID            int64        `json:"id"`
	OrderCode     string       `json:"order_code"`
	FlightID      int64        `json:"flight_id"`
	SeatID        int64        `json:"seat_id"`
	CustomerID    string       `json:"customer_id"`
	CustomerEmail string       `json:"customer_email"`
	Status        TicketStatus `json:"status"`
	Price         int64        `json:"price"`
	PaymentToken  string       `json:"payment_token"`
	RedirectURL   string       `json:"redirect_url"`
	PaidAt        *time.Time   `json:"paid_at,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// SeatBooked is the seat flag implied by the ticket's status.
func (t *Ticket) SeatBooked() bool {
	return t.Status == TicketStatusSuccess
}

// transition is the single place a ticket's status changes.
func (t *Ticket) transition(to TicketStatus, now time.Time) error {
	if !t.Status.CanTransition(to) {
		return Wrap(KindValidation, string(t.Status)+" -> "+string(to), ErrIllegalTransition)
	}
	t.Status = to
	t.UpdatedAt = now
	if to == TicketStatusSuccess {
		paid := now
		t.PaidAt = &paid
	}
	return nil
}

// Reconcile applies a payment outcome. It returns false with no error for a replayed
// notification, and ErrIntegrity when the outcome contradicts the stored state.
func (t *Ticket) Reconcile(outcome TicketStatus, now time.Time) (bool, error) {
	if outcome != TicketStatusSuccess && outcome != TicketStatusFailed {
		return false, Errorf(KindValidation, "unsupported outcome %q", outcome)
	}

	switch {
	case t.Status == TicketStatusPending:
		return true, t.transition(outcome, now)
	case t.Status == outcome:
		return false, nil
	case t.Status == TicketStatusCancelled && outcome == TicketStatusSuccess && t.PaidAt != nil:
		return false, nil
	case t.Status == TicketStatusCancelled && outcome == TicketStatusFailed && t.PaidAt == nil:
		return false, nil
	}

	return false, &Error{
		Kind:    KindIntegrity,
		Message: "payment outcome " + string(outcome) + " contradicts ticket status " + string(t.Status),
	}
}

// Cancel is the customer-initiated forced transition. A foreign ticket is reported as not found.
func (t *Ticket) Cancel(customerID string, now time.Time) (bool, error) {
	if t.CustomerID != customerID {
		return false, ErrTicketNotFound
	}
	switch t.Status {
	case TicketStatusCancelled, TicketStatusFailed:
		return false, nil
	}
	return true, t.transition(TicketStatusCancelled, now)
}
