package email

import (
	"context"
	"fmt"

	"github.com/Domenick1991/seatledger/internal/kafka"
	"github.com/sirupsen/logrus"
)

// Sender delivers customer notifications. Delivery is a structured log line until an SMTP relay is configured.
type Sender struct {
	logger *logrus.Logger
}

func NewSender(logger *logrus.Logger) *Sender {
	return &Sender{logger: logger}
}

func (s *Sender) Send(ctx context.Context, event kafka.TicketEvent) error {
	if event.Email == "" {
		return fmt.Errorf("event %s for %s has no recipient", event.ID, event.OrderCode)
	}

	s.logger.WithContext(ctx).WithFields(logrus.Fields{
		"to":         event.Email,
		"order_code": event.OrderCode,
		"event_id":   event.ID,
	}).Info(Subject(event))
	return nil
}

func Subject(event kafka.TicketEvent) string {
	switch event.Type {
	case kafka.EventTicketPending:
		return fmt.Sprintf("Complete your payment for order %s", event.OrderCode)
	case kafka.EventTicketPaid:
		return fmt.Sprintf("Your ticket %s is confirmed", event.OrderCode)
	case kafka.EventTicketFailed:
		return fmt.Sprintf("Payment for order %s failed", event.OrderCode)
	case kafka.EventTicketCancelled:
		return fmt.Sprintf("Ticket %s was cancelled", event.OrderCode)
	}
	return fmt.Sprintf("Update on order %s", event.OrderCode)
}
