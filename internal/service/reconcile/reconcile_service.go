package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/seatledger/internal/domain"
	"github.com/Domenick1991/seatledger/internal/kafka"
	"github.com/Domenick1991/seatledger/internal/payment"
	"github.com/Domenick1991/seatledger/internal/repository"
	"github.com/sirupsen/logrus"
)

type ReconcileUseCase interface {
	HandleNotification(ctx context.Context, n payment.Notification) (*domain.Ticket, error)
}

type Verifier interface {
	Verify(n payment.Notification) bool
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type Topics struct {
	TicketEvents  string
	Notifications string
	Alerts        string
}

type ReconcileService struct {
	tickets  repository.TicketRepository
	verifier Verifier
	producer Producer
	topics   Topics
	logger   *logrus.Logger
	now      func() time.Time
}

func NewReconcileService(tickets repository.TicketRepository, verifier Verifier, producer Producer, topics Topics, logger *logrus.Logger) *ReconcileService {
	return &ReconcileService{
		tickets:  tickets,
		verifier: verifier,
		producer: producer,
		topics:   topics,
		logger:   logger,
		now:      time.Now,
	}
}

// HandleNotification terminates the ticket named by a gateway notification exactly once.
// It returns only after the transition is committed; redelivered notifications are no-ops.
func (s *ReconcileService) HandleNotification(ctx context.Context, n payment.Notification) (*domain.Ticket, error) {
	log := s.logger.WithContext(ctx).WithFields(logrus.Fields{
		"order_code": n.OrderCode,
		"outcome":    n.Outcome,
	})

	if !s.verifier.Verify(n) {
		log.Warn("rejected notification with invalid signature")
		return nil, domain.ErrUnauthenticated
	}

	outcome, err := domain.ParseOutcome(n.Outcome)
	if err != nil {
		return nil, err
	}

	var changed bool
	ticket, err := s.tickets.Transition(ctx, n.OrderCode, func(t *domain.Ticket) (bool, error) {
		if t.Price != n.GrossAmount {
			return false, domain.Errorf(domain.KindIntegrity, "gross amount %d does not match ticket price %d", n.GrossAmount, t.Price)
		}
		var err error
		changed, err = t.Reconcile(outcome, s.now())
		return changed, err
	})

	switch {
	case errors.Is(err, domain.ErrTicketNotFound):
		integrity := domain.Wrap(domain.KindIntegrity, "notification for unknown order", err)
		s.alert(ctx, n, "", integrity)
		return nil, integrity
	case errors.Is(err, domain.ErrIntegrity):
		var current domain.TicketStatus
		if ticket != nil {
			current = ticket.Status
		}
		s.alert(ctx, n, current, err)
		return nil, err
	case err != nil:
		return nil, fmt.Errorf("reconcile %s: %w", n.OrderCode, err)
	}

	if !changed {
		log.Info("duplicate notification ignored")
		return ticket, nil
	}

	log.WithField("status", ticket.Status).Info("ticket reconciled")
	eventType := kafka.EventTicketPaid
	if ticket.Status == domain.TicketStatusFailed {
		eventType = kafka.EventTicketFailed
	}
	s.publish(ctx, eventType, ticket)
	return ticket, nil
}

// alert records an integrity violation for operator review. It never fails the caller.
func (s *ReconcileService) alert(ctx context.Context, n payment.Notification, current domain.TicketStatus, cause error) {
	s.logger.WithContext(ctx).WithError(cause).WithFields(logrus.Fields{
		"order_code":     n.OrderCode,
		"outcome":        n.Outcome,
		"gross_amount":   n.GrossAmount,
		"current_status": current,
	}).Error("payment integrity alert")

	if s.producer == nil || s.topics.Alerts == "" {
		return
	}
	alert := kafka.NewIntegrityAlert(n.OrderCode, n.Outcome, n.GrossAmount, current, domain.MessageOf(cause), s.now())
	if err := s.producer.Publish(ctx, s.topics.Alerts, n.OrderCode, alert); err != nil {
		s.logger.WithContext(ctx).WithError(err).WithField("order_code", n.OrderCode).Error("failed to publish integrity alert")
	}
}

func (s *ReconcileService) publish(ctx context.Context, eventType string, ticket *domain.Ticket) {
	if s.producer == nil {
		return
	}
	event := kafka.NewTicketEvent(eventType, ticket, s.now())
	for _, topic := range []string{s.topics.TicketEvents, s.topics.Notifications} {
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

var _ ReconcileUseCase = (*ReconcileService)(nil)
