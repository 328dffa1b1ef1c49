package payment

import (
	"context"

	"github.com/sirupsen/logrus"
)

type SessionStore interface {
	GetSession(ctx context.Context, orderCode string) (*Session, error)
	SetSession(ctx context.Context, orderCode string, session *Session) error
}

// IdempotentGateway returns the stored session for an order code that was already issued one.
type IdempotentGateway struct {
	next   Gateway
	store  SessionStore
	logger *logrus.Logger
}

func NewIdempotentGateway(next Gateway, store SessionStore, logger *logrus.Logger) *IdempotentGateway {
	return &IdempotentGateway{next: next, store: store, logger: logger}
}

func (g *IdempotentGateway) CreateSession(ctx context.Context, req SessionRequest) (*Session, error) {
	cached, err := g.store.GetSession(ctx, req.OrderCode)
	if err != nil {
		g.logger.WithContext(ctx).WithError(err).Warn("session cache read failed")
	}
	if cached != nil {
		return cached, nil
	}

	session, err := g.next.CreateSession(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := g.store.SetSession(ctx, req.OrderCode, session); err != nil {
		g.logger.WithContext(ctx).WithError(err).Warn("session cache write failed")
	}
	return session, nil
}

var _ Gateway = (*IdempotentGateway)(nil)
