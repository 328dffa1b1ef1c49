package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/seatledger/config"
	"github.com/Domenick1991/seatledger/internal/domain"
	"github.com/Domenick1991/seatledger/internal/payment"
	"github.com/redis/go-redis/v9"
)

// RedisCache holds read-through flight data and issued payment sessions.
// Seat availability is never cached: the ledger is the only source of truth for it.
type RedisCache struct {
	client     *redis.Client
	flightsTTL time.Duration
	sessionTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, flightsTTL, sessionTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:     redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		flightsTTL: flightsTTL,
		sessionTTL: sessionTTL,
	}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) GetFlights(ctx context.Context) ([]domain.Flight, error) {
	var flights []domain.Flight
	ok, err := c.get(ctx, flightsKey(), &flights)
	if !ok {
		return nil, err
	}
	return flights, nil
}

func (c *RedisCache) SetFlights(ctx context.Context, flights []domain.Flight) error {
	return c.set(ctx, flightsKey(), flights, c.flightsTTL)
}

func (c *RedisCache) GetFlight(ctx context.Context, id int64) (*domain.Flight, error) {
	var flight domain.Flight
	ok, err := c.get(ctx, flightKey(id), &flight)
	if !ok {
		return nil, err
	}
	return &flight, nil
}

func (c *RedisCache) SetFlight(ctx context.Context, flight *domain.Flight) error {
	return c.set(ctx, flightKey(flight.ID), flight, c.flightsTTL)
}

func (c *RedisCache) GetSession(ctx context.Context, orderCode string) (*payment.Session, error) {
	var session payment.Session
	ok, err := c.get(ctx, sessionKey(orderCode), &session)
	if !ok {
		return nil, err
	}
	return &session, nil
}

func (c *RedisCache) SetSession(ctx context.Context, orderCode string, session *payment.Session) error {
	return c.set(ctx, sessionKey(orderCode), session, c.sessionTTL)
}

// get reports false with a nil error on a cache miss.
func (c *RedisCache) get(ctx context.Context, key string, dst any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisCache) set(ctx context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}

func flightsKey() string {
	return "cache:flights"
}

func flightKey(id int64) string {
	return fmt.Sprintf("cache:flight:%d", id)
}

func sessionKey(orderCode string) string {
	return fmt.Sprintf("payment:session:%s", orderCode)
}

var _ payment.SessionStore = (*RedisCache)(nil)
