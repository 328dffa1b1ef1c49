package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/Domenick1991/seatledger/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDSNEnv points the Postgres-backed tests at a scratch database, e.g.
// "host=localhost port=5432 user=seatledger password=seatledger dbname=seatledger sslmode=disable".
const testDSNEnv = "SEATLEDGER_TEST_DATABASE_DSN"

// newPostgres migrates a throwaway schema and returns a pool bound to it.
func newPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv(testDSNEnv)
	if dsn == "" {
		t.Skipf("%s not set", testDSNEnv)
	}
	ctx := context.Background()

	admin, err := pgx.Connect(ctx, dsn)
	require.NoError(t, err)
	schema := fmt.Sprintf("seatledger_test_%d", time.Now().UnixNano())
	_, err = admin.Exec(ctx, "CREATE SCHEMA "+schema)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = admin.Exec(context.Background(), "DROP SCHEMA "+schema+" CASCADE")
		_ = admin.Close(context.Background())
	})

	cfg, err := pgxpool.ParseConfig(dsn)
	require.NoError(t, err)
	cfg.ConnConfig.RuntimeParams["search_path"] = schema
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	migration, err := os.ReadFile("../../migrations/0001_init.sql")
	require.NoError(t, err)
	_, err = pool.Exec(ctx, string(migration))
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `
		INSERT INTO flights (id, departure_city, departure_code, departure_time, arrival_city, arrival_code, arrival_time, base_price, airplane_id)
		VALUES (1, 'Jakarta', 'CGK', now(), 'Denpasar', 'DPS', now() + interval '2 hours', 1000000, 1)`)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `INSERT INTO flight_seats (id, flight_id, seat_number, class) VALUES (7, 1, '12A', 'ECONOMY')`)
	require.NoError(t, err)

	return pool
}

func TestPGTicketRepository_ConcurrentCreatePending(t *testing.T) {
	pool := newPostgres(t)
	ctx := context.Background()
	tickets := NewTicketRepository(pool)
	seats := NewSeatRepository(pool)

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		winners   []*domain.Ticket
		conflicts int
		others    []error
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ticket := pendingTicket()
			ticket.OrderCode = fmt.Sprintf("TKT-%d", i)
			ticket.CustomerID = fmt.Sprintf("cust-%d", i)

			err := tickets.CreatePending(ctx, ticket, 0)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winners = append(winners, ticket)
			case errors.Is(err, domain.ErrConflict):
				conflicts++
			default:
				others = append(others, err)
			}
		}(i)
	}
	wg.Wait()

	require.Empty(t, others)
	require.Len(t, winners, 1)
	assert.Equal(t, attempts-1, conflicts)

	paid, err := tickets.Transition(ctx, winners[0].OrderCode, func(t *domain.Ticket) (bool, error) {
		return t.Reconcile(domain.TicketStatusSuccess, time.Now())
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusSuccess, paid.Status)

	seat, err := seats.GetSeat(ctx, 7)
	require.NoError(t, err)
	assert.True(t, seat.Booked)

	late := pendingTicket()
	late.OrderCode = "TKT-late"
	err = tickets.CreatePending(ctx, late, 0)
	assert.True(t, errors.Is(err, domain.ErrSeatUnavailable))
}

func TestPGTicketRepository_ReplaceStalePending(t *testing.T) {
	pool := newPostgres(t)
	ctx := context.Background()
	tickets := NewTicketRepository(pool)

	abandoned := pendingTicket()
	require.NoError(t, tickets.CreatePending(ctx, abandoned, 0))

	replacement := pendingTicket()
	replacement.OrderCode = "TKT-2"
	replacement.CustomerID = "cust-2"
	require.NoError(t, tickets.CreatePending(ctx, replacement, abandoned.ID))

	_, err := tickets.GetByOrderCode(ctx, abandoned.OrderCode)
	assert.True(t, errors.Is(err, domain.ErrTicketNotFound))

	// The stale id was already consumed, so a second replacement loses.
	again := pendingTicket()
	again.OrderCode = "TKT-3"
	err = tickets.CreatePending(ctx, again, abandoned.ID)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}
