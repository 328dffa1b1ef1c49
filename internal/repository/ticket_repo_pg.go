package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/seatledger/internal/domain"
	"github.com/jackc/pgx/v5"
)

// TransitionFunc mutates a locked ticket. It reports whether anything changed.
type TransitionFunc func(t *domain.Ticket) (bool, error)

// TicketRepository is the ticket ledger. At most one live (PENDING or SUCCESS) ticket exists
// per seat, enforced by the tickets_live_seat_uidx partial unique index.
type TicketRepository interface {
	FindLiveBySeat(ctx context.Context, seatID int64) (*domain.Ticket, error)
	GetByOrderCode(ctx context.Context, orderCode string) (*domain.Ticket, error)
	ListByStatusBefore(ctx context.Context, status domain.TicketStatus, before time.Time, limit int) ([]domain.Ticket, error)
	// CreatePending inserts t as PENDING. When staleTicketID is non-zero that PENDING ticket is
	// deleted in the same transaction; if it is already gone the call fails with ErrConflict.
	CreatePending(ctx context.Context, t *domain.Ticket, staleTicketID int64) error
	// Delete removes a PENDING or FAILED ticket. SUCCESS and CANCELLED tickets are kept.
	Delete(ctx context.Context, ticketID int64) error
	// Transition locks the ticket, applies fn and persists the status together with the seat flag.
	Transition(ctx context.Context, orderCode string, fn TransitionFunc) (*domain.Ticket, error)
}

type PGTicketRepository struct {
	db DB
}

func NewTicketRepository(db DB) TicketRepository {
	return &PGTicketRepository{db: db}
}

const selectTicket = `SELECT id, order_code, flight_id, seat_id, customer_id, customer_email, status, price, payment_token, redirect_url, paid_at, created_at, updated_at FROM tickets`

func (r *PGTicketRepository) FindLiveBySeat(ctx context.Context, seatID int64) (*domain.Ticket, error) {
	t, err := scanTicket(r.db.QueryRow(ctx, selectTicket+` WHERE seat_id=$1 AND status IN ('PENDING','SUCCESS') LIMIT 1`, seatID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find live ticket for seat %d: %w", seatID, err)
	}
	return t, nil
}

func (r *PGTicketRepository) GetByOrderCode(ctx context.Context, orderCode string) (*domain.Ticket, error) {
	t, err := scanTicket(r.db.QueryRow(ctx, selectTicket+` WHERE order_code=$1`, orderCode))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTicketNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get ticket %s: %w", orderCode, err)
	}
	return t, nil
}

func (r *PGTicketRepository) ListByStatusBefore(ctx context.Context, status domain.TicketStatus, before time.Time, limit int) ([]domain.Ticket, error) {
	rows, err := r.db.Query(ctx, selectTicket+` WHERE status=$1 AND updated_at < $2 ORDER BY updated_at LIMIT $3`, string(status), before, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]domain.Ticket, 0)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *t)
	}
	return tickets, rows.Err()
}

func (r *PGTicketRepository) CreatePending(ctx context.Context, t *domain.Ticket, staleTicketID int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := lockSeat(ctx, tx, t.SeatID); err != nil {
		return err
	}

	if staleTicketID != 0 {
		if err := deleteStale(ctx, tx, staleTicketID, t.SeatID); err != nil {
			return err
		}
	}

	t.Status = domain.TicketStatusPending
	err = tx.QueryRow(ctx, `
		INSERT INTO tickets (order_code, flight_id, seat_id, customer_id, customer_email, status, price, payment_token, redirect_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`,
		t.OrderCode, t.FlightID, t.SeatID, t.CustomerID, t.CustomerEmail, string(t.Status), t.Price, t.PaymentToken, t.RedirectURL,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if isUniqueViolation(err) {
		return domain.Wrap(domain.KindConflict, fmt.Sprintf("seat %d already has a live ticket", t.SeatID), err)
	}
	if err != nil {
		return fmt.Errorf("insert ticket: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *PGTicketRepository) Delete(ctx context.Context, ticketID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tickets WHERE id=$1 AND status IN ('PENDING','FAILED')`, ticketID)
	if err != nil {
		return fmt.Errorf("delete ticket %d: %w", ticketID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Wrap(domain.KindConflict, fmt.Sprintf("ticket %d is not deletable", ticketID), domain.ErrIllegalTransition)
	}
	return nil
}

// lockSeat takes the seat row lock every ledger write starts with and rejects a booked seat.
func lockSeat(ctx context.Context, q querier, seatID int64) error {
	var booked bool
	err := q.QueryRow(ctx, `SELECT is_booked FROM flight_seats WHERE id=$1 FOR UPDATE`, seatID).Scan(&booked)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrSeatNotFound
	}
	if err != nil {
		return fmt.Errorf("lock seat %d: %w", seatID, err)
	}
	if booked {
		return domain.ErrSeatUnavailable
	}
	return nil
}

// deleteStale removes an abandoned PENDING ticket. SUCCESS tickets are never deleted.
func deleteStale(ctx context.Context, q querier, ticketID, seatID int64) error {
	tag, err := q.Exec(ctx, `DELETE FROM tickets WHERE id=$1 AND seat_id=$2 AND status='PENDING'`, ticketID, seatID)
	if err != nil {
		return fmt.Errorf("delete ticket %d: %w", ticketID, err)
	}
	if tag.RowsAffected() != 1 {
		return domain.Errorf(domain.KindConflict, "ticket %d changed concurrently", ticketID)
	}
	return nil
}

func (r *PGTicketRepository) Transition(ctx context.Context, orderCode string, fn TransitionFunc) (*domain.Ticket, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Seat before ticket: the same lock order as CreatePending.
	var seatID int64
	err = tx.QueryRow(ctx, `SELECT seat_id FROM tickets WHERE order_code=$1`, orderCode).Scan(&seatID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTicketNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find ticket %s: %w", orderCode, err)
	}
	if _, err := tx.Exec(ctx, `SELECT 1 FROM flight_seats WHERE id=$1 FOR UPDATE`, seatID); err != nil {
		return nil, fmt.Errorf("lock seat %d: %w", seatID, err)
	}

	t, err := scanTicket(tx.QueryRow(ctx, selectTicket+` WHERE order_code=$1 FOR UPDATE`, orderCode))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTicketNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock ticket %s: %w", orderCode, err)
	}

	changed, err := fn(t)
	if err != nil {
		return t, err
	}
	if !changed {
		return t, nil
	}

	if _, err := tx.Exec(ctx, `UPDATE tickets SET status=$1, paid_at=$2, updated_at=$3 WHERE id=$4`,
		string(t.Status), t.PaidAt, t.UpdatedAt, t.ID); err != nil {
		return nil, fmt.Errorf("update ticket %s: %w", orderCode, err)
	}
	if _, err := tx.Exec(ctx, `UPDATE flight_seats SET is_booked=$1, updated_at=$2 WHERE id=$3`,
		t.SeatBooked(), t.UpdatedAt, t.SeatID); err != nil {
		return nil, fmt.Errorf("update seat %d: %w", t.SeatID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		t      domain.Ticket
		status string
	)
	if err := row.Scan(&t.ID, &t.OrderCode, &t.FlightID, &t.SeatID, &t.CustomerID, &t.CustomerEmail, &status, &t.Price,
		&t.PaymentToken, &t.RedirectURL, &t.PaidAt, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Status = domain.TicketStatus(status)
	return &t, nil
}

var _ TicketRepository = (*PGTicketRepository)(nil)
