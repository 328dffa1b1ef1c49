package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeatClass_Price(t *testing.T) {
	testCases := []struct {
		class    SeatClass
		base     int64
		expected int64
	}{
		{SeatClassEconomy, 1_000_000, 1_000_000},
		{SeatClassBusiness, 1_000_000, 1_500_000},
		{SeatClassFirst, 1_000_000, 2_500_000},
		{SeatClassBusiness, 999, 1499},
		{SeatClassBusiness, 3, 5},
		{SeatClassFirst, 1, 3},
		{SeatClassEconomy, 0, 0},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%s_%d", tc.class, tc.base), func(t *testing.T) {
			price, err := tc.class.Price(tc.base)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, price)
		})
	}
}

func TestSeatClass_PriceRejectsUnknownClass(t *testing.T) {
	_, err := SeatClass("PREMIUM").Price(100)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.False(t, SeatClass("PREMIUM").Valid())
}

func TestTicketStatus_CanTransition(t *testing.T) {
	assert.True(t, TicketStatusPending.CanTransition(TicketStatusSuccess))
	assert.True(t, TicketStatusPending.CanTransition(TicketStatusFailed))
	assert.True(t, TicketStatusPending.CanTransition(TicketStatusCancelled))
	assert.True(t, TicketStatusSuccess.CanTransition(TicketStatusCancelled))

	assert.False(t, TicketStatusSuccess.CanTransition(TicketStatusPending))
	assert.False(t, TicketStatusSuccess.CanTransition(TicketStatusFailed))
	assert.False(t, TicketStatusFailed.CanTransition(TicketStatusSuccess))
	assert.False(t, TicketStatusFailed.CanTransition(TicketStatusPending))
	assert.False(t, TicketStatusCancelled.CanTransition(TicketStatusSuccess))
}

func TestTicket_Reconcile(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	paid := now.Add(-time.Hour)

	testCases := []struct {
		name        string
		status      TicketStatus
		paidAt      *time.Time
		outcome     TicketStatus
		changed     bool
		finalStatus TicketStatus
		errKind     Kind
	}{
		{name: "pending to success", status: TicketStatusPending, outcome: TicketStatusSuccess, changed: true, finalStatus: TicketStatusSuccess},
		{name: "pending to failed", status: TicketStatusPending, outcome: TicketStatusFailed, changed: true, finalStatus: TicketStatusFailed},
		{name: "success replay", status: TicketStatusSuccess, paidAt: &paid, outcome: TicketStatusSuccess, finalStatus: TicketStatusSuccess},
		{name: "failed replay", status: TicketStatusFailed, outcome: TicketStatusFailed, finalStatus: TicketStatusFailed},
		{name: "success then failed", status: TicketStatusSuccess, paidAt: &paid, outcome: TicketStatusFailed, finalStatus: TicketStatusSuccess, errKind: KindIntegrity},
		{name: "failed then success", status: TicketStatusFailed, outcome: TicketStatusSuccess, finalStatus: TicketStatusFailed, errKind: KindIntegrity},
		{name: "success replay after cancel", status: TicketStatusCancelled, paidAt: &paid, outcome: TicketStatusSuccess, finalStatus: TicketStatusCancelled},
		{name: "failed replay after unpaid cancel", status: TicketStatusCancelled, outcome: TicketStatusFailed, finalStatus: TicketStatusCancelled},
		{name: "success after unpaid cancel", status: TicketStatusCancelled, outcome: TicketStatusSuccess, finalStatus: TicketStatusCancelled, errKind: KindIntegrity},
		{name: "pending outcome rejected", status: TicketStatusPending, outcome: TicketStatusPending, finalStatus: TicketStatusPending, errKind: KindValidation},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ticket := &Ticket{Status: tc.status, PaidAt: tc.paidAt}

			changed, err := ticket.Reconcile(tc.outcome, now)

			if tc.errKind != "" {
				require.Error(t, err)
				assert.Equal(t, tc.errKind, KindOf(err))
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tc.changed, changed)
			assert.Equal(t, tc.finalStatus, ticket.Status)
		})
	}
}

func TestTicket_ReconcileSuccessStampsPayment(t *testing.T) {
	now := time.Now()
	ticket := &Ticket{Status: TicketStatusPending}

	_, err := ticket.Reconcile(TicketStatusSuccess, now)

	require.NoError(t, err)
	require.NotNil(t, ticket.PaidAt)
	assert.Equal(t, now, *ticket.PaidAt)
	assert.True(t, ticket.SeatBooked())
}

func TestTicket_Cancel(t *testing.T) {
	now := time.Now()

	t.Run("success ticket releases seat", func(t *testing.T) {
		ticket := &Ticket{CustomerID: "cust-1", Status: TicketStatusSuccess}
		changed, err := ticket.Cancel("cust-1", now)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, TicketStatusCancelled, ticket.Status)
		assert.False(t, ticket.SeatBooked())
	})

	t.Run("already cancelled", func(t *testing.T) {
		ticket := &Ticket{CustomerID: "cust-1", Status: TicketStatusCancelled}
		changed, err := ticket.Cancel("cust-1", now)
		require.NoError(t, err)
		assert.False(t, changed)
	})

	t.Run("foreign ticket", func(t *testing.T) {
		ticket := &Ticket{CustomerID: "cust-1", Status: TicketStatusSuccess}
		_, err := ticket.Cancel("cust-2", now)
		assert.True(t, errors.Is(err, ErrTicketNotFound))
		assert.Equal(t, TicketStatusSuccess, ticket.Status)
	})
}

func TestErrorKinds(t *testing.T) {
	wrapped := fmt.Errorf("create pending: %w", Wrap(KindConflict, "duplicate seat", errors.New("23505")))

	assert.True(t, errors.Is(wrapped, ErrConflict))
	assert.False(t, errors.Is(wrapped, ErrSeatUnavailable))
	assert.Equal(t, KindConflict, KindOf(wrapped))
	assert.Equal(t, "duplicate seat", MessageOf(wrapped))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, "internal error", MessageOf(errors.New("boom")))
}

func TestNewOrderCode(t *testing.T) {
	now := time.Now()
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		code, err := NewOrderCode(now)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(code, "TKT-"))
		assert.Len(t, code, len("TKT-")+26)
		seen[code] = struct{}{}
	}
	assert.Len(t, seen, 1000)
}
