package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/seatledger/internal/domain"
	"github.com/Domenick1991/seatledger/internal/payment"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockReconcileUseCase struct {
	mock.Mock
}

func (m *MockReconcileUseCase) HandleNotification(ctx context.Context, n payment.Notification) (*domain.Ticket, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func newNotifyContext(body string) (*httptest.ResponseRecorder, *gin.Context) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/payments/notify", bytes.NewReader([]byte(body)))
	c.Request.Header.Set("Content-Type", "application/json")
	return w, c
}

func TestPaymentHandler_notify(t *testing.T) {
	mockService := &MockReconcileUseCase{}
	handler := NewPaymentHandler(mockService)
	w, c := newNotifyContext(`{"order_code":"TKT-1","outcome":"SUCCESS","gross_amount":1000000,"signature":"abc"}`)

	n := payment.Notification{OrderCode: "TKT-1", Outcome: "SUCCESS", GrossAmount: 1_000_000, Signature: "abc"}
	mockService.On("HandleNotification", mock.Anything, n).
		Return(&domain.Ticket{OrderCode: "TKT-1", Status: domain.TicketStatusSuccess}, nil)

	handler.notify(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp notifyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "SUCCESS", resp.Status)
	mockService.AssertExpectations(t)
}

func TestPaymentHandler_notifyMalformed(t *testing.T) {
	mockService := &MockReconcileUseCase{}
	handler := NewPaymentHandler(mockService)
	w, c := newNotifyContext(`{"order_code":"TKT-1","outcome":"SUCCESS"}`)

	handler.notify(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "HandleNotification", mock.Anything, mock.Anything)
}

func TestPaymentHandler_notifyStatusCodes(t *testing.T) {
	testCases := []struct {
		name   string
		err    error
		status int
	}{
		{name: "bad signature", err: domain.ErrUnauthenticated, status: http.StatusUnauthorized},
		{name: "bad outcome", err: domain.Errorf(domain.KindValidation, "unsupported outcome"), status: http.StatusBadRequest},
		{name: "contradiction", err: domain.Errorf(domain.KindIntegrity, "contradicts"), status: http.StatusUnprocessableEntity},
		{name: "database down", err: fmt.Errorf("transition: %w", assert.AnError), status: http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockService := &MockReconcileUseCase{}
			handler := NewPaymentHandler(mockService)
			w, c := newNotifyContext(`{"order_code":"TKT-1","outcome":"SUCCESS","gross_amount":1,"signature":"abc"}`)

			mockService.On("HandleNotification", mock.Anything, mock.Anything).Return(nil, tc.err)

			handler.notify(c)

			assert.Equal(t, tc.status, w.Code)
		})
	}
}
