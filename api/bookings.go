package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/seatledger/internal/domain"
	"github.com/Domenick1991/seatledger/internal/middleware"
	"github.com/Domenick1991/seatledger/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createBookingRequest struct {
	FlightID  int64  `json:"flight_id" binding:"required,gt=0"`
	SeatID    int64  `json:"seat_id" binding:"required,gt=0"`
	SeatClass string `json:"seat_class" binding:"required,oneof=ECONOMY BUSINESS FIRST"`
}

type bookingResponse struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
	OrderCode   string `json:"order_code"`
	Price       int64  `json:"price"`
}

type ticketResponse struct {
	OrderCode   string `json:"order_code"`
	FlightID    int64  `json:"flight_id"`
	SeatID      int64  `json:"seat_id"`
	Status      string `json:"status"`
	Price       int64  `json:"price"`
	RedirectURL string `json:"redirect_url,omitempty"`
	PaidAt      string `json:"paid_at,omitempty"`
	CreatedAt   string `json:"created_at"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

// Register mounts the customer routes. router must already carry middleware.Auth.
func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/bookings", h.create)
	router.GET("/tickets/:orderCode", h.get)
	router.POST("/tickets/:orderCode/cancel", h.cancel)
}

func (h *BookingHandler) create(c *gin.Context) {
	customer, ok := middleware.GetCustomer(c)
	if !ok {
		respondError(c, domain.ErrUnauthenticated)
		return
	}

	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	ticket, err := h.service.CreateBooking(c.Request.Context(), booking.CreateBookingInput{
		CustomerID:    customer.ID,
		CustomerEmail: customer.Email,
		FlightID:      req.FlightID,
		SeatID:        req.SeatID,
		SeatClass:     domain.SeatClass(req.SeatClass),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, bookingResponse{
		Token:       ticket.PaymentToken,
		RedirectURL: ticket.RedirectURL,
		OrderCode:   ticket.OrderCode,
		Price:       ticket.Price,
	})
}

func (h *BookingHandler) get(c *gin.Context) {
	customer, ok := middleware.GetCustomer(c)
	if !ok {
		respondError(c, domain.ErrUnauthenticated)
		return
	}

	ticket, err := h.service.GetTicket(c.Request.Context(), c.Param("orderCode"), customer.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTicketResponse(ticket))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	customer, ok := middleware.GetCustomer(c)
	if !ok {
		respondError(c, domain.ErrUnauthenticated)
		return
	}

	ticket, err := h.service.CancelBooking(c.Request.Context(), c.Param("orderCode"), customer.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTicketResponse(ticket))
}

func newTicketResponse(t *domain.Ticket) ticketResponse {
	resp := ticketResponse{
		OrderCode: t.OrderCode,
		FlightID:  t.FlightID,
		SeatID:    t.SeatID,
		Status:    string(t.Status),
		Price:     t.Price,
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
	}
	if t.Status == domain.TicketStatusPending {
		resp.RedirectURL = t.RedirectURL
	}
	if t.PaidAt != nil {
		resp.PaidAt = t.PaidAt.Format(time.RFC3339)
	}
	return resp
}
