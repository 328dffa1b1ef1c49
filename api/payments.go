package api

import (
	"net/http"

	"github.com/Domenick1991/seatledger/internal/payment"
	"github.com/Domenick1991/seatledger/internal/service/reconcile"
	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	service reconcile.ReconcileUseCase
}

type notifyResponse struct {
	OrderCode string `json:"order_code"`
	Status    string `json:"status"`
}

func NewPaymentHandler(service reconcile.ReconcileUseCase) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// Register mounts the gateway callback. It is authenticated by signature, not by customer token.
func (h *PaymentHandler) Register(router *gin.RouterGroup) {
	router.POST("/payments/notify", h.notify)
}

// notify answers 200 only after the ledger has committed, including for replays.
// 5xx is reserved for transient local failures so the gateway redelivers.
func (h *PaymentHandler) notify(c *gin.Context) {
	var n payment.Notification
	if err := c.ShouldBindJSON(&n); err != nil {
		respondError(c, bindError(err))
		return
	}

	ticket, err := h.service.HandleNotification(c.Request.Context(), n)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, notifyResponse{OrderCode: ticket.OrderCode, Status: string(ticket.Status)})
}
