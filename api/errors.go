package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/seatledger/internal/domain"
	"github.com/Domenick1991/seatledger/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var statusByKind = map[domain.Kind]int{
	domain.KindSeatNotFound:    http.StatusNotFound,
	domain.KindNotFound:        http.StatusNotFound,
	domain.KindValidation:      http.StatusBadRequest,
	domain.KindSeatUnavailable: http.StatusConflict,
	domain.KindConflict:        http.StatusConflict,
	domain.KindGateway:         http.StatusBadGateway,
	domain.KindIntegrity:       http.StatusUnprocessableEntity,
	domain.KindUnauthenticated: http.StatusUnauthorized,
}

type errorResponse struct {
	Kind    domain.Kind `json:"kind"`
	Message string      `json:"message"`
}

// HTTPStatus maps an error kind to its response code; unknown kinds are internal errors.
func HTTPStatus(kind domain.Kind) int {
	if status, ok := statusByKind[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	status := HTTPStatus(kind)
	_ = c.Error(err)

	if status >= http.StatusInternalServerError && kind != domain.KindGateway {
		middleware.Logger(c).WithError(err).Error("request failed")
		c.AbortWithStatusJSON(status, errorResponse{Kind: domain.KindInternal, Message: "internal error"})
		return
	}
	c.AbortWithStatusJSON(status, errorResponse{Kind: kind, Message: domain.MessageOf(err)})
}

// bindError turns a request binding failure into a ValidationError.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return domain.Errorf(domain.KindValidation, "field %s failed on %s", verrs[0].Field(), verrs[0].Tag())
	}
	return domain.Wrap(domain.KindValidation, "malformed request body", err)
}
