package middleware

import (
	"net/http"
	"strings"

	"github.com/Domenick1991/seatledger/internal/auth"
	"github.com/gin-gonic/gin"
)

const customerContextKey = "customer"

// Customer is the authenticated caller.
type Customer struct {
	ID    string
	Email string
}

// Auth requires a Bearer token and stores the Customer in the gin context.
func Auth(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			abortUnauthenticated(c, "MISSING_BEARER_TOKEN", "Authorization header must be: Bearer <token>")
			return
		}

		claims, err := svc.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			Logger(c).WithError(err).Warn("auth failed")
			if auth.IsExpired(err) {
				abortUnauthenticated(c, "TOKEN_EXPIRED", "access token has expired")
				return
			}
			abortUnauthenticated(c, "INVALID_TOKEN", "invalid access token")
			return
		}

		SetCustomer(c, Customer{ID: claims.Subject, Email: claims.Email})
		c.Next()
	}
}

func SetCustomer(c *gin.Context, customer Customer) {
	c.Set(customerContextKey, customer)
}

func GetCustomer(c *gin.Context) (Customer, bool) {
	v, ok := c.Get(customerContextKey)
	if !ok {
		return Customer{}, false
	}
	customer, ok := v.(Customer)
	return customer, ok
}

func abortUnauthenticated(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":   "Unauthenticated",
		"code":    code,
		"message": message,
	})
}
