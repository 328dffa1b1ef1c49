package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/seatledger/api"
	"github.com/Domenick1991/seatledger/config"
	"github.com/Domenick1991/seatledger/internal/auth"
	"github.com/Domenick1991/seatledger/internal/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger"
)

const openAPIPath = "/openapi.json"

// Pinger is a dependency checked by the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handlers struct {
	Flights  *api.FlightHandler
	Bookings *api.BookingHandler
	Payments *api.PaymentHandler
}

// NewRouter wires every HTTP route. Customer routes sit behind JWT auth; the payment
// callback is public and verified by signature inside the reconcile service.
func NewRouter(cfg *config.Config, logger *logrus.Logger, authSvc *auth.Service, h Handlers, deps map[string]Pinger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(logger))

	if len(cfg.HTTP.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.HTTP.AllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
			ExposeHeaders:    []string{middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler(deps))

	if cfg.HTTP.SwaggerFile != "" {
		router.StaticFile(openAPIPath, cfg.HTTP.SwaggerFile)
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL(openAPIPath))))
	}

	v1 := router.Group("/api/v1")
	h.Flights.Register(v1)
	h.Payments.Register(v1)

	customer := v1.Group("")
	customer.Use(middleware.Auth(authSvc))
	h.Bookings.Register(customer)

	return router
}

func healthHandler(deps map[string]Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		checks := make(map[string]string, len(deps))
		for name, dep := range deps {
			if err := dep.Ping(ctx); err != nil {
				middleware.Logger(c).WithError(err).WithField("dependency", name).Warn("health check failed")
				checks[name] = "down"
				status = http.StatusServiceUnavailable
				continue
			}
			checks[name] = "up"
		}
		c.JSON(status, gin.H{"status": http.StatusText(status), "checks": checks})
	}
}

// Run serves router and blocks until ctx is canceled or the server fails.
func Run(ctx context.Context, cfg *config.Config, logger *logrus.Logger, router http.Handler) error {
	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("address", cfg.HTTP.Address).Info("http server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve http: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		logger.Info("http server stopped")
		return nil
	}
}
