package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/seatledger/api"
	"github.com/Domenick1991/seatledger/config"
	"github.com/Domenick1991/seatledger/internal/auth"
	"github.com/Domenick1991/seatledger/internal/bootstrap"
	"github.com/Domenick1991/seatledger/internal/cache"
	"github.com/Domenick1991/seatledger/internal/kafka"
	"github.com/Domenick1991/seatledger/internal/logger"
	"github.com/Domenick1991/seatledger/internal/payment"
	"github.com/Domenick1991/seatledger/internal/repository"
	"github.com/Domenick1991/seatledger/internal/service/booking"
	"github.com/Domenick1991/seatledger/internal/service/flights"
	"github.com/Domenick1991/seatledger/internal/service/reconcile"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.New("info", "seatledger-api").WithError(err).Fatal("load config")
	}
	log := logger.New(cfg.Log.Level, "seatledger-api")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.WithError(err).Fatal("connect postgres")
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(
		cfg.Redis,
		time.Duration(cfg.Booking.FlightsCacheTTL)*time.Second,
		time.Duration(cfg.Payment.SessionTTL)*time.Minute,
	)
	defer redisCache.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers, log)
	defer producer.Close()

	gateway := payment.NewIdempotentGateway(payment.NewHTTPGateway(cfg.Payment, log, nil), redisCache, log)
	signer := payment.NewSigner(cfg.Payment.NotifySecret)

	flightRepo := repository.NewFlightRepository(pool)
	seatRepo := repository.NewSeatRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)

	flightService := flights.NewFlightService(flightRepo, seatRepo, redisCache, log)
	bookingService := booking.NewBookingService(
		seatRepo,
		ticketRepo,
		flightRepo,
		gateway,
		producer,
		log,
		cfg.Kafka.TicketEventsTopic,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithHoldTTL(time.Duration(cfg.Booking.HoldTTLMinutes)*time.Minute),
	)
	reconcileService := reconcile.NewReconcileService(ticketRepo, signer, producer, reconcile.Topics{
		TicketEvents:  cfg.Kafka.TicketEventsTopic,
		Notifications: cfg.Kafka.NotificationsTopic,
		Alerts:        cfg.Kafka.AlertsTopic,
	}, log)

	router := bootstrap.NewRouter(cfg, log, auth.NewService(cfg.Auth.JWTSecret, cfg.Auth.Issuer), bootstrap.Handlers{
		Flights:  api.NewFlightHandler(flightService),
		Bookings: api.NewBookingHandler(bookingService),
		Payments: api.NewPaymentHandler(reconcileService),
	}, map[string]bootstrap.Pinger{
		"postgres": pool,
		"redis":    redisCache,
	})

	if err := bootstrap.Run(ctx, cfg, log, router); err != nil {
		log.WithError(err).Fatal("server error")
	}
}
