package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/seatledger/config"
	"github.com/Domenick1991/seatledger/internal/email"
	"github.com/Domenick1991/seatledger/internal/kafka"
	"github.com/Domenick1991/seatledger/internal/logger"
	"github.com/Domenick1991/seatledger/internal/repository"
	"github.com/Domenick1991/seatledger/internal/service/booking"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	kafkaGo "github.com/segmentio/kafka-go"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.New("info", "seatledger-worker").WithError(err).Fatal("load config")
	}
	log := logger.New(cfg.Log.Level, "seatledger-worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.WithError(err).Fatal("connect postgres")
	}
	defer pool.Close()

	var opts []booking.BookingServiceOption
	if cfg.Worker.FailedRetentionDays > 0 {
		opts = append(opts, booking.WithFailedRetention(time.Duration(cfg.Worker.FailedRetentionDays)*24*time.Hour))
	}
	if cfg.Worker.PurgeBatch > 0 {
		opts = append(opts, booking.WithBatchSize(cfg.Worker.PurgeBatch))
	}

	// The worker only purges, so it needs neither a gateway nor a producer.
	// PENDING tickets are left to reconciliation and cancellation.
	bookingService := booking.NewBookingService(
		repository.NewSeatRepository(pool),
		repository.NewTicketRepository(pool),
		repository.NewFlightRepository(pool),
		nil,
		nil,
		log,
		"",
		opts...,
	)

	scheduler := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := scheduler.AddFunc(scheduleOr(cfg.Worker.PurgeSchedule, "@daily"), func() {
		purged, err := bookingService.PurgeFailedTickets(ctx)
		if err != nil {
			log.WithError(err).Error("purge failed tickets")
			return
		}
		log.WithField("count", purged).Info("purged failed tickets")
	}); err != nil {
		log.WithError(err).Fatal("schedule purge job")
	}
	scheduler.Start()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, log)
	defer consumer.Close()

	emailSender := email.NewSender(log)

	go func() {
		if err := consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			var event kafka.TicketEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				log.WithError(err).WithField("offset", msg.Offset).Warn("skip undecodable event")
				return nil
			}
			return emailSender.Send(ctx, event)
		}); err != nil {
			log.WithError(err).Error("consumer stopped")
			stop()
		}
	}()

	log.WithField("purge_schedule", cfg.Worker.PurgeSchedule).Info("worker started")

	<-ctx.Done()
	log.Info("shutting down")
	<-scheduler.Stop().Done()
}

func scheduleOr(schedule, fallback string) string {
	if schedule == "" {
		return fallback
	}
	return schedule
}
