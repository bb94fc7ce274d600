// Package bootstrap builds the infrastructure shared by cmd/api and
// cmd/worker from config.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/RachdianZulkarnain/final-project-api/internal/config"
	"github.com/RachdianZulkarnain/final-project-api/internal/database"
	"github.com/RachdianZulkarnain/final-project-api/internal/expiration"
	"github.com/RachdianZulkarnain/final-project-api/internal/modules/calendar"
	"github.com/RachdianZulkarnain/final-project-api/internal/modules/payment"
	"github.com/RachdianZulkarnain/final-project-api/internal/notification"
	"github.com/RachdianZulkarnain/final-project-api/internal/repository"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Logf func(format string, args ...interface{})

func (l Logf) orNop() Logf {
	if l == nil {
		return func(string, ...interface{}) {}
	}
	return l
}

// Open connects to the database and applies migrations.
func Open(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("db migrate: %w", err)
	}
	return db, nil
}

// Queue returns the Redis queue when REDIS_ADDR is set and the in-process
// queue otherwise. The returned func releases the client.
func Queue(ctx context.Context, cfg *config.Config, logf Logf) (expiration.Queue, func(), error) {
	logf = logf.orNop()
	if cfg.RedisAddr == "" {
		logf("level=info msg=using in-process expiration queue")
		return expiration.NewMemoryQueue(cfg.Expiration.VisibilityTimeout), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
	}
	logf("level=info msg=using redis expiration queue addr=%s", cfg.RedisAddr)
	return expiration.NewRedisQueue(rdb, cfg.Expiration.VisibilityTimeout), func() { _ = rdb.Close() }, nil
}

// Notifier fans out to the in-app store, the websocket hub when given, and
// Kafka when brokers are configured. The returned producer is nil without
// Kafka; callers Close and WaitClosed it on shutdown.
func Notifier(ctx context.Context, cfg *config.Config, db *gorm.DB, hub *notification.Hub, producerName string, logf Logf) (notification.Multi, *notification.Producer) {
	logf = logf.orNop()
	sinks := notification.Multi{notification.NewStoreNotifier(repository.NewNotificationRepository(db))}
	if hub != nil {
		sinks = append(sinks, hub)
	}
	if len(cfg.KafkaBrokers) == 0 {
		return sinks, nil
	}

	prod := notification.NewProducer(cfg.KafkaBrokers, cfg.NotificationTopic, cfg.NotificationBufferLen, logf)
	prod.Start(ctx)
	sinks = append(sinks, notification.NewKafkaNotifier(prod, producerName))
	logf("level=info msg=publishing notifications topic=%s brokers=%v", cfg.NotificationTopic, cfg.KafkaBrokers)
	return sinks, prod
}

// Services holds the domain services both processes need.
type Services struct {
	Calendar      *calendar.Service
	CalendarCache *calendar.Cache
	Payment       *payment.Service
	Payments      *repository.PaymentRepository
}

func NewServices(cfg *config.Config, db *gorm.DB, queue expiration.Queue, notifier notification.Notifier, logf Logf) *Services {
	logf = logf.orNop()
	rooms := repository.NewRoomRepository(db)
	payments := repository.NewPaymentRepository(db)
	cache := calendar.NewCache(cfg.CalendarCacheSize, cfg.CalendarCacheTTL)

	return &Services{
		Calendar: calendar.NewService(
			rooms,
			repository.NewPeakSeasonRepository(db),
			repository.NewNonAvailabilityRepository(db),
			cache,
			logf,
		),
		CalendarCache: cache,
		Payment: payment.NewService(
			payments,
			rooms,
			cache,
			expiration.NewScheduler(queue, logf),
			notifier,
			cfg.PaymentExpiration,
			logf,
		),
		Payments: payments,
	}
}

// StartExpiration runs the expiration worker and the overdue sweep until ctx
// is cancelled. The returned func waits for both to stop.
func StartExpiration(ctx context.Context, cfg *config.Config, queue expiration.Queue, svc *Services, logf Logf) (func(), error) {
	logf = logf.orNop()
	sweeper := expiration.NewSweeper(svc.Payments, queue, cfg.Expiration.SweepSpec, logf)
	if err := sweeper.Start(); err != nil {
		return nil, err
	}

	worker := expiration.NewWorker(queue, svc.Payment, expiration.WorkerConfig{
		Concurrency:  cfg.Expiration.Workers,
		MaxAttempts:  cfg.Expiration.MaxAttempts,
		BackoffBase:  cfg.Expiration.BackoffBase,
		BackoffMax:   cfg.Expiration.BackoffMax,
		PollInterval: cfg.Expiration.PollInterval,
	}, logf)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := worker.Run(ctx); err != nil {
			logf("level=error msg=expiration worker failed err=%v", err)
		}
	}()

	return func() {
		<-done
		sweeper.Stop()
	}, nil
}
