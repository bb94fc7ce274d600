package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/RachdianZulkarnain/final-project-api/internal/bootstrap"
	"github.com/RachdianZulkarnain/final-project-api/internal/config"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := bootstrap.Open(cfg)
	if err != nil {
		log.Fatal(err)
	}

	queue, closeQueue, err := bootstrap.Queue(ctx, cfg, log.Printf)
	if err != nil {
		log.Fatal(err)
	}
	defer closeQueue()

	notifier, producer := bootstrap.Notifier(context.Background(), cfg, db, nil, "expiration-worker", log.Printf)
	svc := bootstrap.NewServices(cfg, db, queue, notifier, log.Printf)
	defer svc.CalendarCache.Stop()

	if cfg.RedisAddr == "" {
		log.Println("level=warn msg=REDIS_ADDR is empty, only the overdue sweep feeds this worker")
	}

	wait, err := bootstrap.StartExpiration(ctx, cfg, queue, svc, log.Printf)
	if err != nil {
		log.Fatal(err)
	}
	<-ctx.Done()
	wait()

	if producer != nil {
		producer.Close()
		producer.WaitClosed()
	}
}
