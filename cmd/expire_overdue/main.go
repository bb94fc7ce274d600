package main

import (
	"context"
	"log"
	"time"

	"github.com/RachdianZulkarnain/final-project-api/internal/bootstrap"
	"github.com/RachdianZulkarnain/final-project-api/internal/config"

	"github.com/joho/godotenv"
)

// expire_overdue expires every unpaid payment past its deadline in one pass,
// for deployments that run it from an external scheduler instead of
// cmd/worker.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := bootstrap.Open(cfg)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	queue, closeQueue, err := bootstrap.Queue(ctx, cfg, log.Printf)
	if err != nil {
		log.Fatal(err)
	}
	defer closeQueue()

	notifier, producer := bootstrap.Notifier(ctx, cfg, db, nil, "expire-overdue", log.Printf)
	svc := bootstrap.NewServices(cfg, db, queue, notifier, log.Printf)
	defer svc.CalendarCache.Stop()

	uuids, err := svc.Payments.ListOverdue(ctx, time.Now(), 1000)
	if err != nil {
		log.Fatalf("list overdue payments failed: %v", err)
	}

	expired, failed := 0, 0
	for _, id := range uuids {
		ok, err := svc.Payment.ExpirePayment(ctx, id)
		if err != nil {
			failed++
			log.Printf("level=error msg=expire payment failed uuid=%s err=%v", id, err)
			continue
		}
		if ok {
			expired++
		}
	}

	if producer != nil {
		producer.Close()
		producer.WaitClosed()
	}
	log.Printf("expire overdue completed: candidates=%d expired=%d failed=%d", len(uuids), expired, failed)
}
