package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RachdianZulkarnain/final-project-api/internal/bootstrap"
	"github.com/RachdianZulkarnain/final-project-api/internal/config"
	"github.com/RachdianZulkarnain/final-project-api/internal/middleware"
	"github.com/RachdianZulkarnain/final-project-api/internal/modules/calendar"
	"github.com/RachdianZulkarnain/final-project-api/internal/modules/nonavailability"
	notificationmod "github.com/RachdianZulkarnain/final-project-api/internal/modules/notification"
	"github.com/RachdianZulkarnain/final-project-api/internal/modules/payment"
	"github.com/RachdianZulkarnain/final-project-api/internal/modules/peakseason"
	"github.com/RachdianZulkarnain/final-project-api/internal/notification"
	jwtsvc "github.com/RachdianZulkarnain/final-project-api/internal/pkg/jwt"
	"github.com/RachdianZulkarnain/final-project-api/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.AppEnv != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := bootstrap.Open(cfg)
	if err != nil {
		log.Fatal(err)
	}

	queue, closeQueue, err := bootstrap.Queue(ctx, cfg, log.Printf)
	if err != nil {
		log.Fatal(err)
	}
	defer closeQueue()

	hub := notification.NewHub()
	defer hub.Close()
	notifier, producer := bootstrap.Notifier(ctx, cfg, db, hub, "rental-api", log.Printf)

	svc := bootstrap.NewServices(cfg, db, queue, notifier, log.Printf)
	defer svc.CalendarCache.Stop()

	// Without Redis the queue lives in this process, so the worker must too.
	waitExpiration := func() {}
	if cfg.RedisAddr == "" {
		if waitExpiration, err = bootstrap.StartExpiration(ctx, cfg, queue, svc, log.Printf); err != nil {
			log.Fatal(err)
		}
	}

	rooms := repository.NewRoomRepository(db)
	j := jwtsvc.New(cfg.JWTSecret, 24*time.Hour)

	peakSeasonHandler := peakseason.NewHandler(
		peakseason.NewService(repository.NewPeakSeasonRepository(db), rooms, svc.CalendarCache, log.Printf),
	)
	nonAvailabilityHandler := nonavailability.NewHandler(
		nonavailability.NewService(repository.NewNonAvailabilityRepository(db), rooms, svc.CalendarCache, log.Printf),
	)
	calendarHandler := calendar.NewHandler(svc.Calendar)
	paymentHandler := payment.NewHandler(svc.Payment, log.Printf)
	notificationHandler := notificationmod.NewHandler(notificationmod.NewService(repository.NewNotificationRepository(db)))
	wsHandler := notification.NewWSHandler(hub, j, cfg.CORSAllowedOrigins, log.Printf)

	r := gin.New()
	r.Use(gin.Logger(), middleware.ErrorLogger(), middleware.CORS(cfg.CORSAllowedOrigins))

	r.GET("/healthz", bootstrap.Health(db, hub))

	v1 := r.Group("/api/v1")
	{
		// public
		calendarHandler.RegisterRoutes(v1)
		wsHandler.RegisterRoutes(v1)

		protected := v1.Group("")
		protected.Use(middleware.JWTAuth(j))
		{
			paymentHandler.RegisterProtectedRoutes(protected)
			notificationHandler.RegisterRoutes(protected)
		}

		tenant := v1.Group("")
		tenant.Use(middleware.JWTAuth(j), middleware.TenantOnly())
		{
			peakSeasonHandler.RegisterRoutes(tenant)
			nonAvailabilityHandler.RegisterRoutes(tenant)
		}
	}

	internal := r.Group("/internal")
	internal.Use(middleware.InternalTokenAuth(cfg.InternalToken))
	paymentHandler.RegisterInternalRoutes(internal)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("level=info msg=http listening addr=%s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("level=info msg=shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("level=error msg=http shutdown failed err=%v", err)
	}
	cancel()
	waitExpiration()
	if producer != nil {
		producer.Close()
		producer.WaitClosed()
	}
}
