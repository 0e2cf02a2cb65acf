package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"ovenlog-backend/config"
	"ovenlog-backend/internal/api"
	"ovenlog-backend/internal/catalog"
	"ovenlog-backend/internal/db"
	"ovenlog-backend/internal/directory"
	"ovenlog-backend/internal/notification"
	"ovenlog-backend/internal/scan"
	"ovenlog-backend/internal/session"
	"ovenlog-backend/internal/store"
	"ovenlog-backend/internal/tracker"
)

func main() {
	logger := log.New(os.Stdout, "ovenlogd ", log.LstdFlags)

	// A .env is optional; environment variables win either way.
	if err := godotenv.Load(); err == nil {
		logger.Println("loaded environment from .env")
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	var webpushOptions *webpush.Options
	if cfg.Push.PublicKey != "" && cfg.Push.PrivateKey != "" {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
	} else {
		logger.Println("VAPID keys not configured; push notifications disabled")
	}

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock := clockwork.NewRealClock()

	appStore := store.NewGormStore(gormDB)
	trackerSvc := tracker.NewWithClock(appStore, clock)
	catalogSvc := catalog.New(gormDB)
	directorySvc := directory.New(appStore)

	sess := session.New(clock)
	framer := scan.NewFramer(clock, scan.WithTimeout(cfg.Scanner.InterKeyTimeout))
	dispatcher := session.NewDispatcher(sess, appStore, trackerSvc)
	if err := dispatcher.RefreshReferenceSets(ctx, framer); err != nil {
		logger.Fatalf("failed to load barcode reference sets: %v", err)
	}
	logger.Println("barcode reference sets loaded")

	// Bake-completion watcher and push delivery pool.
	if cfg.Watcher.Enabled && webpushOptions != nil {
		pool := notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, webpushOptions)
		watcher := notification.NewWatcher(trackerSvc, pool, clock, cfg.Watcher.Interval)
		go watcher.Run(ctx)
		logger.Printf("bake watcher running every %s", cfg.Watcher.Interval)
	}

	handler := api.NewHandler(appStore, trackerSvc, catalogSvc, directorySvc, sess, framer, dispatcher, webpushOptions)
	router := api.NewRouter(handler, api.RouterOptions{
		RateLimitPerSec: cfg.Server.RateLimitPerSec,
		RateLimitBurst:  cfg.Server.RateLimitBurst,
		CacheTTL:        time.Duration(cfg.Server.CacheTTLSeconds) * time.Second,
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
