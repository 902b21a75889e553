package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/velvetvogue/storefront/internal/auth"
	"github.com/velvetvogue/storefront/internal/cart"
	"github.com/velvetvogue/storefront/internal/checkout"
	"github.com/velvetvogue/storefront/internal/config"
	"github.com/velvetvogue/storefront/internal/events"
	"github.com/velvetvogue/storefront/internal/notify"
	"github.com/velvetvogue/storefront/internal/store"
	"github.com/velvetvogue/storefront/internal/views"
	"github.com/velvetvogue/storefront/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)
	ctx := context.Background()

	kv, cleanup, err := openStore(ctx, cfg)
	if err != nil {
		log.Error("failed to open store", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}
	defer cleanup()
	log.Info("store ready", "backend", cfg.StoreBackend)

	hub := notify.NewHub()

	bag := cart.NewManager(store.NewBreaker("storefront-kv", kv), hub, log)

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPub := events.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kafkaPub.Close()
		publisher = kafkaPub
		log.Info("order events enabled", "brokers", strings.Join(cfg.KafkaBrokers, ","), "topic", cfg.KafkaTopic)
	}

	drawer := views.NewDrawer(ctx, bag)
	page := views.NewPage(ctx, bag, hub)
	sidebar := views.NewSidebar(ctx, bag)
	defer drawer.Unmount()
	defer page.Unmount()
	defer sidebar.Unmount()

	ctrl := checkout.NewController(bag, hub, publisher, log)
	sessions := auth.NewService(kv, []byte(cfg.SessionSecret), log)

	handler := web.NewHandler(bag, drawer, page, sidebar, ctrl, sessions, hub, log)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      web.NewRouter(handler, cfg.RequestTimeout),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("storefront listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down storefront")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}
	log.Info("storefront stopped")
}

func openStore(ctx context.Context, cfg config.Config) (store.KV, func(), error) {
	switch cfg.StoreBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		return store.NewRedis(client, "vv"), func() { _ = client.Close() }, nil
	case "sqlite":
		db, err := store.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return db, func() { _ = db.Close() }, nil
	default:
		return store.NewMemory(), func() {}, nil
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	log := slog.New(h).With("service", "storefront")
	slog.SetDefault(log)
	return log
}
