package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/Spok95/medcart/internal/api"
	"github.com/Spok95/medcart/internal/bridge"
	"github.com/Spok95/medcart/internal/camunda"
	"github.com/Spok95/medcart/internal/config"
	"github.com/Spok95/medcart/internal/domain/cart"
	"github.com/Spok95/medcart/internal/domain/checklist"
	"github.com/Spok95/medcart/internal/domain/inventory"
	"github.com/Spok95/medcart/internal/domain/medication"
	"github.com/Spok95/medcart/internal/domain/order"
	"github.com/Spok95/medcart/internal/domain/reservation"
	"github.com/Spok95/medcart/internal/infra/db"
	httpx "github.com/Spok95/medcart/internal/infra/http"
	"github.com/Spok95/medcart/internal/infra/logger"
	"github.com/Spok95/medcart/internal/notify"
	"github.com/Spok95/medcart/internal/webhook"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

func runMigrations(dsn string) error {
	sqlDB, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()
	return goose.Up(sqlDB, "migrations")
}

func buildNotifier(cfg config.Config, log *slog.Logger) notify.Notifier {
	switch cfg.Notify.Mode {
	case "telegram":
		tg, err := notify.NewTelegram(cfg.Notify.Telegram.Token, cfg.Notify.Telegram.AdminChatID, log)
		if err != nil {
			log.Error("telegram notifier unavailable, falling back to noop", "err", err)
			return notify.Noop{}
		}
		return tg
	case "off":
		return notify.Noop{}
	default:
		return notify.NewRelay(cfg.Notify.RelayURL, log)
	}
}

func main() {
	cfg, err := config.Load("config/example.yaml")
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.App.Env)
	log.Info("using DSN", "dsn", cfg.Postgres.DSN)

	if err := runMigrations(cfg.Postgres.DSN); err != nil {
		log.Error("migrations failed", "err", err)
		return
	}
	log.Info("migrations applied")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Error("db connect failed", "err", err)
		return
	}
	defer pool.Close()
	log.Info("db connected")

	meds := medication.NewRepo(pool)
	batches := inventory.NewRepo(pool)
	carts := cart.NewRepo(pool)
	orders := order.NewRepo(pool)
	checklists := checklist.NewRepo(pool)
	reservations := reservation.NewService(reservation.NewPgStore(pool), log)
	checker := checklist.NewService(meds, batches, checklist.FirstBatch)

	notifier := buildNotifier(cfg, log)

	webhookTimeout := time.Duration(cfg.Webhooks.TimeoutSec) * time.Second
	handlers := &bridge.Handlers{
		Inventory: batches,
		Carts:     carts,
		Orders:    orders,
		Reserver:  reservations,
		Matcher:   webhook.NewMatchingClient(cfg.Webhooks.MatchingURL, webhookTimeout),
		CartsHook: webhook.NewCartsClient(cfg.Webhooks.CartsURL, webhookTimeout),
		Notifier:  notifier,
		Log:       log,
	}

	// у каждого консьюмера свой workerId, чтобы локи в движке были различимы
	newClient := func(topic string) bridge.EngineClient {
		return camunda.NewClient(camunda.Options{
			BaseURL:        cfg.Camunda.BaseURL,
			WorkerID:       "medcart-" + topic + "-" + uuid.NewString()[:8],
			TenantID:       cfg.Camunda.TenantID,
			MaxTasks:       cfg.Camunda.MaxTasks,
			LockDurationMs: cfg.Camunda.LockDurationMs,
			LongPollMs:     cfg.Camunda.LongPollMs,
			Timeout:        time.Duration(cfg.Camunda.TimeoutSec) * time.Second,
		})
	}
	br := bridge.New(newClient, handlers, log)

	bridgeDone := make(chan struct{})
	go func() {
		defer close(bridgeDone)
		br.Run(ctx)
	}()
	log.Info("workflow bridge started", "engine", cfg.Camunda.BaseURL)

	srv := httpx.New(cfg.HTTP.Addr, cfg.App.Env, cfg.Metrics.Enabled, api.Deps{
		Medications:  meds,
		Inventory:    batches,
		Carts:        carts,
		Orders:       orders,
		Reservations: reservations,
		Checklist:    checker,
		Checklists:   checklists,
		Log:          log,
	})
	go func() {
		if err := srv.Start(); err != nil && err.Error() != "http: Server closed" {
			log.Error("http server error", "err", err)
		}
	}()
	log.Info("HTTP server started", "addr", cfg.HTTP.Addr)

	<-ctx.Done()
	<-bridgeDone

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("graceful shutdown complete")
}
