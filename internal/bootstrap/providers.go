package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pricewatch-service/internal/application"
	"pricewatch-service/internal/config"
	"pricewatch-service/internal/infrastructure/fetch"
	"pricewatch-service/internal/infrastructure/httpx"
	"pricewatch-service/internal/infrastructure/logx"
	"pricewatch-service/internal/infrastructure/memstore"
	"pricewatch-service/internal/infrastructure/notify"
	"pricewatch-service/internal/infrastructure/pg"
	redisstore "pricewatch-service/internal/infrastructure/redis"
)

var ErrMissingDBURL = errors.New("DATABASE_URL is required for STORAGE=pg")

type Stores struct {
	History application.HistoryStore
	Subs    application.SubscriptionRepo
	// Ping reports storage readiness; nil for in-memory stores.
	Ping func(ctx context.Context) error
}

// BuildStores assembles the history store and subscription registry selected
// by STORAGE.
func BuildStores(ctx context.Context, cfg config.Config) (Stores, func(), error) {
	log := logx.L()
	switch cfg.Storage {
	case "pg":
		if cfg.DatabaseURL == "" {
			return Stores{}, func() {}, ErrMissingDBURL
		}
		db, err := pg.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return Stores{}, func() {}, err
		}
		if err := pg.RunMigrations(ctx, db); err != nil {
			db.Close()
			return Stores{}, func() {}, err
		}
		cleanup := func() {
			log.Info("closing pg")
			db.Close()
		}
		return Stores{
			History: pg.NewHistoryRepo(db, cfg.RetentionDays),
			Subs:    pg.NewSubscriptionRepo(db),
			Ping:    db.Ping,
		}, cleanup, nil
	default:
		return Stores{
			History: memstore.NewHistory(cfg.RetentionDays),
			Subs:    memstore.NewSubscriptions(),
		}, func() {}, nil
	}
}

func BuildFetcher(cfg config.Config) application.Fetcher {
	switch cfg.Fetcher {
	case "fake":
		return fetch.NewFake(decimal.NewFromFloat(19.99))
	default:
		return &fetch.HTTPFetcher{
			Client:          &http.Client{Timeout: cfg.FetchTimeout},
			UserAgent:       cfg.UserAgent,
			DefaultCurrency: cfg.DefaultCurrency,
		}
	}
}

func BuildNotifier(cfg config.Config) application.Notifier {
	log := logx.L()
	if cfg.Notifier == "webhook" && cfg.WebhookURL != "" {
		return &notify.Webhook{
			URL:    cfg.WebhookURL,
			Client: &httpx.Client{HTTP: &http.Client{Timeout: 10 * time.Second}, Token: cfg.WebhookToken},
			Log:    log,
		}
	}
	return &notify.Log{Logger: log}
}

// BuildAlertGuard returns the redis-backed at-most-once guard, or the noop
// guard when ALERT_GUARD != redis.
func BuildAlertGuard(cfg config.Config) (application.AlertGuard, func(), error) {
	if cfg.AlertGuard != "redis" {
		return application.NoopAlertGuard{}, func() {}, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	return redisstore.New(rdb, cfg.AlertTTL), func() { _ = rdb.Close() }, nil
}

func BuildEngine(cfg config.Config, stores Stores, fetcher application.Fetcher) *application.Engine {
	detector := application.NewDealDetector(stores.History, cfg.DropThresholdPct)
	return application.NewEngine(stores.History, stores.Subs, fetcher, detector,
		application.WithDealLimit(cfg.DealLimit))
}

func BuildScheduler(cfg config.Config, stores Stores, fetcher application.Fetcher, notifier application.Notifier, guard application.AlertGuard, log *zap.Logger) *application.Scheduler {
	return &application.Scheduler{
		Subs:         stores.Subs,
		History:      stores.History,
		Fetcher:      fetcher,
		Notifier:     notifier,
		Guard:        guard,
		Pacer:        application.NewIntervalPacer(cfg.ItemDelay),
		Period:       cfg.RecheckPeriod,
		FetchTimeout: cfg.FetchTimeout,
		Log:          log,
	}
}
