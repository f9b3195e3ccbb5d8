package config

import (
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

type Config struct {
	// Common
	Env      string
	LogLevel string
	// HTTP
	Port string
	// Storage
	Storage     string // "memory" or "pg"
	DatabaseURL string
	// Fetcher
	Fetcher         string // "http" or "fake"
	FetchTimeout    time.Duration
	UserAgent       string
	DefaultCurrency string
	// Notifier
	Notifier     string // "webhook" or "log"
	WebhookURL   string
	WebhookToken string
	// Engine
	RetentionDays    int
	DropThresholdPct decimal.Decimal
	DealLimit        int
	// Scheduler
	RecheckPeriod time.Duration
	ItemDelay     time.Duration
	// Redis (alert guard)
	AlertGuard    string // "redis" or "none"
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	AlertTTL      time.Duration
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoiDef(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func durDef(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}

func decDef(s string, def decimal.Decimal) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return def
	}
	return d
}

// Load reads environment variables and applies defaults.
func Load() Config {
	return Config{
		Env:              getEnv("ENV", "local"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		Port:             getEnv("PORT", "8080"),
		Storage:          getEnv("STORAGE", "memory"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		Fetcher:          getEnv("FETCHER", "http"),
		FetchTimeout:     durDef(getEnv("FETCH_TIMEOUT", "10s"), 10*time.Second),
		UserAgent:        getEnv("FETCH_USER_AGENT", "pricewatch/1.0"),
		DefaultCurrency:  getEnv("DEFAULT_CURRENCY", "USD"),
		Notifier:         getEnv("NOTIFIER", "log"),
		WebhookURL:       getEnv("WEBHOOK_URL", ""),
		WebhookToken:     getEnv("WEBHOOK_TOKEN", ""),
		RetentionDays:    atoiDef(getEnv("RETENTION_DAYS", "30"), 30),
		DropThresholdPct: decDef(getEnv("DROP_THRESHOLD_PCT", "5.0"), decimal.NewFromInt(5)),
		DealLimit:        atoiDef(getEnv("DEAL_LIMIT", "5"), 5),
		RecheckPeriod:    durDef(getEnv("RECHECK_PERIOD", "2h"), 2*time.Hour),
		ItemDelay:        durDef(getEnv("ITEM_DELAY", "2s"), 2*time.Second),
		AlertGuard:       getEnv("ALERT_GUARD", "none"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          atoiDef(getEnv("REDIS_DB", "0"), 0),
		AlertTTL:         durDef(getEnv("ALERT_TTL", "720h"), 30*24*time.Hour),
	}
}
