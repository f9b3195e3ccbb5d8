package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"pricewatch-service/internal/bootstrap"
	"pricewatch-service/internal/config"
	"pricewatch-service/internal/infrastructure/httpserver"
	"pricewatch-service/internal/infrastructure/logx"
)

func init() { _ = godotenv.Load() }

func main() {
	logger := logx.L()
	cfg := config.Load()
	addr := ":" + cfg.Port

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stores, closeStores, err := bootstrap.BuildStores(ctx, cfg)
	if err != nil {
		logger.Fatal("bootstrap stores", zap.Error(err))
	}
	defer closeStores()

	guard, closeGuard, err := bootstrap.BuildAlertGuard(cfg)
	if err != nil {
		logger.Fatal("bootstrap alert guard", zap.Error(err))
	}
	defer closeGuard()

	fetcher := bootstrap.BuildFetcher(cfg)
	notifier := bootstrap.BuildNotifier(cfg)

	engine := bootstrap.BuildEngine(cfg, stores, fetcher)
	sched := bootstrap.BuildScheduler(cfg, stores, fetcher, notifier, guard, logger)

	mux := httpserver.NewRouter(httpserver.NewServer(engine, stores.Ping))
	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	schedDone := make(chan struct{})
	go func() {
		sched.Start(ctx)
		close(schedDone)
	}()

	go func() {
		logger.Info("server started", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	<-schedDone

	shutdownCtx, shCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shCancel()
	_ = server.Shutdown(shutdownCtx)
	logger.Info("server stopped")
}
