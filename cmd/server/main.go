package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hongminglow/valide/internal/config"
	"github.com/hongminglow/valide/internal/logging"
	"github.com/hongminglow/valide/internal/server"
	"github.com/hongminglow/valide/internal/storage"
	"github.com/hongminglow/valide/internal/storage/memory"
	postgres "github.com/hongminglow/valide/internal/storage/postgres"
)

func main() {
	envLoaded := loadLocalEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	if !envLoaded {
		logger.Info("no .env file found; relying on existing environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("init session store", zap.Error(err))
	}
	defer store.Close()

	srv := server.New(cfg, server.Deps{Store: store, Logger: logger})
	go srv.RunJanitor(ctx, 10*time.Minute)

	go func() {
		logger.Info("VALIDÉ gateway listening", zap.String("addr", cfg.HTTPAddress()))
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Error("graceful shutdown error", zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (storage.BucketStore, error) {
	if cfg.DatabaseURL == "" {
		if !cfg.IsDev() {
			logger.Warn("DATABASE_URL is empty; browser sessions are kept in memory and lost on restart")
		}
		return memory.NewStore(), nil
	}
	return postgres.NewBucketStore(ctx, cfg.DatabaseURL)
}

func loadLocalEnv() bool {
	return godotenv.Load() == nil
}
