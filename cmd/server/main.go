package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"shopkeeper/internal/auth"
	"shopkeeper/internal/config"
	"shopkeeper/internal/infrastructure/logger"
	"shopkeeper/internal/infrastructure/mysql"
	"shopkeeper/internal/metrics"
	"shopkeeper/internal/product"
	"shopkeeper/internal/server"
)

func main() {
	configPath := os.Getenv("CONFIG_FILE")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level, zap.String("service", "shopkeeper"))
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := mysql.NewConnection(cfg.Database)
	if err != nil {
		zapLogger.Fatal("connecting to database", zap.Error(err))
	}
	defer db.Close()
	zapLogger.Info("database connected")

	productCtrl := product.NewModule(db, cfg.Product, zapLogger)
	authMW := auth.NewMiddleware(cfg.Auth.JWTSecret, zapLogger)

	router := server.NewRouter(productCtrl, authMW, db, metrics.NewHTTPMetrics(), cfg.RateLimit, zapLogger)
	srv := server.New(cfg.Server, router, zapLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		zapLogger.Error("server stopped with error", zap.Error(err))
		return
	}

	zapLogger.Info("server stopped gracefully")
}
