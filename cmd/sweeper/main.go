package main

import (
	"context"
	"flag"
	"time"

	"watchparty/internal/core/services"
	"watchparty/internal/infrastructure/backend"
	"watchparty/internal/infrastructure/catalog"
	"watchparty/pkg/config"
	"watchparty/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
)

// The sweeper is the only thing that ever deletes a room. Expired rooms sit
// in the store unreadable (lookups report them gone) until this binary runs,
// typically from cron.
func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall sweep timeout")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		cfg = config.DefaultConfig()
	}

	zapLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLogger.Sync()

	log := zapLogger.Sugar()

	store, err := backend.New(cfg, log)
	if err != nil {
		log.Fatalw("failed to create store backend", "error", err)
	}
	defer store.Close()

	movieCatalog := catalog.NewMemoryCatalog(cfg.Catalog.Movies)
	metricsService := services.NewMetricsService(prometheus.NewRegistry())
	roomService := services.NewRoomService(store, movieCatalog, metricsService, cfg.Room.TTL, log)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	swept, err := roomService.SweepExpired(ctx)
	if err != nil {
		log.Fatalw("sweep failed", "error", err)
	}

	log.Infow("sweep complete", "rooms_deleted", swept)
}
