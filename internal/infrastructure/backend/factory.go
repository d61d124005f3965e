package backend

import (
	"fmt"

	"watchparty/internal/core/domain"
	"watchparty/internal/core/ports"
	"watchparty/internal/infrastructure/backend/memory"
	redisbackend "watchparty/internal/infrastructure/backend/redis"
	"watchparty/pkg/config"

	"go.uber.org/zap"
)

// New selects the store implementation at construction time. The two
// backends are never mixed at runtime; a process is either push-notified
// (redis) or polling (memory) for its whole lifetime.
//
// A store that cannot be initialized is a configuration error, deliberately
// distinct from "room not found" downstream.
func New(cfg *config.Config, logger *zap.SugaredLogger) (ports.Backend, error) {
	switch cfg.Store.Backend {
	case "redis":
		client, err := redisbackend.NewClient(
			cfg.Store.Redis.Address,
			cfg.Store.Redis.Password,
			cfg.Store.Redis.DB,
			cfg.Store.Redis.PoolSize,
			logger,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrNotConfigured, err)
		}
		logger.Info("using redis store backend")
		return redisbackend.NewRoomBackend(client, logger), nil

	case "memory":
		logger.Infow("using memory store backend", "poll_interval", cfg.Store.PollInterval)
		return memory.NewRoomBackend(cfg.Store.PollInterval, logger), nil

	default:
		return nil, fmt.Errorf("%w: unknown store backend %q", domain.ErrNotConfigured, cfg.Store.Backend)
	}
}
