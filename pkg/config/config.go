package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

type MovieEntry struct {
	Slug      string `yaml:"slug"`
	Title     string `yaml:"title"`
	Poster    string `yaml:"poster"`
	StreamURL string `yaml:"stream_url"`
}

type Config struct {
	Server struct {
		Address         string        `yaml:"address"`
		Origin          string        `yaml:"origin"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Store struct {
		// Backend selects the store implementation: "redis" (push-notified
		// shared store) or "memory" (polled single-device store). Chosen at
		// construction, never mixed at runtime.
		Backend      string        `yaml:"backend"`
		PollInterval time.Duration `yaml:"poll_interval"`
		Redis        struct {
			Address  string `yaml:"address"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			PoolSize int    `yaml:"pool_size"`
		} `yaml:"redis"`
	} `yaml:"store"`

	Room struct {
		TTL               time.Duration `yaml:"ttl"`
		HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
		MaxNotifications  int           `yaml:"max_notifications"`
	} `yaml:"room"`

	Presence struct {
		// Two consuming views use different recency thresholds on purpose:
		// the timeline's join/leave notifications react faster than the
		// member list empties out.
		TimelineThreshold   time.Duration `yaml:"timeline_threshold"`
		MemberListThreshold time.Duration `yaml:"member_list_threshold"`
	} `yaml:"presence"`

	Catalog struct {
		Movies []MovieEntry `yaml:"movies"`
	} `yaml:"catalog"`

	Monitoring struct {
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Tracing struct {
		Enabled     bool    `yaml:"enabled"`
		ServiceName string  `yaml:"service_name"`
		JaegerURL   string  `yaml:"jaeger_url"`
		Environment string  `yaml:"environment"`
		SampleRate  float64 `yaml:"sample_rate"`
	} `yaml:"tracing"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`

	RateLimiting struct {
		Enabled bool `yaml:"enabled"`

		HTTP struct {
			RequestsPerSecond float64 `yaml:"requests_per_second"`
			Burst             int     `yaml:"burst"`
			MaxConcurrent     int     `yaml:"max_concurrent"` // global concurrent HTTP requests
		} `yaml:"http"`

		Chat struct {
			MessagesPerSecond float64 `yaml:"messages_per_second"`
			Burst             int     `yaml:"burst"`
		} `yaml:"chat"`
	} `yaml:"rate_limiting"`
}

// Validate checks that configuration values are within acceptable ranges.
func (c *Config) Validate() error {
	// Server
	if c.Server.Address == "" {
		return fmt.Errorf("server.address must not be empty")
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be > 0")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be > 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be > 0")
	}

	// Store
	switch c.Store.Backend {
	case "redis":
		if c.Store.Redis.Address == "" {
			return fmt.Errorf("store.redis.address must not be empty when store.backend=redis")
		}
		if c.Store.Redis.PoolSize <= 0 {
			return fmt.Errorf("store.redis.pool_size must be > 0 when store.backend=redis")
		}
	case "memory":
		if c.Store.PollInterval <= 0 {
			return fmt.Errorf("store.poll_interval must be > 0 when store.backend=memory")
		}
	default:
		return fmt.Errorf("store.backend must be one of: redis, memory")
	}

	// Room
	if c.Room.TTL <= 0 {
		return fmt.Errorf("room.ttl must be > 0")
	}
	if c.Room.HeartbeatInterval <= 0 {
		return fmt.Errorf("room.heartbeat_interval must be > 0")
	}
	if c.Room.MaxNotifications <= 0 {
		return fmt.Errorf("room.max_notifications must be > 0")
	}

	// Presence
	if c.Presence.TimelineThreshold <= 0 {
		return fmt.Errorf("presence.timeline_threshold must be > 0")
	}
	if c.Presence.MemberListThreshold <= 0 {
		return fmt.Errorf("presence.member_list_threshold must be > 0")
	}

	// Catalog
	for i, m := range c.Catalog.Movies {
		if m.Slug == "" || m.Title == "" || m.StreamURL == "" {
			return fmt.Errorf("catalog.movies[%d] must set slug, title and stream_url", i)
		}
	}

	// Monitoring
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort <= 0 {
		return fmt.Errorf("monitoring.prometheus_port must be > 0 when prometheus_enabled=true")
	}

	// Tracing
	if c.Tracing.Enabled && c.Tracing.JaegerURL == "" {
		return fmt.Errorf("tracing.jaeger_url must not be empty when tracing.enabled=true")
	}

	// Logging
	if c.Logging.Level == "" {
		return fmt.Errorf("logging.level must not be empty")
	}

	// Rate limiting
	if c.RateLimiting.Enabled {
		if c.RateLimiting.HTTP.RequestsPerSecond <= 0 {
			return fmt.Errorf("rate_limiting.http.requests_per_second must be > 0 when rate limiting is enabled")
		}
		if c.RateLimiting.HTTP.Burst <= 0 {
			return fmt.Errorf("rate_limiting.http.burst must be > 0 when rate limiting is enabled")
		}
		if c.RateLimiting.HTTP.MaxConcurrent < 0 {
			return fmt.Errorf("rate_limiting.http.max_concurrent must be >= 0 when rate limiting is enabled")
		}
		if c.RateLimiting.Chat.MessagesPerSecond <= 0 {
			return fmt.Errorf("rate_limiting.chat.messages_per_second must be > 0 when rate limiting is enabled")
		}
		if c.RateLimiting.Chat.Burst <= 0 {
			return fmt.Errorf("rate_limiting.chat.burst must be > 0 when rate limiting is enabled")
		}
	}

	return nil
}

// Load reads configuration from YAML file, applies defaults and env overrides.
func Load(configPath string) (*Config, error) {
	// If file does not exist, fall back to defaults
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config yaml: %w", err)
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// DefaultConfig returns configuration with sane defaults.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Server.Address = ":8080"
	cfg.Server.Origin = "http://localhost:8080"
	cfg.Server.ReadTimeout = 30 * time.Second
	cfg.Server.WriteTimeout = 30 * time.Second
	cfg.Server.ShutdownTimeout = 30 * time.Second

	cfg.Store.Backend = "memory"
	cfg.Store.PollInterval = 1 * time.Second
	cfg.Store.Redis.Address = "localhost:6379"
	cfg.Store.Redis.DB = 0
	cfg.Store.Redis.PoolSize = 10

	cfg.Room.TTL = 4 * time.Hour
	cfg.Room.HeartbeatInterval = 30 * time.Second
	cfg.Room.MaxNotifications = 5

	cfg.Presence.TimelineThreshold = 1 * time.Minute
	cfg.Presence.MemberListThreshold = 2 * time.Minute

	cfg.Monitoring.PrometheusEnabled = true
	cfg.Monitoring.PrometheusPort = 9090

	cfg.Tracing.Enabled = false
	cfg.Tracing.ServiceName = "watchparty"
	cfg.Tracing.JaegerURL = "http://localhost:14268/api/traces"
	cfg.Tracing.Environment = "development"
	cfg.Tracing.SampleRate = 1.0

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"

	cfg.RateLimiting.Enabled = false
	cfg.RateLimiting.HTTP.RequestsPerSecond = 50
	cfg.RateLimiting.HTTP.Burst = 100
	cfg.RateLimiting.HTTP.MaxConcurrent = 0
	cfg.RateLimiting.Chat.MessagesPerSecond = 5
	cfg.RateLimiting.Chat.Burst = 10

	return cfg
}

func (c *Config) applyEnvOverrides() {
	// Apply environment variable overrides
	if addr := os.Getenv("WATCHPARTY_SERVER_ADDRESS"); addr != "" {
		c.Server.Address = addr
	}
	if origin := os.Getenv("WATCHPARTY_ORIGIN"); origin != "" {
		c.Server.Origin = origin
	}
	if backend := os.Getenv("WATCHPARTY_STORE_BACKEND"); backend != "" {
		c.Store.Backend = backend
	}
	if addr := os.Getenv("WATCHPARTY_REDIS_ADDRESS"); addr != "" {
		c.Store.Redis.Address = addr
	}
	if level := os.Getenv("WATCHPARTY_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}
