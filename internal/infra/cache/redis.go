package cache

import (
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/taskroom/taskroom/internal/config"
)

// Client is the shared redis connection pool. Shutdown lets the container close it.
type Client struct {
	*redis.Client
}

func New(cfg *config.Config) *Client {
	return &Client{Client: redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})}
}

func (c *Client) Shutdown() error {
	return c.Close()
}

// RegisterOpenTelemetryPlugin emits a span per redis command through the global tracer provider.
func RegisterOpenTelemetryPlugin(c *Client) error {
	return redisotel.InstrumentTracing(c.Client)
}
