package nearby

import (
	"github.com/dmitrymomot/nearby/core/config"
	"github.com/dmitrymomot/nearby/core/gateway"
	"github.com/dmitrymomot/nearby/core/realtime"
	"github.com/dmitrymomot/nearby/integration/database/pg"
	"github.com/dmitrymomot/nearby/integration/database/redis"
	"github.com/dmitrymomot/nearby/service/location"
)

// Session backends selectable with NEARBY_SESSION_BACKEND.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config aggregates the configuration of every component.
// Redis and Postgres are only read when selected as the session backend.
type Config struct {
	Gateway        gateway.Config
	Realtime       realtime.Config
	Tracker        location.TrackerConfig
	SessionBackend string `env:"NEARBY_SESSION_BACKEND" envDefault:"memory"`
	Redis          redis.Config
	Postgres       pg.Config
}

// LoadConfig reads Config from the environment and an optional .env file.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DefaultConfig returns a Config for the API at baseURL with an in-memory
// session and no realtime socket.
func DefaultConfig(baseURL string) Config {
	return Config{
		Gateway:        gateway.DefaultConfig(baseURL),
		Tracker:        location.DefaultTrackerConfig(),
		SessionBackend: BackendMemory,
	}
}
