package realtime

import "time"

const (
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultWriteTimeout     = 5 * time.Second
	DefaultPingPeriod       = 30 * time.Second
	DefaultPongWait         = 60 * time.Second
)

// Config holds realtime socket configuration with environment variable support.
// An empty URL disables the socket.
type Config struct {
	URL              string        `env:"NEARBY_REALTIME_URL"`
	HandshakeTimeout time.Duration `env:"NEARBY_REALTIME_HANDSHAKE_TIMEOUT" envDefault:"10s"`
	WriteTimeout     time.Duration `env:"NEARBY_REALTIME_WRITE_TIMEOUT" envDefault:"5s"`
	PingPeriod       time.Duration `env:"NEARBY_REALTIME_PING_PERIOD" envDefault:"30s"`
	PongWait         time.Duration `env:"NEARBY_REALTIME_PONG_WAIT" envDefault:"60s"`
}

// DefaultConfig returns a Config for url with default timings.
func DefaultConfig(url string) Config {
	return Config{
		URL:              url,
		HandshakeTimeout: DefaultHandshakeTimeout,
		WriteTimeout:     DefaultWriteTimeout,
		PingPeriod:       DefaultPingPeriod,
		PongWait:         DefaultPongWait,
	}
}

func (c *Config) setDefaults() {
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
	if c.PingPeriod <= 0 {
		c.PingPeriod = DefaultPingPeriod
	}
	if c.PongWait <= c.PingPeriod {
		c.PongWait = c.PingPeriod * 2
	}
}
