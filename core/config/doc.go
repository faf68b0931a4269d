// Package config loads component configuration from environment variables.
//
// Every component of the SDK declares its settings as a struct with
// caarlos0/env tags, e.g. gateway.Config:
//
//	type Config struct {
//		BaseURL string        `env:"NEARBY_API_BASE_URL,required"`
//		Timeout time.Duration `env:"NEARBY_API_TIMEOUT" envDefault:"10s"`
//	}
//
// Load parses such a struct. A .env file in the working directory is read
// once, on first use, and never overrides variables already set:
//
//	var gw gateway.Config
//	if err := config.Load(&gw); err != nil {
//		return err // NEARBY_API_BASE_URL is missing
//	}
//
// MustLoad panics instead and suits main:
//
//	var rt realtime.Config
//	config.MustLoad(&rt)
//
// Applications rarely call the package directly: nearby.LoadConfig loads the
// aggregate nearby.Config, whose nested gateway, realtime, tracker, redis and
// postgres sections are all parsed in one pass.
//
// # Caching
//
// The first successful load of a type is cached, so repeated calls agree
// even if the environment changes later. Types are cached independently;
// loading nearby.Config does not populate the gateway.Config entry. Tests
// that use t.Setenv call Reset to drop the cache.
package config
