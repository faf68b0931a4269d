package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrNilTarget is returned when Load is called with a nil pointer.
var ErrNilTarget = errors.New("config target must be a non-nil pointer")

var (
	dotenvOnce sync.Once

	mu    sync.Mutex
	cache = make(map[reflect.Type]any)
)

// Load parses environment variables into cfg. The first successful load of a
// type is cached and later calls for the same type receive the cached copy.
func Load[T any](cfg *T) error {
	if cfg == nil {
		return ErrNilTarget
	}

	// Missing .env is the normal case outside local development.
	dotenvOnce.Do(func() { _ = godotenv.Load() })

	typ := reflect.TypeOf(cfg).Elem()

	mu.Lock()
	defer mu.Unlock()

	if cached, ok := cache[typ]; ok {
		*cfg = cached.(T)
		return nil
	}

	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("failed to parse %s from environment: %w", typ, err)
	}
	cache[typ] = *cfg

	return nil
}

// MustLoad is like Load but panics on failure. Intended for process startup.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}

// Reset drops all cached configurations so the next Load re-reads the
// environment. Used by tests that manipulate environment variables.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	clear(cache)
}
