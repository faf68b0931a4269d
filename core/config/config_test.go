package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/nearby/core/config"
)

type apiConfig struct {
	BaseURL string        `env:"TEST_NEARBY_BASE_URL,required"`
	Timeout time.Duration `env:"TEST_NEARBY_TIMEOUT" envDefault:"10s"`
}

type otherConfig struct {
	Name string `env:"TEST_NEARBY_NAME" envDefault:"nearby"`
}

func TestLoad_ParsesEnvironment(t *testing.T) {
	config.Reset()
	t.Setenv("TEST_NEARBY_BASE_URL", "http://localhost:3000/api")

	var cfg apiConfig
	require.NoError(t, config.Load(&cfg))

	assert.Equal(t, "http://localhost:3000/api", cfg.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
}

func TestLoad_CachesPerType(t *testing.T) {
	config.Reset()
	t.Setenv("TEST_NEARBY_BASE_URL", "http://first")

	var first apiConfig
	require.NoError(t, config.Load(&first))

	t.Setenv("TEST_NEARBY_BASE_URL", "http://second")

	var second apiConfig
	require.NoError(t, config.Load(&second))
	assert.Equal(t, "http://first", second.BaseURL)

	var other otherConfig
	require.NoError(t, config.Load(&other))
	assert.Equal(t, "nearby", other.Name)
}

func TestLoad_MissingRequired(t *testing.T) {
	config.Reset()

	var cfg apiConfig
	err := config.Load(&cfg)
	require.Error(t, err)
}

func TestLoad_NilTarget(t *testing.T) {
	var cfg *apiConfig
	assert.ErrorIs(t, config.Load(cfg), config.ErrNilTarget)
}

func TestMustLoad_Panics(t *testing.T) {
	config.Reset()

	assert.Panics(t, func() {
		var cfg apiConfig
		config.MustLoad(&cfg)
	})
}
