package gateway

import (
	"errors"
	"net/url"
	"time"
)

const (
	DefaultTimeout         = 10 * time.Second
	DefaultRefreshPath     = "/auth/refresh"
	DefaultRequestIDHeader = "X-Request-ID"
	DefaultUserAgent       = "nearby-go"
)

// Config holds gateway configuration with environment variable support.
type Config struct {
	BaseURL         string        `env:"NEARBY_API_BASE_URL,required"`
	Timeout         time.Duration `env:"NEARBY_API_TIMEOUT" envDefault:"10s"`
	RefreshPath     string        `env:"NEARBY_REFRESH_PATH" envDefault:"/auth/refresh"`
	RequestIDHeader string        `env:"NEARBY_REQUEST_ID_HEADER" envDefault:"X-Request-ID"`
	UserAgent       string        `env:"NEARBY_USER_AGENT" envDefault:"nearby-go"`
}

// DefaultConfig returns a Config for baseURL with default values.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:         baseURL,
		Timeout:         DefaultTimeout,
		RefreshPath:     DefaultRefreshPath,
		RequestIDHeader: DefaultRequestIDHeader,
		UserAgent:       DefaultUserAgent,
	}
}

// parse fills zero values with defaults and parses the base URL.
func (c *Config) parse() (*url.URL, error) {
	if c.BaseURL == "" {
		return nil, ErrMissingBaseURL
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, errors.Join(ErrInvalidBaseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, ErrInvalidBaseURL
	}

	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RefreshPath == "" {
		c.RefreshPath = DefaultRefreshPath
	}
	if c.RequestIDHeader == "" {
		c.RequestIDHeader = DefaultRequestIDHeader
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}

	return u, nil
}
