package config

import (
	"time"
)

// Upstream holds the rate provider settings. Durations are expressed in
// milliseconds to match the deployment environment.
type Upstream struct {
	APIKey          string `envconfig:"EXCHANGE_RATE_API_KEY"`
	APIURL          string `envconfig:"EXCHANGE_RATE_API_URL" default:"https://v6.exchangerate-api.com/v6" validate:"required,url"`
	CacheTTLMs      int64  `envconfig:"UPSTREAM_CACHE_TTL_MS" default:"300000" validate:"gt=0"`
	TimeoutMs       int64  `envconfig:"UPSTREAM_TIMEOUT_MS" default:"8000" validate:"gt=0"`
	Retries         int    `envconfig:"UPSTREAM_RETRIES" default:"1" validate:"gte=0,lte=10"`
	BackoffMs       int64  `envconfig:"UPSTREAM_BACKOFF_MS" default:"200" validate:"gte=0"`
	StaleRetainMs   int64  `envconfig:"UPSTREAM_STALE_RETENTION_MS" default:"86400000" validate:"gte=0"`
	CoalesceFetches bool   `envconfig:"UPSTREAM_COALESCE" default:"false"`
}

// HasCredential reports whether an API key is configured.
func (u *Upstream) HasCredential() bool {
	return u.APIKey != ""
}

func (u *Upstream) CacheTTL() time.Duration {
	return time.Duration(u.CacheTTLMs) * time.Millisecond
}

func (u *Upstream) Timeout() time.Duration {
	return time.Duration(u.TimeoutMs) * time.Millisecond
}

func (u *Upstream) BackoffBase() time.Duration {
	return time.Duration(u.BackoffMs) * time.Millisecond
}

func (u *Upstream) StaleRetention() time.Duration {
	return time.Duration(u.StaleRetainMs) * time.Millisecond
}

type Cache struct {
	Backend string `envconfig:"BACKEND" default:"memory" validate:"oneof=memory redis"`
}

type Redis struct {
	URL       string `envconfig:"URL" default:"redis://localhost:6379/0"`
	KeyPrefix string `envconfig:"KEY_PREFIX" default:"fxrate:rates:"`
}

type RateLimit struct {
	MaxRequests int           `envconfig:"MAX_REQUESTS" default:"60" validate:"gt=0"`
	Window      time.Duration `envconfig:"WINDOW" default:"1m" validate:"gt=0"`
}

type Log struct {
	Level      int    `envconfig:"LEVEL" default:"0"`
	Format     string `envconfig:"FORMAT" default:"text" validate:"oneof=text json logfmt"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[fxrate]"`
}

type Server struct {
	Host string `envconfig:"HOST" default:"0.0.0.0"`
	Port int    `envconfig:"PORT" default:"3000" validate:"gt=0,lte=65535"`
}

type App struct {
	Env       string     `envconfig:"APP_ENV" default:"development"`
	Server    *Server    `envconfig:"SERVER"`
	Log       *Log       `envconfig:"LOG"`
	Upstream  *Upstream  `ignored:"true"`
	Cache     *Cache     `envconfig:"CACHE"`
	Redis     *Redis     `envconfig:"REDIS"`
	RateLimit *RateLimit `envconfig:"RATE_LIMIT"`
}
