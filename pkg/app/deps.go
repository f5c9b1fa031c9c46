package app

import (
	"io"
	"log/slog"

	"github.com/amirasaad/fxrate/pkg/config"
	"github.com/amirasaad/fxrate/pkg/exchange/service"
	"github.com/prometheus/client_golang/prometheus"
)

// Deps holds everything the HTTP layer needs.
type Deps struct {
	Config          *config.App
	Logger          *slog.Logger
	ExchangeService *service.Service
	MetricsRegistry *prometheus.Registry
	// Closers are released on shutdown, in order.
	Closers []io.Closer
}

// Close releases every closer and returns the first error.
func (d *Deps) Close() error {
	var first error
	for _, c := range d.Closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
