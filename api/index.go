// Package handler is the serverless entry point. The platform calls Handler
// once per request; the Fiber app is built on the first call and reused.
package handler

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/amirasaad/fxrate/infra/initializer"
	"github.com/amirasaad/fxrate/pkg/config"
	"github.com/amirasaad/fxrate/webapi"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

var (
	once     sync.Once
	cached   http.HandlerFunc
	buildErr error
)

// Handler is the main entry point of the application.
// Think of it like the main() method
func Handler(w http.ResponseWriter, r *http.Request) {
	// This is needed to set the proper request path in `*fiber.Ctx`
	r.RequestURI = r.URL.String()

	h, err := handler()
	if err != nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}
	h.ServeHTTP(w, r)
}

// building the fiber application
func handler() (http.HandlerFunc, error) {
	once.Do(func() {
		cfg, err := config.Load()
		if err != nil {
			slog.Error("Failed to load application configuration", "error", err)
			buildErr = err
			return
		}
		deps, err := initializer.InitializeDependencies(cfg)
		if err != nil {
			slog.Error("Failed to initialize dependencies", "error", err)
			buildErr = err
			return
		}
		cached = adaptor.FiberApp(webapi.SetupApp(deps))
	})
	return cached, buildErr
}
