// Package webapi exposes the rate engine over HTTP.
package webapi

import (
	"errors"
	"strings"

	_ "github.com/amirasaad/fxrate/docs"
	"github.com/amirasaad/fxrate/pkg/app"
	"github.com/amirasaad/fxrate/pkg/exchange/service"
	"github.com/amirasaad/fxrate/webapi/common"
	exchangeweb "github.com/amirasaad/fxrate/webapi/exchange"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupApp Initialize Fiber with custom configuration
func SetupApp(deps *app.Deps) *fiber.App {
	log := deps.Logger
	fiberApp := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return common.ProblemDetailsJSON(c, fe.Message, "", fe.Code)
			}
			log.Error("Unhandled request error", "path", c.Path(), "error", err)
			return common.ProblemDetailsJSON(c, "Internal Server Error", "unexpected error")
		},
	})

	fiberApp.Get("/swagger/*", swagger.New(swagger.Config{
		TryItOutEnabled: true,
	}))

	if rl := deps.Config.RateLimit; rl != nil {
		// Behind a proxy the client address comes from X-Forwarded-For,
		// then X-Real-IP.
		fiberApp.Use(limiter.New(limiter.Config{
			Max:        rl.MaxRequests,
			Expiration: rl.Window,
			KeyGenerator: func(c *fiber.Ctx) string {
				if forwardedFor := c.Get("X-Forwarded-For"); forwardedFor != "" {
					if commaIndex := strings.Index(forwardedFor, ","); commaIndex != -1 {
						return strings.TrimSpace(forwardedFor[:commaIndex])
					}
					return strings.TrimSpace(forwardedFor)
				}
				if realIP := c.Get("X-Real-IP"); realIP != "" {
					return realIP
				}
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return common.ProblemDetailsJSON(
					c,
					"Too Many Requests",
					"rate limit exceeded",
					fiber.StatusTooManyRequests,
				)
			},
		}))
	}
	fiberApp.Use(recover.New())
	fiberApp.Use(logger.New())

	svc := deps.ExchangeService
	fiberApp.Get("/health", health(svc))
	if deps.MetricsRegistry != nil {
		fiberApp.Get("/metrics", adaptor.HTTPHandler(
			promhttp.HandlerFor(deps.MetricsRegistry, promhttp.HandlerOpts{}),
		))
	}

	exchangeweb.Routes(fiberApp, svc)
	return fiberApp
}

// health reports liveness and whether an upstream credential is configured.
// @Summary Liveness and upstream configuration
// @Tags system
// @Produce json
// @Success 200
// @Router /health [get]
func health(svc *service.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "ok",
			"upstream": svc.UpstreamEnabled(),
		})
	}
}
