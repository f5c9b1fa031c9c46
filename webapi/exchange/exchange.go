package exchange

import (
	"github.com/amirasaad/fxrate/pkg/currency"
	"github.com/amirasaad/fxrate/pkg/exchange/core"
	"github.com/amirasaad/fxrate/pkg/exchange/service"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// Routes registers the exchange endpoints.
func Routes(app *fiber.App, svc *service.Service) {
	group := app.Group("/api/exchange")
	group.Get("/convert", Convert(svc))
	group.Get("/currencies", Currencies())
}

// Convert returns a Fiber handler that converts between two currencies.
// @Summary Convert an amount between currencies
// @Description Resolves a rate from cache, upstream, stale cache or the static table, in that order, and reports which one answered in `source`.
// @Tags exchange
// @Produce json
// @Param from query string true "Source currency (ISO 4217)"
// @Param to query string true "Target currency (ISO 4217)"
// @Param amount query string false "Amount to convert"
// @Success 200 {object} ConversionResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/exchange/convert [get]
func Convert(svc *service.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDHeader, id)

		ctx := service.WithRequestID(c.UserContext(), id)
		res, err := svc.ConvertQuery(ctx, c.Queries())
		if err != nil {
			if core.IsValidationError(err) || core.IsPairUnavailable(err) {
				return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
					Success: false,
					Error:   err.Error(),
				})
			}
			return err
		}
		return c.Status(fiber.StatusOK).JSON(ToResponse(res))
	}
}

// Currencies lists the supported currency codes.
// @Summary List supported currencies
// @Tags exchange
// @Produce json
// @Success 200 {object} CurrenciesResponse
// @Router /api/exchange/currencies [get]
func Currencies() fiber.Handler {
	return func(c *fiber.Ctx) error {
		codes := currency.Supported()
		out := make([]string, 0, len(codes))
		for _, code := range codes {
			out = append(out, code.String())
		}
		return c.JSON(CurrenciesResponse{Success: true, Currencies: out})
	}
}
