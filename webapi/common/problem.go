package common

import (
	"github.com/gofiber/fiber/v2"
)

// ProblemDetails follows RFC 9457 Problem Details for HTTP APIs.
type ProblemDetails struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// ProblemDetailsJSON writes a problem+json response. Status defaults to 500.
// Callers pass a user-safe detail; internal errors stay in the logs.
func ProblemDetailsJSON(c *fiber.Ctx, title, detail string, status ...int) error {
	code := fiber.StatusInternalServerError
	if len(status) > 0 {
		code = status[0]
	}
	pd := ProblemDetails{
		Type:     "about:blank",
		Title:    title,
		Status:   code,
		Detail:   detail,
		Instance: c.OriginalURL(),
	}
	return c.Status(code).JSON(pd, "application/problem+json")
}
