package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

const preflightMaxAge = 86400

// Preflight describes what a CORS preflight answer advertises.
type Preflight struct {
	Methods string
	Headers string
	MaxAge  int
}

var (
	// ChatPreflight is served by the stand-alone AI proxy function.
	ChatPreflight = Preflight{Methods: "POST, OPTIONS", Headers: "Content-Type", MaxAge: preflightMaxAge}
	// FetchPreflight is served by the stand-alone URL-fetch function.
	FetchPreflight = Preflight{Methods: "GET, OPTIONS", Headers: "Content-Type", MaxAge: preflightMaxAge}
	// CombinedPreflight is served on every path by the combined server.
	CombinedPreflight = Preflight{Methods: "GET, POST, OPTIONS", Headers: "Content-Type, Authorization", MaxAge: preflightMaxAge}
)

// Handler answers any preflight with 204 and an empty body.
func (pf Preflight) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		allowAnyOrigin(c)
		c.Set(fiber.HeaderAccessControlAllowMethods, pf.Methods)
		c.Set(fiber.HeaderAccessControlAllowHeaders, pf.Headers)
		if pf.MaxAge > 0 {
			c.Set(fiber.HeaderAccessControlMaxAge, strconv.Itoa(pf.MaxAge))
		}
		return c.Status(fiber.StatusNoContent).Send(nil)
	}
}

func allowAnyOrigin(c *fiber.Ctx) {
	c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
}
