package handlers

import (
	"errors"

	"github.com/andesco/edgeproxy/pkg/edgeproxy"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

const missingURLMessage = "Missing url parameter"

// FetchURL is a Fiber handler that fetches the page named by the url query
// parameter and relays it with embedding restrictions removed.
func FetchURL(p *edgeproxy.Proxy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		allowAnyOrigin(c)

		// Gofiber hands out views into its request buffer.
		target := utils.CopyString(c.Query("url"))

		resp, err := p.FetchURL(c.UserContext(), target)
		if err != nil {
			c.Type("txt")
			switch {
			case errors.Is(err, edgeproxy.ErrMissingURL):
				return c.Status(fiber.StatusBadRequest).SendString(missingURLMessage)
			case errors.Is(err, edgeproxy.ErrTimeout):
				p.Logger().Printf("ERROR: fetch %s timed out: %v", target, err)
				return c.Status(fiber.StatusGatewayTimeout).SendString("Proxy timeout: " + err.Error())
			default:
				p.Logger().Printf("ERROR: fetch %s failed: %v", target, err)
				return c.Status(edgeproxy.StatusCode(err)).SendString("Proxy error: " + err.Error())
			}
		}

		if resp.Header.Get(fiber.HeaderContentType) == "" {
			// Relay a missing content type as missing, not as fasthttp's text/plain.
			c.Response().Header.SetNoDefaultContentType(true)
		}
		// Set response headers from the proxied response
		for key, values := range resp.Header {
			if key == fiber.HeaderAccessControlAllowOrigin {
				continue
			}
			for _, value := range values {
				c.Response().Header.Add(key, value)
			}
		}

		return c.Status(resp.Status).Send(resp.Body)
	}
}
