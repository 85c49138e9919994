package handlers

import (
	"errors"

	"github.com/andesco/edgeproxy/pkg/edgeproxy"
	"github.com/gofiber/fiber/v2"
)

// Chat is a Fiber handler that relays a chat-completion request body to the
// AI upstream with the server-held key attached.
func Chat(p *edgeproxy.Proxy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		allowAnyOrigin(c)

		resp, err := p.ForwardChat(c.UserContext(), c.Body())
		if err != nil {
			msg := err.Error()
			switch {
			case errors.Is(err, edgeproxy.ErrMissingCredential):
				p.Logger().Printf("ERROR: chat: %v", err)
			case errors.Is(err, edgeproxy.ErrTimeout):
				msg = "upstream timeout: " + msg
				p.Logger().Printf("ERROR: chat upstream timed out: %v", err)
			default:
				p.Logger().Printf("ERROR: chat upstream failed: %v", err)
			}
			return c.Status(edgeproxy.StatusCode(err)).JSON(fiber.Map{"error": msg})
		}

		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Status(resp.Status).Send(resp.Body)
	}
}
