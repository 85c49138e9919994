package handlers

import (
	"github.com/andesco/edgeproxy/pkg/edgeproxy"
	"github.com/gofiber/fiber/v2"
)

const (
	ChatPath   = "/api/claude"
	FetchPath  = "/proxy"
	HealthPath = "/healthz"
)

func newApp() *fiber.App {
	return fiber.New(fiber.Config{
		DisableStartupMessage: true,
		// The AI upstream accepts large prompts; the proxy does not judge size.
		BodyLimit: 32 * 1024 * 1024,
	})
}

// NewCombinedApp mounts both proxies on one app, answering preflights on any
// path with the combined policy.
func NewCombinedApp(p *edgeproxy.Proxy, middleware ...fiber.Handler) *fiber.App {
	app := newApp()
	for _, m := range middleware {
		app.Use(m)
	}

	app.Options("/*", CombinedPreflight.Handler())
	app.Post(ChatPath, Chat(p))
	app.Get(FetchPath, FetchURL(p))
	app.Get(HealthPath, func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

// NewChatApp builds the stand-alone AI proxy function. The hosting platform
// owns routing, so every path is served.
func NewChatApp(p *edgeproxy.Proxy) *fiber.App {
	app := newApp()
	app.Options("/*", ChatPreflight.Handler())
	app.Post("/*", Chat(p))
	return app
}

// NewFetchApp builds the stand-alone URL-fetch function.
func NewFetchApp(p *edgeproxy.Proxy) *fiber.App {
	app := newApp()
	app.Options("/*", FetchPreflight.Handler())
	app.Get("/*", FetchURL(p))
	return app
}
