package handler

import (
	"log"
	"net/http"

	"github.com/andesco/edgeproxy/handlers"
	"github.com/andesco/edgeproxy/pkg/config"
	"github.com/andesco/edgeproxy/pkg/edgeproxy"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

var defaultHandler http.Handler

func init() {
	cfg, err := config.Load("")
	if err != nil {
		log.Printf("WARN: %v", err)
	}
	if cfg.APIKey == "" {
		log.Printf("WARN: ANTHROPIC_API_KEY is not set; chat requests will fail with 500")
	}
	defaultHandler = adaptor.FiberApp(handlers.NewChatApp(edgeproxy.New(cfg.ProxyOptions())))
}

// Handler is the entry point for Vercel's Go runtime.
func Handler(w http.ResponseWriter, r *http.Request) {
	defaultHandler.ServeHTTP(w, r)
}
