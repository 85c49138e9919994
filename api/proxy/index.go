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
	// The fetch proxy never needs the AI credential.
	opts := cfg.ProxyOptions()
	opts.APIKey = ""
	defaultHandler = adaptor.FiberApp(handlers.NewFetchApp(edgeproxy.New(opts)))
}

// Handler is the entry point for Vercel's Go runtime.
func Handler(w http.ResponseWriter, r *http.Request) {
	defaultHandler.ServeHTTP(w, r)
}
