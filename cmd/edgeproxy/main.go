package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/akamensky/argparse"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"golang.org/x/term"

	"github.com/andesco/edgeproxy/handlers"
	"github.com/andesco/edgeproxy/pkg/config"
	"github.com/andesco/edgeproxy/pkg/edgeproxy"
)

func main() {
	parser := argparse.NewParser("edgeproxy", "AI chat proxy and CORS URL-fetch proxy")

	port := parser.String("p", "port", &argparse.Options{
		Required: false,
		Help:     "Port the webserver will listen on (overrides PORT)",
	})
	configPath := parser.String("c", "config", &argparse.Options{
		Required: false,
		Default:  os.Getenv("EDGEPROXY_CONFIG"),
		Help:     "Path to a YAML config file",
	})
	timeout := parser.String("t", "timeout", &argparse.Options{
		Required: false,
		Help:     "Timeout for each upstream call, e.g. 30s (overrides UPSTREAM_TIMEOUT, 0 disables)",
	})
	quiet := parser.Flag("q", "quiet", &argparse.Options{
		Required: false,
		Help:     "Disable request logging",
	})

	if err := parser.Parse(os.Args); err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("ERROR: %v", err)
	}
	if *port != "" {
		cfg.Port = *port
	}
	if *timeout != "" {
		d, err := time.ParseDuration(*timeout)
		if err != nil {
			log.Fatalf("ERROR: invalid --timeout %q: %v", *timeout, err)
		}
		cfg.Timeout = d
	}
	if *quiet {
		cfg.LogRequests = false
	}

	log.Printf("INFO: starting edgeproxy %s", cfg)
	if cfg.APIKey == "" {
		log.Printf("WARN: ANTHROPIC_API_KEY is not set; %s will answer 500", handlers.ChatPath)
	}

	app := newApp(cfg, os.Stdout)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		log.Printf("INFO: shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("ERROR: shutdown: %v", err)
		}
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}

func newApp(cfg config.Config, out *os.File) *fiber.App {
	middleware := []fiber.Handler{recover.New()}
	if cfg.LogRequests {
		middleware = append(middleware, logger.New(logger.Config{
			Format:        "${time} ${status} - ${latency} ${method} ${path}\n",
			Output:        out,
			DisableColors: !term.IsTerminal(int(out.Fd())),
		}))
	}
	return handlers.NewCombinedApp(edgeproxy.New(cfg.ProxyOptions()), middleware...)
}
