package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/andesco/edgeproxy/pkg/edgeproxy"
)

// Config is the deploy-time configuration shared by every entrypoint.
type Config struct {
	APIKey      string        `yaml:"anthropic_api_key" env:"ANTHROPIC_API_KEY"`
	APIURL      string        `yaml:"anthropic_api_url" env:"ANTHROPIC_API_URL"`
	APIVersion  string        `yaml:"anthropic_version" env:"ANTHROPIC_VERSION"`
	Timeout     time.Duration `yaml:"upstream_timeout" env:"UPSTREAM_TIMEOUT"`
	Port        string        `yaml:"port" env:"PORT"`
	LogRequests bool          `yaml:"log_requests" env:"LOG_REQUESTS"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		APIURL:      edgeproxy.DefaultAPIURL,
		APIVersion:  edgeproxy.DefaultAPIVersion,
		Timeout:     edgeproxy.DefaultTimeout,
		Port:        "8080",
		LogRequests: true,
	}
}

// Load layers an optional YAML file and then the process environment on top
// of the defaults. A missing credential is not an error here; handlers
// report it per request.
func Load(path string) (Config, error) {
	return LoadFrom(path, nil)
}

// LoadFrom is Load with an explicit environment. A nil environ reads the
// process environment.
func LoadFrom(path string, environ map[string]string) (Config, error) {
	cfg := Default()

	if path = strings.TrimSpace(path); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file '%s': %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("syntax error in config file '%s': %w", path, err)
		}
	}

	var err error
	if environ == nil {
		err = env.Parse(&cfg)
	} else {
		err = env.ParseWithOptions(&cfg, env.Options{Environment: environ})
	}
	if err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.Port = strings.TrimPrefix(strings.TrimSpace(cfg.Port), ":")
	return cfg, nil
}

// ProxyOptions converts the configuration into core proxy options.
func (c Config) ProxyOptions() edgeproxy.Options {
	return edgeproxy.Options{
		APIKey:     c.APIKey,
		APIURL:     c.APIURL,
		APIVersion: c.APIVersion,
		Timeout:    c.Timeout,
	}
}

// String renders the configuration for logs with the credential redacted.
func (c Config) String() string {
	key := "unset"
	if c.APIKey != "" {
		key = "set"
	}
	return fmt.Sprintf("api_url=%s api_version=%s api_key=%s timeout=%s port=%s log_requests=%t",
		c.APIURL, c.APIVersion, key, c.Timeout, c.Port, c.LogRequests)
}
