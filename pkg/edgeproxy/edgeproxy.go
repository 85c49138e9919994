
package edgeproxy

import (
	"context"
	"log"
	"net/http"
	"time"
)

// #############################################################################
// # Defaults
// #############################################################################

const (
	DefaultAPIURL     = "https://api.anthropic.com/v1/messages"
	DefaultAPIVersion = "2023-06-01"
	DefaultTimeout    = 30 * time.Second

	// CredentialHeader carries the server-held key to the AI upstream.
	CredentialHeader = "x-api-key"
	// VersionHeader pins the upstream protocol version.
	VersionHeader = "anthropic-version"
)

// HTTPClient represents the subset of *http.Client used by the proxy.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options carries everything a Proxy needs. The credential is captured here
// once at construction and never read from the environment afterwards.
type Options struct {
	APIKey     string
	APIURL     string
	APIVersion string
	// Timeout bounds each outbound call. Zero disables the bound and leaves
	// the hosting environment's request lifetime in charge.
	Timeout time.Duration
	// Client serves both upstreams when set. The default chat client does not
	// follow redirects, so the credential never reaches another host.
	Client HTTPClient
	Logger *log.Logger
}

// #############################################################################
// # Core Proxy
// #############################################################################

// Proxy is the environment-agnostic core shared by the fiber handlers, the
// edge-function entrypoints and the standalone server.
type Proxy struct {
	apiKey     string
	apiURL     string
	apiVersion string
	timeout    time.Duration
	client     HTTPClient
	chatClient HTTPClient
	logger     *log.Logger
}

// Response is a fully buffered upstream reply.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// New builds a Proxy, filling unset options with defaults.
func New(opts Options) *Proxy {
	p := &Proxy{
		apiKey:     opts.APIKey,
		apiURL:     opts.APIURL,
		apiVersion: opts.APIVersion,
		timeout:    opts.Timeout,
		client:     opts.Client,
		chatClient: opts.Client,
		logger:     opts.Logger,
	}
	if p.apiURL == "" {
		p.apiURL = DefaultAPIURL
	}
	if p.apiVersion == "" {
		p.apiVersion = DefaultAPIVersion
	}
	if p.timeout < 0 {
		p.timeout = 0
	}
	if p.client == nil {
		// Redirects are followed by the default policy.
		p.client = &http.Client{}
	}
	if p.chatClient == nil {
		// net/http copies custom headers such as x-api-key onto the redirect.
		p.chatClient = &http.Client{CheckRedirect: noRedirect}
	}
	if p.logger == nil {
		p.logger = log.Default()
	}
	return p
}

func noRedirect(*http.Request, []*http.Request) error {
	return http.ErrUseLastResponse
}

// HasCredential reports whether an upstream key was configured.
func (p *Proxy) HasCredential() bool {
	return p.apiKey != ""
}

// Logger returns the logger the proxy reports through.
func (p *Proxy) Logger() *log.Logger {
	return p.logger
}

func (p *Proxy) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if p.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.timeout)
}
