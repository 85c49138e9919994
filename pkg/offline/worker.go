package offline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
)

// Options configures a Worker.
type Options struct {
	// Version is the name of the one bucket this deployment uses.
	Version string
	// Origin is the worker's own origin, e.g. https://app.example.
	Origin string
	// RootPath is seeded at install and served when the network fails.
	RootPath    string
	BypassPaths []string
	Storage     Storage
	Network     Fetcher
	Logger      *log.Logger
}

// Worker applies the offline caching policy to intercepted fetches.
type Worker struct {
	version string
	origin  *url.URL
	root    string
	bypass  []string
	storage Storage
	network Fetcher
	logger  *log.Logger
}

// New validates opts and builds a Worker.
func New(opts Options) (*Worker, error) {
	if opts.Storage == nil {
		return nil, errors.New("offline: storage is required")
	}
	if opts.Network == nil {
		return nil, errors.New("offline: network fetcher is required")
	}
	origin, err := url.Parse(opts.Origin)
	if err != nil {
		return nil, fmt.Errorf("offline: invalid origin %q: %w", opts.Origin, err)
	}
	if origin.Scheme == "" || origin.Host == "" {
		return nil, fmt.Errorf("offline: origin %q must be absolute", opts.Origin)
	}

	w := &Worker{
		version: opts.Version,
		origin:  &url.URL{Scheme: origin.Scheme, Host: origin.Host},
		root:    opts.RootPath,
		bypass:  opts.BypassPaths,
		storage: opts.Storage,
		network: opts.Network,
		logger:  opts.Logger,
	}
	if w.version == "" {
		w.version = DefaultVersion
	}
	if w.root == "" {
		w.root = "/"
	}
	if w.bypass == nil {
		w.bypass = DefaultBypassPaths
	}
	if w.logger == nil {
		w.logger = log.Default()
	}
	return w, nil
}

// Version returns the active bucket name.
func (w *Worker) Version() string { return w.version }

// RootURL is the absolute URL of the offline fallback document.
func (w *Worker) RootURL() string {
	return w.origin.ResolveReference(&url.URL{Path: w.root}).String()
}

// Install seeds the bucket with the root document. A failure leaves the
// worker installed; other assets still populate lazily.
func (w *Worker) Install(ctx context.Context) {
	root := w.RootURL()
	resp, err := w.network.Fetch(ctx, Request{Method: http.MethodGet, URL: root})
	if err != nil {
		w.logger.Printf("WARN: install: could not fetch %s: %v", root, err)
		return
	}
	if !resp.OK() {
		w.logger.Printf("WARN: install: %s answered %d, not cached", root, resp.Status)
		return
	}
	w.store(ctx, root, resp)
}

// Activate deletes every bucket left behind by other versions.
func (w *Worker) Activate(ctx context.Context) error {
	names, err := w.storage.Keys(ctx)
	if err != nil {
		return fmt.Errorf("error listing cache buckets: %w", err)
	}
	for _, name := range names {
		if name == w.version {
			continue
		}
		if _, err := w.storage.Delete(ctx, name); err != nil {
			w.logger.Printf("WARN: activate: could not delete bucket %s: %v", name, err)
			continue
		}
		w.logger.Printf("INFO: activate: deleted stale bucket %s", name)
	}
	return nil
}

// Intercepts reports whether the worker answers req. Anything it declines is
// left to the browser's default network handling.
func (w *Worker) Intercepts(req Request) bool {
	if !strings.EqualFold(req.Method, http.MethodGet) {
		return false
	}
	u, err := url.Parse(req.URL)
	if err != nil || !w.sameOrigin(u) {
		return false
	}
	for _, p := range w.bypass {
		if u.Path == p || strings.HasPrefix(u.Path, strings.TrimSuffix(p, "/")+"/") {
			return false
		}
	}
	return true
}

// Respond answers an intercepted request: cache hit, else network (caching
// successful same-origin replies), else the cached root document.
func (w *Worker) Respond(ctx context.Context, req Request) (*Response, error) {
	key := cacheKey(req.URL)
	if resp, ok := w.match(ctx, key); ok {
		return resp, nil
	}

	resp, err := w.network.Fetch(ctx, req)
	if err != nil {
		if root, ok := w.match(ctx, w.RootURL()); ok {
			w.logger.Printf("WARN: fetch %s failed, serving cached root: %v", req.URL, err)
			return root, nil
		}
		return nil, err
	}

	if resp.OK() && strings.EqualFold(req.Method, http.MethodGet) && w.responseSameOrigin(req, resp) {
		w.store(ctx, key, resp)
	}
	return resp, nil
}

func (w *Worker) match(ctx context.Context, key string) (*Response, bool) {
	bucket, err := w.storage.Open(ctx, w.version)
	if err != nil {
		w.logger.Printf("WARN: could not open bucket %s: %v", w.version, err)
		return nil, false
	}
	resp, ok, err := bucket.Match(ctx, key)
	if err != nil {
		w.logger.Printf("WARN: cache lookup %s: %v", key, err)
		return nil, false
	}
	return resp, ok
}

func (w *Worker) store(ctx context.Context, key string, resp *Response) {
	bucket, err := w.storage.Open(ctx, w.version)
	if err != nil {
		w.logger.Printf("WARN: could not open bucket %s: %v", w.version, err)
		return
	}
	if err := bucket.Put(ctx, key, resp.Clone()); err != nil {
		w.logger.Printf("WARN: cache write %s: %v", key, err)
	}
}

func (w *Worker) responseSameOrigin(req Request, resp *Response) bool {
	final := resp.URL
	if final == "" {
		final = req.URL
	}
	u, err := url.Parse(final)
	return err == nil && w.sameOrigin(u)
}

func (w *Worker) sameOrigin(u *url.URL) bool {
	return strings.EqualFold(u.Scheme, w.origin.Scheme) && hostPort(u) == hostPort(w.origin)
}

func hostPort(u *url.URL) string {
	host, port := strings.ToLower(u.Hostname()), u.Port()
	switch {
	case port == "",
		port == "80" && strings.EqualFold(u.Scheme, "http"),
		port == "443" && strings.EqualFold(u.Scheme, "https"):
		return host
	}
	return host + ":" + port
}

// cacheKey drops the fragment, which the browser never sends.
func cacheKey(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}
