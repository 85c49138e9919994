// Package offline decides how a service worker answers fetches for the
// front-end: cache first, network second, cached root document when the
// network is gone. The browser bindings live in the worker command; this
// package only sees the interfaces below.
package offline

import (
	"context"
	"net/http"
)

// DefaultVersion names the cache bucket. Bumping it invalidates every asset
// cached by earlier deployments.
const DefaultVersion = "edgeproxy-v1"

// DefaultBypassPaths are served by the proxies and never cached.
var DefaultBypassPaths = []string{"/api/claude", "/proxy"}

// Request is the part of an intercepted fetch the worker decides on.
type Request struct {
	Method string
	URL    string
	Header http.Header
}

// Response is a captured response snapshot.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
	// URL is the final URL after redirects. Empty means the request URL.
	URL string
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r != nil && r.Status >= 200 && r.Status < 300
}

// Clone returns a deep copy so cached snapshots never alias a live response.
func (r *Response) Clone() *Response {
	if r == nil {
		return nil
	}
	return &Response{
		Status: r.Status,
		Header: r.Header.Clone(),
		Body:   append([]byte(nil), r.Body...),
		URL:    r.URL,
	}
}

// Bucket is one named request-to-response store.
type Bucket interface {
	Match(ctx context.Context, url string) (*Response, bool, error)
	Put(ctx context.Context, url string, resp *Response) error
}

// Storage holds the named buckets of one client.
type Storage interface {
	Open(ctx context.Context, name string) (Bucket, error)
	Keys(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, name string) (bool, error)
}

// Fetcher performs a real network request.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) (*Response, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, req Request) (*Response, error)

func (f FetcherFunc) Fetch(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}
