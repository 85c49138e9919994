//go:build js && wasm

package main

import (
	"context"
	"fmt"
	"syscall/js"

	"github.com/andesco/edgeproxy/pkg/offline"
)

// networkFetcher issues requests through the worker's global fetch.
type networkFetcher struct{}

func (networkFetcher) Fetch(_ context.Context, req offline.Request) (*offline.Response, error) {
	init := js.Global().Get("Object").New()
	init.Set("method", req.Method)
	if len(req.Header) > 0 {
		init.Set("headers", headersToJS(req.Header))
	}

	v, err := await(js.Global().Call("fetch", req.URL, init))
	if err != nil {
		return nil, fmt.Errorf("error fetching %s: %w", req.URL, err)
	}
	return responseFromJS(v)
}

var _ offline.Fetcher = networkFetcher{}
