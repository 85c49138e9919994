//go:build js && wasm

package main

import (
	"context"
	"log"
	"syscall/js"

	"github.com/andesco/edgeproxy/pkg/offline"
)

// version names the cache bucket for this deployment:
//
//	GOOS=js GOARCH=wasm go build -ldflags "-X main.version=edgeproxy-v2" -o sw.wasm ./worker
var version = offline.DefaultVersion

var worker *offline.Worker

func main() {
	origin := js.Global().Get("location").Get("origin").String()

	w, err := offline.New(offline.Options{
		Version: version,
		Origin:  origin,
		Storage: cacheStorage{caches: js.Global().Get("caches")},
		Network: networkFetcher{},
	})
	if err != nil {
		log.Printf("ERROR: offline worker disabled: %v", err)
		return
	}
	worker = w

	// sw.js owns the event listeners and calls into these.
	js.Global().Set("goOfflineIntercepts", js.FuncOf(interceptsHandler))
	js.Global().Set("goOfflineInstall", js.FuncOf(installHandler))
	js.Global().Set("goOfflineActivate", js.FuncOf(activateHandler))
	js.Global().Set("goOfflineFetch", js.FuncOf(fetchHandler))

	log.Printf("INFO: offline worker ready, bucket %s", worker.Version())

	// Keep the program running
	select {}
}

// interceptsHandler runs synchronously inside the fetch event so the shim can
// decide whether to call respondWith at all.
func interceptsHandler(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return false
	}
	return worker.Intercepts(offline.Request{Method: args[0].String(), URL: args[1].String()})
}

func installHandler(this js.Value, args []js.Value) interface{} {
	return promise(func() (js.Value, error) {
		worker.Install(context.Background())
		return js.Undefined(), nil
	})
}

func activateHandler(this js.Value, args []js.Value) interface{} {
	return promise(func() (js.Value, error) {
		if err := worker.Activate(context.Background()); err != nil {
			log.Printf("WARN: activate: %v", err)
		}
		return js.Undefined(), nil
	})
}

func fetchHandler(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.Global().Get("Promise").Call("reject", js.ValueOf("Expected 1 argument: request"))
	}
	request := args[0]

	return promise(func() (js.Value, error) {
		req := offline.Request{
			Method: request.Get("method").String(),
			URL:    request.Get("url").String(),
			Header: headersFromJS(request.Get("headers")),
		}
		resp, err := worker.Respond(context.Background(), req)
		if err != nil {
			return js.Undefined(), err
		}
		return responseToJS(resp)
	})
}
