//go:build js && wasm

package main

import (
	"errors"
	"fmt"
	"net/http"
	"syscall/js"

	"github.com/andesco/edgeproxy/pkg/offline"
)

// promise runs fn on a goroutine and settles a JS Promise with its result.
func promise(fn func() (js.Value, error)) js.Value {
	var executor js.Func
	executor = js.FuncOf(func(this js.Value, promiseArgs []js.Value) interface{} {
		resolve := promiseArgs[0]
		reject := promiseArgs[1]

		go func() {
			defer executor.Release()
			defer func() {
				if r := recover(); r != nil {
					reject.Invoke(js.Global().Get("Error").New(fmt.Sprintf("Panic: %v", r)))
				}
			}()

			v, err := fn()
			if err != nil {
				reject.Invoke(js.Global().Get("Error").New(err.Error()))
				return
			}
			resolve.Invoke(v)
		}()

		return nil
	})
	return js.Global().Get("Promise").New(executor)
}

// await blocks the calling goroutine until p settles. Never call it from a
// js.FuncOf callback directly; the event loop would deadlock.
func await(p js.Value) (js.Value, error) {
	resolved := make(chan js.Value, 1)
	rejected := make(chan js.Value, 1)

	onResolve := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		if len(args) == 0 {
			resolved <- js.Undefined()
		} else {
			resolved <- args[0]
		}
		return nil
	})
	defer onResolve.Release()
	onReject := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		if len(args) == 0 {
			rejected <- js.Undefined()
		} else {
			rejected <- args[0]
		}
		return nil
	})
	defer onReject.Release()

	p.Call("then", onResolve, onReject)

	select {
	case v := <-resolved:
		return v, nil
	case e := <-rejected:
		return js.Undefined(), jsError(e)
	}
}

func jsError(v js.Value) error {
	if v.Type() == js.TypeObject && v.Get("message").Type() == js.TypeString {
		return errors.New(v.Get("message").String())
	}
	if v.IsUndefined() || v.IsNull() {
		return errors.New("promise rejected")
	}
	return errors.New(v.String())
}

func headersFromJS(headers js.Value) http.Header {
	h := make(http.Header)
	if headers.IsUndefined() || headers.IsNull() {
		return h
	}
	visit := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		// Headers.forEach passes (value, key).
		h.Add(args[1].String(), args[0].String())
		return nil
	})
	defer visit.Release()
	headers.Call("forEach", visit)
	return h
}

func headersToJS(h http.Header) js.Value {
	headers := js.Global().Get("Headers").New()
	for key, values := range h {
		for _, value := range values {
			headers.Call("append", key, value)
		}
	}
	return headers
}

func responseFromJS(v js.Value) (*offline.Response, error) {
	buf, err := await(v.Call("arrayBuffer"))
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}
	u8 := js.Global().Get("Uint8Array").New(buf)
	body := make([]byte, u8.Get("length").Int())
	js.CopyBytesToGo(body, u8)

	return &offline.Response{
		Status: v.Get("status").Int(),
		Header: headersFromJS(v.Get("headers")),
		Body:   body,
		URL:    v.Get("url").String(),
	}, nil
}

func responseToJS(resp *offline.Response) (js.Value, error) {
	if resp.Status < 200 || resp.Status > 599 {
		return js.Undefined(), fmt.Errorf("cannot rebuild response with status %d", resp.Status)
	}

	body := js.Null()
	if len(resp.Body) > 0 && !nullBodyStatus(resp.Status) {
		u8 := js.Global().Get("Uint8Array").New(len(resp.Body))
		js.CopyBytesToJS(u8, resp.Body)
		body = u8
	}

	responseInit := js.Global().Get("Object").New()
	responseInit.Set("status", resp.Status)
	responseInit.Set("headers", headersToJS(resp.Header))

	return js.Global().Get("Response").New(body, responseInit), nil
}

func nullBodyStatus(status int) bool {
	switch status {
	case http.StatusSwitchingProtocols, http.StatusNoContent, http.StatusResetContent, http.StatusNotModified:
		return true
	}
	return false
}
