//go:build js && wasm

package main

import (
	"context"
	"fmt"
	"syscall/js"

	"github.com/andesco/edgeproxy/pkg/offline"
)

// cacheStorage binds offline.Storage to the browser's CacheStorage.
type cacheStorage struct {
	caches js.Value
}

func (s cacheStorage) Open(_ context.Context, name string) (offline.Bucket, error) {
	v, err := await(s.caches.Call("open", name))
	if err != nil {
		return nil, fmt.Errorf("error opening cache %s: %w", name, err)
	}
	return cacheBucket{cache: v}, nil
}

func (s cacheStorage) Keys(_ context.Context) ([]string, error) {
	v, err := await(s.caches.Call("keys"))
	if err != nil {
		return nil, err
	}
	keys := make([]string, v.Length())
	for i := range keys {
		keys[i] = v.Index(i).String()
	}
	return keys, nil
}

func (s cacheStorage) Delete(_ context.Context, name string) (bool, error) {
	v, err := await(s.caches.Call("delete", name))
	if err != nil {
		return false, err
	}
	return v.Truthy(), nil
}

type cacheBucket struct {
	cache js.Value
}

func (b cacheBucket) Match(_ context.Context, url string) (*offline.Response, bool, error) {
	v, err := await(b.cache.Call("match", url))
	if err != nil {
		return nil, false, err
	}
	if v.IsUndefined() || v.IsNull() {
		return nil, false, nil
	}
	resp, err := responseFromJS(v)
	if err != nil {
		return nil, false, err
	}
	return resp, true, nil
}

func (b cacheBucket) Put(_ context.Context, url string, resp *offline.Response) error {
	v, err := responseToJS(resp)
	if err != nil {
		return err
	}
	_, err = await(b.cache.Call("put", url, v))
	return err
}

var (
	_ offline.Storage = cacheStorage{}
	_ offline.Bucket  = cacheBucket{}
)
