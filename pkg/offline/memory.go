package offline

import (
	"context"
	"sort"
	"sync"
)

// MemoryStorage is an in-process Storage. Writes are last-writer-wins.
type MemoryStorage struct {
	mu      sync.RWMutex
	buckets map[string]*MemoryBucket
}

// NewMemoryStorage constructs an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{buckets: make(map[string]*MemoryBucket)}
}

// Open returns the named bucket, creating it on first use.
func (s *MemoryStorage) Open(_ context.Context, name string) (Bucket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[name]
	if !ok {
		b = &MemoryBucket{entries: make(map[string]*Response)}
		s.buckets[name] = b
	}
	return b, nil
}

// Keys lists bucket names in sorted order.
func (s *MemoryStorage) Keys(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.buckets))
	for k := range s.buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Delete drops a bucket and reports whether it existed.
func (s *MemoryStorage) Delete(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.buckets[name]
	delete(s.buckets, name)
	return ok, nil
}

// MemoryBucket is the Bucket handed out by MemoryStorage.
type MemoryBucket struct {
	mu      sync.RWMutex
	entries map[string]*Response
}

func (b *MemoryBucket) Match(_ context.Context, url string) (*Response, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	resp, ok := b.entries[url]
	if !ok {
		return nil, false, nil
	}
	return resp.Clone(), true, nil
}

func (b *MemoryBucket) Put(_ context.Context, url string, resp *Response) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries[url] = resp.Clone()
	return nil
}

// Len reports the number of cached entries.
func (b *MemoryBucket) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

var (
	_ Storage = (*MemoryStorage)(nil)
	_ Bucket  = (*MemoryBucket)(nil)
)
