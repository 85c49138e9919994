package offline

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const origin = "https://app.example"

type fakeNetwork struct {
	mu        sync.Mutex
	calls     []string
	responses map[string]*Response
	err       error
}

func (n *fakeNetwork) Fetch(_ context.Context, req Request) (*Response, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, req.URL)
	if n.err != nil {
		return nil, n.err
	}
	if resp, ok := n.responses[req.URL]; ok {
		return resp.Clone(), nil
	}
	return &Response{Status: http.StatusNotFound, Body: []byte("not found")}, nil
}

func (n *fakeNetwork) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

type failingStorage struct{ *MemoryStorage }

func (failingStorage) Open(context.Context, string) (Bucket, error) {
	return nil, errors.New("quota exceeded")
}

func newWorker(t *testing.T, storage Storage, network Fetcher) (*Worker, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	w, err := New(Options{
		Origin:  origin,
		Storage: storage,
		Network: network,
		Logger:  log.New(&buf, "", 0),
	})
	require.NoError(t, err)
	return w, &buf
}

func ok(body string) *Response {
	return &Response{Status: http.StatusOK, Header: http.Header{"Content-Type": {"text/html"}}, Body: []byte(body)}
}

func bucketLen(t *testing.T, s *MemoryStorage, name string) int {
	t.Helper()
	b, err := s.Open(context.Background(), name)
	require.NoError(t, err)
	return b.(*MemoryBucket).Len()
}

func TestNewValidates(t *testing.T) {
	net := &fakeNetwork{}
	_, err := New(Options{Origin: origin, Network: net})
	assert.Error(t, err)
	_, err = New(Options{Origin: origin, Storage: NewMemoryStorage()})
	assert.Error(t, err)
	_, err = New(Options{Origin: "/relative", Storage: NewMemoryStorage(), Network: net})
	assert.Error(t, err)

	w, err := New(Options{Origin: origin + "/ignored/path", Storage: NewMemoryStorage(), Network: net})
	require.NoError(t, err)
	assert.Equal(t, DefaultVersion, w.Version())
	assert.Equal(t, origin+"/", w.RootURL())
}

func TestIntercepts(t *testing.T) {
	w, _ := newWorker(t, NewMemoryStorage(), &fakeNetwork{})
	cases := []struct {
		name string
		req  Request
		want bool
	}{
		{"same origin asset", Request{Method: "GET", URL: origin + "/app.js"}, true},
		{"root", Request{Method: "GET", URL: origin + "/"}, true},
		{"explicit default port", Request{Method: "GET", URL: "https://app.example:443/app.css"}, true},
		{"lowercase method", Request{Method: "get", URL: origin + "/a"}, true},
		{"post", Request{Method: "POST", URL: origin + "/app.js"}, false},
		{"cross origin", Request{Method: "GET", URL: "https://cdn.example/lib.js"}, false},
		{"other scheme", Request{Method: "GET", URL: "http://app.example/app.js"}, false},
		{"other port", Request{Method: "GET", URL: "https://app.example:8443/app.js"}, false},
		{"ai proxy", Request{Method: "GET", URL: origin + "/api/claude"}, false},
		{"fetch proxy", Request{Method: "GET", URL: origin + "/proxy?url=https://x.example"}, false},
		{"fetch proxy subpath", Request{Method: "GET", URL: origin + "/proxy/extra"}, false},
		{"proxy lookalike", Request{Method: "GET", URL: origin + "/proxyfile.js"}, true},
		{"garbage", Request{Method: "GET", URL: "://"}, false},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, w.Intercepts(tc.req))
		})
	}
}

func TestRespondCacheMissThenHit(t *testing.T) {
	storage := NewMemoryStorage()
	net := &fakeNetwork{responses: map[string]*Response{origin + "/app.js": ok("console.log(1)")}}
	w, _ := newWorker(t, storage, net)
	req := Request{Method: "GET", URL: origin + "/app.js"}

	first, err := w.Respond(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "console.log(1)", string(first.Body))
	assert.Equal(t, 1, net.count())
	assert.Equal(t, 1, bucketLen(t, storage, DefaultVersion))

	second, err := w.Respond(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "console.log(1)", string(second.Body))
	assert.Equal(t, "text/html", second.Header.Get("Content-Type"))
	assert.Equal(t, 1, net.count(), "cache hit must not touch the network")

	withFragment, err := w.Respond(context.Background(), Request{Method: "GET", URL: origin + "/app.js#top"})
	require.NoError(t, err)
	assert.Equal(t, "console.log(1)", string(withFragment.Body))
	assert.Equal(t, 1, net.count())
}

func TestRespondDoesNotCacheFailures(t *testing.T) {
	storage := NewMemoryStorage()
	net := &fakeNetwork{responses: map[string]*Response{}}
	w, _ := newWorker(t, storage, net)
	req := Request{Method: "GET", URL: origin + "/missing.png"}

	for i := 0; i < 2; i++ {
		resp, err := w.Respond(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.Status)
	}
	assert.Equal(t, 2, net.count())
	assert.Zero(t, bucketLen(t, storage, DefaultVersion))
}

func TestRespondDoesNotCacheCrossOriginRedirect(t *testing.T) {
	storage := NewMemoryStorage()
	redirected := ok("elsewhere")
	redirected.URL = "https://cdn.example/app.js"
	net := &fakeNetwork{responses: map[string]*Response{origin + "/app.js": redirected}}
	w, _ := newWorker(t, storage, net)

	resp, err := w.Respond(context.Background(), Request{Method: "GET", URL: origin + "/app.js"})
	require.NoError(t, err)
	assert.Equal(t, "elsewhere", string(resp.Body))
	assert.Zero(t, bucketLen(t, storage, DefaultVersion))
}

func TestRespondOfflineFallsBackToRoot(t *testing.T) {
	storage := NewMemoryStorage()
	net := &fakeNetwork{responses: map[string]*Response{origin + "/": ok("<html>shell</html>")}}
	w, logs := newWorker(t, storage, net)
	w.Install(context.Background())

	net.err = errors.New("offline")
	resp, err := w.Respond(context.Background(), Request{Method: "GET", URL: origin + "/page/2"})
	require.NoError(t, err)
	assert.Equal(t, "<html>shell</html>", string(resp.Body))
	assert.Contains(t, logs.String(), "serving cached root")
}

func TestRespondOfflineWithoutRoot(t *testing.T) {
	net := &fakeNetwork{err: errors.New("offline")}
	w, _ := newWorker(t, NewMemoryStorage(), net)

	_, err := w.Respond(context.Background(), Request{Method: "GET", URL: origin + "/"})
	assert.EqualError(t, err, "offline")
}

func TestInstallToleratesFailure(t *testing.T) {
	storage := NewMemoryStorage()
	w, logs := newWorker(t, storage, &fakeNetwork{err: errors.New("dns failure")})

	w.Install(context.Background())
	assert.Contains(t, logs.String(), "WARN: install")
	assert.Zero(t, bucketLen(t, storage, DefaultVersion))

	w, logs = newWorker(t, storage, &fakeNetwork{responses: map[string]*Response{}})
	w.Install(context.Background())
	assert.Contains(t, logs.String(), "answered 404")
	assert.Zero(t, bucketLen(t, storage, DefaultVersion))
}

func TestInstallSeedsOnlyRoot(t *testing.T) {
	storage := NewMemoryStorage()
	net := &fakeNetwork{responses: map[string]*Response{origin + "/": ok("shell")}}
	w, _ := newWorker(t, storage, net)

	w.Install(context.Background())
	assert.Equal(t, []string{origin + "/"}, net.calls)
	assert.Equal(t, 1, bucketLen(t, storage, DefaultVersion))
}

func TestActivateDeletesStaleBuckets(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	for _, name := range []string{"edgeproxy-v0", DefaultVersion, "other"} {
		_, err := storage.Open(ctx, name)
		require.NoError(t, err)
	}
	w, logs := newWorker(t, storage, &fakeNetwork{})

	require.NoError(t, w.Activate(ctx))
	keys, err := storage.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultVersion}, keys)
	assert.Contains(t, logs.String(), "deleted stale bucket edgeproxy-v0")
}

func TestCacheFailuresAreNonFatal(t *testing.T) {
	net := &fakeNetwork{responses: map[string]*Response{origin + "/a": ok("a")}}
	w, logs := newWorker(t, failingStorage{NewMemoryStorage()}, net)

	resp, err := w.Respond(context.Background(), Request{Method: "GET", URL: origin + "/a"})
	require.NoError(t, err)
	assert.Equal(t, "a", string(resp.Body))
	assert.Contains(t, logs.String(), "quota exceeded")
}

func TestMemoryBucketSnapshots(t *testing.T) {
	ctx := context.Background()
	b, err := NewMemoryStorage().Open(ctx, "v")
	require.NoError(t, err)

	resp := ok("original")
	require.NoError(t, b.Put(ctx, "k", resp))
	resp.Body[0] = 'X'

	got, found, err := b.Match(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "original", string(got.Body))

	_, found, err = b.Match(ctx, "absent")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRespondCachesOnlyGet(t *testing.T) {
	storage := NewMemoryStorage()
	net := &fakeNetwork{responses: map[string]*Response{origin + "/form": ok("done")}}
	w, _ := newWorker(t, storage, net)

	_, err := w.Respond(context.Background(), Request{Method: "POST", URL: origin + "/form"})
	require.NoError(t, err)
	assert.Zero(t, bucketLen(t, storage, DefaultVersion))
}
