package edgeproxy

import "net/http"

// StrippedHeaders are removed so the fetched page can be embedded or
// rendered by a page on another origin.
var StrippedHeaders = []string{
	"Content-Security-Policy",
	"X-Frame-Options",
}

// framing headers are re-derived by whatever writes the relayed body.
var framingHeaders = []string{
	"Connection",
	"Content-Length",
	"Keep-Alive",
	"Transfer-Encoding",
}

// RelayHeader returns a copy of h without the stripped security headers and
// without framing headers.
func RelayHeader(h http.Header) http.Header {
	out := h.Clone()
	if out == nil {
		out = make(http.Header)
	}
	for _, k := range StrippedHeaders {
		out.Del(k)
	}
	for _, k := range framingHeaders {
		out.Del(k)
	}
	return out
}
