package edgeproxy

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Browser identity sent with every fetch so naive bot filters let it through.
const (
	BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	BrowserAccept    = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8"
	BrowserLanguage  = "en-US,en;q=0.9"
)

// FetchURL issues a GET to target with the browser identity and returns the
// reply with its headers already filtered for relay.
func (p *Proxy) FetchURL(ctx context.Context, target string) (*Response, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, ErrMissingURL
	}

	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, upstreamError(ctx, "fetch", fmt.Errorf("error parsing target URL: %w", err))
	}
	req.Header.Set("User-Agent", BrowserUserAgent)
	req.Header.Set("Accept", BrowserAccept)
	req.Header.Set("Accept-Language", BrowserLanguage)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, upstreamError(ctx, "fetch", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, upstreamError(ctx, "fetch", fmt.Errorf("error reading response body: %w", err))
	}

	return &Response{Status: resp.StatusCode, Header: RelayHeader(resp.Header), Body: body}, nil
}
