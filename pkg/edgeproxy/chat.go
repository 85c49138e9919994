package edgeproxy

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

// ForwardChat posts body verbatim to the AI upstream with the credential
// attached. The upstream status and body come back untouched; only the
// content type is normalized.
func (p *Proxy) ForwardChat(ctx context.Context, body []byte) (*Response, error) {
	if !p.HasCredential() {
		return nil, ErrMissingCredential
	}

	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, upstreamError(ctx, "chat", fmt.Errorf("error building upstream request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(VersionHeader, p.apiVersion)
	req.Header.Set(CredentialHeader, p.apiKey)

	resp, err := p.chatClient.Do(req)
	if err != nil {
		return nil, upstreamError(ctx, "chat", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, upstreamError(ctx, "chat", fmt.Errorf("error reading upstream response: %w", err))
	}

	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	return &Response{Status: resp.StatusCode, Header: h, Body: respBody}, nil
}
