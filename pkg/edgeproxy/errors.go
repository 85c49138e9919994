package edgeproxy

import (
	"context"
	"errors"
	"net"
	"net/http"
)

var (
	// ErrMissingCredential is returned when no upstream key is configured.
	ErrMissingCredential = errors.New("ANTHROPIC_API_KEY is not configured")
	// ErrMissingURL is returned when a fetch has no target.
	ErrMissingURL = errors.New("missing url parameter")
	// ErrTimeout matches any UpstreamError caused by an expired deadline.
	ErrTimeout = errors.New("upstream timeout")
)

// UpstreamError wraps a failure of an outbound call. Its message is the
// underlying error's message so callers can surface it verbatim.
type UpstreamError struct {
	Op      string
	Err     error
	timeout bool
}

func (e *UpstreamError) Error() string { return e.Err.Error() }

func (e *UpstreamError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrTimeout) classify deadline failures.
func (e *UpstreamError) Is(target error) bool {
	return target == ErrTimeout && e.timeout
}

// Timeout reports whether the call ran past its deadline.
func (e *UpstreamError) Timeout() bool { return e.timeout }

func upstreamError(ctx context.Context, op string, err error) error {
	return &UpstreamError{Op: op, Err: err, timeout: isTimeout(ctx, err)}
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if ctx != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}

// StatusCode maps an error kind to the status reported to the caller.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrMissingCredential):
		return http.StatusInternalServerError
	case errors.Is(err, ErrMissingURL):
		return http.StatusBadRequest
	case errors.Is(err, ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}
