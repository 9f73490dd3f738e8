// Package netx holds HTTP helpers for the /cs transport: bounded response
// reads and classification of transport failures into transient and fatal.
package netx

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"syscall"
)

// MaxResponseSize bounds a single API response body read (64 MB). Account
// and session calls return a few kilobytes; the bound only guards against a
// misbehaving server.
const MaxResponseSize int64 = 64 << 20

// Condition classifies the outcome of one HTTP exchange.
type Condition int

const (
	// OK means a complete response body was received.
	OK Condition = iota
	// Busy means the server answered but asked us to come back later.
	Busy
	// NoResponse means the request went out but nothing usable came back.
	NoResponse
	// Fatal covers failures that retrying the same request cannot fix.
	Fatal
)

func (c Condition) String() string {
	switch c {
	case OK:
		return "ok"
	case Busy:
		return "busy"
	case NoResponse:
		return "no response"
	default:
		return "fatal"
	}
}

// Transient reports whether the same request may be re-issued.
func (c Condition) Transient() bool {
	return c == Busy || c == NoResponse
}

// ReadResponse reads a response body up to MaxResponseSize bytes.
func ReadResponse(body io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(body, MaxResponseSize))
}

// ClassifyStatus maps an HTTP status code. 5xx means the server is busy.
func ClassifyStatus(code int) Condition {
	switch {
	case code >= 200 && code < 300:
		return OK
	case code >= 500:
		return Busy
	default:
		return Fatal
	}
}

// ClassifyError maps an error returned by http.Client.Do or by reading the
// body. Timeouts and connections dropped mid-exchange mean no response;
// DNS failures, refused connections and TLS errors are fatal. A canceled
// parent context is always fatal.
func ClassifyError(ctx context.Context, err error) Condition {
	if err == nil {
		return OK
	}
	if ctx.Err() != nil {
		return Fatal
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) || errors.Is(err, context.DeadlineExceeded) {
		return NoResponse
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return Fatal
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NoResponse
	}
	if errors.Is(err, http.ErrHandlerTimeout) {
		return NoResponse
	}
	return Fatal
}
