package client

import (
	"context"
	"encoding/json"
)

// Request is one request object of a /cs batch. Every request carries an
// "a" action code plus action-specific fields.
type Request map[string]any

// Client is the transport contract the auth workflows are written against.
type Client interface {
	// Call sends reqs as one batch and returns the raw results in request
	// order. Per-item numeric errors are left in place.
	Call(ctx context.Context, reqs []Request) ([]json.RawMessage, error)
	// CallSingle sends one request and turns a numeric per-item error into
	// an *apierr.Error.
	CallSingle(ctx context.Context, req Request) (json.RawMessage, error)
	// SetSessionID installs a verified session id. An empty param selects
	// the default query parameter name.
	SetSessionID(sid, param string)
	// SessionID returns the current session id, empty before login.
	SessionID() string
}
