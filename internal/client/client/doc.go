// Package client is the RPC transport of the /cs account API.
//
// # Overview
//
// The package provides:
//  1. The Client contract the auth workflows depend on: batched and single
//     calls plus the session id setter.
//  2. HTTPClient, the concrete HTTPS implementation. Each logical call gets
//     the next call id from the client's Session; the id and URL are reused
//     verbatim by every retry of that call.
//  3. Session, the per-client mutable state (sid, sid parameter name,
//     call counter). Clients never share a Session.
//
// # Responses
//
// A response body is classified exactly once into an Outcome: a top-level
// negative error code, a result batch, or malformed. Result batches are
// returned verbatim; CallSingle unwraps per-item error codes.
//
// # Retries
//
// HTTP 5xx and lost responses are retried with exponential backoff
// (NewBackoff). When the schedule runs out the call fails with
// apierr.RetryExhausted. Other transport failures fail at once with
// apierr.Transport. Cancel ctx to abandon a call.
package client
