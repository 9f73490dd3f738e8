// Package apierr maps the numeric error codes returned by the /cs API to
// symbolic kinds and human-readable messages, and defines the typed error
// carried through the client engine.
//
// The table is immutable and process-wide. Lookups are total: an unmapped
// code yields EUNKNOWN and an unmapped kind yields "Unknown error".
//
// Callers match errors by kind:
//
//	if errors.Is(err, apierr.ESID) {
//	    // session expired, log in again
//	}
package apierr

import (
	"errors"
	"fmt"
)

// Kind is a symbolic error name.
type Kind string

// Protocol kinds, as returned by the remote service.
const (
	EINTERNAL           Kind = "EINTERNAL"
	EARGS               Kind = "EARGS"
	EAGAIN              Kind = "EAGAIN"
	ERATELIMIT          Kind = "ERATELIMIT"
	EFAILED             Kind = "EFAILED"
	ETOOMANY            Kind = "ETOOMANY"
	ERANGE              Kind = "ERANGE"
	EEXPIRED            Kind = "EEXPIRED"
	ENOENT              Kind = "ENOENT"
	ECIRCULAR           Kind = "ECIRCULAR"
	EACCESS             Kind = "EACCESS"
	EEXIST              Kind = "EEXIST"
	EINCOMPLETE         Kind = "EINCOMPLETE"
	EKEY                Kind = "EKEY"
	ESID                Kind = "ESID"
	EBLOCKED            Kind = "EBLOCKED"
	EOVERQUOTA          Kind = "EOVERQUOTA"
	ETEMPUNAVAIL        Kind = "ETEMPUNAVAIL"
	ETOOMANYCONNECTIONS Kind = "ETOOMANYCONNECTIONS"
	EWRITE              Kind = "EWRITE"
	EREAD               Kind = "EREAD"
	EAPPKEY             Kind = "EAPPKEY"

	// EUNKNOWN is returned for codes outside the table.
	EUNKNOWN Kind = "EUNKNOWN"
)

// Client-side kinds. These never arrive on the wire.
const (
	InvalidTsidLen    Kind = "invalid_tsid_len"
	InvalidTsid       Kind = "invalid_tsid"
	SidDecryptFail    Kind = "sid_decrypt_fail"
	MalformedResponse Kind = "malformed_response"
	Transport         Kind = "transport"
	RetryExhausted    Kind = "retry_exhausted"
	Decode            Kind = "decode"
)

const unknownMessage = "Unknown error"

type entry struct {
	kind    Kind
	code    int
	message string
}

var table = [...]entry{
	{EINTERNAL, -1, "Internal error"},
	{EARGS, -2, "Invalid argument"},
	{EAGAIN, -3, "Request failed, retrying"},
	{ERATELIMIT, -4, "Rate limit exceeded"},
	{EFAILED, -5, "Failed permanently"},
	{ETOOMANY, -6, "Too many concurrent connections or transfers"},
	{ERANGE, -7, "Out of range"},
	{EEXPIRED, -8, "Expired"},
	{ENOENT, -9, "Not found"},
	{ECIRCULAR, -10, "Circular linkage detected"},
	{EACCESS, -11, "Access denied"},
	{EEXIST, -12, "Already exists"},
	{EINCOMPLETE, -13, "Incomplete"},
	{EKEY, -14, "Invalid key/Decryption error"},
	{ESID, -15, "Bad session ID"},
	{EBLOCKED, -16, "Blocked"},
	{EOVERQUOTA, -17, "Over quota"},
	{ETEMPUNAVAIL, -18, "Temporarily not available"},
	{ETOOMANYCONNECTIONS, -19, "Connection overflow"},
	{EWRITE, -20, "Write error"},
	{EREAD, -21, "Read error"},
	{EAPPKEY, -22, "Invalid application key"},
}

var (
	byCode = make(map[int]Kind, len(table))
	byKind = make(map[Kind]entry, len(table))
)

func init() {
	for _, e := range table {
		byCode[e.code] = e.kind
		byKind[e.kind] = e
	}
}

// Kinds returns the protocol kinds in code order (-1 first).
func Kinds() []Kind {
	out := make([]Kind, 0, len(table))
	for _, e := range table {
		out = append(out, e.kind)
	}
	return out
}

// NameFromCode returns the kind for a numeric code, or EUNKNOWN.
func NameFromCode(code int) Kind {
	if k, ok := byCode[code]; ok {
		return k
	}
	return EUNKNOWN
}

// MessageFromName returns the human-readable message for a protocol kind,
// or "Unknown error".
func MessageFromName(k Kind) string {
	if e, ok := byKind[k]; ok {
		return e.message
	}
	return unknownMessage
}

// CodeOf returns the numeric code of a protocol kind.
func CodeOf(k Kind) (int, bool) {
	e, ok := byKind[k]
	return e.code, ok
}

// Error is the error type surfaced by the transport and the auth workflows.
// Code is the raw server code for protocol errors and zero otherwise.
type Error struct {
	Kind    Kind
	Code    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the same kind, either as a Kind value or as
// another *Error.
func (e *Error) Is(target error) bool {
	switch t := target.(type) {
	case Kind:
		return e.Kind == t
	case *Error:
		return e.Kind == t.Kind
	}
	return false
}

// Error makes Kind usable as an errors.Is target.
func (k Kind) Error() string { return string(k) }

// FromCode builds the error for a server-returned negative code.
func FromCode(code int) *Error {
	k := NameFromCode(code)
	return &Error{Kind: k, Code: code, Message: MessageFromName(k)}
}

// New builds a client-side error.
func New(k Kind, msg string) *Error {
	return &Error{Kind: k, Message: msg}
}

// Wrap builds a client-side error around a cause.
func Wrap(k Kind, msg string, err error) *Error {
	return &Error{Kind: k, Message: msg, Err: err}
}

// KindOf extracts the kind from err, or "" when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
