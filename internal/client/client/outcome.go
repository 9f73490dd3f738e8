package client

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// OutcomeKind tags an Outcome.
type OutcomeKind int

const (
	OutcomeMalformed OutcomeKind = iota
	OutcomeError
	OutcomeBatch
)

// Outcome is a decoded response body. Code is set for OutcomeError, Results
// for OutcomeBatch.
type Outcome struct {
	Kind    OutcomeKind
	Code    int
	Results []json.RawMessage
}

// decodeOutcome classifies a response body: a single negative integer is a
// top-level error, an array is a result batch, anything else is malformed.
func decodeOutcome(body []byte) Outcome {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return Outcome{Kind: OutcomeMalformed}
	}
	if body[0] == '[' {
		var results []json.RawMessage
		if err := json.Unmarshal(body, &results); err != nil {
			return Outcome{Kind: OutcomeMalformed}
		}
		if results == nil {
			results = []json.RawMessage{}
		}
		return Outcome{Kind: OutcomeBatch, Results: results}
	}
	if code, ok := negativeInt(body); ok {
		return Outcome{Kind: OutcomeError, Code: code}
	}
	return Outcome{Kind: OutcomeMalformed}
}

// ItemError reports whether a batch element is a per-item error code.
func ItemError(raw json.RawMessage) (int, bool) {
	return negativeInt(bytes.TrimSpace(raw))
}

func negativeInt(b []byte) (int, bool) {
	if len(b) < 2 || b[0] != '-' {
		return 0, false
	}
	n, err := strconv.Atoi(string(b))
	if err != nil || n >= 0 {
		return 0, false
	}
	return n, true
}
