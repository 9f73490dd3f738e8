package client

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// TraceEvent is one line of a wire transcript.
type TraceEvent struct {
	Time    time.Time       `json:"time"`
	CallID  int64           `json:"call_id"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Attempt int             `json:"attempt,omitempty"`
	Delay   string          `json:"delay,omitempty"`
	Cause   string          `json:"cause,omitempty"`
}

// TraceObserver writes every wire event to w as a JSON line. Transcripts
// contain wrapped keys and session ids and must be stored accordingly.
type TraceObserver struct {
	mu  sync.Mutex
	enc *json.Encoder
	now func() time.Time
}

func NewTraceObserver(w io.Writer) *TraceObserver {
	return &TraceObserver{enc: json.NewEncoder(w), now: time.Now}
}

func (o *TraceObserver) write(ev TraceEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	ev.Time = o.now().UTC()
	_ = o.enc.Encode(ev)
}

func (o *TraceObserver) OnRequest(_ context.Context, callID int64, payload []byte) {
	o.write(TraceEvent{CallID: callID, Event: "request", Payload: rawOrString(payload)})
}

func (o *TraceObserver) OnResponse(_ context.Context, callID int64, payload []byte) {
	o.write(TraceEvent{CallID: callID, Event: "response", Payload: rawOrString(payload)})
}

func (o *TraceObserver) OnRetry(_ context.Context, callID int64, attempt int, delay time.Duration, cause error) {
	ev := TraceEvent{CallID: callID, Event: "retry", Attempt: attempt, Delay: delay.String()}
	if cause != nil {
		ev.Cause = cause.Error()
	}
	o.write(ev)
}

// rawOrString embeds valid JSON as is and quotes anything else.
func rawOrString(b []byte) json.RawMessage {
	if json.Valid(b) {
		return json.RawMessage(b)
	}
	q, _ := json.Marshal(string(b))
	return q
}

// Observers fans every event out to each of obs in order.
func Observers(obs ...Observer) Observer {
	return multiObserver(obs)
}

type multiObserver []Observer

func (m multiObserver) OnRequest(ctx context.Context, callID int64, payload []byte) {
	for _, o := range m {
		o.OnRequest(ctx, callID, payload)
	}
}

func (m multiObserver) OnResponse(ctx context.Context, callID int64, payload []byte) {
	for _, o := range m {
		o.OnResponse(ctx, callID, payload)
	}
}

func (m multiObserver) OnRetry(ctx context.Context, callID int64, attempt int, delay time.Duration, cause error) {
	for _, o := range m {
		o.OnRetry(ctx, callID, attempt, delay, cause)
	}
}
