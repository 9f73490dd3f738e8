package client

import (
	"context"
	"time"

	"github.com/dmitrijs2005/megasession/internal/logging"
)

// Observer receives wire events. It has no influence on the call.
type Observer interface {
	OnRequest(ctx context.Context, callID int64, payload []byte)
	OnResponse(ctx context.Context, callID int64, payload []byte)
	OnRetry(ctx context.Context, callID int64, attempt int, delay time.Duration, cause error)
}

// LogObserver writes wire events to a Logger. Payloads go to Debug, retries
// to Warn.
type LogObserver struct {
	log logging.Logger
}

func NewLogObserver(log logging.Logger) *LogObserver {
	return &LogObserver{log: log}
}

func (o *LogObserver) OnRequest(ctx context.Context, callID int64, payload []byte) {
	o.log.Debug(ctx, "api request", "call_id", callID, "payload", string(payload))
}

func (o *LogObserver) OnResponse(ctx context.Context, callID int64, payload []byte) {
	o.log.Debug(ctx, "api response", "call_id", callID, "payload", string(payload))
}

func (o *LogObserver) OnRetry(ctx context.Context, callID int64, attempt int, delay time.Duration, cause error) {
	o.log.Warn(ctx, "api call retry scheduled", "call_id", callID, "attempt", attempt, "delay", delay, "cause", cause)
}
