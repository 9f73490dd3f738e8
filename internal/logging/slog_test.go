package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlogLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	log := NewTextLogger(&buf, slog.LevelDebug)
	ctx := context.Background()

	log.Debug(ctx, "dbg", "call_id", 1)
	log.Info(ctx, "inf", "uh", "h4ndl3")
	log.Warn(ctx, "wrn", "attempt", 2)
	log.Error(ctx, "err", "kind", "ESID")

	out := buf.String()
	for _, want := range []string{
		"level=DEBUG", "msg=dbg", "call_id=1",
		"level=INFO", "msg=inf", "uh=h4ndl3",
		"level=WARN", "msg=wrn", "attempt=2",
		"level=ERROR", "msg=err", "kind=ESID",
	} {
		assert.Contains(t, out, want)
	}
}

func TestSlogLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := NewTextLogger(&buf, slog.LevelInfo)

	log.Debug(context.Background(), "hidden")
	log.Info(context.Background(), "shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestSlogLogger_With(t *testing.T) {
	var buf bytes.Buffer
	log := NewTextLogger(&buf, slog.LevelInfo).With("client", "abc")

	log.Info(context.Background(), "hello", "k", "v")

	assert.Contains(t, buf.String(), "client=abc")
	assert.Contains(t, buf.String(), "k=v")
}

func TestNop(t *testing.T) {
	var l Logger = Nop{}
	assert.NotPanics(t, func() {
		l.With("a", 1).Info(context.Background(), "x")
		l.Error(context.TODO(), "y")
	})
}
