package apierr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameFromCode_RoundTrip(t *testing.T) {
	kinds := Kinds()
	require.Len(t, kinds, 22)

	for i, k := range kinds {
		code, ok := CodeOf(k)
		require.True(t, ok, "kind %s has no code", k)
		assert.Equal(t, -(i + 1), code)
		assert.Equal(t, k, NameFromCode(code))
		assert.NotEqual(t, unknownMessage, MessageFromName(k))
	}
}

func TestNameFromCode_Unknown(t *testing.T) {
	for _, code := range []int{0, 1, -23, -100, 42} {
		assert.Equal(t, EUNKNOWN, NameFromCode(code), "code %d", code)
	}
}

func TestMessageFromName_Unknown(t *testing.T) {
	assert.Equal(t, "Unknown error", MessageFromName(EUNKNOWN))
	assert.Equal(t, "Unknown error", MessageFromName(Kind("nope")))
	assert.Equal(t, "Bad session ID", MessageFromName(ESID))
}

func TestFromCode(t *testing.T) {
	err := FromCode(-4)
	assert.Equal(t, ERATELIMIT, err.Kind)
	assert.Equal(t, -4, err.Code)
	assert.Equal(t, "Rate limit exceeded", err.Message)
	assert.Equal(t, "ERATELIMIT: Rate limit exceeded", err.Error())
}

func TestError_IsAndWrapping(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("login: %w", Wrap(Transport, "post failed", cause))

	assert.True(t, errors.Is(err, Transport))
	assert.True(t, errors.Is(err, &Error{Kind: Transport}))
	assert.False(t, errors.Is(err, ESID))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, Transport, KindOf(err))
	assert.Equal(t, Kind(""), KindOf(cause))
}
