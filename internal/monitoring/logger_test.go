package monitoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	called := false
	SetLogger(func(format string, v ...interface{}) {
		called = true
	})
	Logf("test message")
	assert.True(t, called, "custom logger was not called")

	called = false
	SetLogger(nil)
	Logf("test message")
	assert.False(t, called, "no-op logger should not reach the previous logger")
}

func TestLogf_Default(t *testing.T) {
	require.NotNil(t, Logf)
	assert.NotPanics(t, func() { Logf("test message: %s", "value") })
}

func TestCapture(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	lines, restore := Capture()
	Logf("clamped vehicle %d", 3)
	Logf("spawned %d", 1)
	restore()
	Logf("not captured")

	assert.Equal(t, []string{"clamped vehicle 3", "spawned 1"}, *lines)
}
