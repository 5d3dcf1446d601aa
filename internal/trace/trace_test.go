package trace

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWithConfig_ExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, InitWithConfig(Config{Enabled: true, Output: &buf, Sync: true}))
	t.Cleanup(func() { _ = Shutdown(context.Background()) })

	ctx, span := StartSpan(context.Background(), "collect.key")
	traceID, spanID, ok := GetTraceFields(ctx)
	require.True(t, ok)
	assert.Len(t, traceID, 32)
	assert.Len(t, spanID, 16)
	span.End()

	out := buf.String()
	assert.Contains(t, out, "collect.key")
	assert.Contains(t, out, serviceName)
}

func TestDisabled(t *testing.T) {
	require.NoError(t, InitWithConfig(Config{Enabled: false}))
	assert.False(t, Enabled())

	ctx, span := StartSpan(context.Background(), "ignored")
	span.End()
	_, _, ok := GetTraceFields(ctx)
	assert.False(t, ok)
	assert.NoError(t, Shutdown(context.Background()))
}

func TestShutdownDisables(t *testing.T) {
	require.NoError(t, InitWithConfig(Config{Enabled: true, Output: &bytes.Buffer{}}))
	require.True(t, Enabled())
	require.NoError(t, Shutdown(context.Background()))
	assert.False(t, Enabled())
}

func TestVersion(t *testing.T) {
	old := version
	t.Cleanup(func() { version = old })

	version = "v1.2.3"
	assert.Equal(t, "v1.2.3", Version())

	version = ""
	assert.NotEmpty(t, Version())
}
