package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextRoundTrip(t *testing.T) {
	run := &Run{NoColor: true, LogFile: "x.log"}
	ctx := IntoContext(context.Background(), run)

	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Same(t, run, got)
}

func TestFromContextMissing(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	_, ok = FromContext(IntoContext(context.Background(), nil))
	assert.False(t, ok, "a stored nil is treated as missing")
}

func TestFromContextOrDefault(t *testing.T) {
	got := FromContextOrDefault(context.Background())
	assert.Equal(t, NewCliParams(), got)

	run := &Run{MinLogLevel: -1}
	assert.Same(t, run, FromContextOrDefault(IntoContext(context.Background(), run)))
}
