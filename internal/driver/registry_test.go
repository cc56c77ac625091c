package driver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRoundTrip(t *testing.T) {
	r := NewRegistry()
	r.RegisterMeasurer("therm", func(ctx context.Context) (int, error) { return 42, nil })
	r.RegisterEffector("relay", func(ctx context.Context, value int) error { return nil })

	assert.True(t, r.Known("therm"))
	assert.True(t, r.Known("relay"))
	assert.False(t, r.Known("missing"))

	m, ok := r.Measurer("therm")
	require.True(t, ok)
	val, err := m(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, val)

	keys := r.KnownKeys()
	assert.Len(t, keys, 2)
}
