package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrevalidateAcceptsObject(t *testing.T) {
	err := Prevalidate(map[string]any{"name": "Heater"})
	require.NoError(t, err)
}

func TestPrevalidateRejectsArray(t *testing.T) {
	err := Prevalidate([]any{"Heater"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a config object")
}

func TestPrevalidateRejectsScalar(t *testing.T) {
	err := Prevalidate("Heater")
	require.Error(t, err)
}

func TestPrevalidateRejectsNull(t *testing.T) {
	err := Prevalidate(nil)
	require.Error(t, err)
}
