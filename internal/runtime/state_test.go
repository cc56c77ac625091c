package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStateScaffolds(t *testing.T) {
	s := NewState([]string{"Heat"}, []string{"Therm"}, []string{"Heater"}, 1000)

	require.Contains(t, s.Variables, "Heat")
	require.Contains(t, s.Measurers, "Therm")
	require.Contains(t, s.Effectors, "Heater")
	assert.Nil(t, s.Variables["Heat"].Value)
	assert.Equal(t, int64(1000), s.StartTimeMS)
	assert.Equal(t, int64(1000), s.StepTimeMS)
}
