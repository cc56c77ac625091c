package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckRangePair(t *testing.T) {
	assert.Equal(t, "", checkRangePair([]any{float64(0), float64(100)}))
	assert.NotEqual(t, "", checkRangePair([]any{float64(100), float64(0)}))
	assert.NotEqual(t, "", checkRangePair([]any{float64(1)}))
	assert.NotEqual(t, "", checkRangePair("not a list"))
}

func TestCheckPIDConsts(t *testing.T) {
	assert.Equal(t, "", checkPIDConsts([]any{float64(1), float64(0), float64(0)}))
	assert.NotEqual(t, "", checkPIDConsts([]any{float64(1), float64(0)}))
	assert.NotEqual(t, "", checkPIDConsts([]any{float64(1), 2.5, float64(0)}))
}

func TestCheckLookupTable(t *testing.T) {
	assert.Equal(t, "", checkLookupTable([]any{
		[]any{float64(0), float64(10)},
		[]any{float64(100), float64(90)},
	}))
	assert.NotEqual(t, "", checkLookupTable([]any{}))
	assert.NotEqual(t, "", checkLookupTable([]any{[]any{float64(1)}}))
}

func TestCheckStages(t *testing.T) {
	assert.Equal(t, "", checkStages(map[string]any{
		"0": map[string]any{}, "1": map[string]any{},
	}))
	assert.NotEqual(t, "", checkStages(map[string]any{
		"0": map[string]any{}, "2": map[string]any{},
	}))
	assert.NotEqual(t, "", checkStages(map[string]any{}))
}
