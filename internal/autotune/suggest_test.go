package autotune

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestRejectsInvertedBounds(t *testing.T) {
	_, err := Suggest(nil, Bounds{{10, 0}, {0, 1}, {0, 1}})
	require.Error(t, err)
}

func TestSuggestWithNoHistoryReturnsMidpoint(t *testing.T) {
	point, err := Suggest(nil, Bounds{{0, 10}, {0, 4}, {0, 2}})
	require.NoError(t, err)
	assert.Equal(t, [3]int{5, 2, 1}, point)
}

func TestSuggestStaysWithinBounds(t *testing.T) {
	bounds := Bounds{{0, 20}, {0, 10}, {0, 5}}
	history := []Sample{
		{Consts: [3]int{2, 1, 0}, IntegralAbsError: 40},
		{Consts: [3]int{5, 2, 1}, IntegralAbsError: 12},
		{Consts: [3]int{8, 3, 1}, IntegralAbsError: 30},
		{Consts: [3]int{12, 4, 2}, IntegralAbsError: 55},
	}

	point, err := Suggest(history, bounds)
	require.NoError(t, err)
	for i, v := range point {
		assert.GreaterOrEqual(t, v, bounds[i][0])
		assert.LessOrEqual(t, v, bounds[i][1])
	}
}

func TestBestObservedPicksLowestError(t *testing.T) {
	history := []Sample{
		{Consts: [3]int{2, 1, 0}, IntegralAbsError: 40},
		{Consts: [3]int{5, 2, 1}, IntegralAbsError: 12},
		{Consts: [3]int{8, 3, 1}, IntegralAbsError: 30},
	}

	best, ok := BestObserved(history)
	require.True(t, ok)
	assert.Equal(t, [3]int{5, 2, 1}, best.Consts)
}

func TestBestObservedEmptyHistory(t *testing.T) {
	_, ok := BestObserved(nil)
	assert.False(t, ok)
}

func TestClampRound(t *testing.T) {
	assert.Equal(t, 10, clampRound(15, [2]int{0, 10}))
	assert.Equal(t, 0, clampRound(-3, [2]int{0, 10}))
	assert.Equal(t, 4, clampRound(3.6, [2]int{0, 10}))
}
