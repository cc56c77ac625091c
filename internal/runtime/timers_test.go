package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimerWheelOrdersByTimeThenKind(t *testing.T) {
	w := NewTimerWheel()
	w.Schedule(Event{Time: 100, Kind: EventEnd})
	w.Schedule(Event{Time: 100, Kind: EventEffector, Key: "Heater"})
	w.Schedule(Event{Time: 100, Kind: EventMeasurer, Key: "Therm"})
	w.Schedule(Event{Time: 50, Kind: EventMeasurer, Key: "Other"})

	tick, ok := w.Peek()
	require.True(t, ok)
	assert.Equal(t, int64(50), tick)

	first := w.PopTick()
	require.Len(t, first, 1)
	assert.Equal(t, "Other", first[0].Key)

	second := w.PopTick()
	require.Len(t, second, 3)
	assert.Equal(t, EventMeasurer, second[0].Kind)
	assert.Equal(t, EventEffector, second[1].Kind)
	assert.Equal(t, EventEnd, second[2].Kind)
}

func TestTimerWheelMeasurersOrderedByKey(t *testing.T) {
	w := NewTimerWheel()
	w.Schedule(Event{Time: 10, Kind: EventMeasurer, Key: "Zeta"})
	w.Schedule(Event{Time: 10, Kind: EventMeasurer, Key: "Alpha"})

	tick := w.PopTick()
	require.Len(t, tick, 2)
	assert.Equal(t, "Alpha", tick[0].Key)
	assert.Equal(t, "Zeta", tick[1].Key)
}

func TestHasScheduled(t *testing.T) {
	w := NewTimerWheel()
	w.Schedule(Event{Time: 10, Kind: EventMeasurer, Key: "Therm"})
	assert.True(t, w.HasScheduled(EventMeasurer, "Therm"))
	assert.False(t, w.HasScheduled(EventEffector, "Therm"))
}

func TestRetainDropsFilteredEvents(t *testing.T) {
	w := NewTimerWheel()
	w.Schedule(Event{Time: 10, Kind: EventMeasurer, Key: "Keep"})
	w.Schedule(Event{Time: 10, Kind: EventMeasurer, Key: "Drop"})

	w.Retain(func(e Event) bool { return e.Key == "Keep" })
	assert.Equal(t, 1, w.Len())
	assert.True(t, w.HasScheduled(EventMeasurer, "Keep"))
}

func TestClearEmptiesWheel(t *testing.T) {
	w := NewTimerWheel()
	w.Schedule(Event{Time: 10, Kind: EventEnd})
	w.Clear()
	assert.Equal(t, 0, w.Len())
	_, ok := w.Peek()
	assert.False(t, ok)
}
