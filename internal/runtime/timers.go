// Package runtime holds the mutable per-run state: the timer wheel driving
// the scheduler, and the live measurer/variable tables. It exists only for
// the lifetime of one executor run (internal/engine.Run), per the data
// model's "Runtime state is created at run start and lives only for one
// run."
package runtime

import "container/heap"

// EventKind orders events that share a timestamp: measurers fire first,
// then (implicitly, between kinds) variable fusion happens, then effectors,
// then end-of-stage checks — see §5's ordering guarantee.
type EventKind int

const (
	EventMeasurer EventKind = iota
	EventEffector
	EventEnd
)

// Event is one pending timer-wheel entry.
type Event struct {
	Time int64 // absolute ms on the run's monotonic clock
	Kind EventKind
	Key  string // measurer or effector key; unused for EventEnd
}

// TimerWheel is a min-heap of Events ordered by (Time, Kind, Key), giving the
// deterministic per-tick ordering the scheduler requires without needing a
// separate sort pass after every pop.
type TimerWheel struct {
	events eventHeap
}

// NewTimerWheel returns an empty wheel.
func NewTimerWheel() *TimerWheel {
	w := &TimerWheel{}
	heap.Init(&w.events)
	return w
}

// Schedule adds an event to the wheel.
func (w *TimerWheel) Schedule(e Event) {
	heap.Push(&w.events, e)
}

// Len reports the number of pending events.
func (w *TimerWheel) Len() int { return w.events.Len() }

// Peek returns the next event's timestamp without removing anything.
func (w *TimerWheel) Peek() (int64, bool) {
	if w.events.Len() == 0 {
		return 0, false
	}
	return w.events[0].Time, true
}

// PopTick removes and returns every event scheduled at the wheel's minimum
// timestamp, in (Kind, Key) order.
func (w *TimerWheel) PopTick() []Event {
	if w.events.Len() == 0 {
		return nil
	}
	tick := w.events[0].Time
	var out []Event
	for w.events.Len() > 0 && w.events[0].Time == tick {
		out = append(out, heap.Pop(&w.events).(Event))
	}
	return out
}

// HasScheduled reports whether an event of the given kind/key is pending.
func (w *TimerWheel) HasScheduled(kind EventKind, key string) bool {
	for _, e := range w.events {
		if e.Kind == kind && e.Key == key {
			return true
		}
	}
	return false
}

// Retain keeps only events for which keep returns true, used at stage setup
// when recalculateTimers is false: events referencing a measurer/effector no
// longer active in the new stage config are dropped.
func (w *TimerWheel) Retain(keep func(Event) bool) {
	filtered := make(eventHeap, 0, len(w.events))
	for _, e := range w.events {
		if keep(e) {
			filtered = append(filtered, e)
		}
	}
	w.events = filtered
	heap.Init(&w.events)
}

// Clear discards every pending event.
func (w *TimerWheel) Clear() {
	w.events = nil
	heap.Init(&w.events)
}

type eventHeap []Event

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].Time != h[j].Time {
		return h[i].Time < h[j].Time
	}
	if h[i].Kind != h[j].Kind {
		return h[i].Kind < h[j].Kind
	}
	return h[i].Key < h[j].Key
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(Event))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
