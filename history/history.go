// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package history implements the per-post-neuron event history: a
// bounded ring of (tick, trace) samples with monotonically
// non-decreasing ticks, and windowed reads that the plastic row
// kernel uses to interleave a scan of post-synaptic spikes against a
// pre-synaptic spike.
package history

import "sort"

// Event is one recorded post-synaptic spike sample.
type Event struct {
	Tick  uint32
	Trace float32
}

// History holds a fixed-capacity ring of events for each of up to
// NumPost post-neurons.
type History struct {
	Capacity int
	NumPost  int

	ticks  [][]uint32
	traces [][]float32
	head   []int // next write index, per neuron
	count  []int // number of valid entries, per neuron (<= Capacity)
}

// New allocates a history with the given per-neuron ring capacity T
// and neuron count.
func New(capacity, numPost int) *History {
	h := &History{Capacity: capacity, NumPost: numPost}
	h.ticks = make([][]uint32, numPost)
	h.traces = make([][]float32, numPost)
	h.head = make([]int, numPost)
	h.count = make([]int, numPost)
	for i := 0; i < numPost; i++ {
		h.ticks[i] = make([]uint32, capacity)
		h.traces[i] = make([]float32, capacity)
	}
	return h
}

// Add appends (tick, trace) for the given post-neuron, evicting the
// oldest entry once the ring is full. tick must be >= the neuron's
// last recorded tick (spec.md invariant 2).
func (h *History) Add(post int, tick uint32, trace float32) {
	h.ticks[post][h.head[post]] = tick
	h.traces[post][h.head[post]] = trace
	h.head[post] = (h.head[post] + 1) % h.Capacity
	if h.count[post] < h.Capacity {
		h.count[post]++
	}
}

// GetLastTime returns the most recently recorded tick for post, or 0
// if no events have been recorded.
func (h *History) GetLastTime(post int) uint32 {
	if h.count[post] == 0 {
		return 0
	}
	idx := (h.head[post] - 1 + h.Capacity) % h.Capacity
	return h.ticks[post][idx]
}

// GetLastTrace returns the most recently recorded trace for post, or
// 0 if no events have been recorded.
func (h *History) GetLastTrace(post int) float32 {
	if h.count[post] == 0 {
		return 0
	}
	idx := (h.head[post] - 1 + h.Capacity) % h.Capacity
	return h.traces[post][idx]
}

// oldestIndex returns the ring index of the i'th-oldest valid entry,
// i in [0, count).
func (h *History) oldestIndex(post, i int) int {
	start := (h.head[post] - h.count[post] + h.Capacity) % h.Capacity
	return (start + i) % h.Capacity
}

// ordered materializes the valid entries for post in ascending tick
// order (oldest first); the ring's own write order is already
// ascending per invariant 2, so this is just an unrolling copy.
func (h *History) ordered(post int) []Event {
	n := h.count[post]
	out := make([]Event, n)
	for i := 0; i < n; i++ {
		idx := h.oldestIndex(post, i)
		out[i] = Event{Tick: h.ticks[post][idx], Trace: h.traces[post][idx]}
	}
	return out
}

// Cursor is a forward-only view over the events in [begin, end) for
// one post-neuron, with a "prev" anchor: the entry immediately older
// than the first in-window event (or the zero sentinel).
type Cursor struct {
	events    []Event
	pos       int
	prevTick  uint32
	prevTrace float32
}

// GetWindow returns a cursor over events with begin <= tick < end for
// the given post-neuron.
func (h *History) GetWindow(post int, begin, end uint32) *Cursor {
	all := h.ordered(post)
	lo := sort.Search(len(all), func(i int) bool { return all[i].Tick >= begin })
	hi := sort.Search(len(all), func(i int) bool { return all[i].Tick >= end })

	c := &Cursor{events: all[lo:hi]}
	if lo > 0 {
		prev := all[lo-1]
		c.prevTick, c.prevTrace = prev.Tick, prev.Trace
	}
	return c
}

// NumEvents returns the total number of events in the window.
func (c *Cursor) NumEvents() int { return len(c.events) }

// HasNext reports whether there is an unconsumed event left.
func (c *Cursor) HasNext() bool { return c.pos < len(c.events) }

// NextTime returns the tick of the earliest unconsumed in-window
// event, or 0 if none remain.
func (c *Cursor) NextTime() uint32 {
	if !c.HasNext() {
		return 0
	}
	return c.events[c.pos].Tick
}

// NextTrace returns the trace of the earliest unconsumed in-window
// event, or 0 if none remain.
func (c *Cursor) NextTrace() float32 {
	if !c.HasNext() {
		return 0
	}
	return c.events[c.pos].Trace
}

// PrevTime returns the tick of the entry immediately older than the
// first in-window event, or 0 if there was none.
func (c *Cursor) PrevTime() uint32 { return c.prevTick }

// PrevTrace returns the trace of the entry immediately older than the
// first in-window event, or 0 if there was none.
func (c *Cursor) PrevTrace() float32 { return c.prevTrace }

// Advance consumes the current next event and moves the prev anchor
// forward. newPrevTick is supplied by the caller rather than derived
// from the consumed event's raw tick, because STDP kernels track the
// dendritically-delayed tick as the anchor, not the raw post-spike
// tick (spec.md §4.I step e).
func (c *Cursor) Advance(newPrevTick uint32) {
	if !c.HasNext() {
		return
	}
	c.prevTrace = c.events[c.pos].Trace
	c.prevTick = newPrevTick
	c.pos++
}
