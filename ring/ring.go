// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ring implements the delay-indexed synaptic ring buffer: a
// 2-D accumulator of post-synaptic input, indexed by (tick mod
// 2^DelayBits, post_index), with saturating fixed-point deposits and
// exactly-once-per-tick draining of the current slot.
package ring

// MaxWeight is the saturation ceiling for a single accumulator entry.
// The fixed-point representation is a plain uint32; callers that want
// narrower hardware-accurate saturation should configure a tighter
// value via Buffer.Max.
const MaxWeight = ^uint32(0)

// Buffer is the delay-indexed ring accumulator, R[slot][post].
// Width is 2^DelayBits rows by numPost columns.
type Buffer struct {
	DelayBits uint
	NumPost   int
	Max       uint32 // saturation ceiling, defaults to MaxWeight

	slots [][]uint32

	// Saturations counts deposits that were clamped rather than added
	// in full (spec.md §7: arithmetic saturation is a normal
	// operational event, counted but never an error).
	Saturations uint64
}

// NewBuffer allocates a ring buffer with 2^delayBits delay slots and
// numPost post-synaptic columns.
func NewBuffer(delayBits uint, numPost int) *Buffer {
	n := 1 << delayBits
	b := &Buffer{DelayBits: delayBits, NumPost: numPost, Max: MaxWeight}
	b.slots = make([][]uint32, n)
	for i := range b.slots {
		b.slots[i] = make([]uint32, numPost)
	}
	return b
}

func (b *Buffer) slot(tick uint32) uint32 {
	return tick & ((1 << b.DelayBits) - 1)
}

// Add deposits weight into the accumulator for the given absolute
// tick and post-synaptic index, saturating at b.Max. tick is the
// already-computed delivery tick (spike tick + total delay); the
// delay >= 1 invariant (spec.md §4.B) guarantees this never targets
// the slot currently being drained within the same tick step.
func (b *Buffer) Add(tick uint32, post int, weight uint32) {
	s := b.slots[b.slot(tick)]
	sum := uint64(s[post]) + uint64(weight)
	if sum > uint64(b.Max) {
		sum = uint64(b.Max)
		b.Saturations++
	}
	s[post] = uint32(sum)
}

// Occupancy returns the number of non-zero accumulator entries
// currently held across every delay slot, a point-in-time fill level
// for diagnostics; it does not drain anything.
func (b *Buffer) Occupancy() int {
	n := 0
	for _, s := range b.slots {
		for _, v := range s {
			if v != 0 {
				n++
			}
		}
	}
	return n
}

// DrainSlot returns the contents of the slot for the given tick and
// zeroes it in place, so each slot is read and cleared exactly once
// per lap of the ring (spec.md invariant 3). The returned slice is a
// fresh copy and does not alias the buffer's internal storage.
func (b *Buffer) DrainSlot(tick uint32) []uint32 {
	s := b.slots[b.slot(tick)]
	out := make([]uint32, len(s))
	copy(out, s)
	for i := range s {
		s[i] = 0
	}
	return out
}
