// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package keylookup resolves an inbound spike's routing key to the
// shared-store location of its synaptic row, via binary search over a
// sorted, read-only table of key ranges.
package keylookup

import "sort"

// Locator identifies a synaptic row in the shared off-chip store.
type Locator struct {
	Address   uint32
	WordCount uint32
}

// entry is one row of the sorted key-range table.
type entry struct {
	keyMin, keyMax uint32
	loc            Locator
}

// Table is the read-only, sorted (key_min, key_max, locator) table.
// Entries must be sorted by KeyMin and non-overlapping; construction
// validates this (spec.md §6 exit code: "key-lookup-table mis-sort"
// is a fatal config error, caught here rather than at resolve time).
type Table struct {
	entries []entry

	// MissCount counts spikes whose key matched no range (spec.md §7:
	// unknown-key, dropped and counted, never an error).
	MissCount uint64
}

// Range is one input row describing a contiguous key range mapped to
// a single base row locator; row stride lets a range cover multiple
// neurons sharing one connectivity block.
type Range struct {
	KeyMin, KeyMax uint32
	BaseAddress    uint32
	RowWordStride  uint32
}

// Build constructs a Table from unsorted ranges, sorting them by
// KeyMin. It returns an error if any two ranges overlap, matching the
// "key-lookup-table mis-sort" fatal condition from spec.md §6.
func Build(ranges []Range) (*Table, error) {
	sorted := make([]Range, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].KeyMin < sorted[j].KeyMin })

	t := &Table{entries: make([]entry, len(sorted))}
	for i, r := range sorted {
		if r.KeyMin > r.KeyMax {
			return nil, errKeyRange(r)
		}
		if i > 0 && sorted[i-1].KeyMax >= r.KeyMin {
			return nil, errOverlap(sorted[i-1], r)
		}
		t.entries[i] = entry{
			keyMin: r.KeyMin,
			keyMax: r.KeyMax,
			loc:    Locator{Address: r.BaseAddress, WordCount: r.RowWordStride},
		}
	}
	return t, nil
}

// Resolve performs binary search for the row locator matching key.
// Returns (locator, true) on a match, or (zero, false) on a miss,
// incrementing MissCount; the caller drops the spike (spec.md §4.E).
func (t *Table) Resolve(key uint32) (Locator, bool) {
	n := len(t.entries)
	i := sort.Search(n, func(i int) bool { return t.entries[i].keyMax >= key })
	if i < n && t.entries[i].keyMin <= key && key <= t.entries[i].keyMax {
		return t.entries[i].loc, true
	}
	t.MissCount++
	return Locator{}, false
}
