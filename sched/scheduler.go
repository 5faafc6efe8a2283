// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sched implements the per-core tick scheduler and
// double-buffered DMA pipeline (spec.md §4.J), the control loop that
// ties together the spike queue, delay-row buffer, key lookup table,
// row kernels and ring buffer into one cooperative per-tick pass.
package sched

import (
	"fmt"
	"strings"

	"github.com/rigsim/synrow/delayrow"
	"github.com/rigsim/synrow/keylookup"
	"github.com/rigsim/synrow/ring"
	"github.com/rigsim/synrow/spikequeue"
)

// DMAHandle is an opaque, platform-issued token for an in-flight
// transfer; Done reports completion without blocking, polled from the
// cooperative loop each time it looks for a free slot (spec.md §5: "completions are
// observed via callbacks posted to the same cooperative loop").
type DMAHandle interface {
	Done() bool
}

// Platform is the set of callbacks the scheduler invokes on the host
// (spec.md §6): packet emission, asynchronous DMA, timer and exit.
type Platform interface {
	EmitPacket(key uint32, payload []uint32)
	IssueDMARead(srcAddress uint32, dst []uint32) DMAHandle
	IssueDMAWrite(dstAddress uint32, src []uint32) DMAHandle
	ScheduleTimer(periodUs uint32)
	Exit(code int)
}

// RowProcessor dispatches the completed contents of a shadow DMA
// buffer to the static or plastic row kernel (components H, I), kept
// as an interface so the scheduler never needs to know the concrete
// WeightDependence/TimingDependence/SynapseStructure instantiation a
// caller has monomorphised (spec.md §9's generics live behind this
// seam).
type RowProcessor interface {
	// Process runs the appropriate kernel against buf (a row resident
	// at rowAddress in the shared store) at the given tick. If the row
	// is plastic and a write-back is required, it returns the mutable
	// tail to write, the destination address, and true; otherwise ok
	// is false and the caller issues no DMA write.
	Process(buf []uint32, rowAddress uint32, tick uint32, flush bool) (writeBack []uint32, writeBackDst uint32, ok bool)
}

// pendingRow is a row awaiting a DMA read, sourced either from a
// resolved spike key or from a delay-row buffer drain.
type pendingRow struct {
	address uint32
	words   int
	flush   bool
}

// slot is one half of the double-buffered DMA pipeline: a fixed shadow
// buffer plus the in-flight read or write-back handle occupying it.
type slot struct {
	buf      []uint32
	busy     bool
	writing  bool // true once a write-back DMA has been issued for this slot
	handle   DMAHandle
	row      pendingRow
}

// Simulation is the per-core context threaded through the tick loop
// (spec.md §9: "module-level globals → per-core context struct"),
// replacing what the source keeps as process-wide state.
type Simulation struct {
	Platform   Platform
	Ring       *ring.Buffer
	Queue      *spikequeue.Queue
	DelayRows  *delayrow.Buffer
	Lookup     *keylookup.Table
	Processor  RowProcessor

	// RowWords is the fixed shadow-buffer width in 32-bit words
	// (spec.md §4.J: "two fixed row buffers of MaxRowWords").
	RowWords int

	// TimeBudget caps how many pending rows may be picked up per tick,
	// bounding worst-case per-tick latency.
	TimeBudget int

	// SimulationTicks is the configured tick count after which the
	// loop terminates cleanly (spec.md §4.J step 4, §6 "Ticks are
	// 1-based; tick 0 is initialisation").
	SimulationTicks uint32

	// OnRingDrain hands a drained ring slot to the downstream neuron
	// component; may be nil if the caller only cares about telemetry.
	OnRingDrain func(tick uint32, deposits []uint32)

	slots   [2]slot
	pending []pendingRow
}

// NewSimulation allocates the double-buffered shadow rows and wires
// the fixed structures that make up one core's runtime state.
func NewSimulation(platform Platform, ringBuf *ring.Buffer, queue *spikequeue.Queue,
	delayRows *delayrow.Buffer, lookup *keylookup.Table, proc RowProcessor, rowWords, timeBudget int) *Simulation {
	s := &Simulation{
		Platform: platform, Ring: ringBuf, Queue: queue, DelayRows: delayRows,
		Lookup: lookup, Processor: proc, RowWords: rowWords, TimeBudget: timeBudget,
	}
	s.slots[0].buf = make([]uint32, rowWords)
	s.slots[1].buf = make([]uint32, rowWords)
	return s
}

// Run drives the loop from tick 1 through SimulationTicks inclusive,
// then exits with code 0 (spec.md §6: "Exit codes. 0 = normal
// termination at configured tick count").
func (s *Simulation) Run() {
	s.Platform.ScheduleTimer(0)
	for tick := uint32(1); tick <= s.SimulationTicks; tick++ {
		s.Tick(tick)
	}
	s.drainAllInFlight(s.SimulationTicks)
	s.Platform.Exit(0)
}

// Tick runs one pass of the control loop (spec.md §4.J).
func (s *Simulation) Tick(tick uint32) {
	for _, e := range s.DelayRows.DrainDue(tick) {
		s.pending = append(s.pending, pendingRow{address: e.Locator, words: s.RowWords})
	}

	budget := s.TimeBudget
	for budget > 0 {
		s.completeFinishedSlots(tick)

		free := s.freeSlot()
		if free < 0 {
			break
		}

		row, ok := s.nextPendingRow()
		if !ok {
			break
		}
		s.issueRead(free, row)
		budget--
	}

	s.completeFinishedSlots(tick)

	deposits := s.Ring.DrainSlot(tick)
	if s.OnRingDrain != nil {
		s.OnRingDrain(tick, deposits)
	}
}

// nextPendingRow returns the next row to fetch, preferring
// already-queued delay-row replays (spec.md §4.J step 1) over newly
// popped spike keys (step 2); unknown keys are dropped per S6.
func (s *Simulation) nextPendingRow() (pendingRow, bool) {
	for len(s.pending) > 0 {
		pr := s.pending[0]
		s.pending = s.pending[1:]
		return pr, true
	}
	for {
		key, ok := s.Queue.Pop()
		if !ok {
			return pendingRow{}, false
		}
		loc, ok := s.Lookup.Resolve(key)
		if !ok {
			continue // S6: unknown key, dropped and counted via Lookup.MissCount
		}
		return pendingRow{address: loc.Address, words: int(loc.WordCount)}, true
	}
}

func (s *Simulation) freeSlot() int {
	for i := range s.slots {
		if !s.slots[i].busy {
			return i
		}
	}
	return -1
}

func (s *Simulation) issueRead(i int, row pendingRow) {
	sl := &s.slots[i]
	sl.row = row
	sl.busy = true
	sl.writing = false
	sl.handle = s.Platform.IssueDMARead(row.address, sl.buf[:row.words])
}

// completeFinishedSlots polls every busy slot; a finished read hands
// its buffer to the row processor and, for a plastic row needing
// write-back, issues the write DMA and keeps the slot busy until that
// completes too (spec.md §5: "write-back of a plastic row completes
// before the next DMA read of the same row begins").
func (s *Simulation) completeFinishedSlots(tick uint32) {
	for i := range s.slots {
		sl := &s.slots[i]
		if !sl.busy || sl.handle == nil || !sl.handle.Done() {
			continue
		}
		if sl.writing {
			sl.busy = false
			continue
		}
		wb, dst, needsWrite := s.Processor.Process(sl.buf[:sl.row.words], sl.row.address, tick, sl.row.flush)
		if needsWrite {
			sl.writing = true
			sl.handle = s.Platform.IssueDMAWrite(dst, wb)
			continue
		}
		sl.busy = false
	}
}

// Report returns a string summarizing the per-tick counters and
// current ring occupancy, mirroring leabra.Network.SizeReport's
// single-string diagnostic summary; a local in-process view, not a
// telemetry sink.
func (s *Simulation) Report() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%20s:\t %d\n", "Ring saturations", s.Ring.Saturations)
	fmt.Fprintf(&b, "%20s:\t %d\n", "Ring occupancy", s.Ring.Occupancy())
	fmt.Fprintf(&b, "%20s:\t %d\n", "Queue overflow", s.Queue.OverflowCount())
	fmt.Fprintf(&b, "%20s:\t %d\n", "Queue underflow", s.Queue.UnderflowCount())
	fmt.Fprintf(&b, "%20s:\t %d\n", "Delay-row overflow", s.DelayRows.OverflowCount)
	fmt.Fprintf(&b, "%20s:\t %d\n", "Key lookup misses", s.Lookup.MissCount)
	return b.String()
}

// drainAllInFlight blocks the cooperative loop at shutdown only long
// enough to observe already-issued DMAs complete; it never issues new
// work (spec.md §4.J step 4: "terminate cleanly").
func (s *Simulation) drainAllInFlight(tick uint32) {
	for {
		anyBusy := false
		for i := range s.slots {
			if s.slots[i].busy {
				anyBusy = true
			}
		}
		if !anyBusy {
			return
		}
		s.completeFinishedSlots(tick)
	}
}
