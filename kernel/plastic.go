// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kernel

import (
	"github.com/rigsim/synrow/history"
	"github.com/rigsim/synrow/plasticity"
	"github.com/rigsim/synrow/row"
)

// WriteBackFunc commits the mutable tail of a row back to its home in
// the shared store: wordCount words starting at dst, from src.
type WriteBackFunc func(dst uint32, src []uint32, wordCount int)

// PlasticKernel is the generic STDP row kernel (spec.md §4.I, §9:
// "template specialisation → generics with monomorphisation"),
// monomorphised over the three composable policy capabilities.
type PlasticKernel[W plasticity.WeightDependence, T plasticity.TimingDependence, S plasticity.SynapseStructure] struct {
	Weight  W
	Timing  T
	Synapse S
	History *history.History
}

// Apply runs one row invocation. flush suppresses trace advancement
// and weight deposit (a commit-only pass used to flush pending
// post-events before eviction or inspection); rowAddress is the row's
// base address in the shared store, used to compute the write-back
// destination for the mutable tail (row[3..]).
func (k *PlasticKernel[W, T, S]) Apply(r row.PlasticRow, tick uint32, flush bool,
	applyInput ApplyInputFunc, addDelayRow AddDelayRowFunc, writeBack WriteBackFunc, rowAddress uint32) {

	if ext := r.DelayExtTick(); ext != 0 {
		addDelayRow(ext+tick, r.DelayExtLocator())
	}

	lastUpdateTick := r.LastUpdateTick()
	r.SetLastUpdateTick(tick)

	lastPreTick := r.LastPreTick()
	lastPreTrace := plasticity.DecodePreTrace(r.PreTrace())

	newPreTrace := lastPreTrace
	if !flush {
		newPreTrace = k.Timing.UpdatePreTrace(tick, lastPreTrace, lastPreTick)
		r.SetLastPreTick(tick)
		plasticity.EncodePreTrace(newPreTrace, r.PreTrace())
	}

	const delayAxonal = 0

	n := r.N()
	for i := 0; i < n; i++ {
		postIndex, delayDendritic := row.DecodeControl(r.ControlWord(i))

		st := k.Synapse.FromPlasticWord(r.PlasticWord(i))
		depress := func(amount float32) { k.Weight.ApplyDepression(&st.Weight, amount) }
		potentiate := func(amount float32) { k.Weight.ApplyPotentiation(&st.Weight, amount) }

		windowBegin := int64(lastUpdateTick) + delayAxonal - int64(delayDendritic)
		if windowBegin < 0 {
			windowBegin = 0
		}
		windowEnd := int64(tick) + delayAxonal - int64(delayDendritic)
		if windowEnd < windowBegin {
			windowEnd = windowBegin // guards uint32(windowEnd) wraparound when delay_dendritic > tick
		}

		c := k.History.GetWindow(int(postIndex), uint32(windowBegin), uint32(windowEnd))
		for c.HasNext() {
			nextTime := c.NextTime()
			nextTrace := c.NextTrace()
			delayedPostTick := nextTime + delayDendritic
			k.Timing.ApplyPostSpike(depress, potentiate,
				delayedPostTick, nextTrace,
				c.PrevTime(), c.PrevTrace(),
				lastPreTick, lastPreTrace)
			c.Advance(delayedPostTick)
		}

		if !flush {
			delayedPreTick := tick + delayAxonal
			k.Timing.ApplyPreSpike(depress, potentiate,
				delayedPreTick, newPreTrace,
				lastPreTick, lastPreTrace,
				c.PrevTime(), c.PrevTrace())
		}

		k.Synapse.DecayEligibility(&st)
		finalWeight := k.Weight.FinalWeight(st.Weight)
		if !flush {
			applyInput(delayDendritic+delayAxonal+tick, int(postIndex), finalWeight)
		}

		r.SetPlasticWord(i, k.Synapse.ToPlasticWord(st))
	}

	wb := r.WriteBackRegion()
	writeBack(rowAddress+3, wb, len(wb))
}
