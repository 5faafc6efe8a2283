// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package kernel implements the two row-processing kernels (spec.md
// §4.H, §4.I): the static synaptic-weight kernel and the generic
// plastic (STDP) kernel, monomorphised over the WeightDependence,
// TimingDependence and SynapseStructure policies selected at build
// configuration (spec.md §9: "template specialisation → generics with
// monomorphisation").
package kernel

import "github.com/rigsim/synrow/row"

// ApplyInputFunc delivers one synaptic deposit: weight arrives at
// post_index at the given delivery tick.
type ApplyInputFunc func(deliveryTick uint32, postIndex int, weight uint32)

// AddDelayRowFunc re-injects a row for replay at a future tick via the
// delay-row buffer.
type AddDelayRowFunc func(targetTick, locator uint32)

// ApplyStaticRow runs the static row kernel (spec.md §4.H) against a
// row already resident in a buffer, using row.Standard to decode each
// synaptic word. It performs no state changes and no write-back: a
// static row is immutable once generated.
func ApplyStaticRow(r row.StaticRow, tick uint32, applyInput ApplyInputFunc, addDelayRow AddDelayRowFunc) {
	if ext := r.DelayExtTick(); ext != 0 {
		addDelayRow(ext+tick, r.DelayExtLocator())
	}
	n := r.N()
	for i := 0; i < n; i++ {
		word := r.Synapse(i)
		index := row.Standard.DecodeIndex(word)
		delay := row.Standard.DecodeDelay(word)
		weight := row.Standard.DecodeWeight(word)
		applyInput(tick+delay, int(index), weight)
	}
}
