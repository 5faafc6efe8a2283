// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package genmatrix

import (
	"math/rand"

	"github.com/rigsim/synrow/row"
)

// Generate builds a synaptic matrix into out (spec.md §4.K): one
// static row per pre-synaptic neuron, each occupying a fixed
// StaticHeaderWords+maxRowSynapses stride regardless of how many
// synapses it actually populates, using opaque connectivity, delay
// and weight producers. It returns the number of words written
// (numRows * (StaticHeaderWords + maxRowSynapses)).
//
// Delay-extension headers are never emitted here (step 4: the header
// is always {N, 0, 0} — delay-extension is unsupported by the
// generator and must be added by a later pass if needed).
//
// spec.md §9 Open Question 1: the source's trailing line advances the
// output pointer by mutating the final synaptic word in place
// (*ptr += k) rather than advancing the pointer past the row, which
// looks like a bug — the pointer should advance by
// maxRowSynapses-N words to the next row's base. This implementation
// does that: it always reserves and advances by the full fixed
// stride, so padding words past N are left exactly as provided in out
// (uninitialised, per step 6's "readers must honour N").
func Generate(out []uint32, numRows, maxRowSynapses int, weightFixedPoint uint, numPost int,
	connector Connector, delayGen DelayGenerator, weightGen WeightGenerator, rng *rand.Rand) int {

	stride := row.StaticHeaderWords + maxRowSynapses
	ptr := 0
	for i := 0; i < numRows; i++ {
		indices := connector.Generate(i, maxRowSynapses, numPost, rng)
		if len(indices) > maxRowSynapses {
			indices = indices[:maxRowSynapses]
		}
		n := len(indices)
		delays := delayGen.Generate(n, 0, rng)
		weights := weightGen.Generate(n, weightFixedPoint, rng)

		r := row.NewStaticRow(out[ptr : ptr+stride])
		r.SetN(n)
		r.SetDelayExtTick(0)
		r.SetDelayExtLocator(0)
		for s := 0; s < n; s++ {
			r.SetSynapse(s, row.Standard.EncodeSynapse(indices[s], delays[s], weights[s]))
		}

		ptr += stride
	}
	return ptr
}
