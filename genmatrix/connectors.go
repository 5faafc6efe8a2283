// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package genmatrix implements the offline synaptic-matrix generator
// (spec.md §4.K): given abstract connectivity, delay and weight
// producers, it emits one fixed-stride static row per pre-synaptic
// neuron into a shared-store image.
package genmatrix

import (
	"math/rand"

	"github.com/emer/emergent/v2/erand"
)

// Connector generates up to maxRowSynapses post-synaptic indices for
// row i's connectivity (spec.md §4.K step 1); an opaque producer over
// (rng) the generator never inspects beyond its return value.
type Connector interface {
	Generate(rowIndex, maxRowSynapses, numPost int, rng *rand.Rand) []uint32
}

// DelayGenerator produces one delay value per synapse (spec.md §4.K
// step 2). The generator always calls Generate with a second argument
// of 0 (spec.md: "delay_gen.generate(num_indices, 0, rng)"); it is
// reserved for a future per-call override and currently unused by the
// generator itself.
type DelayGenerator interface {
	Generate(numIndices int, reserved uint32, rng *rand.Rand) []uint32
}

// WeightGenerator produces one fixed-point weight value per synapse
// (spec.md §4.K step 3).
type WeightGenerator interface {
	Generate(numIndices int, weightFixedPoint uint, rng *rand.Rand) []uint32
}

// UniformRandomConnector connects each row to a random subset of up to
// maxRowSynapses post-neurons, grounded on the teacher's
// erand.PermuteInts(ord)-then-take-prefix shuffle idiom
// (leabra/network.go's per-thread layer-order shuffle).
type UniformRandomConnector struct{}

func (UniformRandomConnector) Generate(rowIndex, maxRowSynapses, numPost int, rng *rand.Rand) []uint32 {
	n := maxRowSynapses
	if numPost < n {
		n = numPost
	}
	ord := make([]int, numPost)
	for i := range ord {
		ord[i] = i
	}
	erand.PermuteInts(ord)
	out := make([]uint32, n)
	for i := 0; i < n; i++ {
		out[i] = uint32(ord[i])
	}
	return out
}

// OneToOneConnector connects row i to post-neuron i only, grounded on
// the teacher's one-to-one path configuration idiom
// (examples/hip_bench/def_params.go's "#InputToECin" one-to-one entry).
type OneToOneConnector struct{}

func (OneToOneConnector) Generate(rowIndex, maxRowSynapses, numPost int, rng *rand.Rand) []uint32 {
	if rowIndex >= numPost {
		return nil
	}
	return []uint32{uint32(rowIndex)}
}

// RandWeightGenerator draws each weight from an erand.RndParams
// distribution and quantizes into the row's fixed-point weight field,
// grounded on leabra/path.go's InitWeightsSyn
// (syn.Wt = float32(pj.WtInit.Gen(-1))).
type RandWeightGenerator struct {
	erand.RndParams
}

func (g *RandWeightGenerator) Generate(numIndices int, weightFixedPoint uint, rng *rand.Rand) []uint32 {
	scale := float64(uint32(1) << weightFixedPoint)
	out := make([]uint32, numIndices)
	for i := range out {
		w := g.Gen(-1)
		if w < 0 {
			w = 0
		}
		if w > 1 {
			w = 1
		}
		out[i] = uint32(w * scale)
	}
	return out
}

// ConstantDelayGenerator assigns the same fixed delay to every synapse.
type ConstantDelayGenerator struct {
	Delay uint32
}

func (g ConstantDelayGenerator) Generate(numIndices int, reserved uint32, rng *rand.Rand) []uint32 {
	out := make([]uint32, numIndices)
	for i := range out {
		out[i] = g.Delay
	}
	return out
}

// UniformRandomDelayGenerator draws each delay uniformly from
// [0, Max).
type UniformRandomDelayGenerator struct {
	Max uint32
}

func (g UniformRandomDelayGenerator) Generate(numIndices int, reserved uint32, rng *rand.Rand) []uint32 {
	out := make([]uint32, numIndices)
	if g.Max == 0 {
		return out
	}
	for i := range out {
		out[i] = uint32(rng.Intn(int(g.Max)))
	}
	return out
}
