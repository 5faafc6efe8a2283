// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package plasticity implements the three composable STDP policy
// capabilities from spec.md §4.G: WeightDependence, TimingDependence
// and SynapseStructure, plus the canonical variants of each selected
// at build configuration (additive/multiplicative weight dependence,
// pair/nearest-pair timing dependence, weight-only/eligibility-trace
// synapse structure).
package plasticity

import "cogentcore.org/core/math32"

// WeightDependence mutates a synapse's running weight state in
// response to depression/potentiation amounts computed by a
// TimingDependence, keeping the weight within [Min, Max], and
// extracts the final fixed-point weight to deposit.
type WeightDependence interface {
	ApplyDepression(state *float32, amount float32)
	ApplyPotentiation(state *float32, amount float32)
	FinalWeight(state float32) uint32
	ReadParams(min, max, scale float32)
}

// fixedPointParams holds the saturating bounds and fixed-point scale
// shared by both weight-dependence variants.
type fixedPointParams struct {
	Min, Max float32
	Scale    float32 // converts a [Min,Max] float weight to a fixed-point integer
}

func (p *fixedPointParams) clamp(w float32) float32 {
	return math32.Max(p.Min, math32.Min(p.Max, w))
}

func (p fixedPointParams) quantize(w float32) uint32 {
	return uint32(w * p.Scale)
}

// AdditiveWeightDependence applies depression/potentiation as a flat
// additive delta to the weight, independent of current weight value.
type AdditiveWeightDependence struct {
	fixedPointParams
}

// ReadParams sets the saturating bounds and fixed-point scale.
func (w *AdditiveWeightDependence) ReadParams(min, max, scale float32) {
	w.Min, w.Max, w.Scale = min, max, scale
}

// ApplyDepression subtracts amount from state, clamped to [Min, Max].
func (w *AdditiveWeightDependence) ApplyDepression(state *float32, amount float32) {
	*state = w.clamp(*state - amount)
}

// ApplyPotentiation adds amount to state, clamped to [Min, Max].
func (w *AdditiveWeightDependence) ApplyPotentiation(state *float32, amount float32) {
	*state = w.clamp(*state + amount)
}

// FinalWeight quantizes state into the row's fixed-point weight field.
func (w *AdditiveWeightDependence) FinalWeight(state float32) uint32 {
	return w.quantize(w.clamp(state))
}

// MultiplicativeWeightDependence scales depression/potentiation by the
// synapse's distance from its bound (soft-bound STDP): depression
// scales with (state-Min), potentiation scales with (Max-state).
type MultiplicativeWeightDependence struct {
	fixedPointParams
}

// ReadParams sets the saturating bounds and fixed-point scale.
func (w *MultiplicativeWeightDependence) ReadParams(min, max, scale float32) {
	w.Min, w.Max, w.Scale = min, max, scale
}

// ApplyDepression subtracts amount*(state-Min)/(Max-Min) from state.
func (w *MultiplicativeWeightDependence) ApplyDepression(state *float32, amount float32) {
	span := w.Max - w.Min
	if span <= 0 {
		*state = w.clamp(*state - amount)
		return
	}
	*state = w.clamp(*state - amount*(*state-w.Min)/span)
}

// ApplyPotentiation adds amount*(Max-state)/(Max-Min) to state.
func (w *MultiplicativeWeightDependence) ApplyPotentiation(state *float32, amount float32) {
	span := w.Max - w.Min
	if span <= 0 {
		*state = w.clamp(*state + amount)
		return
	}
	*state = w.clamp(*state + amount*(w.Max-*state)/span)
}

// FinalWeight quantizes state into the row's fixed-point weight field.
func (w *MultiplicativeWeightDependence) FinalWeight(state float32) uint32 {
	return w.quantize(w.clamp(state))
}
