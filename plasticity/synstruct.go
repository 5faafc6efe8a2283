// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package plasticity

import "github.com/rigsim/synrow/row"

// State is the per-synapse running update state carried across one
// plastic-row application: the weight being updated by a
// WeightDependence, plus whatever structural extra a SynapseStructure
// variant needs (unused by WeightOnlyStructure, an eligibility trace
// for EligibilityTraceStructure).
type State struct {
	Weight      float32
	Eligibility float32
}

// SynapseStructure defines the in-row plastic word layout: how to
// construct a State from a stored plastic word, how to mutate the
// eligibility side-state between applications, and how to repack the
// final State into a plastic word.
type SynapseStructure interface {
	FromPlasticWord(word uint32) State
	ToPlasticWord(s State) uint32
	// DecayEligibility advances any structural state that evolves
	// independently of WeightDependence (a no-op for WeightOnly).
	DecayEligibility(s *State)
}

// WeightOnlyStructure packs the entire plastic word as a fixed-point
// weight; there is no structural state beyond the weight itself.
type WeightOnlyStructure struct {
	fixedPointParams
}

// ReadParams sets the saturating bounds and fixed-point scale used to
// decode/encode the weight.
func (s *WeightOnlyStructure) ReadParams(min, max, scale float32) {
	s.Min, s.Max, s.Scale = min, max, scale
}

func (s *WeightOnlyStructure) FromPlasticWord(word uint32) State {
	return State{Weight: float32(word) / s.Scale}
}

func (s *WeightOnlyStructure) ToPlasticWord(st State) uint32 {
	return s.quantize(s.clamp(st.Weight))
}

func (s *WeightOnlyStructure) DecayEligibility(st *State) {}

// eligibilitySplit divides a plastic word into a 16-bit weight field
// and a 16-bit eligibility-trace field, reusing the row package's
// generic bit-field codec rather than hand-rolling a second one.
var eligibilitySplit = row.Bits{IndexBits: 16, DelayBits: 0, WeightBits: 16}

// EligibilityTraceStructure packs a 16-bit fixed-point weight and a
// 16-bit fixed-point eligibility trace into one plastic word; the
// trace decays geometrically between applications independent of any
// weight-dependence mutation. The trace is stored and decayed only: no
// supplied TimingDependence or WeightDependence variant reads it, so
// it has no effect on the weight update.
type EligibilityTraceStructure struct {
	fixedPointParams
	EligibilityDecay float32 // per-application multiplicative decay, in [0,1]
}

// ReadParams sets the saturating bounds, fixed-point scale and
// eligibility decay factor.
func (s *EligibilityTraceStructure) ReadParams(min, max, scale, eligibilityDecay float32) {
	s.Min, s.Max, s.Scale = min, max, scale
	s.EligibilityDecay = eligibilityDecay
}

func (s *EligibilityTraceStructure) FromPlasticWord(word uint32) State {
	wField := eligibilitySplit.DecodeIndex(word)
	eField := eligibilitySplit.DecodeWeight(word)
	return State{
		Weight:      float32(wField) / s.Scale,
		Eligibility: float32(eField) / s.Scale,
	}
}

func (s *EligibilityTraceStructure) ToPlasticWord(st State) uint32 {
	w := s.quantize(s.clamp(st.Weight)) & eligibilitySplit.IndexMask()
	e := uint32(st.Eligibility*s.Scale) & eligibilitySplit.WeightMask()
	return eligibilitySplit.EncodeSynapse(w, 0, e)
}

func (s *EligibilityTraceStructure) DecayEligibility(st *State) {
	st.Eligibility *= s.EligibilityDecay
}
