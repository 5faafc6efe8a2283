// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package plasticity

import (
	"testing"

	"github.com/emer/emergent/v2/params"
)

// TestS3NearestPairSTDP reproduces scenario S3: last_pre=0, last_post=5,
// current pre-spike at tick=10, then a post-spike at tick=7 (processed
// in delayed-arrival order: the pre-spike's effect on the post side is
// applied against the trace as of the post-spike already having been
// recorded). Exactly one potentiation call with delta=7-0=7 and one
// depression call with delta=10-7=3 must occur.
func TestS3NearestPairSTDP(t *testing.T) {
	timing := &NearestPairTiming{TimingParams: TimingParams{TauPlus: 20, AmpPlus: 1, TauMinus: 20, AmpMinus: 1}}

	var potentiations, depressions []float32
	depress := func(amount float32) { depressions = append(depressions, amount) }
	potentiate := func(amount float32) { potentiations = append(potentiations, amount) }

	const lastPre, lastPost uint32 = 0, 5
	const postTick uint32 = 7
	const preTick uint32 = 10

	// Post-spike at tick 7 potentiates against the pre trace recorded
	// at lastPre=0: delta = 7-0 = 7.
	timing.ApplyPostSpike(depress, potentiate, postTick, 1, lastPost, 1, lastPre, 1)
	// Pre-spike at tick 10 depresses against the post trace now at
	// postTick=7: delta = 10-7 = 3.
	timing.ApplyPreSpike(depress, potentiate, preTick, 1, lastPre, 1, postTick, 1)

	if len(potentiations) != 1 {
		t.Fatalf("want exactly 1 potentiation call, got %d", len(potentiations))
	}
	if len(depressions) != 1 {
		t.Fatalf("want exactly 1 depression call, got %d", len(depressions))
	}

	wantPot := decay(int64(postTick)-int64(lastPre), timing.TauPlus, timing.AmpPlus)
	wantDep := decay(int64(preTick)-int64(postTick), timing.TauMinus, timing.AmpMinus)
	if potentiations[0] != wantPot {
		t.Fatalf("potentiation amount: want %v (delta=7), got %v", wantPot, potentiations[0])
	}
	if depressions[0] != wantDep {
		t.Fatalf("depression amount: want %v (delta=3), got %v", wantDep, depressions[0])
	}

	// Apply both amounts through a weight dependence and confirm the
	// final weight stays within [Min, Max].
	wd := &AdditiveWeightDependence{}
	wd.ReadParams(0, 1, 65535)
	state := float32(0.5)
	wd.ApplyPotentiation(&state, potentiations[0])
	wd.ApplyDepression(&state, depressions[0])
	if state < 0 || state > 1 {
		t.Fatalf("final weight %v out of [0,1] bounds", state)
	}
}

func TestAdditiveWeightDependenceClamps(t *testing.T) {
	wd := &AdditiveWeightDependence{}
	wd.ReadParams(0, 1, 1000)
	state := float32(0.9)
	wd.ApplyPotentiation(&state, 5) // huge delta must clamp to Max
	if state != 1 {
		t.Fatalf("want clamp to 1, got %v", state)
	}
	wd.ApplyDepression(&state, 5) // huge delta must clamp to Min
	if state != 0 {
		t.Fatalf("want clamp to 0, got %v", state)
	}
}

func TestMultiplicativeWeightDependenceSoftBounds(t *testing.T) {
	wd := &MultiplicativeWeightDependence{}
	wd.ReadParams(0, 1, 1000)
	state := float32(0.99)
	wd.ApplyPotentiation(&state, 1) // scaled by (Max-state), should not overshoot far past Max
	if state > 1 {
		t.Fatalf("soft-bound potentiation overshot Max: %v", state)
	}
	state = 0.01
	wd.ApplyDepression(&state, 1)
	if state < 0 {
		t.Fatalf("soft-bound depression overshot Min: %v", state)
	}
}

func TestWeightOnlyStructureRoundTrip(t *testing.T) {
	s := &WeightOnlyStructure{}
	s.ReadParams(0, 1, 65535)
	word := s.ToPlasticWord(State{Weight: 0.5})
	got := s.FromPlasticWord(word)
	if got.Weight < 0.49 || got.Weight > 0.51 {
		t.Fatalf("weight round trip: want ~0.5, got %v", got.Weight)
	}
}

func TestEligibilityTraceStructureRoundTripAndDecay(t *testing.T) {
	s := &EligibilityTraceStructure{}
	s.ReadParams(0, 1, 60000, 0.9)
	word := s.ToPlasticWord(State{Weight: 0.4, Eligibility: 0.8})
	got := s.FromPlasticWord(word)
	if got.Weight < 0.39 || got.Weight > 0.41 {
		t.Fatalf("weight round trip: want ~0.4, got %v", got.Weight)
	}
	if got.Eligibility < 0.79 || got.Eligibility > 0.81 {
		t.Fatalf("eligibility round trip: want ~0.8, got %v", got.Eligibility)
	}
	s.DecayEligibility(&got)
	if got.Eligibility < 0.71 || got.Eligibility > 0.73 {
		t.Fatalf("eligibility decay: want ~0.72, got %v", got.Eligibility)
	}
}

func TestBuildPolicySelectorOverlay(t *testing.T) {
	sheet := params.Sheet{
		{Sel: "Plasticity", Desc: "nearest-pair with eligibility trace", Params: params.Params{
			"Plasticity.Timing":          TimingNearestPair,
			"Plasticity.Synapse":         SynapseEligibilityTrace,
			"Plasticity.Timing.TauPlus":  "30",
			"Plasticity.Weight.Max":      "2",
		}},
	}
	pol, err := BuildPolicy(sheet)
	if err != nil {
		t.Fatalf("BuildPolicy: %v", err)
	}
	if _, ok := pol.Timing.(*NearestPairTiming); !ok {
		t.Fatalf("want NearestPairTiming, got %T", pol.Timing)
	}
	if _, ok := pol.Synapse.(*EligibilityTraceStructure); !ok {
		t.Fatalf("want EligibilityTraceStructure, got %T", pol.Synapse)
	}
	if got := pol.Timing.(*NearestPairTiming).TauPlus; got != 30 {
		t.Fatalf("want overridden TauPlus=30, got %v", got)
	}
	if _, ok := pol.Weight.(*AdditiveWeightDependence); !ok {
		t.Fatalf("want default AdditiveWeightDependence, got %T", pol.Weight)
	}
}

func TestBuildPolicyDefaults(t *testing.T) {
	pol, err := BuildPolicy(params.Sheet{})
	if err != nil {
		t.Fatalf("BuildPolicy: %v", err)
	}
	if _, ok := pol.Weight.(*AdditiveWeightDependence); !ok {
		t.Fatalf("want default AdditiveWeightDependence, got %T", pol.Weight)
	}
	if _, ok := pol.Timing.(*PairTiming); !ok {
		t.Fatalf("want default PairTiming, got %T", pol.Timing)
	}
	if _, ok := pol.Synapse.(*WeightOnlyStructure); !ok {
		t.Fatalf("want default WeightOnlyStructure, got %T", pol.Synapse)
	}
}
