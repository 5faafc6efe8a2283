// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package plasticity

import (
	"fmt"
	"strconv"

	"github.com/emer/emergent/v2/params"
)

// Policy bundles the three selected variants that make up one
// STDP configuration, built by BuildPolicy from a params.Sheet
// selector overlay, the same
// selector/override idiom the teacher's basic_test.go ParamSets uses
// for Path.Learn fields.
type Policy struct {
	Weight  WeightDependence
	Timing  TimingDependence
	Synapse SynapseStructure
}

// Variant names recognised in a PlasticityData params.Sheet's
// "Plasticity.Weight"/"Plasticity.Timing"/"Plasticity.Synapse" keys.
const (
	WeightAdditive       = "Additive"
	WeightMultiplicative = "Multiplicative"

	TimingPair        = "Pair"
	TimingNearestPair = "NearestPair"

	SynapseWeightOnly        = "WeightOnly"
	SynapseEligibilityTrace  = "EligibilityTrace"
)

// BuildPolicy constructs a Policy by applying a params.Sheet's
// "Plasticity" selector entries over a set of defaults. Every sheet
// entry with a Sel of "Plasticity" is applied in order, so a later
// entry's value for a key overrides an earlier one; its Params map
// selects variants and numeric overrides. Unset fields fall back to
// reasonable defaults.
func BuildPolicy(sheet params.Sheet) (Policy, error) {
	p := selFloats{
		"Plasticity.Weight.Min":    0,
		"Plasticity.Weight.Max":    1,
		"Plasticity.Weight.Scale":  65535,
		"Plasticity.Timing.TauPlus":   20,
		"Plasticity.Timing.AmpPlus":   1,
		"Plasticity.Timing.TauMinus":  20,
		"Plasticity.Timing.AmpMinus":  1,
		"Plasticity.Synapse.EligibilityDecay": 0.9,
	}
	variants := selStrings{
		"Plasticity.Weight":  WeightAdditive,
		"Plasticity.Timing":  TimingPair,
		"Plasticity.Synapse": SynapseWeightOnly,
	}

	for _, sel := range sheet {
		if sel.Sel != "Plasticity" {
			continue
		}
		for k, v := range sel.Params {
			if _, isVariant := variants[k]; isVariant {
				variants[k] = v
				continue
			}
			if _, isFloat := p[k]; isFloat {
				f, err := strconv.ParseFloat(v, 32)
				if err != nil {
					return Policy{}, fmt.Errorf("plasticity: param %s=%q: %w", k, v, err)
				}
				p[k] = float32(f)
			}
		}
	}

	fp := fixedPointParams{Min: p["Plasticity.Weight.Min"], Max: p["Plasticity.Weight.Max"], Scale: p["Plasticity.Weight.Scale"]}
	timing := TimingParams{
		TauPlus: p["Plasticity.Timing.TauPlus"], AmpPlus: p["Plasticity.Timing.AmpPlus"],
		TauMinus: p["Plasticity.Timing.TauMinus"], AmpMinus: p["Plasticity.Timing.AmpMinus"],
	}

	var pol Policy
	switch variants["Plasticity.Weight"] {
	case WeightMultiplicative:
		pol.Weight = &MultiplicativeWeightDependence{fixedPointParams: fp}
	default:
		pol.Weight = &AdditiveWeightDependence{fixedPointParams: fp}
	}
	switch variants["Plasticity.Timing"] {
	case TimingNearestPair:
		pol.Timing = &NearestPairTiming{TimingParams: timing}
	default:
		pol.Timing = &PairTiming{TimingParams: timing}
	}
	switch variants["Plasticity.Synapse"] {
	case SynapseEligibilityTrace:
		s := &EligibilityTraceStructure{}
		s.ReadParams(fp.Min, fp.Max, fp.Scale, p["Plasticity.Synapse.EligibilityDecay"])
		pol.Synapse = s
	default:
		s := &WeightOnlyStructure{}
		s.ReadParams(fp.Min, fp.Max, fp.Scale)
		pol.Synapse = s
	}
	return pol, nil
}

type selFloats map[string]float32
type selStrings map[string]string
