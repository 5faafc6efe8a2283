// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package plasticity

import (
	"math"

	"cogentcore.org/core/math32"
)

// DepressFunc mutates a synapse's weight state by a depression amount.
type DepressFunc func(amount float32)

// PotentiateFunc mutates a synapse's weight state by a potentiation
// amount.
type PotentiateFunc func(amount float32)

// TimingDependence computes pre/post trace updates and, on each
// pre- or post-synaptic spike, invokes the supplied depression and
// potentiation callbacks with the timing-derived scalar amount. The
// callbacks are explicit parameters rather than closures over shared
// state (spec.md §9: "lambda captures ... → explicit callback
// parameters").
type TimingDependence interface {
	// UpdatePreTrace returns the new pre-synaptic trace sampled at
	// tick, decayed from prevTrace recorded at prevTick.
	UpdatePreTrace(tick uint32, prevTrace float32, prevTick uint32) float32
	// UpdatePostTrace returns the new post-synaptic trace sampled at
	// tick, decayed from prevTrace recorded at prevTick.
	UpdatePostTrace(tick uint32, prevTrace float32, prevTick uint32) float32
	// ApplyPreSpike consumes a pre-synaptic spike event: depress using
	// the post-side history, then hand off to potentiate/depress per
	// the variant's rule.
	ApplyPreSpike(depress DepressFunc, potentiate PotentiateFunc,
		delayedPreTick uint32, newPreTrace float32,
		prevPreTick uint32, prevPreTrace float32,
		prevPostTick uint32, prevPostTrace float32)
	// ApplyPostSpike consumes a post-synaptic spike event, symmetric
	// to ApplyPreSpike.
	ApplyPostSpike(depress DepressFunc, potentiate PotentiateFunc,
		delayedPostTick uint32, newPostTrace float32,
		prevPostTick uint32, prevPostTrace float32,
		prevPreTick uint32, prevPreTrace float32)
}

// PreTraceWords is the number of uint32 words used to store one
// float32 pre-trace sample in a row's pre-trace payload region.
const PreTraceWords = 1

// EncodePreTrace marshals a trace value into a row's raw pre-trace
// word slice (length must be PreTraceWords).
func EncodePreTrace(trace float32, words []uint32) {
	words[0] = math.Float32bits(trace)
}

// DecodePreTrace unmarshals a trace value from a row's raw pre-trace
// word slice.
func DecodePreTrace(words []uint32) float32 {
	return math.Float32frombits(words[0])
}

// decay returns amp * exp(-delta/tau) for delta >= 0, and 0 for
// delta < 0 (no influence from a future event), matching the
// exponential decay windows the spec's §3 "decaying exponential-like
// samples" describes.
func decay(delta int64, tau, amp float32) float32 {
	if delta < 0 || tau <= 0 {
		return 0
	}
	return amp * math32.Exp(-float32(delta)/tau)
}

// TimingParams holds the decay parameters shared by both
// timing-dependence variants: potentiation uses TauPlus/AmpPlus,
// depression uses TauMinus/AmpMinus. Decay is computed with
// math32.Exp on each call; no lookup table is built.
type TimingParams struct {
	TauPlus, AmpPlus   float32
	TauMinus, AmpMinus float32
}

// Defaults sets commonly used STDP decay parameters (20ms-scale
// ticks, symmetric amplitude).
func (p *TimingParams) Defaults() {
	p.TauPlus, p.AmpPlus = 20, 1
	p.TauMinus, p.AmpMinus = 20, 1
}

// PairTiming is the pair-based STDP variant: every pre/post crossing
// contributes, with the trace values themselves (which already
// integrate all prior spikes via exponential decay) used directly as
// the depression/potentiation amount.
type PairTiming struct {
	TimingParams
}

func (t *PairTiming) UpdatePreTrace(tick uint32, prevTrace float32, prevTick uint32) float32 {
	return 1 + decay(int64(tick)-int64(prevTick), t.TauPlus, prevTrace)
}

func (t *PairTiming) UpdatePostTrace(tick uint32, prevTrace float32, prevTick uint32) float32 {
	return 1 + decay(int64(tick)-int64(prevTick), t.TauMinus, prevTrace)
}

// ApplyPreSpike depresses the weight using the post trace sampled
// just before this pre-spike: every crossing contributes.
func (t *PairTiming) ApplyPreSpike(depress DepressFunc, potentiate PotentiateFunc,
	delayedPreTick uint32, newPreTrace float32,
	prevPreTick uint32, prevPreTrace float32,
	prevPostTick uint32, prevPostTrace float32) {
	amount := decay(int64(delayedPreTick)-int64(prevPostTick), t.TauMinus, t.AmpMinus*prevPostTrace)
	if amount > 0 {
		depress(amount)
	}
}

// ApplyPostSpike potentiates the weight using the pre trace sampled
// just before this post-spike.
func (t *PairTiming) ApplyPostSpike(depress DepressFunc, potentiate PotentiateFunc,
	delayedPostTick uint32, newPostTrace float32,
	prevPostTick uint32, prevPostTrace float32,
	prevPreTick uint32, prevPreTrace float32) {
	amount := decay(int64(delayedPostTick)-int64(prevPreTick), t.TauPlus, t.AmpPlus*prevPreTrace)
	if amount > 0 {
		potentiate(amount)
	}
}

// NearestPairTiming is the nearest-neighbour STDP variant: depression
// and potentiation amounts are computed directly from the raw tick
// delta to the single nearest opposite-side event, ignoring any
// accumulated trace history beyond that one neighbour.
type NearestPairTiming struct {
	TimingParams
}

func (t *NearestPairTiming) UpdatePreTrace(tick uint32, prevTrace float32, prevTick uint32) float32 {
	return 1
}

func (t *NearestPairTiming) UpdatePostTrace(tick uint32, prevTrace float32, prevTick uint32) float32 {
	return 1
}

// ApplyPreSpike depresses using only the nearest (most recent) post
// spike tick, scenario S3's "one depression call with delta=10-7=3".
func (t *NearestPairTiming) ApplyPreSpike(depress DepressFunc, potentiate PotentiateFunc,
	delayedPreTick uint32, newPreTrace float32,
	prevPreTick uint32, prevPreTrace float32,
	prevPostTick uint32, prevPostTrace float32) {
	amount := decay(int64(delayedPreTick)-int64(prevPostTick), t.TauMinus, t.AmpMinus)
	if amount > 0 {
		depress(amount)
	}
}

// ApplyPostSpike potentiates using only the nearest (most recent) pre
// spike tick, scenario S3's "one potentiation call with delta=7-0=7".
func (t *NearestPairTiming) ApplyPostSpike(depress DepressFunc, potentiate PotentiateFunc,
	delayedPostTick uint32, newPostTrace float32,
	prevPostTick uint32, prevPostTrace float32,
	prevPreTick uint32, prevPreTrace float32) {
	amount := decay(int64(delayedPostTick)-int64(prevPreTick), t.TauPlus, t.AmpPlus)
	if amount > 0 {
		potentiate(amount)
	}
}
