// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kernel

import (
	"testing"

	"github.com/rigsim/synrow/history"
	"github.com/rigsim/synrow/plasticity"
	"github.com/rigsim/synrow/row"
)

// TestS1StaticPassThrough reproduces scenario S1: row {N=2,0,0,
// word(i=5,d=1,w=100), word(i=7,d=2,w=200)} applied at tick=10 yields
// deposits at (11,5,100) and (12,7,200).
func TestS1StaticPassThrough(t *testing.T) {
	words := make([]uint32, row.StaticRowWords())
	r := row.NewStaticRow(words)
	r.SetN(2)
	r.SetSynapse(0, row.Standard.EncodeSynapse(5, 1, 100))
	r.SetSynapse(1, row.Standard.EncodeSynapse(7, 2, 200))

	type deposit struct {
		tick uint32
		post int
		w    uint32
	}
	var deposits []deposit
	ApplyStaticRow(r, 10, func(tick uint32, post int, w uint32) {
		deposits = append(deposits, deposit{tick, post, w})
	}, func(uint32, uint32) { t.Fatal("no delay extension expected") })

	want := []deposit{{11, 5, 100}, {12, 7, 200}}
	if len(deposits) != len(want) {
		t.Fatalf("want %d deposits, got %d", len(want), len(deposits))
	}
	for i, d := range want {
		if deposits[i] != d {
			t.Fatalf("deposit %d: want %+v got %+v", i, d, deposits[i])
		}
	}
}

// TestS2DelayExtension reproduces scenario S2: row {N=1, 3, 0xABCD,
// word(i=0,d=1,w=1)} at tick=10 invokes add_delay_row(13, 0xABCD) and
// still performs the normal synapse update.
func TestS2DelayExtension(t *testing.T) {
	words := make([]uint32, row.StaticRowWords())
	r := row.NewStaticRow(words)
	r.SetN(1)
	r.SetDelayExtTick(3)
	r.SetDelayExtLocator(0xABCD)
	r.SetSynapse(0, row.Standard.EncodeSynapse(0, 1, 1))

	var gotTarget, gotLocator uint32
	var sawDelayRow bool
	var gotTick uint32
	var gotPost int
	var gotWeight uint32
	ApplyStaticRow(r, 10,
		func(tick uint32, post int, w uint32) { gotTick, gotPost, gotWeight = tick, post, w },
		func(target, locator uint32) { sawDelayRow = true; gotTarget, gotLocator = target, locator })

	if !sawDelayRow || gotTarget != 13 || gotLocator != 0xABCD {
		t.Fatalf("want add_delay_row(13, 0xABCD), got sawDelayRow=%v target=%d locator=%d", sawDelayRow, gotTarget, gotLocator)
	}
	if gotTick != 11 || gotPost != 0 || gotWeight != 1 {
		t.Fatalf("want deposit (11,0,1), got (%d,%d,%d)", gotTick, gotPost, gotWeight)
	}
}

func newTestPlasticRow(t *testing.T, n int) (row.PlasticRow, []uint32) {
	t.Helper()
	preTraceLen := plasticity.PreTraceWords
	words := make([]uint32, row.PlasticRowWords(preTraceLen))
	r := row.NewPlasticRow(words, preTraceLen)
	r.SetN(n)
	return r, words
}

func setControlWord(words []uint32, preTraceLen, n, i int, index, delay uint32) {
	base := row.PlasticHeaderWords + preTraceLen + n
	words[base+i] = row.EncodeControl(index, delay)
}

func newPlasticKernel() (*PlasticKernel[*plasticity.AdditiveWeightDependence, *plasticity.NearestPairTiming, *plasticity.WeightOnlyStructure], *plasticity.WeightOnlyStructure) {
	w := &plasticity.AdditiveWeightDependence{}
	w.ReadParams(0, 1, 1000)
	tm := &plasticity.NearestPairTiming{TimingParams: plasticity.TimingParams{TauPlus: 20, AmpPlus: 1, TauMinus: 20, AmpMinus: 1}}
	s := &plasticity.WeightOnlyStructure{}
	s.ReadParams(0, 1, 1000)
	k := &PlasticKernel[*plasticity.AdditiveWeightDependence, *plasticity.NearestPairTiming, *plasticity.WeightOnlyStructure]{
		Weight: w, Timing: tm, Synapse: s, History: history.New(8, 1),
	}
	return k, s
}

// TestS4FlushBeforeFirstSpike reproduces scenario S4: a plastic row
// with last_pre_tick=0 and no post-events in window, invoked with
// flush=true at tick=1000, updates last_update_tick to 1000 and
// deposits nothing.
func TestS4FlushBeforeFirstSpike(t *testing.T) {
	k, s := newPlasticKernel()
	r, _ := newTestPlasticRow(t, 1)
	setControlWord(r.Words, plasticity.PreTraceWords, 1, 0, 0, 0)
	r.SetPlasticWord(0, s.ToPlasticWord(plasticity.State{Weight: 0.3}))

	deposited := false
	var wbCalls int
	k.Apply(r, 1000, true,
		func(uint32, int, uint32) { deposited = true },
		func(uint32, uint32) { t.Fatal("no delay extension expected") },
		func(uint32, []uint32, int) { wbCalls++ },
		0)

	if deposited {
		t.Fatalf("flush must not deposit")
	}
	if r.LastUpdateTick() != 1000 {
		t.Fatalf("want last_update_tick=1000, got %d", r.LastUpdateTick())
	}
	if wbCalls != 1 {
		t.Fatalf("want exactly one write_back call, got %d", wbCalls)
	}
}

// TestProperty5FlushIdempotence: invoking the plastic kernel with
// flush=true twice at the same tick with no intervening post-events
// changes no plastic word on the second invocation.
func TestProperty5FlushIdempotence(t *testing.T) {
	k, s := newPlasticKernel()
	r, _ := newTestPlasticRow(t, 1)
	setControlWord(r.Words, plasticity.PreTraceWords, 1, 0, 0, 0)
	r.SetPlasticWord(0, s.ToPlasticWord(plasticity.State{Weight: 0.3}))

	noop := func(uint32, int, uint32) {}
	noDelay := func(uint32, uint32) {}
	noWB := func(uint32, []uint32, int) {}

	k.Apply(r, 50, true, noop, noDelay, noWB, 0)
	after1 := r.PlasticWord(0)
	k.Apply(r, 50, true, noop, noDelay, noWB, 0)
	after2 := r.PlasticWord(0)

	if after1 != after2 {
		t.Fatalf("second flush changed plastic word: %d -> %d", after1, after2)
	}
}

// recordingWeightDependence wraps AdditiveWeightDependence to capture
// every FinalWeight result it computes, independent of what the
// kernel goes on to do with that value.
type recordingWeightDependence struct {
	*plasticity.AdditiveWeightDependence
	finals []uint32
}

func (r *recordingWeightDependence) FinalWeight(state float32) uint32 {
	w := r.AdditiveWeightDependence.FinalWeight(state)
	r.finals = append(r.finals, w)
	return w
}

// TestProperty6NonFlushConservation: the sum of weights deposited in
// the ring by one invocation equals the sum of final_weight across the
// row's synapses.
func TestProperty6NonFlushConservation(t *testing.T) {
	inner := &plasticity.AdditiveWeightDependence{}
	inner.ReadParams(0, 1, 1000)
	w := &recordingWeightDependence{AdditiveWeightDependence: inner}
	tm := &plasticity.NearestPairTiming{TimingParams: plasticity.TimingParams{TauPlus: 20, AmpPlus: 1, TauMinus: 20, AmpMinus: 1}}
	s := &plasticity.WeightOnlyStructure{}
	s.ReadParams(0, 1, 1000)
	k := &PlasticKernel[*recordingWeightDependence, *plasticity.NearestPairTiming, *plasticity.WeightOnlyStructure]{
		Weight: w, Timing: tm, Synapse: s, History: history.New(8, 1),
	}

	r, _ := newTestPlasticRow(t, 3)
	weights := []float32{0.1, 0.2, 0.3}
	for i, wt := range weights {
		setControlWord(r.Words, plasticity.PreTraceWords, 3, i, uint32(i), 0)
		r.SetPlasticWord(i, s.ToPlasticWord(plasticity.State{Weight: wt}))
	}

	var depositedSum uint64
	k.Apply(r, 5, false,
		func(_ uint32, _ int, dw uint32) { depositedSum += uint64(dw) },
		func(uint32, uint32) {},
		func(uint32, []uint32, int) {},
		0)

	var finalSum uint64
	for _, f := range w.finals {
		finalSum += uint64(f)
	}

	if len(w.finals) != 3 {
		t.Fatalf("want 3 FinalWeight calls, got %d", len(w.finals))
	}
	if depositedSum != finalSum {
		t.Fatalf("deposited sum %d != final_weight sum %d", depositedSum, finalSum)
	}
}
