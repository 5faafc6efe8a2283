// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package row

// MaxRowSynapses is the synapse capacity of the static and plastic row
// buffers (StaticRowWords, PlasticRowWords), which are sized to hold
// this many synapses regardless of how many are actually populated.
// genmatrix.Generate uses its own maxRowSynapses argument as the row
// stride and does not check it against this constant.
const MaxRowSynapses = 1024

// StaticHeaderWords is the fixed header length of a static row:
// {N, delay-ext target tick offset, delay-ext row locator}.
const StaticHeaderWords = 3

// PlasticHeaderWords is the fixed header length, up to and including
// the last-pre-spike tick, of a plastic row; the pre-trace payload
// follows immediately and its length depends on the configured
// TimingDependence's trace representation.
const PlasticHeaderWords = 5

// StaticRowWords returns the total buffer length (in 32-bit words)
// needed for a static row holding up to MaxRowSynapses synapses.
func StaticRowWords() int {
	return StaticHeaderWords + MaxRowSynapses
}

// PlasticRowWords returns the total buffer length needed for a
// plastic row with the given pre-trace payload size (in words) and up
// to MaxRowSynapses synapses; the plastic and control regions are
// each MaxRowSynapses words wide.
func PlasticRowWords(preTraceWords int) int {
	return PlasticHeaderWords + preTraceWords + 2*MaxRowSynapses
}

// StaticRow is a typed cursor over a static (fixed-weight) row buffer.
// It never aliases the underlying words through more than one typed
// view at a time: callers read/write fields through these methods
// only.
type StaticRow struct {
	Words []uint32
}

// NewStaticRow wraps an existing word buffer as a static row view.
// The buffer must be at least StaticHeaderWords+N() words long.
func NewStaticRow(words []uint32) StaticRow { return StaticRow{Words: words} }

// N returns the number of populated synapses in the row.
func (r StaticRow) N() int { return int(r.Words[0]) }

// SetN sets the populated synapse count.
func (r StaticRow) SetN(n int) { r.Words[0] = uint32(n) }

// DelayExtTick returns the delay-extension target tick offset
// (0 = no delay extension for this row).
func (r StaticRow) DelayExtTick() uint32 { return r.Words[1] }

// SetDelayExtTick sets the delay-extension target tick offset.
func (r StaticRow) SetDelayExtTick(v uint32) { r.Words[1] = v }

// DelayExtLocator returns the row locator to replay through the
// delay-row buffer when DelayExtTick is non-zero.
func (r StaticRow) DelayExtLocator() uint32 { return r.Words[2] }

// SetDelayExtLocator sets the delay-extension row locator.
func (r StaticRow) SetDelayExtLocator(v uint32) { r.Words[2] = v }

// Synapse returns the i'th packed synaptic word, 0 <= i < N().
func (r StaticRow) Synapse(i int) uint32 { return r.Words[StaticHeaderWords+i] }

// SetSynapse sets the i'th packed synaptic word.
func (r StaticRow) SetSynapse(i int, word uint32) { r.Words[StaticHeaderWords+i] = word }

// PlasticRow is a typed cursor over a plastic (STDP) row buffer, per
// the canonical five-word header layout (spec.md §9: the five-word
// layout with separate last_update_tick and partial write-back is the
// design this specification describes; the legacy four-word header is
// not implemented).
type PlasticRow struct {
	Words       []uint32
	PreTraceLen int // pre-trace payload length, in words
}

// NewPlasticRow wraps an existing word buffer as a plastic row view
// with the given pre-trace payload length (words).
func NewPlasticRow(words []uint32, preTraceLen int) PlasticRow {
	return PlasticRow{Words: words, PreTraceLen: preTraceLen}
}

// N returns the number of populated synapses in the row.
func (r PlasticRow) N() int { return int(r.Words[0]) }

// SetN sets the populated synapse count.
func (r PlasticRow) SetN(n int) { r.Words[0] = uint32(n) }

// DelayExtTick returns the delay-extension target tick offset.
func (r PlasticRow) DelayExtTick() uint32 { return r.Words[1] }

// SetDelayExtTick sets the delay-extension target tick offset.
func (r PlasticRow) SetDelayExtTick(v uint32) { r.Words[1] = v }

// DelayExtLocator returns the delay-extension row locator.
func (r PlasticRow) DelayExtLocator() uint32 { return r.Words[2] }

// SetDelayExtLocator sets the delay-extension row locator.
func (r PlasticRow) SetDelayExtLocator(v uint32) { r.Words[2] = v }

// LastUpdateTick returns the tick at which this row was last applied.
func (r PlasticRow) LastUpdateTick() uint32 { return r.Words[3] }

// SetLastUpdateTick records the tick of the current application.
func (r PlasticRow) SetLastUpdateTick(v uint32) { r.Words[3] = v }

// LastPreTick returns the tick of the last pre-synaptic spike seen by
// this row.
func (r PlasticRow) LastPreTick() uint32 { return r.Words[4] }

// SetLastPreTick records the tick of the current pre-synaptic spike.
func (r PlasticRow) SetLastPreTick(v uint32) { r.Words[4] = v }

// PreTrace returns the raw pre-trace payload words; the caller's
// TimingDependence implementation marshals its own trace type to and
// from this slice.
func (r PlasticRow) PreTrace() []uint32 {
	return r.Words[PlasticHeaderWords : PlasticHeaderWords+r.PreTraceLen]
}

func (r PlasticRow) plasticBase() int { return PlasticHeaderWords + r.PreTraceLen }

// PlasticWord returns the i'th mutable plastic word, 0 <= i < N().
func (r PlasticRow) PlasticWord(i int) uint32 { return r.Words[r.plasticBase()+i] }

// SetPlasticWord overwrites the i'th plastic word in place.
func (r PlasticRow) SetPlasticWord(i int, word uint32) { r.Words[r.plasticBase()+i] = word }

func (r PlasticRow) controlBase() int { return r.plasticBase() + r.N() }

// ControlWord returns the i'th immutable control word, 0 <= i < N().
// The control region is never written back.
func (r PlasticRow) ControlWord(i int) uint32 { return r.Words[r.controlBase()+i] }

// WriteBackRegion returns the mutable tail of the row that a plastic
// kernel application must write back: the header tail starting at
// LastUpdateTick, the pre-trace payload, and the plastic region — not
// the control region.
func (r PlasticRow) WriteBackRegion() []uint32 {
	end := r.plasticBase() + r.N()
	return r.Words[3:end]
}
