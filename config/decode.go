// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/rigsim/synrow/keylookup"
)

// System holds the fields of the System region: timer period,
// simulation-tick count and the number of application-word slots
// (spec.md §6).
type System struct {
	TimerPeriodUs   uint32
	SimulationTicks uint32
	AppWordSlots    uint32
}

// DecodeSystem parses the System region body.
func DecodeSystem(body []byte) (System, error) {
	if len(body) < 12 {
		return System{}, fmt.Errorf("config: System region too short (%d bytes)", len(body))
	}
	return System{
		TimerPeriodUs:   binary.LittleEndian.Uint32(body[0:4]),
		SimulationTicks: binary.LittleEndian.Uint32(body[4:8]),
		AppWordSlots:    binary.LittleEndian.Uint32(body[8:12]),
	}, nil
}

// keyLookupEntryBytes is the on-disk size of one (KeyMin, KeyMax,
// BaseAddress, RowWordStride) locator entry.
const keyLookupEntryBytes = 16

// DecodeKeyLookupRanges parses the KeyLookup region body into the
// Range slice keylookup.Build expects.
func DecodeKeyLookupRanges(body []byte) ([]keylookup.Range, error) {
	if len(body)%keyLookupEntryBytes != 0 {
		return nil, fmt.Errorf("config: KeyLookup region length %d not a multiple of %d", len(body), keyLookupEntryBytes)
	}
	n := len(body) / keyLookupEntryBytes
	ranges := make([]keylookup.Range, n)
	for i := 0; i < n; i++ {
		e := body[i*keyLookupEntryBytes:]
		ranges[i] = keylookup.Range{
			KeyMin:        binary.LittleEndian.Uint32(e[0:4]),
			KeyMax:        binary.LittleEndian.Uint32(e[4:8]),
			BaseAddress:   binary.LittleEndian.Uint32(e[8:12]),
			RowWordStride: binary.LittleEndian.Uint32(e[12:16]),
		}
	}
	return ranges, nil
}

// BuildKeyLookupTable decodes and validates the KeyLookup region in
// one step.
func BuildKeyLookupTable(body []byte) (*keylookup.Table, error) {
	ranges, err := DecodeKeyLookupRanges(body)
	if err != nil {
		return nil, err
	}
	return keylookup.Build(ranges)
}

// PlasticityData holds the on-device timing- and weight-dependence
// parameters (spec.md §6); the build-time variant selection itself
// (which WeightDependence/TimingDependence/SynapseStructure to
// instantiate) is a host-side concern handled by
// plasticity.BuildPolicy against a params.Sheet, not by this region —
// this region supplies only the selected variants' numeric knobs.
type PlasticityData struct {
	WeightMin, WeightMax, WeightScale float32
	TauPlus, AmpPlus                 float32
	TauMinus, AmpMinus               float32
}

// DecodePlasticityData parses the PlasticityData region body: seven
// little-endian IEEE-754 float32 fields in the order the
// PlasticityData struct declares them.
func DecodePlasticityData(body []byte) (PlasticityData, error) {
	const n = 7
	if len(body) < n*4 {
		return PlasticityData{}, fmt.Errorf("config: PlasticityData region too short (%d bytes)", len(body))
	}
	f := make([]float32, n)
	for i := 0; i < n; i++ {
		f[i] = math.Float32frombits(binary.LittleEndian.Uint32(body[i*4 : i*4+4]))
	}
	return PlasticityData{
		WeightMin: f[0], WeightMax: f[1], WeightScale: f[2],
		TauPlus: f[3], AmpPlus: f[4],
		TauMinus: f[5], AmpMinus: f[6],
	}, nil
}

// OutputBuffer is the downstream ring-buffer mailbox location.
type OutputBuffer struct {
	BaseAddress uint32
	Capacity    uint32
}

// DecodeOutputBuffer parses the OutputBuffer region body.
func DecodeOutputBuffer(body []byte) (OutputBuffer, error) {
	if len(body) < 8 {
		return OutputBuffer{}, fmt.Errorf("config: OutputBuffer region too short (%d bytes)", len(body))
	}
	return OutputBuffer{
		BaseAddress: binary.LittleEndian.Uint32(body[0:4]),
		Capacity:    binary.LittleEndian.Uint32(body[4:8]),
	}, nil
}
