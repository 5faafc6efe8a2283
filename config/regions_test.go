// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"encoding/binary"
	"math"
	"strings"
	"testing"
)

// blobBuilder assembles a region-table blob for tests.
type blobBuilder struct {
	regions []struct {
		id   RegionID
		body []byte
	}
}

func (bb *blobBuilder) add(id RegionID, body []byte) {
	bb.regions = append(bb.regions, struct {
		id   RegionID
		body []byte
	}{id, body})
}

func (bb *blobBuilder) build() []byte {
	var bodies [][]byte
	offsets := make([]uint32, len(bb.regions))

	headerLen := 4 + 8*len(bb.regions)
	pos := uint32(headerLen)
	for i, r := range bb.regions {
		offsets[i] = pos
		lenPrefixed := make([]byte, 4+len(r.body))
		binary.LittleEndian.PutUint32(lenPrefixed[0:4], uint32(len(r.body)))
		copy(lenPrefixed[4:], r.body)
		bodies = append(bodies, lenPrefixed)
		pos += uint32(len(lenPrefixed))
	}

	out := make([]byte, headerLen)
	binary.LittleEndian.PutUint32(out[0:4], uint32(len(bb.regions)))
	for i, r := range bb.regions {
		base := 4 + i*8
		binary.LittleEndian.PutUint32(out[base:base+4], uint32(r.id))
		binary.LittleEndian.PutUint32(out[base+4:base+8], offsets[i])
	}
	for _, b := range bodies {
		out = append(out, b...)
	}
	return out
}

func u32le(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func TestParseAndFindRegions(t *testing.T) {
	var bb blobBuilder
	sysBody := append(append(u32le(1000), u32le(50)...), u32le(16)...)
	bb.add(RegionSystem, sysBody)
	bb.add(RegionID(999), []byte{1, 2, 3, 4}) // unknown region, must not error

	data := bb.build()
	blob, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(blob.Regions) != 2 {
		t.Fatalf("want 2 regions, got %d", len(blob.Regions))
	}

	sys := blob.Find(RegionSystem)
	if sys == nil {
		t.Fatalf("System region not found")
	}
	got, err := DecodeSystem(sys.Body)
	if err != nil {
		t.Fatalf("DecodeSystem: %v", err)
	}
	if got.TimerPeriodUs != 1000 || got.SimulationTicks != 50 || got.AppWordSlots != 16 {
		t.Fatalf("unexpected System: %+v", got)
	}

	if blob.Find(RegionKeyLookup) != nil {
		t.Fatalf("want no KeyLookup region present")
	}
}

func TestParseRejectsOverrun(t *testing.T) {
	data := make([]byte, 4+8)
	binary.LittleEndian.PutUint32(data[0:4], 1)
	binary.LittleEndian.PutUint32(data[4:8], 1) // region id
	binary.LittleEndian.PutUint32(data[8:12], 12) // offset way out of range
	if _, err := Parse(data); err == nil {
		t.Fatalf("want error for out-of-range offset")
	}
}

func TestParseRejectsLengthOverrun(t *testing.T) {
	data := make([]byte, 4+8+4)
	binary.LittleEndian.PutUint32(data[0:4], 1)
	binary.LittleEndian.PutUint32(data[4:8], 1)  // region id
	binary.LittleEndian.PutUint32(data[8:12], 12) // offset of length word
	binary.LittleEndian.PutUint32(data[12:16], 1000) // claims 1000 bytes follow, but none do
	if _, err := Parse(data); err == nil {
		t.Fatalf("want error for length overrun")
	}
}

func TestDecodeKeyLookupRangesRoundTrip(t *testing.T) {
	body := make([]byte, 0, 32)
	appendRange := func(keyMin, keyMax, addr, stride uint32) {
		body = append(body, u32le(keyMin)...)
		body = append(body, u32le(keyMax)...)
		body = append(body, u32le(addr)...)
		body = append(body, u32le(stride)...)
	}
	appendRange(0, 9, 0x1000, 1027)
	appendRange(10, 19, 0x2000, 1027)

	tbl, err := BuildKeyLookupTable(body)
	if err != nil {
		t.Fatalf("BuildKeyLookupTable: %v", err)
	}
	loc, ok := tbl.Resolve(15)
	if !ok || loc.Address != 0x2000 {
		t.Fatalf("want key 15 to resolve to 0x2000, got %+v ok=%v", loc, ok)
	}
}

func TestBlobReportIncludesRegionsAndTotal(t *testing.T) {
	var bb blobBuilder
	bb.add(RegionSystem, append(append(u32le(1000), u32le(50)...), u32le(16)...))
	bb.add(RegionOutputBuffer, append(u32le(0x4000), u32le(256)...))

	blob, err := Parse(bb.build())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	report := blob.Report()
	if !strings.Contains(report, "System") || !strings.Contains(report, "OutputBuffer") || !strings.Contains(report, "Total") {
		t.Fatalf("Report missing expected sections: %q", report)
	}
}

func TestDecodePlasticityData(t *testing.T) {
	f32 := func(v float32) []byte { return u32le(math.Float32bits(v)) }
	var body []byte
	for _, v := range []float32{0, 1, 65535, 20, 1, 20, 1} {
		body = append(body, f32(v)...)
	}
	pd, err := DecodePlasticityData(body)
	if err != nil {
		t.Fatalf("DecodePlasticityData: %v", err)
	}
	if pd.WeightMax != 1 || pd.TauPlus != 20 {
		t.Fatalf("unexpected PlasticityData: %+v", pd)
	}
}
