// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config parses the shared-store configuration blob (spec.md
// §6): a region table at the module's base address, each entry
// pointing at a length-prefixed region body. Unknown regions are
// skipped without error, matching firmware-style forward
// compatibility.
package config

import (
	"encoding/binary"
	"fmt"
	"strings"

	"cogentcore.org/core/base/errors"
	"github.com/c2h5oh/datasize"
)

// RegionID identifies one of the recognised configuration regions
// (spec.md §6).
type RegionID uint32

const (
	RegionSystem RegionID = iota + 1
	RegionKeyLookup
	RegionSynapticMatrix
	RegionPlasticityData
	RegionOutputBuffer
	RegionSpikeRecording
	RegionPoissonSource
)

func (id RegionID) String() string {
	switch id {
	case RegionSystem:
		return "System"
	case RegionKeyLookup:
		return "KeyLookup"
	case RegionSynapticMatrix:
		return "SynapticMatrix"
	case RegionPlasticityData:
		return "PlasticityData"
	case RegionOutputBuffer:
		return "OutputBuffer"
	case RegionSpikeRecording:
		return "SpikeRecording"
	case RegionPoissonSource:
		return "PoissonSource"
	default:
		return fmt.Sprintf("Unknown(%d)", uint32(id))
	}
}

// tableEntry is one row of the region table: a region ID and the byte
// offset of its length-prefixed body within the blob.
type tableEntry struct {
	id     RegionID
	offset uint32
}

// Region is one decoded region's raw body, sized by its length prefix.
type Region struct {
	ID   RegionID
	Body []byte
}

// Blob is the parsed configuration: every region the table named,
// recognised or not (unrecognised ones are never decoded further, but
// their footprint still counts toward TotalSize).
type Blob struct {
	Regions   []Region
	TotalSize datasize.ByteSize
}

// Parse reads the region table at the start of data and resolves each
// entry's length-prefixed body. A region-length overrun or a
// truncated table entry is a config-invalid fatal error (spec.md §7).
func Parse(data []byte) (*Blob, error) {
	if len(data) < 4 {
		return nil, errors.Log(fmt.Errorf("config: blob too short for region count"))
	}
	count := binary.LittleEndian.Uint32(data[0:4])
	entries := make([]tableEntry, count)
	pos := 4
	for i := uint32(0); i < count; i++ {
		if pos+8 > len(data) {
			return nil, errors.Log(fmt.Errorf("config: region table entry %d truncated", i))
		}
		entries[i] = tableEntry{
			id:     RegionID(binary.LittleEndian.Uint32(data[pos : pos+4])),
			offset: binary.LittleEndian.Uint32(data[pos+4 : pos+8]),
		}
		pos += 8
	}

	b := &Blob{}
	for _, e := range entries {
		if uint64(e.offset)+4 > uint64(len(data)) {
			return nil, errors.Log(fmt.Errorf("config: region %s offset %d out of range", e.id, e.offset))
		}
		length := binary.LittleEndian.Uint32(data[e.offset : e.offset+4])
		start := uint64(e.offset) + 4
		end := start + uint64(length)
		if end > uint64(len(data)) {
			return nil, errors.Log(fmt.Errorf("config: region %s length %d overruns blob", e.id, length))
		}
		body := data[start:end]
		b.Regions = append(b.Regions, Region{ID: e.id, Body: body})
		b.TotalSize += datasize.ByteSize(len(body))
	}
	return b, nil
}

// Find returns the first region with the given ID, or nil if absent.
func (b *Blob) Find(id RegionID) *Region {
	for i := range b.Regions {
		if b.Regions[i].ID == id {
			return &b.Regions[i]
		}
	}
	return nil
}

// Report returns a string summarizing every region's size and the
// blob's total footprint, mirroring leabra.Network.SizeReport's
// per-entity-then-total layout and its
// datasize.ByteSize(...).HumanReadable() formatting.
func (b *Blob) Report() string {
	var s strings.Builder
	for _, r := range b.Regions {
		fmt.Fprintf(&s, "%16s:\t %v\n", r.ID, datasize.ByteSize(len(r.Body)).HumanReadable())
	}
	fmt.Fprintf(&s, "\n%16s:\t %v\n", "Total", b.TotalSize.HumanReadable())
	return s.String()
}
