// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// gensynmatrix builds an offline synaptic matrix image (spec.md §4.K)
// and writes it as a little-endian word stream, suitable for loading
// into the SynapticMatrix configuration region.
package main

import (
	"encoding/binary"
	"flag"
	"log"
	"math/rand"
	"os"

	"github.com/c2h5oh/datasize"
	"github.com/emer/emergent/v2/erand"
	"github.com/rigsim/synrow/genmatrix"
	"github.com/rigsim/synrow/row"
)

func main() {
	numRows := flag.Int("rows", 100, "number of pre-synaptic rows to generate")
	maxRowSynapses := flag.Int("maxsyn", 64, "maximum synapses per row (fixed row stride)")
	numPost := flag.Int("numpost", 100, "number of post-synaptic neurons")
	weightFixedPoint := flag.Uint("wfp", 19, "weight field width in bits (fixed-point scale = 2^wfp)")
	delay := flag.Uint("delay", 1, "constant synaptic delay in ticks")
	seed := flag.Int64("seed", 1, "PRNG seed")
	weightMean := flag.Float64("wmean", 0.5, "weight distribution mean")
	weightVar := flag.Float64("wvar", 0.25, "weight distribution variance")
	outPath := flag.String("out", "synmatrix.bin", "output file path")
	flag.Parse()

	wtInit := erand.RndParams{Dist: erand.Uniform, Mean: float32(*weightMean), Var: float32(*weightVar)}

	stride := row.StaticHeaderWords + *maxRowSynapses
	out := make([]uint32, *numRows*stride)
	written := genmatrix.Generate(out, *numRows, *maxRowSynapses, *weightFixedPoint, *numPost,
		genmatrix.UniformRandomConnector{},
		genmatrix.ConstantDelayGenerator{Delay: uint32(*delay)},
		&genmatrix.RandWeightGenerator{RndParams: wtInit},
		rand.New(rand.NewSource(*seed)))

	buf := make([]byte, written*4)
	for i, w := range out[:written] {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], w)
	}
	if err := os.WriteFile(*outPath, buf, 0o644); err != nil {
		log.Fatalf("gensynmatrix: writing %s: %v", *outPath, err)
	}
	log.Printf("gensynmatrix: wrote %d rows (%s) to %s", *numRows, datasize.ByteSize(len(buf)).HumanReadable(), *outPath)
}
