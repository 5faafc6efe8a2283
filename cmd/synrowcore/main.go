// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// synrowcore is a host-side reference implementation of one
// synapse-processing core (spec.md §4.J): it loads a configuration
// blob, wires the ring buffer, spike queue, delay-row buffer and key
// lookup table, and drives sched.Simulation's cooperative tick loop
// against an in-memory stand-in for the shared off-chip store.
package main

import (
	"encoding/binary"
	"flag"
	"log"
	"os"

	"github.com/rigsim/synrow/config"
	"github.com/rigsim/synrow/delayrow"
	"github.com/rigsim/synrow/history"
	"github.com/rigsim/synrow/kernel"
	"github.com/rigsim/synrow/plasticity"
	"github.com/rigsim/synrow/ring"
	"github.com/rigsim/synrow/row"
	"github.com/rigsim/synrow/sched"
	"github.com/rigsim/synrow/spikequeue"
)

func main() {
	configPath := flag.String("config", "", "path to the configuration blob (spec.md §6)")
	plastic := flag.Bool("plastic", false, "process rows with the additive/nearest-pair/weight-only plastic kernel instead of the static kernel")
	delayBits := flag.Uint("delaybits", 6, "ring buffer and delay-row buffer depth, as log2(slots)")
	queueCapacity := flag.Int("queuecap", 1024, "spike queue capacity")
	delayRowCapacity := flag.Int("delayrowcap", 1024, "delay-row buffer capacity")
	historyCapacity := flag.Int("historycap", 16, "per-post spike-history ring depth")
	timeBudget := flag.Int("budget", 8, "maximum rows fetched per tick")
	flag.Parse()

	if *configPath == "" {
		log.Fatal("synrowcore: -config is required")
	}
	data, err := os.ReadFile(*configPath)
	if err != nil {
		log.Fatalf("synrowcore: reading config: %v", err)
	}
	blob, err := config.Parse(data)
	if err != nil {
		log.Fatalf("synrowcore: parsing config: %v", err)
	}

	sysRegion := blob.Find(config.RegionSystem)
	if sysRegion == nil {
		log.Fatal("synrowcore: config blob has no System region")
	}
	sys, err := config.DecodeSystem(sysRegion.Body)
	if err != nil {
		log.Fatalf("synrowcore: decoding System region: %v", err)
	}

	klRegion := blob.Find(config.RegionKeyLookup)
	if klRegion == nil {
		log.Fatal("synrowcore: config blob has no KeyLookup region")
	}
	lookup, err := config.BuildKeyLookupTable(klRegion.Body)
	if err != nil {
		log.Fatalf("synrowcore: building key lookup table: %v", err)
	}

	obRegion := blob.Find(config.RegionOutputBuffer)
	numPost := 256
	if obRegion != nil {
		ob, err := config.DecodeOutputBuffer(obRegion.Body)
		if err != nil {
			log.Fatalf("synrowcore: decoding OutputBuffer region: %v", err)
		}
		numPost = int(ob.Capacity)
	}

	smRegion := blob.Find(config.RegionSynapticMatrix)
	if smRegion == nil {
		log.Fatal("synrowcore: config blob has no SynapticMatrix region")
	}
	store := newWordStore(smRegion.Body)

	ringBuf := ring.NewBuffer(*delayBits, numPost)
	delayRows := delayrow.New(*delayBits, *delayRowCapacity)
	queue := spikequeue.New(*queueCapacity)

	var processor sched.RowProcessor
	if *plastic {
		pdRegion := blob.Find(config.RegionPlasticityData)
		if pdRegion == nil {
			log.Fatal("synrowcore: -plastic requires a PlasticityData region")
		}
		pd, err := config.DecodePlasticityData(pdRegion.Body)
		if err != nil {
			log.Fatalf("synrowcore: decoding PlasticityData region: %v", err)
		}
		processor = newPlasticProcessor(pd, ringBuf, delayRows, numPost, *historyCapacity)
	} else {
		processor = &staticProcessor{ring: ringBuf, delayRows: delayRows}
	}

	rowWords := row.StaticRowWords()
	if *plastic {
		rowWords = row.PlasticRowWords(plasticity.PreTraceWords)
	}
	sim := sched.NewSimulation(store, ringBuf, queue, delayRows, lookup, processor,
		rowWords, *timeBudget)
	sim.SimulationTicks = sys.SimulationTicks
	sim.OnRingDrain = func(tick uint32, deposits []uint32) {
		store.EmitPacket(tick, deposits)
	}

	log.Printf("synrowcore: config regions:\n%s", blob.Report())
	log.Printf("synrowcore: running %d ticks, %d post-synaptic columns, plastic=%v", sys.SimulationTicks, numPost, *plastic)
	sim.Run()
	log.Printf("synrowcore: final counters:\n%s", sim.Report())
	os.Exit(store.exitCode)
}

// staticProcessor adapts kernel.ApplyStaticRow to the RowProcessor
// seam; a static row never needs write-back.
type staticProcessor struct {
	ring      *ring.Buffer
	delayRows *delayrow.Buffer
}

func (s *staticProcessor) Process(buf []uint32, rowAddress, tick uint32, flush bool) ([]uint32, uint32, bool) {
	r := row.NewStaticRow(buf)
	kernel.ApplyStaticRow(r, tick,
		func(deliveryTick uint32, post int, w uint32) { s.ring.Add(deliveryTick, post, w) },
		func(target, locator uint32) { s.delayRows.Push(target, locator) })
	return nil, 0, false
}

// plasticProcessor adapts a monomorphised PlasticKernel to the
// RowProcessor seam. The concrete W/T/S instantiation is fixed at
// build time (spec.md §9); this binary always builds the
// additive/nearest-pair/weight-only combination. It does not use
// plasticity.BuildPolicy, whose default timing variant is PairTiming.
type plasticProcessor struct {
	kernel      *kernel.PlasticKernel[*plasticity.AdditiveWeightDependence, *plasticity.NearestPairTiming, *plasticity.WeightOnlyStructure]
	ring        *ring.Buffer
	delayRows   *delayrow.Buffer
	preTraceLen int
}

func newPlasticProcessor(pd config.PlasticityData, ringBuf *ring.Buffer, delayRows *delayrow.Buffer, numPost, historyCapacity int) *plasticProcessor {
	weight := &plasticity.AdditiveWeightDependence{}
	weight.ReadParams(pd.WeightMin, pd.WeightMax, pd.WeightScale)
	timing := &plasticity.NearestPairTiming{TimingParams: plasticity.TimingParams{
		TauPlus: pd.TauPlus, AmpPlus: pd.AmpPlus, TauMinus: pd.TauMinus, AmpMinus: pd.AmpMinus,
	}}
	synapse := &plasticity.WeightOnlyStructure{}
	synapse.ReadParams(pd.WeightMin, pd.WeightMax, pd.WeightScale)

	return &plasticProcessor{
		kernel: &kernel.PlasticKernel[*plasticity.AdditiveWeightDependence, *plasticity.NearestPairTiming, *plasticity.WeightOnlyStructure]{
			Weight: weight, Timing: timing, Synapse: synapse,
			History: history.New(historyCapacity, numPost),
		},
		ring:        ringBuf,
		delayRows:   delayRows,
		preTraceLen: plasticity.PreTraceWords,
	}
}

func (p *plasticProcessor) Process(buf []uint32, rowAddress, tick uint32, flush bool) ([]uint32, uint32, bool) {
	r := row.NewPlasticRow(buf, p.preTraceLen)
	var wb []uint32
	var dst uint32
	p.kernel.Apply(r, tick, flush,
		func(deliveryTick uint32, post int, w uint32) { p.ring.Add(deliveryTick, post, w) },
		func(target, locator uint32) { p.delayRows.Push(target, locator) },
		func(d uint32, src []uint32, n int) { dst = d; wb = src[:n] },
		rowAddress)
	return wb, dst, true
}

// wordStore is a reference Platform: the shared off-chip store
// modelled as a flat word array addressed by word index, with DMA
// transfers performed synchronously at issue time. A real core
// replaces this with an interrupt-driven DMA controller; this
// stand-in exists so the scheduler can be driven end to end without
// one.
type wordStore struct {
	words    []uint32
	exitCode int
}

func newWordStore(body []byte) *wordStore {
	words := make([]uint32, len(body)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(body[i*4 : i*4+4])
	}
	return &wordStore{words: words}
}

func (w *wordStore) EmitPacket(tick uint32, payload []uint32) {
	// Reference platform: packet emission is a log line, not a real
	// network transmit.
	nonZero := 0
	for _, v := range payload {
		if v != 0 {
			nonZero++
		}
	}
	if nonZero > 0 {
		log.Printf("synrowcore: tick %d: %d non-zero output deposits", tick, nonZero)
	}
}

// IssueDMARead and IssueDMAWrite address the store by word index, not
// byte offset, matching the KeyLookup region's RowWordStride and the
// matrix generator's word-count locators (spec.md §6).
func (w *wordStore) IssueDMARead(srcAddress uint32, dst []uint32) sched.DMAHandle {
	copy(dst, w.words[srcAddress:srcAddress+uint32(len(dst))])
	return doneHandle{}
}

func (w *wordStore) IssueDMAWrite(dstAddress uint32, src []uint32) sched.DMAHandle {
	copy(w.words[dstAddress:dstAddress+uint32(len(src))], src)
	return doneHandle{}
}

func (w *wordStore) ScheduleTimer(periodUs uint32) {}

// Exit records the requested code rather than terminating the process
// immediately, so main can print final diagnostics (sim.Report())
// before exiting.
func (w *wordStore) Exit(code int) {
	w.exitCode = code
}

// doneHandle reports completion immediately: wordStore performs every
// transfer synchronously at issue time.
type doneHandle struct{}

func (doneHandle) Done() bool { return true }
