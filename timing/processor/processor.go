// Package processor ties the per-core models, the shared L2, and DRAM
// together into the global cycle loop described in spec.md §4.6. The
// teacher repo has no multicore orchestration of its own (it models a
// single M2 core); this package is new, grounded on the teacher's
// Core/Pipeline wiring style but generalized to NUM_CORES cores
// sharing one memory hierarchy.
package processor

import (
	"io"

	"github.com/sarchlab/mipssim/emu"
	"github.com/sarchlab/mipssim/timing/cache"
	"github.com/sarchlab/mipssim/timing/core"
	"github.com/sarchlab/mipssim/timing/dram"
	"github.com/sarchlab/mipssim/timing/latency"
)

// Processor owns every core, the shared L2, and DRAM, per spec.md §3's
// ownership hierarchy.
type Processor struct {
	Config *latency.Config
	Memory *emu.Memory

	cores []*core.Core
	l2    *cache.L2
	dram  *dram.DRAM

	cycle uint64
}

// New builds a Processor with Config.NumCores cores, all starting
// fetch at pc, sharing mem through the configured L2/DRAM hierarchy.
// Diagnostic syscall output (OUT (CPU n): ...) is written to out.
func New(cfg *latency.Config, mem *emu.Memory, pc uint32, out io.Writer) *Processor {
	p := &Processor{
		Config: cfg,
		Memory: mem,
		l2:     cache.NewL2(cfg),
		dram:   dram.New(cfg, mem),
	}

	p.cores = make([]*core.Core, cfg.NumCores)
	for i := 0; i < cfg.NumCores; i++ {
		regs := &emu.RegisterFile{}
		icache := cache.NewL1(cfg.L1ISets, cfg.L1IWays, cfg, p.l2)
		dcache := cache.NewL1(cfg.L1DSets, cfg.L1DWays, cfg, p.l2)
		p.cores[i] = core.New(i, regs, pc, icache, dcache, p, out)
	}

	return p
}

// Core implements core.Siblings.
func (p *Processor) Core(id int) *core.Core {
	if id < 0 || id >= len(p.cores) {
		return nil
	}
	return p.cores[id]
}

// NumCores implements core.Siblings.
func (p *Processor) NumCores() int { return len(p.cores) }

// Cycle advances the whole system by one clock tick, in the exact
// order spec.md §4.6 specifies: DRAM completion delivery to L2, L2
// queue draining (which can fill L1s), then every core's pipeline
// tick, then the cycle counter increments.
func (p *Processor) Cycle() {
	if completed, ok := p.dram.Execute(p.cycle); ok {
		if completed.Source == dram.SourceDemand {
			p.l2.HandleDRAMCompletion(p.cycle, completed.Addr, completed.Data)
		}
	}

	p.l2.Cycle(p.cycle, p.dram)

	for _, c := range p.cores {
		c.Cycle(p.cycle)
	}

	p.cycle++
}

// CycleCount returns the number of completed cycles.
func (p *Processor) CycleCount() uint64 { return p.cycle }

// ActiveCoreCount returns how many cores still have Running set, for
// the `go` shell command's loop condition (spec.md §6).
func (p *Processor) ActiveCoreCount() int {
	n := 0
	for _, c := range p.cores {
		if c.Running {
			n++
		}
	}
	return n
}

// L2Stats returns the shared L2's hit/miss counters.
func (p *Processor) L2Stats() cache.Statistics { return p.l2.Stats() }

// CoreStats returns the requested core's I/D cache statistics.
func (p *Processor) CoreStats(id int) (icache, dcache cache.Statistics) {
	c := p.Core(id)
	if c == nil {
		return cache.Statistics{}, cache.Statistics{}
	}
	return c.ICache.Stats(), c.DCache.Stats()
}

// Counters returns the requested core's fetched/retired/squashed
// counts.
func (p *Processor) Counters(id int) (fetched, retired, squashed uint64) {
	c := p.Core(id)
	if c == nil {
		return 0, 0, 0
	}
	return c.Pipeline.Counters()
}
