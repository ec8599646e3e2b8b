// Package core provides the per-core model described in spec.md
// §4.2: a pipeline plus its two private L1 caches, a running flag,
// and syscall-driven spawn/halt/print handling.
package core

import (
	"fmt"
	"io"

	"github.com/sarchlab/mipssim/emu"
	"github.com/sarchlab/mipssim/timing/cache"
	"github.com/sarchlab/mipssim/timing/pipeline"
)

// Siblings lets a core reach the other cores it can spawn, without
// owning them — the Processor implements this, per the non-owning
// back-reference design note in spec.md §9.
type Siblings interface {
	Core(id int) *Core
	NumCores() int
}

// Core owns one pipeline and its two L1 caches.
type Core struct {
	ID      int
	Running bool

	Pipeline *pipeline.Pipeline
	ICache   *cache.L1
	DCache   *cache.L1

	siblings Siblings
	out      io.Writer
}

// New builds a Core. Core 0 starts running; every other core starts
// idle, per spec.md §4.2.
func New(id int, regs *emu.RegisterFile, pc uint32, icache, dcache *cache.L1, siblings Siblings, out io.Writer) *Core {
	c := &Core{
		ID:       id,
		Running:  id == 0,
		ICache:   icache,
		DCache:   dcache,
		siblings: siblings,
		out:      out,
	}
	c.Pipeline = pipeline.New(regs, pc, icache, dcache)
	c.Pipeline.Syscall = c
	return c
}

// Cycle ticks this core's pipeline if it is running.
func (c *Core) Cycle(cycle uint64) {
	if !c.Running {
		return
	}
	c.Pipeline.Cycle(cycle)
}

const (
	syscallSpawnMin = 0x01
	syscallSpawnMax = 0x03
	syscallHalt     = 0x0A
	syscallPrint    = 0x0B
)

// HandleSyscall implements spec.md §4.2's syscall dispatch, reading
// v0 from the op's first source value.
func (c *Core) HandleSyscall(op *pipeline.PipeOp) {
	v0 := op.RSVal
	v1 := op.RTVal

	switch {
	case v0 == syscallHalt:
		c.Pipeline.SetPC(op.PC)
		c.Running = false

	case v0 == syscallPrint:
		fmt.Fprintf(c.out, "OUT (CPU %d): %08x\n", c.ID, v1)

	case v0 >= syscallSpawnMin && v0 <= syscallSpawnMax:
		c.spawn(int(v0), op)
	}
}

func (c *Core) spawn(targetID int, op *pipeline.PipeOp) {
	if c.siblings == nil || targetID == c.ID {
		return
	}
	target := c.siblings.Core(targetID)
	if target == nil || target.Running {
		return
	}

	target.Pipeline.SetPC(op.PC + 4)
	target.Pipeline.Regs().Write(3, 1) // $v1 = 1 on the spawned core
	c.Pipeline.Regs().Write(3, 0)      // $v1 = 0 on the spawning core
	target.Running = true
}
