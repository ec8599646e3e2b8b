package pipeline

import "github.com/sarchlab/mipssim/emu"

// MemPort is the interface the pipeline uses to reach its L1
// instruction and data caches. *cache.L1 implements this directly.
// size is the access width in bytes (1/2/4 for a byte/halfword/word
// store; ignored for reads, which always return the full aligned
// word).
type MemPort interface {
	Access(cycle uint64, addr uint32, isWrite bool, writeData uint32, size int) (uint32, bool)
}

// SyscallHandler is implemented by the owning core to dispatch the
// three syscall families named in spec.md §4.2.
type SyscallHandler interface {
	HandleSyscall(op *PipeOp)
}

// Pipeline is the per-core in-order five-stage pipeline described in
// spec.md §4.1.
type Pipeline struct {
	state *State

	ICache  MemPort
	DCache  MemPort
	Syscall SyscallHandler

	cycle uint64
}

// New creates a Pipeline with the given register file, starting fetch
// at pc, talking to the given L1 instruction/data cache ports.
func New(regs *emu.RegisterFile, pc uint32, icache, dcache MemPort) *Pipeline {
	return &Pipeline{
		state:  NewState(regs, pc),
		ICache: icache,
		DCache: dcache,
	}
}

// SetPC forces the program counter, used by core spawn handling.
func (p *Pipeline) SetPC(pc uint32) {
	p.state.PC = pc
}

// PC returns the current program counter.
func (p *Pipeline) PC() uint32 {
	return p.state.PC
}

// Regs exposes the register file for inspection (rdump) and syscall
// handling.
func (p *Pipeline) Regs() *emu.RegisterFile {
	return p.state.Regs
}

// Recover schedules a branch recovery from outside the pipeline; it is
// applied at the end of the next Cycle, like one scheduled by Execute.
func (p *Pipeline) Recover(flushDepth int, dest uint32) {
	p.state.scheduleRecover(flushDepth, dest)
}

// Cycle advances every stage by one clock tick, in the reverse stage
// order spec.md §4.1 requires (wb, mem, execute, decode, fetch), then
// applies any scheduled branch recovery.
//
// Bypass lookups in Execute use a snapshot of the Mem/WB slots taken
// at the start of the cycle rather than their live, already-mutated
// values: by the time Execute runs, Mem and WB have already moved
// their ops forward this same tick (that is what makes the reverse
// order correctly propagate stalls in a single pass), so reading the
// live slots would see the wrong generation of data. The snapshot
// gives Execute the combinational view a real forwarding unit would
// have — the op one stage ahead and two stages ahead, as they stood
// at the top of this cycle.
func (p *Pipeline) Cycle(cycle uint64) {
	p.cycle = cycle

	memSnapshot := p.state.Mem
	wbSnapshot := p.state.WB

	p.doWB()
	p.doMem()
	p.doExecute(memSnapshot, wbSnapshot)
	p.doDecode()
	p.doFetch()

	p.state.applyRecover()
}

// Counters returns the fetched/retired/squashed counts spec.md §8
// names as testable invariants.
func (p *Pipeline) Counters() (fetched, retired, squashed uint64) {
	return p.state.Fetched, p.state.Retired, p.state.Squashed
}
