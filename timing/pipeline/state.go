package pipeline

import "github.com/sarchlab/mipssim/emu"

// recoveryState is the branch-recovery triple from spec.md §3:
// pending, destination, and how many stage slots to flush.
type recoveryState struct {
	pending    bool
	dest       uint32
	flushDepth int
}

// State is the per-core pipeline state described in spec.md §3: four
// stage slots, the register file, HI/LO, PC, the multiplier/divider
// stall counter, and the branch-recovery triple.
type State struct {
	Regs *emu.RegisterFile
	PC   uint32

	MultiplierStall int

	Decode  *PipeOp
	Execute *PipeOp
	Mem     *PipeOp
	WB      *PipeOp

	recover recoveryState

	Fetched  uint64
	Retired  uint64
	Squashed uint64
}

// NewState creates pipeline state with the given register file,
// starting fetch at pc.
func NewState(regs *emu.RegisterFile, pc uint32) *State {
	return &State{Regs: regs, PC: pc}
}

// scheduleRecover latches a branch recovery. Per spec.md §4.1, a
// later-stage requester yields to an already-pending one: "multiple
// pending recoveries are resolved by keeping only the earlier
// (already-set) one". This also makes invoking recovery twice in one
// cycle with the same target idempotent, per spec.md §8's law.
func (s *State) scheduleRecover(flushDepth int, dest uint32) {
	if s.recover.pending {
		return
	}
	s.recover = recoveryState{pending: true, dest: dest, flushDepth: flushDepth}
}

// applyRecover runs at the end of a cycle, after all five stages have
// executed. It resteers PC and flushes the prefix of slots named by
// flushDepth: 2 flushes Decode only; 3 adds Execute; 4 adds Mem; 5
// adds WB.
func (s *State) applyRecover() {
	if !s.recover.pending {
		return
	}

	s.PC = s.recover.dest

	slots := []**PipeOp{&s.Decode, &s.Execute, &s.Mem, &s.WB}
	count := s.recover.flushDepth - 1
	if count > len(slots) {
		count = len(slots)
	}
	for i := 0; i < count; i++ {
		if *slots[i] != nil {
			s.Squashed++
			*slots[i] = nil
		}
	}

	s.recover = recoveryState{}
}
