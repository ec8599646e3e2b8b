package pipeline

import (
	"log"

	"github.com/sarchlab/mipssim/insts"
)

// doFetch implements spec.md §4.1's Fetch contract.
func (p *Pipeline) doFetch() {
	if p.state.Decode != nil {
		return
	}

	word, done := p.ICache.Access(p.cycle, p.state.PC, false, 0, 4)
	if !done {
		return
	}

	op := newPipeOp(p.state.PC, word)
	p.state.PC += 4
	p.state.Decode = &op
	p.state.Fetched++
}

// doDecode implements spec.md §4.1's Decode contract.
func (p *Pipeline) doDecode() {
	if p.state.Execute != nil {
		return
	}
	if p.state.Decode == nil {
		return
	}

	op := *p.state.Decode
	p.state.Decode = nil

	if op.IsUnknown {
		log.Printf("unknown opcode at pc=%#08x: raw=%#08x", op.PC, op.Raw)
	}

	if op.RS != -1 {
		op.RSVal = p.state.Regs.Read(op.RS)
	}
	if op.RT != -1 {
		op.RTVal = p.state.Regs.Read(op.RT)
	}

	switch op.Op {
	case insts.OpJ:
		op.BranchTaken = true
		op.BranchDest = (op.PC & 0xF0000000) | (target(op) << 2)
	case insts.OpJAL:
		op.BranchTaken = true
		op.BranchDest = (op.PC & 0xF0000000) | (target(op) << 2)
		op.RD = 31
		op.RDVal = op.PC + 4
		op.RDValReady = true
		op.Link = true
	case insts.OpBLTZAL, insts.OpBGEZAL:
		// Unlike J/JAL, whether the branch itself is taken is only
		// known at Execute (it depends on rs), but BLTZAL/BGEZAL write
		// $31 unconditionally, so the link happens here regardless.
		op.RDVal = op.PC + 4
		op.RDValReady = true
		op.Link = true
	}

	p.state.Execute = &op
}

func target(op PipeOp) uint32 {
	return op.Raw & 0x3FFFFFF
}

// doExecute implements spec.md §4.1's Execute contract.
func (p *Pipeline) doExecute(memSnapshot, wbSnapshot *PipeOp) {
	if p.state.MultiplierStall > 0 {
		p.state.MultiplierStall--
	}

	if p.state.Mem != nil {
		return
	}
	if p.state.Execute == nil {
		return
	}

	op := *p.state.Execute

	rs := p.bypass(op.RS, op.RSVal, memSnapshot, wbSnapshot)
	if rs.stall {
		return
	}
	rt := p.bypass(op.RT, op.RTVal, memSnapshot, wbSnapshot)
	if rt.stall {
		return
	}

	if isMultDivStallSensitive(op.Op) && p.state.MultiplierStall > 0 {
		return
	}

	p.state.Execute = nil
	p.executeOp(&op, rs.value, rt.value)
	p.state.Mem = &op
}

func isMultDivStallSensitive(op insts.Op) bool {
	switch op {
	case insts.OpMFHI, insts.OpMTHI, insts.OpMFLO, insts.OpMTLO:
		return true
	}
	return false
}

type bypassResult struct {
	value uint32
	stall bool
}

// bypass implements the three-tier forwarding priority from
// spec.md §4.1: the op one stage ahead (mem), then two stages ahead
// (wb), then the register file. Register 0 always resolves to 0.
// If the mem-stage op is the match but its destination value is not
// yet ready, the caller must stall.
func (p *Pipeline) bypass(reg int, regFileVal uint32, memOp, wbOp *PipeOp) bypassResult {
	if reg <= 0 {
		return bypassResult{value: 0}
	}

	if memOp != nil && memOp.RD == reg {
		if !memOp.RDValReady {
			return bypassResult{stall: true}
		}
		return bypassResult{value: memOp.RDVal}
	}

	if wbOp != nil && wbOp.RD == reg {
		return bypassResult{value: wbOp.RDVal}
	}

	return bypassResult{value: regFileVal}
}

// doMem implements spec.md §4.1's Memory contract.
func (p *Pipeline) doMem() {
	if p.state.WB != nil {
		return
	}
	if p.state.Mem == nil {
		return
	}

	op := *p.state.Mem

	if op.IsMem {
		if op.MemWrite {
			_, done := p.DCache.Access(p.cycle, op.MemAddr, true, op.MemValue, storeSize(op.Op))
			if !done {
				return
			}
		} else {
			wordAddr := op.MemAddr &^ 0x3
			data, done := p.DCache.Access(p.cycle, wordAddr, false, 0, 4)
			if !done {
				return
			}
			op.RDVal = loadExtend(op.Op, data, op.MemAddr)
			op.RDValReady = true
		}
	}

	p.state.Mem = nil
	p.state.WB = &op
}

// storeSize returns the store's width in bytes, per spec.md §4.1's
// Memory stage contract ("read-modify-write the aligned word" for a
// store narrower than a full word).
func storeSize(op insts.Op) int {
	switch op {
	case insts.OpSB:
		return 1
	case insts.OpSH:
		return 2
	default: // OpSW
		return 4
	}
}

func loadExtend(op insts.Op, word uint32, addr uint32) uint32 {
	lowBits := addr & 0x3
	switch op {
	case insts.OpLB:
		b := byte(word >> (lowBits * 8))
		return uint32(int32(int8(b)))
	case insts.OpLBU:
		return uint32(word>>(lowBits*8)) & 0xFF
	case insts.OpLH:
		h := uint16(word >> ((lowBits &^ 1) * 8))
		return uint32(int32(int16(h)))
	case insts.OpLHU:
		return uint32(word>>((lowBits&^1)*8)) & 0xFFFF
	default: // OpLW
		return word
	}
}

// doWB implements spec.md §4.1's Writeback contract.
func (p *Pipeline) doWB() {
	if p.state.WB == nil {
		return
	}

	op := p.state.WB
	p.state.WB = nil

	if op.RD > 0 && op.RD <= 31 {
		p.state.Regs.Write(op.RD, op.RDVal)
	}

	if op.Op == insts.OpSYSCALL && p.Syscall != nil {
		p.Syscall.HandleSyscall(op)
	}

	p.state.Retired++
}
