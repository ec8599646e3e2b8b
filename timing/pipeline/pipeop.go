// Package pipeline implements the in-order five-stage MIPS pipeline
// described in spec.md §4.1: fetch, decode, execute, mem, wb, with
// stall/bypass/branch-recovery semantics driven by a single global
// clock.
package pipeline

import "github.com/sarchlab/mipssim/insts"

// PipeOp is the single op type that travels between the pipeline's
// four named stage slots (decode, execute, mem, wb), per spec.md §3.
// Unlike the teacher's per-stage IFID/IDEX/EXMEM/MEMWB register types,
// spec.md specifies one op moving between slots rather than
// structurally different registers per stage — this simplification is
// the spec's own design, not a shortcoming carried over from the
// teacher.
type PipeOp struct {
	PC  uint32
	Raw uint32
	Op  insts.Op

	RS, RT int // source register indices, -1 if none
	RSVal  uint32
	RTVal  uint32

	RD         int // destination register index, -1 if none
	RDVal      uint32
	RDValReady bool

	Shamt uint32
	Imm16 uint32
	SEImm int32

	IsMem     bool
	MemWrite  bool
	MemAddr   uint32
	MemValue  uint32 // store data in; load data out after Mem stage

	IsBranch     bool
	BranchCond   bool
	BranchTaken  bool
	BranchDest   uint32
	Link         bool

	IsUnknown bool
}

// newPipeOp builds a PipeOp from a freshly fetched word, wiring in the
// decoder's output.
//
// insts.Decode leaves the destination register of a load and of a
// register-immediate ALU op (ADDI..LUI) in Rt (MIPS encodes it there)
// and Rd at -1. The pipeline's WB stage only ever writes op.RD, so
// these ops are normalized here to carry their destination in RD like
// every other op; RT is cleared since they have no second source
// operand, which also keeps the bypass unit from stalling on a false
// RAW hazard against the op's own destination register.
func newPipeOp(pc uint32, word uint32) PipeOp {
	d := insts.Decode(word)
	op := PipeOp{
		PC:        pc,
		Raw:       word,
		Op:        d.Op,
		RS:        d.Rs,
		RT:        d.Rt,
		RD:        d.Rd,
		Shamt:     d.Shamt,
		Imm16:     d.Imm16,
		SEImm:     d.SEImm,
		IsMem:     d.IsMem,
		MemWrite:  d.MemWrite,
		IsBranch:  d.IsBranch,
		IsUnknown: d.IsUnknown,
	}

	switch op.Op {
	case insts.OpLB, insts.OpLBU, insts.OpLH, insts.OpLHU, insts.OpLW,
		insts.OpADDI, insts.OpADDIU, insts.OpSLTI, insts.OpSLTIU,
		insts.OpANDI, insts.OpORI, insts.OpXORI, insts.OpLUI:
		op.RD = d.Rt
		op.RT = -1
	}

	return op
}
