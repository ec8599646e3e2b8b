// Package insts provides MIPS-I instruction definitions and decoding.
//
// This is the external decoder collaborator named in spec.md §1: the
// timing core consumes instructions only through the Op/Instruction
// contract below, never through the raw opcode/funct bit fields
// directly.
package insts

// Op enumerates the instruction mnemonics this decoder recognizes.
// OpUnknown covers anything outside the MIPS-I integer subset listed
// in SPEC_FULL.md §4.2; it falls through with no side effects per
// spec.md §7.
type Op int

const (
	OpUnknown Op = iota
	OpNOP

	// ALU register-register (SPECIAL funct field).
	OpADD
	OpADDU
	OpSUB
	OpSUBU
	OpAND
	OpOR
	OpXOR
	OpNOR
	OpSLT
	OpSLTU
	OpSLL
	OpSRL
	OpSRA
	OpSLLV
	OpSRLV
	OpSRAV

	// ALU register-immediate.
	OpADDI
	OpADDIU
	OpSLTI
	OpSLTIU
	OpANDI
	OpORI
	OpXORI
	OpLUI

	// Multiply/divide and HI/LO moves.
	OpMULT
	OpMULTU
	OpDIV
	OpDIVU
	OpMFHI
	OpMTHI
	OpMFLO
	OpMTLO

	// Loads and stores.
	OpLB
	OpLBU
	OpLH
	OpLHU
	OpLW
	OpSB
	OpSH
	OpSW

	// Branches and jumps.
	OpBEQ
	OpBNE
	OpBLEZ
	OpBGTZ
	OpBLTZ
	OpBGEZ
	OpBLTZAL
	OpBGEZAL
	OpJ
	OpJAL
	OpJR
	OpJALR

	OpSYSCALL
)

// Instruction is the decoded representation of one 32-bit MIPS word.
// Field semantics follow spec.md §3's PipeOp description: indices are
// -1 when the field does not apply.
type Instruction struct {
	Raw    uint32
	Op     Op
	Rs     int // -1 if unused
	Rt     int // -1 if unused
	Rd     int // -1 if unused
	Shamt  uint32
	Imm16  uint32 // raw 16-bit immediate, unsigned
	SEImm  int32  // sign-extended Imm16
	Target uint32 // 26-bit jump target field

	IsBranch  bool
	IsMem     bool
	MemWrite  bool
	IsUnknown bool
}

// IsLoad reports whether the instruction reads memory.
func (i *Instruction) IsLoad() bool {
	return i.IsMem && !i.MemWrite
}

// IsStore reports whether the instruction writes memory.
func (i *Instruction) IsStore() bool {
	return i.IsMem && i.MemWrite
}
