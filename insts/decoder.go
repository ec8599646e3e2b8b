package insts

// MIPS-I opcode field values (bits 31:26).
const (
	opcodeSPECIAL = 0x00
	opcodeREGIMM  = 0x01
	opcodeJ       = 0x02
	opcodeJAL     = 0x03
	opcodeBEQ     = 0x04
	opcodeBNE     = 0x05
	opcodeBLEZ    = 0x06
	opcodeBGTZ    = 0x07
	opcodeADDI    = 0x08
	opcodeADDIU   = 0x09
	opcodeSLTI    = 0x0A
	opcodeSLTIU   = 0x0B
	opcodeANDI    = 0x0C
	opcodeORI     = 0x0D
	opcodeXORI    = 0x0E
	opcodeLUI     = 0x0F
	opcodeLB      = 0x20
	opcodeLH      = 0x21
	opcodeLW      = 0x23
	opcodeLBU     = 0x24
	opcodeLHU     = 0x25
	opcodeSB      = 0x28
	opcodeSH      = 0x29
	opcodeSW      = 0x2B
)

// SPECIAL (opcode 0) funct field values (bits 5:0).
const (
	functSLL     = 0x00
	functSRL     = 0x02
	functSRA     = 0x03
	functSLLV    = 0x04
	functSRLV    = 0x06
	functSRAV    = 0x07
	functJR      = 0x08
	functJALR    = 0x09
	functSYSCALL = 0x0C
	functMFHI    = 0x10
	functMTHI    = 0x11
	functMFLO    = 0x12
	functMTLO    = 0x13
	functMULT    = 0x18
	functMULTU   = 0x19
	functDIV     = 0x1A
	functDIVU    = 0x1B
	functADD     = 0x20
	functADDU    = 0x21
	functSUB     = 0x22
	functSUBU    = 0x23
	functAND     = 0x24
	functOR      = 0x25
	functXOR     = 0x26
	functNOR     = 0x27
	functSLT     = 0x2A
	functSLTU    = 0x2B
)

// REGIMM (opcode 1) rt field values.
const (
	regimmBLTZ   = 0x00
	regimmBGEZ   = 0x01
	regimmBLTZAL = 0x10
	regimmBGEZAL = 0x11
)

// Decode decodes a 32-bit MIPS instruction word. Unrecognized
// encodings produce an Instruction with Op == OpUnknown and
// IsUnknown == true; the caller (fetch/decode stage) is responsible
// for logging this, per spec.md §7 — the decoder itself never panics
// or reports an error.
func Decode(word uint32) Instruction {
	opcode := (word >> 26) & 0x3F
	rs := int((word >> 21) & 0x1F)
	rt := int((word >> 16) & 0x1F)
	rd := int((word >> 11) & 0x1F)
	shamt := (word >> 6) & 0x1F
	funct := word & 0x3F
	imm16 := word & 0xFFFF
	target := word & 0x3FFFFFF

	inst := Instruction{
		Raw:    word,
		Rs:     rs,
		Rt:     rt,
		Rd:     rd,
		Shamt:  shamt,
		Imm16:  imm16,
		SEImm:  signExtend16(imm16),
		Target: target,
	}

	switch opcode {
	case opcodeSPECIAL:
		decodeSpecial(&inst, funct)
	case opcodeREGIMM:
		decodeRegimm(&inst, rt)
	case opcodeJ:
		inst.Op = OpJ
		inst.Rs, inst.Rt, inst.Rd = -1, -1, -1
		inst.IsBranch = true
	case opcodeJAL:
		inst.Op = OpJAL
		inst.Rs, inst.Rt = -1, -1
		inst.Rd = 31
		inst.IsBranch = true
	case opcodeBEQ:
		inst.Op = OpBEQ
		inst.Rd = -1
		inst.IsBranch = true
	case opcodeBNE:
		inst.Op = OpBNE
		inst.Rd = -1
		inst.IsBranch = true
	case opcodeBLEZ:
		inst.Op = OpBLEZ
		inst.Rt, inst.Rd = -1, -1
		inst.IsBranch = true
	case opcodeBGTZ:
		inst.Op = OpBGTZ
		inst.Rt, inst.Rd = -1, -1
		inst.IsBranch = true
	case opcodeADDI:
		inst.Op, inst.Rd = OpADDI, -1
	case opcodeADDIU:
		inst.Op, inst.Rd = OpADDIU, -1
	case opcodeSLTI:
		inst.Op, inst.Rd = OpSLTI, -1
	case opcodeSLTIU:
		inst.Op, inst.Rd = OpSLTIU, -1
	case opcodeANDI:
		inst.Op, inst.Rd = OpANDI, -1
	case opcodeORI:
		inst.Op, inst.Rd = OpORI, -1
	case opcodeXORI:
		inst.Op, inst.Rd = OpXORI, -1
	case opcodeLUI:
		inst.Op, inst.Rd = OpLUI, -1
		inst.Rs = -1
	case opcodeLB:
		decodeLoad(&inst, OpLB)
	case opcodeLBU:
		decodeLoad(&inst, OpLBU)
	case opcodeLH:
		decodeLoad(&inst, OpLH)
	case opcodeLHU:
		decodeLoad(&inst, OpLHU)
	case opcodeLW:
		decodeLoad(&inst, OpLW)
	case opcodeSB:
		decodeStore(&inst, OpSB)
	case opcodeSH:
		decodeStore(&inst, OpSH)
	case opcodeSW:
		decodeStore(&inst, OpSW)
	default:
		inst.Op = OpUnknown
		inst.IsUnknown = true
	}

	return inst
}

func decodeSpecial(inst *Instruction, funct uint32) {
	switch funct {
	case functSLL:
		inst.Op, inst.Rs = OpSLL, -1
		if inst.Raw == 0 {
			inst.Op = OpNOP
		}
	case functSRL:
		inst.Op, inst.Rs = OpSRL, -1
	case functSRA:
		inst.Op, inst.Rs = OpSRA, -1
	case functSLLV:
		inst.Op, inst.Shamt = OpSLLV, 0
	case functSRLV:
		inst.Op, inst.Shamt = OpSRLV, 0
	case functSRAV:
		inst.Op, inst.Shamt = OpSRAV, 0
	case functJR:
		inst.Op = OpJR
		inst.Rt, inst.Rd = -1, -1
		inst.IsBranch = true
	case functJALR:
		inst.Op = OpJALR
		inst.Rt = -1
		inst.IsBranch = true
	case functSYSCALL:
		inst.Op = OpSYSCALL
		inst.Rs, inst.Rt, inst.Rd = 2, 3, -1 // v0, v1 per spec.md §4.1
	case functMFHI:
		inst.Op = OpMFHI
		inst.Rs, inst.Rt = -1, -1
	case functMTHI:
		inst.Op = OpMTHI
		inst.Rt, inst.Rd = -1, -1
	case functMFLO:
		inst.Op = OpMFLO
		inst.Rs, inst.Rt = -1, -1
	case functMTLO:
		inst.Op = OpMTLO
		inst.Rt, inst.Rd = -1, -1
	case functMULT:
		inst.Op = OpMULT
		inst.Rd = -1
	case functMULTU:
		inst.Op = OpMULTU
		inst.Rd = -1
	case functDIV:
		inst.Op = OpDIV
		inst.Rd = -1
	case functDIVU:
		inst.Op = OpDIVU
		inst.Rd = -1
	case functADD:
		inst.Op = OpADD
	case functADDU:
		inst.Op = OpADDU
	case functSUB:
		inst.Op = OpSUB
	case functSUBU:
		inst.Op = OpSUBU
	case functAND:
		inst.Op = OpAND
	case functOR:
		inst.Op = OpOR
	case functXOR:
		inst.Op = OpXOR
	case functNOR:
		inst.Op = OpNOR
	case functSLT:
		inst.Op = OpSLT
	case functSLTU:
		inst.Op = OpSLTU
	default:
		inst.Op = OpUnknown
		inst.IsUnknown = true
	}
}

func decodeRegimm(inst *Instruction, rt int) {
	inst.Rt, inst.Rd = -1, -1
	inst.IsBranch = true
	switch rt {
	case regimmBLTZ:
		inst.Op = OpBLTZ
	case regimmBGEZ:
		inst.Op = OpBGEZ
	case regimmBLTZAL:
		inst.Op = OpBLTZAL
		inst.Rd = 31
	case regimmBGEZAL:
		inst.Op = OpBGEZAL
		inst.Rd = 31
	default:
		inst.Op = OpUnknown
		inst.IsUnknown = true
		inst.IsBranch = false
	}
}

func decodeLoad(inst *Instruction, op Op) {
	inst.Op = op
	inst.Rd = -1
	inst.IsMem = true
}

func decodeStore(inst *Instruction, op Op) {
	inst.Op = op
	inst.Rd = -1
	inst.IsMem = true
	inst.MemWrite = true
}

func signExtend16(v uint32) int32 {
	return int32(int16(uint16(v)))
}
