package emu_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/mipssim/emu"
)

func TestEmu(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Emu Suite")
}

var _ = Describe("RegisterFile", func() {
	var regs *emu.RegisterFile

	BeforeEach(func() {
		regs = &emu.RegisterFile{}
	})

	It("hardwires R0 to zero on read", func() {
		regs.Write(0, 0xDEADBEEF)
		Expect(regs.Read(0)).To(Equal(uint32(0)))
	})

	It("ignores writes to R0", func() {
		regs.R[0] = 0
		regs.Write(0, 42)
		Expect(regs.R[0]).To(Equal(uint32(0)))
	})

	It("reads back what was written to a general register", func() {
		regs.Write(8, 0x12345678)
		Expect(regs.Read(8)).To(Equal(uint32(0x12345678)))
	})

	It("clamps out-of-range register indices on read", func() {
		Expect(regs.Read(32)).To(Equal(uint32(0)))
		Expect(regs.Read(-1)).To(Equal(uint32(0)))
	})

	It("tracks HI and LO independently of the general registers", func() {
		regs.HI = 1
		regs.LO = 2
		Expect(regs.Read(1)).To(Equal(uint32(0)))
		Expect(regs.HI).To(Equal(uint32(1)))
		Expect(regs.LO).To(Equal(uint32(2)))
	})
})

var _ = Describe("Memory", func() {
	var mem *emu.Memory

	BeforeEach(func() {
		mem = emu.NewMemory(4096)
	})

	It("reads zero from a fresh allocation", func() {
		Expect(mem.Read32(0x100)).To(Equal(uint32(0)))
	})

	It("round-trips a little-endian word", func() {
		mem.Write32(0x100, 0xAABBCCDD)
		Expect(mem.Read8(0x100)).To(Equal(byte(0xDD)))
		Expect(mem.Read8(0x103)).To(Equal(byte(0xAA)))
		Expect(mem.Read32(0x100)).To(Equal(uint32(0xAABBCCDD)))
	})

	It("masks the low two bits of a word address", func() {
		mem.Write32(0x100, 0x11223344)
		Expect(mem.Read32(0x102)).To(Equal(uint32(0x11223344)))
	})

	It("drops out-of-range writes instead of panicking", func() {
		Expect(func() { mem.Write8(mem.Size()+10, 1) }).NotTo(Panic())
		Expect(mem.Read8(mem.Size() + 10)).To(Equal(byte(0)))
	})

	It("copies a block round-trip through ReadBlock/WriteBlock", func() {
		data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
		mem.WriteBlock(0x200, data)
		Expect(mem.ReadBlock(0x200, 8)).To(Equal(data))
	})
})
