package dram_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/mipssim/emu"
	"github.com/sarchlab/mipssim/timing/dram"
	"github.com/sarchlab/mipssim/timing/latency"
)

func TestDRAM(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "DRAM Suite")
}

// runUntilComplete advances d starting at startCycle, stopping as soon
// as a request retires. It returns the retired request and the
// absolute cycle the caller should resume from.
func runUntilComplete(d *dram.DRAM, startCycle uint64, maxSteps uint64) (*dram.CompletedRequest, uint64) {
	cycle := startCycle
	for i := uint64(0); i < maxSteps; i++ {
		if completed, ok := d.Execute(cycle); ok {
			return completed, cycle + 1
		}
		cycle++
	}
	return nil, cycle
}

var _ = Describe("DRAM", func() {
	var (
		cfg *latency.Config
		mem *emu.Memory
		d   *dram.DRAM
	)

	BeforeEach(func() {
		cfg = latency.DefaultConfig()
		cfg.DRAMChannels, cfg.DRAMRanks, cfg.DRAMBanks = 1, 1, 4
		cfg.DRAMRows = 16
		cfg.DRAMRowSize = 32
		cfg.DRAMReqQueueSize = 4
		mem = emu.NewMemory(1 << 16)
		mem.Write32(0x40, 0xFEEDFACE)
		d = dram.New(cfg, mem)
	})

	It("reads back data written to the backing memory", func() {
		Expect(d.Enqueue(dram.Request{Addr: 0x40, Source: dram.SourceDemand})).To(BeTrue())

		completed, _ := runUntilComplete(d, 0, 200)
		Expect(completed).NotTo(BeNil())
		Expect(completed.Addr).To(Equal(uint32(0x40)))
		Expect(completed.Data[0:4]).To(Equal([]byte{0xCE, 0xFA, 0xED, 0xFE}))
	})

	It("commits a write request's data to the backing memory", func() {
		payload := make([]byte, cfg.BlockSize)
		payload[0] = 0xAB
		Expect(d.Enqueue(dram.Request{IsWrite: true, Addr: 0x80, Data: payload, Source: dram.SourceWriteback})).To(BeTrue())

		completed, _ := runUntilComplete(d, 0, 200)
		Expect(completed).NotTo(BeNil())
		Expect(mem.Read8(0x80)).To(Equal(byte(0xAB)))
	})

	It("rejects enqueueing past the bounded request queue", func() {
		for i := 0; i < cfg.DRAMReqQueueSize; i++ {
			Expect(d.Enqueue(dram.Request{Addr: uint32(i) * 1024, Source: dram.SourceDemand})).To(BeTrue())
		}
		Expect(d.Enqueue(dram.Request{Addr: 0x9999, Source: dram.SourceDemand})).To(BeFalse())
	})

	It("completes an open-row hit faster than an open-row miss", func() {
		cfg.DRAMPagePolicy = latency.DRAMOpenPage
		rowSize := uint32(cfg.DRAMRowSize)
		totalBanks := uint32(cfg.DRAMChannels * cfg.DRAMRanks * cfg.DRAMBanks)
		differentRowAddr := rowSize * totalBanks // same bank, next row

		d1 := dram.New(cfg, mem)
		d1.Enqueue(dram.Request{Addr: 0x0, Source: dram.SourceDemand})
		_, next := runUntilComplete(d1, 0, 200)
		d1.Enqueue(dram.Request{Addr: 0x4, Source: dram.SourceDemand}) // same row
		_, afterSameRow := runUntilComplete(d1, next, 200)
		sameRowLatency := afterSameRow - next

		d2 := dram.New(cfg, mem)
		d2.Enqueue(dram.Request{Addr: 0x0, Source: dram.SourceDemand})
		_, next2 := runUntilComplete(d2, 0, 200)
		d2.Enqueue(dram.Request{Addr: differentRowAddr, Source: dram.SourceDemand})
		_, afterDifferentRow := runUntilComplete(d2, next2, 200)
		differentRowLatency := afterDifferentRow - next2

		Expect(sameRowLatency).To(BeNumerically("<", differentRowLatency))
	})
})
