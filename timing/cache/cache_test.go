package cache_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/mipssim/emu"
	"github.com/sarchlab/mipssim/timing/cache"
	"github.com/sarchlab/mipssim/timing/dram"
	"github.com/sarchlab/mipssim/timing/latency"
)

func TestCache(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Cache Suite")
}

func smallConfig() *latency.Config {
	cfg := latency.DefaultConfig()
	cfg.BlockSize = 16
	cfg.L1ISets, cfg.L1IWays = 4, 2
	cfg.L1DSets, cfg.L1DWays = 4, 2
	cfg.L2Sets, cfg.L2Ways = 8, 2
	cfg.L2MSHRs = 2
	cfg.L2HitLatency = 3
	cfg.L2ToDRAMDelay = 2
	cfg.DRAMToL2Delay = 2
	return cfg
}

// tick drives L2+DRAM together for n cycles, the way Processor.Cycle
// sequences them: DRAM completion delivery to L2, then L2 draining.
func tick(l2 *cache.L2, d *dram.DRAM, startCycle uint64, n uint64) uint64 {
	cycle := startCycle
	for i := uint64(0); i < n; i++ {
		if completed, ok := d.Execute(cycle); ok {
			if completed.Source == dram.SourceDemand {
				l2.HandleDRAMCompletion(cycle, completed.Addr, completed.Data)
			}
		}
		l2.Cycle(cycle, d)
		cycle++
	}
	return cycle
}

var _ = Describe("L1", func() {
	var (
		cfg *latency.Config
		mem *emu.Memory
		d   *dram.DRAM
		l2  *cache.L2
		l1  *cache.L1
	)

	BeforeEach(func() {
		cfg = smallConfig()
		mem = emu.NewMemory(1 << 20)
		mem.Write32(0x1000, 0xDEADBEEF)
		d = dram.New(cfg, mem)
		l2 = cache.NewL2(cfg)
		l1 = cache.NewL1(cfg.L1DSets, cfg.L1DWays, cfg, l2)
	})

	It("misses on a cold read and later delivers the fill", func() {
		_, done := l1.Access(0, 0x1000, false, 0, 4)
		Expect(done).To(BeFalse())
		Expect(l1.Stats().Misses).To(Equal(uint64(1)))

		var cycle uint64 = 1
		var data uint32
		var ok bool
		for i := 0; i < 100 && !ok; i++ {
			cycle = tick(l2, d, cycle, 1)
			data, ok = l1.Access(cycle, 0x1000, false, 0, 4)
		}
		Expect(ok).To(BeTrue())
		Expect(data).To(Equal(uint32(0xDEADBEEF)))
	})

	It("hits after the block is resident", func() {
		_, done := l1.Access(0, 0x1000, false, 0, 4)
		Expect(done).To(BeFalse())

		var cycle uint64 = 1
		var ok bool
		for i := 0; i < 100 && !ok; i++ {
			cycle = tick(l2, d, cycle, 1)
			_, ok = l1.Access(cycle, 0x1000, false, 0, 4)
		}
		Expect(ok).To(BeTrue())

		data, done := l1.Access(cycle, 0x1000, false, 0, 4)
		Expect(done).To(BeTrue())
		Expect(data).To(Equal(uint32(0xDEADBEEF)))
		// The access that completed right after the fill was a hit too.
		Expect(l1.Stats().Hits).To(Equal(uint64(2)))
	})

	It("blocks further accesses while a miss is outstanding", func() {
		l1.Access(0, 0x1000, false, 0, 4)
		_, done := l1.Access(1, 0x2000, false, 0, 4)
		Expect(done).To(BeFalse())
		// Only the first miss should have allocated an MSHR/queue entry;
		// an access made while that miss is outstanding must not count
		// as another miss.
		Expect(l1.Stats().Misses).To(Equal(uint64(1)))
	})

	It("applies a write hit to the resident block and reads the new value back", func() {
		_, done := l1.Access(0, 0x1000, false, 0, 4)
		Expect(done).To(BeFalse())

		var cycle uint64 = 1
		var ok bool
		for i := 0; i < 100 && !ok; i++ {
			cycle = tick(l2, d, cycle, 1)
			_, ok = l1.Access(cycle, 0x1000, false, 0, 4)
		}

		_, writeDone := l1.Access(cycle, 0x1000, true, 0x12345678, 4)
		Expect(writeDone).To(BeTrue())

		data, readDone := l1.Access(cycle, 0x1000, false, 0, 4)
		Expect(readDone).To(BeTrue())
		Expect(data).To(Equal(uint32(0x12345678)))
	})
})

var _ = Describe("L2", func() {
	var (
		cfg *latency.Config
		mem *emu.Memory
		d   *dram.DRAM
		l2  *cache.L2
	)

	BeforeEach(func() {
		cfg = smallConfig()
		mem = emu.NewMemory(1 << 20)
		d = dram.New(cfg, mem)
		l2 = cache.NewL2(cfg)
	})

	It("merges a second miss to the same block into the existing MSHR", func() {
		type sink struct{ filled bool }
		a, b := &fakeFiller{}, &fakeFiller{}

		Expect(l2.Access(0, 0x100, false, a)).To(Equal(cache.L2Miss))
		Expect(l2.Access(0, 0x108, false, b)).To(Equal(cache.L2Miss))
		Expect(l2.Stats().Misses).To(Equal(uint64(2)))

		var cycle uint64 = 1
		for i := 0; i < 100 && !(a.filled && b.filled); i++ {
			cycle = tick(l2, d, cycle, 1)
		}
		Expect(a.filled).To(BeTrue())
		Expect(b.filled).To(BeTrue())
	})

	It("reports L2Busy once every MSHR is allocated", func() {
		for i := 0; i < cfg.L2MSHRs; i++ {
			addr := uint32(i) * uint32(cfg.L2Sets*cfg.BlockSize*4)
			status := l2.Access(0, addr, false, &fakeFiller{})
			Expect(status).To(Equal(cache.L2Miss))
		}

		overflowAddr := uint32(cfg.L2MSHRs) * uint32(cfg.L2Sets*cfg.BlockSize*4)
		Expect(l2.Access(0, overflowAddr, false, &fakeFiller{})).To(Equal(cache.L2Busy))
	})

	It("hits immediately once a block is resident", func() {
		f := &fakeFiller{}
		l2.Access(0, 0x100, false, f)

		var cycle uint64 = 1
		for i := 0; i < 100 && !f.filled; i++ {
			cycle = tick(l2, d, cycle, 1)
		}
		Expect(f.filled).To(BeTrue())

		Expect(l2.Access(cycle, 0x100, false, &fakeFiller{})).To(Equal(cache.L2Hit))
	})
})

type fakeFiller struct {
	filled bool
	addr   uint32
	data   []byte
}

func (f *fakeFiller) Fill(cycle uint64, addr uint32, data []byte) {
	f.filled = true
	f.addr = addr
	f.data = data
}
