package cache

import (
	"github.com/sarchlab/mipssim/timing/dram"
	"github.com/sarchlab/mipssim/timing/latency"
)

// AccessStatus is the result of an L2 access, per spec.md §4.4.
type AccessStatus int

const (
	L2Hit AccessStatus = iota
	L2Miss
	L2Busy
)

// Filler is implemented by anything an L2 miss must deliver a fill
// to — in practice, an L1 instance. Kept as an interface (rather than
// a concrete *L1 back-reference) so L2 never needs to know whether it
// is talking to an instruction or data cache, per the non-owning
// reference design note in spec.md §9.
type Filler interface {
	Fill(cycle uint64, addr uint32, data []byte)
}

// mshr is one Miss Status Holding Register entry.
type mshr struct {
	valid      bool
	addr       uint32
	isWrite    bool
	requesters []Filler
}

func (m *mshr) addRequester(f Filler) {
	for _, r := range m.requesters {
		if r == f {
			return
		}
	}
	m.requesters = append(m.requesters, f)
}

type reqQueueItem struct {
	addr       uint32
	readyCycle uint64
}

type retQueueItem struct {
	addr       uint32
	data       []byte
	readyCycle uint64
}

// L2 is the shared, set-associative, nonblocking L2 cache described
// in spec.md §4.4: a pool of MSHRs plus a request queue (toward DRAM)
// and a return queue (from DRAM), both with fixed forwarding delays.
type L2 struct {
	store *blockStore
	cfg   *latency.Config
	mshrs []mshr

	reqQueue []reqQueueItem
	retQueue []retQueueItem

	stats Statistics
}

// NewL2 builds an L2 cache from cfg.
func NewL2(cfg *latency.Config) *L2 {
	return &L2{
		store: newBlockStore(cfg.L2Sets, cfg.L2Ways, cfg.BlockSize),
		cfg:   cfg,
		mshrs: make([]mshr, cfg.L2MSHRs),
	}
}

// Stats returns L2 hit/miss counters.
func (l *L2) Stats() Statistics { return l.stats }

func (l *L2) blockAddr(addr uint32) uint32 {
	bs := uint32(l.cfg.BlockSize)
	return addr / bs * bs
}

func (l *L2) findMSHR(blockAddr uint32) *mshr {
	for i := range l.mshrs {
		if l.mshrs[i].valid && l.mshrs[i].addr == blockAddr {
			return &l.mshrs[i]
		}
	}
	return nil
}

func (l *L2) allocMSHR(blockAddr uint32, isWrite bool) *mshr {
	for i := range l.mshrs {
		if !l.mshrs[i].valid {
			l.mshrs[i] = mshr{valid: true, addr: blockAddr, isWrite: isWrite}
			return &l.mshrs[i]
		}
	}
	return nil
}

// Access implements spec.md §4.4's access algorithm.
func (l *L2) Access(cycle uint64, addr uint32, isWrite bool, requester Filler) AccessStatus {
	if isWrite {
		l.stats.Writes++
	} else {
		l.stats.Reads++
	}

	if blk := l.store.probe(addr); blk != nil {
		l.stats.Hits++
		l.store.visit(blk)
		if isWrite {
			l.store.markDirty(blk)
		}
		return L2Hit
	}

	l.stats.Misses++
	blockAddr := l.blockAddr(addr)

	if m := l.findMSHR(blockAddr); m != nil {
		m.addRequester(requester)
		return L2Miss
	}

	m := l.allocMSHR(blockAddr, isWrite)
	if m == nil {
		return L2Busy
	}
	m.addRequester(requester)

	l.reqQueue = append(l.reqQueue, reqQueueItem{
		addr:       blockAddr,
		readyCycle: cycle + l.cfg.L2ToDRAMDelay,
	})

	return L2Miss
}

// Cycle drains the request and return queues, per spec.md §4.4/§4.6.
func (l *L2) Cycle(cycle uint64, d *dram.DRAM) {
	remaining := l.reqQueue[:0]
	for _, item := range l.reqQueue {
		if cycle < item.readyCycle {
			remaining = append(remaining, item)
			continue
		}
		// A demand miss is always a fetch from DRAM, never a write:
		// even a store miss must first read the line in (write-
		// allocate) before the CPU's own write merges into the cache
		// copy. The only path that ever issues a DRAM write is a
		// dirty eviction's writeback, below.
		ok := d.Enqueue(dram.Request{
			IsWrite: false,
			Addr:    item.addr,
			Source:  dram.SourceDemand,
		})
		if !ok {
			// DRAM request queue is full: keep retrying next cycle.
			remaining = append(remaining, item)
		}
	}
	l.reqQueue = remaining

	remaining2 := l.retQueue[:0]
	for _, item := range l.retQueue {
		if cycle < item.readyCycle {
			remaining2 = append(remaining2, item)
			continue
		}
		l.completeFill(cycle, item.addr, item.data, d)
	}
	l.retQueue = remaining2
}

// HandleDRAMCompletion is called by the processor when DRAM finishes
// a demand request; it enqueues into the return queue with the fixed
// DRAM-to-L2 forwarding delay.
func (l *L2) HandleDRAMCompletion(cycle uint64, addr uint32, data []byte) {
	l.retQueue = append(l.retQueue, retQueueItem{
		addr:       addr,
		data:       data,
		readyCycle: cycle + l.cfg.DRAMToL2Delay,
	})
}

// BlockData returns a copy of the resident block's bytes, or nil if
// the block is not present (should not happen for the L2_HIT caller).
func (l *L2) BlockData(addr uint32) []byte {
	blk := l.store.probe(addr)
	if blk == nil {
		return nil
	}
	payload := l.store.payload(blk)
	out := make([]byte, len(payload))
	copy(out, payload)
	return out
}

func (l *L2) completeFill(cycle uint64, addr uint32, data []byte, d *dram.DRAM) {
	m := l.findMSHR(addr)

	victim := l.store.victim(addr)
	if victim != nil {
		victimData := make([]byte, len(l.store.payload(victim)))
		copy(victimData, l.store.payload(victim))

		state := Exclusive
		if m != nil && m.isWrite {
			state = Modified
		}
		_, evictedDirty, evictedAddr := l.store.install(victim, addr, data, state)

		// NINE inclusion: L2 eviction does not back-invalidate L1,
		// per spec.md §4.4/§9's resolution of the open question.
		if evictedDirty {
			l.stats.Writebacks++
			d.Enqueue(dram.Request{
				IsWrite: true,
				Addr:    uint32(evictedAddr),
				Source:  dram.SourceWriteback,
				Data:    victimData,
			})
		}
	}

	if m == nil {
		return
	}
	for _, r := range m.requesters {
		r.Fill(cycle, addr, data)
	}
	*m = mshr{}
}
