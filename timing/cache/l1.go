package cache

import "github.com/sarchlab/mipssim/timing/latency"

// L2Port is the interface an L1 uses to reach the shared L2, per the
// non-owning-reference design note in spec.md §9.
type L2Port interface {
	Access(cycle uint64, addr uint32, isWrite bool, requester Filler) AccessStatus
	// BlockData returns the current bytes of the block containing
	// addr, resident in L2. Used by L1 to pull data across on an
	// L2_HIT, where L2 never calls Fill back (there is no DRAM round
	// trip to deliver it asynchronously).
	BlockData(addr uint32) []byte
}

// L1 is a per-core, private, set-associative cache, blocking on at
// most one outstanding miss, per spec.md §4.3.
type L1 struct {
	store *blockStore
	cfg   *latency.Config
	l2    L2Port

	pendingMiss      bool
	pendingMissAddr  uint32
	pendingMissReady uint64
	pendingMissData  []byte // captured at L2-hit time, for the L2Hit case below
	readyCycleSet    bool   // false while waiting on L2 to call Fill directly

	stats Statistics
}

// NewL1 builds an L1 cache of the given geometry, talking to l2.
func NewL1(sets, ways int, cfg *latency.Config, l2 L2Port) *L1 {
	return &L1{
		store: newBlockStore(sets, ways, cfg.BlockSize),
		cfg:   cfg,
		l2:    l2,
	}
}

// Stats returns this cache's hit/miss counters.
func (c *L1) Stats() Statistics { return c.stats }

func (c *L1) blockAddr(addr uint32) uint32 {
	bs := uint32(c.cfg.BlockSize)
	return addr / bs * bs
}

// Access implements spec.md §4.3's access algorithm. It returns true
// iff the access completes this cycle. writeData is applied on a write
// hit, using only its low size bytes (size ∈ {1,2,4} for a
// byte/halfword/word store); readData is valid only when the access
// both completes and is a read, and is always the full aligned word at
// addr (sub-word extraction happens in the pipeline's Memory stage).
func (c *L1) Access(cycle uint64, addr uint32, isWrite bool, writeData uint32, size int) (readData uint32, done bool) {
	if c.pendingMiss && c.readyCycleSet && cycle >= c.pendingMissReady {
		// The L2 reported a hit; the fixed L2_HIT_LATENCY has now
		// elapsed, so the block (captured at hit time, below) is ready
		// to install without going back to L2.
		c.installBlock(c.pendingMissAddr, c.pendingMissData)
		c.pendingMissData = nil
	}

	if c.pendingMiss {
		return 0, false
	}

	if isWrite {
		c.stats.Writes++
	} else {
		c.stats.Reads++
	}

	if blk := c.store.probe(addr); blk != nil {
		c.stats.Hits++
		c.store.visit(blk)
		offset := addr % uint32(c.cfg.BlockSize)
		payload := c.store.payload(blk)
		if isWrite {
			storeBytes(payload, offset, writeData, size)
			c.store.markDirty(blk)
			return 0, true
		}
		return extractWord(payload, offset&^0x3), true
	}

	c.stats.Misses++
	c.pendingMiss = true
	c.pendingMissAddr = c.blockAddr(addr)
	c.readyCycleSet = false

	switch c.l2.Access(cycle, addr, isWrite, c) {
	case L2Hit:
		// Capture the block now, while it is known resident in L2,
		// rather than re-reading L2 after the latency elapses: another
		// core's miss could evict this exact line from the shared L2
		// during the L2_HIT_LATENCY window, which would otherwise leave
		// this L1 stalled on pendingMiss forever.
		c.pendingMissReady = cycle + c.cfg.L2HitLatency
		c.readyCycleSet = true
		c.pendingMissData = c.l2.BlockData(addr)
	case L2Miss:
		// L2 will deliver the block asynchronously via Fill.
	case L2Busy:
		// Do not latch a pending miss; the pipeline retries next cycle.
		c.pendingMiss = false
	}

	return 0, false
}

// Fill installs the block at addr when L2 calls back after a DRAM
// round trip (an L2 hit is installed by Access itself once
// L2_HIT_LATENCY has elapsed). Per
// spec.md §4.3, a fill only applies if it matches the latched pending
// miss address — a stale or mismatched fill is simply ignored.
func (c *L1) Fill(cycle uint64, addr uint32, data []byte) {
	if !c.pendingMiss || c.blockAddr(addr) != c.pendingMissAddr {
		return
	}
	c.installBlock(addr, data)
}

func (c *L1) installBlock(addr uint32, data []byte) {
	if data == nil {
		return
	}
	victim := c.store.victim(addr)
	if victim == nil {
		return
	}
	// L1 dirty-eviction writeback is not modeled in the current
	// design, per spec.md §9 — the evicted payload is simply
	// discarded. L2 still holds the data it had before the L1 write
	// hits, so stores held only in the evicted L1 line reach neither
	// L2 nor memory.
	c.store.install(victim, addr, data, Exclusive)
	c.pendingMiss = false
	c.readyCycleSet = false
}
