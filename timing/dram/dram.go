// Package dram implements the timing-modeled DRAM described in
// spec.md §4.5: channels × ranks × banks × rows, a per-channel command
// bus and data bus, and open/closed row-buffer policies.
//
// It is a plain synchronous struct driven by an explicit current-cycle
// parameter, per the "global clock as explicit parameter" design note
// in spec.md §9 — not an Akita ticking component, since the rest of
// this repo is not built on Akita's event-driven model and introducing
// it only here would fracture the architecture (see DESIGN.md).
package dram

import "github.com/sarchlab/mipssim/timing/latency"

// Source distinguishes a demand request (the L2 is waiting on it) from
// a writeback (fire-and-forget, no return-queue delivery), per the
// DRAMRequest "source tag" field in spec.md §3.
type Source int

const (
	SourceDemand Source = iota
	SourceWriteback
)

// Backing is the untimed functional memory DRAM reads/writes through.
type Backing interface {
	ReadBlock(addr uint32, size int) []byte
	WriteBlock(addr uint32, data []byte)
}

// Request is one enqueued DRAM command.
type Request struct {
	IsWrite bool
	Addr    uint32
	Source  Source
	Data    []byte // write data; ignored for reads

	dispatched bool
	doneCycle  uint64
}

// CompletedRequest is returned by Execute when a request's data-bus
// phase finishes.
type CompletedRequest struct {
	Addr   uint32
	Data   []byte
	Source Source
}

type bank struct {
	openRow   int // -1 if closed
	busyUntil uint64
}

// DRAM is the timing model for one or more channels of memory.
type DRAM struct {
	cfg     *latency.Config
	backing Backing

	banks      []bank // flattened channel*rank*bank
	cmdFreeAt  []uint64 // per channel
	dataFreeAt []uint64 // per channel

	queue []*Request
}

// New builds a DRAM model from cfg, backed by mem.
func New(cfg *latency.Config, backing Backing) *DRAM {
	totalBanks := cfg.DRAMChannels * cfg.DRAMRanks * cfg.DRAMBanks
	banks := make([]bank, totalBanks)
	for i := range banks {
		banks[i].openRow = -1
	}

	return &DRAM{
		cfg:        cfg,
		backing:    backing,
		banks:      banks,
		cmdFreeAt:  make([]uint64, cfg.DRAMChannels),
		dataFreeAt: make([]uint64, cfg.DRAMChannels),
	}
}

// Enqueue pushes req onto the bounded request queue. Returns false
// (caller must retry) if the queue is already at DRAMReqQueueSize.
func (d *DRAM) Enqueue(req Request) bool {
	if len(d.queue) >= d.cfg.DRAMReqQueueSize {
		return false
	}
	r := req
	d.queue = append(d.queue, &r)
	return true
}

// addrParts derives the bank index and row number for addr.
func (d *DRAM) addrParts(addr uint32) (bankIdx int, row int) {
	banksPerChannel := d.cfg.DRAMRanks * d.cfg.DRAMBanks
	totalBanks := d.cfg.DRAMChannels * banksPerChannel
	rowSize := uint32(d.cfg.DRAMRowSize)

	block := addr / rowSize
	bankIdx = int(block) % totalBanks
	row = int(block) / totalBanks % d.cfg.DRAMRows
	return bankIdx, row
}

func (d *DRAM) channelOf(bankIdx int) int {
	banksPerChannel := d.cfg.DRAMRanks * d.cfg.DRAMBanks
	if banksPerChannel == 0 {
		return 0
	}
	return bankIdx / banksPerChannel
}

// Execute advances the DRAM model by one cycle: it tries to dispatch
// the oldest queued request whose bank and command bus are free, and
// returns at most one request whose data-bus phase completes this
// cycle, per spec.md §4.5.
func (d *DRAM) Execute(cycle uint64) (*CompletedRequest, bool) {
	d.dispatchOne(cycle)
	return d.retireOne(cycle)
}

func (d *DRAM) dispatchOne(cycle uint64) {
	for _, req := range d.queue {
		if req.dispatched {
			continue
		}

		bankIdx, row := d.addrParts(req.Addr)
		ch := d.channelOf(bankIdx)
		b := &d.banks[bankIdx]

		if b.busyUntil > cycle || d.cmdFreeAt[ch] > cycle {
			continue
		}

		cmdBusy, dataBusy, bankBusy := d.phaseCosts(b, row)

		d.cmdFreeAt[ch] = cycle + cmdBusy
		d.dataFreeAt[ch] = max64(d.dataFreeAt[ch], cycle+cmdBusy) + dataBusy
		b.busyUntil = cycle + bankBusy
		b.openRow = row

		req.dispatched = true
		req.doneCycle = d.dataFreeAt[ch]
		return
	}
}

// phaseCosts computes command-bus, data-bus, and bank-busy costs for
// accessing row on bank b, following the configured page policy.
func (d *DRAM) phaseCosts(b *bank, row int) (cmdBusy, dataBusy, bankBusy uint64) {
	dataBusy = d.cfg.DRAMRdWrDataBusyCycles

	if d.cfg.DRAMPagePolicy == latency.DRAMClosedPage {
		cmdBusy = d.cfg.DRAMActCmdBusyCycles + d.cfg.DRAMRdWrCmdBusyCycles + d.cfg.DRAMPreCmdBusyCycles
		bankBusy = d.cfg.DRAMActBankBusyCycles + d.cfg.DRAMRdWrBankBusyCycles + d.cfg.DRAMPreBankBusyCycles
		return cmdBusy, dataBusy, bankBusy
	}

	if b.openRow == row {
		// Open-row hit: only the RD/WR command is needed.
		return d.cfg.DRAMRdWrCmdBusyCycles, dataBusy, d.cfg.DRAMRdWrBankBusyCycles
	}

	// Open-row miss: PRE -> ACT -> RD/WR.
	cmdBusy = d.cfg.DRAMPreCmdBusyCycles + d.cfg.DRAMActCmdBusyCycles + d.cfg.DRAMRdWrCmdBusyCycles
	bankBusy = d.cfg.DRAMPreBankBusyCycles + d.cfg.DRAMActBankBusyCycles + d.cfg.DRAMRdWrBankBusyCycles
	return cmdBusy, dataBusy, bankBusy
}

func (d *DRAM) retireOne(cycle uint64) (*CompletedRequest, bool) {
	for i, req := range d.queue {
		if !req.dispatched || req.doneCycle > cycle {
			continue
		}

		d.queue = append(d.queue[:i], d.queue[i+1:]...)

		if req.IsWrite {
			d.backing.WriteBlock(req.Addr, req.Data)
			return &CompletedRequest{Addr: req.Addr, Source: req.Source}, true
		}

		data := d.backing.ReadBlock(req.Addr, d.cfg.BlockSize)
		return &CompletedRequest{Addr: req.Addr, Data: data, Source: req.Source}, true
	}
	return nil, false
}

func max64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}
