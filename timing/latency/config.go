// Package latency holds the compile-time-style configuration constants
// for the memory hierarchy and DRAM timing model, expressed as a
// loadable/savable Config value rather than literal constants so a
// simulation run can be reproduced from a saved JSON file — the same
// pattern the teacher repo uses for its own TimingConfig.
package latency

import (
	"encoding/json"
	"fmt"
	"os"
)

// ReplPolicy selects the cache block replacement policy.
type ReplPolicy string

const (
	ReplLRU    ReplPolicy = "LRU"
	ReplRandom ReplPolicy = "RANDOM"
	ReplFIFO   ReplPolicy = "FIFO"
	ReplMRU    ReplPolicy = "MRU"
)

// L2InclPolicy selects the L2 inclusion policy with respect to L1.
type L2InclPolicy string

const (
	L2Inclusive L2InclPolicy = "INCLUSIVE"
	L2Exclusive L2InclPolicy = "EXCLUSIVE"
	L2NINE      L2InclPolicy = "NINE"
)

// DRAMPagePolicy selects the DRAM row-buffer management policy.
type DRAMPagePolicy string

const (
	DRAMOpenPage   DRAMPagePolicy = "OPEN"
	DRAMClosedPage DRAMPagePolicy = "CLOSED"
)

// Config carries every compile-time constant spec.md §6 names.
type Config struct {
	NumCores   int    `json:"num_cores"`
	BlockSize  int    `json:"block_size"`
	MemorySize uint32 `json:"memory_size_bytes"`

	L1ISets int `json:"l1i_sets"`
	L1IWays int `json:"l1i_ways"`
	L1DSets int `json:"l1d_sets"`
	L1DWays int `json:"l1d_ways"`

	L2Sets     int `json:"l2_sets"`
	L2Ways     int `json:"l2_ways"`
	L2MSHRs    int `json:"l2_mshrs"`
	L2HitLatency uint64 `json:"l2_hit_latency"`

	L2ToDRAMDelay    uint64 `json:"l2_to_dram_delay"`
	DRAMToL2Delay    uint64 `json:"dram_to_l2_delay"`
	L1CacheMissPenalty uint64 `json:"l1_cache_miss_penalty"`

	DRAMChannels int `json:"dram_channels"`
	DRAMRanks    int `json:"dram_ranks"`
	DRAMBanks    int `json:"dram_banks"`
	DRAMRows     int `json:"dram_rows"`
	DRAMRowSize  int `json:"dram_row_size_bytes"`
	DRAMReqQueueSize int `json:"dram_req_queue_size"`

	DRAMActCmdBusyCycles   uint64 `json:"dram_act_cmd_bus_busy_cycles"`
	DRAMPreCmdBusyCycles   uint64 `json:"dram_pre_cmd_bus_busy_cycles"`
	DRAMRdWrCmdBusyCycles  uint64 `json:"dram_rdwr_cmd_bus_busy_cycles"`
	DRAMRdWrDataBusyCycles uint64 `json:"dram_rdwr_data_bus_busy_cycles"`
	DRAMRdWrBankBusyCycles uint64 `json:"dram_rdwr_bank_busy_cycles"`
	DRAMActBankBusyCycles  uint64 `json:"dram_act_bank_busy_cycles"`
	DRAMPreBankBusyCycles  uint64 `json:"dram_pre_bank_busy_cycles"`

	ReplPolicy     ReplPolicy     `json:"cache_repl_policy"`
	L2InclPolicy   L2InclPolicy   `json:"l2_incl_policy"`
	DRAMPagePolicy DRAMPagePolicy `json:"dram_page_policy"`
}

// DefaultConfig returns the reference configuration used throughout
// this repo's tests and the spec.md §8 end-to-end scenarios.
func DefaultConfig() *Config {
	return &Config{
		NumCores:   4,
		BlockSize:  32,
		MemorySize: 64 * 1024 * 1024,

		L1ISets: 64,
		L1IWays: 2,
		L1DSets: 64,
		L1DWays: 2,

		L2Sets:       512,
		L2Ways:       8,
		L2MSHRs:      8,
		L2HitLatency: 10,

		L2ToDRAMDelay:      5,
		DRAMToL2Delay:      5,
		L1CacheMissPenalty: 1,

		DRAMChannels:     1,
		DRAMRanks:        1,
		DRAMBanks:        8,
		DRAMRows:         16384,
		DRAMRowSize:      2048,
		DRAMReqQueueSize: 16,

		DRAMActCmdBusyCycles:   5,
		DRAMPreCmdBusyCycles:   5,
		DRAMRdWrCmdBusyCycles:  4,
		DRAMRdWrDataBusyCycles: 8,
		DRAMRdWrBankBusyCycles: 20,
		DRAMActBankBusyCycles:  15,
		DRAMPreBankBusyCycles:  10,

		ReplPolicy:     ReplLRU,
		L2InclPolicy:   L2NINE,
		DRAMPagePolicy: DRAMOpenPage,
	}
}

// LoadConfig reads a Config from a JSON file, starting from defaults
// so a partial file only overrides the fields it sets.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read timing config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse timing config: %w", err)
	}

	return config, nil
}

// SaveConfig writes c to path as indented JSON.
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize timing config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write timing config file: %w", err)
	}

	return nil
}

// Validate checks that the configuration describes a buildable
// memory hierarchy.
func (c *Config) Validate() error {
	if c.NumCores <= 0 {
		return fmt.Errorf("num_cores must be > 0")
	}
	if c.MemorySize == 0 {
		return fmt.Errorf("memory_size_bytes must be > 0")
	}
	if c.BlockSize <= 0 || c.BlockSize&(c.BlockSize-1) != 0 {
		return fmt.Errorf("block_size must be a power of two")
	}
	if c.L1ISets <= 0 || c.L1IWays <= 0 || c.L1DSets <= 0 || c.L1DWays <= 0 {
		return fmt.Errorf("l1 geometry fields must be > 0")
	}
	if c.L2Sets <= 0 || c.L2Ways <= 0 || c.L2MSHRs <= 0 {
		return fmt.Errorf("l2 geometry fields must be > 0")
	}
	if c.DRAMReqQueueSize <= 0 {
		return fmt.Errorf("dram_req_queue_size must be > 0")
	}
	switch c.ReplPolicy {
	case ReplLRU, ReplRandom, ReplFIFO, ReplMRU:
	default:
		return fmt.Errorf("unknown cache_repl_policy %q", c.ReplPolicy)
	}
	switch c.L2InclPolicy {
	case L2Inclusive, L2Exclusive, L2NINE:
	default:
		return fmt.Errorf("unknown l2_incl_policy %q", c.L2InclPolicy)
	}
	switch c.DRAMPagePolicy {
	case DRAMOpenPage, DRAMClosedPage:
	default:
		return fmt.Errorf("unknown dram_page_policy %q", c.DRAMPagePolicy)
	}
	return nil
}

// Clone returns a deep copy of c (Config has no reference fields, so
// a value copy suffices, but the method is kept for API parity with
// the teacher's TimingConfig.Clone).
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
