package cache

// Statistics holds the per-cache counters spec.md §9 flags as an open
// question ("whether stats counters... must be preserved verbatim").
// This design keeps its own counter names since no external
// test-suite contract constrains them; see DESIGN.md.
type Statistics struct {
	Reads      uint64
	Writes     uint64
	Hits       uint64
	Misses     uint64
	Writebacks uint64
}
