// Package loader reads the simulator's object-file format into
// functional memory. It is the external collaborator named in
// spec.md §1: a thin I/O boundary, not part of the timing core.
package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sarchlab/mipssim/emu"
)

// EntryPoint is the fixed initial PC, per spec.md §6.
const EntryPoint uint32 = 0x00400000

// Program describes a loaded object file: how many records it
// contained, for diagnostics.
type Program struct {
	EntryPoint uint32
	Records    int
}

// Load reads an object file of ASCII hex records ("AAAAAAAA DDDDDDDD\n")
// from path into mem.
func Load(path string, mem *emu.Memory) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loader: opening %s: %w", path, err)
	}
	defer f.Close()

	return LoadReader(f, mem)
}

// LoadReader reads records from r into mem; split out from Load so
// tests can feed an in-memory image without touching the filesystem.
func LoadReader(r io.Reader, mem *emu.Memory) (*Program, error) {
	prog := &Program{EntryPoint: EntryPoint}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("loader: line %d: expected \"ADDR DATA\", got %q", lineNo, line)
		}

		addr, err := strconv.ParseUint(fields[0], 16, 32)
		if err != nil {
			return nil, fmt.Errorf("loader: line %d: bad address %q: %w", lineNo, fields[0], err)
		}
		data, err := strconv.ParseUint(fields[1], 16, 32)
		if err != nil {
			return nil, fmt.Errorf("loader: line %d: bad data %q: %w", lineNo, fields[1], err)
		}

		mem.Write32(uint32(addr), uint32(data))
		prog.Records++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("loader: reading records: %w", err)
	}

	return prog, nil
}
