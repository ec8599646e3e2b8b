// Command mipssim is the interactive shell for the MIPS multicore
// timing simulator. It loads an object file into a flat memory, builds
// a Processor over the configured cache/DRAM hierarchy, and drives it
// from the commands named in spec.md §6.
package main

import (
	"fmt"
	"os"

	"github.com/sarchlab/mipssim/emu"
	"github.com/sarchlab/mipssim/loader"
	"github.com/sarchlab/mipssim/timing/latency"
	"github.com/sarchlab/mipssim/timing/processor"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: mipssim PROGRAM [CONFIG]")
		return 1
	}

	cfg := latency.DefaultConfig()
	if len(args) >= 2 {
		loaded, err := latency.LoadConfig(args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "mipssim: %v\n", err)
			return 1
		}
		cfg = loaded
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "mipssim: invalid config: %v\n", err)
		return 1
	}

	mem := emu.NewMemory(cfg.MemorySize)
	prog, err := loader.Load(args[0], mem)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mipssim: %v\n", err)
		return 1
	}

	proc := processor.New(cfg, mem, prog.EntryPoint, os.Stdout)
	repl := NewREPL(proc, os.Stdout)
	return repl.Run(os.Stdin)
}
