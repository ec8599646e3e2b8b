// Package main implements the mipssim interactive shell named in
// spec.md §6: go, run N, mdump LOW HIGH, rdump, ?, quit. This is the
// one external collaborator spec.md explicitly scopes out of the
// timing core, so it stays a thin cobra-driven dispatch loop over a
// *processor.Processor.
package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sarchlab/mipssim/timing/processor"
)

// REPL owns the processor and drives the shell loop.
type REPL struct {
	proc *processor.Processor
	out  io.Writer
	root *cobra.Command
}

// NewREPL wires up the cobra command tree against proc.
func NewREPL(proc *processor.Processor, out io.Writer) *REPL {
	r := &REPL{proc: proc, out: out}
	r.root = r.buildCommands()
	return r
}

func (r *REPL) buildCommands() *cobra.Command {
	root := &cobra.Command{Use: "mipssim", SilenceUsage: true, SilenceErrors: true}

	root.AddCommand(&cobra.Command{
		Use:   "go",
		Short: "run until all cores halt",
		RunE: func(cmd *cobra.Command, args []string) error {
			for r.proc.ActiveCoreCount() > 0 {
				r.proc.Cycle()
			}
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "run N",
		Short: "advance N cycles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("run: %w", err)
			}
			for i := uint64(0); i < n; i++ {
				r.proc.Cycle()
			}
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "mdump LOW HIGH",
		Short: "dump memory words in [LOW, HIGH]",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			low, err := strconv.ParseUint(args[0], 16, 32)
			if err != nil {
				return fmt.Errorf("mdump: bad low address: %w", err)
			}
			high, err := strconv.ParseUint(args[1], 16, 32)
			if err != nil {
				return fmt.Errorf("mdump: bad high address: %w", err)
			}
			for a := low; a <= high; a += 4 {
				fmt.Fprintf(r.out, "%08x: %08x\n", a, r.proc.Memory.Read32(uint32(a)))
			}
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "rdump",
		Short: "print registers and counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			r.dumpRegs()
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "quit",
		Short: "exit the shell",
		RunE: func(cmd *cobra.Command, args []string) error {
			return errQuit
		},
	})

	return root
}

var errQuit = fmt.Errorf("quit")

func (r *REPL) dumpRegs() {
	for i := 0; i < r.proc.NumCores(); i++ {
		c := r.proc.Core(i)
		fmt.Fprintf(r.out, "-- core %d --\n", i)
		regs := c.Pipeline.Regs()
		for reg := 0; reg < 32; reg++ {
			fmt.Fprintf(r.out, "$%-3d %08x\n", reg, regs.Read(reg))
		}
		fmt.Fprintf(r.out, "hi %08x lo %08x pc %08x\n", regs.HI, regs.LO, c.Pipeline.PC())

		fetched, retired, squashed := r.proc.Counters(i)
		fmt.Fprintf(r.out, "fetched %d retired %d squashed %d cycles %d\n",
			fetched, retired, squashed, r.proc.CycleCount())
	}
}

// Run reads lines from in (typically os.Stdin) and dispatches each
// one until "quit" or EOF; no prompt is printed. Returns the shell's
// exit code.
func (r *REPL) Run(in io.Reader) int {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "?" {
			fmt.Fprintln(r.out, r.root.UsageString())
			continue
		}

		r.root.SetArgs(strings.Fields(line))
		if err := r.root.Execute(); err != nil {
			if err == errQuit {
				return 0
			}
			fmt.Fprintf(r.out, "error: %v\n", err)
		}
	}
	return 0
}
