package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/smoynes/rtsdemo/internal/cli"
	"github.com/smoynes/rtsdemo/internal/log"
	"github.com/smoynes/rtsdemo/internal/machine"
)

func GC() cli.Command {
	return &gcCmd{}
}

type gcCmd struct {
	garbage int
}

func (gcCmd) Description() string {
	return "force a collection and report before/after stats"
}

func (gcCmd) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `gc [-garbage count]

Allocates count short-lived strings (dropping every reference before
forcing a collection), then forces a collection and prints the heap
statistics from before and after.`)

	return err
}

func (g *gcCmd) FlagSet() *cli.FlagSet {
	fs := flag.NewFlagSet("gc", flag.ExitOnError)
	fs.IntVar(&g.garbage, "garbage", 10000, "number of short-lived objects to allocate first")

	return fs
}

func (g *gcCmd) Run(_ context.Context, _ []string, out io.Writer, logger *log.Logger) int {
	vm := machine.InitVM(machine.DefaultStackSize, machine.DefaultHeapSize, machine.DefaultMaxThreads)
	defer machine.Terminate(vm)

	for i := 0; i < g.garbage; i++ {
		if _, err := vm.MakeString([]byte("garbage")); err != nil {
			logger.Error("allocation failed", "err", err, "at", i)
			return 1
		}
	}

	before := vm.Stats()
	fmt.Fprintf(out, "before: allocated=%d collections=%d\n", before.Heap.Allocated, before.Heap.Collections)

	if err := vm.Collect(); err != nil {
		logger.Error("collection failed", "err", err)
		return 1
	}

	after := vm.Stats()
	fmt.Fprintf(out, "after:  allocated=%d collections=%d pause=%s\n",
		after.Heap.Allocated, after.Heap.Collections, time.Duration(after.Heap.LastPauseNanos))

	return 0
}
