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

func Heap() cli.Command {
	return &heapCmd{}
}

type heapCmd struct {
	heapSize int
	count    int
}

func (heapCmd) Description() string {
	return "allocate values and report heap statistics"
}

func (heapCmd) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `heap [-size bytes] [-n count]

Allocates count small objects in a fresh VM's heap and prints the
resulting heap statistics.`)

	return err
}

func (h *heapCmd) FlagSet() *cli.FlagSet {
	fs := flag.NewFlagSet("heap", flag.ExitOnError)
	fs.IntVar(&h.heapSize, "size", machine.DefaultHeapSize, "heap size in `bytes`")
	fs.IntVar(&h.count, "n", 1000, "number of objects to allocate")

	return fs
}

func (h *heapCmd) Run(_ context.Context, _ []string, out io.Writer, logger *log.Logger) int {
	vm := machine.InitVM(machine.DefaultStackSize, h.heapSize, machine.DefaultMaxThreads)
	defer machine.Terminate(vm)

	for i := 0; i < h.count; i++ {
		if _, err := vm.MakeString([]byte(fmt.Sprintf("object-%d", i))); err != nil {
			logger.Error("allocation failed", "err", err, "at", i)
			return 1
		}
	}

	stats := vm.Stats()
	fmt.Fprintf(out, "allocated:   %d bytes\n", stats.Heap.Allocated)
	fmt.Fprintf(out, "collections: %d\n", stats.Heap.Collections)
	fmt.Fprintf(out, "last pause:  %s\n", time.Duration(stats.Heap.LastPauseNanos))
	fmt.Fprintf(out, "total pause: %s\n", time.Duration(stats.Heap.TotalPauseNanos))

	return 0
}
