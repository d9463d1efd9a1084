// cmd/rtsdemo is the command-line interface to the runtime core: a small
// suite of subcommands that exercise the heap, the collector, cross-VM
// messaging, and a hand-typed bytecode REPL.
package main

import (
	"context"
	"os"

	"github.com/smoynes/rtsdemo/cmd/rtsdemo/cmd"
	"github.com/smoynes/rtsdemo/internal/cli"
	"github.com/smoynes/rtsdemo/internal/machine"
)

var commands = []cli.Command{
	cmd.Heap(),
	cmd.GC(),
	cmd.Send(),
	cmd.Repl(),
}

// Entry point.
func main() {
	machine.SetProgramArgs(os.Args)

	result :=
		cli.New(context.Background()).
			WithLogger(os.Stderr).
			WithCommands(commands).
			WithHelp(cmd.Help(commands)).
			Execute(os.Args[1:])

	os.Exit(result)
}
