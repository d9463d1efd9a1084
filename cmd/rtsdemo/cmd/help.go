package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/smoynes/rtsdemo/internal/cli"
	"github.com/smoynes/rtsdemo/internal/log"
)

type help struct {
	cmd []cli.Command
}

var _ cli.Command = (*help)(nil)

func (help) Description() string {
	return "display help for commands"
}

func (h help) FlagSet() *cli.FlagSet {
	return flag.NewFlagSet("help", flag.ExitOnError)
}

func (h help) Run(_ context.Context, args []string, out io.Writer, _ *log.Logger) int {
	if len(args) == 1 {
		for _, c := range h.cmd {
			if args[0] == c.FlagSet().Name() {
				h.printCommandHelp(c)
				return 0
			}
		}
	}

	if err := h.Usage(flag.CommandLine.Output()); err != nil {
		return 1
	}

	return 0
}

func (h *help) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `
rtsdemo pokes at the runtime core's heap, collector, and cross-VM mailbox by hand.

Usage:

        rtsdemo <command> [option]... [arg]...

Commands:`)
	if err != nil {
		return err
	}

	for _, c := range h.cmd {
		fs := c.FlagSet()
		fmt.Fprintf(out, "  %-20s %s\n", fs.Name(), c.Description())
	}

	fmt.Fprintf(out, "  %-20s %s\n", h.FlagSet().Name(), h.Description())
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Use `rtsdemo help <command>` to get help for a command.")

	return err
}

func (h *help) printCommandHelp(c cli.Command) {
	out := flag.CommandLine.Output()
	_ = c.FlagSet().Parse(nil)

	fmt.Fprint(out, "Usage:\n\n        rtsdemo ")

	if err := c.Usage(out); err != nil {
		return
	}

	fmt.Fprintln(out, "\nOptions:")
	c.FlagSet().PrintDefaults()
}

func Help(cmd []cli.Command) *help {
	return &help{cmd: cmd}
}
