package cmd

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/smoynes/rtsdemo/internal/bc"
	"github.com/smoynes/rtsdemo/internal/cli"
	"github.com/smoynes/rtsdemo/internal/log"
	"github.com/smoynes/rtsdemo/internal/machine"
)

func Repl() cli.Command {
	return &replCmd{}
}

type replCmd struct{}

func (replCmd) Description() string {
	return "interactive bytecode stack-machine inspector"
}

func (replCmd) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `repl

Starts an interactive session over a single live VM. Each line typed is
one bytecode instruction (see internal/bc's Grammar), executed
immediately against the VM's stack and heap -- JMP/JZ targets must
therefore name a label defined on the same line as a prior instruction,
since each line compiles and runs as its own tiny program. Dot-commands:

        .stack   print the VM's id and heap statistics
        .gc      force a collection now
        .quit    end the session

Input is read in raw, single-keystroke mode when stdin is a terminal
(so the prompt can be edited in place) and falls back to ordinary
line-buffered input otherwise, e.g. when piping in a script.`)

	return err
}

func (replCmd) FlagSet() *cli.FlagSet {
	return flag.NewFlagSet("repl", flag.ExitOnError)
}

func (replCmd) Run(ctx context.Context, _ []string, out io.Writer, logger *log.Logger) int {
	vm := machine.InitVM(machine.DefaultStackSize, machine.DefaultHeapSize, machine.DefaultMaxThreads)
	defer machine.Terminate(vm)

	fd := int(os.Stdin.Fd())

	if term.IsTerminal(fd) {
		return runRawRepl(fd, vm, out, logger)
	}

	return runLineRepl(os.Stdin, vm, out, logger)
}

// rawReadWriter adapts os.Stdin/os.Stdout to the io.ReadWriter
// term.NewTerminal requires.
type rawReadWriter struct {
	io.Reader
	io.Writer
}

func runRawRepl(fd int, vm *machine.VM, out io.Writer, logger *log.Logger) int {
	state, err := term.MakeRaw(fd)
	if err != nil {
		logger.Error("repl: MakeRaw failed", "err", err)
		return 1
	}
	defer term.Restore(fd, state)

	rw := rawReadWriter{Reader: os.Stdin, Writer: out}
	t := term.NewTerminal(rw, "rtsdemo> ")

	for {
		line, err := t.ReadLine()
		if err != nil {
			if err != io.EOF {
				logger.Error("repl: read failed", "err", err)
				return 1
			}

			return 0
		}

		if !replLine(vm, line, t, logger) {
			return 0
		}
	}
}

func runLineRepl(in io.Reader, vm *machine.VM, out io.Writer, logger *log.Logger) int {
	scanner := bufio.NewScanner(in)

	for scanner.Scan() {
		if !replLine(vm, scanner.Text(), out, logger) {
			return 0
		}
	}

	return 0
}

// replLine handles one line of input, returning false if the session
// should end.
func replLine(vm *machine.VM, line string, out io.Writer, logger *log.Logger) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}

	switch line {
	case ".quit":
		return false
	case ".gc":
		if err := vm.Collect(); err != nil {
			logger.Error("gc failed", "err", err)
		} else {
			fmt.Fprintln(out, "ok")
		}

		return true
	case ".stack":
		fmt.Fprintln(out, vm.String())
		return true
	}

	prog, err := bc.Compile(strings.NewReader(line), logger)
	if err != nil {
		fmt.Fprintln(out, "error:", err)
		return true
	}

	if err := bc.Exec(vm, prog, out); err != nil {
		fmt.Fprintln(out, "error:", err)
	}

	return true
}
