package bc

import (
	"fmt"
	"io"

	"github.com/smoynes/rtsdemo/internal/machine"
)

// Exec runs prog against vm from its first instruction, writing any PRINT
// output to out. It returns the error the first failing instruction
// produced, if any.
func Exec(vm *machine.VM, prog *Program, out io.Writer) error {
	env := &Env{Symbols: prog.Symbols, Out: out}
	pc := 0

	for pc >= 0 && pc < len(prog.Instr) {
		si := prog.Instr[pc]

		next, halt, err := si.Exec(vm, env)
		if err != nil {
			return fmt.Errorf("bc: line %d: %q: %w", si.Pos, si.Line, err)
		}

		if halt {
			return nil
		}

		if next < 0 {
			pc++
		} else {
			pc = next
		}
	}

	return nil
}
