package bc

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/smoynes/rtsdemo/internal/machine"
	"github.com/smoynes/rtsdemo/internal/value"
)

// Instruction is one parsed, executable bytecode operation. Parse fills in
// an instruction's operands from source text; Exec runs it against a live
// VM. Exec returns the index of the next instruction to run (or -1 to fall
// through to pc+1) and whether the program should stop.
type Instruction interface {
	Parse(operator string, operands []string) error
	Exec(vm *machine.VM, env *Env) (next int, halt bool, err error)
}

// Env carries everything an instruction needs besides the VM itself: the
// label table built by the parser, and where PRINT writes.
type Env struct {
	Symbols SymbolTable
	Out     io.Writer
}

// instructionTable maps an opcode name to a constructor for its
// Instruction, mirroring internal/asm's instructionTable of opcode
// prototypes.
var instructionTable = map[string]func() Instruction{
	"PUSH":  func() Instruction { return &pushOp{} },
	"PUSHS": func() Instruction { return &pushStrOp{} },
	"POP":   func() Instruction { return &popOp{} },
	"DUP":   func() Instruction { return &dupOp{} },
	"ADD":   func() Instruction { return &arithOp{op: '+'} },
	"SUB":   func() Instruction { return &arithOp{op: '-'} },
	"MUL":   func() Instruction { return &arithOp{op: '*'} },
	"EQ":    func() Instruction { return &cmpOp{op: '='} },
	"LT":    func() Instruction { return &cmpOp{op: '<'} },
	"CONS":  func() Instruction { return &consOp{} },
	"FIELD":   func() Instruction { return &fieldOp{} },
	"PRINT":   func() Instruction { return &printOp{} },
	"JMP":     func() Instruction { return &jmpOp{} },
	"JZ":      func() Instruction { return &jzOp{} },
	"HALT":    func() Instruction { return &haltOp{} },
	"ARGC":    func() Instruction { return &argcOp{} },
	"ARG":     func() Instruction { return &argOp{} },
	"SYSINFO": func() Instruction { return &sysinfoOp{} },
}

var errOperandCount = errors.New("wrong number of operands")

// pushOp: PUSH n -- push the integer immediate n.
type pushOp struct{ n int64 }

func (o *pushOp) Parse(_ string, operands []string) error {
	if len(operands) != 1 {
		return errOperandCount
	}

	n, err := strconv.ParseInt(operands[0], 0, 64)
	if err != nil {
		return err
	}

	o.n = n

	return nil
}

func (o *pushOp) Exec(vm *machine.VM, _ *Env) (int, bool, error) {
	return -1, false, vm.Push(value.MkInt(o.n))
}

// pushStrOp: PUSHS "text" -- allocate and push a STRING.
type pushStrOp struct{ s string }

func (o *pushStrOp) Parse(_ string, operands []string) error {
	if len(operands) != 1 {
		return errOperandCount
	}

	o.s = operands[0]

	return nil
}

func (o *pushStrOp) Exec(vm *machine.VM, _ *Env) (int, bool, error) {
	v, err := vm.MakeString([]byte(o.s))
	if err != nil {
		return -1, false, err
	}

	return -1, false, vm.Push(v)
}

// popOp: POP -- discard the top of stack.
type popOp struct{}

func (o *popOp) Parse(_ string, operands []string) error {
	if len(operands) != 0 {
		return errOperandCount
	}

	return nil
}

func (o *popOp) Exec(vm *machine.VM, _ *Env) (int, bool, error) {
	_, err := vm.Pop()
	return -1, false, err
}

// dupOp: DUP -- push a copy of the top of stack.
type dupOp struct{}

func (o *dupOp) Parse(_ string, operands []string) error {
	if len(operands) != 0 {
		return errOperandCount
	}

	return nil
}

func (o *dupOp) Exec(vm *machine.VM, _ *Env) (int, bool, error) {
	return -1, false, vm.Push(vm.Top(0))
}

// arithOp: ADD / SUB / MUL -- pop two INTs, push the result.
type arithOp struct{ op byte }

func (o *arithOp) Parse(_ string, operands []string) error {
	if len(operands) != 0 {
		return errOperandCount
	}

	return nil
}

func (o *arithOp) Exec(vm *machine.VM, _ *Env) (int, bool, error) {
	b, err := popInt(vm)
	if err != nil {
		return -1, false, err
	}

	a, err := popInt(vm)
	if err != nil {
		return -1, false, err
	}

	var result int64

	switch o.op {
	case '+':
		result = a + b
	case '-':
		result = a - b
	case '*':
		result = a * b
	}

	return -1, false, vm.Push(value.MkInt(result))
}

// cmpOp: EQ / LT -- pop two INTs, push 1 or 0.
type cmpOp struct{ op byte }

func (o *cmpOp) Parse(_ string, operands []string) error {
	if len(operands) != 0 {
		return errOperandCount
	}

	return nil
}

func (o *cmpOp) Exec(vm *machine.VM, _ *Env) (int, bool, error) {
	b, err := popInt(vm)
	if err != nil {
		return -1, false, err
	}

	a, err := popInt(vm)
	if err != nil {
		return -1, false, err
	}

	var ok bool

	switch o.op {
	case '=':
		ok = a == b
	case '<':
		ok = a < b
	}

	result := int64(0)
	if ok {
		result = 1
	}

	return -1, false, vm.Push(value.MkInt(result))
}

// consOp: CONS tag, arity -- pop arity values (deepest first) and push a
// freshly built CON.
type consOp struct {
	tag   uint8
	arity int
}

func (o *consOp) Parse(_ string, operands []string) error {
	if len(operands) != 2 {
		return errOperandCount
	}

	tag, err := strconv.ParseUint(operands[0], 0, 8)
	if err != nil {
		return err
	}

	arity, err := strconv.Atoi(operands[1])
	if err != nil {
		return err
	}

	o.tag = uint8(tag)
	o.arity = arity

	return nil
}

func (o *consOp) Exec(vm *machine.VM, _ *Env) (int, bool, error) {
	fields := make([]value.Value, o.arity)

	for i := o.arity - 1; i >= 0; i-- {
		v, err := vm.Pop()
		if err != nil {
			return -1, false, err
		}

		fields[i] = v
	}

	v, err := vm.MakeCon(o.tag, fields)
	if err != nil {
		return -1, false, err
	}

	return -1, false, vm.Push(v)
}

// fieldOp: FIELD i -- pop a CON, push its i'th field.
type fieldOp struct{ i int }

func (o *fieldOp) Parse(_ string, operands []string) error {
	if len(operands) != 1 {
		return errOperandCount
	}

	i, err := strconv.Atoi(operands[0])
	if err != nil {
		return err
	}

	o.i = i

	return nil
}

func (o *fieldOp) Exec(vm *machine.VM, _ *Env) (int, bool, error) {
	con, err := vm.Pop()
	if err != nil {
		return -1, false, err
	}

	return -1, false, vm.Push(vm.ConField(con, o.i))
}

// printOp: PRINT -- pop a value and write its textual form to env.Out.
type printOp struct{}

func (o *printOp) Parse(_ string, operands []string) error {
	if len(operands) != 0 {
		return errOperandCount
	}

	return nil
}

func (o *printOp) Exec(vm *machine.VM, env *Env) (int, bool, error) {
	v, err := vm.Pop()
	if err != nil {
		return -1, false, err
	}

	fmt.Fprintln(env.Out, formatValue(vm, v))

	return -1, false, nil
}

// jmpOp: JMP label -- unconditional jump.
type jmpOp struct{ label string }

func (o *jmpOp) Parse(_ string, operands []string) error {
	if len(operands) != 1 {
		return errOperandCount
	}

	o.label = operands[0]

	return nil
}

func (o *jmpOp) Exec(_ *machine.VM, env *Env) (int, bool, error) {
	target, err := env.Symbols.Lookup(o.label)
	return target, false, err
}

// jzOp: JZ label -- pop an INT, jump if it is zero.
type jzOp struct{ label string }

func (o *jzOp) Parse(_ string, operands []string) error {
	if len(operands) != 1 {
		return errOperandCount
	}

	o.label = operands[0]

	return nil
}

func (o *jzOp) Exec(vm *machine.VM, env *Env) (int, bool, error) {
	n, err := popInt(vm)
	if err != nil {
		return -1, false, err
	}

	if n != 0 {
		return -1, false, nil
	}

	target, err := env.Symbols.Lookup(o.label)

	return target, false, err
}

// haltOp: HALT -- stop the program.
type haltOp struct{}

func (o *haltOp) Parse(_ string, operands []string) error {
	if len(operands) != 0 {
		return errOperandCount
	}

	return nil
}

func (o *haltOp) Exec(_ *machine.VM, _ *Env) (int, bool, error) {
	return -1, true, nil
}

// argcOp: ARGC -- push the number of program arguments.
type argcOp struct{}

func (o *argcOp) Parse(_ string, operands []string) error {
	if len(operands) != 0 {
		return errOperandCount
	}

	return nil
}

func (o *argcOp) Exec(vm *machine.VM, _ *Env) (int, bool, error) {
	return -1, false, vm.Push(value.MkInt(int64(machine.ArgCount())))
}

// argOp: ARG -- pop an index, push the program argument at that index as a
// STRING (empty if out of range).
type argOp struct{}

func (o *argOp) Parse(_ string, operands []string) error {
	if len(operands) != 0 {
		return errOperandCount
	}

	return nil
}

func (o *argOp) Exec(vm *machine.VM, _ *Env) (int, bool, error) {
	i, err := popInt(vm)
	if err != nil {
		return -1, false, err
	}

	v, err := vm.MakeString([]byte(machine.Arg(int(i))))
	if err != nil {
		return -1, false, err
	}

	return -1, false, vm.Push(v)
}

// sysinfoOp: SYSINFO -- pop an index, push the host-environment string at
// that index as a STRING (empty if out of range).
type sysinfoOp struct{}

func (o *sysinfoOp) Parse(_ string, operands []string) error {
	if len(operands) != 0 {
		return errOperandCount
	}

	return nil
}

func (o *sysinfoOp) Exec(vm *machine.VM, _ *Env) (int, bool, error) {
	i, err := popInt(vm)
	if err != nil {
		return -1, false, err
	}

	v, err := vm.MakeString([]byte(machine.SystemInfo(int(i))))
	if err != nil {
		return -1, false, err
	}

	return -1, false, vm.Push(v)
}

func popInt(vm *machine.VM) (int64, error) {
	v, err := vm.Pop()
	if err != nil {
		return 0, err
	}

	if !v.IsInt() {
		return 0, errors.New("bc: expected INT on stack")
	}

	return v.Int(), nil
}

// formatValue renders v for PRINT. INTs print as decimal; STRINGs and
// STROFFSETs print as their text; everything else falls back to v's own
// String, the same debug rendering the collector and tests use.
func formatValue(vm *machine.VM, v value.Value) string {
	switch {
	case v.IsInt(), v.IsNullary():
		return v.String()
	case v.IsPtr():
		switch vm.Tag(v) {
		case value.TagString, value.TagStrOffset:
			return vm.ReadStr(v)
		default:
			return v.String()
		}
	default:
		return v.String()
	}
}
