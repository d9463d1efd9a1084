package machine

import (
	"github.com/smoynes/rtsdemo/internal/heap"
	"github.com/smoynes/rtsdemo/internal/value"
)

// Push places v on top of vm's stack, returning ErrStackOverflow (wrapped
// in a *FatalError) if the stack's fixed capacity is exhausted.
func (vm *VM) Push(v value.Value) error {
	if vm.top >= len(vm.stack) {
		return fatalf(2, ErrStackOverflow, "stack overflow")
	}

	vm.stack[vm.top] = v
	vm.top++

	return nil
}

// Pop removes and returns the top value on vm's stack.
func (vm *VM) Pop() (value.Value, error) {
	if vm.top <= vm.base {
		return value.Value(0), fatalf(2, ErrStackUnderflow, "stack underflow")
	}

	vm.top--

	return vm.stack[vm.top], nil
}

// Top returns the value i slots below the top of the stack without
// removing it; Top(0) is the topmost value.
func (vm *VM) Top(i int) value.Value {
	return vm.stack[vm.top-1-i]
}

// Loc returns the value at absolute stack slot i, relative to vm's current
// frame base.
func (vm *VM) Loc(i int) value.Value {
	return vm.stack[vm.base+i]
}

// SetLoc overwrites the value at absolute stack slot i, relative to vm's
// current frame base.
func (vm *VM) SetLoc(i int, v value.Value) {
	vm.stack[vm.base+i] = v
}

// Project writes a constructor's fields onto the stack starting at loc,
// mirroring the generated G-machine code's "unpack this CON and push its
// arity fields" step. conRef must address a CON object.
func (vm *VM) Project(buf []byte, conRef heap.Ref, loc, arity int) {
	for i := 0; i < arity; i++ {
		vm.SetLoc(loc+i, value.ConField(buf, conRef, i))
	}
}

// Slide copies the top n stack slots down to base[0..n) and makes them the
// whole frame -- the stack-machine analogue of a tail call's frame collapse.
func (vm *VM) Slide(n int) {
	copy(vm.stack[vm.base:vm.base+n], vm.stack[vm.top-n:vm.top])
	vm.top = vm.base + n
}
