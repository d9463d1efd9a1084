package machine

import (
	"github.com/smoynes/rtsdemo/internal/gc"
	"github.com/smoynes/rtsdemo/internal/heap"
	"github.com/smoynes/rtsdemo/internal/value"
)

// Alloc reserves size bytes from vm's heap, running the collector and
// retrying exactly once if the request does not fit the first time. extra
// roots are values the caller is holding outside the stack and registers
// (e.g. a field not yet written into a constructor under construction) that
// must survive the collection.
func (vm *VM) Alloc(size int, extra ...*value.Value) (heap.Ref, error) {
	ref, ok := vm.Heap.Alloc(size)
	if ok {
		return ref, nil
	}

	if err := vm.collect(extra); err != nil {
		return heap.NilRef, err
	}

	ref, ok = vm.Heap.Alloc(size)
	if !ok {
		return heap.NilRef, fatalf(2, heap.ErrHeapExhausted, "heap exhausted after collection")
	}

	return ref, nil
}

// Reserve brackets a scope in which size bytes are guaranteed available and
// no collection will run for the lifetime of the returned release func --
// the Go analogue of require_alloc/done_alloc. When the VM has peers, it
// also holds the VM's allocation lock for the duration; that decision is
// made once, at acquisition, and the same decision is honored at release
// regardless of how liveVMs has changed in between.
//
// Callers that allocate several objects inside one Reserve scope must use
// the Raw-suffixed constructors, which assume the space has already been
// checked and never themselves collect or lock.
func (vm *VM) Reserve(size int, extra ...*value.Value) (func(), error) {
	locked := hasPeers()
	if locked {
		vm.allocMu.Lock()
	}

	release := func() {
		if locked {
			vm.allocMu.Unlock()
		}
	}

	if vm.Heap.Fits(size) {
		return release, nil
	}

	if err := vm.collect(extra); err != nil {
		release()
		return nil, err
	}

	if !vm.Heap.Fits(size) {
		release()
		return nil, fatalf(2, heap.ErrHeapExhausted, "heap exhausted after collection")
	}

	return release, nil
}

// Collect forces a full collection now, regardless of whether the active
// space is nearly full. Library code never needs this -- Alloc and Reserve
// collect on demand -- but a caller inspecting the collector directly (the
// "gc" CLI subcommand, tests) does.
func (vm *VM) Collect() error {
	return vm.collect(nil)
}

// collect assembles vm's full root set -- the live stack slice, the two
// scalar registers, every value still sitting in a pending mailbox entry,
// and any caller-supplied extras -- and runs a full collection in place.
func (vm *VM) collect(extra []*value.Value) error {
	roots := vm.roots(extra...)

	result, err := gc.Collect(vm.Heap, roots)
	if err != nil {
		return fatalf(2, err, "collection failed: "+err.Error())
	}

	vm.log.Debug("vm: collected", "id", vm.id, "result", result)

	return nil
}

// roots returns every *value.Value the collector must treat as a GC root:
// the live portion of the stack, Ret, Reg1, every pending mailbox entry's
// message, and whatever the caller is holding outside all of those.
func (vm *VM) roots(extra ...*value.Value) []*value.Value {
	roots := make([]*value.Value, 0, (vm.top-vm.base)+2+len(vm.inbox)+len(extra))

	for i := vm.base; i < vm.top; i++ {
		roots = append(roots, &vm.stack[i])
	}

	roots = append(roots, &vm.Ret, &vm.Reg1)

	vm.inboxMu.Lock()
	for i := range vm.inbox {
		roots = append(roots, &vm.inbox[i].msg)
	}
	vm.inboxMu.Unlock()

	roots = append(roots, extra...)

	return roots
}
