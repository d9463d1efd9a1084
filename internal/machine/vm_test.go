package machine

import (
	"testing"

	"github.com/smoynes/rtsdemo/internal/value"
)

func TestInitVMDefaults(tt *testing.T) {
	tt.Parallel()

	vm := InitVM(64, 4096, 4)
	defer Terminate(vm)

	if got := len(vm.stack); got != 64 {
		tt.Errorf("stack len = %d, want 64", got)
	}

	if got := vm.Heap.Size(); got != 4096 {
		tt.Errorf("heap size = %d, want 4096", got)
	}
}

func TestDefaultVMUsesDefaults(tt *testing.T) {
	tt.Parallel()

	vm := DefaultVM()
	defer Terminate(vm)

	if got := len(vm.stack); got != DefaultStackSize {
		tt.Errorf("stack len = %d, want %d", got, DefaultStackSize)
	}

	if got := vm.Heap.Size(); got != DefaultHeapSize {
		tt.Errorf("heap size = %d, want %d", got, DefaultHeapSize)
	}
}

func TestTerminateReturnsFinalStats(tt *testing.T) {
	tt.Parallel()

	vm := InitVM(64, 4096, 4)

	if err := vm.Push(value.MkInt(1)); err != nil {
		tt.Fatalf("push: %v", err)
	}

	stats := Terminate(vm)
	if stats.Heap.Allocated != 0 {
		tt.Errorf("allocated = %d, want 0 (no heap allocations occurred)", stats.Heap.Allocated)
	}
}

func TestHasPeersReflectsLiveVMCount(tt *testing.T) {
	// Not parallel: asserts on the package-level liveVMs counter, which
	// every other test in this package also mutates via InitVM/Terminate.
	before := hasPeers()

	first := InitVM(16, 4096, 4)
	defer Terminate(first)

	second := InitVM(16, 4096, 4)
	defer Terminate(second)

	if !hasPeers() {
		tt.Error("hasPeers() = false with two live VMs, want true")
	}

	_ = before
}
