package machine

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/smoynes/rtsdemo/internal/heap"
	"github.com/smoynes/rtsdemo/internal/log"
	"github.com/smoynes/rtsdemo/internal/value"
)

// Default sizes used by DefaultVM.
const (
	DefaultStackSize  = 4096        // Values
	DefaultHeapSize   = 1 << 20     // bytes, per semi-space
	DefaultMaxThreads = 256
	DefaultInboxSize  = 64 // pending messages
)

// Stats summarizes a VM's lifetime counters for reporting and tests.
type Stats struct {
	Heap         heap.Stats
	MessagesSent uint64
	MessagesRecv uint64
}

// mailEntry is one pending (sender, msg) pair. Ownership of msg has already
// been transferred into the receiving VM's heap by the time it lands here.
type mailEntry struct {
	sender *VM
	msg    value.Value
}

// liveVMs is the process-wide count of VMs that currently exist. A lone VM
// never needs to lock its own allocator; only once a second VM exists can a
// message send trigger a concurrent collection.
var liveVMs int64

// nextVMID hands out small, readable identifiers for logging.
var nextVMID int64

// VM is one execution context: a value stack, a managed heap, a pair of
// root registers, and, once it has peers, a mailbox and the locks that
// guard cross-VM messaging.
type VM struct {
	id int64

	stack []value.Value
	base  int
	top   int

	Heap *heap.Heap

	// Ret and Reg1 are the two scalar root registers a compiled program may
	// stash a live Value in across an allocation.
	Ret  value.Value
	Reg1 value.Value

	stats Stats

	allocMu sync.Mutex

	inboxMu   sync.Mutex
	inboxCond *sync.Cond
	inbox     []mailEntry
	inboxMax  int

	maxThreads int

	log *log.Logger
}

// InitVM allocates a VM with the given stack size (in Values), heap size
// (bytes, per semi-space), and maximum peer-thread bound.
func InitVM(stackSize, heapSize, maxThreads int) *VM {
	vm := &VM{
		id:         atomic.AddInt64(&nextVMID, 1),
		stack:      make([]value.Value, stackSize),
		Heap:       heap.New(heapSize),
		maxThreads: maxThreads,
		inboxMax:   DefaultInboxSize,
		log:        log.DefaultLogger(),
	}
	vm.inboxCond = sync.NewCond(&vm.inboxMu)

	atomic.AddInt64(&liveVMs, 1)

	vm.log.Debug("vm: created", "id", vm.id, "stack", stackSize, "heap", heapSize)

	return vm
}

// DefaultVM is the convenience constructor: default stack, heap, and thread
// bounds.
func DefaultVM() *VM {
	return InitVM(DefaultStackSize, DefaultHeapSize, DefaultMaxThreads)
}

// Terminate releases everything vm owns and returns its final statistics.
// The VM must not be used afterwards.
func Terminate(vm *VM) Stats {
	atomic.AddInt64(&liveVMs, -1)

	vm.log.Debug("vm: terminated", "id", vm.id, "stats", vm.Stats())

	final := vm.Stats()

	vm.stack = nil
	vm.Heap = nil
	vm.inbox = nil

	return final
}

// ID returns the VM's process-local identifier, used only for logging.
func (vm *VM) ID() int64 { return vm.id }

// Stats returns a snapshot of the VM's cumulative counters.
func (vm *VM) Stats() Stats {
	s := vm.stats
	s.Heap = vm.Heap.Stats()

	return s
}

func (vm *VM) String() string {
	return fmt.Sprintf("VM#%d stack=%d/%d heap=%s", vm.id, vm.top-vm.base, len(vm.stack), vm.Heap.Stats())
}

// LogValue lets slog render a VM compactly inside a log.Group.
func (vm *VM) LogValue() log.Value {
	return log.GroupValue(
		log.Any("id", vm.id),
		log.Any("stack_top", vm.top),
		log.Any("heap", vm.Heap.Stats()),
	)
}

// hasPeers reports whether more than one VM exists process-wide, i.e.
// whether this VM's allocation lock needs to actually do anything.
func hasPeers() bool {
	return atomic.LoadInt64(&liveVMs) > 1
}
