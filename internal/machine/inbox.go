package machine

import (
	"context"
	"time"

	"github.com/smoynes/rtsdemo/internal/value"
)

// pollInterval is how often a blocked receiver wakes on its own to recheck
// its context, mirroring the keyboard device's wait-on-condition-variable
// idiom but bounded, since nothing else in this runtime ever calls
// Broadcast on a VM's own inbox purely to unstick a cancelled caller.
const pollInterval = 3 * time.Second

// AllocLock acquires vm's allocation lock if vm currently has peers. It is
// exported for package mailbox, which must hold the destination's lock for
// an entire deep copy (see CopyTo's doc comment); machine code itself never
// needs this directly, since Reserve and CopyTo already manage it.
func (vm *VM) AllocLock() (unlock func()) {
	if !hasPeers() {
		return func() {}
	}

	vm.allocMu.Lock()

	return vm.allocMu.Unlock
}

// CollectionCount returns the number of collections vm's heap has run.
func (vm *VM) CollectionCount() uint64 {
	return vm.Heap.Stats().Collections
}

// DeliverMessage appends a message already copied into vm's heap to vm's
// inbox, in FIFO order per sender, and wakes any goroutine blocked in
// RecvMessage or RecvMessageFrom. It returns ErrInboxFull if vm's mailbox
// has reached its configured bound.
func (vm *VM) DeliverMessage(sender *VM, msg value.Value) error {
	vm.inboxMu.Lock()
	defer vm.inboxMu.Unlock()

	if len(vm.inbox) >= vm.inboxMax {
		return fatalf(2, ErrInboxFull, "inbox full")
	}

	vm.inbox = append(vm.inbox, mailEntry{sender: sender, msg: msg})
	vm.stats.MessagesRecv++
	vm.inboxCond.Broadcast()

	return nil
}

// CheckMessage returns the oldest pending message, from any sender,
// without blocking. The message stays queued for a later RecvMessage.
func (vm *VM) CheckMessage() (sender *VM, msg value.Value, ok bool) {
	vm.inboxMu.Lock()
	defer vm.inboxMu.Unlock()

	return vm.peekLocked(func(mailEntry) bool { return true })
}

// CheckMessageFrom returns the oldest pending message from sender, without
// blocking. The message stays queued for a later RecvMessageFrom.
func (vm *VM) CheckMessageFrom(sender *VM) (value.Value, bool) {
	vm.inboxMu.Lock()
	defer vm.inboxMu.Unlock()

	_, msg, ok := vm.peekLocked(func(e mailEntry) bool { return e.sender == sender })

	return msg, ok
}

// RecvMessage blocks until a message from any sender arrives, or ctx is
// done.
func (vm *VM) RecvMessage(ctx context.Context) (*VM, value.Value, error) {
	sender, msg, ok := vm.waitLocked(ctx, func(mailEntry) bool { return true })
	if !ok {
		return nil, value.Value(0), ctx.Err()
	}

	return sender, msg, nil
}

// RecvMessageFrom blocks until a message from sender specifically arrives,
// or ctx is done. Messages from other senders remain queued, undisturbed,
// for their own RecvMessageFrom or RecvMessage calls.
func (vm *VM) RecvMessageFrom(ctx context.Context, sender *VM) (value.Value, error) {
	_, msg, ok := vm.waitLocked(ctx, func(e mailEntry) bool { return e.sender == sender })
	if !ok {
		return value.Value(0), ctx.Err()
	}

	return msg, nil
}

// popLocked removes and returns the oldest entry matching pred. Callers
// must hold vm.inboxMu.
func (vm *VM) popLocked(pred func(mailEntry) bool) (*VM, value.Value, bool) {
	for i, e := range vm.inbox {
		if pred(e) {
			vm.inbox = append(vm.inbox[:i:i], vm.inbox[i+1:]...)
			return e.sender, e.msg, true
		}
	}

	return nil, value.Value(0), false
}

// peekLocked returns the oldest entry matching pred, leaving it in the
// inbox. Callers must hold vm.inboxMu.
func (vm *VM) peekLocked(pred func(mailEntry) bool) (*VM, value.Value, bool) {
	for _, e := range vm.inbox {
		if pred(e) {
			return e.sender, e.msg, true
		}
	}

	return nil, value.Value(0), false
}

// waitLocked blocks, waking at least every pollInterval to recheck ctx,
// until an entry matching pred arrives or ctx is done.
func (vm *VM) waitLocked(ctx context.Context, pred func(mailEntry) bool) (*VM, value.Value, bool) {
	stop := make(chan struct{})
	defer close(stop)

	go func() {
		t := time.NewTicker(pollInterval)
		defer t.Stop()

		for {
			select {
			case <-t.C:
				vm.inboxMu.Lock()
				vm.inboxCond.Broadcast()
				vm.inboxMu.Unlock()
			case <-stop:
				return
			}
		}
	}()

	vm.inboxMu.Lock()
	defer vm.inboxMu.Unlock()

	for {
		if sender, msg, ok := vm.popLocked(pred); ok {
			return sender, msg, true
		}

		select {
		case <-ctx.Done():
			return nil, value.Value(0), false
		default:
		}

		vm.inboxCond.Wait()
	}
}
