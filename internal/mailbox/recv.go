package mailbox

import (
	"context"

	"github.com/smoynes/rtsdemo/internal/machine"
)

// CheckMessage returns a handle to the oldest pending message in vm's
// inbox, from any sender, without blocking or removing it from the inbox.
func CheckMessage(vm *machine.VM) (int64, bool) {
	sender, v, ok := vm.CheckMessage()
	if !ok {
		return 0, false
	}

	return storeMsg(&Msg{Sender: sender, Value: v}), true
}

// CheckMessageFrom returns a handle to the oldest pending message from
// sender specifically, without blocking or removing it from the inbox.
func CheckMessageFrom(vm, sender *machine.VM) (int64, bool) {
	v, ok := vm.CheckMessageFrom(sender)
	if !ok {
		return 0, false
	}

	return storeMsg(&Msg{Sender: sender, Value: v}), true
}

// RecvMessage blocks until a message from any sender arrives in vm's
// inbox, or ctx is done, and returns a handle to it.
func RecvMessage(ctx context.Context, vm *machine.VM) (int64, error) {
	sender, v, err := vm.RecvMessage(ctx)
	if err != nil {
		return 0, err
	}

	return storeMsg(&Msg{Sender: sender, Value: v}), nil
}

// RecvMessageFrom blocks until a message from sender specifically arrives,
// or ctx is done, and returns a handle to it.
func RecvMessageFrom(ctx context.Context, vm, sender *machine.VM) (int64, error) {
	v, err := vm.RecvMessageFrom(ctx, sender)
	if err != nil {
		return 0, err
	}

	return storeMsg(&Msg{Sender: sender, Value: v}), nil
}
