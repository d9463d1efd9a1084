package mailbox

import (
	"github.com/smoynes/rtsdemo/internal/machine"
	"github.com/smoynes/rtsdemo/internal/value"
)

// VMThread spawns a fresh VM on its own goroutine, copies arg into the new
// VM's heap (so the child never shares structure with its parent), and runs
// fn on the new goroutine with the child VM and its copy of arg. It returns
// the child VM immediately, so the caller can address messages to it before
// fn has necessarily started running.
func VMThread(parent *machine.VM, fn func(child *machine.VM, arg value.Value), arg value.Value) (*machine.VM, error) {
	child := machine.DefaultVM()

	copied, err := machine.CopyTo(child, parent, arg)
	if err != nil {
		machine.Terminate(child)
		return nil, err
	}

	go fn(child, copied)

	return child, nil
}
