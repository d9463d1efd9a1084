package mailbox

import (
	"sync"

	"github.com/smoynes/rtsdemo/internal/machine"
	"github.com/smoynes/rtsdemo/internal/value"
)

// Msg is a received message: the value, already copied into the receiving
// VM's own heap, and the VM that sent it.
type Msg struct {
	Sender *machine.VM
	Value  value.Value
}

// msgs is the process-wide table of outstanding received-message handles,
// grounded on the same opaque-handle-arena idiom value's BIGINT/PTR arenas
// use: a Msg's Value is only safe to read while its owning VM's heap layout
// hasn't since been collected past it, so callers free a handle once they
// are done rather than holding the struct indefinitely.
var msgs = struct {
	mu      sync.Mutex
	entries map[int64]*Msg
	next    int64
}{entries: map[int64]*Msg{}}

func storeMsg(m *Msg) int64 {
	msgs.mu.Lock()
	defer msgs.mu.Unlock()

	h := msgs.next
	msgs.next++
	msgs.entries[h] = m

	return h
}

// GetMsg returns the value carried by the message at handle h.
func GetMsg(h int64) value.Value {
	msgs.mu.Lock()
	defer msgs.mu.Unlock()

	return msgs.entries[h].Value
}

// GetSender returns the VM that sent the message at handle h.
func GetSender(h int64) *machine.VM {
	msgs.mu.Lock()
	defer msgs.mu.Unlock()

	return msgs.entries[h].Sender
}

// FreeMsg releases the handle. The runtime never reuses handle numbers, so
// this is purely advisory bookkeeping to keep the table from growing
// unbounded over a long-running VM.
func FreeMsg(h int64) {
	msgs.mu.Lock()
	defer msgs.mu.Unlock()

	delete(msgs.entries, h)
}
