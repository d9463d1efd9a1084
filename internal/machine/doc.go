/*
Package machine implements a VM context: a value stack, a managed heap, a
pair of root registers, and -- in concurrent use -- a mailbox and the locks
that guard cross-VM messaging.

# Lifecycle #

InitVM allocates a VM with caller-chosen stack, heap, and thread-count
bounds; DefaultVM is the convenience constructor with sensible default
sizes. Terminate releases every resource a VM owns and returns its final
Stats.

# Allocation #

Every heap-allocating entry point threads the owning *VM explicitly; there
is no ambient per-thread "current VM" resolved from thread-local storage --
every caller that needs a VM already has one in hand, so a goroutine can
hold references into more than one at a time without any of them being
implicit. Alloc reserves size bytes, running the collector
and retrying once if the request does not fit. Reserve brackets a scope in
which the bump pointer is guaranteed stable and no collection will run --
the Go analogue of the require_alloc/done_alloc pairing -- and, when the VM
has peers, holds the VM's allocation lock for the duration. The lock is a
plain sync.Mutex, not reentrant: taking it again on the same VM inside a
Reserve scope deadlocks.

# Stack #

Values are pushed and popped like any other stack machine; Project and
Slide exist for the same reasons a generated interpreter needs them: writing
out a constructor's fields, and shifting an activation record down for a
tail call.
*/
package machine
