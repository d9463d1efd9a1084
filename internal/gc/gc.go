// Package gc implements the runtime's stop-the-world, copying (semi-space)
// collector. It knows how to trace the value package's tagged objects but
// nothing about VMs, stacks, or mailboxes: callers assemble the root set and
// hand it, and a heap, to Collect.
package gc

import (
	"fmt"
	"time"

	"github.com/smoynes/rtsdemo/internal/heap"
	"github.com/smoynes/rtsdemo/internal/value"
)

// Result reports what a single collection accomplished.
type Result struct {
	Before heap.Stats
	After  heap.Stats
	Pause  time.Duration
}

// Collect runs one semi-space collection over h, forwarding every Value
// reachable from roots (in place) and every Value field of every object
// copied along the way. roots typically covers a VM's stack slots, its
// return/auxiliary registers, and any pending mailbox entries.
//
// Collect fails only if the live set does not fit in the freshly-swapped
// semi-space -- heap exhaustion, which is fatal per the runtime's error
// contract (the caller is expected to treat it as such).
func Collect(h *heap.Heap, roots []*value.Value) (Result, error) {
	before := h.Stats()
	start := time.Now()

	from := h.BeginGC()

	forward := func(v *value.Value) error {
		val := *v
		if !val.IsPtr() || val.Ref() == heap.NilRef {
			return nil // immediates, nullary CONs and the zero Value (NilRef) pass through untouched
		}

		ref := val.Ref()

		if value.ReadTag(from, ref) == value.TagFwd {
			*v = value.FwdTarget(from, ref)
			return nil
		}

		newRef, err := copyObject(h, from, ref)
		if err != nil {
			return err
		}

		target := value.PtrValue(newRef)
		value.WriteFwd(from, ref, target)
		*v = target

		return nil
	}

	for _, root := range roots {
		if err := forward(root); err != nil {
			return Result{}, err
		}
	}

	// Scavenge newly-copied objects in address order. An explicit cursor
	// over the to-space, rather than recursion, so an arbitrarily deep DAG
	// cannot blow the goroutine stack.
	scanOff := firstObjectOffset()

	for scanOff < h.Used() {
		ref := heap.Ref(scanOff + heap.WordSize)
		buf := h.Active()

		switch value.ReadTag(buf, ref) {
		case value.TagCon:
			_, arity := value.ConPacked(buf, ref)

			for i := 0; i < arity; i++ {
				f := value.ConField(buf, ref, i)
				if err := forward(&f); err != nil {
					return Result{}, err
				}

				value.SetConField(buf, ref, i, f)
			}
		case value.TagStrOffset:
			root := value.StrOffsetRoot(buf, ref)
			if err := forward(&root); err != nil {
				return Result{}, err
			}

			offset := value.StrOffsetOffset(buf, ref)
			root, offset = flattenOffset(h.Active(), root, offset)
			value.WriteStrOffset(buf, ref, root, offset)

			// STRING, BITS*, BITS*x*, BUFFER, MANAGEDPTR, FLOAT, PTR, BIGINT carry
			// no child Values; their payloads were already copied verbatim.
		}

		scanOff += heap.ChunkSize(buf, ref)
	}

	pause := time.Since(start)
	h.EndGC(pause.Nanoseconds())

	return Result{Before: before, After: h.Stats(), Pause: pause}, nil
}

func firstObjectOffset() int {
	// Mirrors the base offset heap.Heap reserves for NilRef; kept here as a
	// small literal rather than exporting heap's unexported constant, since
	// the only fact the collector needs is "where does the to-space start".
	return heap.WordSize
}

func copyObject(h *heap.Heap, from []byte, ref heap.Ref) (heap.Ref, error) {
	n := heap.ChunkSize(from, ref) - heap.WordSize

	newRef, ok := h.Alloc(n)
	if !ok {
		return heap.NilRef, fmt.Errorf("%w: live set exceeds one semi-space", heap.ErrHeapExhausted)
	}

	to := h.Active()
	copy(to[int(newRef):int(newRef)+n], from[int(ref):int(ref)+n])

	return newRef, nil
}

// flattenOffset collapses a chain of STROFFSETs to depth 1: if root is
// itself a STROFFSET (possible only transiently, before the chain is
// flattened), it walks to the real STRING root and accumulates the offsets.
// machine.StrTail never constructs such a chain, but the collector restores
// the invariant defensively.
func flattenOffset(buf []byte, root value.Value, offset int64) (value.Value, int64) {
	for root.IsPtr() && value.ReadTag(buf, root.Ref()) == value.TagStrOffset {
		offset += value.StrOffsetOffset(buf, root.Ref())
		root = value.StrOffsetRoot(buf, root.Ref())
	}

	return root, offset
}
