// Package heap implements the runtime's managed heap: a pair of equal-sized
// semi-spaces and a bump allocator over whichever half is currently active.
//
// The heap itself knows nothing about the tagged value encoding built on top
// of it (see package value); it only knows how to hand out zeroed, 8-byte
// aligned chunks and how to swap spaces for a copying collection.
package heap

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Ref addresses an object's header within a single semi-space. It is a byte
// offset, not a process-wide pointer: the same Ref means different things in
// different VMs' heaps. The zero Ref is reserved to mean "no object."
type Ref int64

// NilRef is the distinguished Ref that never addresses a live object.
const NilRef Ref = 0

// WordSize is the width, in bytes, of a chunk-size header and of every raw
// machine word the heap stores.
const WordSize = 8

// base is the first byte offset a real allocation may occupy; offset 0 is
// reserved so that NilRef is never a valid object address.
const base = WordSize

// Round8 rounds n up to the next multiple of 8.
func Round8(n int) int {
	return (n + 7) &^ 7
}

// Stats records cumulative counters for a heap across its lifetime.
type Stats struct {
	Allocated       uint64 // bytes handed out, including headers
	Collections     uint64
	LastPauseNanos  int64
	TotalPauseNanos int64
}

// Heap owns two equal-sized semi-spaces. Alloc bumps a pointer through the
// active half; BeginGC/EndGC swap halves for a copying collection.
type Heap struct {
	spaces [2][]byte
	active int
	next   int
	size   int // capacity of a single semi-space, in bytes

	stats Stats
}

// ErrHeapExhausted is returned (wrapped) when a request cannot be satisfied
// even by the freshly-reserved semi-space after a collection.
var ErrHeapExhausted = errors.New("heap exhausted")

// New allocates a heap with two semi-spaces of size bytes each.
func New(size int) *Heap {
	h := &Heap{size: size}
	h.spaces[0] = make([]byte, size)
	h.spaces[1] = make([]byte, size)
	h.next = base

	return h
}

// Size returns the capacity of a single semi-space.
func (h *Heap) Size() int { return h.size }

// Used returns the number of bytes bumped through the active semi-space.
func (h *Heap) Used() int { return h.next }

// Remaining returns the number of unused bytes left in the active semi-space.
func (h *Heap) Remaining() int { return h.size - h.next }

// Active returns the backing array of the currently active semi-space. The
// slice is only valid for reading/writing object payloads; callers must not
// retain it across a collection.
func (h *Heap) Active() []byte { return h.spaces[h.active] }

// Stats returns a snapshot of the heap's cumulative counters.
func (h *Heap) Stats() Stats { return h.stats }

// Alloc reserves n bytes of zeroed payload, rounded up to an 8-byte multiple,
// and prefixes it with an 8-byte chunk-size header so the collector can walk
// the heap linearly. It returns the Ref of the payload (just past the
// header) and false if the request does not fit in the remaining space.
func (h *Heap) Alloc(n int) (Ref, bool) {
	payload := Round8(n)
	total := payload + WordSize

	if h.next+total > h.size {
		return NilRef, false
	}

	off := h.next
	buf := h.Active()
	PutWord(buf, off, int64(total))

	ref := Ref(off + WordSize)
	clearBytes(buf[int(ref) : int(ref)+payload])

	h.next = off + total
	h.stats.Allocated += uint64(total)

	return ref, true
}

// Fits reports whether a request of n bytes would succeed against the
// active space right now, without actually allocating. Used by the scoped
// reservation idiom to decide, up front, whether a collection is needed.
func (h *Heap) Fits(n int) bool {
	return h.next+Round8(n)+WordSize <= h.size
}

// ChunkSize returns the total size, header included, of the allocation at
// ref, as recorded by Alloc.
func ChunkSize(buf []byte, ref Ref) int {
	return int(GetWord(buf, int(ref)-WordSize))
}

// BeginGC swaps the active and reserve semi-spaces, resets the bump pointer
// on the new (now-empty) active space, and returns the previous active space
// so the collector can copy live data out of it. The returned slice must not
// be written to; it is read-only scratch for the duration of the collection.
func (h *Heap) BeginGC() []byte {
	from := h.Active()
	h.active = 1 - h.active
	h.next = base

	return from
}

// EndGC records a completed collection's pause duration.
func (h *Heap) EndGC(pauseNanos int64) {
	h.stats.Collections++
	h.stats.LastPauseNanos = pauseNanos
	h.stats.TotalPauseNanos += pauseNanos
}

// GetWord reads a little-endian 64-bit word from buf at off.
func GetWord(buf []byte, off int) int64 {
	return int64(binary.LittleEndian.Uint64(buf[off : off+WordSize]))
}

// PutWord writes v as a little-endian 64-bit word into buf at off.
func PutWord(buf []byte, off int, v int64) {
	binary.LittleEndian.PutUint64(buf[off:off+WordSize], uint64(v))
}

func clearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

func (s Stats) String() string {
	return fmt.Sprintf("allocated=%d collections=%d last_pause=%dns total_pause=%dns",
		s.Allocated, s.Collections, s.LastPauseNanos, s.TotalPauseNanos)
}
