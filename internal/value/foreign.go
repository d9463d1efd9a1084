package value

import (
	"math/big"
	"sync"
)

// bigints is the process-wide arena of big-integer values. BIGINT payloads
// are never walked by the semi-space collector, and no arena entry is ever
// freed.
//
// A real backend would replace this with whatever arbitrary-precision
// library the code generator already links; math/big stands in as the
// obvious idiomatic choice.
var bigints = struct {
	mu      sync.Mutex
	entries []*big.Int
}{}

// NewBigInt stores n in the arena and returns its handle.
func NewBigInt(n *big.Int) int64 {
	bigints.mu.Lock()
	defer bigints.mu.Unlock()

	bigints.entries = append(bigints.entries, n)

	return int64(len(bigints.entries) - 1)
}

// BigInt returns the big-integer stored at handle.
func BigInt(handle int64) *big.Int {
	bigints.mu.Lock()
	defer bigints.mu.Unlock()

	return bigints.entries[handle]
}

// CloneBigInt duplicates the value at handle into a fresh arena slot. Used
// when a BIGINT crosses into another VM's heap during a message send: the
// destination gets its own copy so the two VMs never share a *big.Int.
func CloneBigInt(handle int64) int64 {
	return NewBigInt(new(big.Int).Set(BigInt(handle)))
}

// foreign is the process-wide table of opaque PTR handles: raw pointers
// owned and freed by foreign code, never by this runtime. The runtime only
// ever copies the handle, never the pointee.
var foreign = struct {
	mu      sync.Mutex
	entries []any
}{}

// NewForeignPtr stores an opaque foreign value and returns its handle.
func NewForeignPtr(p any) int64 {
	foreign.mu.Lock()
	defer foreign.mu.Unlock()

	foreign.entries = append(foreign.entries, p)

	return int64(len(foreign.entries) - 1)
}

// ForeignPtr returns the foreign value stored at handle.
func ForeignPtr(handle int64) any {
	foreign.mu.Lock()
	defer foreign.mu.Unlock()

	return foreign.entries[handle]
}
