package machine

import (
	"encoding/binary"
	"math/bits"

	"github.com/smoynes/rtsdemo/internal/value"
)

// BufferAllocate allocates a BUFFER with at least hint bytes of capacity,
// rounded up to the next power of two: a buffer only ever grows by doubling,
// so rounding the initial request up front avoids an immediate reallocation
// on the first append past a non-power-of-two hint.
func (vm *VM) BufferAllocate(hint int) (value.Value, error) {
	cap := nextPow2(hint)

	release, err := vm.Reserve(value.BufferSize(cap))
	if err != nil {
		return value.Value(0), err
	}
	defer release()

	ref, _ := vm.Heap.Alloc(value.BufferSize(cap))
	value.WriteBuffer(vm.Heap.Active(), ref, cap)

	return value.PtrValue(ref), nil
}

func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}

	return 1 << bits.Len(uint(n-1))
}

// AppendBuffer appends data to buf, growing (doubling capacity, copying the
// filled prefix, and reusing the original for nothing) as needed. It
// returns the (possibly relocated) buffer.
func (vm *VM) AppendBuffer(buf value.Value, data []byte) (value.Value, error) {
	active := vm.Heap.Active()
	fill := value.BufferFill(active, buf.Ref())
	cap := value.BufferCap(active, buf.Ref())

	if fill+len(data) <= cap {
		copy(value.BufferBytes(active, buf.Ref())[fill:], data)
		value.SetBufferFill(active, buf.Ref(), fill+len(data))

		return buf, nil
	}

	newCap := nextPow2(fill + len(data))

	release, err := vm.Reserve(value.BufferSize(newCap), &buf)
	if err != nil {
		return value.Value(0), err
	}
	defer release()

	active = vm.Heap.Active()

	newRef, _ := vm.Heap.Alloc(value.BufferSize(newCap))
	value.WriteBuffer(active, newRef, newCap)
	copy(value.BufferBytes(active, newRef), value.BufferBytes(active, buf.Ref())[:fill])
	copy(value.BufferBytes(active, newRef)[fill:], data)
	value.SetBufferFill(active, newRef, fill+len(data))

	return value.PtrValue(newRef), nil
}

// Appending fixed-width integers at the buffer's fill, and peeking them at a
// byte offset, in native, little-endian, or big-endian byte order, for each
// of the four widths.

func (vm *VM) AppendB8(buf value.Value, v uint8) (value.Value, error) {
	return vm.AppendBuffer(buf, []byte{v})
}

// AppendB8Native is an alias of AppendB8: byte order is moot at width 1, but
// the name completes the documented Native/LE/BE trio for every width.
func (vm *VM) AppendB8Native(buf value.Value, v uint8) (value.Value, error) {
	return vm.AppendB8(buf, v)
}

func (vm *VM) AppendB16Native(buf value.Value, v uint16) (value.Value, error) {
	b := make([]byte, 2)
	binary.NativeEndian.PutUint16(b, v)

	return vm.AppendBuffer(buf, b)
}

func (vm *VM) AppendB16LE(buf value.Value, v uint16) (value.Value, error) {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)

	return vm.AppendBuffer(buf, b)
}

func (vm *VM) AppendB16BE(buf value.Value, v uint16) (value.Value, error) {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, v)

	return vm.AppendBuffer(buf, b)
}

func (vm *VM) AppendB32Native(buf value.Value, v uint32) (value.Value, error) {
	b := make([]byte, 4)
	binary.NativeEndian.PutUint32(b, v)

	return vm.AppendBuffer(buf, b)
}

func (vm *VM) AppendB32LE(buf value.Value, v uint32) (value.Value, error) {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)

	return vm.AppendBuffer(buf, b)
}

func (vm *VM) AppendB32BE(buf value.Value, v uint32) (value.Value, error) {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)

	return vm.AppendBuffer(buf, b)
}

func (vm *VM) AppendB64Native(buf value.Value, v uint64) (value.Value, error) {
	b := make([]byte, 8)
	binary.NativeEndian.PutUint64(b, v)

	return vm.AppendBuffer(buf, b)
}

func (vm *VM) AppendB64LE(buf value.Value, v uint64) (value.Value, error) {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)

	return vm.AppendBuffer(buf, b)
}

func (vm *VM) AppendB64BE(buf value.Value, v uint64) (value.Value, error) {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)

	return vm.AppendBuffer(buf, b)
}

func (vm *VM) PeekB8(buf value.Value, off int) uint8 {
	return value.BufferBytes(vm.Heap.Active(), buf.Ref())[off]
}

// PeekB8Native is an alias of PeekB8: byte order is moot at width 1, but the
// name completes the documented Native/LE/BE trio for every width.
func (vm *VM) PeekB8Native(buf value.Value, off int) uint8 {
	return vm.PeekB8(buf, off)
}

func (vm *VM) PeekB16Native(buf value.Value, off int) uint16 {
	b := value.BufferBytes(vm.Heap.Active(), buf.Ref())
	return binary.NativeEndian.Uint16(b[off : off+2])
}

func (vm *VM) PeekB16LE(buf value.Value, off int) uint16 {
	b := value.BufferBytes(vm.Heap.Active(), buf.Ref())
	return binary.LittleEndian.Uint16(b[off : off+2])
}

func (vm *VM) PeekB16BE(buf value.Value, off int) uint16 {
	b := value.BufferBytes(vm.Heap.Active(), buf.Ref())
	return binary.BigEndian.Uint16(b[off : off+2])
}

func (vm *VM) PeekB32Native(buf value.Value, off int) uint32 {
	b := value.BufferBytes(vm.Heap.Active(), buf.Ref())
	return binary.NativeEndian.Uint32(b[off : off+4])
}

func (vm *VM) PeekB32LE(buf value.Value, off int) uint32 {
	b := value.BufferBytes(vm.Heap.Active(), buf.Ref())
	return binary.LittleEndian.Uint32(b[off : off+4])
}

func (vm *VM) PeekB32BE(buf value.Value, off int) uint32 {
	b := value.BufferBytes(vm.Heap.Active(), buf.Ref())
	return binary.BigEndian.Uint32(b[off : off+4])
}

func (vm *VM) PeekB64Native(buf value.Value, off int) uint64 {
	b := value.BufferBytes(vm.Heap.Active(), buf.Ref())
	return binary.NativeEndian.Uint64(b[off : off+8])
}

func (vm *VM) PeekB64LE(buf value.Value, off int) uint64 {
	b := value.BufferBytes(vm.Heap.Active(), buf.Ref())
	return binary.LittleEndian.Uint64(b[off : off+8])
}

func (vm *VM) PeekB64BE(buf value.Value, off int) uint64 {
	b := value.BufferBytes(vm.Heap.Active(), buf.Ref())
	return binary.BigEndian.Uint64(b[off : off+8])
}
