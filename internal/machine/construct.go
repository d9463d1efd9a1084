package machine

import "github.com/smoynes/rtsdemo/internal/value"

// This file pairs each heap object kind with two constructors: a safe one
// that reserves its own space (and, among peers, takes the allocation
// lock), and a Raw one that assumes the caller already holds a Reserve
// scope covering the space. Composite builders -- e.g. building a CON whose
// fields are themselves freshly allocated strings -- call Reserve once for
// the whole batch and use only Raw constructors inside it, so the lock is
// never taken twice by the same call stack.

// MakeCon allocates and initializes a CON with the given constructor tag
// and fields. An arity-0 CON is never heap-allocated: it aliases the
// shared, process-wide NullaryTable entry, so it is pointer-identical
// across every VM that constructs the same tag.
func (vm *VM) MakeCon(conTag uint8, fields []value.Value) (value.Value, error) {
	if len(fields) == 0 {
		return value.NullaryTable[conTag], nil
	}

	extra := make([]*value.Value, len(fields))
	for i := range fields {
		extra[i] = &fields[i]
	}

	release, err := vm.Reserve(value.ConSize(len(fields)), extra...)
	if err != nil {
		return value.Value(0), err
	}
	defer release()

	return vm.MakeConRaw(conTag, fields), nil
}

// MakeConRaw assumes the caller already holds a Reserve scope sized for
// this CON.
func (vm *VM) MakeConRaw(conTag uint8, fields []value.Value) value.Value {
	ref, _ := vm.Heap.Alloc(value.ConSize(len(fields)))
	value.WriteCon(vm.Heap.Active(), ref, conTag, fields)

	return value.PtrValue(ref)
}

// MakeFloat allocates a boxed FLOAT.
func (vm *VM) MakeFloat(f float64) (value.Value, error) {
	release, err := vm.Reserve(value.FloatSize)
	if err != nil {
		return value.Value(0), err
	}
	defer release()

	return vm.MakeFloatRaw(f), nil
}

func (vm *VM) MakeFloatRaw(f float64) value.Value {
	ref, _ := vm.Heap.Alloc(value.FloatSize)
	value.WriteFloat(vm.Heap.Active(), ref, f)

	return value.PtrValue(ref)
}

// MakeString allocates a STRING holding a copy of s.
func (vm *VM) MakeString(s []byte) (value.Value, error) {
	release, err := vm.Reserve(value.StringSize(len(s)))
	if err != nil {
		return value.Value(0), err
	}
	defer release()

	return vm.MakeStringRaw(s), nil
}

func (vm *VM) MakeStringRaw(s []byte) value.Value {
	ref, _ := vm.Heap.Alloc(value.StringSize(len(s)))
	value.WriteString(vm.Heap.Active(), ref, s)

	return value.PtrValue(ref)
}

// MakeStrOffset allocates a STROFFSET referring to byte offset off within
// root, which must already address a STRING. StrTail passes the root of an
// existing STROFFSET rather than the STROFFSET itself, so chains stay at
// depth 1.
func (vm *VM) MakeStrOffset(root value.Value, off int64) (value.Value, error) {
	release, err := vm.Reserve(value.StrOffsetSize, &root)
	if err != nil {
		return value.Value(0), err
	}
	defer release()

	return vm.MakeStrOffsetRaw(root, off), nil
}

func (vm *VM) MakeStrOffsetRaw(root value.Value, off int64) value.Value {
	ref, _ := vm.Heap.Alloc(value.StrOffsetSize)
	value.WriteStrOffset(vm.Heap.Active(), ref, root, off)

	return value.PtrValue(ref)
}

// MakeBigInt allocates a BIGINT wrapping an arena-owned *big.Int handle.
func (vm *VM) MakeBigInt(handle int64) (value.Value, error) {
	release, err := vm.Reserve(value.BigIntSize)
	if err != nil {
		return value.Value(0), err
	}
	defer release()

	return vm.MakeBigIntRaw(handle), nil
}

func (vm *VM) MakeBigIntRaw(handle int64) value.Value {
	ref, _ := vm.Heap.Alloc(value.BigIntSize)
	value.WriteBigInt(vm.Heap.Active(), ref, handle)

	return value.PtrValue(ref)
}

// MakePtr allocates a PTR wrapping an opaque foreign-pointer handle.
func (vm *VM) MakePtr(handle int64) (value.Value, error) {
	release, err := vm.Reserve(value.PtrSize)
	if err != nil {
		return value.Value(0), err
	}
	defer release()

	return vm.MakePtrRaw(handle), nil
}

func (vm *VM) MakePtrRaw(handle int64) value.Value {
	ref, _ := vm.Heap.Alloc(value.PtrSize)
	value.WritePtr(vm.Heap.Active(), ref, handle)

	return value.PtrValue(ref)
}

// MakeManaged allocates a MANAGEDPTR holding a copy of data.
func (vm *VM) MakeManaged(data []byte) (value.Value, error) {
	release, err := vm.Reserve(value.ManagedSize(len(data)))
	if err != nil {
		return value.Value(0), err
	}
	defer release()

	return vm.MakeManagedRaw(data), nil
}

func (vm *VM) MakeManagedRaw(data []byte) value.Value {
	ref, _ := vm.Heap.Alloc(value.ManagedSize(len(data)))
	value.WriteManaged(vm.Heap.Active(), ref, data)

	return value.PtrValue(ref)
}

// MakeBits allocates a boxed scalar of the given width (8, 16, 32, or 64).
func (vm *VM) MakeBits(width int, v uint64) (value.Value, error) {
	release, err := vm.Reserve(value.BitsSize)
	if err != nil {
		return value.Value(0), err
	}
	defer release()

	return vm.MakeBitsRaw(width, v), nil
}

func (vm *VM) MakeBitsRaw(width int, v uint64) value.Value {
	ref, _ := vm.Heap.Alloc(value.BitsSize)
	value.WriteBits(vm.Heap.Active(), ref, width, v)

	return value.PtrValue(ref)
}

// MakeVector allocates a 128-bit vector register with lanes of the given
// width (8, 16, 32, or 64 bits).
func (vm *VM) MakeVector(laneWidth int, lo, hi uint64) (value.Value, error) {
	release, err := vm.Reserve(value.VectorSize)
	if err != nil {
		return value.Value(0), err
	}
	defer release()

	return vm.MakeVectorRaw(laneWidth, lo, hi), nil
}

func (vm *VM) MakeVectorRaw(laneWidth int, lo, hi uint64) value.Value {
	ref, _ := vm.Heap.Alloc(value.VectorSize)
	value.WriteVector(vm.Heap.Active(), ref, laneWidth, lo, hi)

	return value.PtrValue(ref)
}

// ConArity returns the constructor tag and field count of the CON at v.
// Callers outside this package -- internal/bc, in particular -- use this
// instead of reaching into internal/heap or internal/value's buffer-level
// accessors directly.
func (vm *VM) ConArity(v value.Value) (conTag uint8, arity int) {
	return value.ConPacked(vm.Heap.Active(), v.Ref())
}

// ConField returns the i'th field of the CON at v.
func (vm *VM) ConField(v value.Value, i int) value.Value {
	return value.ConField(vm.Heap.Active(), v.Ref(), i)
}

// Tag returns the heap tag of v, which must address a live object.
func (vm *VM) Tag(v value.Value) value.Tag {
	return value.ReadTag(vm.Heap.Active(), v.Ref())
}
