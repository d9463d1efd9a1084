package machine

import (
	"fmt"
	"strconv"

	"github.com/smoynes/rtsdemo/internal/value"
)

// readBytes returns the flattened byte content a string-like Value (STRING
// or STROFFSET) denotes, regardless of which it is.
func (vm *VM) readBytes(v value.Value) []byte {
	buf := vm.Heap.Active()

	if value.ReadTag(buf, v.Ref()) == value.TagStrOffset {
		root := value.StrOffsetRoot(buf, v.Ref())
		off := value.StrOffsetOffset(buf, v.Ref())

		return value.StringBytes(buf, root.Ref())[off:]
	}

	return value.StringBytes(buf, v.Ref())
}

// StrLen returns the length, in bytes, of the string-like value v.
func (vm *VM) StrLen(v value.Value) int {
	return len(vm.readBytes(v))
}

// StrEq reports whether a and b denote the same sequence of bytes.
func (vm *VM) StrEq(a, b value.Value) bool {
	ab, bb := vm.readBytes(a), vm.readBytes(b)
	if len(ab) != len(bb) {
		return false
	}

	for i := range ab {
		if ab[i] != bb[i] {
			return false
		}
	}

	return true
}

// StrLt reports whether a sorts lexicographically before b.
func (vm *VM) StrLt(a, b value.Value) bool {
	ab, bb := vm.readBytes(a), vm.readBytes(b)

	for i := 0; i < len(ab) && i < len(bb); i++ {
		if ab[i] != bb[i] {
			return ab[i] < bb[i]
		}
	}

	return len(ab) < len(bb)
}

// StrHead returns the first byte of v as an immediate integer Value.
func (vm *VM) StrHead(v value.Value) value.Value {
	return value.MkInt(int64(vm.readBytes(v)[0]))
}

// StrTail returns a STROFFSET one byte into v, sharing v's backing bytes
// rather than copying them.
func (vm *VM) StrTail(v value.Value) (value.Value, error) {
	buf := vm.Heap.Active()

	if value.ReadTag(buf, v.Ref()) == value.TagStrOffset {
		root := value.StrOffsetRoot(buf, v.Ref())
		off := value.StrOffsetOffset(buf, v.Ref())

		return vm.MakeStrOffset(root, off+1)
	}

	return vm.MakeStrOffset(v, 1)
}

// StrCons allocates a new STRING with b prepended to v's bytes. Unlike
// StrTail, prepending cannot share structure, since there is no backwards
// offset: it must copy.
func (vm *VM) StrCons(b byte, v value.Value) (value.Value, error) {
	tail := vm.readBytes(v)
	out := make([]byte, 0, len(tail)+1)
	out = append(out, b)
	out = append(out, tail...)

	return vm.MakeString(out)
}

// StrIndex returns the byte at position i of v as an immediate integer.
func (vm *VM) StrIndex(v value.Value, i int) value.Value {
	return value.MkInt(int64(vm.readBytes(v)[i]))
}

// StrRev allocates a new STRING holding v's bytes in reverse order.
func (vm *VM) StrRev(v value.Value) (value.Value, error) {
	src := vm.readBytes(v)
	out := make([]byte, len(src))

	for i, b := range src {
		out[len(src)-1-i] = b
	}

	return vm.MakeString(out)
}

// ReadStr copies out the bytes a string-like Value denotes, flattening any
// STROFFSET, for callers (e.g. the mailbox, I/O) that need an ordinary Go
// string rather than a live heap reference.
func (vm *VM) ReadStr(v value.Value) string {
	return string(vm.readBytes(v))
}

// CastIntStr renders an immediate integer as a decimal STRING.
func (vm *VM) CastIntStr(v value.Value) (value.Value, error) {
	return vm.MakeString([]byte(strconv.FormatInt(v.Int(), 10)))
}

// CastStrInt parses a decimal STRING as an immediate integer, atoi-style: an
// optional leading sign followed by as many decimal digits as it finds,
// stopping silently at the first non-digit rather than failing. A string
// with no leading digits casts to 0.
func (vm *VM) CastStrInt(v value.Value) (value.Value, error) {
	s := vm.ReadStr(v)

	i := 0
	neg := false

	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}

	start := i

	var n int64

	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		n = n*10 + int64(s[i]-'0')
		i++
	}

	if i == start {
		return value.MkInt(0), nil
	}

	if neg {
		n = -n
	}

	return value.MkInt(n), nil
}

// CastFloatStr renders a boxed FLOAT as a STRING.
func (vm *VM) CastFloatStr(v value.Value) (value.Value, error) {
	f := value.ReadFloat(vm.Heap.Active(), v.Ref())
	return vm.MakeString([]byte(strconv.FormatFloat(f, 'g', -1, 64)))
}

// CastStrFloat parses a STRING as a boxed FLOAT.
func (vm *VM) CastStrFloat(v value.Value) (value.Value, error) {
	f, err := strconv.ParseFloat(vm.ReadStr(v), 64)
	if err != nil {
		return value.Value(0), fmt.Errorf("cast string to float: %w", err)
	}

	return vm.MakeFloat(f)
}

// CastBitsStr renders a boxed BITS value of the given width as a decimal
// STRING.
func (vm *VM) CastBitsStr(v value.Value, width int) (value.Value, error) {
	n := value.ReadBits(vm.Heap.Active(), v.Ref())
	return vm.MakeString([]byte(strconv.FormatUint(n, 10)))
}
