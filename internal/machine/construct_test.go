package machine

import (
	"math/big"
	"testing"

	"github.com/smoynes/rtsdemo/internal/value"
)

func TestMakeConRoundTrip(tt *testing.T) {
	tt.Parallel()

	vm := DefaultVM()
	defer Terminate(vm)

	con, err := vm.MakeCon(5, []value.Value{value.MkInt(1), value.MkInt(2)})
	if err != nil {
		tt.Fatalf("MakeCon: %v", err)
	}

	conTag, arity := value.ConPacked(vm.Heap.Active(), con.Ref())
	if conTag != 5 || arity != 2 {
		tt.Errorf("ConPacked = (%d, %d), want (5, 2)", conTag, arity)
	}
}

func TestMakeConArityZeroAliasesNullaryTable(tt *testing.T) {
	tt.Parallel()

	a := DefaultVM()
	defer Terminate(a)

	b := DefaultVM()
	defer Terminate(b)

	nilA, err := a.MakeCon(9, nil)
	if err != nil {
		tt.Fatalf("MakeCon: %v", err)
	}

	nilB, err := b.MakeCon(9, nil)
	if err != nil {
		tt.Fatalf("MakeCon: %v", err)
	}

	if nilA != value.NullaryTable[9] || nilB != value.NullaryTable[9] {
		tt.Errorf("MakeCon(9, nil) = %v / %v, want both to equal NullaryTable[9] = %v",
			nilA, nilB, value.NullaryTable[9])
	}

	if nilA != nilB {
		tt.Errorf("arity-0 CON not pointer-identical across VMs: %v != %v", nilA, nilB)
	}
}

func TestMakeFloatRoundTrip(tt *testing.T) {
	tt.Parallel()

	vm := DefaultVM()
	defer Terminate(vm)

	v, err := vm.MakeFloat(3.5)
	if err != nil {
		tt.Fatalf("MakeFloat: %v", err)
	}

	if got := value.ReadFloat(vm.Heap.Active(), v.Ref()); got != 3.5 {
		tt.Errorf("ReadFloat = %v, want 3.5", got)
	}
}

func TestMakeBigIntRoundTrip(tt *testing.T) {
	tt.Parallel()

	vm := DefaultVM()
	defer Terminate(vm)

	h := value.NewBigInt(big.NewInt(12345))

	v, err := vm.MakeBigInt(h)
	if err != nil {
		tt.Fatalf("MakeBigInt: %v", err)
	}

	if got := value.BigIntHandle(vm.Heap.Active(), v.Ref()); got != h {
		tt.Errorf("BigIntHandle = %d, want %d", got, h)
	}
}

func TestMakeBitsAndVector(tt *testing.T) {
	tt.Parallel()

	vm := DefaultVM()
	defer Terminate(vm)

	b, err := vm.MakeBits(32, 0xdeadbeef)
	if err != nil {
		tt.Fatalf("MakeBits: %v", err)
	}

	if got := value.ReadBits(vm.Heap.Active(), b.Ref()); got != 0xdeadbeef {
		tt.Errorf("ReadBits = %#x, want 0xdeadbeef", got)
	}

	vec, err := vm.MakeVector(16, 0x1122, 0x3344)
	if err != nil {
		tt.Fatalf("MakeVector: %v", err)
	}

	lo, hi := value.ReadVector(vm.Heap.Active(), vec.Ref())
	if lo != 0x1122 || hi != 0x3344 {
		tt.Errorf("ReadVector = (%#x, %#x), want (0x1122, 0x3344)", lo, hi)
	}
}
