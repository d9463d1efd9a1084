package machine

import (
	"testing"

	"github.com/smoynes/rtsdemo/internal/value"
)

func TestBufferAllocateRoundsCapacityToPow2(tt *testing.T) {
	tt.Parallel()

	vm := DefaultVM()
	defer Terminate(vm)

	buf, err := vm.BufferAllocate(5)
	if err != nil {
		tt.Fatalf("BufferAllocate: %v", err)
	}

	if got := value.BufferCap(vm.Heap.Active(), buf.Ref()); got != 8 {
		tt.Errorf("BufferCap = %d, want 8 (hint 5 rounded up to a power of two)", got)
	}
}

func TestAppendBufferGrowsWithoutLosingData(tt *testing.T) {
	tt.Parallel()

	vm := DefaultVM()
	defer Terminate(vm)

	buf, err := vm.BufferAllocate(1)
	if err != nil {
		tt.Fatalf("BufferAllocate: %v", err)
	}

	for i := 0; i < 10; i++ {
		buf, err = vm.AppendBuffer(buf, []byte{byte(i)})
		if err != nil {
			tt.Fatalf("AppendBuffer(%d): %v", i, err)
		}
	}

	for i := 0; i < 10; i++ {
		if got := vm.PeekB8(buf, i); got != byte(i) {
			tt.Errorf("PeekB8(%d) = %d, want %d", i, got, i)
		}
	}
}

func TestAppendB16Endianness(tt *testing.T) {
	tt.Parallel()

	vm := DefaultVM()
	defer Terminate(vm)

	buf, err := vm.BufferAllocate(4)
	if err != nil {
		tt.Fatalf("BufferAllocate: %v", err)
	}

	buf, err = vm.AppendB16LE(buf, 0x1234)
	if err != nil {
		tt.Fatalf("AppendB16LE: %v", err)
	}

	buf, err = vm.AppendB16BE(buf, 0x1234)
	if err != nil {
		tt.Fatalf("AppendB16BE: %v", err)
	}

	if got := vm.PeekB16LE(buf, 0); got != 0x1234 {
		tt.Errorf("PeekB16LE(0) = %#x, want 0x1234", got)
	}

	if got := vm.PeekB16BE(buf, 2); got != 0x1234 {
		tt.Errorf("PeekB16BE(2) = %#x, want 0x1234", got)
	}

	if got := vm.PeekB8(buf, 0); got != 0x34 {
		tt.Errorf("low byte of LE word = %#x, want 0x34", got)
	}

	if got := vm.PeekB8(buf, 2); got != 0x12 {
		tt.Errorf("high byte of BE word leads at offset 2 = %#x, want 0x12", got)
	}
}

func TestAppendB32Endianness(tt *testing.T) {
	tt.Parallel()

	vm := DefaultVM()
	defer Terminate(vm)

	buf, err := vm.BufferAllocate(8)
	if err != nil {
		tt.Fatalf("BufferAllocate: %v", err)
	}

	buf, err = vm.AppendB32LE(buf, 0x12345678)
	if err != nil {
		tt.Fatalf("AppendB32LE: %v", err)
	}

	buf, err = vm.AppendB32BE(buf, 0x12345678)
	if err != nil {
		tt.Fatalf("AppendB32BE: %v", err)
	}

	if got := vm.PeekB32LE(buf, 0); got != 0x12345678 {
		tt.Errorf("PeekB32LE(0) = %#x, want 0x12345678", got)
	}

	if got := vm.PeekB32BE(buf, 4); got != 0x12345678 {
		tt.Errorf("PeekB32BE(4) = %#x, want 0x12345678", got)
	}

	if got := vm.PeekB8(buf, 0); got != 0x78 {
		tt.Errorf("low byte of LE word = %#x, want 0x78", got)
	}

	if got := vm.PeekB8(buf, 4); got != 0x12 {
		tt.Errorf("high byte of BE word leads at offset 4 = %#x, want 0x12", got)
	}
}

func TestAppendB64Endianness(tt *testing.T) {
	tt.Parallel()

	vm := DefaultVM()
	defer Terminate(vm)

	buf, err := vm.BufferAllocate(16)
	if err != nil {
		tt.Fatalf("BufferAllocate: %v", err)
	}

	buf, err = vm.AppendB64LE(buf, 0x0123456789abcdef)
	if err != nil {
		tt.Fatalf("AppendB64LE: %v", err)
	}

	buf, err = vm.AppendB64BE(buf, 0x0123456789abcdef)
	if err != nil {
		tt.Fatalf("AppendB64BE: %v", err)
	}

	if got := vm.PeekB64LE(buf, 0); got != 0x0123456789abcdef {
		tt.Errorf("PeekB64LE(0) = %#x, want 0x0123456789abcdef", got)
	}

	if got := vm.PeekB64BE(buf, 8); got != 0x0123456789abcdef {
		tt.Errorf("PeekB64BE(8) = %#x, want 0x0123456789abcdef", got)
	}

	if got := vm.PeekB8(buf, 0); got != 0xef {
		tt.Errorf("low byte of LE word = %#x, want 0xef", got)
	}

	if got := vm.PeekB8(buf, 8); got != 0x01 {
		tt.Errorf("high byte of BE word leads at offset 8 = %#x, want 0x01", got)
	}
}

func TestAppendBNativeRoundTrips(tt *testing.T) {
	tt.Parallel()

	vm := DefaultVM()
	defer Terminate(vm)

	buf, err := vm.BufferAllocate(16)
	if err != nil {
		tt.Fatalf("BufferAllocate: %v", err)
	}

	buf, err = vm.AppendB8Native(buf, 0x12)
	if err != nil {
		tt.Fatalf("AppendB8Native: %v", err)
	}

	buf, err = vm.AppendB16Native(buf, 0x1234)
	if err != nil {
		tt.Fatalf("AppendB16Native: %v", err)
	}

	buf, err = vm.AppendB32Native(buf, 0x12345678)
	if err != nil {
		tt.Fatalf("AppendB32Native: %v", err)
	}

	buf, err = vm.AppendB64Native(buf, 0x0123456789abcdef)
	if err != nil {
		tt.Fatalf("AppendB64Native: %v", err)
	}

	if got := vm.PeekB8Native(buf, 0); got != 0x12 {
		tt.Errorf("PeekB8Native(0) = %#x, want 0x12", got)
	}

	if got := vm.PeekB16Native(buf, 1); got != 0x1234 {
		tt.Errorf("PeekB16Native(1) = %#x, want 0x1234", got)
	}

	if got := vm.PeekB32Native(buf, 3); got != 0x12345678 {
		tt.Errorf("PeekB32Native(3) = %#x, want 0x12345678", got)
	}

	if got := vm.PeekB64Native(buf, 7); got != 0x0123456789abcdef {
		tt.Errorf("PeekB64Native(7) = %#x, want 0x0123456789abcdef", got)
	}
}
