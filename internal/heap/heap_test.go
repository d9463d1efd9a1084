package heap

import "testing"

func TestAllocFitsWithoutOverlap(tt *testing.T) {
	tt.Parallel()

	h := New(4096)

	sizes := []int{1, 7, 8, 9, 64, 100}
	refs := make([]Ref, 0, len(sizes))

	for _, s := range sizes {
		ref, ok := h.Alloc(s)
		if !ok {
			tt.Fatalf("alloc(%d): did not fit", s)
		}

		if int(ref)%8 != 0 {
			tt.Errorf("alloc(%d): ref %d is not 8-byte aligned", s, ref)
		}

		refs = append(refs, ref)
	}

	for i, ref := range refs {
		end := int(ref) + Round8(sizes[i])

		for j, other := range refs {
			if i == j {
				continue
			}

			if int(other) >= int(ref) && int(other) < end {
				tt.Errorf("alloc %d overlaps alloc %d", i, j)
			}
		}
	}
}

func TestAllocExhaustion(tt *testing.T) {
	tt.Parallel()

	h := New(64)

	if _, ok := h.Alloc(32); !ok {
		tt.Fatal("alloc(32): expected to fit in fresh 64-byte heap")
	}

	if _, ok := h.Alloc(32); ok {
		tt.Fatal("alloc(32): expected overflow on second allocation")
	}
}

func TestAllocZeroesPayload(tt *testing.T) {
	tt.Parallel()

	h := New(256)

	ref, ok := h.Alloc(16)
	if !ok {
		tt.Fatal("alloc: did not fit")
	}

	buf := h.Active()
	for i := int(ref); i < int(ref)+16; i++ {
		if buf[i] != 0 {
			tt.Fatalf("byte %d: expected zero, got %d", i, buf[i])
		}
	}
}

func TestBeginGCSwapsSpaces(tt *testing.T) {
	tt.Parallel()

	h := New(128)

	ref, ok := h.Alloc(8)
	if !ok {
		tt.Fatal("alloc: did not fit")
	}

	PutWord(h.Active(), int(ref), 0xdeadbeef)

	from := h.BeginGC()

	if h.Used() != base {
		tt.Errorf("used = %d, want %d after BeginGC", h.Used(), base)
	}

	if GetWord(from, int(ref)) != 0xdeadbeef {
		tt.Error("BeginGC did not preserve the prior active space for reading")
	}
}

func TestChunkSizeRoundTrip(tt *testing.T) {
	tt.Parallel()

	h := New(256)

	ref, ok := h.Alloc(10)
	if !ok {
		tt.Fatal("alloc: did not fit")
	}

	if got, want := ChunkSize(h.Active(), ref), Round8(10)+WordSize; got != want {
		tt.Errorf("ChunkSize = %d, want %d", got, want)
	}
}
