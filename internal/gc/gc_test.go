package gc

import (
	"testing"

	"github.com/smoynes/rtsdemo/internal/heap"
	"github.com/smoynes/rtsdemo/internal/value"
)

func mkString(tt *testing.T, h *heap.Heap, s string) value.Value {
	tt.Helper()

	ref, ok := h.Alloc(value.StringSize(len(s)))
	if !ok {
		tt.Fatalf("alloc string %q: did not fit", s)
	}

	value.WriteString(h.Active(), ref, []byte(s))

	return value.PtrValue(ref)
}

func mkCon(tt *testing.T, h *heap.Heap, conTag uint8, fields ...value.Value) value.Value {
	tt.Helper()

	ref, ok := h.Alloc(value.ConSize(len(fields)))
	if !ok {
		tt.Fatal("alloc con: did not fit")
	}

	value.WriteCon(h.Active(), ref, conTag, fields)

	return value.PtrValue(ref)
}

func TestCollectPreservesReachableBytes(tt *testing.T) {
	tt.Parallel()

	h := heap.New(4096)

	s := mkString(tt, h, "hello world")
	con := mkCon(tt, h, 7, s, value.MkInt(99))

	roots := []*value.Value{&con}

	if _, err := Collect(h, roots); err != nil {
		tt.Fatalf("Collect: %v", err)
	}

	conRef := con.Ref()
	if value.ReadTag(h.Active(), conRef) != value.TagCon {
		tt.Fatalf("root tag = %s, want CON", value.ReadTag(h.Active(), conRef))
	}

	conTag, arity := value.ConPacked(h.Active(), conRef)
	if conTag != 7 || arity != 2 {
		tt.Fatalf("ConPacked = (%d, %d), want (7, 2)", conTag, arity)
	}

	sField := value.ConField(h.Active(), conRef, 0)
	if !sField.IsPtr() {
		tt.Fatal("field 0 is not a pointer after collection")
	}

	if got := string(value.StringBytes(h.Active(), sField.Ref())); got != "hello world" {
		tt.Errorf("string field = %q, want %q", got, "hello world")
	}

	if got := value.ConField(h.Active(), conRef, 1); got != value.MkInt(99) {
		tt.Errorf("int field = %v, want 99", got)
	}
}

func TestCollectDropsUnreachable(tt *testing.T) {
	tt.Parallel()

	h := heap.New(4096)

	_ = mkString(tt, h, "garbage, never rooted")
	kept := mkString(tt, h, "kept")

	roots := []*value.Value{&kept}

	before := h.Used()

	if _, err := Collect(h, roots); err != nil {
		tt.Fatalf("Collect: %v", err)
	}

	after := h.Used()

	if after >= before {
		tt.Errorf("used bytes after collection (%d) >= before (%d), garbage was retained", after, before)
	}

	if got := string(value.StringBytes(h.Active(), kept.Ref())); got != "kept" {
		tt.Errorf("kept string = %q", got)
	}
}

func TestCollectDeduplicatesSharedObject(tt *testing.T) {
	tt.Parallel()

	h := heap.New(4096)

	shared := mkString(tt, h, "shared")
	left := mkCon(tt, h, 1, shared)
	right := mkCon(tt, h, 2, shared)

	roots := []*value.Value{&left, &right}

	if _, err := Collect(h, roots); err != nil {
		tt.Fatalf("Collect: %v", err)
	}

	leftField := value.ConField(h.Active(), left.Ref(), 0)
	rightField := value.ConField(h.Active(), right.Ref(), 0)

	if leftField != rightField {
		tt.Errorf("shared object forwarded to two different locations: %v != %v", leftField, rightField)
	}
}

func TestCollectNeverLeavesFwdObservable(tt *testing.T) {
	tt.Parallel()

	h := heap.New(4096)

	con := mkCon(tt, h, 0, mkString(tt, h, "a"), mkString(tt, h, "b"))
	roots := []*value.Value{&con}

	if _, err := Collect(h, roots); err != nil {
		tt.Fatalf("Collect: %v", err)
	}

	if value.ReadTag(h.Active(), con.Ref()) == value.TagFwd {
		tt.Fatal("root object still tagged FWD after collection")
	}

	_, arity := value.ConPacked(h.Active(), con.Ref())

	for i := 0; i < arity; i++ {
		f := value.ConField(h.Active(), con.Ref(), i)
		if f.IsPtr() && value.ReadTag(h.Active(), f.Ref()) == value.TagFwd {
			tt.Errorf("field %d still tagged FWD after collection", i)
		}
	}
}

func TestCollectStrOffsetFollowsRoot(tt *testing.T) {
	tt.Parallel()

	h := heap.New(4096)

	root := mkString(tt, h, "hello world")

	ref, ok := h.Alloc(value.StrOffsetSize)
	if !ok {
		tt.Fatal("alloc stroffset: did not fit")
	}

	value.WriteStrOffset(h.Active(), ref, root, 6)
	tail := value.PtrValue(ref)

	roots := []*value.Value{&tail}

	if _, err := Collect(h, roots); err != nil {
		tt.Fatalf("Collect: %v", err)
	}

	newRoot := value.StrOffsetRoot(h.Active(), tail.Ref())
	offset := value.StrOffsetOffset(h.Active(), tail.Ref())

	full := value.StringBytes(h.Active(), newRoot.Ref())
	if got := string(full[offset:]); got != "world" {
		tt.Errorf("tail = %q, want %q", got, "world")
	}
}
