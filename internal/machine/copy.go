package machine

import "github.com/smoynes/rtsdemo/internal/value"

// CopyTo deep-copies v, which must live in src's active heap, into dst's
// heap, returning the equivalent value addressed in dst's space. It is the
// core of cross-VM message passing.
//
// The whole walk runs under a single hold of dst's allocation lock (when
// dst has peers): taking the lock once per object, the way the safe
// constructors do, would let a second concurrent sender's collection run
// between two of this walk's allocations and sweep away intermediate
// objects this walk has already written but not yet wired into anything
// dst's root set can see. CopyTo plays the role of one of the package's own
// composite "outer-lock" operations: it locks once, and every allocation
// inside the walk goes through a collect that roots the copy-in-progress.
//
// CON fields are walked through an explicit queue, not recursion, so an
// arbitrarily deep object graph cannot overflow the goroutine stack -- the
// same reason gc.Collect scans newly-copied objects with a cursor instead
// of recursing. STROFFSET's root is translated inline instead, since the
// runtime's own invariant bounds that chain to depth 1.
//
// Every already-copied destination value is kept as a *value.Value box, not
// a plain Value: a collection triggered by a later field in the same walk
// relocates earlier objects in place, through these same boxes, exactly the
// way it relocates a VM's stack and registers. Code that reads a box after
// making a further allocation always dereferences it again rather than
// reusing a value read before that allocation.
//
// copyScope memoizes already-copied sources, so shared structure (two
// fields pointing at the same string) stays shared in dst, exactly as the
// collector dedupes via FWD. Nullary CONs are immediates and pass through
// untouched; BIGINTs are duplicated via the arena, since the source VM's
// big.Int must not become shared mutable state across VMs; MANAGEDPTR and
// PTR payloads are copied/aliased verbatim, as their contents are opaque to
// the runtime.
func CopyTo(dst *VM, src *VM, v value.Value) (value.Value, error) {
	defer dst.AllocLock()()

	s := &copyScope{dst: dst, src: src, seen: map[int64]*value.Value{}}

	box, err := s.translate(v)
	if err != nil {
		return value.Value(0), err
	}

	for len(s.queue) > 0 {
		job := s.queue[0]
		s.queue = s.queue[1:]

		for i, f := range job.fields {
			fieldBox, err := s.translate(f)
			if err != nil {
				return value.Value(0), err
			}

			// job.box may have moved since it was allocated, if a field
			// earlier in this loop (or a prior job) triggered a
			// collection; re-read its current location every time.
			value.SetConField(s.dst.Heap.Active(), job.box.Ref(), i, *fieldBox)
		}
	}

	return *box, nil
}

// copyJob is a CON whose header has been written in dst but whose fields
// still name src-space values awaiting translation.
type copyJob struct {
	box    *value.Value
	fields []value.Value
}

// copyScope threads the in-progress copy's memoization table, pending CON
// work, and gives the collector, if it runs mid-copy, a root set covering
// every dst object already written but not yet reachable from dst's stack,
// registers, or inbox.
type copyScope struct {
	dst, src *VM
	seen     map[int64]*value.Value
	queue    []copyJob
}

// roots returns every already-copied destination value's box, so a
// collection triggered mid-walk forwards them in place instead of
// reclaiming them before they are wired into their parent.
func (s *copyScope) roots() []*value.Value {
	roots := make([]*value.Value, 0, len(s.seen))
	for _, box := range s.seen {
		roots = append(roots, box)
	}

	return roots
}

// allocRaw ensures size bytes are available in dst's active space,
// collecting (rooted by everything copied so far in this scope) if not,
// then allocates without taking dst's allocation lock again.
func (s *copyScope) allocRaw(size int) (*value.Value, error) {
	if !s.dst.Heap.Fits(size) {
		if err := s.dst.collect(s.roots()); err != nil {
			return nil, err
		}
	}

	ref, err := s.dst.Alloc(size, s.roots()...)
	if err != nil {
		return nil, err
	}

	box := new(value.Value)
	*box = value.PtrValue(ref)

	return box, nil
}

// translate returns the dst-space box equivalent to the (possibly
// src-space) value v, allocating and memoizing it if this is the first
// time v has been seen in this scope. A CON's fields are queued rather
// than translated immediately.
func (s *copyScope) translate(v value.Value) (*value.Value, error) {
	if !v.IsPtr() {
		box := new(value.Value)
		*box = v

		return box, nil
	}

	if box, ok := s.seen[int64(v.Ref())]; ok {
		return box, nil
	}

	srcBuf := s.src.Heap.Active()
	tag := value.ReadTag(srcBuf, v.Ref())

	if tag == value.TagCon {
		conTag, arity := value.ConPacked(srcBuf, v.Ref())

		fields := make([]value.Value, arity)
		for i := range fields {
			fields[i] = value.ConField(srcBuf, v.Ref(), i)
		}

		box, err := s.allocRaw(value.ConSize(arity))
		if err != nil {
			return nil, err
		}

		value.WriteCon(s.dst.Heap.Active(), box.Ref(), conTag, make([]value.Value, arity))
		s.seen[int64(v.Ref())] = box
		s.queue = append(s.queue, copyJob{box: box, fields: fields})

		return box, nil
	}

	box, err := s.allocRaw(tagSize(tag, srcBuf, v))
	if err != nil {
		return nil, err
	}

	s.seen[int64(v.Ref())] = box

	switch tag {
	case value.TagFloat:
		value.WriteFloat(s.dst.Heap.Active(), box.Ref(), value.ReadFloat(srcBuf, v.Ref()))

	case value.TagString:
		value.WriteString(s.dst.Heap.Active(), box.Ref(), value.StringBytes(srcBuf, v.Ref()))

	case value.TagStrOffset:
		root := value.StrOffsetRoot(srcBuf, v.Ref())
		off := value.StrOffsetOffset(srcBuf, v.Ref())

		rootBox, err := s.translate(root)
		if err != nil {
			return nil, err
		}

		value.WriteStrOffset(s.dst.Heap.Active(), box.Ref(), *rootBox, off)

	case value.TagBigInt:
		handle := value.CloneBigInt(value.BigIntHandle(srcBuf, v.Ref()))
		value.WriteBigInt(s.dst.Heap.Active(), box.Ref(), handle)

	case value.TagPtr:
		value.WritePtr(s.dst.Heap.Active(), box.Ref(), value.PtrHandle(srcBuf, v.Ref()))

	case value.TagManagedPtr:
		value.WriteManaged(s.dst.Heap.Active(), box.Ref(), value.ManagedBytes(srcBuf, v.Ref()))

	case value.TagBits8, value.TagBits16, value.TagBits32, value.TagBits64:
		value.WriteBits(s.dst.Heap.Active(), box.Ref(), bitsWidth(tag), value.ReadBits(srcBuf, v.Ref()))

	case value.TagBits8x16, value.TagBits16x8, value.TagBits32x4, value.TagBits64x2:
		lo, hi := value.ReadVector(srcBuf, v.Ref())
		value.WriteVector(s.dst.Heap.Active(), box.Ref(), vectorWidth(tag), lo, hi)

	case value.TagBuffer:
		cap := value.BufferCap(srcBuf, v.Ref())
		fill := value.BufferFill(srcBuf, v.Ref())
		data := value.BufferBytes(srcBuf, v.Ref())[:fill]

		dstBuf := s.dst.Heap.Active()
		value.WriteBuffer(dstBuf, box.Ref(), cap)
		copy(value.BufferBytes(dstBuf, box.Ref()), data)
		value.SetBufferFill(dstBuf, box.Ref(), fill)

	default:
		return nil, fatalf(2, ErrBadTag, "copy: unexpected tag "+tag.String())
	}

	return box, nil
}

// tagSize returns the byte size a copy of the object at v (tagged tag, in
// srcBuf) needs in the destination heap.
func tagSize(tag value.Tag, srcBuf []byte, v value.Value) int {
	switch tag {
	case value.TagFloat:
		return value.FloatSize
	case value.TagString:
		return value.StringSize(value.StringLen(srcBuf, v.Ref()))
	case value.TagStrOffset:
		return value.StrOffsetSize
	case value.TagBigInt:
		return value.BigIntSize
	case value.TagPtr:
		return value.PtrSize
	case value.TagManagedPtr:
		return value.ManagedSize(value.ManagedLen(srcBuf, v.Ref()))
	case value.TagBits8, value.TagBits16, value.TagBits32, value.TagBits64:
		return value.BitsSize
	case value.TagBits8x16, value.TagBits16x8, value.TagBits32x4, value.TagBits64x2:
		return value.VectorSize
	case value.TagBuffer:
		return value.BufferSize(value.BufferCap(srcBuf, v.Ref()))
	default:
		return 0
	}
}

func bitsWidth(t value.Tag) int {
	switch t {
	case value.TagBits8:
		return 8
	case value.TagBits16:
		return 16
	case value.TagBits32:
		return 32
	default:
		return 64
	}
}

func vectorWidth(t value.Tag) int {
	switch t {
	case value.TagBits8x16:
		return 8
	case value.TagBits16x8:
		return 16
	case value.TagBits32x4:
		return 32
	default:
		return 64
	}
}
