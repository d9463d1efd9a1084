package value

import (
	"math"

	"github.com/smoynes/rtsdemo/internal/heap"
)

// Object layout, within a semi-space buffer, starting at a Ref:
//
//	ref+0  : tag word   -- low byte is the Tag; CON additionally packs
//	         (conTag<<8 | arity) in the next payload word.
//	ref+8  : first payload word (tag-specific; see the Size/Read/Write
//	         pairs below)
//
// A chunk-size header immediately precedes ref (see heap.ChunkSize) so the
// collector can walk the heap linearly without consulting the Tag.

const tagWordSize = heap.WordSize

// ReadTag returns the ClosureType tag of the object at ref.
func ReadTag(buf []byte, ref heap.Ref) Tag {
	return Tag(heap.GetWord(buf, int(ref)))
}

func writeTag(buf []byte, ref heap.Ref, t Tag) {
	heap.PutWord(buf, int(ref), int64(t))
}

func payloadOff(ref heap.Ref) int { return int(ref) + tagWordSize }

// --- CON: packed (conTag<<8|arity) then arity Values -----------------------

// ConSize returns the payload size, in bytes, of a CON with the given arity.
func ConSize(arity int) int { return tagWordSize + heap.WordSize + arity*heap.WordSize }

// WriteCon initializes a freshly allocated CON object.
func WriteCon(buf []byte, ref heap.Ref, conTag uint8, fields []Value) {
	writeTag(buf, ref, TagCon)

	off := payloadOff(ref)
	heap.PutWord(buf, off, int64(conTag)<<8|int64(len(fields)))

	for i, f := range fields {
		heap.PutWord(buf, off+heap.WordSize+i*heap.WordSize, int64(f))
	}
}

// ConPacked returns the constructor tag and arity of the CON at ref.
func ConPacked(buf []byte, ref heap.Ref) (conTag uint8, arity int) {
	packed := heap.GetWord(buf, payloadOff(ref))
	return uint8(packed >> 8), int(packed & 0xff)
}

// ConField returns the i'th field of the CON at ref.
func ConField(buf []byte, ref heap.Ref, i int) Value {
	return Value(heap.GetWord(buf, payloadOff(ref)+heap.WordSize+i*heap.WordSize))
}

// SetConField overwrites the i'th field of the CON at ref. Used only by the
// collector, which rewrites fields in place after relocating their targets;
// the language's constructors are otherwise immutable once built.
func SetConField(buf []byte, ref heap.Ref, i int, v Value) {
	heap.PutWord(buf, payloadOff(ref)+heap.WordSize+i*heap.WordSize, int64(v))
}

// --- FLOAT -------------------------------------------------------------

const FloatSize = tagWordSize + heap.WordSize

func WriteFloat(buf []byte, ref heap.Ref, f float64) {
	writeTag(buf, ref, TagFloat)
	heap.PutWord(buf, payloadOff(ref), int64(math.Float64bits(f)))
}

func ReadFloat(buf []byte, ref heap.Ref) float64 {
	return math.Float64frombits(uint64(heap.GetWord(buf, payloadOff(ref))))
}

// --- STRING: length then NUL-terminated bytes ---------------------------

// StringSize returns the payload size, in bytes, needed for a string of n
// bytes (not including the NUL terminator).
func StringSize(n int) int {
	return tagWordSize + heap.WordSize + heap.Round8(n+1)
}

// WriteString initializes a freshly allocated STRING object. A nil s writes
// the empty-string placeholder.
func WriteString(buf []byte, ref heap.Ref, s []byte) {
	writeTag(buf, ref, TagString)

	off := payloadOff(ref)
	heap.PutWord(buf, off, int64(len(s)))
	copy(buf[off+heap.WordSize:], s)
	buf[off+heap.WordSize+len(s)] = 0
}

// StringLen returns the byte length of the STRING at ref (excluding NUL).
func StringLen(buf []byte, ref heap.Ref) int {
	return int(heap.GetWord(buf, payloadOff(ref)))
}

// StringBytes returns the (non-NUL-terminated) bytes of the STRING at ref.
// The returned slice aliases the heap buffer and must not be retained across
// a collection.
func StringBytes(buf []byte, ref heap.Ref) []byte {
	n := StringLen(buf, ref)
	off := payloadOff(ref) + heap.WordSize

	return buf[off : off+n]
}

// --- STROFFSET: (root STRING, byte offset) ------------------------------

const StrOffsetSize = tagWordSize + 2*heap.WordSize

func WriteStrOffset(buf []byte, ref heap.Ref, root Value, offset int64) {
	writeTag(buf, ref, TagStrOffset)

	off := payloadOff(ref)
	heap.PutWord(buf, off, int64(root))
	heap.PutWord(buf, off+heap.WordSize, offset)
}

func StrOffsetRoot(buf []byte, ref heap.Ref) Value {
	return Value(heap.GetWord(buf, payloadOff(ref)))
}

func StrOffsetOffset(buf []byte, ref heap.Ref) int64 {
	return heap.GetWord(buf, payloadOff(ref)+heap.WordSize)
}

// --- BIGINT: opaque arena handle -----------------------------------------

const BigIntSize = tagWordSize + heap.WordSize

func WriteBigInt(buf []byte, ref heap.Ref, handle int64) {
	writeTag(buf, ref, TagBigInt)
	heap.PutWord(buf, payloadOff(ref), handle)
}

func BigIntHandle(buf []byte, ref heap.Ref) int64 {
	return heap.GetWord(buf, payloadOff(ref))
}

// --- PTR: opaque foreign-pointer handle -----------------------------------

const PtrSize = tagWordSize + heap.WordSize

func WritePtr(buf []byte, ref heap.Ref, handle int64) {
	writeTag(buf, ref, TagPtr)
	heap.PutWord(buf, payloadOff(ref), handle)
}

func PtrHandle(buf []byte, ref heap.Ref) int64 {
	return heap.GetWord(buf, payloadOff(ref))
}

// --- MANAGEDPTR: inline-owned byte block ----------------------------------

// ManagedSize returns the payload size, in bytes, for an inline-owned block
// of n bytes.
func ManagedSize(n int) int { return tagWordSize + heap.WordSize + heap.Round8(n) }

func WriteManaged(buf []byte, ref heap.Ref, data []byte) {
	writeTag(buf, ref, TagManagedPtr)

	off := payloadOff(ref)
	heap.PutWord(buf, off, int64(len(data)))
	copy(buf[off+heap.WordSize:], data)
}

func ManagedLen(buf []byte, ref heap.Ref) int {
	return int(heap.GetWord(buf, payloadOff(ref)))
}

func ManagedBytes(buf []byte, ref heap.Ref) []byte {
	n := ManagedLen(buf, ref)
	off := payloadOff(ref) + heap.WordSize

	return buf[off : off+n]
}

// --- BITS8/16/32/64: one scalar integer -----------------------------------

const BitsSize = tagWordSize + heap.WordSize

var bitsTag = map[int]Tag{8: TagBits8, 16: TagBits16, 32: TagBits32, 64: TagBits64}

func WriteBits(buf []byte, ref heap.Ref, width int, v uint64) {
	writeTag(buf, ref, bitsTag[width])
	heap.PutWord(buf, payloadOff(ref), int64(v))
}

func ReadBits(buf []byte, ref heap.Ref) uint64 {
	return uint64(heap.GetWord(buf, payloadOff(ref)))
}

// --- vector lanes: 128-bit registers, 8-byte aligned like every object -----

const VectorSize = tagWordSize + 16

var vectorTag = map[int]Tag{8: TagBits8x16, 16: TagBits16x8, 32: TagBits32x4, 64: TagBits64x2}

// WriteVector initializes a 128-bit vector register from two raw words.
func WriteVector(buf []byte, ref heap.Ref, laneWidth int, lo, hi uint64) {
	writeTag(buf, ref, vectorTag[laneWidth])

	off := payloadOff(ref)
	heap.PutWord(buf, off, int64(lo))
	heap.PutWord(buf, off+heap.WordSize, int64(hi))
}

func ReadVector(buf []byte, ref heap.Ref) (lo, hi uint64) {
	off := payloadOff(ref)
	return uint64(heap.GetWord(buf, off)), uint64(heap.GetWord(buf, off+heap.WordSize))
}

// --- BUFFER: (cap, fill) header then cap bytes ----------------------------

// BufferSize returns the payload size, in bytes, for a buffer with capacity
// cap bytes.
func BufferSize(cap int) int { return tagWordSize + 2*heap.WordSize + heap.Round8(cap) }

func WriteBuffer(buf []byte, ref heap.Ref, cap int) {
	writeTag(buf, ref, TagBuffer)

	off := payloadOff(ref)
	heap.PutWord(buf, off, int64(cap))
	heap.PutWord(buf, off+heap.WordSize, 0)
}

func BufferCap(buf []byte, ref heap.Ref) int {
	return int(heap.GetWord(buf, payloadOff(ref)))
}

func BufferFill(buf []byte, ref heap.Ref) int {
	return int(heap.GetWord(buf, payloadOff(ref)+heap.WordSize))
}

func SetBufferFill(buf []byte, ref heap.Ref, fill int) {
	heap.PutWord(buf, payloadOff(ref)+heap.WordSize, int64(fill))
}

func BufferBytes(buf []byte, ref heap.Ref) []byte {
	off := payloadOff(ref) + 2*heap.WordSize
	return buf[off : off+BufferCap(buf, ref)]
}

// --- FWD: forwarding pointer, only valid mid-collection -------------------

const FwdSize = tagWordSize + heap.WordSize

// WriteFwd stamps the object at ref as forwarded to target, overwriting its
// header in place. It is only ever called by the collector.
func WriteFwd(buf []byte, ref heap.Ref, target Value) {
	writeTag(buf, ref, TagFwd)
	heap.PutWord(buf, payloadOff(ref), int64(target))
}

func FwdTarget(buf []byte, ref heap.Ref) Value {
	return Value(heap.GetWord(buf, payloadOff(ref)))
}
