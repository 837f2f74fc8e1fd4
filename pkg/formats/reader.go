package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/Faultbox/aimtools/pkg/encoding"
)

// NameSize is the width of the fixed string fields used across all formats.
const NameSize = 0x20

// ErrStructureMismatch reports that the data does not match the declared layout:
// either it ended in the middle of a record or bytes were left unconsumed.
var ErrStructureMismatch = errors.New("structure mismatch")

// StructuralError carries the offset reached and the buffer length when a
// container is truncated or has trailing bytes. It matches ErrStructureMismatch.
type StructuralError struct {
	Context string // what was being read
	Offset  int64  // position reached
	Size    int64  // total buffer length
	End     int64  // end of the enclosing region; equals Size at top level
}

func (e *StructuralError) Error() string {
	if e.End != e.Size {
		return fmt.Sprintf("%v: %s: offset 0x%x != end 0x%x (size 0x%x)",
			ErrStructureMismatch, e.Context, e.Offset, e.End, e.Size)
	}
	return fmt.Sprintf("%v: %s: offset 0x%x != size 0x%x", ErrStructureMismatch, e.Context, e.Offset, e.Size)
}

// Unwrap lets errors.Is match ErrStructureMismatch.
func (e *StructuralError) Unwrap() error {
	return ErrStructureMismatch
}

// reader is a little-endian cursor over an in-memory buffer.
// The first failed read is sticky: later reads are no-ops and err reports the
// first failure, so decoders can read a record and check once.
type reader struct {
	r    *bytes.Reader
	base  int64 // absolute offset of the first byte, for sub-readers
	size  int64
	total int64 // length of the outermost buffer
	err   error
}

func newReader(data []byte) *reader {
	return &reader{r: bytes.NewReader(data), size: int64(len(data)), total: int64(len(data))}
}

// sub consumes the next n bytes and returns a reader limited to them.
// Offsets reported by the sub-reader stay absolute.
func (r *reader) sub(context string, n int) *reader {
	start := r.offset()
	buf := r.bytes(context, n)
	if buf == nil {
		return nil
	}
	return &reader{r: bytes.NewReader(buf), base: start, size: int64(n), total: r.total}
}

// offset returns the current absolute position.
func (r *reader) offset() int64 {
	return r.base + r.size - int64(r.r.Len())
}

// eof reports whether all bytes have been consumed.
func (r *reader) eof() bool {
	return r.r.Len() == 0
}

// remaining returns the number of unread bytes.
func (r *reader) remaining() int {
	return r.r.Len()
}

func (r *reader) fail(context string) {
	if r.err == nil {
		r.err = &StructuralError{Context: context, Offset: r.offset(), Size: r.total, End: r.base + r.size}
	}
}

// read decodes fixed-size data (numbers, arrays, structs of fixed-size fields).
func (r *reader) read(context string, v any) {
	if r.err != nil {
		return
	}
	if n := binary.Size(v); n < 0 || n > r.r.Len() {
		r.fail(context)
		return
	}
	if err := binary.Read(r.r, binary.LittleEndian, v); err != nil {
		r.fail(context)
	}
}

func (r *reader) u8(context string) uint8 {
	var v uint8
	r.read(context, &v)
	return v
}

func (r *reader) u16(context string) uint16 {
	var v uint16
	r.read(context, &v)
	return v
}

func (r *reader) u32(context string) uint32 {
	var v uint32
	r.read(context, &v)
	return v
}

func (r *reader) i32(context string) int32 {
	var v int32
	r.read(context, &v)
	return v
}

func (r *reader) f32(context string) float32 {
	var v float32
	r.read(context, &v)
	return v
}

// bytes returns the next n bytes as a copy.
func (r *reader) bytes(context string, n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || n > r.r.Len() {
		r.fail(context)
		return nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		r.fail(context)
		return nil
	}
	return buf
}

// str reads a fixed-width code-page string.
func (r *reader) str(context string, size int) string {
	buf := r.bytes(context, size)
	if buf == nil {
		return ""
	}
	return encoding.FixedStringToUTF8(buf)
}

// name reads a NameSize string.
func (r *reader) name(context string) string {
	return r.str(context, NameSize)
}

// seek moves to an absolute offset inside the buffer.
func (r *reader) seek(context string, offset int64) {
	if r.err != nil {
		return
	}
	rel := offset - r.base
	if rel < 0 || rel > r.size {
		r.fail(context)
		return
	}
	r.r.Seek(rel, io.SeekStart)
}

// count reads a u32 element count and checks that count*minSize bytes can
// still follow, so corrupt counts fail before any allocation.
func (r *reader) count(context string, minSize int) int {
	n := r.u32(context)
	if r.err != nil {
		return 0
	}
	if minSize > 0 && uint64(n)*uint64(minSize) > uint64(r.r.Len()) {
		r.fail(context)
		return 0
	}
	return int(n)
}

// expectEOF fails when unconsumed bytes remain.
func (r *reader) expectEOF(context string) {
	if r.err == nil && !r.eof() {
		r.fail(context)
	}
}
