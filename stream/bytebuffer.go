package stream

import (
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// ByteBuffer is a pooled, growable byte buffer used for the small
// scratch allocations the parsers and the diagnostic renderer need
// (buffering an indefinite-length string's concatenated chunks,
// building a diagnostic-notation line) without going through the
// garbage collector on every call.
type ByteBuffer struct {
	b []byte
}

var byteBufferPool = sync.Pool{New: func() any { return &ByteBuffer{b: make([]byte, 0, 256)} }}

// GetByteBuffer returns an empty ByteBuffer from the pool.
func GetByteBuffer() *ByteBuffer {
	bb := byteBufferPool.Get().(*ByteBuffer)
	bb.b = bb.b[:0]
	return bb
}

// PutByteBuffer returns bb to the pool. bb must not be used afterward.
func PutByteBuffer(bb *ByteBuffer) {
	if cap(bb.b) > 64*1024 {
		// Don't let one oversized document bloat the pool forever.
		return
	}
	byteBufferPool.Put(bb)
}

func (bb *ByteBuffer) Len() int      { return len(bb.b) }
func (bb *ByteBuffer) Bytes() []byte { return bb.b }

func (bb *ByteBuffer) WriteByte(c byte) error { bb.b = append(bb.b, c); return nil }
func (bb *ByteBuffer) WriteString(s string)   { bb.b = append(bb.b, s...) }
func (bb *ByteBuffer) Write(p []byte) (int, error) {
	bb.b = append(bb.b, p...)
	return len(p), nil
}

// Extend grows the buffer by n bytes and returns the new space for the
// caller to fill in place (used by the diagnostic hex renderer).
func (bb *ByteBuffer) Extend(n int) []byte {
	l := len(bb.b)
	if cap(bb.b)-l < n {
		grown := make([]byte, l, 2*cap(bb.b)+n)
		copy(grown, bb.b)
		bb.b = grown
	}
	bb.b = bb.b[:l+n]
	return bb.b[l : l+n]
}

// compressingSink wraps a zstd encoder so a *stream.Output can flush
// into a compressed stream transparently. It satisfies the spec's
// "user-provided sink" extension point for Output: the renderer never
// learns that its bytes are being compressed before they hit disk or
// the wire.
type compressingSink struct {
	enc *zstd.Encoder
}

// NewCompressingOutput returns an Output whose backing sink compresses
// everything written to it with zstd before it reaches w. Close must
// be called once encoding is finished to flush the zstd frame trailer.
func NewCompressingOutput(w io.Writer, flushThreshold int) (*Output, io.Closer, error) {
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return nil, nil, err
	}
	sink := compressingSink{enc: enc}
	return NewSinkOutput(sink, flushThreshold), enc, nil
}

func (s compressingSink) Write(p []byte) (int, error) { return s.enc.Write(p) }
