package stream

import (
	"encoding/binary"
	"io"
	"math"
)

// Sink is anything an Output can flush finished bytes to. The standard
// library's io.Writer already satisfies it; Output also supports a
// grow-only in-memory mode with no sink at all.
type Sink = io.Writer

// Output is an append-only byte sink cursor: a growable buffer with
// typed write helpers for every primitive the CBOR and JSON renderers
// need, plus an optional backing Sink it flushes to once the buffer
// passes a threshold (so a caller streaming to a socket or file isn't
// forced to hold an entire encoded document in memory).
type Output struct {
	buf       []byte
	sink      Sink
	flushAt   int
	flushedAt int64 // absolute count of bytes already handed to sink
}

// NewGrowOutput returns an Output with no backing sink: everything
// written accumulates in memory and is retrieved with Bytes.
func NewGrowOutput(sizeHint int) *Output {
	return &Output{buf: make([]byte, 0, sizeHint)}
}

// NewSinkOutput returns an Output that flushes to w once its internal
// buffer exceeds flushThreshold bytes (and always on a final Flush).
func NewSinkOutput(w Sink, flushThreshold int) *Output {
	if flushThreshold <= 0 {
		flushThreshold = 4096
	}
	return &Output{buf: make([]byte, 0, flushThreshold), sink: w, flushAt: flushThreshold}
}

// Position returns the total number of bytes written so far, flushed
// or not.
func (o *Output) Position() int64 { return o.flushedAt + int64(len(o.buf)) }

// Bytes returns the buffered, not-yet-flushed bytes. For a grow-only
// Output (no sink) this is the complete encoded output.
func (o *Output) Bytes() []byte { return o.buf }

// Reset empties the buffer without flushing, for reuse via a pool.
func (o *Output) Reset() { o.buf = o.buf[:0] }

// Extend grows the buffer by n bytes and returns a slice over the new
// space for the caller to fill directly, avoiding an intermediate copy
// for fixed-width encodings.
func (o *Output) Extend(n int) []byte {
	l := len(o.buf)
	if cap(o.buf)-l < n {
		grown := make([]byte, l, 2*cap(o.buf)+n)
		copy(grown, o.buf)
		o.buf = grown
	}
	o.buf = o.buf[:l+n]
	return o.buf[l : l+n]
}

func (o *Output) maybeFlush() error {
	if o.sink == nil || o.flushAt == 0 || len(o.buf) < o.flushAt {
		return nil
	}
	return o.Flush()
}

// Flush writes any buffered bytes to the backing sink. It is a no-op
// for a grow-only Output.
func (o *Output) Flush() error {
	if o.sink == nil || len(o.buf) == 0 {
		return nil
	}
	n, err := o.sink.Write(o.buf)
	o.flushedAt += int64(n)
	o.buf = o.buf[:copy(o.buf, o.buf[n:])]
	if err != nil {
		return GeneralError{OutputPos: o.Position(), Cause: err}
	}
	return nil
}

func (o *Output) WriteByte(b byte) error {
	o.buf = append(o.buf, b)
	return o.maybeFlush()
}

func (o *Output) WriteBytes(p []byte) error {
	o.buf = append(o.buf, p...)
	return o.maybeFlush()
}

func (o *Output) WriteString(s string) error {
	o.buf = append(o.buf, s...)
	return o.maybeFlush()
}

func (o *Output) WriteUint16BE(v uint16) error {
	binary.BigEndian.PutUint16(o.Extend(2), v)
	return o.maybeFlush()
}

func (o *Output) WriteUint32BE(v uint32) error {
	binary.BigEndian.PutUint32(o.Extend(4), v)
	return o.maybeFlush()
}

func (o *Output) WriteUint64BE(v uint64) error {
	binary.BigEndian.PutUint64(o.Extend(8), v)
	return o.maybeFlush()
}

func (o *Output) WriteFloat32BE(v float32) error {
	return o.WriteUint32BE(math.Float32bits(v))
}

func (o *Output) WriteFloat64BE(v float64) error {
	return o.WriteUint64BE(math.Float64bits(v))
}
