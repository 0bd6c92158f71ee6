package stream

import "io"

// Input is a cursor over a byte source, either a fixed []byte or a
// streaming io.Reader refilled on demand. It exposes padded
// multi-byte reads so the CBOR and JSON parsers' hot loops can read a
// fixed-width window unconditionally and only check how much of it
// was actually backed by real input, instead of branching on length
// before every read.
type Input struct {
	buf  []byte
	pos  int
	base int64 // absolute stream position of buf[0]
	r    io.Reader
	eof  bool
}

// NewInputBytes wraps a complete, already-available byte slice.
func NewInputBytes(b []byte) *Input {
	return &Input{buf: b, eof: true}
}

// NewInput wraps a streaming source, refilling its internal buffer as
// the cursor advances past what has been read so far.
func NewInput(r io.Reader) *Input {
	return &Input{r: r, buf: make([]byte, 0, 4096)}
}

// Position returns the absolute number of bytes consumed so far.
func (in *Input) Position() int64 { return in.base + int64(in.pos) }

// Remaining reports how many buffered bytes are available without a
// refill.
func (in *Input) Remaining() int { return len(in.buf) - in.pos }

// fill ensures at least need bytes are buffered past the cursor,
// reading from the underlying io.Reader as necessary. For byte-slice
// inputs this never reads further (eof is already true).
func (in *Input) fill(need int) error {
	for in.Remaining() < need && !in.eof {
		if in.pos > 0 {
			// Compact: drop already-consumed bytes so the buffer
			// doesn't grow without bound on a long stream.
			copy(in.buf, in.buf[in.pos:])
			in.buf = in.buf[:len(in.buf)-in.pos]
			in.base += int64(in.pos)
			in.pos = 0
		}
		if cap(in.buf)-len(in.buf) < 4096 {
			grown := make([]byte, len(in.buf), cap(in.buf)*2+4096)
			copy(grown, in.buf)
			in.buf = grown
		}
		n, err := in.r.Read(in.buf[len(in.buf):cap(in.buf)])
		in.buf = in.buf[:len(in.buf)+n]
		if err != nil {
			in.eof = true
			if err != io.EOF {
				return GeneralError{InputPos: in.Position(), Cause: err}
			}
		}
		if n == 0 && in.eof {
			break
		}
	}
	return nil
}

// PeekByte returns the next byte without consuming it; ok is false at
// end of input.
func (in *Input) PeekByte() (byte, bool) {
	if err := in.fill(1); err != nil {
		return 0, false
	}
	if in.Remaining() < 1 {
		return 0, false
	}
	return in.buf[in.pos], true
}

// ReadByte consumes and returns the next byte.
func (in *Input) ReadByte() (byte, error) {
	if err := in.fill(1); err != nil {
		return 0, err
	}
	if in.Remaining() < 1 {
		return 0, ShortInputError{InputPos: in.Position(), Need: 1}
	}
	b := in.buf[in.pos]
	in.pos++
	return b, nil
}

// Peek returns a view of the next n buffered bytes without consuming
// them. The slice is only valid until the next call that advances or
// refills the cursor.
func (in *Input) Peek(n int) ([]byte, error) {
	if err := in.fill(n); err != nil {
		return nil, err
	}
	if in.Remaining() < n {
		return nil, ShortInputError{InputPos: in.Position(), Need: n - in.Remaining()}
	}
	return in.buf[in.pos : in.pos+n], nil
}

// Take consumes and returns the next n bytes.
func (in *Input) Take(n int) ([]byte, error) {
	b, err := in.Peek(n)
	if err != nil {
		return nil, err
	}
	in.pos += n
	return b, nil
}

// Advance consumes n already-peeked bytes.
func (in *Input) Advance(n int) { in.pos += n }

// Unread rewinds the cursor by n bytes, which must still be present in
// the buffer (true whenever n does not cross a prior compaction in
// fill). The Reader's look-ahead stash and skip logic do not use it;
// they replay whole Events instead.
func (in *Input) Unread(n int) error {
	if in.pos < n {
		return InvalidInputDataError{InputPos: in.Position(), Reason: "unread past buffer start"}
	}
	in.pos -= n
	return nil
}

// AtEnd reports whether there is no more input and no more will ever
// arrive.
func (in *Input) AtEnd() bool {
	if in.Remaining() > 0 {
		return false
	}
	return in.eof
}

// ZeroCopyCapable reports whether slices returned by SliceFrom remain
// valid without copying: true only for a fully-buffered, non-streaming
// Input (constructed from a []byte), since a streaming Input may
// compact already-consumed bytes out of its buffer on a later refill.
func (in *Input) ZeroCopyCapable() bool { return in.r == nil }

// SliceFrom returns the bytes between the given absolute position and
// the current cursor without copying. Only valid when ZeroCopyCapable
// is true and startAbsolutePos was obtained from this same Input
// earlier in the same scan (no compaction may have occurred since).
func (in *Input) SliceFrom(startAbsolutePos int64) []byte {
	off := int(startAbsolutePos - in.base)
	return in.buf[off:in.pos]
}

// Padded8 copies up to 8 bytes starting at the cursor into a fixed
// array, zero-padding any bytes past the end of the available input,
// and reports how many of the 8 bytes were real. Callers that need n
// <= 8 bytes read the array unconditionally (branchless) and only
// check avail >= n afterward to decide whether the read was valid,
// which is cheaper than bounds-checking before every multi-byte
// decode in the CBOR length/float fast paths.
func (in *Input) Padded8() (window [8]byte, avail int) {
	_ = in.fill(8)
	avail = in.Remaining()
	if avail > 8 {
		avail = 8
	}
	copy(window[:], in.buf[in.pos:in.pos+avail])
	return window, avail
}
