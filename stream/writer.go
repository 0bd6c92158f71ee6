package stream

// Writer is the push facade mirroring Reader: it wires a format-
// specific renderer to a Validator so every writeX call is checked for
// structural legality (balanced containers, map key/value alternation,
// tag content shape) before any bytes reach the Output, plus
// combinators for the common shapes (empty containers, iterating a Go
// slice or map) built on top of the per-kind primitives.
type Writer struct {
	renderer dataRenderer
	valid    *Validator
	cfg      Config
	ev       Event
	format   Format
}

// NewWriter constructs a Writer over out, encoding the given Format
// under cfg. JSON mode ignores cfg.CompressFloatingPointValues (it has
// no meaning for JSON's textual number syntax).
func NewWriter(out *Output, cfg Config, format Format) *Writer {
	w := &Writer{cfg: cfg, format: format, valid: NewValidator(cfg, format == JSON)}
	switch format {
	case JSON:
		w.renderer = NewJSONRenderer(out, cfg)
	default:
		w.renderer = NewCBORRenderer(out, cfg.CompressFloatingPointValues)
	}
	return w
}

// Depth reports how many containers/tags are currently open.
func (w *Writer) Depth() int { return w.valid.Depth() }

// AtTopLevel reports whether the writer has no open containers.
func (w *Writer) AtTopLevel() bool { return w.valid.AtTopLevel() }

func (w *Writer) emit(ev *Event) error {
	if err := w.valid.Validate(ev); err != nil {
		return err
	}
	return w.renderer.Render(ev)
}

// WriteNull writes a Null item.
func (w *Writer) WriteNull() error {
	w.ev = Event{Kind: Null}
	return w.emit(&w.ev)
}

// WriteUndefined writes an Undefined item (CBOR only; JSON mode
// rejects it).
func (w *Writer) WriteUndefined() error {
	w.ev = Event{Kind: Undefined}
	return w.emit(&w.ev)
}

// WriteBoolean writes a Boolean item.
func (w *Writer) WriteBoolean(v bool) error {
	w.ev = Event{Kind: Boolean, Bool: v}
	return w.emit(&w.ev)
}

// WriteInt64 writes an integer item, classified onto the Int/Long
// promotion ladder the same way the CBOR parser would on read-back.
func (w *Writer) WriteInt64(v int64) error {
	k := Long
	if v >= -(1<<31) && v <= 1<<31-1 {
		k = Int
	}
	w.ev = Event{Kind: k, Int64: v}
	return w.emit(&w.ev)
}

// WriteInt32 is WriteInt64 for a narrower value.
func (w *Writer) WriteInt32(v int32) error { return w.WriteInt64(int64(v)) }

// WriteUint64 writes a non-negative integer that may exceed int64's
// range, as an OverLong item if it does.
func (w *Writer) WriteUint64(v uint64) error {
	if v > 1<<63-1 {
		w.ev = Event{Kind: OverLong, UInt64: v, Negative: false}
	} else {
		w.ev = Event{Kind: Long, Int64: int64(v)}
	}
	return w.emit(&w.ev)
}

// WriteNegativeOverflow writes a negative integer item whose magnitude
// (1+u) exceeds int64's range, the OverLong counterpart to WriteUint64
// for values below math.MinInt64.
func (w *Writer) WriteNegativeOverflow(u uint64) error {
	w.ev = Event{Kind: OverLong, UInt64: u, Negative: true}
	return w.emit(&w.ev)
}

// WriteFloat64 writes a floating-point item; the renderer decides the
// wire width (CBOR: via CompressFloatingPointValues, JSON: always
// shortest round-trip decimal).
func (w *Writer) WriteFloat64(v float64) error {
	w.ev = Event{Kind: Double, Float64Value: v, FloatBits: Width64}
	return w.emit(&w.ev)
}

// WriteFloat32 writes a value already known to be exactly
// representable at single precision, preserving that width on the
// wire when compression is disabled.
func (w *Writer) WriteFloat32(v float32) error {
	w.ev = Event{Kind: Float, Float64Value: float64(v), FloatBits: Width32}
	return w.emit(&w.ev)
}

// WriteString writes a Go string as a String item.
func (w *Writer) WriteString(s string) error {
	w.ev = Event{Kind: String, Str: s}
	return w.emit(&w.ev)
}

// WriteBytes writes a byte slice as a Bytes item (CBOR only; JSON
// mode rejects it, since JSON has no binary string type). Also valid
// as one definite-length chunk inside an indefinite-length byte
// string opened by WriteBytesStart.
func (w *Writer) WriteBytes(b []byte) error {
	w.ev = Event{Kind: Bytes, Bytes: b}
	return w.emit(&w.ev)
}

// WriteTextStart opens an indefinite-length text string: zero or more
// WriteTextChunk calls (each a definite-length UTF-8 chunk) followed
// by WriteBreak. Mirrors the Text chunks a Reader yields while pulling
// one back apart.
func (w *Writer) WriteTextStart() error {
	w.ev = Event{Kind: TextStart}
	return w.emit(&w.ev)
}

// WriteTextChunk writes one definite-length UTF-8 chunk of an
// indefinite-length text string opened by WriteTextStart.
func (w *Writer) WriteTextChunk(b []byte) error {
	w.ev = Event{Kind: Text, Bytes: b}
	return w.emit(&w.ev)
}

// WriteBytesStart opens an indefinite-length byte string: zero or
// more WriteBytes calls (each a definite-length chunk) followed by
// WriteBreak.
func (w *Writer) WriteBytesStart() error {
	w.ev = Event{Kind: BytesStart}
	return w.emit(&w.ev)
}

// WriteTag writes a Tag item; exactly one data item (the tag's
// content, validated against that tag's content mask) must follow.
func (w *Writer) WriteTag(tagNumber uint64) error {
	w.ev = Event{Kind: Tag, UInt64: tagNumber}
	return w.emit(&w.ev)
}

// WriteArrayHeader opens a definite-length array of n elements.
func (w *Writer) WriteArrayHeader(n int) error {
	w.ev = Event{Kind: ArrayHeader, UInt64: uint64(n)}
	return w.emit(&w.ev)
}

// WriteArrayStart opens an indefinite-length array, closed by
// WriteBreak once every element has been written.
func (w *Writer) WriteArrayStart() error {
	w.ev = Event{Kind: ArrayStart}
	return w.emit(&w.ev)
}

// WriteMapHeader opens a definite-length map of n key/value pairs.
func (w *Writer) WriteMapHeader(n int) error {
	w.ev = Event{Kind: MapHeader, UInt64: uint64(n)}
	return w.emit(&w.ev)
}

// WriteMapStart opens an indefinite-length map, closed by WriteBreak.
func (w *Writer) WriteMapStart() error {
	w.ev = Event{Kind: MapStart}
	return w.emit(&w.ev)
}

// WriteBreak closes the innermost indefinite-length container.
func (w *Writer) WriteBreak() error {
	w.ev = Event{Kind: Break}
	return w.emit(&w.ev)
}

// WriteEmptyArray writes a zero-length definite array in one call.
func (w *Writer) WriteEmptyArray() error { return w.WriteArrayHeader(0) }

// WriteEmptyMap writes a zero-length definite map in one call.
func (w *Writer) WriteEmptyMap() error { return w.WriteMapHeader(0) }

// WriteToArray writes a definite-length array header followed by
// calling emit once per element of items, via the supplied function
// (which typically closes over one of the WriteX methods above).
func WriteToArray[T any](w *Writer, items []T, emit func(*Writer, T) error) error {
	if err := w.WriteArrayHeader(len(items)); err != nil {
		return err
	}
	for _, it := range items {
		if err := emit(w, it); err != nil {
			return err
		}
	}
	return nil
}

// WriteIndexedSeq is WriteToArray for a caller that wants to index
// into its own collection rather than range a Go slice directly (e.g.
// writing every other element, or a reversed view).
func WriteIndexedSeq(w *Writer, n int, emit func(*Writer, int) error) error {
	if err := w.WriteArrayHeader(n); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := emit(w, i); err != nil {
			return err
		}
	}
	return nil
}

// WriteIterator writes an indefinite-length array populated by
// repeatedly calling next until it returns ok=false, useful when the
// element count isn't known up front (a channel, a database cursor).
func WriteIterator[T any](w *Writer, next func() (T, bool), emit func(*Writer, T) error) error {
	if err := w.WriteArrayStart(); err != nil {
		return err
	}
	for {
		v, ok := next()
		if !ok {
			break
		}
		if err := emit(w, v); err != nil {
			return err
		}
	}
	return w.WriteBreak()
}

// WriteLinearSeq writes a definite-length array from a slice; it is
// WriteToArray under another name.
func WriteLinearSeq[T any](w *Writer, items []T, emit func(*Writer, T) error) error {
	return WriteToArray(w, items, emit)
}

// WriteMap writes a definite-length map from a Go map, calling
// emitKey/emitValue for each entry. Go map iteration order is
// randomized; callers needing canonical key order should sort keys
// before calling this.
func WriteMap[K comparable, V any](w *Writer, m map[K]V, emitKey func(*Writer, K) error, emitValue func(*Writer, V) error) error {
	if err := w.WriteMapHeader(len(m)); err != nil {
		return err
	}
	for k, v := range m {
		if err := emitKey(w, k); err != nil {
			return err
		}
		if err := emitValue(w, v); err != nil {
			return err
		}
	}
	return nil
}
