package stream

// Format selects which wire grammar a Reader or Writer speaks.
type Format uint8

const (
	CBOR Format = iota
	JSON
)

// CBORParser and JSONParser are the two grammars a Reader can pull
// from; Reader itself only ever calls Parse, never knowing which one
// is underneath.
type dataParser interface {
	Parse(ev *Event) error
}

type dataRenderer interface {
	Render(ev *Event) error
}

// Reader is the pull facade over one CBOR or JSON input: it wires a
// format-specific parser to a Validator so that callers only ever see
// "the next data item", already checked for structural legality, with
// a per-kind hasX/readX/tryReadX surface on top for the common case of
// expecting one particular shape next. Exactly one Event is live at a
// time, shared by every call.
//
// A Reader also keeps a small look-ahead stash (see stash.go) so a
// caller can peek a kind, decide it doesn't want it yet, and have it
// replayed on the next pull.
type Reader struct {
	parser dataParser
	valid  *Validator
	cfg    Config
	ev     Event
	stash  stash
	format Format
}

// NewReader constructs a Reader over in, decoding the given Format
// under cfg.
func NewReader(in *Input, cfg Config, format Format) *Reader {
	r := &Reader{cfg: cfg, format: format, valid: NewValidator(cfg, format == JSON)}
	switch format {
	case JSON:
		r.parser = NewJSONParser(in, cfg)
	default:
		r.parser = NewCBORParser(in)
	}
	return r
}

// Stash splices events in front of whatever the underlying parser
// would produce next: the next calls to Peek/Next/readX see evs, in
// order, before falling back to freshly parsed input. This is how a
// higher-level decoding strategy that probed ahead (e.g. reading a
// map's first key to decide which concrete type to decode into) can
// hand back the events it already consumed so the rest of the decode
// sees them again, in order, as if they had never been read.
//
// Stashed events bypass the Validator (they already passed it once,
// when they were first produced) and are replayed exactly as given.
func (r *Reader) Stash(evs ...Event) {
	for i := len(evs) - 1; i >= 0; i-- {
		r.stash.push(evs[i])
	}
}

// Depth reports how many containers/tags are currently open.
func (r *Reader) Depth() int { return r.valid.Depth() }

// AtTopLevel reports whether the next item, if any, stands alone at
// the document root.
func (r *Reader) AtTopLevel() bool { return r.valid.AtTopLevel() }

// next pulls (or replays a stashed) Event, running a freshly parsed
// one through the Validator before returning it. It applies no numeric
// coercion; that is left to the typed readers such as ReadInt64 and
// ReadFloat64.
func (r *Reader) next() (*Event, error) {
	if ev, ok := r.stash.pop(); ok {
		r.ev = ev
		return &r.ev, nil
	}
	if err := r.parser.Parse(&r.ev); err != nil {
		return nil, err
	}
	if r.ev.Kind == EndOfInput {
		if !r.valid.AtTopLevel() {
			// The parser is out of bytes but a container or tag is
			// still open: this is truncation, not a legal document
			// boundary.
			return nil, ShortInputError{InputPos: -1, Need: 1}
		}
		return &r.ev, nil
	}
	if err := r.valid.Validate(&r.ev); err != nil {
		return nil, err
	}
	return &r.ev, nil
}

// Peek returns the next item's Kind without consuming it: a further
// call to any readX/next will see the same item again.
func (r *Reader) Peek() (Kind, error) {
	ev, err := r.next()
	if err != nil {
		return Null, err
	}
	cp := *ev
	r.stash.push(cp)
	return cp.Kind, nil
}

// HasAny reports whether the next item's kind is one of m, without
// consuming it.
func (r *Reader) HasAny(m Mask) (bool, error) {
	k, err := r.Peek()
	if err != nil {
		return false, err
	}
	return m.Has(k), nil
}

// Next pulls and consumes the next item.
func (r *Reader) Next() (*Event, error) { return r.next() }

// Skip consumes and discards exactly one already-peeked item, without
// descending into it if it opens a container (see SkipDataItem for
// that).
func (r *Reader) Skip() error {
	_, err := r.next()
	return err
}

// maxSkipDepth bounds how deeply SkipDataItem will recurse into
// nested containers, guarding against a maliciously deep indefinite-
// length document exhausting the goroutine stack.
const maxSkipDepth = 100

// SkipDataItem consumes one complete data item — if it is a scalar,
// exactly that; if it opens a container or a tag, everything up to
// and including its matching close (Break, or the last item counted
// off by a definite-length header).
func (r *Reader) SkipDataItem() error {
	return r.skipElement(0)
}

func (r *Reader) skipElement(depth int) error {
	if depth > maxSkipDepth {
		return OverflowError{Limit: "skip nesting depth"}
	}
	ev, err := r.next()
	if err != nil {
		return err
	}
	// ev points at the Reader's shared Event, which the recursive calls
	// below overwrite, so its kind is captured first.
	kind := ev.Kind
	switch kind {
	case ArrayHeader, MapHeader:
		n := ev.UInt64
		if kind == MapHeader {
			n *= 2
		}
		for i := uint64(0); i < n; i++ {
			if err := r.skipElement(depth + 1); err != nil {
				return err
			}
		}
	case ArrayStart, MapStart, Tag:
		for {
			k, err := r.Peek()
			if err != nil {
				return err
			}
			if k == Break {
				return r.Skip()
			}
			if err := r.skipElement(depth + 1); err != nil {
				return err
			}
			if kind == Tag {
				return nil
			}
		}
	case TextStart, BytesStart:
		for {
			k, err := r.Peek()
			if err != nil {
				return err
			}
			if k == Break {
				return r.Skip()
			}
			if err := r.Skip(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Reader) expect(m Mask) (*Event, error) {
	ev, err := r.next()
	if err != nil {
		return nil, err
	}
	if !m.Has(ev.Kind) {
		return nil, ValidationFailureError{Reason: "expected one of the requested kinds, got " + ev.Kind.String()}
	}
	return ev, nil
}

// HasNull, HasBoolean, etc. report (without consuming) whether the
// next item is exactly that kind.
func (r *Reader) HasNull() (bool, error)    { return r.HasAny(bit(Null)) }
func (r *Reader) HasBoolean() (bool, error) { return r.HasAny(bit(Boolean)) }
func (r *Reader) HasString() (bool, error)  { return r.HasAny(StringLike) }
func (r *Reader) HasNumber() (bool, error)  { return r.HasAny(numberKinds) }
func (r *Reader) HasArray() (bool, error) {
	return r.HasAny(bit(ArrayHeader).With(ArrayStart))
}
func (r *Reader) HasMap() (bool, error) {
	return r.HasAny(bit(MapHeader).With(MapStart))
}
func (r *Reader) HasTag() (bool, error)   { return r.HasAny(bit(Tag)) }
func (r *Reader) HasBreak() (bool, error) { return r.HasAny(bit(Break)) }

// ReadNull consumes a Null (or Undefined) item.
func (r *Reader) ReadNull() error {
	_, err := r.expect(bit(Null).With(Undefined))
	return err
}

// ReadBoolean consumes and returns a Boolean item.
func (r *Reader) ReadBoolean() (bool, error) {
	ev, err := r.expect(bit(Boolean))
	if err != nil {
		return false, err
	}
	return ev.Bool, nil
}

// ReadInt64 consumes a numeric item and widens it to int64. When
// ReadIntegersAlsoAsFloatingPoint is set and the value is a float or
// NumberString that carries no fraction, it is narrowed back to an
// integer; otherwise a non-integral float is an error.
func (r *Reader) ReadInt64() (int64, error) {
	ev, err := r.expect(numberKinds)
	if err != nil {
		return 0, err
	}
	if v, ok := ev.AsInt64(); ok {
		return v, nil
	}
	if r.cfg.ReadIntegersAlsoAsFloatingPoint {
		if f, ok := ev.AsFloat64(); ok && f == float64(int64(f)) {
			return int64(f), nil
		}
	}
	return 0, InvalidInputDataError{Reason: "numeric value does not fit or convert to int64"}
}

// ReadInt32 is ReadInt64 narrowed to int32.
func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadInt64()
	if err != nil {
		return 0, err
	}
	n, ok := (&Event{Int64: v}).Int32()
	if !ok {
		return 0, OverflowError{Limit: "int32 range"}
	}
	return n, nil
}

// ReadFloat64 consumes a numeric item and widens it to float64.
// Integer items (Int, Long, OverLong) are accepted only when
// ReadIntegersAlsoAsFloatingPoint is set.
func (r *Reader) ReadFloat64() (float64, error) {
	ev, err := r.expect(numberKinds)
	if err != nil {
		return 0, err
	}
	if !r.cfg.ReadIntegersAlsoAsFloatingPoint && (ev.Kind == Int || ev.Kind == Long || ev.Kind == OverLong) {
		return 0, InvalidInputDataError{Reason: "integer item where a floating-point value was expected"}
	}
	if f, ok := ev.AsFloat64(); ok {
		return f, nil
	}
	return 0, InvalidInputDataError{Reason: "value is not numeric"}
}

// ReadString consumes a String/Chars/Text item and returns it as a Go
// string, materializing a copy if the underlying event only carried a
// zero-copy byte view.
func (r *Reader) ReadString() (string, error) {
	ev, err := r.expect(StringLike.With(Text))
	if err != nil {
		return "", err
	}
	if ev.Kind == String {
		return ev.Str, nil
	}
	return string(ev.Bytes), nil
}

// ReadBytes consumes a Bytes item and returns its payload. The
// returned slice aliases the Reader's input buffer and must be copied
// before the next pull if it is to be retained.
func (r *Reader) ReadBytes() ([]byte, error) {
	ev, err := r.expect(bit(Bytes))
	if err != nil {
		return nil, err
	}
	return ev.Bytes, nil
}

// bufferUnsizedBytes reads an indefinite-length byte string's chunks
// (already opened by a consumed BytesStart) into one contiguous slice,
// up to cfg.MaxByteStringLength.
func (r *Reader) bufferUnsizedBytes() ([]byte, error) {
	return r.bufferUnsizedChunks(bit(Bytes), r.cfg.MaxByteStringLength)
}

// bufferUnsizedTextBytes is bufferUnsizedBytes' text-string twin for
// an already-consumed TextStart.
func (r *Reader) bufferUnsizedTextBytes() ([]byte, error) {
	return r.bufferUnsizedChunks(bit(Chars).With(Text), r.cfg.MaxTextStringLength)
}

func (r *Reader) bufferUnsizedChunks(chunkMask Mask, limit int) ([]byte, error) {
	buf := GetByteBuffer()
	defer PutByteBuffer(buf)
	for {
		k, err := r.Peek()
		if err != nil {
			return nil, err
		}
		if k == Break {
			if err := r.Skip(); err != nil {
				return nil, err
			}
			out := make([]byte, buf.Len())
			copy(out, buf.Bytes())
			return out, nil
		}
		ev, err := r.expect(chunkMask)
		if err != nil {
			return nil, err
		}
		if limit > 0 && buf.Len()+len(ev.Bytes) > limit {
			return nil, OverflowError{Limit: "string length"}
		}
		buf.Write(ev.Bytes)
	}
}

// ReadArrayHeader consumes an ArrayHeader and returns its declared
// length, or consumes an ArrayStart and returns (-1, nil) for an
// indefinite-length array (the caller then reads elements until
// HasBreak is true, followed by ReadBreak).
func (r *Reader) ReadArrayHeader() (int64, error) {
	ev, err := r.expect(bit(ArrayHeader).With(ArrayStart))
	if err != nil {
		return 0, err
	}
	if ev.Kind == ArrayStart {
		return -1, nil
	}
	return int64(ev.UInt64), nil
}

// ReadMapHeader is ReadArrayHeader's map twin, the returned count (when
// non-negative) being the number of key/value pairs.
func (r *Reader) ReadMapHeader() (int64, error) {
	ev, err := r.expect(bit(MapHeader).With(MapStart))
	if err != nil {
		return 0, err
	}
	if ev.Kind == MapStart {
		return -1, nil
	}
	return int64(ev.UInt64), nil
}

// ReadTag consumes a Tag item and returns its tag number; the tagged
// content follows as the next data item(s).
func (r *Reader) ReadTag() (uint64, error) {
	ev, err := r.expect(bit(Tag))
	if err != nil {
		return 0, err
	}
	return ev.UInt64, nil
}

// ReadBreak consumes a Break.
func (r *Reader) ReadBreak() error {
	_, err := r.expect(bit(Break))
	return err
}

// stringCompare reports whether the next item is a string equal to s,
// without requiring the caller to materialize a Go string first; used
// by map-key dispatch that wants to avoid allocating on every key.
func (r *Reader) stringCompare(s string) (bool, error) {
	ev, err := r.expect(StringLike.With(Text))
	if err != nil {
		return false, err
	}
	if ev.Kind == String {
		return ev.Str == s, nil
	}
	return string(ev.Bytes) == s, nil
}

// charsCompare is stringCompare against a raw byte slice instead of a
// Go string, for callers holding a []byte key candidate.
func (r *Reader) charsCompare(b []byte) (bool, error) {
	ev, err := r.expect(StringLike.With(Text))
	if err != nil {
		return false, err
	}
	if ev.Kind == String {
		return ev.Str == string(b), nil
	}
	return string(ev.Bytes) == string(b), nil
}
