package stream

import "math"

// Event is the single-slot receptacle a parser fills and a renderer
// reads from. There is exactly one Event live at a time per Reader (or
// per Writer call) — callers that need to hold onto a value across a
// call to Next must copy the fields they care about first, Bytes and
// Str included, since the backing arrays are only guaranteed valid
// until the next pull.
//
// Not every field applies to every Kind; see the per-kind comment on
// each field for which kinds populate it.
type Event struct {
	Kind Kind

	// Int64 holds the value of Int and Long.
	Int64 int64

	// UInt64 holds the magnitude of OverLong, the tag number of Tag,
	// the value of SimpleValue, and the declared length of
	// ArrayHeader/MapHeader (element count for arrays, pair count for
	// maps).
	UInt64 uint64

	// Negative is true when OverLong represents a value below
	// math.MinInt64 (i.e. CBOR major type 1 with a magnitude that
	// overflows int64).
	Negative bool

	// Float64Value holds the decoded value of Float16, Float and
	// Double, always widened to float64 for convenience. FloatBits
	// records the original encoding width so a renderer that must
	// round-trip exactly (rather than recompress) can do so.
	Float64Value float64
	FloatBits    FloatWidth

	// Bool holds the value of Boolean.
	Bool bool

	// Bytes holds the raw payload for Bytes (one chunk, also inside an
	// indefinite-length byte string; BytesStart itself carries none),
	// Text (complete UTF-8 payload, not decoded into a Go string),
	// Chars (one zero-copy chunk of string content) and NumberString
	// (the literal decimal/scientific digits, ASCII).
	//
	// The backing array may alias the Reader's input buffer; it must
	// be copied before the next pull if retained.
	Bytes []byte

	// Str holds the fully decoded Go string for String. Unlike Bytes
	// this is always a standalone allocation.
	Str string
}

// FloatWidth records which IEEE-754 width an Event's floating-point
// kind was (or should be) encoded at.
type FloatWidth uint8

const (
	Width16 FloatWidth = iota
	Width32
	Width64
)

// Reset clears the event back to its zero value, dropping any
// references into the input buffer so they can be garbage collected.
func (e *Event) Reset() {
	*e = Event{}
}

// Int32 returns Int64 narrowed to int32, with ok=false if the value
// does not fit.
func (e *Event) Int32() (int32, bool) {
	v := e.Int64
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, false
	}
	return int32(v), true
}

// AsInt64 returns the event's value widened to int64 regardless of
// whether it was produced as Int, Long or a non-negative OverLong that
// fits. ok is false for events with no integral reading.
func (e *Event) AsInt64() (v int64, ok bool) {
	switch e.Kind {
	case Int, Long:
		return e.Int64, true
	case OverLong:
		if e.Negative {
			if e.UInt64 > math.MaxInt64 {
				return 0, false
			}
			return -1 - int64(e.UInt64), true
		}
		if e.UInt64 > math.MaxInt64 {
			return 0, false
		}
		return int64(e.UInt64), true
	default:
		return 0, false
	}
}

// AsFloat64 widens any numeric kind (including NumberString, parsed on
// the spot) to a float64. ok is false for non-numeric kinds or a
// NumberString that fails to parse.
func (e *Event) AsFloat64() (v float64, ok bool) {
	switch e.Kind {
	case Float16, Float, Double:
		return e.Float64Value, true
	case Int, Long:
		return float64(e.Int64), true
	case OverLong:
		iv, ok := e.AsInt64()
		if !ok {
			// Magnitude exceeds int64 range; float64 can still
			// represent it approximately.
			f := float64(e.UInt64)
			if e.Negative {
				f = -1 - f
			}
			return f, true
		}
		return float64(iv), true
	case NumberString:
		f, _, err := parseDecimalFloat(e.Bytes)
		return f, err == nil
	default:
		return 0, false
	}
}
