// Package stream implements a dual-format (CBOR and JSON) pull/push
// data-item pipeline: a shared event taxonomy, byte-level input/output
// adapters, one parser and one renderer per wire format, a structural
// validator, and Reader/Writer facades built on top of them.
package stream

// Kind identifies the shape of a single data item produced by a parser
// or consumed by a renderer. Every item flowing through the pipeline,
// CBOR or JSON, is described by exactly one Kind plus the payload
// fields on Event that apply to it.
type Kind uint8

const (
	Null Kind = iota
	Undefined
	Boolean
	Int
	Long
	OverLong
	Float16
	Float
	Double
	NumberString
	String
	Chars
	Text
	TextStart
	Bytes
	BytesStart
	ArrayHeader
	ArrayStart
	MapHeader
	MapStart
	Break
	Tag
	SimpleValue
	EndOfInput

	numKinds = int(EndOfInput) + 1
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "Null"
	case Undefined:
		return "Undefined"
	case Boolean:
		return "Boolean"
	case Int:
		return "Int"
	case Long:
		return "Long"
	case OverLong:
		return "OverLong"
	case Float16:
		return "Float16"
	case Float:
		return "Float"
	case Double:
		return "Double"
	case NumberString:
		return "NumberString"
	case String:
		return "String"
	case Chars:
		return "Chars"
	case Text:
		return "Text"
	case TextStart:
		return "TextStart"
	case Bytes:
		return "Bytes"
	case BytesStart:
		return "BytesStart"
	case ArrayHeader:
		return "ArrayHeader"
	case ArrayStart:
		return "ArrayStart"
	case MapHeader:
		return "MapHeader"
	case MapStart:
		return "MapStart"
	case Break:
		return "Break"
	case Tag:
		return "Tag"
	case SimpleValue:
		return "SimpleValue"
	case EndOfInput:
		return "EndOfInput"
	default:
		return "<invalid kind>"
	}
}

// Mask is a bitset over Kind, one bit per kind (bits 0..23; bit 24 and
// above are reserved and always clear). It is used by the validator to
// describe which kinds are legal at a given cursor position, and by
// Reader.HasAny to test for several kinds at once without a switch.
type Mask uint32

// bit returns the single-kind mask for k.
func bit(k Kind) Mask { return Mask(1) << uint(k) }

// Has reports whether m permits kind k.
func (m Mask) Has(k Kind) bool { return m&bit(k) != 0 }

// With returns m with k added.
func (m Mask) With(k Kind) Mask { return m | bit(k) }

// Without returns m with k removed.
func (m Mask) Without(k Kind) Mask { return m &^ bit(k) }

// Union returns the bitwise union of m and masks.
func (m Mask) Union(masks ...Mask) Mask {
	for _, o := range masks {
		m |= o
	}
	return m
}

var (
	// MaskNone matches nothing.
	MaskNone Mask

	// MaskAll matches every defined kind except EndOfInput.
	MaskAll Mask

	// AllButBreak matches every kind except Break; this is the mask a
	// level uses for a definite-length or top-level slot, where BREAK
	// is never syntactically possible.
	AllButBreak Mask

	// StringLike matches String or Chars, the two kinds a caller that
	// does not care about the zero-copy distinction can treat alike.
	StringLike Mask

	// numberKinds matches every numeric kind a Reader coercion ladder
	// may need to accept in place of the kind actually requested.
	numberKinds Mask
)

func init() {
	// EndOfInput is a sentinel the parser reports out of band, never a
	// real data-item kind a Validator level or a Mask-based query
	// should treat as legal content; MaskAll covers only the 23 real
	// kinds, bits 0..22.
	for k := Kind(0); k < EndOfInput; k++ {
		MaskAll = MaskAll.With(k)
	}
	AllButBreak = MaskAll.Without(Break)
	StringLike = bit(String).With(Chars)
	numberKinds = bit(Int).With(Long).With(OverLong).With(Float16).With(Float).With(Double).With(NumberString)
}
