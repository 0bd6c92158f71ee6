package stream

import "math"

// CBORParser pulls one Event at a time from a byte-oriented Input,
// implementing RFC 8949's major-type/additional-info grammar as a
// flat, non-recursive state machine: each call to Parse decodes
// exactly one item (a container opener, a chunk, a scalar, or Break)
// and leaves nesting bookkeeping entirely to the caller (the
// Validator, one layer up). This is what makes the parser able to
// stream arbitrarily deep or long documents with O(1) parser state.
type CBORParser struct {
	in *Input
}

func NewCBORParser(in *Input) *CBORParser { return &CBORParser{in: in} }

const (
	majorUint   = 0
	majorNegInt = 1
	majorBytes  = 2
	majorText   = 3
	majorArray  = 4
	majorMap    = 5
	majorTag    = 6
	majorSimple = 7
)

const (
	addIndefinite = 31
	simpleFalse   = 20
	simpleTrue    = 21
	simpleNull    = 22
	simpleUndef   = 23
	simpleUint8   = 24
	simpleFloat16 = 25
	simpleFloat32 = 26
	simpleFloat64 = 27
	simpleBreak   = 31
)

// readArgument decodes a major type's additional-info argument: either
// the direct value (add <= 23) or a following 1/2/4/8-byte big-endian
// integer (add in 24..27), using a branchless padded read so the
// common small-argument case never pays for a length check before the
// read itself.
func readArgument(in *Input, add byte) (uint64, error) {
	if add <= 23 {
		return uint64(add), nil
	}
	var n int
	switch add {
	case 24:
		n = 1
	case 25:
		n = 2
	case 26:
		n = 4
	case 27:
		n = 8
	default:
		return 0, InvalidInputDataError{InputPos: in.Position(), Reason: "reserved additional information value"}
	}
	window, avail := in.Padded8()
	if avail < n {
		return 0, ShortInputError{InputPos: in.Position(), Need: n - avail}
	}
	in.Advance(n)
	var v uint64
	for i := 0; i < n; i++ {
		v = v<<8 | uint64(window[i])
	}
	return v, nil
}

// Parse decodes the next CBOR data item into ev. At end of input it
// sets ev.Kind = EndOfInput and returns nil.
func (p *CBORParser) Parse(ev *Event) error {
	ev.Reset()
	if p.in.AtEnd() {
		ev.Kind = EndOfInput
		return nil
	}
	startPos := p.in.Position()
	b, err := p.in.ReadByte()
	if err != nil {
		return err
	}
	major := b >> 5
	add := b & 0x1f

	switch major {
	case majorUint:
		if add == addIndefinite {
			return InvalidInputDataError{InputPos: startPos, Reason: "indefinite length not legal for an integer"}
		}
		u, err := readArgument(p.in, add)
		if err != nil {
			return err
		}
		fillPositiveInt(ev, u)
		return nil

	case majorNegInt:
		if add == addIndefinite {
			return InvalidInputDataError{InputPos: startPos, Reason: "indefinite length not legal for an integer"}
		}
		u, err := readArgument(p.in, add)
		if err != nil {
			return err
		}
		fillNegativeInt(ev, u)
		return nil

	case majorBytes:
		if add == addIndefinite {
			ev.Kind = BytesStart
			return nil
		}
		n, err := readArgument(p.in, add)
		if err != nil {
			return err
		}
		data, err := p.in.Take(int(n))
		if err != nil {
			return err
		}
		ev.Kind = Bytes
		ev.Bytes = data
		return nil

	case majorText:
		if add == addIndefinite {
			ev.Kind = TextStart
			return nil
		}
		n, err := readArgument(p.in, add)
		if err != nil {
			return err
		}
		data, err := p.in.Take(int(n))
		if err != nil {
			return err
		}
		ev.Kind = Text
		ev.Bytes = data
		return nil

	case majorArray:
		if add == addIndefinite {
			ev.Kind = ArrayStart
			return nil
		}
		n, err := readArgument(p.in, add)
		if err != nil {
			return err
		}
		ev.Kind = ArrayHeader
		ev.UInt64 = n
		return nil

	case majorMap:
		if add == addIndefinite {
			ev.Kind = MapStart
			return nil
		}
		n, err := readArgument(p.in, add)
		if err != nil {
			return err
		}
		ev.Kind = MapHeader
		ev.UInt64 = n
		return nil

	case majorTag:
		if add == addIndefinite {
			return InvalidInputDataError{InputPos: startPos, Reason: "indefinite length not legal for a tag"}
		}
		n, err := readArgument(p.in, add)
		if err != nil {
			return err
		}
		ev.Kind = Tag
		ev.UInt64 = n
		return nil

	case majorSimple:
		return p.parseSimple(ev, add, startPos)
	}
	return InvalidInputDataError{InputPos: startPos, Reason: "unreachable major type"}
}

func (p *CBORParser) parseSimple(ev *Event, add byte, startPos int64) error {
	switch add {
	case simpleFalse:
		ev.Kind, ev.Bool = Boolean, false
		return nil
	case simpleTrue:
		ev.Kind, ev.Bool = Boolean, true
		return nil
	case simpleNull:
		ev.Kind = Null
		return nil
	case simpleUndef:
		ev.Kind = Undefined
		return nil
	case simpleFloat16:
		window, avail := p.in.Padded8()
		if avail < 2 {
			return ShortInputError{InputPos: startPos, Need: 2 - avail}
		}
		p.in.Advance(2)
		bits := uint16(window[0])<<8 | uint16(window[1])
		ev.Kind = Float16
		ev.FloatBits = Width16
		ev.Float64Value = float64(Float16BitsToFloat32(bits))
		return nil
	case simpleFloat32:
		window, avail := p.in.Padded8()
		if avail < 4 {
			return ShortInputError{InputPos: startPos, Need: 4 - avail}
		}
		p.in.Advance(4)
		bits := uint32(window[0])<<24 | uint32(window[1])<<16 | uint32(window[2])<<8 | uint32(window[3])
		ev.Kind = Float
		ev.FloatBits = Width32
		ev.Float64Value = float64(math.Float32frombits(bits))
		return nil
	case simpleFloat64:
		window, avail := p.in.Padded8()
		if avail < 8 {
			return ShortInputError{InputPos: startPos, Need: 8 - avail}
		}
		p.in.Advance(8)
		var bits uint64
		for i := 0; i < 8; i++ {
			bits = bits<<8 | uint64(window[i])
		}
		ev.Kind = Double
		ev.FloatBits = Width64
		ev.Float64Value = math.Float64frombits(bits)
		return nil
	case simpleBreak:
		ev.Kind = Break
		return nil
	case 28, 29, 30:
		return InvalidInputDataError{InputPos: startPos, Reason: "reserved simple/float additional information value"}
	default:
		if add <= 19 {
			ev.Kind = SimpleValue
			ev.UInt64 = uint64(add)
			return nil
		}
		// add == simpleUint8 (24): one-byte simple value, 32..255.
		v, err := p.in.ReadByte()
		if err != nil {
			return err
		}
		if v < 32 {
			return InvalidInputDataError{InputPos: startPos, Reason: "simple value encoded non-minimally"}
		}
		ev.Kind = SimpleValue
		ev.UInt64 = uint64(v)
		return nil
	}
}

// fillPositiveInt classifies a non-negative CBOR integer magnitude
// into the Int/Long/OverLong promotion ladder.
func fillPositiveInt(ev *Event, u uint64) {
	switch {
	case u <= math.MaxInt32:
		ev.Kind, ev.Int64 = Int, int64(u)
	case u <= math.MaxInt64:
		ev.Kind, ev.Int64 = Long, int64(u)
	default:
		ev.Kind, ev.UInt64, ev.Negative = OverLong, u, false
	}
}

// fillNegativeInt classifies a CBOR major-type-1 magnitude (the
// encoded value is -1-u) into the Int/Long/OverLong ladder.
func fillNegativeInt(ev *Event, u uint64) {
	switch {
	case u <= math.MaxInt32:
		ev.Kind, ev.Int64 = Int, -1-int64(u)
	case u <= math.MaxInt64:
		ev.Kind, ev.Int64 = Long, -1-int64(u)
	default:
		ev.Kind, ev.UInt64, ev.Negative = OverLong, u, true
	}
}
