package stream

import "math"

// CBORRenderer pushes one Event at a time onto a byte-oriented Output,
// the mirror image of CBORParser. It always emits the shortest
// canonical argument encoding for integers, array/map headers, and tag
// numbers; floating-point width is governed by the compress flag (RFC
// 8949-style "use the narrowest lossless width" cascade, on by
// default, the Writer facade turns it off for JSON mode since it does
// not apply there).
type CBORRenderer struct {
	out      *Output
	compress bool
}

func NewCBORRenderer(out *Output, compressFloats bool) *CBORRenderer {
	return &CBORRenderer{out: out, compress: compressFloats}
}

func makeInitialByte(major, add byte) byte { return major<<5 | add }

func writeArgument(out *Output, major byte, n uint64) error {
	switch {
	case n <= 23:
		return out.WriteByte(makeInitialByte(major, byte(n)))
	case n <= 0xff:
		if err := out.WriteByte(makeInitialByte(major, 24)); err != nil {
			return err
		}
		return out.WriteByte(byte(n))
	case n <= 0xffff:
		if err := out.WriteByte(makeInitialByte(major, 25)); err != nil {
			return err
		}
		return out.WriteUint16BE(uint16(n))
	case n <= 0xffffffff:
		if err := out.WriteByte(makeInitialByte(major, 26)); err != nil {
			return err
		}
		return out.WriteUint32BE(uint32(n))
	default:
		if err := out.WriteByte(makeInitialByte(major, 27)); err != nil {
			return err
		}
		return out.WriteUint64BE(n)
	}
}

// Render encodes ev as CBOR bytes appended to the renderer's Output.
func (r *CBORRenderer) Render(ev *Event) error {
	switch ev.Kind {
	case Null:
		return r.out.WriteByte(0xf6)
	case Undefined:
		return r.out.WriteByte(0xf7)
	case Boolean:
		if ev.Bool {
			return r.out.WriteByte(0xf5)
		}
		return r.out.WriteByte(0xf4)
	case Int, Long:
		if ev.Int64 >= 0 {
			return writeArgument(r.out, majorUint, uint64(ev.Int64))
		}
		return writeArgument(r.out, majorNegInt, uint64(-1-ev.Int64))
	case OverLong:
		if ev.Negative {
			return writeArgument(r.out, majorNegInt, ev.UInt64)
		}
		return writeArgument(r.out, majorUint, ev.UInt64)
	case Float16, Float, Double:
		return r.writeFloat(ev)
	case NumberString:
		return UnsupportedError{Reason: "CBOR has no NumberString wire form; convert to Double or OverLong first"}
	case String:
		if err := writeArgument(r.out, majorText, uint64(len(ev.Str))); err != nil {
			return err
		}
		return r.out.WriteString(ev.Str)
	case Chars, Text, Bytes:
		major := byte(majorBytes)
		if ev.Kind != Bytes {
			major = majorText
		}
		if err := writeArgument(r.out, major, uint64(len(ev.Bytes))); err != nil {
			return err
		}
		return r.out.WriteBytes(ev.Bytes)
	case TextStart:
		return r.out.WriteByte(makeInitialByte(majorText, addIndefinite))
	case BytesStart:
		return r.out.WriteByte(makeInitialByte(majorBytes, addIndefinite))
	case ArrayHeader:
		return writeArgument(r.out, majorArray, ev.UInt64)
	case ArrayStart:
		return r.out.WriteByte(makeInitialByte(majorArray, addIndefinite))
	case MapHeader:
		return writeArgument(r.out, majorMap, ev.UInt64)
	case MapStart:
		return r.out.WriteByte(makeInitialByte(majorMap, addIndefinite))
	case Break:
		return r.out.WriteByte(0xff)
	case Tag:
		return writeArgument(r.out, majorTag, ev.UInt64)
	case SimpleValue:
		if ev.UInt64 <= 19 {
			return r.out.WriteByte(makeInitialByte(majorSimple, byte(ev.UInt64)))
		}
		if ev.UInt64 >= 32 && ev.UInt64 <= 255 {
			if err := r.out.WriteByte(makeInitialByte(majorSimple, simpleUint8)); err != nil {
				return err
			}
			return r.out.WriteByte(byte(ev.UInt64))
		}
		return UnsupportedError{Reason: "simple value reserved or out of range"}
	default:
		return UnsupportedError{Reason: "kind " + ev.Kind.String() + " cannot be rendered as CBOR"}
	}
}

func (r *CBORRenderer) writeFloat(ev *Event) error {
	width := ev.FloatBits
	if r.compress {
		width = CompressFloat(ev.Float64Value)
	}
	switch width {
	case Width16:
		if err := r.out.WriteByte(makeInitialByte(majorSimple, simpleFloat16)); err != nil {
			return err
		}
		return r.out.WriteUint16BE(Float32ToFloat16Bits(float32(ev.Float64Value)))
	case Width32:
		if err := r.out.WriteByte(makeInitialByte(majorSimple, simpleFloat32)); err != nil {
			return err
		}
		return r.out.WriteUint32BE(math.Float32bits(float32(ev.Float64Value)))
	default:
		if err := r.out.WriteByte(makeInitialByte(majorSimple, simpleFloat64)); err != nil {
			return err
		}
		return r.out.WriteFloat64BE(ev.Float64Value)
	}
}
