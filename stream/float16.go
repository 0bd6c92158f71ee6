package stream

import "math"

// Float32ToFloat16Bits converts a float32 to its IEEE-754 half
// precision bit pattern. Values that don't fit the half-precision
// range saturate to +-Inf; NaNs are collapsed to the canonical
// quiet-NaN pattern, matching common CBOR encoder behavior.
func Float32ToFloat16Bits(f float32) uint16 {
	bits := math.Float32bits(f)
	sign := uint16((bits >> 16) & 0x8000)
	exp := int32((bits>>23)&0xff) - 127 + 15
	mant := bits & 0x7fffff

	switch {
	case (bits>>23)&0xff == 0xff:
		if mant != 0 {
			return sign | 0x7e00 // quiet NaN
		}
		return sign | 0x7c00 // +-Inf
	case exp >= 0x1f:
		return sign | 0x7c00 // overflow to Inf
	case exp <= 0:
		if exp < -10 {
			return sign // too small, flushes to zero
		}
		mant |= 0x800000
		shift := uint(14 - exp)
		return sign | uint16(mant>>shift)
	default:
		return sign | uint16(exp)<<10 | uint16(mant>>13)
	}
}

// Float16BitsToFloat32 converts an IEEE-754 half precision bit pattern
// to float32.
func Float16BitsToFloat32(h uint16) float32 {
	sign := uint32(h&0x8000) << 16
	exp := uint32(h>>10) & 0x1f
	mant := uint32(h & 0x3ff)

	switch exp {
	case 0:
		if mant == 0 {
			return math.Float32frombits(sign)
		}
		// Subnormal: normalize.
		e := 0
		for mant&0x400 == 0 {
			mant <<= 1
			e--
		}
		mant &= 0x3ff
		return math.Float32frombits(sign | uint32(e+127-15+1)<<23 | mant<<13)
	case 0x1f:
		if mant == 0 {
			return math.Float32frombits(sign | 0x7f800000)
		}
		return math.Float32frombits(sign | 0x7fc00000)
	default:
		return math.Float32frombits(sign | (exp-15+127)<<23 | mant<<13)
	}
}

// Float16FitsRoundtrip reports whether f survives a round trip through
// half precision without loss.
func Float16FitsRoundtrip(f float32) bool {
	return Float16BitsToFloat32(Float32ToFloat16Bits(f)) == f
}

// Float32FitsRoundtrip reports whether a float64 survives a round
// trip through single precision without loss.
func Float32FitsRoundtrip(d float64) bool {
	return float64(float32(d)) == d
}

// CompressFloat chooses the narrowest IEEE-754 width that represents d
// exactly, for the CBOR renderer's optional lossless float-compression
// policy (spec §4.3/§6: compressFloatingPointValues, default on,
// forced off in JSON mode since JSON has no width-tagged number
// encoding to compress into).
func CompressFloat(d float64) FloatWidth {
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return Width16
	}
	if !Float32FitsRoundtrip(d) {
		return Width64
	}
	if !Float16FitsRoundtrip(float32(d)) {
		return Width32
	}
	return Width16
}
