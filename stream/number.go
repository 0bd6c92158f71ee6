package stream

import "strconv"

// parseDecimalFloat parses the ASCII decimal/scientific text held by a
// NumberString event (used by Event.AsFloat64). The text is exactly what strconv.ParseFloat accepts since the JSON number
// grammar is a strict subset of Go's float literal grammar.
func parseDecimalFloat(b []byte) (float64, int, error) {
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return 0, 0, err
	}
	return f, len(b), nil
}

// maxInt64Digits and fitsInt64Fast classify a run of decimal digit
// bytes (no sign, no exponent, no fraction) by how large it is, for the
// JSON parser's first-stage fast path: try int64, and only fall back to
// the double/NumberString stages when the digit run can't possibly fit.
//
// maxInt64Digits is the longest a positive int64 can be in decimal
// (19 digits, e.g. math.MaxInt64 = 9223372036854775807).
const maxInt64Digits = 19

// fitsInt64Fast reports whether a digit run of the given length,
// without sign or leading zero concerns, is short enough to even
// attempt parsing as int64 (an exact compare via strconv.ParseInt is
// still needed at exactly maxInt64Digits, since e.g. 19 nines do
// overflow while math.MaxInt64 itself does not).
func fitsInt64Fast(numDigits int) bool {
	return numDigits <= maxInt64Digits
}

// maxExactMantissaDigits is the longest run of significant decimal
// digits guaranteed to fit in a float64's 53-bit mantissa exactly
// (10^15 < 2^53), and maxExactPow10Exponent is the largest power of
// ten still exactly representable as a float64. When a decimal
// literal's significand and combined exponent both stay within these
// bounds, multiplying (or dividing) the exact integer mantissa by the
// exact power of ten is a single correctly-rounded float64 operation,
// so the result is the nearest double to the decimal value (it equals
// the decimal only when the decimal is itself a binary fraction; 0.1,
// for instance, passes the bound but is rounded). Outside this range
// the caller falls back to NumberString to keep the full-precision
// text around.
const (
	maxExactMantissaDigits = 15
	maxExactPow10Exponent  = 22
)

// decimalIsExactDouble reports whether a decimal literal with the
// given number of significant mantissa digits, fracDigits digits
// after the decimal point, and explicit scientific exponent falls
// within the bounds above, so that its float64 conversion is a single
// correctly-rounded operation.
func decimalIsExactDouble(mantissaDigits, fracDigits, exponent int) bool {
	if mantissaDigits > maxExactMantissaDigits {
		return false
	}
	combined := exponent - fracDigits
	return combined >= -maxExactPow10Exponent && combined <= maxExactPow10Exponent
}
