package stream

import (
	"math"
	"strconv"
	"unicode/utf8"
)

// JSONRenderer pushes one Event at a time onto a byte-oriented Output
// as JSON text. Like JSONParser it keeps its own small bracket stack,
// this time to know whether a comma or a ':' needs writing before the
// next token, and optionally pretty-prints with cfg.Indent spaces per
// nesting level (Indent < 0 disables all extra whitespace).
type JSONRenderer struct {
	out   *Output
	cfg   Config
	stack []jsonFrame
}

func NewJSONRenderer(out *Output, cfg Config) *JSONRenderer {
	return &JSONRenderer{out: out, cfg: cfg}
}

func (r *JSONRenderer) indent(depth int) error {
	if r.cfg.Indent < 0 {
		return nil
	}
	if err := r.out.WriteByte('\n'); err != nil {
		return err
	}
	for i := 0; i < depth*r.cfg.Indent; i++ {
		if err := r.out.WriteByte(' '); err != nil {
			return err
		}
	}
	return nil
}

// beforeToken writes whatever separator syntax (comma, colon, opening
// indentation) must precede the next token given the current frame.
func (r *JSONRenderer) beforeToken() error {
	if len(r.stack) == 0 {
		return nil
	}
	top := &r.stack[len(r.stack)-1]
	if top.afterKey {
		top.afterKey = false
		return r.out.WriteByte(':')
	}
	if !top.first {
		if err := r.out.WriteByte(','); err != nil {
			return err
		}
	}
	top.first = false
	return r.indent(len(r.stack))
}

// Render encodes ev as the next JSON token.
func (r *JSONRenderer) Render(ev *Event) error {
	if ev.Kind == Break {
		if len(r.stack) == 0 {
			return ValidationFailureError{Reason: "Break with no open JSON container"}
		}
		top := r.stack[len(r.stack)-1]
		r.stack = r.stack[:len(r.stack)-1]
		if !top.first {
			if err := r.indent(len(r.stack)); err != nil {
				return err
			}
		}
		if top.isObject {
			return r.out.WriteByte('}')
		}
		return r.out.WriteByte(']')
	}

	var top *jsonFrame
	if len(r.stack) > 0 {
		top = &r.stack[len(r.stack)-1]
	}
	writingKey := top != nil && top.isObject && !top.afterKey
	if err := r.beforeToken(); err != nil {
		return err
	}
	if writingKey {
		defer func() { top.afterKey = true }()
	}

	switch ev.Kind {
	case Null:
		return r.out.WriteString("null")
	case Undefined:
		return UnsupportedError{Reason: "JSON has no undefined literal"}
	case Boolean:
		if ev.Bool {
			return r.out.WriteString("true")
		}
		return r.out.WriteString("false")
	case Int, Long:
		return r.out.WriteString(strconv.FormatInt(ev.Int64, 10))
	case OverLong:
		if ev.Negative {
			return r.out.WriteString("-" + bigSubtractOne(ev.UInt64))
		}
		return r.out.WriteString(strconv.FormatUint(ev.UInt64, 10))
	case Float, Double:
		return r.writeJSONFloat(ev.Float64Value)
	case Float16:
		return UnsupportedError{Reason: "JSON renderer does not accept Float16; widen to Double first"}
	case NumberString:
		return r.out.WriteBytes(ev.Bytes)
	case String:
		return r.writeJSONString([]byte(ev.Str))
	case Chars, Text:
		return r.writeJSONString(ev.Bytes)
	case Bytes, BytesStart:
		return UnsupportedError{Reason: "JSON has no binary string type; base64-encode Bytes before writing"}
	case ArrayStart:
		r.stack = append(r.stack, jsonFrame{isObject: false, first: true})
		return r.out.WriteByte('[')
	case MapStart:
		r.stack = append(r.stack, jsonFrame{isObject: true, first: true})
		return r.out.WriteByte('{')
	case Tag:
		return UnsupportedError{Reason: "JSON has no tag syntax"}
	case SimpleValue:
		return UnsupportedError{Reason: "JSON has no simple-value syntax"}
	default:
		return UnsupportedError{Reason: "kind " + ev.Kind.String() + " cannot be rendered as JSON"}
	}
}

// bigSubtractOne returns the decimal digits of 1+u, without a sign;
// callers prefix "-" to render the negative OverLong value -(1+u),
// whose magnitude may exceed math.MaxInt64, without resorting to
// big.Int: u is at most 2^64-1, so 1+u fits in at most 20 decimal
// digits computed by hand via the uint64 formatter plus a carry.
func bigSubtractOne(u uint64) string {
	// u+1 as decimal: format u, then add 1 with carry over the ASCII
	// digits (u+1 cannot overflow uint64's 20-digit decimal width
	// representation since u <= 2^64-1 < 10^20-1).
	s := []byte(strconv.FormatUint(u, 10))
	i := len(s) - 1
	for i >= 0 {
		if s[i] != '9' {
			s[i]++
			return string(s)
		}
		s[i] = '0'
		i--
	}
	return "1" + string(s)
}

func (r *JSONRenderer) writeJSONFloat(f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return UnsupportedError{Reason: "JSON has no NaN or Infinity literal"}
	}
	return r.out.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
}

var hexDigits = "0123456789abcdef"

func (r *JSONRenderer) writeJSONString(b []byte) error {
	if err := r.out.WriteByte('"'); err != nil {
		return err
	}
	i := 0
	for i < len(b) {
		c := b[i]
		switch {
		case c == '"' || c == '\\':
			if err := r.out.WriteByte('\\'); err != nil {
				return err
			}
			if err := r.out.WriteByte(c); err != nil {
				return err
			}
			i++
		case c == '\n':
			if err := r.out.WriteString(`\n`); err != nil {
				return err
			}
			i++
		case c == '\r':
			if err := r.out.WriteString(`\r`); err != nil {
				return err
			}
			i++
		case c == '\t':
			if err := r.out.WriteString(`\t`); err != nil {
				return err
			}
			i++
		case c < 0x20:
			if err := r.out.WriteString(`\u00`); err != nil {
				return err
			}
			if err := r.out.WriteByte(hexDigits[c>>4]); err != nil {
				return err
			}
			if err := r.out.WriteByte(hexDigits[c&0xf]); err != nil {
				return err
			}
			i++
		case c < utf8.RuneSelf:
			if err := r.out.WriteByte(c); err != nil {
				return err
			}
			i++
		default:
			rn, size := utf8.DecodeRune(b[i:])
			if rn == utf8.RuneError && size == 1 {
				return InvalidInputDataError{Reason: "invalid UTF-8 in string value"}
			}
			if err := r.out.WriteBytes(b[i : i+size]); err != nil {
				return err
			}
			i += size
		}
	}
	return r.out.WriteByte('"')
}
