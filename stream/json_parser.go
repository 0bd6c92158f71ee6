package stream

import "strconv"

// JSONParser pulls one Event at a time from a byte-oriented Input,
// implementing RFC 8259's grammar. Unlike CBOR, JSON's containers
// carry no element count, so the parser keeps its own small stack of
// open brackets purely to know when a comma or a closing bracket is
// expected next; this is independent of (and sits below) the
// Validator's semantic-level stack one layer up.
type JSONParser struct {
	in    *Input
	cfg   Config
	stack []jsonFrame
}

type jsonFrame struct {
	isObject bool
	first    bool // true until the first element/pair has been handled
	afterKey bool // true once a key has been emitted and its ':' value is still owed
}

func NewJSONParser(in *Input, cfg Config) *JSONParser {
	return &JSONParser{in: in, cfg: cfg}
}

// skipWhitespace advances past run of JSON insignificant whitespace
// (space, tab, CR, LF), fetching it eight bytes at a time so the inner
// loop pays for one bounds check per word instead of per byte.
func (p *JSONParser) skipWhitespace() error {
	for {
		window, avail := p.in.Padded8()
		if avail == 0 {
			return nil
		}
		i := 0
		for ; i < avail; i++ {
			switch window[i] {
			case ' ', '\t', '\r', '\n':
				continue
			}
			break
		}
		p.in.Advance(i)
		if i < avail || avail < 8 {
			return nil
		}
	}
}

// Parse decodes the next JSON token into ev, including the synthetic
// Break events this package uses to close JSON arrays/objects and the
// ArrayStart/MapStart events used to open them (JSON never produces
// ArrayHeader/MapHeader since array/object length isn't known up
// front). At end of input with no open container it sets
// ev.Kind = EndOfInput.
func (p *JSONParser) Parse(ev *Event) error {
	ev.Reset()
	if err := p.skipWhitespace(); err != nil {
		return err
	}
	if len(p.stack) == 0 {
		if p.in.AtEnd() {
			ev.Kind = EndOfInput
			return nil
		}
		return p.parseValue(ev)
	}

	top := &p.stack[len(p.stack)-1]
	pos := p.in.Position()

	if top.afterKey {
		c, ok := p.in.PeekByte()
		if !ok || c != ':' {
			return InvalidInputDataError{InputPos: pos, Reason: "expected ':' after object key"}
		}
		p.in.Advance(1)
		top.afterKey = false
		if err := p.skipWhitespace(); err != nil {
			return err
		}
		return p.parseValue(ev)
	}

	closeByte := byte(']')
	if top.isObject {
		closeByte = '}'
	}

	if top.first {
		top.first = false
		c, ok := p.in.PeekByte()
		if ok && c == closeByte {
			p.in.Advance(1)
			p.stack = p.stack[:len(p.stack)-1]
			ev.Kind = Break
			return nil
		}
	} else {
		c, ok := p.in.PeekByte()
		if !ok {
			return ShortInputError{InputPos: pos, Need: 1}
		}
		switch c {
		case closeByte:
			p.in.Advance(1)
			p.stack = p.stack[:len(p.stack)-1]
			ev.Kind = Break
			return nil
		case ',':
			p.in.Advance(1)
			if err := p.skipWhitespace(); err != nil {
				return err
			}
		default:
			return InvalidInputDataError{InputPos: pos, Reason: "expected ',' or closing bracket"}
		}
	}

	if top.isObject {
		c, ok := p.in.PeekByte()
		if !ok || c != '"' {
			return InvalidInputDataError{InputPos: p.in.Position(), Reason: "expected string object key"}
		}
		if err := p.parseString(ev); err != nil {
			return err
		}
		top.afterKey = true
		return nil
	}
	return p.parseValue(ev)
}

func (p *JSONParser) parseValue(ev *Event) error {
	pos := p.in.Position()
	c, ok := p.in.PeekByte()
	if !ok {
		return ShortInputError{InputPos: pos, Need: 1}
	}
	switch {
	case c == '"':
		return p.parseString(ev)
	case c == '{':
		p.in.Advance(1)
		p.stack = append(p.stack, jsonFrame{isObject: true, first: true})
		ev.Kind = MapStart
		return nil
	case c == '[':
		p.in.Advance(1)
		p.stack = append(p.stack, jsonFrame{isObject: false, first: true})
		ev.Kind = ArrayStart
		return nil
	case c == 't':
		if err := p.expectLiteral("true"); err != nil {
			return err
		}
		ev.Kind, ev.Bool = Boolean, true
		return nil
	case c == 'f':
		if err := p.expectLiteral("false"); err != nil {
			return err
		}
		ev.Kind, ev.Bool = Boolean, false
		return nil
	case c == 'n':
		if err := p.expectLiteral("null"); err != nil {
			return err
		}
		ev.Kind = Null
		return nil
	case c == '-' || (c >= '0' && c <= '9'):
		return p.parseNumber(ev)
	default:
		return InvalidInputDataError{InputPos: pos, Reason: "unexpected character"}
	}
}

func (p *JSONParser) expectLiteral(lit string) error {
	pos := p.in.Position()
	got, err := p.in.Take(len(lit))
	if err != nil {
		return err
	}
	if string(got) != lit {
		return InvalidInputDataError{InputPos: pos, Reason: "invalid literal, expected " + lit}
	}
	return nil
}

// parseString scans a JSON string token (the opening quote must be at
// the cursor). When the content contains no backslash escapes, it is
// returned as a Chars event — zero-copy when the Input is fully
// buffered, a single fresh copy otherwise — since no decoding work was
// needed. When an escape is present the string is decoded into a
// fresh Go string and returned as a String event.
func (p *JSONParser) parseString(ev *Event) error {
	p.in.Advance(1) // opening quote

	zeroCopy := p.in.ZeroCopyCapable()
	contentStart := p.in.Position()
	hasEscape := false
	var decoded []byte // only allocated if hasEscape

	for {
		window, avail := p.in.Padded8()
		if avail == 0 {
			return ShortInputError{InputPos: p.in.Position(), Need: 1}
		}
		i := 0
		for ; i < avail; i++ {
			c := window[i]
			if c == '"' {
				// Closing quote found within this window.
				if !hasEscape {
					var raw []byte
					if zeroCopy {
						p.in.Advance(i)
						raw = p.in.SliceFrom(contentStart)
					} else {
						more, err := p.in.Take(i)
						if err != nil {
							return err
						}
						raw = append(append([]byte(nil), decoded...), more...)
					}
					p.in.Advance(1) // closing quote
					ev.Kind = Chars
					ev.Bytes = raw
					return nil
				}
				more, err := p.in.Take(i)
				if err != nil {
					return err
				}
				decoded = append(decoded, more...)
				p.in.Advance(1) // closing quote
				ev.Kind = String
				ev.Str = string(decoded)
				return nil
			}
			if c == '\\' || c < 0x20 {
				break
			}
		}
		if i == avail {
			// The whole window was plain content; consume it and keep
			// scanning (escape handling below only triggers mid-window).
			if zeroCopy && !hasEscape {
				p.in.Advance(avail)
			} else {
				more, err := p.in.Take(avail)
				if err != nil {
					return err
				}
				decoded = append(decoded, more...)
			}
			if avail < 8 {
				return ShortInputError{InputPos: p.in.Position(), Need: 1}
			}
			continue
		}

		c := window[i]
		if c < 0x20 {
			return InvalidInputDataError{InputPos: p.in.Position() + int64(i), Reason: "unescaped control character in string"}
		}
		// c == '\\': flush the clean prefix, then decode one escape.
		if !hasEscape {
			hasEscape = true
			if zeroCopy {
				// Earlier plain windows were only advanced over, so the
				// whole prefix is copied from contentStart.
				p.in.Advance(i)
				decoded = append(decoded, p.in.SliceFrom(contentStart)...)
			} else {
				pre, err := p.in.Take(i)
				if err != nil {
					return err
				}
				decoded = append(decoded, pre...)
			}
		} else {
			more, err := p.in.Take(i)
			if err != nil {
				return err
			}
			decoded = append(decoded, more...)
		}
		esc, err := p.decodeEscape()
		if err != nil {
			return err
		}
		decoded = append(decoded, esc...)
	}
}

// decodeEscape consumes one backslash escape sequence (the backslash
// itself must be at the cursor) and returns its UTF-8 expansion.
func (p *JSONParser) decodeEscape() ([]byte, error) {
	pos := p.in.Position()
	p.in.Advance(1) // backslash
	c, err := p.in.ReadByte()
	if err != nil {
		return nil, err
	}
	switch c {
	case '"':
		return []byte{'"'}, nil
	case '\\':
		return []byte{'\\'}, nil
	case '/':
		return []byte{'/'}, nil
	case 'b':
		return []byte{'\b'}, nil
	case 'f':
		return []byte{'\f'}, nil
	case 'n':
		return []byte{'\n'}, nil
	case 'r':
		return []byte{'\r'}, nil
	case 't':
		return []byte{'\t'}, nil
	case 'u':
		r, err := p.readHex4()
		if err != nil {
			return nil, err
		}
		if r >= 0xd800 && r <= 0xdbff {
			// High surrogate: a low surrogate must follow immediately.
			peek, err := p.in.Peek(2)
			if err == nil && peek[0] == '\\' && peek[1] == 'u' {
				p.in.Advance(2)
				low, err := p.readHex4()
				if err != nil {
					return nil, err
				}
				if low >= 0xdc00 && low <= 0xdfff {
					combined := 0x10000 + (int32(r)-0xd800)<<10 + (int32(low) - 0xdc00)
					return []byte(string(rune(combined))), nil
				}
				return nil, InvalidInputDataError{InputPos: pos, Reason: "unpaired UTF-16 surrogate"}
			}
			return nil, InvalidInputDataError{InputPos: pos, Reason: "unpaired UTF-16 surrogate"}
		}
		return []byte(string(rune(r))), nil
	default:
		return nil, InvalidInputDataError{InputPos: pos, Reason: "invalid escape sequence"}
	}
}

func (p *JSONParser) readHex4() (uint16, error) {
	b, err := p.in.Take(4)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(string(b), 16, 32)
	if err != nil {
		return 0, InvalidInputDataError{InputPos: p.in.Position() - 4, Reason: "invalid \\u escape"}
	}
	return uint16(v), nil
}

// parseNumber implements the three-stage number parser: try int64
// first, then a double (only for tokens with a fractional part or
// exponent), and fall back to NumberString to preserve exact digits
// whenever the first two stages can't represent the value losslessly.
// The mantissa-digit and exponent limits are checked eagerly, at the
// digit that exceeds them, and the Overflow error points at that byte.
func (p *JSONParser) parseNumber(ev *Event) error {
	start := p.in.Position()
	bb := GetByteBuffer()
	defer PutByteBuffer(bb)

	if c, ok := p.in.PeekByte(); ok && c == '-' {
		bb.WriteByte(c)
		p.in.Advance(1)
	}

	mantissaDigits := 0
	intDigits := 0
	firstDigit := true
	leadingZero := false
	for {
		c, ok := p.in.PeekByte()
		if !ok || c < '0' || c > '9' {
			break
		}
		if firstDigit && c == '0' {
			leadingZero = true
		}
		firstDigit = false
		bb.WriteByte(c)
		p.in.Advance(1)
		intDigits++
		mantissaDigits++
		if mantissaDigits > p.cfg.MaxNumberMantissaDigits {
			return OverflowError{InputPos: p.in.Position() - 1, Limit: "JSON number mantissa digits"}
		}
		if leadingZero {
			break // "0" must not be followed by another digit
		}
	}
	if intDigits == 0 {
		return InvalidInputDataError{InputPos: start, Reason: "expected digit"}
	}
	if leadingZero {
		if c, ok := p.in.PeekByte(); ok && c >= '0' && c <= '9' {
			return InvalidInputDataError{InputPos: p.in.Position(), Reason: "number with leading zero"}
		}
	}

	hasFracOrExp := false
	fracDigits := 0
	if c, ok := p.in.PeekByte(); ok && c == '.' {
		hasFracOrExp = true
		bb.WriteByte(c)
		p.in.Advance(1)
		for {
			c, ok := p.in.PeekByte()
			if !ok || c < '0' || c > '9' {
				break
			}
			bb.WriteByte(c)
			p.in.Advance(1)
			fracDigits++
			mantissaDigits++
			if mantissaDigits > p.cfg.MaxNumberMantissaDigits {
				return OverflowError{InputPos: p.in.Position() - 1, Limit: "JSON number mantissa digits"}
			}
		}
		if fracDigits == 0 {
			return InvalidInputDataError{InputPos: p.in.Position(), Reason: "expected digit after decimal point"}
		}
	}

	exponent := 0
	if c, ok := p.in.PeekByte(); ok && (c == 'e' || c == 'E') {
		hasFracOrExp = true
		bb.WriteByte(c)
		p.in.Advance(1)
		expNeg := false
		if c, ok := p.in.PeekByte(); ok && (c == '+' || c == '-') {
			expNeg = c == '-'
			bb.WriteByte(c)
			p.in.Advance(1)
		}
		expDigits := 0
		for {
			c, ok := p.in.PeekByte()
			if !ok || c < '0' || c > '9' {
				break
			}
			bb.WriteByte(c)
			p.in.Advance(1)
			expDigits++
			exponent = exponent*10 + int(c-'0')
			if exponent > p.cfg.MaxNumberAbsExponent {
				return OverflowError{InputPos: p.in.Position() - 1, Limit: "JSON number exponent magnitude"}
			}
		}
		if expDigits == 0 {
			return InvalidInputDataError{InputPos: p.in.Position(), Reason: "expected digit in exponent"}
		}
		if expNeg {
			exponent = -exponent
		}
	}

	raw := append([]byte(nil), bb.Bytes()...)

	if !hasFracOrExp && fitsInt64Fast(mantissaDigits) {
		if v, err := strconv.ParseInt(string(raw), 10, 64); err == nil {
			fillJSONInt(ev, v)
			return nil
		}
	}
	if hasFracOrExp && decimalIsExactDouble(mantissaDigits, fracDigits, exponent) {
		if f, err := strconv.ParseFloat(string(raw), 64); err == nil {
			ev.Kind, ev.Float64Value, ev.FloatBits = Double, f, Width64
			return nil
		}
	}
	if len(raw) > p.cfg.MaxStringLength {
		return OverflowError{InputPos: start, Limit: "JSON number string length"}
	}
	ev.Kind = NumberString
	ev.Bytes = raw
	return nil
}

func fillJSONInt(ev *Event, v int64) {
	if v >= -(1<<31) && v <= (1<<31-1) {
		ev.Kind, ev.Int64 = Int, v
	} else {
		ev.Kind, ev.Int64 = Long, v
	}
}
