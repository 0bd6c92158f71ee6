package stream

import (
	"encoding/hex"
	"math"
	"strconv"
)

// maxDiagDepth bounds Diagnose's recursion the same way SkipDataItem
// bounds skipElement's.
const maxDiagDepth = 100

// Diagnose renders the next complete data item pulled from r in RFC
// 8949 §8 diagnostic notation (e.g. `{1: "a", 2: [_ h'01', h'02']}`)
// and returns it as a string. Unlike the teacher's byte-slice walker
// this drives a Reader, so it works identically over CBOR or JSON
// input and over a streaming source, not just an in-memory buffer.
func Diagnose(r *Reader) (string, error) {
	buf := GetByteBuffer()
	defer PutByteBuffer(buf)
	if err := diagOne(buf, r, 0); err != nil {
		return "", err
	}
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return string(out), nil
}

func diagOne(buf *ByteBuffer, r *Reader, depth int) error {
	if depth > maxDiagDepth {
		return OverflowError{Limit: "diagnostic nesting depth"}
	}
	ev, err := r.Next()
	if err != nil {
		return err
	}
	switch ev.Kind {
	case Null:
		buf.WriteString("null")
	case Undefined:
		buf.WriteString("undefined")
	case Boolean:
		if ev.Bool {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case Int, Long:
		buf.WriteString(strconv.FormatInt(ev.Int64, 10))
	case OverLong:
		if ev.Negative {
			buf.WriteString("-" + bigSubtractOne(ev.UInt64))
		} else {
			buf.WriteString(strconv.FormatUint(ev.UInt64, 10))
		}
	case Float16:
		buf.WriteString(formatFloat32Diag(float32(ev.Float64Value)))
	case Float:
		buf.WriteString(formatFloat32Diag(float32(ev.Float64Value)))
	case Double:
		buf.WriteString(formatFloat64Diag(ev.Float64Value))
	case NumberString:
		buf.Write(ev.Bytes)
	case String:
		buf.WriteString(strconv.Quote(ev.Str))
	case Chars, Text:
		buf.WriteString(strconv.Quote(string(ev.Bytes)))
	case Bytes:
		buf.WriteString("h'")
		d := buf.Extend(hex.EncodedLen(len(ev.Bytes)))
		hex.Encode(d, ev.Bytes)
		buf.WriteString("'")
	case BytesStart:
		return diagIndefiniteBytes(buf, r, depth)
	case TextStart:
		return diagIndefiniteText(buf, r, depth)
	case ArrayHeader:
		n := ev.UInt64 // ev is overwritten by the nested pulls below
		buf.WriteString("[")
		for i := uint64(0); i < n; i++ {
			if i > 0 {
				buf.WriteString(", ")
			}
			if err := diagOne(buf, r, depth+1); err != nil {
				return err
			}
		}
		buf.WriteString("]")
	case ArrayStart:
		return diagIndefiniteArray(buf, r, depth)
	case MapHeader:
		n := ev.UInt64 // ev is overwritten by the nested pulls below
		buf.WriteString("{")
		for i := uint64(0); i < n; i++ {
			if i > 0 {
				buf.WriteString(", ")
			}
			if err := diagOne(buf, r, depth+1); err != nil {
				return err
			}
			buf.WriteString(": ")
			if err := diagOne(buf, r, depth+1); err != nil {
				return err
			}
		}
		buf.WriteString("}")
	case MapStart:
		return diagIndefiniteMap(buf, r, depth)
	case Tag:
		buf.WriteString(strconv.FormatUint(ev.UInt64, 10))
		buf.WriteString("(")
		if err := diagOne(buf, r, depth+1); err != nil {
			return err
		}
		buf.WriteString(")")
	case SimpleValue:
		buf.WriteString("simple(" + strconv.FormatUint(ev.UInt64, 10) + ")")
	default:
		return UnsupportedError{Reason: "kind " + ev.Kind.String() + " has no diagnostic notation"}
	}
	return nil
}

func diagIndefiniteBytes(buf *ByteBuffer, r *Reader, depth int) error {
	buf.WriteString("(_")
	first := true
	for {
		k, err := r.HasBreak()
		if err != nil {
			return err
		}
		if k {
			return finishIndefinite(buf, r, ")")
		}
		chunk, err := r.ReadBytes()
		if err != nil {
			return err
		}
		if !first {
			buf.WriteString(", ")
		} else {
			buf.WriteString(" ")
			first = false
		}
		buf.WriteString("h'")
		d := buf.Extend(hex.EncodedLen(len(chunk)))
		hex.Encode(d, chunk)
		buf.WriteString("'")
	}
}

func diagIndefiniteText(buf *ByteBuffer, r *Reader, depth int) error {
	buf.WriteString("(_")
	first := true
	for {
		k, err := r.HasBreak()
		if err != nil {
			return err
		}
		if k {
			return finishIndefinite(buf, r, ")")
		}
		s, err := r.ReadString()
		if err != nil {
			return err
		}
		if !first {
			buf.WriteString(", ")
		} else {
			buf.WriteString(" ")
			first = false
		}
		buf.WriteString(strconv.Quote(s))
	}
}

func diagIndefiniteArray(buf *ByteBuffer, r *Reader, depth int) error {
	buf.WriteString("[_")
	first := true
	for {
		k, err := r.HasBreak()
		if err != nil {
			return err
		}
		if k {
			return finishIndefinite(buf, r, "]")
		}
		if !first {
			buf.WriteString(", ")
		} else {
			buf.WriteString(" ")
			first = false
		}
		if err := diagOne(buf, r, depth+1); err != nil {
			return err
		}
	}
}

func diagIndefiniteMap(buf *ByteBuffer, r *Reader, depth int) error {
	buf.WriteString("{_")
	first := true
	for {
		k, err := r.HasBreak()
		if err != nil {
			return err
		}
		if k {
			return finishIndefinite(buf, r, "}")
		}
		if !first {
			buf.WriteString(", ")
		} else {
			buf.WriteString(" ")
			first = false
		}
		if err := diagOne(buf, r, depth+1); err != nil {
			return err
		}
		buf.WriteString(": ")
		if err := diagOne(buf, r, depth+1); err != nil {
			return err
		}
	}
}

func finishIndefinite(buf *ByteBuffer, r *Reader, closer string) error {
	if err := r.ReadBreak(); err != nil {
		return err
	}
	buf.WriteString(closer)
	return nil
}

func formatFloat64Diag(f float64) string {
	if math.IsInf(f, +1) {
		return "Infinity"
	}
	if math.IsInf(f, -1) {
		return "-Infinity"
	}
	if math.IsNaN(f) {
		return "NaN"
	}
	af := math.Abs(f)
	if af == 0 || af < 1e15 {
		return trimTrailingZerosDot(strconv.FormatFloat(f, 'f', -1, 64))
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func formatFloat32Diag(f float32) string {
	if math.IsInf(float64(f), +1) {
		return "Infinity"
	}
	if math.IsInf(float64(f), -1) {
		return "-Infinity"
	}
	if math.IsNaN(float64(f)) {
		return "NaN"
	}
	af := math.Abs(float64(f))
	if af == 0 || af < 1e15 {
		return trimTrailingZerosDot(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}

func trimTrailingZerosDot(s string) string {
	hasDot := false
	for j := 0; j < len(s); j++ {
		if s[j] == '.' {
			hasDot = true
			break
		}
	}
	if !hasDot {
		return s
	}
	i := len(s)
	for i > 0 && s[i-1] == '0' {
		i--
	}
	if i > 0 && s[i-1] == '.' {
		i--
	}
	return s[:i]
}
