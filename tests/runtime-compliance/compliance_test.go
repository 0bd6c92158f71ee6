package tests

import (
	"encoding/hex"
	"errors"
	"testing"

	"github.com/nimblewire/itemcodec/stream"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad hex %q: %v", s, err)
	}
	return b
}

func roundTripCBOR(t *testing.T, write func(w *stream.Writer) error) []byte {
	t.Helper()
	out := stream.NewGrowOutput(64)
	w := stream.NewWriter(out, stream.DefaultConfig(), stream.CBOR)
	if err := write(w); err != nil {
		t.Fatalf("write: %v", err)
	}
	return append([]byte(nil), out.Bytes()...)
}

// TestCanonicalIntegerWidth verifies the renderer always picks the
// narrowest argument width, matching RFC 8949's canonical encoding
// recommendation the teacher's own writer also follows.
func TestCanonicalIntegerWidth(t *testing.T) {
	cases := []struct {
		v    int64
		want string
	}{
		{0, "00"},
		{23, "17"},
		{24, "1818"},
		{255, "18ff"},
		{256, "190100"},
		{65535, "19ffff"},
		{65536, "1a00010000"},
		{-1, "20"},
		{-24, "37"},
		{-25, "3818"},
	}
	for _, c := range cases {
		got := roundTripCBOR(t, func(w *stream.Writer) error { return w.WriteInt64(c.v) })
		if hexString(got) != c.want {
			t.Fatalf("WriteInt64(%d): got %s want %s", c.v, hexString(got), c.want)
		}
	}
}

// TestBreakOutsideContainerRejected verifies the Validator rejects an
// unbalanced Break.
func TestBreakOutsideContainerRejected(t *testing.T) {
	msg := mustHex(t, "ff")
	r := stream.NewReader(stream.NewInputBytes(msg), stream.DefaultConfig(), stream.CBOR)
	_, err := r.Next()
	var verr stream.ValidationFailureError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationFailureError, got %v", err)
	}
}

// TestMapOddEntriesRejected verifies a definite-length map that
// declares more pairs than follow is rejected: the missing pair leaves
// the container unclosed at end of input.
func TestMapOddEntriesRejected(t *testing.T) {
	// a2 (map of 2 pairs), but only one key/value pair follows.
	msg := mustHex(t, "a2616101")
	in := stream.NewInputBytes(msg)
	r := stream.NewReader(in, stream.DefaultConfig(), stream.CBOR)
	if err := r.SkipDataItem(); err == nil {
		t.Fatalf("expected an error from a truncated map, got nil")
	}
}

// TestJSONMapKeyMustBeString verifies that, in JSON mode, a non-string
// object key is rejected (by the JSON parser, which expects a string
// at every key position).
func TestJSONMapKeyMustBeString(t *testing.T) {
	r := stream.NewReader(stream.NewInputBytes([]byte(`{1: 2}`)), stream.DefaultConfig(), stream.JSON)
	if _, err := r.Next(); err != nil {
		t.Fatalf("MapStart: %v", err)
	}
	_, err := r.Next()
	if err == nil {
		t.Fatalf("expected an error for a non-string JSON key")
	}
}

// TestTagContentMaskRejectsWrongShape verifies tag 0 (date/time
// string) rejects a non-string content item.
func TestTagContentMaskRejectsWrongShape(t *testing.T) {
	// c0 (tag 0) 01 (int 1, not a text string)
	msg := mustHex(t, "c001")
	r := stream.NewReader(stream.NewInputBytes(msg), stream.DefaultConfig(), stream.CBOR)
	if _, err := r.Next(); err != nil {
		t.Fatalf("Tag: %v", err)
	}
	_, err := r.Next()
	var verr stream.ValidationFailureError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationFailureError for tag 0 content, got %v", err)
	}
}

// TestMaxNestingLevelsEnforced verifies a document nested deeper than
// configured is rejected rather than overflowing the call stack.
func TestMaxNestingLevelsEnforced(t *testing.T) {
	cfg := stream.DefaultConfig()
	cfg.MaxNestingLevels = 2
	// [[[0]]] nested three deep.
	msg := mustHex(t, "81818100")
	in := stream.NewInputBytes(msg)
	r := stream.NewReader(in, cfg, stream.CBOR)
	err := r.SkipDataItem()
	var oerr stream.OverflowError
	if !errors.As(err, &oerr) {
		t.Fatalf("expected OverflowError, got %v", err)
	}
}

// TestOverLongNegativeRoundTrip exercises the Int/Long/OverLong
// promotion ladder's most extreme negative case.
func TestOverLongNegativeRoundTrip(t *testing.T) {
	out := stream.NewGrowOutput(16)
	w := stream.NewWriter(out, stream.DefaultConfig(), stream.CBOR)
	if err := w.WriteNegativeOverflow(^uint64(0)); err != nil {
		t.Fatalf("WriteNegativeOverflow: %v", err)
	}
	want := "3bffffffffffffffff"
	if hexString(out.Bytes()) != want {
		t.Fatalf("got %s want %s", hexString(out.Bytes()), want)
	}

	r := stream.NewReader(stream.NewInputBytes(out.Bytes()), stream.DefaultConfig(), stream.CBOR)
	ev, err := r.Next()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if ev.Kind != stream.OverLong || !ev.Negative || ev.UInt64 != ^uint64(0) {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

// TestResumableClassification spot-checks the Resumable() taxonomy:
// a short input is resumable (more bytes might fix it), an invalid
// byte sequence is not.
func TestResumableClassification(t *testing.T) {
	r := stream.NewReader(stream.NewInputBytes([]byte{0x18}), stream.DefaultConfig(), stream.CBOR)
	_, err := r.Next()
	if !stream.Resumable(err) {
		t.Fatalf("expected a short-input error to be resumable, got %v", err)
	}

	r2 := stream.NewReader(stream.NewInputBytes([]byte{0x1c}), stream.DefaultConfig(), stream.CBOR)
	_, err2 := r2.Next()
	if stream.Resumable(err2) {
		t.Fatalf("expected a reserved-additional-info error to be non-resumable, got %v", err2)
	}
}

// TestIndefiniteTextStringRoundTrip writes an indefinite-length CBOR
// text string as two chunks and reads it back through Reader, the path
// that once failed validation because TextStart's value mask didn't
// allow the Text kind the CBOR parser actually emits for each chunk.
func TestIndefiniteTextStringRoundTrip(t *testing.T) {
	out := stream.NewGrowOutput(32)
	w := stream.NewWriter(out, stream.DefaultConfig(), stream.CBOR)
	if err := w.WriteTextStart(); err != nil {
		t.Fatalf("WriteTextStart: %v", err)
	}
	if err := w.WriteTextChunk([]byte("hello, ")); err != nil {
		t.Fatalf("WriteTextChunk: %v", err)
	}
	if err := w.WriteTextChunk([]byte("world")); err != nil {
		t.Fatalf("WriteTextChunk: %v", err)
	}
	if err := w.WriteBreak(); err != nil {
		t.Fatalf("WriteBreak: %v", err)
	}

	r := stream.NewReader(stream.NewInputBytes(out.Bytes()), stream.DefaultConfig(), stream.CBOR)
	ev, err := r.Next()
	if err != nil {
		t.Fatalf("TextStart: %v", err)
	}
	if ev.Kind != stream.TextStart {
		t.Fatalf("got kind %s want TextStart", ev.Kind)
	}
	var got []byte
	for {
		ev, err := r.Next()
		if err != nil {
			t.Fatalf("chunk/Break: %v", err)
		}
		if ev.Kind == stream.Break {
			break
		}
		if ev.Kind != stream.Text {
			t.Fatalf("chunk: got kind %s want Text", ev.Kind)
		}
		got = append(got, ev.Bytes...)
	}
	if string(got) != "hello, world" {
		t.Fatalf("got %q want %q", got, "hello, world")
	}
}

// TestIndefiniteByteStringRoundTrip is TestIndefiniteTextStringRoundTrip
// for WriteBytesStart/WriteBytes, covering validator.go's BytesStart
// mask fix symmetrically.
func TestIndefiniteByteStringRoundTrip(t *testing.T) {
	out := stream.NewGrowOutput(32)
	w := stream.NewWriter(out, stream.DefaultConfig(), stream.CBOR)
	if err := w.WriteBytesStart(); err != nil {
		t.Fatalf("WriteBytesStart: %v", err)
	}
	if err := w.WriteBytes([]byte{0x01, 0x02}); err != nil {
		t.Fatalf("WriteBytes chunk: %v", err)
	}
	if err := w.WriteBytes([]byte{0x03}); err != nil {
		t.Fatalf("WriteBytes chunk: %v", err)
	}
	if err := w.WriteBreak(); err != nil {
		t.Fatalf("WriteBreak: %v", err)
	}

	r := stream.NewReader(stream.NewInputBytes(out.Bytes()), stream.DefaultConfig(), stream.CBOR)
	ev, err := r.Next()
	if err != nil {
		t.Fatalf("BytesStart: %v", err)
	}
	if ev.Kind != stream.BytesStart {
		t.Fatalf("got kind %s want BytesStart", ev.Kind)
	}
	var got []byte
	for {
		ev, err := r.Next()
		if err != nil {
			t.Fatalf("chunk/Break: %v", err)
		}
		if ev.Kind == stream.Break {
			break
		}
		if ev.Kind != stream.Bytes {
			t.Fatalf("chunk: got kind %s want Bytes", ev.Kind)
		}
		got = append(got, ev.Bytes...)
	}
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Fatalf("got %v want [1 2 3]", got)
	}
}

func hexString(b []byte) string {
	const digits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = digits[c>>4]
		out[i*2+1] = digits[c&0xf]
	}
	return string(out)
}
