package tests

import (
	"encoding/hex"
	"testing"

	"github.com/nimblewire/itemcodec/stream"
)

type rfcExample struct {
	name string
	diag string
	hex  string
}

// The literal worked examples from RFC 8949 §8 (well-formedness and
// diagnostic notation), the same set the teacher's own rfc-examples
// suite checks against its byte-slice walker.
var rfcExamples = []rfcExample{
	{name: "text-a", diag: `"a"`, hex: "6161"},
	{name: "zero", diag: "0", hex: "00"},
	{name: "minus-one", diag: "-1", hex: "20"},
	{name: "bytes-010203", diag: "h'010203'", hex: "43010203"},
	{name: "array-1-2-3", diag: "[1, 2, 3]", hex: "83010203"},
	{name: "map-a1-b2", diag: `{"a": 1, "b": 2}`, hex: "a2616101616202"},
	{name: "indef-array-1-2", diag: "[_ 1, 2]", hex: "9f0102ff"},
	{name: "tag-epoch-datetime", diag: "1(1363896240)", hex: "c11a514b67b0"},
}

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad hex %q: %v", s, err)
	}
	return b
}

func TestRFCExamplesDiagnose(t *testing.T) {
	for _, ex := range rfcExamples {
		ex := ex
		t.Run(ex.name, func(t *testing.T) {
			msg := mustHex(t, ex.hex)
			r := stream.NewReader(stream.NewInputBytes(msg), stream.DefaultConfig(), stream.CBOR)
			got, err := stream.Diagnose(r)
			if err != nil {
				t.Fatalf("Diagnose error: %v", err)
			}
			if got != ex.diag {
				t.Fatalf("diag mismatch: got %q want %q (hex %s)", got, ex.diag, ex.hex)
			}
			if !r.AtTopLevel() {
				t.Fatalf("reader still has open containers after one top-level item")
			}
		})
	}
}

// TestRFCExamplesWellFormed re-parses each example with SkipDataItem,
// verifying the document is exactly one complete, structurally legal
// item with nothing left over.
func TestRFCExamplesWellFormed(t *testing.T) {
	for _, ex := range rfcExamples {
		ex := ex
		t.Run(ex.name, func(t *testing.T) {
			msg := mustHex(t, ex.hex)
			in := stream.NewInputBytes(msg)
			r := stream.NewReader(in, stream.DefaultConfig(), stream.CBOR)
			if err := r.SkipDataItem(); err != nil {
				t.Fatalf("SkipDataItem error: %v", err)
			}
			if !in.AtEnd() {
				t.Fatalf("leftover bytes after well-formed item: %d", in.Remaining())
			}
		})
	}
}
