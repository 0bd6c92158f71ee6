package tests

import (
	"testing"

	"github.com/nimblewire/itemcodec/stream"
)

// TestReaderConsumesSequenceOfTopLevelItems shows that CBOR sequences
// (RFC 8742) need no dedicated splitting API: a Reader's top-level read
// loop already stops exactly at each item boundary, so repeatedly
// pulling items off one Reader over concatenated bytes is sufficient.
func TestReaderConsumesSequenceOfTopLevelItems(t *testing.T) {
	out := stream.NewGrowOutput(32)
	w := stream.NewWriter(out, stream.DefaultConfig(), stream.CBOR)
	if err := w.WriteString("hi"); err != nil {
		t.Fatalf("WriteString: %v", err)
	}
	if err := w.WriteInt64(42); err != nil {
		t.Fatalf("WriteInt64: %v", err)
	}
	if err := w.WriteArrayHeader(2); err != nil {
		t.Fatalf("WriteArrayHeader: %v", err)
	}
	if err := w.WriteBoolean(true); err != nil {
		t.Fatalf("WriteBoolean: %v", err)
	}
	if err := w.WriteBoolean(false); err != nil {
		t.Fatalf("WriteBoolean: %v", err)
	}

	r := stream.NewReader(stream.NewInputBytes(out.Bytes()), stream.DefaultConfig(), stream.CBOR)

	ev, err := r.Next()
	if err != nil || ev.Kind != stream.Text || string(ev.Bytes) != "hi" {
		t.Fatalf("item 1: ev=%+v err=%v", ev, err)
	}
	if !r.AtTopLevel() {
		t.Fatalf("expected to be at top level between sequence items")
	}

	ev, err = r.Next()
	if err != nil || ev.Kind != stream.Int || ev.Int64 != 42 {
		t.Fatalf("item 2: ev=%+v err=%v", ev, err)
	}

	ev, err = r.Next()
	if err != nil || ev.Kind != stream.ArrayHeader || ev.UInt64 != 2 {
		t.Fatalf("item 3 header: ev=%+v err=%v", ev, err)
	}
	if r.AtTopLevel() {
		t.Fatalf("should not be at top level inside the array")
	}
	for i := 0; i < 2; i++ {
		if _, err := r.Next(); err != nil {
			t.Fatalf("array element %d: %v", i, err)
		}
	}
	if !r.AtTopLevel() {
		t.Fatalf("expected to be back at top level after closing the array")
	}

	if k, err := r.Peek(); err != nil || k != stream.EndOfInput {
		t.Fatalf("expected EndOfInput after draining sequence, got kind=%v err=%v", k, err)
	}
}

// TestReaderSkipsEachSequenceItemIndependently exercises SkipDataItem
// across sequence boundaries the way a forwarding tool like
// cmd/itemdump's convert subcommand would.
func TestReaderSkipsEachSequenceItemIndependently(t *testing.T) {
	out := stream.NewGrowOutput(16)
	w := stream.NewWriter(out, stream.DefaultConfig(), stream.CBOR)
	_ = w.WriteMapHeader(1)
	_ = w.WriteString("k")
	_ = w.WriteInt64(1)
	_ = w.WriteString("trailer")

	r := stream.NewReader(stream.NewInputBytes(out.Bytes()), stream.DefaultConfig(), stream.CBOR)

	count := 0
	for {
		k, err := r.Peek()
		if err != nil {
			t.Fatalf("Peek: %v", err)
		}
		if k == stream.EndOfInput {
			break
		}
		if err := r.SkipDataItem(); err != nil {
			t.Fatalf("SkipDataItem %d: %v", count, err)
		}
		count++
	}
	if count != 2 {
		t.Fatalf("expected 2 top-level sequence items, got %d", count)
	}
}
