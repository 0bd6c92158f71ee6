package tests

import (
	"testing"

	"github.com/nimblewire/itemcodec/stream"
)

// FuzzSequenceReading fuzzes a Reader's repeated top-level SkipDataItem
// loop — the sequence-reading idiom established in sequence_test.go —
// to ensure it never panics on arbitrary concatenated bytes, well
// formed or not.
func FuzzSequenceReading(f *testing.F) {
	out := stream.NewGrowOutput(16)
	w := stream.NewWriter(out, stream.DefaultConfig(), stream.CBOR)
	_ = w.WriteString("hi")
	_ = w.WriteInt64(42)
	f.Add(append([]byte(nil), out.Bytes()...))

	f.Fuzz(func(t *testing.T, data []byte) {
		defer func() {
			if r := recover(); r != nil {
				t.Fatalf("panic in sequence fuzz: %v", r)
			}
		}()

		r := stream.NewReader(stream.NewInputBytes(data), stream.DefaultConfig(), stream.CBOR)
		for i := 0; i < 64; i++ {
			k, err := r.Peek()
			if err != nil {
				return
			}
			if k == stream.EndOfInput {
				return
			}
			if err := r.SkipDataItem(); err != nil {
				return
			}
		}
	})
}
