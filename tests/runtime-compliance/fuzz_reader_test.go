package tests

import (
	"testing"

	"github.com/nimblewire/itemcodec/stream"
)

// FuzzReaderBasic fuzzes Reader.SkipDataItem across both formats to
// ensure the parser/validator pair never panics on arbitrary inputs,
// under a few different Config limit settings.
func FuzzReaderBasic(f *testing.F) {
	f.Add([]byte{0xa1, 0x61, 0x61, 0x01})       // map {"a":1}
	f.Add([]byte{0x83, 0x01, 0x02, 0x03})       // array [1,2,3]
	f.Add([]byte{0x9f, 0x01, 0x02, 0xff})       // indef array [1,2]
	f.Add([]byte{0xff, 0x00, 0x01, 0x02, 0x03}) // invalid start
	f.Add([]byte(`{"a":1}`))
	f.Add([]byte(`[1,2,3]`))

	f.Fuzz(func(t *testing.T, data []byte) {
		defer func() {
			if r := recover(); r != nil {
				t.Fatalf("panic on %x: %v", data, r)
			}
		}()

		cfg := stream.DefaultConfig()
		cfg.MaxNestingLevels = 16

		for _, format := range []stream.Format{stream.CBOR, stream.JSON} {
			r := stream.NewReader(stream.NewInputBytes(data), cfg, format)
			_ = r.SkipDataItem()
		}
	})
}
