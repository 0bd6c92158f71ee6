package tests

import (
	"encoding/hex"
	"testing"

	"github.com/nimblewire/itemcodec/stream"
)

// FuzzCommunityVectors seeds the fuzzer with well-known CBOR byte
// strings (the RFC 8949 appendix A examples) and checks that our
// Reader either accepts a well-formed document or returns an Error —
// never panics — on arbitrary mutations of them.
func FuzzCommunityVectors(f *testing.F) {
	seeds := []string{
		"6161",         // "a"
		"00",           // 0
		"20",           // -1
		"43010203",     // h'010203'
		"83010203",     // [1, 2, 3]
		"a2616101616202", // {"a": 1, "b": 2}
		"9f0102ff",     // [_ 1, 2]
		"c11a514b67b0", // 1(1363896240)
		"fb3ff3333333333333", // float64
		"f93e00",       // float16 1.5
	}
	for _, s := range seeds {
		if b, err := hex.DecodeString(s); err == nil {
			f.Add(b)
		}
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		defer func() {
			if r := recover(); r != nil {
				t.Fatalf("panic on %x: %v", data, r)
			}
		}()

		r := stream.NewReader(stream.NewInputBytes(data), stream.DefaultConfig(), stream.CBOR)
		if err := r.SkipDataItem(); err != nil {
			return
		}
		_ = r.AtTopLevel()
	})
}
