package validatorspec

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nimblewire/itemcodec/stream"
)

// These specs read much like the invariants they cover: a BDD style
// fits the level-stack interposer naturally, since each rule ("a
// definite-length map must alternate key, value", "Break only closes
// an open unbounded container") is itself already a short behavioral
// statement.
var _ = Describe("Validator", func() {
	var cfg stream.Config

	BeforeEach(func() {
		cfg = stream.DefaultConfig()
	})

	writeCBOR := func(build func(w *stream.Writer) error) ([]byte, error) {
		out := stream.NewGrowOutput(32)
		w := stream.NewWriter(out, cfg, stream.CBOR)
		err := build(w)
		return append([]byte(nil), out.Bytes()...), err
	}

	Describe("Break placement", func() {
		It("rejects a Break with no open unbounded container", func() {
			_, err := writeCBOR(func(w *stream.Writer) error {
				return w.WriteBreak()
			})
			Expect(err).To(HaveOccurred())
		})

		It("accepts a Break that closes an open indefinite array", func() {
			_, err := writeCBOR(func(w *stream.Writer) error {
				if err := w.WriteArrayStart(); err != nil {
					return err
				}
				if err := w.WriteInt64(1); err != nil {
					return err
				}
				return w.WriteBreak()
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects a Break closing a definite-length array", func() {
			out := stream.NewGrowOutput(16)
			w := stream.NewWriter(out, cfg, stream.CBOR)
			Expect(w.WriteArrayHeader(1)).To(Succeed())
			Expect(w.WriteInt64(1)).To(Succeed())
			Expect(w.WriteBreak()).To(HaveOccurred())
		})
	})

	Describe("definite-length arity", func() {
		It("rejects writing more elements than the header promised", func() {
			out := stream.NewGrowOutput(16)
			w := stream.NewWriter(out, cfg, stream.CBOR)
			Expect(w.WriteArrayHeader(1)).To(Succeed())
			Expect(w.WriteInt64(1)).To(Succeed())
			Expect(w.WriteInt64(2)).To(HaveOccurred())
		})

		It("rejects a reader observing an array closed early", func() {
			out := stream.NewGrowOutput(16)
			w := stream.NewWriter(out, cfg, stream.CBOR)
			Expect(w.WriteMapHeader(2)).To(Succeed())
			Expect(w.WriteString("k")).To(Succeed())
			Expect(w.WriteInt64(1)).To(Succeed())

			r := stream.NewReader(stream.NewInputBytes(out.Bytes()), cfg, stream.CBOR)
			Expect(r.SkipDataItem()).To(HaveOccurred())
		})
	})

	Describe("map key/value alternation", func() {
		It("rejects a non-string key under JSON's grammar", func() {
			out := stream.NewGrowOutput(16)
			w := stream.NewWriter(out, cfg, stream.JSON)
			Expect(w.WriteMapStart()).To(Succeed())
			Expect(w.WriteInt64(1)).To(HaveOccurred())
		})

		It("accepts a non-string key under CBOR's grammar", func() {
			out := stream.NewGrowOutput(16)
			w := stream.NewWriter(out, cfg, stream.CBOR)
			Expect(w.WriteMapHeader(1)).To(Succeed())
			Expect(w.WriteInt64(1)).To(Succeed())
			Expect(w.WriteString("v")).To(Succeed())
		})
	})

	Describe("tag content masks", func() {
		It("accepts an integer as TagEpochDateTime's content", func() {
			_, err := writeCBOR(func(w *stream.Writer) error {
				if err := w.WriteTag(stream.TagEpochDateTime); err != nil {
					return err
				}
				return w.WriteInt64(1700000000)
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects a string as TagEpochDateTime's content", func() {
			_, err := writeCBOR(func(w *stream.Writer) error {
				if err := w.WriteTag(stream.TagEpochDateTime); err != nil {
					return err
				}
				return w.WriteString("not a timestamp")
			})
			Expect(err).To(HaveOccurred())
		})

		It("accepts byte strings as TagPosBignum's content", func() {
			_, err := writeCBOR(func(w *stream.Writer) error {
				if err := w.WriteTag(stream.TagPosBignum); err != nil {
					return err
				}
				return w.WriteBytes([]byte{1, 2, 3})
			})
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("nesting limits", func() {
		It("rejects nesting beyond MaxNestingLevels", func() {
			cfg.MaxNestingLevels = 2
			out := stream.NewGrowOutput(16)
			w := stream.NewWriter(out, cfg, stream.CBOR)
			Expect(w.WriteArrayHeader(1)).To(Succeed())
			Expect(w.WriteArrayHeader(1)).To(Succeed())
			Expect(w.WriteArrayHeader(1)).To(HaveOccurred())
		})

		It("allows nesting up to the configured limit", func() {
			cfg.MaxNestingLevels = 3
			out := stream.NewGrowOutput(16)
			w := stream.NewWriter(out, cfg, stream.CBOR)
			Expect(w.WriteArrayHeader(1)).To(Succeed())
			Expect(w.WriteArrayHeader(1)).To(Succeed())
			Expect(w.WriteArrayHeader(1)).To(Succeed())
			Expect(w.WriteInt64(1)).To(Succeed())
		})
	})

	Describe("container length limits", func() {
		It("rejects an array header above MaxArrayLength", func() {
			cfg.MaxArrayLength = 2
			out := stream.NewGrowOutput(16)
			w := stream.NewWriter(out, cfg, stream.CBOR)
			Expect(w.WriteArrayHeader(3)).To(HaveOccurred())
		})

		It("rejects a map header above MaxMapLength", func() {
			cfg.MaxMapLength = 1
			out := stream.NewGrowOutput(16)
			w := stream.NewWriter(out, cfg, stream.CBOR)
			Expect(w.WriteMapHeader(2)).To(HaveOccurred())
		})
	})
})
