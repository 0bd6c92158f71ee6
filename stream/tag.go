package stream

// Well-known CBOR semantic tags (RFC 8949 §3.4, plus the long-standing
// registry entries the spec's validator needs content masks for).
const (
	TagDateTimeString   uint64 = 0     // RFC3339 date/time string
	TagEpochDateTime    uint64 = 1     // Unix timestamp, int or float
	TagPosBignum        uint64 = 2     // positive bignum, byte string
	TagNegBignum        uint64 = 3     // negative bignum, byte string
	TagDecimalFraction  uint64 = 4     // [exponent, mantissa]
	TagBigfloat         uint64 = 5     // [exponent, mantissa], base 2
	TagBase64URLHint    uint64 = 21    // expected base64url encoding hint
	TagBase64Hint       uint64 = 22    // expected base64 encoding hint
	TagBase16Hint       uint64 = 23    // expected base16 encoding hint
	TagCBOR             uint64 = 24    // embedded CBOR data item, byte string
	TagURI              uint64 = 32    // URI text string
	TagBase64URLString  uint64 = 33    // base64url-encoded text string
	TagBase64String     uint64 = 34    // base64-encoded text string
	TagRegexp           uint64 = 35    // PCRE/ECMA262 regular expression text
	TagMIME             uint64 = 36    // MIME message text
	TagSelfDescribeCBOR uint64 = 55799 // self-describing magic header, no content restriction
)

// tagContentMask returns the mask of kinds legal as the immediate
// content of a well-known tag, and ok=true if the tag is well-known
// enough to restrict. Unknown tags return ok=false and the validator
// falls back to AllButBreak (any single value is legal tag content).
func tagContentMask(t uint64) (m Mask, ok bool) {
	switch t {
	case TagDateTimeString, TagURI, TagBase64URLString, TagBase64String, TagRegexp, TagMIME:
		return StringLike.With(Text), true
	case TagEpochDateTime:
		return numberKinds, true
	case TagPosBignum, TagNegBignum, TagCBOR:
		return bit(Bytes).With(BytesStart), true
	case TagDecimalFraction, TagBigfloat:
		// a 2-element array: [exponent, mantissa]. Both a definite
		// ArrayHeader(2) and an indefinite ArrayStart...Break are
		// legal CBOR; nothing in RFC 8949 restricts this tag to the
		// canonical definite-length form, so the validator must
		// accept either opener.
		return bit(ArrayHeader).With(ArrayStart), true
	case TagBase64URLHint, TagBase64Hint, TagBase16Hint:
		return bit(Bytes).With(BytesStart), true
	case TagSelfDescribeCBOR:
		return AllButBreak, true
	default:
		return AllButBreak, false
	}
}
