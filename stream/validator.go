package stream

// Validator is a transparent interposer between a parser (or a
// caller's writeX calls) and the rest of the pipeline: it tracks a
// stack of open containers and rejects anything structurally illegal
// — an unbalanced Break, a map with an odd number of entries, a tag
// whose content doesn't match its well-known shape, more elements than
// a definite-length header promised — without knowing anything about
// bytes.
//
// One Validator instance is threaded through exactly one Reader or one
// Writer; it is not safe to share between concurrent pipelines.
type levelFlags uint8

const (
	flagUnbounded levelFlags = 1 << iota
	flagMap
	flagTopLevel
)

type level struct {
	remaining int64 // -1 == unbounded (flagUnbounded set)
	flags     levelFlags
	keyMask   Mask // map-mode: mask for the next key slot
	valMask   Mask // array/tag mode, or map-mode: mask for the next value slot
	isKey     bool // map-mode only: true if the next item must be a key
}

// Validator enforces nesting, BREAK placement, definite-length arity,
// container-size limits and tag content shape.
type Validator struct {
	levels      []level
	maxNesting  int
	maxArrayLen int
	maxMapLen   int
	jsonMode    bool
}

// NewValidator constructs a Validator against the given Config. When
// jsonMode is true, map levels enforce string-only keys, matching
// JSON's grammar instead of CBOR's (which allows any value as a map
// key).
func NewValidator(cfg Config, jsonMode bool) *Validator {
	maxNest := cfg.MaxNestingLevels
	if jsonMode {
		// JSON decode config names its own nesting limit indirectly
		// through the shared MaxNestingLevels; no separate knob is
		// named in the spec for JSON, so the CBOR one is reused.
	}
	maxArr, maxMap := cfg.MaxArrayLength, cfg.MaxMapLength
	if cfg.DecodeMaxArrayLength > 0 {
		maxArr = cfg.DecodeMaxArrayLength
	}
	if cfg.DecodeMaxMapLength > 0 {
		maxMap = cfg.DecodeMaxMapLength
	}
	return &Validator{maxNesting: maxNest, maxArrayLen: maxArr, maxMapLen: maxMap, jsonMode: jsonMode}
}

// Depth returns the number of currently open containers/tags.
func (v *Validator) Depth() int { return len(v.levels) }

// jsonValueMask is the mask of kinds legal as a JSON value slot: any
// scalar or container opener, but none of CBOR's binary-only kinds.
var jsonValueMask = bit(Null).With(Boolean).With(Int).With(Long).With(OverLong).With(Float).
	With(Double).With(NumberString).With(String).With(Chars).With(Text).With(ArrayStart).With(MapStart)

var jsonKeyMask = bit(String).With(Chars)

func (v *Validator) topAllowed() Mask {
	if len(v.levels) == 0 {
		if v.jsonMode {
			return jsonValueMask
		}
		return AllButBreak
	}
	top := &v.levels[len(v.levels)-1]
	if top.flags&flagMap != 0 && top.isKey {
		return top.keyMask
	}
	return top.valMask
}

// Validate checks ev against the current structural position, updates
// the level stack, and returns an error if ev cannot legally occur
// here. Call this once per item, in stream order, for both decoding
// (after the parser fills ev) and encoding (before the renderer
// consumes ev).
func (v *Validator) Validate(ev *Event) error {
	if ev.Kind == Break {
		if len(v.levels) == 0 {
			return ValidationFailureError{Reason: "BREAK outside any indefinite-length container"}
		}
		top := &v.levels[len(v.levels)-1]
		if top.flags&flagUnbounded == 0 {
			return ValidationFailureError{Reason: "BREAK inside a definite-length container"}
		}
		if top.flags&flagMap != 0 && !top.isKey {
			return ValidationFailureError{Reason: "BREAK after a map key with no matching value"}
		}
		v.levels = v.levels[:len(v.levels)-1]
		v.closeIfExhausted()
		return nil
	}

	allowed := v.topAllowed()
	if !allowed.Has(ev.Kind) {
		return ValidationFailureError{Reason: "kind " + ev.Kind.String() + " not legal here"}
	}

	if len(v.levels) > 0 {
		top := &v.levels[len(v.levels)-1]
		if top.flags&flagUnbounded == 0 {
			if top.remaining <= 0 {
				return ValidationFailureError{Reason: "more items than the definite-length header declared"}
			}
			top.remaining--
		}
		if top.flags&flagMap != 0 {
			top.isKey = !top.isKey
		}
	}

	switch ev.Kind {
	case ArrayHeader:
		if v.maxArrayLen > 0 && ev.UInt64 > uint64(v.maxArrayLen) {
			return OverflowError{Limit: "array length"}
		}
		if err := v.push(level{remaining: int64(ev.UInt64), valMask: AllButBreak}); err != nil {
			return err
		}
	case ArrayStart:
		if err := v.push(level{remaining: -1, flags: flagUnbounded, valMask: AllButBreak}); err != nil {
			return err
		}
	case MapHeader:
		if v.maxMapLen > 0 && ev.UInt64 > uint64(v.maxMapLen) {
			return OverflowError{Limit: "map length"}
		}
		km, vm := AllButBreak, AllButBreak
		if v.jsonMode {
			km, vm = jsonKeyMask, jsonValueMask
		}
		if err := v.push(level{remaining: int64(ev.UInt64) * 2, flags: flagMap, keyMask: km, valMask: vm, isKey: true}); err != nil {
			return err
		}
	case MapStart:
		km, vm := AllButBreak, AllButBreak
		if v.jsonMode {
			km, vm = jsonKeyMask, jsonValueMask
		}
		if err := v.push(level{remaining: -1, flags: flagUnbounded | flagMap, keyMask: km, valMask: vm, isKey: true}); err != nil {
			return err
		}
	case Tag:
		content, _ := tagContentMask(ev.UInt64)
		if err := v.push(level{remaining: 1, valMask: content}); err != nil {
			return err
		}
	case TextStart:
		if err := v.push(level{remaining: -1, flags: flagUnbounded, valMask: bit(String).With(Chars).With(Text).With(TextStart)}); err != nil {
			return err
		}
	case BytesStart:
		if err := v.push(level{remaining: -1, flags: flagUnbounded, valMask: bit(Bytes).With(BytesStart)}); err != nil {
			return err
		}
	}
	v.closeIfExhausted()
	return nil
}

func (v *Validator) push(l level) error {
	if len(v.levels) >= v.maxNesting {
		return OverflowError{Limit: "nesting depth"}
	}
	v.levels = append(v.levels, l)
	return nil
}

// closeIfExhausted pops any trailing definite-length levels whose
// declared element count has just reached zero — this is how a
// MapHeader(0) or the last element of an ArrayHeader(n) closes its
// container without a BREAK, and how that closure can cascade (an
// empty array as the last element of an already-exhausted map, etc).
func (v *Validator) closeIfExhausted() {
	for len(v.levels) > 0 {
		top := &v.levels[len(v.levels)-1]
		if top.flags&flagUnbounded != 0 || top.remaining > 0 {
			return
		}
		v.levels = v.levels[:len(v.levels)-1]
	}
}

// AtTopLevel reports whether the validator has no open containers,
// i.e. the next item (if any) stands alone at the document root.
func (v *Validator) AtTopLevel() bool { return len(v.levels) == 0 }
