package stream

// Config gathers every tunable named in the external-interfaces
// surface: buffer sizing shared by both formats, CBOR-only encoding
// and decoding knobs, and JSON-only encoding and decoding knobs. A
// zero Config is not ready to use; start from DefaultConfig and apply
// Option values.
type Config struct {
	// Shared (encoding and decoding).
	BufferSize        int
	AllowBufferCaching bool
	MaxBufferSize      int

	// CBOR encoding.
	CompressFloatingPointValues bool
	MaxArrayLength              int
	MaxMapLength                int
	MaxNestingLevels            int

	// JSON encoding.
	Indent int // -1 = no indentation/newlines; >=0 = spaces per level

	// Shared decoding.
	ReadIntegersAlsoAsFloatingPoint bool
	ReadDoubleAlsoAsFloat           bool

	// CBOR decoding.
	MaxTextStringLength int
	MaxByteStringLength int
	DecodeMaxArrayLength int
	DecodeMaxMapLength   int
	DecodeMaxNestingLevels int

	// JSON decoding.
	MaxNumberAbsExponent          int
	MaxStringLength               int
	MaxNumberMantissaDigits       int
	InitialCharBufferSize         int
	ReadDecimalNumbersOnlyAsNumberStrings bool
}

// DefaultConfig returns the documented defaults for every option.
func DefaultConfig() Config {
	return Config{
		BufferSize:         4096,
		AllowBufferCaching:  true,
		MaxBufferSize:       16 * 1024 * 1024,

		CompressFloatingPointValues: true,
		MaxArrayLength:              1 << 20,
		MaxMapLength:                1 << 20,
		MaxNestingLevels:            1000,

		Indent: -1,

		ReadIntegersAlsoAsFloatingPoint: true,
		ReadDoubleAlsoAsFloat:           true,

		MaxTextStringLength:    1 << 24,
		MaxByteStringLength:    1 << 24,
		DecodeMaxArrayLength:   1 << 20,
		DecodeMaxMapLength:     1 << 20,
		DecodeMaxNestingLevels: 1000,

		MaxNumberAbsExponent:                  64,
		MaxStringLength:                       1 << 24,
		MaxNumberMantissaDigits:               34,
		InitialCharBufferSize:                 64,
		ReadDecimalNumbersOnlyAsNumberStrings: false,
	}
}

// Option mutates a Config in place; used with Apply to keep the
// NewReader/NewWriter constructors' signatures small while still
// exposing every knob.
type Option func(*Config)

func (c *Config) Apply(opts ...Option) {
	for _, o := range opts {
		o(c)
	}
}

func WithBufferSize(n int) Option   { return func(c *Config) { c.BufferSize = n } }
func WithMaxBufferSize(n int) Option { return func(c *Config) { c.MaxBufferSize = n } }
func WithBufferCaching(allow bool) Option {
	return func(c *Config) { c.AllowBufferCaching = allow }
}

func WithCompressFloats(compress bool) Option {
	return func(c *Config) { c.CompressFloatingPointValues = compress }
}
func WithMaxArrayLength(n int) Option { return func(c *Config) { c.MaxArrayLength = n } }
func WithMaxMapLength(n int) Option   { return func(c *Config) { c.MaxMapLength = n } }
func WithMaxNestingLevels(n int) Option {
	return func(c *Config) { c.MaxNestingLevels = n }
}

func WithIndent(spaces int) Option { return func(c *Config) { c.Indent = spaces } }

func WithReadIntegersAlsoAsFloatingPoint(v bool) Option {
	return func(c *Config) { c.ReadIntegersAlsoAsFloatingPoint = v }
}
func WithReadDoubleAlsoAsFloat(v bool) Option {
	return func(c *Config) { c.ReadDoubleAlsoAsFloat = v }
}

func WithMaxTextStringLength(n int) Option { return func(c *Config) { c.MaxTextStringLength = n } }
func WithMaxByteStringLength(n int) Option { return func(c *Config) { c.MaxByteStringLength = n } }

func WithMaxNumberAbsExponent(n int) Option {
	return func(c *Config) { c.MaxNumberAbsExponent = n }
}
func WithMaxStringLength(n int) Option { return func(c *Config) { c.MaxStringLength = n } }
func WithMaxNumberMantissaDigits(n int) Option {
	return func(c *Config) { c.MaxNumberMantissaDigits = n }
}
func WithReadDecimalNumbersOnlyAsNumberStrings(v bool) Option {
	return func(c *Config) { c.ReadDecimalNumbersOnlyAsNumberStrings = v }
}
