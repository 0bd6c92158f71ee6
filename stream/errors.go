package stream

import "strconv"

const resumableDefault = false

// Error is the interface satisfied by every error this package
// originates. Resumable reports whether the underlying input/output
// position is still trustworthy enough that a caller could, in
// principle, skip past the offending item and keep going.
type Error interface {
	error
	Resumable() bool
}

// contextError lets an Error be enhanced with positional context
// without mutating the original value.
type contextError interface {
	Error
	withContext(inputPos, outputPos int64) error
}

// Cause unwraps a wrapped error back to the original cause.
func Cause(e error) error {
	if w, ok := e.(errWrapped); ok && w.cause != nil {
		return w.cause
	}
	return e
}

// Resumable reports whether e is an Error and, if so, its Resumable
// value; non-Error values default to false.
func Resumable(e error) bool {
	if ce, ok := e.(Error); ok {
		return ce.Resumable()
	}
	return resumableDefault
}

// WrapError attaches input/output byte positions to err so a caller
// can report exactly where a stream went wrong. The original error is
// left untouched; WrapError always returns a new value.
func WrapError(err error, inputPos, outputPos int64) error {
	switch e := err.(type) {
	case contextError:
		return e.withContext(inputPos, outputPos)
	default:
		return errWrapped{cause: err, inputPos: inputPos, outputPos: outputPos}
	}
}

type errWrapped struct {
	cause              error
	inputPos, outputPos int64
}

func (e errWrapped) Error() string {
	return e.cause.Error() + " at " + posString(e.inputPos, e.outputPos)
}

func (e errWrapped) Resumable() bool {
	if ce, ok := e.cause.(Error); ok {
		return ce.Resumable()
	}
	return resumableDefault
}

func (e errWrapped) Unwrap() error { return e.cause }

func posString(inputPos, outputPos int64) string {
	s := ""
	if inputPos >= 0 {
		s += "input byte " + strconv.FormatInt(inputPos, 10)
	}
	if outputPos >= 0 {
		if s != "" {
			s += ", "
		}
		s += "output byte " + strconv.FormatInt(outputPos, 10)
	}
	if s == "" {
		return "unknown position"
	}
	return s
}

// ShortInputError is returned when a parser needs more bytes than the
// input currently has buffered and no more are forthcoming (streaming
// sources return this to mean "try again once more data has arrived";
// byte-slice sources return it to mean "the input is truncated").
type ShortInputError struct {
	InputPos int64
	Need     int
}

func (e ShortInputError) Error() string {
	return "stream: need " + strconv.Itoa(e.Need) + " more byte(s) than available at " + posString(e.InputPos, -1)
}
func (e ShortInputError) Resumable() bool { return true }
func (e ShortInputError) withContext(inputPos, outputPos int64) error {
	e.InputPos = inputPos
	return e
}

// InvalidInputDataError is returned when the bytes at the cursor
// cannot be a well-formed item in the active wire format: a bad CBOR
// initial byte, an invalid UTF-8 sequence, a JSON token that starts
// with an impossible byte, and so on.
type InvalidInputDataError struct {
	InputPos int64
	Reason   string
}

func (e InvalidInputDataError) Error() string {
	return "stream: invalid input data (" + e.Reason + ") at " + posString(e.InputPos, -1)
}
func (e InvalidInputDataError) Resumable() bool { return false }
func (e InvalidInputDataError) withContext(inputPos, outputPos int64) error {
	e.InputPos = inputPos
	return e
}

// ValidationFailureError is returned by the Validator when a
// syntactically well-formed item appears somewhere structurally
// illegal: an unbalanced Break, a map with an odd number of entries, a
// tag's content failing its content mask, and so on.
type ValidationFailureError struct {
	InputPos int64
	Reason   string
}

func (e ValidationFailureError) Error() string {
	return "stream: validation failure (" + e.Reason + ") at " + posString(e.InputPos, -1)
}
func (e ValidationFailureError) Resumable() bool { return true }
func (e ValidationFailureError) withContext(inputPos, outputPos int64) error {
	e.InputPos = inputPos
	return e
}

// UnsupportedError is returned when an input item is well-formed but
// describes something this implementation declines to handle: a tag
// number too large to matter, a simple value reserved by the
// specification, and so on.
type UnsupportedError struct {
	InputPos int64
	Reason   string
}

func (e UnsupportedError) Error() string {
	return "stream: unsupported (" + e.Reason + ") at " + posString(e.InputPos, -1)
}
func (e UnsupportedError) Resumable() bool { return true }
func (e UnsupportedError) withContext(inputPos, outputPos int64) error {
	e.InputPos = inputPos
	return e
}

// OverflowError is returned when a value is well-formed but exceeds a
// configured limit: container length, nesting depth, string length,
// number-of-digits, or exponent magnitude.
type OverflowError struct {
	InputPos int64
	Limit    string
}

func (e OverflowError) Error() string {
	return "stream: " + e.Limit + " limit exceeded at " + posString(e.InputPos, -1)
}
func (e OverflowError) Resumable() bool { return true }
func (e OverflowError) withContext(inputPos, outputPos int64) error {
	e.InputPos = inputPos
	return e
}

// GeneralError wraps anything else (e.g. an io.Reader's own error, or
// an io.Writer's own error) that crosses the package boundary while
// pulling or pushing data items.
type GeneralError struct {
	InputPos, OutputPos int64
	Cause               error
}

func (e GeneralError) Error() string {
	return "stream: " + e.Cause.Error() + " at " + posString(e.InputPos, e.OutputPos)
}
func (e GeneralError) Resumable() bool { return false }
func (e GeneralError) Unwrap() error   { return e.Cause }
func (e GeneralError) withContext(inputPos, outputPos int64) error {
	e.InputPos, e.OutputPos = inputPos, outputPos
	return e
}
