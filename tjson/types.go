package tjson

import (
	"errors"
	"fmt"
)

// Result is the outcome of every engine operation.
type Result uint8

const (
	Okay             Result = iota // Proceed
	InvalidData                    // Grammar or call-sequence violation
	PrematurelyEnded               // Source or sink exhausted or failed
	ReadUnicode                    // A decoded codepoint is waiting for Reader.ReadUnicode
)

// String returns the result name.
func (r Result) String() string {
	switch r {
	case Okay:
		return "okay"
	case InvalidData:
		return "invalid data"
	case PrematurelyEnded:
		return "prematurely ended"
	case ReadUnicode:
		return "read unicode"
	default:
		return fmt.Sprintf("result(%d)", uint8(r))
	}
}

// Sentinel errors matching the non-Okay results.
var (
	ErrInvalidData      = errors.New("tjson: invalid data")
	ErrPrematurelyEnded = errors.New("tjson: prematurely ended")
	ErrReadUnicode      = errors.New("tjson: unread unicode codepoint")
)

// Err returns nil for Okay and the matching sentinel error otherwise.
func (r Result) Err() error {
	switch r {
	case Okay:
		return nil
	case InvalidData:
		return ErrInvalidData
	case PrematurelyEnded:
		return ErrPrematurelyEnded
	case ReadUnicode:
		return ErrReadUnicode
	default:
		return ErrInvalidData
	}
}

// Type classifies the next token from one byte of lookahead.
type Type uint8

const (
	TypeInvalid Type = iota
	TypeObject
	TypeArray
	TypeNumber
	TypeString
	TypeTrue
	TypeFalse
	TypeNull
)

// String returns the type name.
func (t Type) String() string {
	switch t {
	case TypeObject:
		return "object"
	case TypeArray:
		return "array"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeTrue:
		return "true"
	case TypeFalse:
		return "false"
	case TypeNull:
		return "null"
	default:
		return "invalid"
	}
}

// classify maps the first byte of a token to its type.
func classify(c byte) Type {
	switch c {
	case '{':
		return TypeObject
	case '[':
		return TypeArray
	case '"':
		return TypeString
	case 't':
		return TypeTrue
	case 'f':
		return TypeFalse
	case 'n':
		return TypeNull
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return TypeNumber
	default:
		return TypeInvalid
	}
}

// isWhitespace reports whether c is insignificant JSON whitespace.
func isWhitespace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// isNumberByte reports whether c may appear in a raw number span.
func isNumberByte(c byte) bool {
	return isDigit(c) || c == '-' || c == '+' || c == '.' || c == 'e' || c == 'E'
}

func hexValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c - 'a' + 10)
	case c >= 'A' && c <= 'F':
		return int(c - 'A' + 10)
	default:
		return -1
	}
}

// Options configures a Reader or Writer.
type Options struct {
	// MaxDepth limits container nesting. Zero means unlimited.
	MaxDepth int
}

// Option mutates Options.
type Option func(*Options)

// WithMaxDepth rejects containers nested deeper than n with InvalidData.
func WithMaxDepth(n int) Option {
	return func(o *Options) {
		o.MaxDepth = n
	}
}

func buildOptions(opts []Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	if o.MaxDepth < 0 {
		o.MaxDepth = 0
	}
	return o
}
