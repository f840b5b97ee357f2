// Package pipe runs whole documents through the tjson engines without
// building a tree: validation with statistics, compacting transcoding, and a
// lazy token sequence.
//
// Memory use is bounded by the chunk size, the number length limit and the
// nesting depth, never by the document size. Strings and keys longer than the
// chunk size are delivered in pieces. Number spans are assembled whole because
// ClassifyNumber needs the complete span, so spans longer than MaxNumberLen
// are rejected.
package pipe

import (
	"fmt"
	"io"

	"github.com/Neumenon/tjson/node"
	"github.com/Neumenon/tjson/tjson"
)

// ============================================================
// Options
// ============================================================

// Options configures Validate, Transcode and Events.
type Options struct {
	// MaxDepth limits container nesting. Zero means node.DefaultMaxDepth.
	MaxDepth int

	// ChunkSize is the largest piece of a string or key handed out at once.
	// Zero means DefaultChunkSize.
	ChunkSize int

	// MaxNumberLen is the longest number span accepted, in bytes. Zero means
	// DefaultMaxNumberLen.
	MaxNumberLen int
}

// DefaultChunkSize is the string chunk size when none is configured.
const DefaultChunkSize = 256

// DefaultMaxNumberLen is the number span limit when none is configured.
const DefaultMaxNumberLen = 1024

// DefaultOptions returns the default options.
func DefaultOptions() Options {
	return Options{
		MaxDepth:     node.DefaultMaxDepth,
		ChunkSize:    DefaultChunkSize,
		MaxNumberLen: DefaultMaxNumberLen,
	}
}

func (o Options) normalized() Options {
	if o.MaxDepth <= 0 {
		o.MaxDepth = node.DefaultMaxDepth
	}
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.MaxNumberLen <= 0 {
		o.MaxNumberLen = DefaultMaxNumberLen
	}
	return o
}

// ============================================================
// Errors
// ============================================================

// Error codes
const (
	ErrCodeSyntax    = "SYNTAX"    // Grammar violation
	ErrCodeTruncated = "TRUNCATED" // Input ended inside the document
	ErrCodeDepth     = "DEPTH"     // Nesting beyond MaxDepth
	ErrCodeTrailing  = "TRAILING"  // Non-whitespace after the document
	ErrCodeNumber    = "NUMBER"    // Number span outside the number grammar or too long
	ErrCodeSource    = "SOURCE"    // The byte source failed
	ErrCodeSink      = "SINK"      // The byte sink failed
)

// Error reports why a document was rejected.
type Error struct {
	Code   string // One of the ErrCode constants
	Offset int64  // Bytes consumed from the source when the error was found
	Err    error  // tjson sentinel or source error
}

func (e *Error) Error() string {
	return fmt.Sprintf("pipe: %s at byte %d: %v", e.Code, e.Offset, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// ============================================================
// Source accounting
// ============================================================

// counter tracks the offset of a source and keeps the first non-EOF error,
// which the engine would otherwise fold into PrematurelyEnded.
type counter[S io.ByteReader] struct {
	src S
	off int64
	err error
}

func (c *counter[S]) ReadByte() (byte, error) {
	b, err := c.src.ReadByte()
	if err != nil {
		if err != io.EOF && c.err == nil {
			c.err = err
		}
		return 0, err
	}
	c.off++
	return b, nil
}

func (c *counter[S]) fail(code string, res tjson.Result) *Error {
	if res == tjson.PrematurelyEnded && c.err != nil {
		return &Error{Code: ErrCodeSource, Offset: c.off, Err: c.err}
	}
	if code == "" {
		code = ErrCodeSyntax
		if res == tjson.PrematurelyEnded {
			code = ErrCodeTruncated
		}
	}
	return &Error{Code: code, Offset: c.off, Err: res.Err()}
}
