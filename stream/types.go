// Package stream reads and writes multi-document JSON streams.
//
// Two framings are supported:
//   - JSON text sequences (RFC 7464, application/json-seq): every record is
//     an ASCII RS (0x1E), one JSON text, and a line feed.
//   - NDJSON: one JSON text per LF-terminated line.
//
// Records are read and validated one at a time, so memory is bounded by the
// maximum record size. A malformed record is reported and skipped; the next
// call resumes at the following record boundary.
package stream

import (
	"fmt"

	"github.com/Neumenon/tjson/node"
)

// Framing bytes.
const (
	RS = 0x1E // Record separator opening every json-seq record
	LF = '\n'
)

// Mode selects the record framing.
type Mode uint8

const (
	ModeSeq    Mode = 0 // RFC 7464 JSON text sequence
	ModeNDJSON Mode = 1 // Newline-delimited JSON
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeSeq:
		return "seq"
	case ModeNDJSON:
		return "ndjson"
	default:
		return fmt.Sprintf("unknown(%d)", m)
	}
}

// ParseMode parses a mode name as accepted on command lines and in config
// files.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "seq", "json-seq", "application/json-seq":
		return ModeSeq, true
	case "ndjson", "jsonl", "jsonlines", "application/x-ndjson":
		return ModeNDJSON, true
	default:
		return 0, false
	}
}

// Record is one JSON text of a stream.
type Record struct {
	Seq    uint64 // 1-based position in the stream, malformed records included
	Offset int64  // Stream offset of the first payload byte
	Data   []byte // Payload without framing bytes
	CRC    uint32 // CRC-32 (IEEE) of Data

	// Value holds the decoded tree when the reader decodes records.
	Value *node.Value
}

// MaxRecordSize is the default maximum payload size (64 MiB).
const MaxRecordSize = 64 * 1024 * 1024

// ParseError reports a malformed record. The reader has already skipped to
// the next record boundary when it is returned.
type ParseError struct {
	Reason string
	Offset int64  // Stream offset of the record, or -1
	Seq    uint64 // Record position, 0 when unknown
	Err    error  // Underlying validation error, may be nil
}

func (e *ParseError) Error() string {
	msg := "stream: " + e.Reason
	if e.Seq > 0 {
		msg += fmt.Sprintf(" in record %d", e.Seq)
	}
	if e.Offset >= 0 {
		msg += fmt.Sprintf(" at offset %d", e.Offset)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// CRCMismatchError is returned when a checksum does not match its data.
type CRCMismatchError struct {
	Expected uint32
	Got      uint32
}

func (e *CRCMismatchError) Error() string {
	return fmt.Sprintf("stream: CRC mismatch: expected %08x, got %08x", e.Expected, e.Got)
}

// SequenceError is returned when a record arrives out of order.
type SequenceError struct {
	Stream string
	Last   uint64
	Got    uint64
}

func (e *SequenceError) Error() string {
	return fmt.Sprintf("stream: %s: sequence not monotonic: got %d, last was %d", e.Stream, e.Got, e.Last)
}
