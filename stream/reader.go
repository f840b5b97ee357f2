package stream

import (
	"bufio"
	"fmt"
	"io"
	"iter"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/Neumenon/tjson/node"
	"github.com/Neumenon/tjson/pipe"
	"github.com/Neumenon/tjson/tjson"
)

// Reader reads records from an io.Reader.
type Reader struct {
	r         *bufio.Reader
	mode      Mode
	maxRecord int
	decode    bool
	opts      pipe.Options
	logger    log.Logger

	off     int64  // Bytes consumed
	seq     uint64 // Records seen, malformed ones included
	skipped int
	aligned bool // json-seq: the RS opening the next record was consumed
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithMode sets the framing (default: ModeSeq).
func WithMode(m Mode) ReaderOption {
	return func(r *Reader) {
		r.mode = m
	}
}

// WithMaxRecord sets the maximum payload size (default: 64 MiB).
func WithMaxRecord(max int) ReaderOption {
	return func(r *Reader) {
		r.maxRecord = max
	}
}

// WithMaxDepth limits container nesting inside a record.
func WithMaxDepth(n int) ReaderOption {
	return func(r *Reader) {
		r.opts.MaxDepth = n
	}
}

// WithDecode makes the reader decode every record into Record.Value.
func WithDecode() ReaderOption {
	return func(r *Reader) {
		r.decode = true
	}
}

// WithLogger sets the logger reporting skipped input (default: no logging).
func WithLogger(logger log.Logger) ReaderOption {
	return func(r *Reader) {
		r.logger = logger
	}
}

// NewReader creates a new record reader.
func NewReader(r io.Reader, opts ...ReaderOption) *Reader {
	reader := &Reader{
		r:         bufio.NewReader(r),
		mode:      ModeSeq,
		maxRecord: MaxRecordSize,
		opts:      pipe.DefaultOptions(),
		logger:    log.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(reader)
	}
	return reader
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int64 {
	return r.off
}

// Seen returns the number of record positions read so far, malformed ones
// included.
func (r *Reader) Seen() uint64 {
	return r.seq
}

// Skipped returns the number of malformed records reported so far.
func (r *Reader) Skipped() int {
	return r.skipped
}

// Next reads and returns the next well-formed record.
// Returns io.EOF when no more records are available. A *ParseError means the
// record was malformed; the reader is positioned at the next record and Next
// may be called again.
func (r *Reader) Next() (*Record, error) {
	for {
		start, data, terminated, err := r.readRecord()
		if err != nil {
			return nil, err
		}
		if data != nil && isBlank(data) {
			continue
		}

		r.seq++
		if data == nil {
			return nil, r.reject(&ParseError{
				Reason: fmt.Sprintf("record too large: more than %d bytes", r.maxRecord),
				Offset: start,
				Seq:    r.seq,
			})
		}

		rec := &Record{Seq: r.seq, Offset: start, Data: data, CRC: ComputeCRC(data)}
		if err := r.check(rec, terminated); err != nil {
			return nil, r.reject(err)
		}
		level.Debug(r.logger).Log("msg", "record", "seq", rec.Seq, "offset", rec.Offset, "bytes", len(rec.Data))
		return rec, nil
	}
}

func (r *Reader) reject(err *ParseError) error {
	r.skipped++
	level.Warn(r.logger).Log("msg", "skipping malformed record", "seq", err.Seq, "offset", err.Offset, "err", err)
	return err
}

// check validates one payload, decoding it when configured.
func (r *Reader) check(rec *Record, terminated bool) *ParseError {
	// A json-seq record whose top-level value is a number or literal must end
	// in LF, otherwise it may have been cut short.
	if r.mode == ModeSeq && !terminated && endsInScalar(rec.Data) {
		return &ParseError{Reason: "truncated record", Offset: rec.Offset, Seq: rec.Seq}
	}

	src := tjson.NewBytesSource(rec.Data)
	if r.decode {
		v, err := node.Decode(src, node.DecodeOptions{MaxDepth: r.opts.MaxDepth})
		if err != nil {
			return &ParseError{Reason: "invalid JSON text", Offset: rec.Offset, Seq: rec.Seq, Err: err}
		}
		rec.Value = v
		return nil
	}
	if _, err := pipe.Validate(src, r.opts); err != nil {
		return &ParseError{Reason: "invalid JSON text", Offset: rec.Offset, Seq: rec.Seq, Err: err}
	}
	return nil
}

// readRecord returns the offset and payload of the next record, and whether
// its terminator was present. The payload is nil when it exceeded maxRecord;
// its bytes have been skipped.
func (r *Reader) readRecord() (int64, []byte, bool, error) {
	if r.mode == ModeSeq && !r.aligned {
		if err := r.skipToSeparator(); err != nil {
			return 0, nil, false, err
		}
	}
	r.aligned = false

	delim := byte(LF)
	if r.mode == ModeSeq {
		delim = RS
	}

	start := r.off
	data := []byte{}
	over := false
	for {
		c, err := r.readByte()
		if err == io.EOF {
			if r.mode == ModeNDJSON && r.off == start {
				return 0, nil, false, io.EOF
			}
			break
		}
		if err != nil {
			return start, nil, false, err
		}
		if c == delim {
			if r.mode == ModeSeq {
				r.aligned = true
			}
			break
		}
		if len(data) >= r.maxRecord {
			over = true
			continue
		}
		data = append(data, c)
	}
	if over {
		return start, nil, false, nil
	}

	terminated := r.mode == ModeNDJSON
	if n := len(data); r.mode == ModeSeq && n > 0 && data[n-1] == LF {
		data = data[:n-1]
		terminated = true
	}
	if n := len(data); n > 0 && data[n-1] == '\r' {
		data = data[:n-1]
	}
	return start, data, terminated, nil
}

// skipToSeparator discards bytes up to and including the next RS.
func (r *Reader) skipToSeparator() error {
	junk := 0
	for {
		c, err := r.readByte()
		if err != nil {
			if junk > 0 {
				level.Warn(r.logger).Log("msg", "discarded bytes outside any record", "bytes", junk, "offset", r.off-int64(junk))
			}
			return err
		}
		if c == RS {
			break
		}
		junk++
	}
	if junk > 0 {
		level.Warn(r.logger).Log("msg", "discarded bytes outside any record", "bytes", junk, "offset", r.off-int64(junk)-1)
	}
	return nil
}

func (r *Reader) readByte() (byte, error) {
	c, err := r.r.ReadByte()
	if err != nil {
		if err == io.EOF {
			return 0, io.EOF
		}
		return 0, errors.Wrapf(err, "stream: reading at offset %d", r.off)
	}
	r.off++
	return c, nil
}

func isBlank(data []byte) bool {
	for _, c := range data {
		if c != ' ' && c != '\t' && c != '\n' && c != '\r' {
			return false
		}
	}
	return true
}

// endsInScalar reports whether the last significant byte of data can end a
// number or literal.
func endsInScalar(data []byte) bool {
	for i := len(data) - 1; i >= 0; i-- {
		switch data[i] {
		case ' ', '\t', '\n', '\r':
			continue
		case '}', ']', '"':
			return false
		default:
			return true
		}
	}
	return false
}

// ReadAll reads all records until EOF. Malformed records are skipped; any
// other error stops the read.
func (r *Reader) ReadAll() ([]*Record, error) {
	var records []*Record
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return records, nil
		}
		var perr *ParseError
		if errors.As(err, &perr) {
			continue
		}
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
}

// Records returns the remaining records. Malformed records are yielded as a
// nil record with their *ParseError and the sequence goes on; any other
// error ends it.
func (r *Reader) Records() iter.Seq2[*Record, error] {
	return func(yield func(*Record, error) bool) {
		for {
			rec, err := r.Next()
			if err == io.EOF {
				return
			}
			if !yield(rec, err) {
				return
			}
			var perr *ParseError
			if err != nil && !errors.As(err, &perr) {
				return
			}
		}
	}
}
