package stream

import (
	"bytes"
	"io"

	"github.com/pkg/errors"

	"github.com/Neumenon/tjson/node"
	"github.com/Neumenon/tjson/pipe"
	"github.com/Neumenon/tjson/tjson"
)

// Encoder is the tjson writer handed to WriteFunc callbacks.
type Encoder = tjson.Writer[*bytes.Buffer]

// Writer writes records to an io.Writer. A record is assembled in memory and
// handed to the io.Writer with its framing in one Write call once it is
// complete. A record that fails while it is built writes nothing; a failing
// io.Writer may still have accepted part of the frame.
type Writer struct {
	w     io.Writer
	mode  Mode
	buf   bytes.Buffer
	frame []byte
	enc   *Encoder
	seq   uint64
	crc   uint32
}

// NewWriter creates a new record writer.
func NewWriter(w io.Writer, mode Mode) *Writer {
	wr := &Writer{w: w, mode: mode}
	wr.enc = tjson.NewWriter(&wr.buf, tjson.WithMaxDepth(node.DefaultMaxDepth))
	return wr
}

// Count returns the number of records written.
func (w *Writer) Count() uint64 {
	return w.seq
}

// CRC returns the running CRC-32 of all payloads written, as Cursor computes
// it on the reading side.
func (w *Writer) CRC() uint32 {
	return w.crc
}

// WriteFunc writes the document fn pushes into enc as one record.
func (w *Writer) WriteFunc(fn func(enc *Encoder) error) error {
	w.buf.Reset()
	w.enc.Init(&w.buf)
	if err := fn(w.enc); err != nil {
		return errors.Wrap(err, "stream: building record")
	}
	if res := w.enc.Finish(); res != tjson.Okay {
		return errors.Wrap(res.Err(), "stream: incomplete record")
	}
	return w.flush()
}

// WriteValue writes v as one record.
func (w *Writer) WriteValue(v *node.Value) error {
	w.buf.Reset()
	if err := node.Encode(&w.buf, v); err != nil {
		return errors.Wrap(err, "stream: encoding record")
	}
	return w.flush()
}

// WriteRaw validates data and writes it compacted as one record.
func (w *Writer) WriteRaw(data []byte) error {
	w.buf.Reset()
	if _, err := pipe.Transcode(&w.buf, tjson.NewBytesSource(data), pipe.DefaultOptions()); err != nil {
		return errors.Wrap(err, "stream: invalid record")
	}
	return w.flush()
}

// flush frames and writes the assembled payload.
//
// Format:
//
//	json-seq: 0x1E <payload> 0x0A
//	ndjson:   <payload> 0x0A
func (w *Writer) flush() error {
	payload := w.buf.Bytes()
	if len(payload) == 0 {
		return errors.New("stream: empty record")
	}
	w.frame = w.frame[:0]
	if w.mode == ModeSeq {
		w.frame = append(w.frame, RS)
	}
	w.frame = append(w.frame, payload...)
	w.frame = append(w.frame, LF)
	if _, err := w.w.Write(w.frame); err != nil {
		return errors.Wrap(err, "stream: write record")
	}
	w.seq++
	w.crc = UpdateCRC(w.crc, payload)
	return nil
}
