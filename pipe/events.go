package pipe

import (
	"errors"
	"io"
	"iter"

	"github.com/Neumenon/tjson/tjson"
)

// EventKind identifies a token of the event sequence.
type EventKind uint8

const (
	EventBeginObject EventKind = iota
	EventEndObject
	EventBeginArray
	EventEndArray
	EventKey    // Object key; Text holds it
	EventString // String value; Text holds it
	EventNumber // Number; Text holds the raw span
	EventTrue
	EventFalse
	EventNull
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case EventBeginObject:
		return "BEGIN_OBJECT"
	case EventEndObject:
		return "END_OBJECT"
	case EventBeginArray:
		return "BEGIN_ARRAY"
	case EventEndArray:
		return "END_ARRAY"
	case EventKey:
		return "KEY"
	case EventString:
		return "STRING"
	case EventNumber:
		return "NUMBER"
	case EventTrue:
		return "TRUE"
	case EventFalse:
		return "FALSE"
	case EventNull:
		return "NULL"
	default:
		return "UNKNOWN"
	}
}

// Event is one token of a document.
type Event struct {
	Kind EventKind

	// Text is the decoded key or string, or the number span. It is only
	// valid until the next event.
	Text []byte

	// Partial marks a key or string piece that more pieces of the same token
	// follow. The last piece has Partial false.
	Partial bool

	// Depth is the number of containers enclosing the token. Begin and end
	// events of a container carry the depth outside it.
	Depth int
}

// Events returns the tokens of the single document in src. A failure ends
// the sequence with a zero Event and an *Error. Stopping early is allowed.
func Events[S io.ByteReader](src S, opts Options) iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		_, err := walkDocument(src, opts, func(ev Event) bool {
			return yield(ev, nil)
		})
		if err != nil {
			yield(Event{}, err)
		}
	}
}

// ============================================================
// Walker
// ============================================================

var errStopped = errors.New("pipe: stopped")

type walker[S io.ByteReader] struct {
	src   *counter[S]
	r     *tjson.Reader[*counter[S]]
	opts  Options
	visit func(Event) bool

	text []byte // ChunkSize plus room for one encoded codepoint
	num  []byte
}

// walkDocument drives the reader over one document, calling visit for every
// token, then checks that only whitespace follows. It returns the number of
// bytes consumed.
func walkDocument[S io.ByteReader](src S, opts Options, visit func(Event) bool) (int64, error) {
	opts = opts.normalized()
	c := &counter[S]{src: src}
	w := &walker[S]{
		src:   c,
		r:     tjson.NewReader(c, tjson.WithMaxDepth(opts.MaxDepth)),
		opts:  opts,
		visit: visit,
		text:  make([]byte, opts.ChunkSize+tjson.UTFMax),
	}

	if err := w.value(0); err != nil {
		if err == errStopped {
			return c.off, nil
		}
		return c.off, err
	}
	if res := w.r.StripTrailingSpaces(); res != tjson.PrematurelyEnded {
		return c.off, c.fail(ErrCodeTrailing, res)
	}
	if c.err != nil {
		return c.off, &Error{Code: ErrCodeSource, Offset: c.off, Err: c.err}
	}
	return c.off, nil
}

func (w *walker[S]) emit(ev Event) error {
	if !w.visit(ev) {
		return errStopped
	}
	return nil
}

func (w *walker[S]) value(depth int) error {
	typ, res := w.r.Peek()
	if res != tjson.Okay {
		return w.src.fail("", res)
	}

	switch typ {
	case tjson.TypeObject:
		return w.object(depth)
	case tjson.TypeArray:
		return w.array(depth)
	case tjson.TypeString:
		return w.str(depth)
	case tjson.TypeNumber:
		return w.number(depth)
	case tjson.TypeTrue:
		return w.literal(w.r.ReadTrue(), EventTrue, depth)
	case tjson.TypeFalse:
		return w.literal(w.r.ReadFalse(), EventFalse, depth)
	case tjson.TypeNull:
		return w.literal(w.r.ReadNull(), EventNull, depth)
	default:
		return w.src.fail("", tjson.InvalidData)
	}
}

func (w *walker[S]) literal(res tjson.Result, kind EventKind, depth int) error {
	if res != tjson.Okay {
		return w.src.fail("", res)
	}
	return w.emit(Event{Kind: kind, Depth: depth})
}

func (w *walker[S]) enter(res tjson.Result, kind EventKind, depth int) error {
	if res != tjson.Okay {
		return w.src.fail("", res)
	}
	return w.emit(Event{Kind: kind, Depth: depth})
}

func (w *walker[S]) checkDepth(depth int) error {
	if depth >= w.opts.MaxDepth {
		return w.src.fail(ErrCodeDepth, tjson.InvalidData)
	}
	return nil
}

func (w *walker[S]) object(depth int) error {
	if err := w.checkDepth(depth); err != nil {
		return err
	}
	if err := w.enter(w.r.EnterObject(), EventBeginObject, depth); err != nil {
		return err
	}
	for {
		closed, err := w.key(depth + 1)
		if err != nil {
			return err
		}
		if closed {
			return w.emit(Event{Kind: EventEndObject, Depth: depth})
		}
		if err := w.value(depth + 1); err != nil {
			return err
		}
	}
}

func (w *walker[S]) array(depth int) error {
	if err := w.checkDepth(depth); err != nil {
		return err
	}
	if err := w.enter(w.r.EnterArray(), EventBeginArray, depth); err != nil {
		return err
	}
	for {
		closed, res := w.r.NextArrayItem()
		if res != tjson.Okay {
			return w.src.fail("", res)
		}
		if closed {
			return w.emit(Event{Kind: EventEndArray, Depth: depth})
		}
		if err := w.value(depth + 1); err != nil {
			return err
		}
	}
}

// key reads the next key of the current object, emitting it in pieces.
func (w *walker[S]) key(depth int) (bool, error) {
	chunk := w.opts.ChunkSize
	fill := 0
	for {
		n, closed, done, res := w.r.NextObjectKey(w.text[fill:chunk])
		fill += n
		switch res {
		case tjson.Okay:
			if closed {
				return true, nil
			}
			if done {
				return false, w.emit(Event{Kind: EventKey, Text: w.text[:fill], Depth: depth})
			}
		case tjson.ReadUnicode:
			if fill, res = w.appendRune(fill); res != tjson.Okay {
				return false, w.src.fail("", res)
			}
			if fill < chunk {
				continue
			}
		default:
			return false, w.src.fail("", res)
		}
		if err := w.emit(Event{Kind: EventKey, Text: w.text[:fill], Partial: true, Depth: depth}); err != nil {
			return false, err
		}
		fill = 0
	}
}

// str reads a string value, emitting it in pieces.
func (w *walker[S]) str(depth int) error {
	chunk := w.opts.ChunkSize
	fill := 0
	for {
		n, done, res := w.r.ReadString(w.text[fill:chunk])
		fill += n
		switch res {
		case tjson.Okay:
			if done {
				return w.emit(Event{Kind: EventString, Text: w.text[:fill], Depth: depth})
			}
		case tjson.ReadUnicode:
			if fill, res = w.appendRune(fill); res != tjson.Okay {
				return w.src.fail("", res)
			}
			if fill < chunk {
				continue
			}
		default:
			return w.src.fail("", res)
		}
		if err := w.emit(Event{Kind: EventString, Text: w.text[:fill], Partial: true, Depth: depth}); err != nil {
			return err
		}
		fill = 0
	}
}

// appendRune drains the pending codepoint into w.text at fill. The text
// buffer always has room for one encoding past the chunk size.
func (w *walker[S]) appendRune(fill int) (int, tjson.Result) {
	cp, res := w.r.ReadUnicode()
	if res != tjson.Okay {
		return fill, res
	}
	n, res := tjson.CodepointToUTF8(cp, w.text[fill:])
	return fill + n, res
}

func (w *walker[S]) number(depth int) error {
	w.num = w.num[:0]
	var chunk [64]byte
	for {
		n, done, res := w.r.ReadNumber(chunk[:])
		if len(w.num)+n > w.opts.MaxNumberLen {
			return w.src.fail(ErrCodeNumber, tjson.InvalidData)
		}
		w.num = append(w.num, chunk[:n]...)
		if res != tjson.Okay {
			return w.src.fail("", res)
		}
		if done {
			break
		}
	}
	if _, res := tjson.ClassifyNumber(w.num); res != tjson.Okay {
		return w.src.fail(ErrCodeNumber, tjson.InvalidData)
	}
	return w.emit(Event{Kind: EventNumber, Text: w.num, Depth: depth})
}
