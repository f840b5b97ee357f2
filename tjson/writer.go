package tjson

import (
	"io"
	"math"
	"strconv"
)

// ============================================================
// Write engine
// ============================================================

type writeState uint8

const (
	writeSomewhere writeState = iota // Document start, or just after a complete value
	writeInString                    // Inside a string value whose quote is still open
	writeInObject                    // Just after '{'
	writeInArray                     // Just after '[' or an item separator
	writeInKey                       // Inside a key whose quote is still open
	writeDone                        // Finish was called
)

// Punctuation emitted ahead of tokens.
const (
	punctKeyValue   = `":`
	punctKeyString  = `":"`
	punctKeyObject  = `":{`
	punctKeyArray   = `":[`
	punctNextKey    = `,"`
	punctStrNextKey = `","`
	punctStrNext    = `",`
)

// Writer is a push serializer over a byte sink. It emits the punctuation each
// call needs and rejects calls that cannot produce valid JSON in the current
// state. It does not remember which kind of container is open, so matching
// CloseObject and CloseArray to the open bracket is up to the caller.
//
// A Writer must not be used from multiple goroutines at once.
type Writer[W io.Writer] struct {
	sink  W
	state writeState

	depth    int
	maxDepth int
	started  bool // a value has begun at depth 0
	fresh    bool // the innermost container is still empty

	scratch [64]byte
}

// NewWriter returns a writer pushing bytes to sink.
func NewWriter[W io.Writer](sink W, opts ...Option) *Writer[W] {
	o := buildOptions(opts)
	return &Writer[W]{
		sink:     sink,
		maxDepth: o.MaxDepth,
	}
}

// Init resets w to write a new document to sink. The depth limit is kept.
func (w *Writer[W]) Init(sink W) {
	*w = Writer[W]{
		sink:     sink,
		maxDepth: w.maxDepth,
	}
}

// Depth returns the number of containers currently open.
func (w *Writer[W]) Depth() int {
	return w.depth
}

// ============================================================
// Sink plumbing
// ============================================================

// emit writes p to the sink, looping over short writes.
func (w *Writer[W]) emit(p []byte) Result {
	for len(p) > 0 {
		n, err := w.sink.Write(p)
		if n > 0 {
			p = p[n:]
		}
		if err != nil || n <= 0 {
			return PrematurelyEnded
		}
	}
	return Okay
}

// emitString writes s through the scratch buffer.
func (w *Writer[W]) emitString(s string) Result {
	return emitRun(w, s)
}

func emitRun[W io.Writer, T string | []byte](w *Writer[W], s T) Result {
	for len(s) > 0 {
		n := copy(w.scratch[:], s)
		if res := w.emit(w.scratch[:n]); res != Okay {
			return res
		}
		s = s[n:]
	}
	return Okay
}

// emitEscaped writes s as JSON string content. Runs of bytes that need no
// escaping go out in one piece.
func emitEscaped[W io.Writer, T string | []byte](w *Writer[W], s T) Result {
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x20 && c != '"' && c != '\\' {
			continue
		}
		if start < i {
			if res := emitRun(w, s[start:i]); res != Okay {
				return res
			}
		}
		if res := w.emitEscape(c); res != Okay {
			return res
		}
		start = i + 1
	}
	if start < len(s) {
		return emitRun(w, s[start:])
	}
	return Okay
}

const hexDigits = "0123456789abcdef"

func (w *Writer[W]) emitEscape(c byte) Result {
	buf := w.scratch[:0]
	switch c {
	case '"', '\\':
		buf = append(buf, '\\', c)
	case '\b':
		buf = append(buf, '\\', 'b')
	case '\f':
		buf = append(buf, '\\', 'f')
	case '\n':
		buf = append(buf, '\\', 'n')
	case '\r':
		buf = append(buf, '\\', 'r')
	case '\t':
		buf = append(buf, '\\', 't')
	default:
		buf = append(buf, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xF])
	}
	return w.emit(buf)
}

// ============================================================
// State transitions
// ============================================================

// valuePrefix returns the punctuation due before a scalar, or InvalidData
// when no value may start here.
func (w *Writer[W]) valuePrefix() (string, Result) {
	switch w.state {
	case writeSomewhere:
		if w.depth == 0 && !w.started {
			return "", Okay
		}
		return "", InvalidData
	case writeInArray:
		return "", Okay
	case writeInKey:
		return punctKeyValue, Okay
	case writeInString, writeInObject, writeDone:
		return "", InvalidData
	default:
		panic("tjson: unreachable write state")
	}
}

// afterValue records that a complete value was written.
func (w *Writer[W]) afterValue(st writeState) {
	w.state = st
	w.started = true
	w.fresh = false
}

// beginScalar emits the punctuation due before a scalar value.
func (w *Writer[W]) beginScalar() Result {
	prefix, res := w.valuePrefix()
	if res != Okay {
		return res
	}
	return w.emitString(prefix)
}

// OpenObject begins an object.
func (w *Writer[W]) OpenObject() Result {
	return w.open("{", punctKeyObject, writeInObject)
}

// OpenArray begins an array.
func (w *Writer[W]) OpenArray() Result {
	return w.open("[", punctKeyArray, writeInArray)
}

func (w *Writer[W]) open(bracket, afterKey string, st writeState) Result {
	var prefix string
	switch w.state {
	case writeSomewhere:
		if w.depth != 0 || w.started {
			return InvalidData
		}
		prefix = bracket
	case writeInArray:
		prefix = bracket
	case writeInKey:
		prefix = afterKey
	case writeInString, writeInObject, writeDone:
		return InvalidData
	default:
		panic("tjson: unreachable write state")
	}
	if w.maxDepth > 0 && w.depth >= w.maxDepth {
		return InvalidData
	}
	if res := w.emitString(prefix); res != Okay {
		return res
	}
	w.depth++
	w.started = true
	w.fresh = true
	w.state = st
	return Okay
}

// CloseObject ends the innermost object.
func (w *Writer[W]) CloseObject() Result {
	var p string
	switch w.state {
	case writeSomewhere:
		if w.depth == 0 {
			return InvalidData
		}
		p = "}"
	case writeInString:
		if w.depth == 0 {
			return InvalidData
		}
		p = `"}`
	case writeInObject:
		p = "}"
	case writeInArray, writeInKey, writeDone:
		return InvalidData
	default:
		panic("tjson: unreachable write state")
	}
	return w.close(p)
}

// CloseArray ends the innermost array.
func (w *Writer[W]) CloseArray() Result {
	var p string
	switch w.state {
	case writeSomewhere:
		if w.depth == 0 {
			return InvalidData
		}
		p = "]"
	case writeInString:
		if w.depth == 0 {
			return InvalidData
		}
		p = `"]`
	case writeInArray:
		if !w.fresh {
			return InvalidData
		}
		p = "]"
	case writeInObject, writeInKey, writeDone:
		return InvalidData
	default:
		panic("tjson: unreachable write state")
	}
	return w.close(p)
}

func (w *Writer[W]) close(p string) Result {
	if res := w.emitString(p); res != Okay {
		return res
	}
	w.depth--
	w.afterValue(writeSomewhere)
	return Okay
}

// Key writes an object key. Consecutive calls concatenate into one key.
func (w *Writer[W]) Key(k string) Result {
	return writeKey(w, k)
}

// KeyBytes is Key for a byte slice.
func (w *Writer[W]) KeyBytes(k []byte) Result {
	return writeKey(w, k)
}

func writeKey[W io.Writer, T string | []byte](w *Writer[W], k T) Result {
	var p string
	switch w.state {
	case writeSomewhere:
		if w.depth == 0 {
			return InvalidData
		}
		p = punctNextKey
	case writeInString:
		if w.depth == 0 {
			return InvalidData
		}
		p = punctStrNextKey
	case writeInObject:
		p = `"`
	case writeInKey:
		p = ""
	case writeInArray, writeDone:
		return InvalidData
	default:
		panic("tjson: unreachable write state")
	}
	if res := w.emitString(p); res != Okay {
		return res
	}
	w.state = writeInKey
	w.fresh = false
	return emitEscaped(w, k)
}

// NextItem writes the separator between two array items.
func (w *Writer[W]) NextItem() Result {
	var p string
	switch w.state {
	case writeSomewhere:
		if w.depth == 0 {
			return InvalidData
		}
		p = ","
	case writeInString:
		if w.depth == 0 {
			return InvalidData
		}
		p = punctStrNext
	case writeInObject, writeInArray, writeInKey, writeDone:
		return InvalidData
	default:
		panic("tjson: unreachable write state")
	}
	if res := w.emitString(p); res != Okay {
		return res
	}
	w.state = writeInArray
	w.fresh = false
	return Okay
}

// Str writes string content. Consecutive calls concatenate into one string;
// the closing quote is written by whatever call comes next.
func (w *Writer[W]) Str(s string) Result {
	return writeStr(w, s)
}

// StrBytes is Str for a byte slice.
func (w *Writer[W]) StrBytes(s []byte) Result {
	return writeStr(w, s)
}

func writeStr[W io.Writer, T string | []byte](w *Writer[W], s T) Result {
	var p string
	switch w.state {
	case writeInString:
		p = ""
	case writeSomewhere:
		if w.depth != 0 || w.started {
			return InvalidData
		}
		p = `"`
	case writeInArray:
		p = `"`
	case writeInKey:
		p = punctKeyString
	case writeInObject, writeDone:
		return InvalidData
	default:
		panic("tjson: unreachable write state")
	}
	if res := w.emitString(p); res != Okay {
		return res
	}
	w.afterValue(writeInString)
	return emitEscaped(w, s)
}

// Int writes an integer.
func (w *Writer[W]) Int(v int) Result {
	return w.Int64(int64(v))
}

// Int64 writes a 64-bit integer.
func (w *Writer[W]) Int64(v int64) Result {
	if res := w.beginScalar(); res != Okay {
		return res
	}
	if res := w.emit(strconv.AppendInt(w.scratch[:0], v, 10)); res != Okay {
		return res
	}
	w.afterValue(writeSomewhere)
	return Okay
}

// Number writes a number span verbatim. Spans that ClassifyNumber rejects are
// InvalidData.
func (w *Writer[W]) Number(span []byte) Result {
	if _, res := ClassifyNumber(span); res != Okay {
		return InvalidData
	}
	if res := w.beginScalar(); res != Okay {
		return res
	}
	if res := emitRun(w, span); res != Okay {
		return res
	}
	w.afterValue(writeSomewhere)
	return Okay
}

// Float writes v in exponential form with nine significant digits, enough
// for a float32 to survive a round trip. NaN and infinities are InvalidData.
func (w *Writer[W]) Float(v float32) Result {
	return w.writeFloat(float64(v), 8, 32)
}

// Float64 writes v in exponential form with seventeen significant digits.
// NaN and infinities are InvalidData.
func (w *Writer[W]) Float64(v float64) Result {
	return w.writeFloat(v, 16, 64)
}

func (w *Writer[W]) writeFloat(v float64, prec, bitSize int) Result {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return InvalidData
	}
	if res := w.beginScalar(); res != Okay {
		return res
	}
	if res := w.emit(strconv.AppendFloat(w.scratch[:0], v, 'e', prec, bitSize)); res != Okay {
		return res
	}
	w.afterValue(writeSomewhere)
	return Okay
}

// True writes the literal true.
func (w *Writer[W]) True() Result {
	return w.writeLiteral("true")
}

// False writes the literal false.
func (w *Writer[W]) False() Result {
	return w.writeLiteral("false")
}

// Null writes the literal null.
func (w *Writer[W]) Null() Result {
	return w.writeLiteral("null")
}

func (w *Writer[W]) writeLiteral(lit string) Result {
	if res := w.beginScalar(); res != Okay {
		return res
	}
	if res := w.emitString(lit); res != Okay {
		return res
	}
	w.afterValue(writeSomewhere)
	return Okay
}

// Finish completes the document, closing an open top-level string. It is
// InvalidData while any container is open. Calling it again is a no-op.
func (w *Writer[W]) Finish() Result {
	switch w.state {
	case writeDone:
		return Okay
	case writeSomewhere:
		if w.depth != 0 {
			return InvalidData
		}
	case writeInString:
		if w.depth != 0 {
			return InvalidData
		}
		if res := w.emitString(`"`); res != Okay {
			return res
		}
	case writeInObject, writeInArray, writeInKey:
		return InvalidData
	default:
		panic("tjson: unreachable write state")
	}
	w.state = writeDone
	return Okay
}
