package tjson

import "io"

// ============================================================
// Read engine
// ============================================================

type readState uint8

const (
	readSomewhere  readState = iota // Between tokens; a separator may be due
	readInObject                    // Just after '{'
	readInArray                     // Just after '['
	readInSequence                  // Inside a string, key or number that did not fit
)

// partialKind records which token an InSequence reader is in the middle of.
type partialKind uint8

const (
	partialNone partialKind = iota
	partialString
	partialKey
	partialNumber
)

// Reader is a pull parser over a byte source. It holds one byte of lookahead
// and at most one decoded codepoint; it never allocates. The zero value is
// not usable: construct with NewReader or call Init.
//
// A Reader must not be used from multiple goroutines at once.
type Reader[S io.ByteReader] struct {
	src     S
	state   readState
	partial partialKind

	pendingByte    byte
	hasPendingByte bool
	pendingRune    rune
	hasPendingRune bool

	eof      bool
	depth    int
	maxDepth int
}

// NewReader returns a reader pulling bytes from src.
func NewReader[S io.ByteReader](src S, opts ...Option) *Reader[S] {
	o := buildOptions(opts)
	return &Reader[S]{
		src:      src,
		maxDepth: o.MaxDepth,
	}
}

// Init resets r to read a new document from src. The depth limit is kept.
func (r *Reader[S]) Init(src S) {
	*r = Reader[S]{
		src:      src,
		maxDepth: r.maxDepth,
	}
}

// Depth returns the number of containers currently open.
func (r *Reader[S]) Depth() int {
	return r.depth
}

// ============================================================
// Byte plumbing
// ============================================================

// next returns the pending byte if there is one, otherwise reads the source.
func (r *Reader[S]) next() (byte, Result) {
	if r.hasPendingByte {
		r.hasPendingByte = false
		return r.pendingByte, Okay
	}
	c, err := r.src.ReadByte()
	if err != nil {
		r.eof = err == io.EOF
		return 0, PrematurelyEnded
	}
	return c, Okay
}

// unread parks c so the next call to next returns it.
func (r *Reader[S]) unread(c byte) {
	r.pendingByte = c
	r.hasPendingByte = true
}

// nextSignificant skips whitespace and returns the first other byte.
func (r *Reader[S]) nextSignificant() (byte, Result) {
	for {
		c, res := r.next()
		if res != Okay {
			return 0, res
		}
		if !isWhitespace(c) {
			return c, Okay
		}
	}
}

// idle reports whether the reader sits between tokens with nothing to drain.
func (r *Reader[S]) idle() bool {
	return r.state == readSomewhere && !r.hasPendingRune
}

func (r *Reader[S]) finishToken() {
	r.state = readSomewhere
	r.partial = partialNone
}

// ============================================================
// Classification and containers
// ============================================================

// Peek classifies the next token without consuming it.
func (r *Reader[S]) Peek() (Type, Result) {
	if !r.idle() {
		return TypeInvalid, InvalidData
	}
	c, res := r.nextSignificant()
	if res != Okay {
		return TypeInvalid, res
	}
	r.unread(c)
	t := classify(c)
	if t == TypeInvalid {
		return TypeInvalid, InvalidData
	}
	return t, Okay
}

// EnterObject consumes the '{' that opens an object.
func (r *Reader[S]) EnterObject() Result {
	return r.enter('{', readInObject)
}

// EnterArray consumes the '[' that opens an array.
func (r *Reader[S]) EnterArray() Result {
	return r.enter('[', readInArray)
}

func (r *Reader[S]) enter(open byte, st readState) Result {
	if !r.idle() {
		return InvalidData
	}
	c, res := r.nextSignificant()
	if res != Okay {
		return res
	}
	if c != open {
		return InvalidData
	}
	if r.maxDepth > 0 && r.depth >= r.maxDepth {
		return InvalidData
	}
	r.depth++
	r.state = st
	return Okay
}

func (r *Reader[S]) leave() Result {
	if r.depth == 0 {
		return InvalidData
	}
	r.depth--
	r.state = readSomewhere
	return Okay
}

// NextObjectKey advances to the next key of the current object and reads it
// into buf. closed reports that the object ended instead. When the key does
// not fit, done is false with n == len(buf); call NextObjectKey again to read
// the rest. Once the key is done, the ':' after it has been consumed and the
// value is next.
func (r *Reader[S]) NextObjectKey(buf []byte) (n int, closed, done bool, res Result) {
	if r.hasPendingRune {
		return 0, false, false, InvalidData
	}

	switch r.state {
	case readInSequence:
		if r.partial != partialKey {
			return 0, false, false, InvalidData
		}
		n, done, res = r.readKey(buf)
		return n, false, done, res
	case readInArray:
		return 0, false, false, InvalidData
	case readInObject, readSomewhere:
	default:
		panic("tjson: unreachable read state")
	}

	c, res := r.nextSignificant()
	if res != Okay {
		return 0, false, false, res
	}
	if c == '}' {
		return 0, true, false, r.leave()
	}
	if r.state == readSomewhere {
		if c != ',' {
			return 0, false, false, InvalidData
		}
		if c, res = r.nextSignificant(); res != Okay {
			return 0, false, false, res
		}
	}
	if c != '"' {
		return 0, false, false, InvalidData
	}

	r.state = readInSequence
	r.partial = partialKey
	n, done, res = r.readKey(buf)
	return n, false, done, res
}

func (r *Reader[S]) readKey(buf []byte) (int, bool, Result) {
	n, done, res := r.readChars(buf)
	if !done || res != Okay {
		return n, done, res
	}
	c, res := r.nextSignificant()
	if res != Okay {
		return n, false, res
	}
	if c != ':' {
		return n, false, InvalidData
	}
	r.finishToken()
	return n, true, Okay
}

// NextArrayItem advances to the next item of the current array. closed
// reports that the array ended; otherwise an item follows and can be
// classified with Peek.
func (r *Reader[S]) NextArrayItem() (closed bool, res Result) {
	if r.hasPendingRune {
		return false, InvalidData
	}

	switch r.state {
	case readInArray:
		c, res := r.nextSignificant()
		if res != Okay {
			return false, res
		}
		if c == ']' {
			return true, r.leave()
		}
		r.unread(c)
		r.state = readSomewhere
		return false, Okay
	case readSomewhere:
		c, res := r.nextSignificant()
		if res != Okay {
			return false, res
		}
		switch c {
		case ']':
			return true, r.leave()
		case ',':
			c, res = r.nextSignificant()
			if res != Okay {
				return false, res
			}
			if c == ']' {
				return false, InvalidData
			}
			r.unread(c)
			return false, Okay
		default:
			return false, InvalidData
		}
	case readInObject, readInSequence:
		return false, InvalidData
	default:
		panic("tjson: unreachable read state")
	}
}

// ============================================================
// Leaves
// ============================================================

// ReadString reads a string value into buf. When the string does not fit,
// done is false with n == len(buf) and the next ReadString continues it.
// A ReadUnicode result means a non-ASCII escape was decoded: drain it with
// Reader.ReadUnicode, then call ReadString again.
func (r *Reader[S]) ReadString(buf []byte) (n int, done bool, res Result) {
	if r.hasPendingRune {
		return 0, false, InvalidData
	}

	switch r.state {
	case readInSequence:
		if r.partial != partialString {
			return 0, false, InvalidData
		}
	case readSomewhere:
		c, res := r.nextSignificant()
		if res != Okay {
			return 0, false, res
		}
		if c != '"' {
			return 0, false, InvalidData
		}
		r.state = readInSequence
		r.partial = partialString
	case readInObject, readInArray:
		return 0, false, InvalidData
	default:
		panic("tjson: unreachable read state")
	}

	n, done, res = r.readChars(buf)
	if done && res == Okay {
		r.finishToken()
	}
	return n, done, res
}

// readChars copies string content into buf up to the closing quote.
func (r *Reader[S]) readChars(buf []byte) (int, bool, Result) {
	n := 0
	for {
		c, res := r.next()
		if res != Okay {
			return n, false, res
		}
		if c == '"' {
			return n, true, Okay
		}
		if n == len(buf) {
			r.unread(c)
			return n, false, Okay
		}

		switch {
		case c == '\\':
			cp, res := r.readEscape()
			if res != Okay {
				return n, false, res
			}
			if cp < 0x80 {
				buf[n] = byte(cp)
				n++
				continue
			}
			r.pendingRune = cp
			r.hasPendingRune = true
			return n, false, ReadUnicode
		case c < 0x20:
			return n, false, InvalidData
		default:
			buf[n] = c
			n++
		}
	}
}

// readEscape decodes the escape sequence after a backslash.
func (r *Reader[S]) readEscape() (rune, Result) {
	c, res := r.next()
	if res != Okay {
		return 0, res
	}

	switch c {
	case '"', '\\', '/':
		return rune(c), Okay
	case 'b':
		return '\b', Okay
	case 'f':
		return '\f', Okay
	case 'n':
		return '\n', Okay
	case 'r':
		return '\r', Okay
	case 't':
		return '\t', Okay
	case 'u':
	default:
		return 0, InvalidData
	}

	u, res := r.readHex4()
	if res != Okay {
		return 0, res
	}
	switch {
	case isLowSurrogate(u):
		return 0, InvalidData
	case !isHighSurrogate(u):
		return u, Okay
	}

	// A high surrogate must be followed directly by \u and a low surrogate.
	for _, want := range [2]byte{'\\', 'u'} {
		c, res := r.next()
		if res != Okay {
			return 0, res
		}
		if c != want {
			return 0, InvalidData
		}
	}
	low, res := r.readHex4()
	if res != Okay {
		return 0, res
	}
	if !isLowSurrogate(low) {
		return 0, InvalidData
	}
	return combineSurrogates(u, low), Okay
}

func (r *Reader[S]) readHex4() (rune, Result) {
	var u rune
	for i := 0; i < 4; i++ {
		c, res := r.next()
		if res != Okay {
			return 0, res
		}
		h := hexValue(c)
		if h < 0 {
			return 0, InvalidData
		}
		u = u<<4 | rune(h)
	}
	return u, Okay
}

// ReadUnicode returns the codepoint decoded by the last string or key read
// that returned ReadUnicode.
func (r *Reader[S]) ReadUnicode() (rune, Result) {
	if !r.hasPendingRune {
		return 0, InvalidData
	}
	r.hasPendingRune = false
	return r.pendingRune, Okay
}

// ReadNumber reads the raw span of a number into buf. The span is every byte
// in [-+.eE0-9] up to the first other byte; it is not checked against the
// number grammar (see ClassifyNumber). When the span does not fit, done is
// false with n == len(buf) and the next ReadNumber continues it. End of
// stream ends the number.
func (r *Reader[S]) ReadNumber(buf []byte) (n int, done bool, res Result) {
	if r.hasPendingRune {
		return 0, false, InvalidData
	}

	switch r.state {
	case readInSequence:
		if r.partial != partialNumber {
			return 0, false, InvalidData
		}
	case readSomewhere:
		c, res := r.nextSignificant()
		if res != Okay {
			return 0, false, res
		}
		if c != '-' && !isDigit(c) {
			return 0, false, InvalidData
		}
		r.unread(c)
		r.state = readInSequence
		r.partial = partialNumber
	case readInObject, readInArray:
		return 0, false, InvalidData
	default:
		panic("tjson: unreachable read state")
	}

	for {
		c, res := r.next()
		if res != Okay {
			if r.eof {
				r.finishToken()
				return n, true, Okay
			}
			return n, false, res
		}
		if !isNumberByte(c) {
			r.unread(c)
			r.finishToken()
			return n, true, Okay
		}
		if n == len(buf) {
			r.unread(c)
			return n, false, Okay
		}
		buf[n] = c
		n++
	}
}

// ReadTrue consumes the literal true.
func (r *Reader[S]) ReadTrue() Result {
	return r.readLiteral("true")
}

// ReadFalse consumes the literal false.
func (r *Reader[S]) ReadFalse() Result {
	return r.readLiteral("false")
}

// ReadNull consumes the literal null.
func (r *Reader[S]) ReadNull() Result {
	return r.readLiteral("null")
}

func (r *Reader[S]) readLiteral(lit string) Result {
	if !r.idle() {
		return InvalidData
	}
	c, res := r.nextSignificant()
	if res != Okay {
		return res
	}
	if c != lit[0] {
		return InvalidData
	}
	for i := 1; i < len(lit); i++ {
		c, res := r.next()
		if res != Okay {
			return res
		}
		if c != lit[i] {
			return InvalidData
		}
	}
	return Okay
}

// StripTrailingSpaces consumes whitespace to the end of the source. It
// returns PrematurelyEnded when only whitespace remained, which is the
// expected outcome after a complete document, and InvalidData when anything
// else follows.
func (r *Reader[S]) StripTrailingSpaces() Result {
	if !r.idle() {
		return InvalidData
	}
	if _, res := r.nextSignificant(); res != Okay {
		return res
	}
	return InvalidData
}
