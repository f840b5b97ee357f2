package tjson

import (
	"io"
	"strings"
	"unicode/utf8"
)

// walk traverses one value, recursing into containers, and returns the first
// non-Okay result.
func walk[S io.ByteReader](r *Reader[S], depth int) Result {
	if depth > 64 {
		return InvalidData
	}
	typ, res := r.Peek()
	if res != Okay {
		return res
	}

	switch typ {
	case TypeObject:
		if res := r.EnterObject(); res != Okay {
			return res
		}
		for {
			_, closed, res := readKey(r, 4)
			if res != Okay {
				return res
			}
			if closed {
				return Okay
			}
			if res := walk(r, depth+1); res != Okay {
				return res
			}
		}
	case TypeArray:
		if res := r.EnterArray(); res != Okay {
			return res
		}
		for {
			closed, res := r.NextArrayItem()
			if res != Okay {
				return res
			}
			if closed {
				return Okay
			}
			if res := walk(r, depth+1); res != Okay {
				return res
			}
		}
	case TypeString:
		_, res := readString(r, 4)
		return res
	case TypeNumber:
		_, res := readNumber(r, 4)
		return res
	case TypeTrue:
		return r.ReadTrue()
	case TypeFalse:
		return r.ReadFalse()
	case TypeNull:
		return r.ReadNull()
	default:
		return InvalidData
	}
}

// document traverses a whole document and checks for trailing garbage.
// A valid document yields PrematurelyEnded.
func document(src string) Result {
	r := NewReader(strings.NewReader(src))
	if res := walk(r, 0); res != Okay {
		return res
	}
	return r.StripTrailingSpaces()
}

// readString reads a whole string value in chunks of size bytes, re-encoding
// escaped codepoints as UTF-8.
func readString[S io.ByteReader](r *Reader[S], size int) (string, Result) {
	var sb strings.Builder
	buf := make([]byte, size)
	for {
		n, done, res := r.ReadString(buf)
		sb.Write(buf[:n])
		switch res {
		case Okay:
			if done {
				return sb.String(), Okay
			}
		case ReadUnicode:
			if res := appendCodepoint(r, &sb); res != Okay {
				return "", res
			}
		default:
			return "", res
		}
	}
}

// readKey reads the next key in chunks of size bytes.
func readKey[S io.ByteReader](r *Reader[S], size int) (string, bool, Result) {
	var sb strings.Builder
	buf := make([]byte, size)
	for {
		n, closed, done, res := r.NextObjectKey(buf)
		sb.Write(buf[:n])
		switch res {
		case Okay:
			if closed {
				return "", true, Okay
			}
			if done {
				return sb.String(), false, Okay
			}
		case ReadUnicode:
			if res := appendCodepoint(r, &sb); res != Okay {
				return "", false, res
			}
		default:
			return "", false, res
		}
	}
}

func readNumber[S io.ByteReader](r *Reader[S], size int) (string, Result) {
	var sb strings.Builder
	buf := make([]byte, size)
	for {
		n, done, res := r.ReadNumber(buf)
		sb.Write(buf[:n])
		if res != Okay {
			return "", res
		}
		if done {
			return sb.String(), Okay
		}
	}
}

func appendCodepoint[S io.ByteReader](r *Reader[S], sb *strings.Builder) Result {
	cp, res := r.ReadUnicode()
	if res != Okay {
		return res
	}
	var enc [utf8.UTFMax]byte
	n, res := CodepointToUTF8(cp, enc[:])
	if res != Okay {
		return res
	}
	sb.Write(enc[:n])
	return Okay
}
