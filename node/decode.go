package node

import (
	"io"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"

	"github.com/Neumenon/tjson/tjson"
)

// DefaultMaxDepth bounds container nesting when no limit is configured.
const DefaultMaxDepth = 512

// DecodeOptions configures Decode.
type DecodeOptions struct {
	// MaxDepth limits container nesting. Zero means DefaultMaxDepth.
	MaxDepth int
}

// DefaultDecodeOptions returns the default options.
func DefaultDecodeOptions() DecodeOptions {
	return DecodeOptions{MaxDepth: DefaultMaxDepth}
}

func (o DecodeOptions) maxDepth() int {
	if o.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}

// Decode reads one document from src and checks that only whitespace
// follows it.
func Decode[S io.ByteReader](src S, opts DecodeOptions) (*Value, error) {
	s := &source[S]{src: src}
	r := tjson.NewReader(s, tjson.WithMaxDepth(opts.maxDepth()))
	v, err := ReadValue(r, opts)
	if err != nil {
		if s.err != nil {
			return nil, errors.Wrap(s.err, "node: reading source")
		}
		return nil, err
	}
	if res := r.StripTrailingSpaces(); res != tjson.PrematurelyEnded {
		return nil, errors.Wrap(tjson.ErrInvalidData, "node: trailing data after document")
	}
	if s.err != nil {
		return nil, errors.Wrap(s.err, "node: reading source")
	}
	return v, nil
}

// source keeps the first non-EOF error of a byte source, which the engine
// folds into PrematurelyEnded.
type source[S io.ByteReader] struct {
	src S
	err error
}

func (s *source[S]) ReadByte() (byte, error) {
	b, err := s.src.ReadByte()
	if err != nil && err != io.EOF && s.err == nil {
		s.err = err
	}
	return b, err
}

// Unmarshal decodes data with the default options.
func Unmarshal(data []byte) (*Value, error) {
	return Decode(tjson.NewBytesSource(data), DefaultDecodeOptions())
}

// ReadValue materializes the next value of r, which must sit between tokens.
// Nesting is counted from the reader's current position.
func ReadValue[S io.ByteReader](r *tjson.Reader[S], opts DecodeOptions) (*Value, error) {
	d := decoder[S]{r: r, maxDepth: opts.maxDepth()}
	return d.value(nil, 0)
}

// ============================================================
// Paths
// ============================================================

// path locates a value for error messages, e.g. $.a[3].b or $["a.b"]. It is
// only formatted when an error is built.
type path struct {
	parent *path
	key    string
	index  int // -1 for object members
}

func (p *path) String() string {
	if p == nil {
		return "$"
	}
	var sb strings.Builder
	p.write(&sb)
	return sb.String()
}

func (p *path) write(sb *strings.Builder) {
	if p == nil {
		sb.WriteByte('$')
		return
	}
	p.parent.write(sb)
	if p.index < 0 {
		if isIdent(p.key) {
			sb.WriteByte('.')
			sb.WriteString(p.key)
		} else {
			sb.WriteByte('[')
			sb.WriteString(strconv.Quote(p.key))
			sb.WriteByte(']')
		}
		return
	}
	sb.WriteByte('[')
	sb.WriteString(strconv.Itoa(p.index))
	sb.WriteByte(']')
}

// isIdent reports whether key can follow a dot in a path without quoting.
func isIdent(key string) bool {
	if key == "" {
		return false
	}
	for i, c := range key {
		switch {
		case c == '_' || unicode.IsLetter(c):
		case i > 0 && unicode.IsDigit(c):
		default:
			return false
		}
	}
	return true
}

// ============================================================
// Decoder
// ============================================================

type decoder[S io.ByteReader] struct {
	r        *tjson.Reader[S]
	maxDepth int

	chunk [512]byte
	text  []byte // current string, key or number
}

func (d *decoder[S]) fail(p *path, res tjson.Result, what string) error {
	return errors.Wrapf(res.Err(), "node: %s at %s", what, p)
}

func (d *decoder[S]) value(p *path, depth int) (*Value, error) {
	typ, res := d.r.Peek()
	if res != tjson.Okay {
		return nil, d.fail(p, res, "expected value")
	}

	switch typ {
	case tjson.TypeObject:
		return d.object(p, depth)
	case tjson.TypeArray:
		return d.array(p, depth)
	case tjson.TypeString:
		if err := d.str(p); err != nil {
			return nil, err
		}
		return Str(string(d.text)), nil
	case tjson.TypeNumber:
		return d.number(p)
	case tjson.TypeTrue:
		if res := d.r.ReadTrue(); res != tjson.Okay {
			return nil, d.fail(p, res, "reading true")
		}
		return Bool(true), nil
	case tjson.TypeFalse:
		if res := d.r.ReadFalse(); res != tjson.Okay {
			return nil, d.fail(p, res, "reading false")
		}
		return Bool(false), nil
	case tjson.TypeNull:
		if res := d.r.ReadNull(); res != tjson.Okay {
			return nil, d.fail(p, res, "reading null")
		}
		return Null(), nil
	default:
		return nil, d.fail(p, tjson.InvalidData, "unexpected token")
	}
}

func (d *decoder[S]) checkDepth(p *path, depth int) error {
	if depth >= d.maxDepth {
		return errors.Wrapf(tjson.ErrInvalidData, "node: nesting exceeds max depth %d at %s", d.maxDepth, p)
	}
	return nil
}

func (d *decoder[S]) object(p *path, depth int) (*Value, error) {
	if err := d.checkDepth(p, depth); err != nil {
		return nil, err
	}
	if res := d.r.EnterObject(); res != tjson.Okay {
		return nil, d.fail(p, res, "opening object")
	}

	obj := Object()
	for {
		closed, err := d.key(p)
		if err != nil {
			return nil, err
		}
		if closed {
			return obj, nil
		}
		key := string(d.text)
		v, err := d.value(&path{parent: p, key: key, index: -1}, depth+1)
		if err != nil {
			return nil, err
		}
		obj.members = append(obj.members, Member{Key: key, Value: v})
	}
}

func (d *decoder[S]) array(p *path, depth int) (*Value, error) {
	if err := d.checkDepth(p, depth); err != nil {
		return nil, err
	}
	if res := d.r.EnterArray(); res != tjson.Okay {
		return nil, d.fail(p, res, "opening array")
	}

	arr := Array()
	for i := 0; ; i++ {
		closed, res := d.r.NextArrayItem()
		if res != tjson.Okay {
			return nil, d.fail(p, res, "reading array")
		}
		if closed {
			return arr, nil
		}
		v, err := d.value(&path{parent: p, index: i}, depth+1)
		if err != nil {
			return nil, err
		}
		arr.items = append(arr.items, v)
	}
}

// key reads the next member key into d.text.
func (d *decoder[S]) key(p *path) (bool, error) {
	d.text = d.text[:0]
	for {
		n, closed, done, res := d.r.NextObjectKey(d.chunk[:])
		d.text = append(d.text, d.chunk[:n]...)
		switch res {
		case tjson.Okay:
			if closed || done {
				return closed, nil
			}
		case tjson.ReadUnicode:
			if err := d.appendRune(p); err != nil {
				return false, err
			}
		default:
			return false, d.fail(p, res, "reading key")
		}
	}
}

// str reads a string value into d.text.
func (d *decoder[S]) str(p *path) error {
	d.text = d.text[:0]
	for {
		n, done, res := d.r.ReadString(d.chunk[:])
		d.text = append(d.text, d.chunk[:n]...)
		switch res {
		case tjson.Okay:
			if done {
				return nil
			}
		case tjson.ReadUnicode:
			if err := d.appendRune(p); err != nil {
				return err
			}
		default:
			return d.fail(p, res, "reading string")
		}
	}
}

func (d *decoder[S]) appendRune(p *path) error {
	cp, res := d.r.ReadUnicode()
	if res != tjson.Okay {
		return d.fail(p, res, "reading escape")
	}
	var enc [tjson.UTFMax]byte
	n, res := tjson.CodepointToUTF8(cp, enc[:])
	if res != tjson.Okay {
		return d.fail(p, res, "encoding escape")
	}
	d.text = append(d.text, enc[:n]...)
	return nil
}

// number reads a number span. Integers that do not fit int64 become floats.
func (d *decoder[S]) number(p *path) (*Value, error) {
	d.text = d.text[:0]
	for {
		n, done, res := d.r.ReadNumber(d.chunk[:])
		d.text = append(d.text, d.chunk[:n]...)
		if res != tjson.Okay {
			return nil, d.fail(p, res, "reading number")
		}
		if done {
			break
		}
	}

	class, res := tjson.ClassifyNumber(d.text)
	if res != tjson.Okay {
		return nil, errors.Wrapf(res.Err(), "node: malformed number %q at %s", d.text, p)
	}
	raw := string(d.text)

	if class != tjson.ClassFloat {
		i, _ := tjson.NumberToInt(d.text)
		saturated := (i == math.MaxInt64 || i == math.MinInt64) && raw != strconv.FormatInt(i, 10)
		if !saturated {
			return &Value{kind: KindInt, intVal: i, raw: raw}, nil
		}
	}
	f, _ := tjson.NumberToFloat(d.text)
	return &Value{kind: KindFloat, floatVal: f, raw: raw}, nil
}
