package node

import (
	"bytes"
	"io"

	"github.com/pkg/errors"

	"github.com/Neumenon/tjson/tjson"
)

// Encode writes v to dst as compact JSON. Numbers that were decoded keep
// their source text; others use Writer.Int64 and Writer.Float64.
func Encode[W io.Writer](dst W, v *Value) error {
	e := encoder[W]{w: tjson.NewWriter(dst, tjson.WithMaxDepth(DefaultMaxDepth))}
	if err := e.value(nil, v); err != nil {
		return err
	}
	if res := e.w.Finish(); res != tjson.Okay {
		return errors.Wrap(res.Err(), "node: finishing document")
	}
	return nil
}

// Marshal encodes v into a new slice.
func Marshal(v *Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// String returns the compact JSON form of v.
func (v *Value) String() string {
	b, err := Marshal(v)
	if err != nil {
		return "<invalid: " + err.Error() + ">"
	}
	return string(b)
}

type encoder[W io.Writer] struct {
	w *tjson.Writer[W]
}

func (e *encoder[W]) check(p *path, res tjson.Result, what string) error {
	if res == tjson.Okay {
		return nil
	}
	return errors.Wrapf(res.Err(), "node: writing %s at %s", what, p)
}

func (e *encoder[W]) value(p *path, v *Value) error {
	switch v.Kind() {
	case KindNull:
		return e.check(p, e.w.Null(), "null")
	case KindBool:
		if v.boolVal {
			return e.check(p, e.w.True(), "true")
		}
		return e.check(p, e.w.False(), "false")
	case KindInt:
		if v.raw != "" {
			return e.check(p, e.w.Number([]byte(v.raw)), "number")
		}
		return e.check(p, e.w.Int64(v.intVal), "int")
	case KindFloat:
		if v.raw != "" {
			return e.check(p, e.w.Number([]byte(v.raw)), "number")
		}
		return e.check(p, e.w.Float64(v.floatVal), "float")
	case KindString:
		return e.check(p, e.w.Str(v.strVal), "string")
	case KindArray:
		return e.array(p, v)
	case KindObject:
		return e.object(p, v)
	default:
		return errors.Errorf("node: unknown kind %d at %s", v.kind, p)
	}
}

func (e *encoder[W]) array(p *path, v *Value) error {
	if err := e.check(p, e.w.OpenArray(), "array"); err != nil {
		return err
	}
	for i, item := range v.items {
		if i > 0 {
			if err := e.check(p, e.w.NextItem(), "separator"); err != nil {
				return err
			}
		}
		if err := e.value(&path{parent: p, index: i}, item); err != nil {
			return err
		}
	}
	return e.check(p, e.w.CloseArray(), "array end")
}

func (e *encoder[W]) object(p *path, v *Value) error {
	if err := e.check(p, e.w.OpenObject(), "object"); err != nil {
		return err
	}
	for _, m := range v.members {
		child := &path{parent: p, key: m.Key, index: -1}
		if err := e.check(child, e.w.Key(m.Key), "key"); err != nil {
			return err
		}
		if err := e.value(child, m.Value); err != nil {
			return err
		}
	}
	return e.check(p, e.w.CloseObject(), "object end")
}
