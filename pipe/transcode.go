package pipe

import (
	"io"

	"github.com/Neumenon/tjson/tjson"
)

// Transcode copies the single document in src to dst in compact form. The
// output uses the writer's escaping: short escapes where they exist, \u00XX
// for other control bytes, and raw UTF-8 for everything else. Number spans
// are copied verbatim.
//
// On error dst may hold a prefix of the output.
func Transcode[W io.Writer, S io.ByteReader](dst W, src S, opts Options) (Stats, error) {
	t := transcoder[W]{w: tjson.NewWriter(dst)}
	var st Stats
	n, err := walkDocument(src, opts, func(ev Event) bool {
		st.count(ev)
		return t.event(ev)
	})
	st.Bytes = n
	if err != nil {
		return st, err
	}
	if t.res == tjson.Okay {
		t.res = t.w.Finish()
	}
	if t.res != tjson.Okay {
		return st, &Error{Code: ErrCodeSink, Offset: n, Err: t.res.Err()}
	}
	return st, nil
}

type transcoder[W io.Writer] struct {
	w   *tjson.Writer[W]
	res tjson.Result

	open    []frame
	inToken bool // a partial key or string is being copied
}

// frame is an open container of the transcoded document.
type frame uint8

const (
	frameObject frame = iota
	frameArray        // Array without items yet
	frameArrayItems   // Array holding at least one item
)

// separate writes the separator due before a new array item.
func (t *transcoder[W]) separate() tjson.Result {
	if n := len(t.open); n > 0 && t.open[n-1] == frameArrayItems {
		return t.w.NextItem()
	}
	return tjson.Okay
}

// markItem records that the innermost array holds an item.
func (t *transcoder[W]) markItem() {
	if n := len(t.open); n > 0 && t.open[n-1] == frameArray {
		t.open[n-1] = frameArrayItems
	}
}

func (t *transcoder[W]) event(ev Event) bool {
	t.res = t.apply(ev)
	return t.res == tjson.Okay
}

func (t *transcoder[W]) apply(ev Event) tjson.Result {
	continuing := t.inToken
	t.inToken = ev.Partial

	switch ev.Kind {
	case EventKey:
		return t.w.KeyBytes(ev.Text)
	case EventString:
		if !continuing {
			if res := t.separate(); res != tjson.Okay {
				return res
			}
			t.markItem()
		}
		return t.w.StrBytes(ev.Text)
	case EventEndObject:
		t.open = t.open[:len(t.open)-1]
		return t.w.CloseObject()
	case EventEndArray:
		t.open = t.open[:len(t.open)-1]
		return t.w.CloseArray()
	}

	if res := t.separate(); res != tjson.Okay {
		return res
	}
	t.markItem()

	switch ev.Kind {
	case EventBeginObject:
		t.open = append(t.open, frameObject)
		return t.w.OpenObject()
	case EventBeginArray:
		t.open = append(t.open, frameArray)
		return t.w.OpenArray()
	case EventNumber:
		return t.w.Number(ev.Text)
	case EventTrue:
		return t.w.True()
	case EventFalse:
		return t.w.False()
	case EventNull:
		return t.w.Null()
	default:
		return tjson.InvalidData
	}
}
