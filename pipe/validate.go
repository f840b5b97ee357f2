package pipe

import (
	"io"
)

// Stats summarizes a validated document.
type Stats struct {
	Objects  int
	Arrays   int
	Keys     int
	Strings  int
	Numbers  int
	Integers int // Numbers of class Zero or Integer
	Literals int // true, false and null
	MaxDepth int // Deepest container nesting
	Bytes    int64
}

// Validate walks the single document in src and checks that only whitespace
// follows it. On failure the returned Stats describe the prefix that was
// accepted.
func Validate[S io.ByteReader](src S, opts Options) (Stats, error) {
	var st Stats
	n, err := walkDocument(src, opts, st.count)
	st.Bytes = n
	return st, err
}

func (st *Stats) count(ev Event) bool {
	switch ev.Kind {
	case EventBeginObject:
		st.Objects++
		st.MaxDepth = max(st.MaxDepth, ev.Depth+1)
	case EventBeginArray:
		st.Arrays++
		st.MaxDepth = max(st.MaxDepth, ev.Depth+1)
	case EventKey:
		if !ev.Partial {
			st.Keys++
		}
	case EventString:
		if !ev.Partial {
			st.Strings++
		}
	case EventNumber:
		st.Numbers++
		if isIntegerSpan(ev.Text) {
			st.Integers++
		}
	case EventTrue, EventFalse, EventNull:
		st.Literals++
	}
	return true
}

// isIntegerSpan reports whether a span already accepted by ClassifyNumber
// has neither fraction nor exponent.
func isIntegerSpan(span []byte) bool {
	for _, c := range span {
		if c == '.' || c == 'e' || c == 'E' {
			return false
		}
	}
	return true
}
