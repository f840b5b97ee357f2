package stream

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Neumenon/tjson/node"
	"github.com/Neumenon/tjson/tjson"
)

// ============================================================
// Writer Tests
// ============================================================

func TestWriter_SeqValue(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, ModeSeq)

	err := w.WriteValue(node.Object(node.Field("a", node.Int(1))))
	require.NoError(t, err)
	assert.Equal(t, "\x1e{\"a\":1}\n", buf.String())
	assert.Equal(t, uint64(1), w.Count())
	assert.Equal(t, ComputeCRC([]byte(`{"a":1}`)), w.CRC())
}

func TestWriter_Func(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, ModeNDJSON)

	err := w.WriteFunc(func(enc *Encoder) error {
		for _, res := range []tjson.Result{
			enc.OpenArray(),
			enc.Int(1),
			enc.NextItem(),
			enc.Str("x"),
			enc.CloseArray(),
		} {
			if res != tjson.Okay {
				return res.Err()
			}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "[1,\"x\"]\n", buf.String())
}

func TestWriter_FuncFailureWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, ModeSeq)

	err := w.WriteFunc(func(enc *Encoder) error {
		return enc.OpenObject().Err()
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, tjson.ErrInvalidData))

	boom := errors.New("boom")
	err = w.WriteFunc(func(enc *Encoder) error {
		enc.OpenArray()
		return boom
	})
	assert.True(t, errors.Is(err, boom))

	err = w.WriteFunc(func(enc *Encoder) error { return nil })
	assert.EqualError(t, err, "stream: empty record")

	assert.Equal(t, 0, buf.Len())
	assert.Equal(t, uint64(0), w.Count())
}

// countingSink records every Write call and fails once failAt calls were made.
type countingSink struct {
	writes [][]byte
	failAt int
}

func (s *countingSink) Write(p []byte) (int, error) {
	if s.failAt > 0 && len(s.writes) >= s.failAt {
		return 0, errors.New("sink closed")
	}
	s.writes = append(s.writes, append([]byte(nil), p...))
	return len(p), nil
}

func TestWriter_OneWritePerRecord(t *testing.T) {
	sink := &countingSink{failAt: 2}
	w := NewWriter(sink, ModeSeq)

	require.NoError(t, w.WriteValue(node.Int(1)))
	require.NoError(t, w.WriteValue(node.Str("x")))
	require.Len(t, sink.writes, 2)
	assert.Equal(t, "\x1e1\n", string(sink.writes[0]))
	assert.Equal(t, "\x1e\"x\"\n", string(sink.writes[1]))

	err := w.WriteValue(node.Null())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sink closed")
	assert.Len(t, sink.writes, 2)
	assert.Equal(t, uint64(2), w.Count())
	assert.Equal(t, UpdateCRC(ComputeCRC([]byte("1")), []byte(`"x"`)), w.CRC())
}

func TestWriter_Raw(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, ModeNDJSON)

	require.NoError(t, w.WriteRaw([]byte(" { \"a\" : [ 1 , 2 ] } ")))
	require.NoError(t, w.WriteRaw([]byte("{\"s\":\n\"line\\nbreak\"}")))
	assert.Equal(t, "{\"a\":[1,2]}\n{\"s\":\"line\\nbreak\"}\n", buf.String())

	err := w.WriteRaw([]byte(`{"a":1,}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, tjson.ErrInvalidData))
	assert.Equal(t, uint64(2), w.Count())
}

func TestWriter_RoundTrip(t *testing.T) {
	for _, mode := range []Mode{ModeSeq, ModeNDJSON} {
		var buf bytes.Buffer
		w := NewWriter(&buf, mode)
		require.NoError(t, w.WriteValue(node.Int(42)))
		require.NoError(t, w.WriteValue(node.Str("two\nlines")))
		require.NoError(t, w.WriteRaw([]byte(`[true, null]`)))

		r := NewReader(&buf, WithMode(mode), WithDecode())
		cursor := NewCursor()
		records, err := r.ReadAll()
		require.NoError(t, err, mode.String())
		require.Len(t, records, 3, mode.String())
		for _, rec := range records {
			require.NoError(t, cursor.Process("out", rec))
		}

		assert.Equal(t, int64(42), mustInt(t, records[0].Value))
		s, err := records[1].Value.AsStr()
		require.NoError(t, err)
		assert.Equal(t, "two\nlines", s)
		assert.Equal(t, 2, records[2].Value.Len())

		assert.NoError(t, cursor.Verify("out", w.CRC()), mode.String())
	}
}

func mustInt(t *testing.T, v *node.Value) int64 {
	t.Helper()
	n, err := v.AsInt()
	require.NoError(t, err)
	return n
}

// ============================================================
// Reports
// ============================================================

func TestErrorReport(t *testing.T) {
	perr := &ParseError{Reason: "truncated record", Offset: 41, Seq: 3}
	data, err := node.Marshal(ErrorReport(perr))
	require.NoError(t, err)
	assert.Equal(t, `{"type":"error","seq":3,"offset":41,"msg":"truncated record"}`, string(data))

	typ, err := ReportType(ErrorReport(perr))
	require.NoError(t, err)
	assert.Equal(t, "error", typ)
}

func TestSummaryReport(t *testing.T) {
	st := StreamState{Name: "a.seq", Records: 10, Skipped: 1, Bytes: 512, CRC: 0x0badf00d}
	data, err := node.Marshal(SummaryReport(st))
	require.NoError(t, err)
	assert.Equal(t, `{"type":"summary","stream":"a.seq","records":10,"skipped":1,"bytes":512,"crc":"0badf00d"}`, string(data))
}

func TestReportType_Errors(t *testing.T) {
	_, err := ReportType(node.Array())
	assert.Error(t, err)
	_, err = ReportType(node.Object())
	assert.EqualError(t, err, "report has no type")
	_, err = ReportType(node.Object(node.Field("type", node.Int(1))))
	assert.Error(t, err)
}
