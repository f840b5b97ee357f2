package stream

import (
	"github.com/pkg/errors"

	"github.com/Neumenon/tjson/node"
)

// ============================================================
// Report records
// ============================================================
//
// Report records describe a stream in the stream itself. Every report is an
// object whose "type" member names it.

// ErrorReport describes a malformed record.
// Record: {"type":"error","seq":3,"offset":41,"msg":"truncated record"}
func ErrorReport(perr *ParseError) *node.Value {
	msg := perr.Reason
	if perr.Err != nil {
		msg += ": " + perr.Err.Error()
	}
	return node.Object(
		node.Field("type", node.Str("error")),
		node.Field("seq", node.Int(int64(perr.Seq))),
		node.Field("offset", node.Int(perr.Offset)),
		node.Field("msg", node.Str(msg)),
	)
}

// SummaryReport describes a finished stream.
// Record: {"type":"summary","stream":"a.json-seq","records":10,"skipped":1,"bytes":512,"crc":"0badf00d"}
func SummaryReport(st StreamState) *node.Value {
	return node.Object(
		node.Field("type", node.Str("summary")),
		node.Field("stream", node.Str(st.Name)),
		node.Field("records", node.Int(int64(st.Records))),
		node.Field("skipped", node.Int(int64(st.Skipped))),
		node.Field("bytes", node.Int(st.Bytes)),
		node.Field("crc", node.Str(st.CRCHex())),
	)
}

// ReportType returns the type of a report record.
func ReportType(v *node.Value) (string, error) {
	if v.Kind() != node.KindObject {
		return "", errors.Errorf("report must be an object, got %s", v.Kind())
	}
	t := v.Get("type")
	if t == nil {
		return "", errors.New("report has no type")
	}
	s, err := t.AsStr()
	if err != nil {
		return "", errors.Wrap(err, "report type")
	}
	return s, nil
}
