package node

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"math"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Neumenon/tjson/tjson"
)

// ============================================================
// Decode
// ============================================================

func TestDecode_Document(t *testing.T) {
	v, err := Unmarshal([]byte(`{"key1":"value1","key2":2,"f":1234.5e-01,"a":[true,false,null],"u":"é𝄞"}`))
	require.NoError(t, err)

	want := Object(
		Field("key1", Str("value1")),
		Field("key2", Int(2)),
		Field("f", Float(123.45)),
		Field("a", Array(Bool(true), Bool(false), Null())),
		Field("u", Str("é\U0001D11E")),
	)
	assert.True(t, Equal(want, v), "got %s", v)

	require.Equal(t, KindObject, v.Kind())
	require.Equal(t, 5, v.Len())
	n, err := v.Get("key2").AsInt()
	require.NoError(t, err)
	require.Equal(t, int64(2), n)
	require.Equal(t, "1234.5e-01", v.Get("f").Raw())
	require.Nil(t, v.Get("missing"))
}

func TestDecode_LongTokens(t *testing.T) {
	long := strings.Repeat("abcdefgh", 300)
	doc := `{"` + long + `":"` + long + `","n":` + strings.Repeat("1", 40) + `}`

	v, err := Unmarshal([]byte(doc))
	require.NoError(t, err)
	s, err := v.Get(long).AsStr()
	require.NoError(t, err)
	require.Equal(t, long, s)

	// Too large for int64: kept as a float.
	require.Equal(t, KindFloat, v.Get("n").Kind())
	f, _ := v.Get("n").Number()
	assert.InEpsilon(t, 1.1111111111111111e39, f, 1e-12)
}

func TestDecode_IntegerLimits(t *testing.T) {
	tests := []struct {
		in   string
		kind Kind
	}{
		{"9223372036854775807", KindInt},
		{"-9223372036854775808", KindInt},
		{"9223372036854775808", KindFloat},
		{"-9223372036854775809", KindFloat},
		{"-0", KindInt},
		{"0.0", KindFloat},
	}
	for _, tt := range tests {
		v, err := Unmarshal([]byte(tt.in))
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.kind, v.Kind(), tt.in)
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		in     string
		path   string
		target error
	}{
		{`{"a":[1,2,{"b":tru}]}`, "$.a[2].b", tjson.ErrInvalidData},
		{`{"a.b":{"x[0]":[nul]}}`, `$["a.b"]["x[0]"][0]`, tjson.ErrInvalidData},
		{`{"":{"_k1":{"é":{"1a":-}}}}`, `$[""]._k1.é["1a"]`, tjson.ErrInvalidData},
		{`{"a":[1,2,{"b":tru`, "$.a[2].b", tjson.ErrPrematurelyEnded},
		{`[1,01]`, "$[1]", tjson.ErrInvalidData},
		{`{"a":"\uD800"}`, "$.a", tjson.ErrInvalidData},
		{`[1,]`, "$", tjson.ErrInvalidData},
		{``, "$", tjson.ErrPrematurelyEnded},
	}

	for _, tt := range tests {
		_, err := Unmarshal([]byte(tt.in))
		require.Error(t, err, tt.in)
		assert.Contains(t, err.Error(), "at "+tt.path, tt.in)
		assert.True(t, errors.Is(err, tt.target), "%q: %v", tt.in, err)
	}
}

func TestDecode_TrailingData(t *testing.T) {
	_, err := Unmarshal([]byte(`{} {}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, tjson.ErrInvalidData))
	assert.Contains(t, err.Error(), "trailing data")

	_, err = Unmarshal([]byte("  [1]  \n"))
	require.NoError(t, err)
}

func TestDecode_SourceErrorAfterDocument(t *testing.T) {
	boom := errors.New("disk on fire")
	src := bufio.NewReader(io.MultiReader(strings.NewReader("[1] "), iotest.ErrReader(boom)))

	_, err := Decode(src, DefaultDecodeOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom), "%v", err)

	src = bufio.NewReader(io.MultiReader(strings.NewReader(`{"a":[1,`), iotest.ErrReader(boom)))
	_, err = Decode(src, DefaultDecodeOptions())
	assert.True(t, errors.Is(err, boom), "%v", err)
}

func TestDecode_MaxDepth(t *testing.T) {
	nest := func(n int) []byte {
		return []byte(strings.Repeat("[", n) + strings.Repeat("]", n))
	}

	_, err := Decode(tjson.NewBytesSource(nest(DefaultMaxDepth)), DefaultDecodeOptions())
	require.NoError(t, err)

	_, err = Decode(tjson.NewBytesSource(nest(DefaultMaxDepth+1)), DefaultDecodeOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max depth 512")

	_, err = Decode(tjson.NewBytesSource(nest(4)), DecodeOptions{MaxDepth: 3})
	require.Error(t, err)
	assert.True(t, errors.Is(err, tjson.ErrInvalidData))
}

func TestReadValue_Embedded(t *testing.T) {
	r := tjson.NewReader(strings.NewReader(`[{"a":1},{"b":[2]}]`))
	require.Equal(t, tjson.Okay, r.EnterArray())

	var got []*Value
	for {
		closed, res := r.NextArrayItem()
		require.Equal(t, tjson.Okay, res)
		if closed {
			break
		}
		v, err := ReadValue(r, DefaultDecodeOptions())
		require.NoError(t, err)
		got = append(got, v)
	}
	require.Len(t, got, 2)
	assert.Equal(t, `{"a":1}`, got[0].String())
	assert.Equal(t, `{"b":[2]}`, got[1].String())
}

// ============================================================
// Encode
// ============================================================

func TestEncode_CompactRoundTrip(t *testing.T) {
	docs := []string{
		`{"key1":"value1","key2":2}`,
		`[0,-0,1234,-2147483648,1234.5e-01,"","abcdef"]`,
		`{"a":{"b":[1,{"c":"x\ny\t\"z\\"}]},"d":[],"e":{}}`,
		`"top"`,
		`null`,
		`[true,false,null,1E+400,-1e-400]`,
		`{"dup":1,"dup":2}`,
	}

	for _, doc := range docs {
		v, err := Unmarshal([]byte(doc))
		require.NoError(t, err, doc)
		out, err := Marshal(v)
		require.NoError(t, err, doc)
		assert.Equal(t, doc, string(out))
	}
}

func TestEncode_BuiltValues(t *testing.T) {
	v := Object(
		Field("i", Int(-7)),
		Field("f", Float(0.5)),
		Field("s", Str("ctl\x01")),
		Field("l", Array()),
	)
	v.Set("i", Int(8))
	v.Set("extra", Null())
	v.Get("l").Append(Bool(true))

	out, err := Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, `{"i":8,"f":5.0000000000000000e-01,"s":"ctl\u0001","l":[true],"extra":null}`, string(out))

	back, err := Unmarshal(out)
	require.NoError(t, err)
	assert.True(t, Equal(v, back))
}

func TestEncode_Errors(t *testing.T) {
	_, err := Marshal(Array(Int(1), Float(math.NaN())))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at $[1]")

	cyclic := Array()
	cyclic.Append(cyclic)
	_, err = Marshal(cyclic)
	require.Error(t, err)
	assert.True(t, errors.Is(err, tjson.ErrInvalidData))
}

func TestEncode_ShortWriteSink(t *testing.T) {
	var buf bytes.Buffer
	sink := tjson.FuncSink(func(p []byte) int {
		buf.WriteByte(p[0])
		return 1
	})
	require.NoError(t, Encode(sink, Object(Field("k", Array(Int(1), Str("v"))))))
	assert.Equal(t, `{"k":[1,"v"]}`, buf.String())
}

// ============================================================
// Accessors
// ============================================================

func TestValue_Accessors(t *testing.T) {
	_, err := Str("x").AsInt()
	assert.EqualError(t, err, "node: expected int, got string")

	var nilVal *Value
	assert.True(t, nilVal.IsNull())
	assert.Equal(t, KindNull, nilVal.Kind())
	_, err = nilVal.AsStr()
	assert.EqualError(t, err, "node: nil value")

	arr := Array(Int(1))
	_, err = arr.Index(3)
	assert.EqualError(t, err, "node: index 3 out of bounds (len=1)")
	item, err := arr.Index(0)
	require.NoError(t, err)
	assert.True(t, item.IsNumeric())

	assert.Panics(t, func() { Int(1).Append(Null()) })
	assert.Panics(t, func() { Array().Set("k", Null()) })
}

// ============================================================
// Differential
// ============================================================

var differentialCorpus = []string{
	`{"id":12345,"name":"café","tags":["a","b"],"nested":{"x":1.5e3,"y":[true,false,null]}}`,
	`[1,-2.5,3e-7,1e22,0.1,123456789012,"😀","tab\there"]`,
	`{"empty":{},"list":[],"str":"","slash":"\/"}`,
	`[[[[["deep"]]]]]`,
	`-0.0`,
	`"\u0000"`,
}

// Decoded trees must match json-iterator's generic decoding.
func TestDecode_MatchesJSONIterator(t *testing.T) {
	api := jsoniter.ConfigCompatibleWithStandardLibrary
	for _, doc := range differentialCorpus {
		var want any
		require.NoError(t, api.Unmarshal([]byte(doc), &want), doc)

		v, err := Unmarshal([]byte(doc))
		require.NoError(t, err, doc)

		if diff := cmp.Diff(want, ToAny(v), cmpopts.EquateApprox(1e-12, 0)); diff != "" {
			t.Errorf("%s: mismatch (-jsoniter +tjson):\n%s", doc, diff)
		}
	}
}

// json-iterator must accept everything Encode produces.
func TestEncode_ReadableByJSONIterator(t *testing.T) {
	api := jsoniter.ConfigCompatibleWithStandardLibrary
	for _, doc := range differentialCorpus {
		var generic any
		require.NoError(t, api.Unmarshal([]byte(doc), &generic))

		v, err := FromAny(generic)
		require.NoError(t, err)
		out, err := Marshal(v)
		require.NoError(t, err)

		var back any
		require.NoError(t, api.Unmarshal(out, &back), string(out))
		if diff := cmp.Diff(generic, back, cmpopts.EquateApprox(1e-12, 0)); diff != "" {
			t.Errorf("%s: mismatch after re-encode:\n%s", doc, diff)
		}
	}
}

func TestFromAny_SortsKeys(t *testing.T) {
	m := map[string]any{"b": 1.0, "a": "x", "c": []any{true}, "aa": nil}
	want := `{"a":"x","aa":null,"b":1,"c":[true]}`
	for i := 0; i < 10; i++ {
		v, err := FromAny(m)
		require.NoError(t, err)
		out, err := Marshal(v)
		require.NoError(t, err)
		assert.Equal(t, want, string(out))
	}
}

func BenchmarkUnmarshal(b *testing.B) {
	doc := []byte(differentialCorpus[0])
	b.SetBytes(int64(len(doc)))
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := Unmarshal(doc); err != nil {
			b.Fatal(err)
		}
	}
}
