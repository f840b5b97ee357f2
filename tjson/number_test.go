package tjson

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyNumber(t *testing.T) {
	tests := []struct {
		in    string
		class NumberClass
		res   Result
	}{
		{"0", ClassZero, Okay},
		{"-0", ClassZero, Okay},
		{"0.0", ClassFloat, Okay},
		{"-0e0", ClassFloat, Okay},
		{"7", ClassInteger, Okay},
		{"1234", ClassInteger, Okay},
		{"-2147483648", ClassInteger, Okay},
		{"1e5", ClassFloat, Okay},
		{"1E+5", ClassFloat, Okay},
		{"1.5e-3", ClassFloat, Okay},
		{"1234.5e-01", ClassFloat, Okay},
		{"", ClassZero, PrematurelyEnded},
		{"-", ClassZero, InvalidData},
		{"01", ClassZero, InvalidData},
		{"00", ClassZero, InvalidData},
		{"-01", ClassZero, InvalidData},
		{"1.", ClassZero, InvalidData},
		{".1", ClassZero, InvalidData},
		{"1e", ClassZero, InvalidData},
		{"1e+", ClassZero, InvalidData},
		{"1e+-5", ClassZero, InvalidData},
		{"--1", ClassZero, InvalidData},
		{"+1", ClassZero, InvalidData},
		{"1.2.3", ClassZero, InvalidData},
		{"1.2e1.1", ClassZero, InvalidData},
		{"0x1", ClassZero, InvalidData},
		{"1-", ClassZero, InvalidData},
	}

	for _, tt := range tests {
		class, res := ClassifyNumber([]byte(tt.in))
		assert.Equal(t, tt.res, res, "%q", tt.in)
		if res == Okay {
			assert.Equal(t, tt.class, class, "%q", tt.in)
		}

		// Classification is a pure function of the span.
		class2, res2 := ClassifyNumber([]byte(tt.in))
		assert.Equal(t, res, res2)
		assert.Equal(t, class, class2)
	}
}

func TestNumberToInt(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		res  Result
	}{
		{"0", 0, Okay},
		{"-0", 0, Okay},
		{"1234", 1234, Okay},
		{"-2147483648", -2147483648, Okay},
		{"9223372036854775807", math.MaxInt64, Okay},
		{"-9223372036854775808", math.MinInt64, Okay},
		{"9223372036854775808", math.MaxInt64, Okay},
		{"-9223372036854775809", math.MinInt64, Okay},
		{"99999999999999999999", math.MaxInt64, Okay},
		{"-99999999999999999999", math.MinInt64, Okay},
		{"1.5", 0, InvalidData},
		{"1e3", 0, InvalidData},
		{"01", 0, InvalidData},
		{"", 0, PrematurelyEnded},
	}

	for _, tt := range tests {
		got, res := NumberToInt([]byte(tt.in))
		assert.Equal(t, tt.res, res, "%q", tt.in)
		assert.Equal(t, tt.want, got, "%q", tt.in)
	}
}

func TestNumberToFloat(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"0", 0},
		{"7", 7},
		{"1234", 1234},
		{"-12.5", -12.5},
		{"1234.5e-01", 123.45},
		{"0.000001", 1e-6},
		{"1e308", 1e308},
		{"1E+2", 100},
		{"-2147483648", -2147483648},
		{"12345678901234567890123", 1.2345678901234567890123e22},
		{"0.30000000000000000000001", 0.3},
		{"2.5e-310", 2.5e-310},
	}

	for _, tt := range tests {
		got, res := NumberToFloat([]byte(tt.in))
		require.Equal(t, Okay, res, "%q", tt.in)
		if tt.want == 0 {
			assert.Zero(t, got, "%q", tt.in)
			continue
		}
		assert.InEpsilon(t, tt.want, got, 1e-12, "%q", tt.in)
	}
}

func TestNumberToFloat_Limits(t *testing.T) {
	got, res := NumberToFloat([]byte("-0"))
	require.Equal(t, Okay, res)
	assert.True(t, got == 0 && math.Signbit(got), "-0 keeps its sign")

	got, res = NumberToFloat([]byte("1e309"))
	require.Equal(t, Okay, res)
	assert.True(t, math.IsInf(got, 1))

	got, res = NumberToFloat([]byte("-1e99999999"))
	require.Equal(t, Okay, res)
	assert.True(t, math.IsInf(got, -1))

	got, res = NumberToFloat([]byte("1e-400"))
	require.Equal(t, Okay, res)
	assert.Zero(t, got)

	got, res = NumberToFloat([]byte("-1e-99999999"))
	require.Equal(t, Okay, res)
	assert.True(t, got == 0 && math.Signbit(got))

	_, res = NumberToFloat([]byte("1.2.3"))
	assert.Equal(t, InvalidData, res)
	_, res = NumberToFloat(nil)
	assert.Equal(t, PrematurelyEnded, res)
}

func TestNumberClass_String(t *testing.T) {
	assert.Equal(t, "zero", ClassZero.String())
	assert.Equal(t, "integer", ClassInteger.String())
	assert.Equal(t, "float", ClassFloat.String())
	assert.Equal(t, "unknown", NumberClass(9).String())
}
