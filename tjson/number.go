package tjson

import "math"

// NumberClass is the grammatical class of a number span.
type NumberClass uint8

const (
	ClassZero    NumberClass = iota // 0 or -0
	ClassInteger                    // Integer without fraction or exponent
	ClassFloat                      // Fraction and/or exponent present
)

// String returns the class name.
func (c NumberClass) String() string {
	switch c {
	case ClassZero:
		return "zero"
	case ClassInteger:
		return "integer"
	case ClassFloat:
		return "float"
	default:
		return "unknown"
	}
}

// ClassifyNumber checks span against the JSON number grammar
//
//	-?(0|[1-9][0-9]*)([.][0-9]+)?([eE][+-]?[0-9]+)?
//
// in a single pass. An empty span is PrematurelyEnded; any other mismatch is
// InvalidData.
func ClassifyNumber(span []byte) (NumberClass, Result) {
	if len(span) == 0 {
		return ClassZero, PrematurelyEnded
	}

	i := 0
	if span[i] == '-' {
		i++
	}
	if i == len(span) {
		return ClassZero, InvalidData
	}

	class := ClassInteger
	switch c := span[i]; {
	case c == '0':
		class = ClassZero
		i++
	case c >= '1' && c <= '9':
		for i < len(span) && isDigit(span[i]) {
			i++
		}
	default:
		return ClassZero, InvalidData
	}

	if i < len(span) && span[i] == '.' {
		i++
		start := i
		for i < len(span) && isDigit(span[i]) {
			i++
		}
		if i == start {
			return ClassZero, InvalidData
		}
		class = ClassFloat
	}

	if i < len(span) && (span[i] == 'e' || span[i] == 'E') {
		i++
		if i < len(span) && (span[i] == '+' || span[i] == '-') {
			i++
		}
		start := i
		for i < len(span) && isDigit(span[i]) {
			i++
		}
		if i == start {
			return ClassZero, InvalidData
		}
		class = ClassFloat
	}

	if i != len(span) {
		return ClassZero, InvalidData
	}
	return class, Okay
}

// NumberToInt converts a Zero or Integer span to int64. Float spans are
// InvalidData. Values outside the int64 range saturate at math.MinInt64 or
// math.MaxInt64.
func NumberToInt(span []byte) (int64, Result) {
	class, res := ClassifyNumber(span)
	if res != Okay {
		return 0, res
	}
	if class == ClassFloat {
		return 0, InvalidData
	}

	neg := span[0] == '-'
	digits := span
	if neg {
		digits = span[1:]
	}

	// Accumulate negatively so math.MinInt64 is reachable.
	const cutoff = math.MinInt64 / 10
	const lastDigit = -(math.MinInt64 % 10)
	var v int64
	for _, c := range digits {
		d := int64(c - '0')
		if v < cutoff || (v == cutoff && d > lastDigit) {
			if neg {
				return math.MinInt64, Okay
			}
			return math.MaxInt64, Okay
		}
		v = v*10 - d
	}

	if neg {
		return v, Okay
	}
	if v == math.MinInt64 {
		return math.MaxInt64, Okay
	}
	return -v, Okay
}

// maxMantissaDigits is how many significant digits fit in a uint64 without
// overflow.
const maxMantissaDigits = 19

// maxExponent caps the parsed exponent; anything beyond already over- or
// underflows float64.
const maxExponent = 100000

// NumberToFloat converts any valid number span to float64 by accumulating at
// most 19 significant digits and scaling by the decimal exponent. Results too
// large for float64 become ±Inf; results too small become ±0.
func NumberToFloat(span []byte) (float64, Result) {
	if _, res := ClassifyNumber(span); res != Okay {
		return 0, res
	}

	i := 0
	neg := false
	if span[i] == '-' {
		neg = true
		i++
	}

	var mant uint64
	sig := 0
	exp10 := 0

	for ; i < len(span) && isDigit(span[i]); i++ {
		d := uint64(span[i] - '0')
		switch {
		case sig < maxMantissaDigits:
			mant = mant*10 + d
			if mant != 0 {
				sig++
			}
		default:
			exp10++
		}
	}

	if i < len(span) && span[i] == '.' {
		i++
		for ; i < len(span) && isDigit(span[i]); i++ {
			if sig >= maxMantissaDigits {
				continue
			}
			mant = mant*10 + uint64(span[i]-'0')
			exp10--
			if mant != 0 {
				sig++
			}
		}
	}

	if i < len(span) && (span[i] == 'e' || span[i] == 'E') {
		i++
		expNeg := false
		switch span[i] {
		case '-':
			expNeg = true
			i++
		case '+':
			i++
		}
		e := 0
		for ; i < len(span); i++ {
			if e < maxExponent {
				e = e*10 + int(span[i]-'0')
			}
		}
		if expNeg {
			e = -e
		}
		exp10 += e
	}

	f := float64(mant)
	switch {
	case mant == 0:
		f = 0
	case exp10 > 0:
		f *= math.Pow10(exp10)
	case exp10 < -308:
		f /= 1e308
		f /= math.Pow10(-exp10 - 308)
	case exp10 < 0:
		f /= math.Pow10(-exp10)
	}

	if neg {
		f = -f
	}
	return f, Okay
}
