package tjson

// MaxCodepoint is the largest Unicode codepoint.
const MaxCodepoint = 0x10FFFF

// UTFMax is the longest UTF-8 encoding of a codepoint.
const UTFMax = 4

// CodepointToUTF8 encodes cp into buf and returns the number of bytes used.
//
// Codepoints above MaxCodepoint, negative values and UTF-16 surrogates
// (0xD800-0xDFFF) are InvalidData. A buffer too short for the encoding is
// PrematurelyEnded and buf is left untouched.
func CodepointToUTF8(cp rune, buf []byte) (int, Result) {
	var n int
	switch {
	case cp < 0:
		return 0, InvalidData
	case cp < 0x80:
		n = 1
	case cp < 0x800:
		n = 2
	case cp >= 0xD800 && cp <= 0xDFFF:
		return 0, InvalidData
	case cp < 0x10000:
		n = 3
	case cp <= MaxCodepoint:
		n = 4
	default:
		return 0, InvalidData
	}
	if len(buf) < n {
		return 0, PrematurelyEnded
	}

	switch n {
	case 1:
		buf[0] = byte(cp)
	case 2:
		buf[0] = 0xC0 | byte(cp>>6)
		buf[1] = 0x80 | byte(cp)&0x3F
	case 3:
		buf[0] = 0xE0 | byte(cp>>12)
		buf[1] = 0x80 | byte(cp>>6)&0x3F
		buf[2] = 0x80 | byte(cp)&0x3F
	case 4:
		buf[0] = 0xF0 | byte(cp>>18)
		buf[1] = 0x80 | byte(cp>>12)&0x3F
		buf[2] = 0x80 | byte(cp>>6)&0x3F
		buf[3] = 0x80 | byte(cp)&0x3F
	}
	return n, Okay
}

// combineSurrogates joins a UTF-16 surrogate pair into one codepoint.
func combineSurrogates(high, low rune) rune {
	return (high-0xD800)*0x400 + (low - 0xDC00) + 0x10000
}

func isHighSurrogate(u rune) bool {
	return u >= 0xD800 && u <= 0xDBFF
}

func isLowSurrogate(u rune) bool {
	return u >= 0xDC00 && u <= 0xDFFF
}
