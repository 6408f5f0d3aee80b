package doxygen

import (
	"strings"
)

const hexDigits = "0123456789abcdef"

// MangleID encodes a display key the way Doxygen builds search ids: ASCII
// letters and digits are kept (lowercased), every other byte becomes '_'
// followed by two lowercase hex digits.
func MangleID(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			b.WriteByte(c)
		case c >= 'A' && c <= 'Z':
			b.WriteByte(c + ('a' - 'A'))
		default:
			b.WriteByte('_')
			b.WriteByte(hexDigits[c>>4])
			b.WriteByte(hexDigits[c&0x0f])
		}
	}
	return b.String()
}

// DemangleID reverses the '_xx' escapes of a search id. Underscores not
// followed by two hex digits are kept as they are.
func DemangleID(id string) string {
	if !strings.Contains(id, "_") {
		return id
	}
	out := make([]byte, 0, len(id))
	for i := 0; i < len(id); i++ {
		if id[i] == '_' && i+2 < len(id) {
			hi, okHi := unhex(id[i+1])
			lo, okLo := unhex(id[i+2])
			if okHi && okLo {
				out = append(out, hi<<4|lo)
				i += 2
				continue
			}
		}
		out = append(out, id[i])
	}
	return string(out)
}

func unhex(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
