package toolcodec

import (
	"strings"
)

// cleanPayload undoes the over-escaping models tend to produce inside call
// payloads: stray backslashes are dropped, escaped quotes are unescaped and
// one wrapping layer of quotes is removed.
func cleanPayload(s string) string {
	s = stripInvalidEscapes(s)
	s = strings.ReplaceAll(s, `\"`, `"`)
	return stripWrappingQuotes(strings.TrimSpace(s))
}

// stripInvalidEscapes removes every backslash that does not start a JSON escape
// sequence: \" \\ \/ \b \f \n \r \t or \u followed by four hex digits.
// Each backslash is judged by the character right after it.
func stripInvalidEscapes(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && !validEscapeAt(s, i+1) {
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func validEscapeAt(s string, i int) bool {
	if i >= len(s) {
		return false
	}
	switch s[i] {
	case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
		return true
	case 'u':
		if i+5 > len(s) {
			return false
		}
		for _, c := range []byte(s[i+1 : i+5]) {
			if !isHex(c) {
				return false
			}
		}
		return true
	}
	return false
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func stripWrappingQuotes(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
