package observability

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxLoggedLen caps the bytes of a caller-supplied string written to the log.
const MaxLoggedLen = 256

// Sanitize prepares caller-supplied text for a log line: control characters
// (ANSI escapes, NUL, BEL) are dropped, invalid UTF-8 is replaced and the
// result is cut at MaxLoggedLen bytes.
func Sanitize(s string) string {
	clean := len(s) <= MaxLoggedLen && utf8.ValidString(s)
	if clean {
		for _, r := range s {
			if unicode.IsControl(r) {
				clean = false
				break
			}
		}
	}
	if clean {
		return s
	}

	var b strings.Builder
	b.Grow(min(len(s), MaxLoggedLen))
	for _, r := range strings.ToValidUTF8(s, string(utf8.RuneError)) {
		if unicode.IsControl(r) {
			continue
		}
		if b.Len()+utf8.RuneLen(r) > MaxLoggedLen {
			b.WriteString("...")
			break
		}
		b.WriteRune(r)
	}
	return b.String()
}
