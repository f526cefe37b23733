package codec

import (
	"strings"

	"github.com/rowkit/csvjson/value"
)

// injectionLeadChars are the characters the CSV-injection guard neutralizes
// (spec §4.C.1 step 2 / GLOSSARY "Injection guard").
const injectionLeadChars = "=+-@"

// EscapeField renders v as CSV cell text per spec §4.C.1:
//  1. null/undefined -> empty string; text conversion per kind.
//  2. CSV-injection guard: a leading =, +, -, or @ gets a prepended '.
//  3. RFC 4180 quoting when the text contains the delimiter, ", \n, or \r.
func EscapeField(v value.Value, delimiter rune, preventInjection bool) string {
	text := v.String()

	if preventInjection && len(text) > 0 && strings.ContainsRune(injectionLeadChars, rune(text[0])) {
		text = "'" + text
	}

	if needsQuoting(text, delimiter) {
		text = quote(text)
	}
	return text
}

func needsQuoting(text string, delimiter rune) bool {
	return strings.ContainsRune(text, delimiter) ||
		strings.ContainsRune(text, '"') ||
		strings.ContainsRune(text, '\n') ||
		strings.ContainsRune(text, '\r')
}

func quote(text string) string {
	var b strings.Builder
	b.Grow(len(text) + 2)
	b.WriteByte('"')
	for _, r := range text {
		if r == '"' {
			b.WriteByte('"')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}
