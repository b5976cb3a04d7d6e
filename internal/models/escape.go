// ABOUTME: Delimiter helpers for vCard lines that honor backslash escapes.
// ABOUTME: Used by Tag parsing and by the typed property wrappers.

package models

import "strings"

const (
	// ValueDelimiter separates the tag spec from the value.
	ValueDelimiter = ':'
	// FieldDelimiter separates the fields of a multi-field value.
	FieldDelimiter = ';'
	// ListDelimiter separates items inside a single field.
	ListDelimiter = ','
)

// IndexUnescaped returns the index of the first sep in s that is not
// preceded by a backslash escape, or -1.
func IndexUnescaped(s string, sep byte) int {
	escaped := false
	for i := 0; i < len(s); i++ {
		switch {
		case escaped:
			escaped = false
		case s[i] == '\\':
			escaped = true
		case s[i] == sep:
			return i
		}
	}
	return -1
}

// SplitEscaped splits s on every unescaped sep. Escape sequences are kept
// intact in the returned parts.
func SplitEscaped(s string, sep byte) []string {
	var parts []string
	for {
		i := IndexUnescaped(s, sep)
		if i < 0 {
			return append(parts, s)
		}
		parts = append(parts, s[:i])
		s = s[i+1:]
	}
}

// SplitLine cuts a raw line at the first unescaped ':' into its tag spec and
// value. A line without a delimiter is all value.
func SplitLine(raw string) (spec, value string, ok bool) {
	i := IndexUnescaped(raw, ValueDelimiter)
	if i < 0 {
		return "", raw, false
	}
	return raw[:i], raw[i+1:], true
}

// IsBag reports whether a value carries more than one field.
func IsBag(value string) bool {
	return IndexUnescaped(value, FieldDelimiter) >= 0
}

var unescaper = strings.NewReplacer(
	`\\`, `\`,
	`\,`, `,`,
	`\;`, `;`,
	`\:`, `:`,
	`\n`, "\n",
	`\N`, "\n",
)

var escaper = strings.NewReplacer(
	`\`, `\\`,
	`,`, `\,`,
	`;`, `\;`,
	"\n", `\n`,
)

// Unescape resolves vCard text escapes.
func Unescape(s string) string {
	return unescaper.Replace(s)
}

// Escape is the inverse of Unescape for a single text field.
func Escape(s string) string {
	return escaper.Replace(s)
}
