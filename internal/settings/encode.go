package settings

import (
	"fmt"
	"strings"
)

const (
	// Keyword starts every line of the embedded block. The version digits
	// follow it directly, then a single space, then the payload.
	Keyword = ";SETTING_"

	// Version is the current settings block format version.
	Version = 3

	// LineWidth bounds the total length of every encoded line, prefix
	// included.
	LineWidth = 80
)

// Prefix returns the line prefix for the given block version.
func Prefix(version int) string {
	return fmt.Sprintf("%s%d ", Keyword, version)
}

// Escape rewrites the characters that would break a G-code comment:
// backslash, newline and carriage return each become a two-character
// backslash sequence. The input is scanned exactly once, so a backslash
// introduced for a newline is never escaped again.
func Escape(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		switch c := text[i]; c {
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Unescape reverses Escape. A trailing lone backslash or an unknown escape
// sequence means the block was corrupted and yields an error.
func Unescape(text string) (string, error) {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(text) {
			return "", fmt.Errorf("dangling escape at end of settings payload")
		}
		i++
		switch text[i] {
		case '\\':
			b.WriteByte('\\')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		default:
			return "", fmt.Errorf("unknown escape sequence %q in settings payload", text[i-1:i+1])
		}
	}
	return b.String(), nil
}

// Encode escapes jsonText and wraps it into newline-terminated lines of at
// most width characters, each starting with the keyword-version prefix.
// Only the last line may be shorter than the rest. Concatenating the lines
// in order and stripping the prefixes recovers the escaped text.
func Encode(jsonText string, version, width int) string {
	prefix := Prefix(version)
	payload := width - len(prefix)
	escaped := Escape(jsonText)

	var b strings.Builder
	for pos := 0; pos < len(escaped); pos += payload {
		end := pos + payload
		if end > len(escaped) {
			end = len(escaped)
		}
		b.WriteString(prefix)
		b.WriteString(escaped[pos:end])
		b.WriteByte('\n')
	}
	return b.String()
}
