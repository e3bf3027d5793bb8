package settings

import (
	"fmt"
	"strconv"
	"strings"
)

// ContainsBlock reports whether any line of the chunk starts with the
// settings keyword, regardless of the version digits that follow it.
func ContainsBlock(chunk string) bool {
	return strings.HasPrefix(chunk, Keyword) ||
		strings.Contains(chunk, "\n"+Keyword)
}

// BlockLines returns the keyword-prefixed lines of a G-code document in
// file order, without their trailing newlines.
func BlockLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.HasPrefix(line, Keyword) {
			lines = append(lines, line)
		}
	}
	return lines
}

// Decode extracts the embedded settings block from a G-code document. It
// strips the prefix from every keyword line, concatenates the payloads in
// file order and reverses the escape map, recovering the exact JSON text
// that was encoded. The version is taken from the first block line; found
// is false when the document holds no block at all.
func Decode(text string) (jsonText string, version int, found bool, err error) {
	lines := BlockLines(text)
	if len(lines) == 0 {
		return "", 0, false, nil
	}

	var payload strings.Builder
	for i, line := range lines {
		v, rest, err := splitPrefix(line)
		if err != nil {
			return "", 0, true, err
		}
		if i == 0 {
			version = v
		} else if v != version {
			return "", 0, true, fmt.Errorf("settings block mixes versions %d and %d", version, v)
		}
		payload.WriteString(rest)
	}

	jsonText, err = Unescape(payload.String())
	if err != nil {
		return "", 0, true, err
	}
	return jsonText, version, true, nil
}

// splitPrefix parses one keyword line into its version and payload.
func splitPrefix(line string) (int, string, error) {
	rest := line[len(Keyword):]

	digits := 0
	for digits < len(rest) && rest[digits] >= '0' && rest[digits] <= '9' {
		digits++
	}
	if digits == 0 {
		return 0, "", fmt.Errorf("settings line %q has no version digits", line)
	}
	version, err := strconv.Atoi(rest[:digits])
	if err != nil {
		return 0, "", fmt.Errorf("settings line %q has a malformed version: %w", line, err)
	}

	rest = rest[digits:]
	if !strings.HasPrefix(rest, " ") {
		return 0, "", fmt.Errorf("settings line %q is missing the separator space", line)
	}
	return version, rest[1:], nil
}
