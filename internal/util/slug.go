package util

import (
	"strings"
	"unicode"
)

// Slugify lowercases the name and collapses every run of non-alphanumeric
// characters into a single hyphen.
func Slugify(name string) string {
	var builder strings.Builder
	builder.Grow(len(name))

	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			builder.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				builder.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.Trim(builder.String(), "-")
}
